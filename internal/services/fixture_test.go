package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"

	"campus_shuttle/internal/models"
	"campus_shuttle/internal/store/storetest"
)

// monday7am is 2024-01-01 07:00 UTC, an hour before the morning run.
var monday7am = time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)

type fixture struct {
	ctx     context.Context
	store   *storetest.Memory
	univ    models.University
	stops   []models.Stop // A, B, C in route order
	route   models.Route
	shuttle models.Shuttle
	student models.User
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{ctx: context.Background(), store: storetest.New()}

	f.univ = models.University{
		Code:        "EXU",
		Name:        "Example University",
		Domain:      "example.edu",
		AdminEmails: pq.StringArray{"admin@example.edu"},
	}
	must(t, f.store.CreateUniversity(f.ctx, &f.univ))

	ids := pq.Int64Array{}
	for i, name := range []string{"A", "B", "C"} {
		st := models.Stop{UniversityID: f.univ.ID, Name: name, Lat: 23 + float64(i)/100, Lng: 80 + float64(i)/100, Zone: "north"}
		must(t, f.store.CreateStop(f.ctx, &st))
		f.stops = append(f.stops, st)
		ids = append(ids, int64(st.ID))
	}

	f.route = models.Route{
		UniversityID: f.univ.ID,
		Name:         "Morning Loop",
		StopIDs:      ids,
		TimingSlots: datatypes.NewJSONSlice([]models.TimingSlot{
			{StartTime: "08:00", EndTime: "09:00", Days: []string{"Mon", "Tue", "Wed", "Thu", "Fri"}},
		}),
	}
	must(t, f.store.CreateRoute(f.ctx, &f.route))

	routeID := f.route.ID
	f.shuttle = models.Shuttle{UniversityID: f.univ.ID, Number: "SH-1", Capacity: 2, Active: true, CurrentRouteID: &routeID}
	must(t, f.store.CreateShuttle(f.ctx, &f.shuttle))

	f.student = f.addStudent(t, "stu@example.edu", 100)
	return f
}

func (f *fixture) addStudent(t *testing.T, email string, balance int64) models.User {
	t.Helper()
	u := models.User{UniversityID: f.univ.ID, Name: email, Email: email, Role: models.RoleStudent, WalletBalance: balance}
	must(t, f.store.CreateUser(f.ctx, &u))
	return u
}

// otherUniversity creates a second tenant with one stop.
func (f *fixture) otherUniversity(t *testing.T) (models.University, models.Stop) {
	t.Helper()
	u := models.University{Code: "OTH", Name: "Other", Domain: "other.edu"}
	must(t, f.store.CreateUniversity(f.ctx, &u))
	st := models.Stop{UniversityID: u.ID, Name: "Gate", Lat: 1, Lng: 1, Zone: "south"}
	must(t, f.store.CreateStop(f.ctx, &st))
	return u, st
}

func (f *fixture) balance(t *testing.T, userID uint) int64 {
	t.Helper()
	u, err := f.store.GetUser(f.ctx, userID)
	must(t, err)
	return u.WalletBalance
}

func (f *fixture) occupancy(t *testing.T) int {
	t.Helper()
	sh, err := f.store.GetShuttle(f.ctx, f.univ.ID, f.shuttle.ID)
	must(t, err)
	return sh.Occupancy
}

func (f *fixture) stopID(i int) uint { return f.stops[i].ID }

type recordedEvent struct {
	shuttleID uint
	occupancy int
	event     string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) PublishOccupancy(sh models.Shuttle, event string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{shuttleID: sh.ID, occupancy: sh.Occupancy, event: event})
}

func (p *recordingPublisher) last() recordedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return recordedEvent{}
	}
	return p.events[len(p.events)-1]
}
