// Package storetest provides an in-memory store.Store for tests.
package storetest

import (
	"context"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"campus_shuttle/internal/models"
	"campus_shuttle/internal/store"
)

// Memory keeps every table in maps keyed by id. Transactions snapshot the
// maps and restore them when fn fails.
type Memory struct {
	txMu sync.Mutex
	mu   sync.Mutex

	nextID       uint
	universities map[uint]models.University
	users        map[uint]models.User
	transactions map[uint]models.Transaction
	stops        map[uint]models.Stop
	routes       map[uint]models.Route
	shuttles     map[uint]models.Shuttle
	bookings     map[uint]models.Booking
	faults       map[string]error

	// Now stamps CreatedAt; tests may pin it.
	Now func() time.Time
}

var _ store.Store = (*Memory)(nil)

func New() *Memory {
	return &Memory{
		universities: map[uint]models.University{},
		users:        map[uint]models.User{},
		transactions: map[uint]models.Transaction{},
		stops:        map[uint]models.Stop{},
		routes:       map[uint]models.Route{},
		shuttles:     map[uint]models.Shuttle{},
		bookings:     map[uint]models.Booking{},
		faults:       map[string]error{},
		Now:          time.Now,
	}
}

// FailOn makes the next call of the named method return err.
func (m *Memory) FailOn(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faults[method] = err
}

// fault must be called with mu held.
func (m *Memory) fault(method string) error {
	if err, ok := m.faults[method]; ok {
		delete(m.faults, method)
		return err
	}
	return nil
}

func (m *Memory) id() uint {
	m.nextID++
	return m.nextID
}

type snapshot struct {
	nextID       uint
	universities map[uint]models.University
	users        map[uint]models.User
	transactions map[uint]models.Transaction
	stops        map[uint]models.Stop
	routes       map[uint]models.Route
	shuttles     map[uint]models.Shuttle
	bookings     map[uint]models.Booking
}

func (m *Memory) Transaction(ctx context.Context, fn func(tx store.Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snap := snapshot{
		nextID:       m.nextID,
		universities: maps.Clone(m.universities),
		users:        maps.Clone(m.users),
		transactions: maps.Clone(m.transactions),
		stops:        maps.Clone(m.stops),
		routes:       maps.Clone(m.routes),
		shuttles:     maps.Clone(m.shuttles),
		bookings:     maps.Clone(m.bookings),
	}
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.nextID = snap.nextID
		m.universities = snap.universities
		m.users = snap.users
		m.transactions = snap.transactions
		m.stops = snap.stops
		m.routes = snap.routes
		m.shuttles = snap.shuttles
		m.bookings = snap.bookings
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *Memory) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fault("Ping")
}

// Universities

func (m *Memory) CreateUniversity(ctx context.Context, u *models.University) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("CreateUniversity"); err != nil {
		return err
	}
	for _, other := range m.universities {
		if other.Code == u.Code {
			return store.ErrDuplicate
		}
	}
	u.ID = m.id()
	u.CreatedAt = m.Now()
	u.UpdatedAt = u.CreatedAt
	m.universities[u.ID] = *u
	return nil
}

func (m *Memory) GetUniversity(ctx context.Context, id uint) (*models.University, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.universities[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (m *Memory) GetUniversityByCode(ctx context.Context, code string) (*models.University, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.universities {
		if u.Code == code {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

// Users

func (m *Memory) CreateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("CreateUser"); err != nil {
		return err
	}
	for _, other := range m.users {
		if strings.EqualFold(other.Email, u.Email) {
			return store.ErrDuplicate
		}
	}
	u.ID = m.id()
	u.CreatedAt = m.Now()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = *u
	return nil
}

func (m *Memory) GetUser(ctx context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (m *Memory) GetUserInUniversity(ctx context.Context, universityID, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.UniversityID != universityID {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (m *Memory) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *Memory) ListUsers(ctx context.Context, universityID uint, role string) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.users {
		if u.UniversityID == universityID && (role == "" || u.Role == role) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) AdjustBalance(ctx context.Context, userID uint, delta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("AdjustBalance"); err != nil {
		return err
	}
	u, ok := m.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	if u.WalletBalance+delta < 0 {
		return store.ErrInsufficientBalance
	}
	u.WalletBalance += delta
	m.users[userID] = u
	return nil
}

// Transactions

func (m *Memory) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("CreateTransaction"); err != nil {
		return err
	}
	t.ID = m.id()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = m.Now()
	}
	m.transactions[t.ID] = *t
	return nil
}

func (m *Memory) ListTransactions(ctx context.Context, userID uint, since time.Time) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Transaction
	for _, t := range m.transactions {
		if t.UserID == userID && (since.IsZero() || !t.CreatedAt.Before(since)) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Transactions returns every ledger row, oldest first.
func (m *Memory) Transactions() []models.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Transaction, 0, len(m.transactions))
	for _, t := range m.transactions {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Stops

func (m *Memory) stopNameTaken(s *models.Stop) bool {
	for _, other := range m.stops {
		if other.ID != s.ID && other.UniversityID == s.UniversityID && other.Name == s.Name {
			return true
		}
	}
	return false
}

func (m *Memory) CreateStop(ctx context.Context, s *models.Stop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopNameTaken(s) {
		return store.ErrDuplicate
	}
	s.ID = m.id()
	s.CreatedAt = m.Now()
	s.UpdatedAt = s.CreatedAt
	m.stops[s.ID] = *s
	return nil
}

func (m *Memory) SaveStop(ctx context.Context, s *models.Stop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopNameTaken(s) {
		return store.ErrDuplicate
	}
	s.UpdatedAt = m.Now()
	m.stops[s.ID] = *s
	return nil
}

func (m *Memory) GetStop(ctx context.Context, universityID, id uint) (*models.Stop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stops[id]
	if !ok || s.UniversityID != universityID {
		return nil, store.ErrNotFound
	}
	return &s, nil
}

func (m *Memory) ListStops(ctx context.Context, universityID uint) ([]models.Stop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Stop
	for _, s := range m.stops {
		if s.UniversityID == universityID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) ListStopsByIDs(ctx context.Context, universityID uint, ids []uint) ([]models.Stop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Stop
	for _, id := range ids {
		if s, ok := m.stops[id]; ok && s.UniversityID == universityID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *Memory) StopLocationTaken(ctx context.Context, lat, lng float64, excludeID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.stops {
		if s.ID != excludeID && s.Lat == lat && s.Lng == lng {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) DeleteStop(ctx context.Context, universityID, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stops[id]
	if !ok || s.UniversityID != universityID {
		return store.ErrNotFound
	}
	delete(m.stops, id)
	return nil
}

// Routes

func (m *Memory) routeNameTaken(r *models.Route) bool {
	for _, other := range m.routes {
		if other.ID != r.ID && other.UniversityID == r.UniversityID && other.Name == r.Name {
			return true
		}
	}
	return false
}

func (m *Memory) CreateRoute(ctx context.Context, r *models.Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.routeNameTaken(r) {
		return store.ErrDuplicate
	}
	r.ID = m.id()
	r.CreatedAt = m.Now()
	r.UpdatedAt = r.CreatedAt
	m.routes[r.ID] = *r
	return nil
}

func (m *Memory) SaveRoute(ctx context.Context, r *models.Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.routeNameTaken(r) {
		return store.ErrDuplicate
	}
	r.UpdatedAt = m.Now()
	m.routes[r.ID] = *r
	return nil
}

func (m *Memory) GetRoute(ctx context.Context, universityID, id uint) (*models.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.routes[id]
	if !ok || r.UniversityID != universityID {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (m *Memory) ListRoutes(ctx context.Context, universityID uint) ([]models.Route, error) {
	return m.ListRoutesWithStops(ctx, universityID)
}

func (m *Memory) ListRoutesWithStops(ctx context.Context, universityID uint, stopIDs ...uint) ([]models.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Route
	for _, r := range m.routes {
		if r.UniversityID != universityID {
			continue
		}
		all := true
		for _, id := range stopIDs {
			if r.StopIndex(id) < 0 {
				all = false
				break
			}
		}
		if all {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) DeleteRoute(ctx context.Context, universityID, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.routes[id]
	if !ok || r.UniversityID != universityID {
		return store.ErrNotFound
	}
	delete(m.routes, id)
	return nil
}

// Shuttles

func (m *Memory) shuttleNumberTaken(s *models.Shuttle) bool {
	for _, other := range m.shuttles {
		if other.ID != s.ID && other.Number == s.Number {
			return true
		}
	}
	return false
}

func (m *Memory) CreateShuttle(ctx context.Context, s *models.Shuttle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shuttleNumberTaken(s) {
		return store.ErrDuplicate
	}
	s.ID = m.id()
	s.CreatedAt = m.Now()
	s.UpdatedAt = s.CreatedAt
	m.shuttles[s.ID] = *s
	return nil
}

func (m *Memory) SaveShuttle(ctx context.Context, s *models.Shuttle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shuttleNumberTaken(s) {
		return store.ErrDuplicate
	}
	cur, ok := m.shuttles[s.ID]
	if !ok {
		return store.ErrNotFound
	}
	if cur.Occupancy > s.Capacity {
		return store.ErrOccupancyBounds
	}
	s.Occupancy = cur.Occupancy
	s.UpdatedAt = m.Now()
	m.shuttles[s.ID] = *s
	return nil
}

func (m *Memory) GetShuttle(ctx context.Context, universityID, id uint) (*models.Shuttle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shuttles[id]
	if !ok || s.UniversityID != universityID {
		return nil, store.ErrNotFound
	}
	return &s, nil
}

func (m *Memory) onRoute(universityID, routeID uint) []models.Shuttle {
	var out []models.Shuttle
	for _, s := range m.shuttles {
		if s.UniversityID == universityID && s.CurrentRouteID != nil && *s.CurrentRouteID == routeID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *Memory) GetShuttleOnRoute(ctx context.Context, universityID, routeID uint) (*models.Shuttle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	on := m.onRoute(universityID, routeID)
	if len(on) == 0 {
		return nil, store.ErrNotFound
	}
	return &on[0], nil
}

func (m *Memory) ListShuttles(ctx context.Context, universityID uint) ([]models.Shuttle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Shuttle
	for _, s := range m.shuttles {
		if s.UniversityID == universityID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (m *Memory) CountShuttlesOnRoute(ctx context.Context, universityID, routeID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.onRoute(universityID, routeID))), nil
}

func (m *Memory) DeleteShuttle(ctx context.Context, universityID, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shuttles[id]
	if !ok || s.UniversityID != universityID {
		return store.ErrNotFound
	}
	delete(m.shuttles, id)
	return nil
}

func (m *Memory) TakeSeat(ctx context.Context, shuttleID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("TakeSeat"); err != nil {
		return err
	}
	s, ok := m.shuttles[shuttleID]
	if !ok {
		return store.ErrNotFound
	}
	if s.Occupancy >= s.Capacity {
		return store.ErrShuttleFull
	}
	s.Occupancy++
	m.shuttles[shuttleID] = s
	return nil
}

func (m *Memory) ReleaseSeat(ctx context.Context, shuttleID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shuttles[shuttleID]
	if !ok || s.Occupancy == 0 {
		return false, nil
	}
	s.Occupancy--
	m.shuttles[shuttleID] = s
	return true, nil
}

func (m *Memory) SetOccupancy(ctx context.Context, universityID, shuttleID uint, occupancy int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shuttles[shuttleID]
	if !ok || s.UniversityID != universityID {
		return store.ErrNotFound
	}
	if occupancy < 0 || occupancy > s.Capacity {
		return store.ErrOccupancyBounds
	}
	s.Occupancy = occupancy
	m.shuttles[shuttleID] = s
	return nil
}

// Bookings

func (m *Memory) CreateBooking(ctx context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("CreateBooking"); err != nil {
		return err
	}
	b.ID = m.id()
	b.CreatedAt = m.Now()
	b.UpdatedAt = b.CreatedAt
	m.bookings[b.ID] = *b
	return nil
}

func (m *Memory) GetBookingForUser(ctx context.Context, userID, id uint) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.UserID != userID {
		return nil, store.ErrNotFound
	}
	return &b, nil
}

func (m *Memory) ListBookings(ctx context.Context, userID uint, status string, upcomingFirst bool) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if b.UserID == userID && (status == "" || b.Status == status) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if upcomingFirst {
			return out[i].RideStartTime.Before(out[j].RideStartTime)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *Memory) ListBookingsDue(ctx context.Context, status string, t time.Time) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if b.Status != status {
			continue
		}
		at := b.RideEndTime
		if status == models.BookingUpcoming {
			at = b.RideStartTime
		}
		if !at.After(t) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) TransitionBooking(ctx context.Context, id uint, from, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.Status != from {
		return store.ErrStaleBooking
	}
	b.Status = to
	m.bookings[id] = b
	return nil
}
