package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"gorm.io/datatypes"

	"campus_shuttle/internal/auth"
	"campus_shuttle/internal/models"
	"campus_shuttle/internal/realtime"
	"campus_shuttle/internal/store/storetest"
)

func init() { gin.SetMode(gin.TestMode) }

var monday7am = time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)

type env struct {
	t      *testing.T
	router *gin.Engine
	store  *storetest.Memory
	stops  []models.Stop
	route  models.Route
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	s := storetest.New()
	e := &env{t: t, store: s}

	univ := models.University{Code: "EXU", Name: "Example", Domain: "example.edu", AdminEmails: pq.StringArray{"admin@example.edu"}}
	if err := s.CreateUniversity(ctx, &univ); err != nil {
		t.Fatalf("seed university: %v", err)
	}
	ids := pq.Int64Array{}
	for i, name := range []string{"A", "B", "C"} {
		st := models.Stop{UniversityID: univ.ID, Name: name, Lat: 23 + float64(i)/100, Lng: 80, Zone: "north"}
		if err := s.CreateStop(ctx, &st); err != nil {
			t.Fatalf("seed stop: %v", err)
		}
		e.stops = append(e.stops, st)
		ids = append(ids, int64(st.ID))
	}
	e.route = models.Route{
		UniversityID: univ.ID,
		Name:         "Morning Loop",
		StopIDs:      ids,
		TimingSlots:  datatypes.NewJSONSlice([]models.TimingSlot{{StartTime: "08:00", EndTime: "09:00", Days: []string{"Mon"}}}),
	}
	if err := s.CreateRoute(ctx, &e.route); err != nil {
		t.Fatalf("seed route: %v", err)
	}
	routeID := e.route.ID
	sh := models.Shuttle{UniversityID: univ.ID, Number: "SH-1", Capacity: 2, Active: true, CurrentRouteID: &routeID}
	if err := s.CreateShuttle(ctx, &sh); err != nil {
		t.Fatalf("seed shuttle: %v", err)
	}

	e.router = SetupRouter(Deps{
		Store:  s,
		Tokens: auth.NewTokenManager("routes-test", time.Hour),
		Hub:    realtime.NewHub(16),
		Now:    func() time.Time { return monday7am },
	})
	return e
}

func (e *env) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			e.t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func (e *env) signup(email string) string {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Someone", "email": email, "password": "secret1", "university_code": "EXU",
	})
	if w.Code != http.StatusCreated {
		e.t.Fatalf("register %s: %d %s", email, w.Code, w.Body.String())
	}
	w = e.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": "secret1"})
	if w.Code != http.StatusOK {
		e.t.Fatalf("login %s: %d %s", email, w.Code, w.Body.String())
	}
	return decode(e.t, w)["token"].(string)
}

func TestBookingFlow(t *testing.T) {
	e := newEnv(t)
	token := e.signup("stu@example.edu")

	w := e.do(http.MethodPost, "/api/booking", token, map[string]uint{
		"source_stop_id": e.stops[1].ID, "destination_stop_id": e.stops[2].ID, "route_id": e.route.ID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("book: %d %s", w.Code, w.Body.String())
	}
	booked := decode(t, w)
	if booked["fare"].(float64) != 10 || booked["estimated_time"] != "5 mins" {
		t.Fatalf("receipt = %v", booked)
	}
	bookingID := booked["booking"].(map[string]any)["ID"].(float64)

	w = e.do(http.MethodGet, "/api/wallet/get", token, nil)
	if got := decode(t, w)["wallet_balance"].(float64); got != 490 {
		t.Fatalf("balance after booking = %v", got)
	}

	w = e.do(http.MethodGet, "/api/booking/upcoming", token, nil)
	if list := decode(t, w)["bookings"].([]any); len(list) != 1 {
		t.Fatalf("upcoming = %v", list)
	}

	w = e.do(http.MethodGet, "/api/booking/"+jsonID(bookingID)+"/ticket", token, nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("ticket: %d %s", w.Code, w.Header().Get("Content-Type"))
	}

	w = e.do(http.MethodPost, "/api/booking/cancel", token, map[string]any{"booking_id": bookingID})
	if w.Code != http.StatusOK {
		t.Fatalf("cancel: %d %s", w.Code, w.Body.String())
	}
	w = e.do(http.MethodPost, "/api/booking/cancel", token, map[string]any{"booking_id": bookingID})
	body := decode(t, w)
	if w.Code != http.StatusBadRequest || body["error"] != "Only upcoming rides can be cancelled" || body["request_id"] == "" {
		t.Fatalf("second cancel: %d %v", w.Code, body)
	}

	w = e.do(http.MethodGet, "/api/wallet/statement?period=month", token, nil)
	statement := decode(t, w)
	if statement["wallet_balance"].(float64) != 500 || len(statement["transactions"].([]any)) != 3 {
		t.Fatalf("statement = %v", statement)
	}
}

func TestBookingErrors(t *testing.T) {
	e := newEnv(t)
	token := e.signup("stu@example.edu")

	w := e.do(http.MethodPost, "/api/booking", token, map[string]uint{
		"source_stop_id": e.stops[2].ID, "destination_stop_id": e.stops[0].ID, "route_id": e.route.ID,
	})
	if w.Code != http.StatusBadRequest || decode(t, w)["message"] != "Invalid stop order for selected route" {
		t.Fatalf("reverse: %d %s", w.Code, w.Body.String())
	}

	w = e.do(http.MethodPost, "/api/booking", token, map[string]uint{
		"source_stop_id": e.stops[0].ID, "destination_stop_id": e.stops[1].ID, "route_id": 999,
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown route: %d %s", w.Code, w.Body.String())
	}

	w = e.do(http.MethodPost, "/api/booking", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: %d", w.Code)
	}
}

func TestBestRoutesEndpoint(t *testing.T) {
	e := newEnv(t)
	token := e.signup("stu@example.edu")

	w := e.do(http.MethodPost, "/api/route/best-routes", token, map[string]uint{"source": e.stops[0].ID, "destination": e.stops[2].ID})
	if w.Code != http.StatusOK {
		t.Fatalf("best-routes: %d %s", w.Code, w.Body.String())
	}
	matches := decode(t, w)["best_routes"].([]any)
	m := matches[0].(map[string]any)
	if m["fare"].(float64) != 20 || m["arrival_time"] != "08:00" || m["available_seats"] != "2/2" {
		t.Fatalf("match = %v", m)
	}
}

func TestAdminAccess(t *testing.T) {
	e := newEnv(t)
	student := e.signup("stu@example.edu")
	admin := e.signup("admin@example.edu")

	if w := e.do(http.MethodGet, "/api/admin/users", student, nil); w.Code != http.StatusForbidden {
		t.Fatalf("student on admin route: %d", w.Code)
	}

	self, err := e.store.GetUserByEmail(context.Background(), "stu@example.edu")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	w := e.do(http.MethodPut, "/api/wallet/update", student, map[string]any{"user_id": self.ID, "amount": 100000, "description": "free"})
	if w.Code != http.StatusForbidden || decode(t, w)["error"] != "Access denied: Admins only" {
		t.Fatalf("student self-credit: %d %s", w.Code, w.Body.String())
	}
	w = e.do(http.MethodGet, "/api/wallet/get", student, nil)
	if got := decode(t, w)["wallet_balance"].(float64); got != 500 {
		t.Fatalf("balance after rejected self-credit = %v", got)
	}

	w = e.do(http.MethodGet, "/api/admin/users", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin users: %d %s", w.Code, w.Body.String())
	}
	if users := decode(t, w)["users"].([]any); len(users) != 1 {
		t.Fatalf("users = %v", users)
	}

	w = e.do(http.MethodPut, "/api/wallet/update-all", admin, map[string]any{"amount": 25, "description": "festival"})
	if w.Code != http.StatusOK || decode(t, w)["updated"].(float64) != 1 {
		t.Fatalf("update-all: %d %s", w.Code, w.Body.String())
	}

	w = e.do(http.MethodPost, "/api/route", admin, map[string]any{
		"name":  "Night",
		"stops": []uint{e.stops[0].ID, e.stops[1].ID},
		"timing_slots": []map[string]any{
			{"start_time": "25:00", "end_time": "26:00", "days": []string{"Mon"}},
		},
	})
	if w.Code != http.StatusBadRequest || !strings.Contains(decode(t, w)["error"].(string), "start_time") {
		t.Fatalf("bad slot: %d %s", w.Code, w.Body.String())
	}

	w = e.do(http.MethodDelete, "/api/route/"+jsonID(float64(e.route.ID)), admin, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("delete assigned route: %d %s", w.Code, w.Body.String())
	}

	w = e.do(http.MethodPatch, "/api/shuttle/abc/status", admin, map[string]bool{"active": false})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	if w := e.do(http.MethodGet, "/api/health", "", nil); w.Code != http.StatusOK {
		t.Fatalf("health: %d", w.Code)
	}
	e.store.FailOn("Ping", context.DeadlineExceeded)
	w := e.do(http.MethodGet, "/api/health", "", nil)
	if w.Code != http.StatusInternalServerError || decode(t, w)["error"] != "Server Error" {
		t.Fatalf("failing health: %d %s", w.Code, w.Body.String())
	}
}

func jsonID(id float64) string {
	b, _ := json.Marshal(uint(id))
	return string(b)
}
