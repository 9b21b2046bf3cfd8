package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"campus_shuttle/internal/fare"
	"campus_shuttle/internal/geo"
	"campus_shuttle/internal/models"
	"campus_shuttle/internal/store"
)

type RouteInput struct {
	Name         string              `json:"name" binding:"required"`
	Stops        []uint              `json:"stops" binding:"required,min=2"`
	TimingSlots  []models.TimingSlot `json:"timing_slots" binding:"required,min=1,dive"`
	OptimizedFor []string            `json:"optimized_for"`
}

type StopRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// RouteView is a route with its stops named and its geometry as GeoJSON.
type RouteView struct {
	models.Route
	Stops   []StopRef       `json:"stops"`
	GeoJSON json.RawMessage `json:"geometry,omitempty"`
}

// RouteMatch is one bookable candidate for a source/destination pair.
type RouteMatch struct {
	RouteID        uint      `json:"route_id"`
	RouteName      string    `json:"route_name"`
	ShuttleNumber  string    `json:"shuttle_number"`
	AllStops       []StopRef `json:"all_stops"`
	Fare           int64     `json:"fare"`
	EstimatedTime  string    `json:"estimated_time"`
	ArrivalTime    string    `json:"arrival_time"`
	AvailableSeats string    `json:"available_seats"` // free/capacity
	Occupancy      string    `json:"occupancy"`       // used/capacity
}

type RouteService struct {
	store store.Store
	Now   func() time.Time
}

func NewRouteService(s store.Store) *RouteService {
	return &RouteService{store: s, Now: time.Now}
}

// BestRoutes lists the routes of the university that run from src to dst in
// order and have an active shuttle with a free seat, sorted by route name.
func (s *RouteService) BestRoutes(ctx context.Context, universityID, src, dst uint) ([]RouteMatch, error) {
	if src == 0 || dst == 0 || src == dst {
		return nil, ValidationError{Msg: "Source and destination are required and must differ"}
	}
	routes, err := s.store.ListRoutesWithStops(ctx, universityID, src, dst)
	if err != nil {
		return nil, err
	}
	if len(routes) == 0 {
		return nil, NotFoundError{Msg: "No routes found for the selected stops"}
	}
	names, err := s.stopNames(ctx, universityID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	var matches []RouteMatch
	for _, r := range routes {
		price, err := fare.Fare(r, src, dst)
		if err != nil {
			continue
		}
		shuttle, err := s.store.GetShuttleOnRoute(ctx, universityID, r.ID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !shuttle.Active || shuttle.Occupancy >= shuttle.Capacity {
			continue
		}
		travel, err := fare.TravelTime(r, src, dst)
		if err != nil {
			continue
		}
		arrival, err := fare.ArrivalAt(r, src, now)
		if err != nil {
			logrus.WithError(err).WithField("route_id", r.ID).Debug("BestRoutes: route has no usable timing slot")
			continue
		}
		matches = append(matches, RouteMatch{
			RouteID:        r.ID,
			RouteName:      r.Name,
			ShuttleNumber:  shuttle.Number,
			AllStops:       stopRefs(r.StopIDs, names),
			Fare:           price,
			EstimatedTime:  fare.FormatMinutes(travel),
			ArrivalTime:    fare.FormatClock(arrival),
			AvailableSeats: fmt.Sprintf("%d/%d", shuttle.FreeSeats(), shuttle.Capacity),
			Occupancy:      fmt.Sprintf("%d/%d", shuttle.Occupancy, shuttle.Capacity),
		})
	}
	if len(matches) == 0 {
		return nil, NotFoundError{Msg: "No valid routes found in correct stop order"}
	}
	return matches, nil
}

func (s *RouteService) Create(ctx context.Context, universityID uint, in RouteInput) (*RouteView, error) {
	if err := validateRouteInput(in); err != nil {
		return nil, err
	}
	stops, err := s.resolveStops(ctx, universityID, in.Stops)
	if err != nil {
		return nil, err
	}
	route := models.Route{UniversityID: universityID}
	if err := applyRouteInput(&route, in, stops); err != nil {
		return nil, err
	}
	if err := s.store.CreateRoute(ctx, &route); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, RuleError{Msg: "Route with this name already exists", Err: err}
		}
		return nil, err
	}
	return routeView(route, stopNameMap(stops)), nil
}

func (s *RouteService) List(ctx context.Context, universityID uint) ([]RouteView, error) {
	routes, err := s.store.ListRoutes(ctx, universityID)
	if err != nil {
		return nil, err
	}
	names, err := s.stopNames(ctx, universityID)
	if err != nil {
		return nil, err
	}
	out := make([]RouteView, 0, len(routes))
	for _, r := range routes {
		out = append(out, *routeView(r, names))
	}
	return out, nil
}

func (s *RouteService) Get(ctx context.Context, universityID, id uint) (*RouteView, error) {
	route, err := s.store.GetRoute(ctx, universityID, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFoundError{Resource: "Route"}
	}
	if err != nil {
		return nil, err
	}
	names, err := s.stopNames(ctx, universityID)
	if err != nil {
		return nil, err
	}
	return routeView(*route, names), nil
}

// Update replaces the route's name, stops, slots and tags.
func (s *RouteService) Update(ctx context.Context, universityID, id uint, in RouteInput) (*RouteView, error) {
	if err := validateRouteInput(in); err != nil {
		return nil, err
	}
	route, err := s.store.GetRoute(ctx, universityID, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFoundError{Resource: "Route"}
	}
	if err != nil {
		return nil, err
	}
	stops, err := s.resolveStops(ctx, universityID, in.Stops)
	if err != nil {
		return nil, err
	}
	if err := applyRouteInput(route, in, stops); err != nil {
		return nil, err
	}
	if err := s.store.SaveRoute(ctx, route); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, RuleError{Msg: "Route with this name already exists", Err: err}
		}
		return nil, err
	}
	return routeView(*route, stopNameMap(stops)), nil
}

// Delete removes a route no shuttle is assigned to.
func (s *RouteService) Delete(ctx context.Context, universityID, id uint) error {
	return s.store.Transaction(ctx, func(tx store.Store) error {
		if _, err := tx.GetRoute(ctx, universityID, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return NotFoundError{Resource: "Route"}
			}
			return err
		}
		n, err := tx.CountShuttlesOnRoute(ctx, universityID, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return RuleError{Msg: "Cannot delete route while a shuttle is assigned to it"}
		}
		return tx.DeleteRoute(ctx, universityID, id)
	})
}

func validateRouteInput(in RouteInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return ValidationError{Msg: "Route name is required"}
	}
	if len(in.Stops) < 2 {
		return ValidationError{Msg: "A route needs at least two stops"}
	}
	seen := make(map[uint]bool, len(in.Stops))
	for _, id := range in.Stops {
		if id == 0 || seen[id] {
			return ValidationError{Msg: "Route stops must be distinct stop ids"}
		}
		seen[id] = true
	}
	if len(in.TimingSlots) == 0 {
		return ValidationError{Msg: "At least one timing slot is required"}
	}
	for _, slot := range in.TimingSlots {
		start, err1 := time.Parse("15:04", slot.StartTime)
		end, err2 := time.Parse("15:04", slot.EndTime)
		if err1 != nil || err2 != nil || !end.After(start) {
			return ValidationError{Msg: "Each timing slot needs a start_time before its end_time (HH:MM)"}
		}
		if len(slot.Days) == 0 {
			return ValidationError{Msg: "Each timing slot needs at least one day"}
		}
		for _, d := range slot.Days {
			if _, ok := fare.ParseWeekday(d); !ok {
				return ValidationError{Msg: fmt.Sprintf("Unknown day %q in timing slot", d)}
			}
		}
	}
	return nil
}

func applyRouteInput(route *models.Route, in RouteInput, stops []models.Stop) error {
	line, err := geo.LineThroughStops(stops)
	if err != nil {
		return ValidationError{Msg: err.Error()}
	}
	ids := make(pq.Int64Array, len(in.Stops))
	for i, id := range in.Stops {
		ids[i] = int64(id)
	}
	route.Name = strings.TrimSpace(in.Name)
	route.StopIDs = ids
	route.TimingSlots = datatypes.NewJSONSlice(in.TimingSlots)
	route.OptimizedFor = pq.StringArray(in.OptimizedFor)
	route.Geometry = line
	return nil
}

// resolveStops loads ids from the university, preserving their order.
func (s *RouteService) resolveStops(ctx context.Context, universityID uint, ids []uint) ([]models.Stop, error) {
	found, err := s.store.ListStopsByIDs(ctx, universityID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Stop, len(found))
	for _, st := range found {
		byID[st.ID] = st
	}
	ordered := make([]models.Stop, 0, len(ids))
	for _, id := range ids {
		st, ok := byID[id]
		if !ok {
			return nil, ValidationError{Msg: "All stops must belong to your university"}
		}
		ordered = append(ordered, st)
	}
	return ordered, nil
}

func (s *RouteService) stopNames(ctx context.Context, universityID uint) (map[uint]string, error) {
	stops, err := s.store.ListStops(ctx, universityID)
	if err != nil {
		return nil, err
	}
	return stopNameMap(stops), nil
}

func stopNameMap(stops []models.Stop) map[uint]string {
	names := make(map[uint]string, len(stops))
	for _, st := range stops {
		names[st.ID] = st.Name
	}
	return names
}

func stopRefs(ids pq.Int64Array, names map[uint]string) []StopRef {
	refs := make([]StopRef, len(ids))
	for i, id := range ids {
		refs[i] = StopRef{ID: uint(id), Name: names[uint(id)]}
	}
	return refs
}

func routeView(r models.Route, names map[uint]string) *RouteView {
	gj, err := geo.GeoJSON(r.Geometry)
	if err != nil {
		logrus.WithError(err).WithField("route_id", r.ID).Warn("routeView: stored geometry is not valid WKB")
	}
	return &RouteView{Route: r, Stops: stopRefs(r.StopIDs, names), GeoJSON: gj}
}
