package services

import (
	"context"
	"errors"
	"strings"

	"campus_shuttle/internal/models"
	"campus_shuttle/internal/store"
)

type ShuttleInput struct {
	ShuttleNumber   string `json:"shuttle_number" binding:"required"`
	Capacity        int    `json:"capacity" binding:"required,gt=0"`
	Active          *bool  `json:"active"`
	CurrentRouteID  *uint  `json:"current_route_id"`
	CurrentLocation string `json:"current_location"`
}

// ShuttleUpdate is a partial update; nil fields are left alone. A
// CurrentRouteID of zero takes the shuttle off its route.
type ShuttleUpdate struct {
	ShuttleNumber   *string `json:"shuttle_number"`
	Capacity        *int    `json:"capacity"`
	Active          *bool   `json:"active"`
	CurrentRouteID  *uint   `json:"current_route_id"`
	CurrentLocation *string `json:"current_location"`
}

type ShuttleService struct {
	store     store.Store
	publisher OccupancyPublisher
}

func NewShuttleService(s store.Store, pub OccupancyPublisher) *ShuttleService {
	return &ShuttleService{store: s, publisher: pub}
}

func (s *ShuttleService) Create(ctx context.Context, universityID uint, in ShuttleInput) (*models.Shuttle, error) {
	number := strings.TrimSpace(in.ShuttleNumber)
	if number == "" || in.Capacity <= 0 {
		return nil, ValidationError{Msg: "Shuttle number and a positive capacity are required"}
	}
	shuttle := models.Shuttle{
		UniversityID: universityID,
		Number:       number,
		Capacity:     in.Capacity,
		Active:       true,
		Location:     strings.TrimSpace(in.CurrentLocation),
	}
	if in.Active != nil {
		shuttle.Active = *in.Active
	}
	if err := s.assignRoute(ctx, universityID, &shuttle, in.CurrentRouteID); err != nil {
		return nil, err
	}
	if err := s.store.CreateShuttle(ctx, &shuttle); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, RuleError{Msg: "Shuttle number already exists", Err: err}
		}
		return nil, err
	}
	return &shuttle, nil
}

func (s *ShuttleService) List(ctx context.Context, universityID uint) ([]models.Shuttle, error) {
	return s.store.ListShuttles(ctx, universityID)
}

func (s *ShuttleService) Get(ctx context.Context, universityID, id uint) (*models.Shuttle, error) {
	shuttle, err := s.store.GetShuttle(ctx, universityID, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFoundError{Resource: "Shuttle"}
	}
	return shuttle, err
}

func (s *ShuttleService) Update(ctx context.Context, universityID, id uint, in ShuttleUpdate) (*models.Shuttle, error) {
	return s.update(ctx, universityID, id, in, EventUpdated)
}

func (s *ShuttleService) update(ctx context.Context, universityID, id uint, in ShuttleUpdate, event string) (*models.Shuttle, error) {
	shuttle, err := s.Get(ctx, universityID, id)
	if err != nil {
		return nil, err
	}
	if in.ShuttleNumber != nil {
		number := strings.TrimSpace(*in.ShuttleNumber)
		if number == "" {
			return nil, ValidationError{Msg: "Shuttle number cannot be empty"}
		}
		shuttle.Number = number
	}
	if in.Capacity != nil {
		if *in.Capacity <= 0 || *in.Capacity < shuttle.Occupancy {
			return nil, ValidationError{Msg: "Capacity must be positive and not below current occupancy"}
		}
		shuttle.Capacity = *in.Capacity
	}
	if in.Active != nil {
		shuttle.Active = *in.Active
	}
	if in.CurrentLocation != nil {
		shuttle.Location = strings.TrimSpace(*in.CurrentLocation)
	}
	if err := s.assignRoute(ctx, universityID, shuttle, in.CurrentRouteID); err != nil {
		return nil, err
	}
	if err := s.store.SaveShuttle(ctx, shuttle); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, RuleError{Msg: "Shuttle number already exists", Err: err}
		}
		if errors.Is(err, store.ErrOccupancyBounds) {
			return nil, ValidationError{Msg: "Capacity must be positive and not below current occupancy"}
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFoundError{Resource: "Shuttle"}
		}
		return nil, err
	}
	publishShuttle(ctx, s.publisher, s.store, universityID, shuttle.ID, event)
	return shuttle, nil
}

func (s *ShuttleService) Delete(ctx context.Context, universityID, id uint) error {
	err := s.store.DeleteShuttle(ctx, universityID, id)
	if errors.Is(err, store.ErrNotFound) {
		return NotFoundError{Resource: "Shuttle"}
	}
	return err
}

func (s *ShuttleService) SetStatus(ctx context.Context, universityID, id uint, active bool) (*models.Shuttle, error) {
	return s.update(ctx, universityID, id, ShuttleUpdate{Active: &active}, EventStatusChanged)
}

// SetOccupancy overwrites the seat count, bounded by 0..capacity.
func (s *ShuttleService) SetOccupancy(ctx context.Context, universityID, id uint, occupancy int) (*models.Shuttle, error) {
	err := s.store.SetOccupancy(ctx, universityID, id, occupancy)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, NotFoundError{Resource: "Shuttle"}
	case errors.Is(err, store.ErrOccupancyBounds):
		return nil, ValidationError{Msg: "Occupancy must be between 0 and capacity"}
	case err != nil:
		return nil, err
	}
	publishShuttle(ctx, s.publisher, s.store, universityID, id, EventOccupancySet)
	return s.Get(ctx, universityID, id)
}

func (s *ShuttleService) assignRoute(ctx context.Context, universityID uint, shuttle *models.Shuttle, routeID *uint) error {
	if routeID == nil {
		return nil
	}
	if *routeID == 0 {
		shuttle.CurrentRouteID = nil
		return nil
	}
	if _, err := s.store.GetRoute(ctx, universityID, *routeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ValidationError{Msg: "Route does not belong to your university"}
		}
		return err
	}
	id := *routeID
	shuttle.CurrentRouteID = &id
	return nil
}
