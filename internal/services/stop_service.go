package services

import (
	"context"
	"errors"
	"strings"

	"campus_shuttle/internal/models"
	"campus_shuttle/internal/store"
)

type Location struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

type StopInput struct {
	Name       string   `json:"name" binding:"required"`
	Location   Location `json:"location"`
	CampusZone string   `json:"campus_zone" binding:"required"`
}

type StopService struct {
	store store.Store
}

func NewStopService(s store.Store) *StopService {
	return &StopService{store: s}
}

func validateStopInput(in StopInput) error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.CampusZone) == "" {
		return ValidationError{Msg: "Name, location and campus zone are required"}
	}
	if in.Location.Lat == nil || in.Location.Lng == nil {
		return ValidationError{Msg: "Name, location and campus zone are required"}
	}
	if lat, lng := *in.Location.Lat, *in.Location.Lng; lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return ValidationError{Msg: "Location is out of range"}
	}
	return nil
}

var errStopExists = RuleError{Msg: "Stop already exists"}

func (s *StopService) Create(ctx context.Context, universityID uint, in StopInput) (*models.Stop, error) {
	if err := validateStopInput(in); err != nil {
		return nil, err
	}
	taken, err := s.store.StopLocationTaken(ctx, *in.Location.Lat, *in.Location.Lng, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errStopExists
	}
	stop := models.Stop{
		UniversityID: universityID,
		Name:         strings.TrimSpace(in.Name),
		Lat:          *in.Location.Lat,
		Lng:          *in.Location.Lng,
		Zone:         strings.TrimSpace(in.CampusZone),
	}
	if err := s.store.CreateStop(ctx, &stop); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, errStopExists
		}
		return nil, err
	}
	return &stop, nil
}

// List returns the university's stops; an empty list is reported as not found.
func (s *StopService) List(ctx context.Context, universityID uint) ([]models.Stop, error) {
	stops, err := s.store.ListStops(ctx, universityID)
	if err != nil {
		return nil, err
	}
	if len(stops) == 0 {
		return nil, NotFoundError{Msg: "No stops found"}
	}
	return stops, nil
}

func (s *StopService) Get(ctx context.Context, universityID, id uint) (*models.Stop, error) {
	stop, err := s.store.GetStop(ctx, universityID, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFoundError{Resource: "Stop"}
	}
	return stop, err
}

func (s *StopService) Update(ctx context.Context, universityID, id uint, in StopInput) (*models.Stop, error) {
	if err := validateStopInput(in); err != nil {
		return nil, err
	}
	stop, err := s.Get(ctx, universityID, id)
	if err != nil {
		return nil, err
	}
	taken, err := s.store.StopLocationTaken(ctx, *in.Location.Lat, *in.Location.Lng, stop.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errStopExists
	}
	stop.Name = strings.TrimSpace(in.Name)
	stop.Lat = *in.Location.Lat
	stop.Lng = *in.Location.Lng
	stop.Zone = strings.TrimSpace(in.CampusZone)
	if err := s.store.SaveStop(ctx, stop); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, errStopExists
		}
		return nil, err
	}
	return stop, nil
}

// Delete removes a stop that no route visits.
func (s *StopService) Delete(ctx context.Context, universityID, id uint) error {
	return s.store.Transaction(ctx, func(tx store.Store) error {
		if _, err := tx.GetStop(ctx, universityID, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return NotFoundError{Resource: "Stop"}
			}
			return err
		}
		routes, err := tx.ListRoutesWithStops(ctx, universityID, id)
		if err != nil {
			return err
		}
		if len(routes) > 0 {
			return RuleError{Msg: "Cannot delete stop while a route uses it"}
		}
		return tx.DeleteStop(ctx, universityID, id)
	})
}
