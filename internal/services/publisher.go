package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"campus_shuttle/internal/models"
	"campus_shuttle/internal/store"
)

const (
	EventBooked        = "booked"
	EventCancelled     = "cancelled"
	EventRideCompleted = "ride_completed"
	EventOccupancySet  = "occupancy_set"
	EventStatusChanged = "status_changed"
	EventUpdated       = "updated"
)

// OccupancyPublisher receives shuttle state after every seat or status change.
type OccupancyPublisher interface {
	PublishOccupancy(shuttle models.Shuttle, event string)
}

// publishShuttle reloads the shuttle and hands it to pub. Failures are logged
// only; the change is already committed.
func publishShuttle(ctx context.Context, pub OccupancyPublisher, s store.Store, universityID, shuttleID uint, event string) {
	if pub == nil {
		return
	}
	shuttle, err := s.GetShuttle(ctx, universityID, shuttleID)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"university_id": universityID,
			"shuttle_id":    shuttleID,
			"event":         event,
		}).Warn("publishShuttle: could not reload shuttle")
		return
	}
	pub.PublishOccupancy(*shuttle, event)
}
