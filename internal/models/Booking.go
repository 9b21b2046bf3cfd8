package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	BookingUpcoming   = "upcoming"
	BookingInProgress = "in-progress"
	BookingCompleted  = "completed"
	BookingCancelled  = "cancelled"
)

type Booking struct {
	gorm.Model
	UserID            uint      `json:"user_id" gorm:"index;not null"`
	ShuttleID         uint      `json:"shuttle_id" gorm:"index;not null"`
	RouteID           uint      `json:"route_id" gorm:"not null"`
	SourceStopID      uint      `json:"source_stop_id" gorm:"not null"`
	DestinationStopID uint      `json:"destination_stop_id" gorm:"not null"`
	Fare              int64     `json:"fare" gorm:"not null"`
	BookedAt          time.Time `json:"booked_at"`
	RideStartTime     time.Time `json:"ride_start_time" gorm:"index"`
	RideEndTime       time.Time `json:"ride_end_time"`
	Status            string    `json:"status" gorm:"index;not null"`
}
