package models

import "gorm.io/gorm"

type Shuttle struct {
	gorm.Model
	UniversityID   uint   `json:"university_id" gorm:"index;not null"`
	Number         string `json:"shuttle_number" gorm:"uniqueIndex;not null"`
	Capacity       int    `json:"capacity" gorm:"not null;check:chk_shuttles_capacity,capacity > 0"`
	Occupancy      int    `json:"occupancy" gorm:"not null;default:0;check:chk_shuttles_occupancy,occupancy >= 0 AND occupancy <= capacity"`
	Active         bool   `json:"active" gorm:"not null"`
	CurrentRouteID *uint  `json:"current_route_id" gorm:"index"`
	Location       string `json:"current_location"`
}

func (s Shuttle) FreeSeats() int { return s.Capacity - s.Occupancy }
