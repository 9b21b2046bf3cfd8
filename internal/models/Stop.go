package models

import "gorm.io/gorm"

type Stop struct {
	gorm.Model
	UniversityID uint    `json:"university_id" gorm:"not null;uniqueIndex:idx_stops_university_name"`
	Name         string  `json:"name" gorm:"not null;uniqueIndex:idx_stops_university_name"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	Zone         string  `json:"campus_zone"`
}
