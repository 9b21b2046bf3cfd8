package models

import (
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TimingSlot is one recurring service window of a route.
type TimingSlot struct {
	StartTime string   `json:"start_time" binding:"required,hhmm"`
	EndTime   string   `json:"end_time" binding:"required,hhmm"`
	Days      []string `json:"days" binding:"required,min=1,dive,weekday"`
}

// Route is an ordered list of stops; the order is the travel direction.
type Route struct {
	gorm.Model
	UniversityID uint                            `json:"university_id" gorm:"not null;uniqueIndex:idx_routes_university_name"`
	Name         string                          `json:"name" gorm:"not null;uniqueIndex:idx_routes_university_name"`
	StopIDs      pq.Int64Array                   `json:"stop_ids" gorm:"type:bigint[];not null"`
	TimingSlots  datatypes.JSONSlice[TimingSlot] `json:"timing_slots"`
	OptimizedFor pq.StringArray                  `json:"optimized_for" gorm:"type:text[]"`
	Geometry     []byte                          `json:"-" gorm:"type:bytea"` // WKB LineString through the stops
}

// StopIndex returns the position of stopID in the route, or -1.
func (r Route) StopIndex(stopID uint) int {
	for i, id := range r.StopIDs {
		if id == int64(stopID) {
			return i
		}
	}
	return -1
}
