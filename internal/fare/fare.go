// Package fare prices and times a ride from hop counts along a route.
package fare

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"campus_shuttle/internal/models"
)

const (
	PerHop     int64 = 10
	TimePerHop       = 5 * time.Minute
)

var (
	ErrInvalidSegment = errors.New("fare: stops missing from route or out of order")
	ErrNoTimingSlot   = errors.New("fare: route has no timing slot")
	ErrBadClock       = errors.New("fare: timing slot start is not HH:MM")
)

func hops(route models.Route, src, dst uint) (int, error) {
	i, j := route.StopIndex(src), route.StopIndex(dst)
	if i < 0 || j < 0 || i >= j {
		return 0, ErrInvalidSegment
	}
	return j - i, nil
}

// Fare is PerHop points for every stop travelled past.
func Fare(route models.Route, src, dst uint) (int64, error) {
	n, err := hops(route, src, dst)
	if err != nil {
		return 0, err
	}
	return int64(n) * PerHop, nil
}

func TravelTime(route models.Route, src, dst uint) (time.Duration, error) {
	n, err := hops(route, src, dst)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * TimePerHop, nil
}

// FormatMinutes renders d as "<n> mins".
func FormatMinutes(d time.Duration) string {
	return fmt.Sprintf("%d mins", int(d/time.Minute))
}

// FormatClock renders t as "HH:MM".
func FormatClock(t time.Time) string {
	return t.Format("15:04")
}

// ArrivalAt returns when the shuttle reaches stopID on its next service run
// at or after now. The run starts at the first timing slot's start time on the
// earliest day (today included) listed in the slot; a slot without days runs
// daily.
func ArrivalAt(route models.Route, stopID uint, now time.Time) (time.Time, error) {
	idx := route.StopIndex(stopID)
	if idx < 0 {
		return time.Time{}, ErrInvalidSegment
	}
	if len(route.TimingSlots) == 0 {
		return time.Time{}, ErrNoTimingSlot
	}
	slot := route.TimingSlots[0]
	start, err := time.Parse("15:04", slot.StartTime)
	if err != nil {
		return time.Time{}, ErrBadClock
	}
	offset := time.Duration(start.Hour())*time.Hour +
		time.Duration(start.Minute())*time.Minute +
		time.Duration(idx)*TimePerHop

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for d := 0; d <= 7; d++ {
		day := midnight.AddDate(0, 0, d)
		if !RunsOn(slot, day.Weekday()) {
			continue
		}
		at := day.Add(offset)
		if !at.Before(now) {
			return at, nil
		}
	}
	return time.Time{}, ErrNoTimingSlot
}

// Departure returns the ride's start at src and its end at dst on the same run.
func Departure(route models.Route, src, dst uint, now time.Time) (time.Time, time.Time, error) {
	travel, err := TravelTime(route, src, dst)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, err := ArrivalAt(route, src, now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.Add(travel), nil
}

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

// ParseWeekday accepts three letter or full day names in any case.
func ParseWeekday(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 3 {
		return 0, false
	}
	w, ok := weekdays[s[:3]]
	if !ok {
		return 0, false
	}
	if len(s) > 3 && s != strings.ToLower(w.String()) {
		return 0, false
	}
	return w, true
}

// RunsOn reports whether slot operates on weekday w.
func RunsOn(slot models.TimingSlot, w time.Weekday) bool {
	if len(slot.Days) == 0 {
		return true
	}
	for _, d := range slot.Days {
		if day, ok := ParseWeekday(d); ok && day == w {
			return true
		}
	}
	return false
}
