// Package store is the record store behind every service. Lookups of
// tenant-owned records always take the owning university id.
package store

import (
	"context"
	"errors"
	"time"

	"campus_shuttle/internal/models"
)

var (
	ErrNotFound            = errors.New("store: record not found")
	ErrDuplicate           = errors.New("store: duplicate key")
	ErrInsufficientBalance = errors.New("store: wallet balance would go negative")
	ErrShuttleFull         = errors.New("store: shuttle is full")
	ErrOccupancyBounds     = errors.New("store: occupancy outside 0..capacity")
	ErrStaleBooking        = errors.New("store: booking status changed concurrently")
)

// Store is implemented by GormStore and by storetest.Memory.
type Store interface {
	// Transaction runs fn against a store bound to one database transaction.
	// fn returning an error rolls everything back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error

	CreateUniversity(ctx context.Context, u *models.University) error
	GetUniversity(ctx context.Context, id uint) (*models.University, error)
	GetUniversityByCode(ctx context.Context, code string) (*models.University, error)

	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserInUniversity(ctx context.Context, universityID, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// ListUsers returns users of a university; an empty role means any role.
	ListUsers(ctx context.Context, universityID uint, role string) ([]models.User, error)
	// AdjustBalance adds delta to the wallet unless the result would be negative.
	AdjustBalance(ctx context.Context, userID uint, delta int64) error

	CreateTransaction(ctx context.Context, t *models.Transaction) error
	// ListTransactions returns the user's ledger newest first, optionally from since.
	ListTransactions(ctx context.Context, userID uint, since time.Time) ([]models.Transaction, error)

	CreateStop(ctx context.Context, s *models.Stop) error
	SaveStop(ctx context.Context, s *models.Stop) error
	GetStop(ctx context.Context, universityID, id uint) (*models.Stop, error)
	ListStops(ctx context.Context, universityID uint) ([]models.Stop, error)
	ListStopsByIDs(ctx context.Context, universityID uint, ids []uint) ([]models.Stop, error)
	// StopLocationTaken checks every university, skipping excludeID.
	StopLocationTaken(ctx context.Context, lat, lng float64, excludeID uint) (bool, error)
	DeleteStop(ctx context.Context, universityID, id uint) error

	CreateRoute(ctx context.Context, r *models.Route) error
	SaveRoute(ctx context.Context, r *models.Route) error
	GetRoute(ctx context.Context, universityID, id uint) (*models.Route, error)
	ListRoutes(ctx context.Context, universityID uint) ([]models.Route, error)
	// ListRoutesWithStops returns routes containing every id, sorted by name.
	ListRoutesWithStops(ctx context.Context, universityID uint, stopIDs ...uint) ([]models.Route, error)
	DeleteRoute(ctx context.Context, universityID, id uint) error

	CreateShuttle(ctx context.Context, s *models.Shuttle) error
	// SaveShuttle leaves occupancy alone and fails with ErrOccupancyBounds
	// when the capacity would drop below it.
	SaveShuttle(ctx context.Context, s *models.Shuttle) error
	GetShuttle(ctx context.Context, universityID, id uint) (*models.Shuttle, error)
	GetShuttleOnRoute(ctx context.Context, universityID, routeID uint) (*models.Shuttle, error)
	ListShuttles(ctx context.Context, universityID uint) ([]models.Shuttle, error)
	CountShuttlesOnRoute(ctx context.Context, universityID, routeID uint) (int64, error)
	DeleteShuttle(ctx context.Context, universityID, id uint) error
	// TakeSeat increments occupancy while it is below capacity.
	TakeSeat(ctx context.Context, shuttleID uint) error
	// ReleaseSeat decrements occupancy; it reports false when it was already zero.
	ReleaseSeat(ctx context.Context, shuttleID uint) (bool, error)
	SetOccupancy(ctx context.Context, universityID, shuttleID uint, occupancy int) error

	CreateBooking(ctx context.Context, b *models.Booking) error
	GetBookingForUser(ctx context.Context, userID, id uint) (*models.Booking, error)
	// ListBookings returns a user's bookings; an empty status means any.
	// upcomingFirst orders by ride start ascending, otherwise newest created first.
	ListBookings(ctx context.Context, userID uint, status string, upcomingFirst bool) ([]models.Booking, error)
	// ListBookingsDue returns bookings in status whose start (upcoming) or
	// end (in-progress) is at or before t.
	ListBookingsDue(ctx context.Context, status string, t time.Time) ([]models.Booking, error)
	// TransitionBooking moves a booking from one status to another, failing
	// with ErrStaleBooking when it is no longer in from.
	TransitionBooking(ctx context.Context, id uint, from, to string) error
}
