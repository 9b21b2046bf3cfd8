package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"campus_shuttle/internal/fare"
	"campus_shuttle/internal/models"
	"campus_shuttle/internal/store"
	"campus_shuttle/internal/tickets"
)

type BookingInput struct {
	SourceStopID      uint `json:"source_stop_id"`
	DestinationStopID uint `json:"destination_stop_id"`
	RouteID           uint `json:"route_id"`
}

type BookingReceipt struct {
	Booking       models.Booking `json:"booking"`
	Fare          int64          `json:"fare"`
	EstimatedTime string         `json:"estimated_time"`
}

// BookingView is a booking with the names a rider needs to read it.
type BookingView struct {
	ID                uint      `json:"id"`
	Status            string    `json:"status"`
	Fare              int64     `json:"fare"`
	BookedAt          time.Time `json:"booked_at"`
	RideStartTime     time.Time `json:"ride_start_time"`
	RideEndTime       time.Time `json:"ride_end_time"`
	ShuttleID         uint      `json:"shuttle_id"`
	ShuttleNumber     string    `json:"shuttle_number"`
	RouteID           uint      `json:"route_id"`
	RouteName         string    `json:"route_name"`
	SourceStopID      uint      `json:"source_stop_id"`
	SourceStop        string    `json:"source_stop"`
	DestinationStopID uint      `json:"destination_stop_id"`
	DestinationStop   string    `json:"destination_stop"`
}

type BookingService struct {
	store     store.Store
	publisher OccupancyPublisher
	Now       func() time.Time
}

func NewBookingService(s store.Store, pub OccupancyPublisher) *BookingService {
	return &BookingService{store: s, publisher: pub, Now: time.Now}
}

// Create books one seat on the shuttle serving the route. The wallet debit,
// the seat, the ledger row and the booking commit together or not at all.
func (s *BookingService) Create(ctx context.Context, universityID, userID uint, in BookingInput) (*BookingReceipt, error) {
	if in.SourceStopID == 0 || in.DestinationStopID == 0 || in.RouteID == 0 || in.SourceStopID == in.DestinationStopID {
		return nil, ValidationError{Msg: "Invalid source, destination or route"}
	}
	now := s.Now()

	var receipt *BookingReceipt
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		route, err := tx.GetRoute(ctx, universityID, in.RouteID)
		if errors.Is(err, store.ErrNotFound) {
			return NotFoundError{Resource: "Route"}
		}
		if err != nil {
			return err
		}

		price, err := fare.Fare(*route, in.SourceStopID, in.DestinationStopID)
		if err != nil {
			return RuleError{Msg: "Invalid stop order for selected route", Err: err}
		}
		travel, err := fare.TravelTime(*route, in.SourceStopID, in.DestinationStopID)
		if err != nil {
			return RuleError{Msg: "Invalid stop order for selected route", Err: err}
		}

		shuttle, err := tx.GetShuttleOnRoute(ctx, universityID, route.ID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && !shuttle.Active) {
			return RuleError{Msg: "No shuttle available on selected route"}
		}
		if err != nil {
			return err
		}

		start, end, err := fare.Departure(*route, in.SourceStopID, in.DestinationStopID, now)
		if err != nil {
			return RuleError{Msg: "Selected route has no scheduled service", Err: err}
		}

		user, err := tx.GetUserInUniversity(ctx, universityID, userID)
		if errors.Is(err, store.ErrNotFound) {
			return NotFoundError{Resource: "User"}
		}
		if err != nil {
			return err
		}
		if user.WalletBalance < price {
			return RuleError{Msg: "Insufficient wallet balance"}
		}

		if _, err := applyWalletChange(ctx, tx, user.ID, -price, models.MethodWallet, "Booking fare", now); err != nil {
			return err
		}
		if err := tx.TakeSeat(ctx, shuttle.ID); err != nil {
			if errors.Is(err, store.ErrShuttleFull) {
				return RuleError{Msg: "Shuttle is full", Err: err}
			}
			return err
		}

		booking := models.Booking{
			UserID:            user.ID,
			ShuttleID:         shuttle.ID,
			RouteID:           route.ID,
			SourceStopID:      in.SourceStopID,
			DestinationStopID: in.DestinationStopID,
			Fare:              price,
			BookedAt:          now,
			RideStartTime:     start,
			RideEndTime:       end,
			Status:            models.BookingUpcoming,
		}
		if err := tx.CreateBooking(ctx, &booking); err != nil {
			return err
		}
		receipt = &BookingReceipt{Booking: booking, Fare: price, EstimatedTime: fare.FormatMinutes(travel)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishShuttle(ctx, s.publisher, s.store, universityID, receipt.Booking.ShuttleID, EventBooked)
	return receipt, nil
}

// Cancel reverses an upcoming booking owned by userID: status, seat and
// fare in one transaction. A second cancel is rejected.
func (s *BookingService) Cancel(ctx context.Context, universityID, userID, bookingID uint) (*models.Booking, error) {
	if bookingID == 0 {
		return nil, ValidationError{Msg: "Booking ID is required"}
	}
	now := s.Now()

	var cancelled *models.Booking
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		b, err := tx.GetBookingForUser(ctx, userID, bookingID)
		if errors.Is(err, store.ErrNotFound) {
			return NotFoundError{Resource: "Booking"}
		}
		if err != nil {
			return err
		}
		if b.Status != models.BookingUpcoming {
			return RuleError{Msg: "Only upcoming rides can be cancelled"}
		}
		// The lifecycle job may not have marked a started ride yet.
		if !b.RideStartTime.After(now) {
			return RuleError{Msg: "Ride has already started"}
		}
		if err := tx.TransitionBooking(ctx, b.ID, models.BookingUpcoming, models.BookingCancelled); err != nil {
			if errors.Is(err, store.ErrStaleBooking) {
				return RuleError{Msg: "Only upcoming rides can be cancelled", Err: err}
			}
			return err
		}
		if _, err := tx.ReleaseSeat(ctx, b.ShuttleID); err != nil {
			return err
		}
		if _, err := applyWalletChange(ctx, tx, userID, b.Fare, models.MethodWallet, "Booking cancellation refund", now); err != nil {
			return err
		}
		b.Status = models.BookingCancelled
		cancelled = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishShuttle(ctx, s.publisher, s.store, universityID, cancelled.ShuttleID, EventCancelled)
	return cancelled, nil
}

// List returns the user's bookings, newest first.
func (s *BookingService) List(ctx context.Context, universityID, userID uint) ([]BookingView, error) {
	bookings, err := s.store.ListBookings(ctx, userID, "", false)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, universityID, bookings)
}

// Upcoming returns the user's upcoming bookings, soonest first.
func (s *BookingService) Upcoming(ctx context.Context, universityID, userID uint) ([]BookingView, error) {
	bookings, err := s.store.ListBookings(ctx, userID, models.BookingUpcoming, true)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, universityID, bookings)
}

// ListForUser is the admin view of another user's bookings.
func (s *BookingService) ListForUser(ctx context.Context, universityID, targetUserID uint) ([]BookingView, error) {
	if _, err := s.store.GetUserInUniversity(ctx, universityID, targetUserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFoundError{Resource: "User"}
		}
		return nil, err
	}
	return s.List(ctx, universityID, targetUserID)
}

// Ticket renders the e-ticket PDF of one of the user's bookings.
func (s *BookingService) Ticket(ctx context.Context, universityID, userID, bookingID uint) ([]byte, string, error) {
	b, err := s.store.GetBookingForUser(ctx, userID, bookingID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, "", NotFoundError{Resource: "Booking"}
	}
	if err != nil {
		return nil, "", err
	}
	user, err := s.store.GetUserInUniversity(ctx, universityID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, "", NotFoundError{Resource: "User"}
	}
	if err != nil {
		return nil, "", err
	}
	views, err := s.views(ctx, universityID, []models.Booking{*b})
	if err != nil {
		return nil, "", err
	}
	v := views[0]
	t := tickets.Ticket{
		BookingID:     v.ID,
		Passenger:     user.Name,
		Email:         user.Email,
		ShuttleNumber: v.ShuttleNumber,
		RouteName:     v.RouteName,
		From:          v.SourceStop,
		To:            v.DestinationStop,
		RideStart:     v.RideStartTime,
		RideEnd:       v.RideEndTime,
		Fare:          v.Fare,
		Status:        v.Status,
	}
	pdf, err := tickets.Render(t)
	if err != nil {
		return nil, "", err
	}
	return pdf, tickets.Filename(t), nil
}

// AdvanceRides moves upcoming bookings whose start has passed to in-progress
// and in-progress bookings whose end has passed to completed, freeing the seat.
func (s *BookingService) AdvanceRides(ctx context.Context) (started, completed int, err error) {
	now := s.Now()

	due, err := s.store.ListBookingsDue(ctx, models.BookingUpcoming, now)
	if err != nil {
		return 0, 0, err
	}
	for _, b := range due {
		err := s.store.TransitionBooking(ctx, b.ID, models.BookingUpcoming, models.BookingInProgress)
		if errors.Is(err, store.ErrStaleBooking) {
			continue
		}
		if err != nil {
			return started, completed, err
		}
		started++
	}

	ending, err := s.store.ListBookingsDue(ctx, models.BookingInProgress, now)
	if err != nil {
		return started, completed, err
	}
	for _, b := range ending {
		err := s.store.Transaction(ctx, func(tx store.Store) error {
			if err := tx.TransitionBooking(ctx, b.ID, models.BookingInProgress, models.BookingCompleted); err != nil {
				return err
			}
			_, err := tx.ReleaseSeat(ctx, b.ShuttleID)
			return err
		})
		if errors.Is(err, store.ErrStaleBooking) {
			continue
		}
		if err != nil {
			return started, completed, err
		}
		completed++

		user, err := s.store.GetUser(ctx, b.UserID)
		if err != nil {
			logrus.WithError(err).WithField("booking_id", b.ID).Warn("AdvanceRides: rider lookup failed")
			continue
		}
		publishShuttle(ctx, s.publisher, s.store, user.UniversityID, b.ShuttleID, EventRideCompleted)
	}
	return started, completed, nil
}

// views resolves shuttle, route and stop names within the university.
func (s *BookingService) views(ctx context.Context, universityID uint, bookings []models.Booking) ([]BookingView, error) {
	out := make([]BookingView, 0, len(bookings))
	if len(bookings) == 0 {
		return out, nil
	}

	shuttles, err := s.store.ListShuttles(ctx, universityID)
	if err != nil {
		return nil, err
	}
	routes, err := s.store.ListRoutes(ctx, universityID)
	if err != nil {
		return nil, err
	}
	stops, err := s.store.ListStops(ctx, universityID)
	if err != nil {
		return nil, err
	}
	shuttleNumbers := make(map[uint]string, len(shuttles))
	for _, sh := range shuttles {
		shuttleNumbers[sh.ID] = sh.Number
	}
	routeNames := make(map[uint]string, len(routes))
	for _, r := range routes {
		routeNames[r.ID] = r.Name
	}
	stopNames := make(map[uint]string, len(stops))
	for _, st := range stops {
		stopNames[st.ID] = st.Name
	}

	for _, b := range bookings {
		out = append(out, BookingView{
			ID:                b.ID,
			Status:            b.Status,
			Fare:              b.Fare,
			BookedAt:          b.BookedAt,
			RideStartTime:     b.RideStartTime,
			RideEndTime:       b.RideEndTime,
			ShuttleID:         b.ShuttleID,
			ShuttleNumber:     shuttleNumbers[b.ShuttleID],
			RouteID:           b.RouteID,
			RouteName:         routeNames[b.RouteID],
			SourceStopID:      b.SourceStopID,
			SourceStop:        stopNames[b.SourceStopID],
			DestinationStopID: b.DestinationStopID,
			DestinationStop:   stopNames[b.DestinationStopID],
		})
	}
	return out, nil
}
