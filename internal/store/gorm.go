package store

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"campus_shuttle/internal/models"
)

// GormStore is the postgres-backed Store.
type GormStore struct {
	db *gorm.DB
}

func New(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// translate maps gorm errors onto the store's sentinel errors. It relies on
// gorm.Config.TranslateError being enabled for duplicate keys.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

func first[T any](q *gorm.DB) (*T, error) {
	var out T
	if err := q.First(&out).Error; err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func (s *GormStore) exists(ctx context.Context, model any, query string, args ...any) (bool, error) {
	var n int64
	if err := s.conn(ctx).Model(model).Where(query, args...).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Universities

func (s *GormStore) CreateUniversity(ctx context.Context, u *models.University) error {
	return translate(s.conn(ctx).Create(u).Error)
}

func (s *GormStore) GetUniversity(ctx context.Context, id uint) (*models.University, error) {
	return first[models.University](s.conn(ctx).Where("id = ?", id))
}

func (s *GormStore) GetUniversityByCode(ctx context.Context, code string) (*models.University, error) {
	return first[models.University](s.conn(ctx).Where("code = ?", code))
}

// Users

func (s *GormStore) CreateUser(ctx context.Context, u *models.User) error {
	return translate(s.conn(ctx).Create(u).Error)
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return first[models.User](s.conn(ctx).Where("id = ?", id))
}

func (s *GormStore) GetUserInUniversity(ctx context.Context, universityID, id uint) (*models.User, error) {
	return first[models.User](s.conn(ctx).Where("id = ? AND university_id = ?", id, universityID))
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return first[models.User](s.conn(ctx).Where("email = ?", email))
}

func (s *GormStore) ListUsers(ctx context.Context, universityID uint, role string) ([]models.User, error) {
	q := s.conn(ctx).Where("university_id = ?", universityID)
	if role != "" {
		q = q.Where("role = ?", role)
	}
	var users []models.User
	err := q.Order("id").Find(&users).Error
	return users, err
}

func (s *GormStore) AdjustBalance(ctx context.Context, userID uint, delta int64) error {
	res := s.conn(ctx).Model(&models.User{}).
		Where("id = ? AND wallet_balance + ? >= 0", userID, delta).
		Update("wallet_balance", gorm.Expr("wallet_balance + ?", delta))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}
	ok, err := s.exists(ctx, &models.User{}, "id = ?", userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return ErrInsufficientBalance
}

// Transactions

func (s *GormStore) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	return translate(s.conn(ctx).Create(t).Error)
}

func (s *GormStore) ListTransactions(ctx context.Context, userID uint, since time.Time) ([]models.Transaction, error) {
	q := s.conn(ctx).Where("user_id = ?", userID)
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since)
	}
	var txs []models.Transaction
	err := q.Order("created_at DESC, id DESC").Find(&txs).Error
	return txs, err
}

// Stops

func (s *GormStore) CreateStop(ctx context.Context, st *models.Stop) error {
	return translate(s.conn(ctx).Create(st).Error)
}

func (s *GormStore) SaveStop(ctx context.Context, st *models.Stop) error {
	return translate(s.conn(ctx).Save(st).Error)
}

func (s *GormStore) GetStop(ctx context.Context, universityID, id uint) (*models.Stop, error) {
	return first[models.Stop](s.conn(ctx).Where("id = ? AND university_id = ?", id, universityID))
}

func (s *GormStore) ListStops(ctx context.Context, universityID uint) ([]models.Stop, error) {
	var stops []models.Stop
	err := s.conn(ctx).Where("university_id = ?", universityID).Order("name").Find(&stops).Error
	return stops, err
}

func (s *GormStore) ListStopsByIDs(ctx context.Context, universityID uint, ids []uint) ([]models.Stop, error) {
	var stops []models.Stop
	if len(ids) == 0 {
		return stops, nil
	}
	err := s.conn(ctx).Where("university_id = ? AND id IN ?", universityID, ids).Find(&stops).Error
	return stops, err
}

func (s *GormStore) StopLocationTaken(ctx context.Context, lat, lng float64, excludeID uint) (bool, error) {
	if excludeID != 0 {
		return s.exists(ctx, &models.Stop{}, "lat = ? AND lng = ? AND id <> ?", lat, lng, excludeID)
	}
	return s.exists(ctx, &models.Stop{}, "lat = ? AND lng = ?", lat, lng)
}

func (s *GormStore) DeleteStop(ctx context.Context, universityID, id uint) error {
	return s.hardDelete(ctx, &models.Stop{}, universityID, id)
}

func (s *GormStore) hardDelete(ctx context.Context, model any, universityID, id uint) error {
	res := s.conn(ctx).Unscoped().Where("id = ? AND university_id = ?", id, universityID).Delete(model)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Routes

func (s *GormStore) CreateRoute(ctx context.Context, r *models.Route) error {
	return translate(s.conn(ctx).Create(r).Error)
}

func (s *GormStore) SaveRoute(ctx context.Context, r *models.Route) error {
	return translate(s.conn(ctx).Save(r).Error)
}

func (s *GormStore) GetRoute(ctx context.Context, universityID, id uint) (*models.Route, error) {
	return first[models.Route](s.conn(ctx).Where("id = ? AND university_id = ?", id, universityID))
}

func (s *GormStore) ListRoutes(ctx context.Context, universityID uint) ([]models.Route, error) {
	var routes []models.Route
	err := s.conn(ctx).Where("university_id = ?", universityID).Order("name").Find(&routes).Error
	return routes, err
}

func (s *GormStore) ListRoutesWithStops(ctx context.Context, universityID uint, stopIDs ...uint) ([]models.Route, error) {
	ids := make(pq.Int64Array, len(stopIDs))
	for i, id := range stopIDs {
		ids[i] = int64(id)
	}
	var routes []models.Route
	err := s.conn(ctx).
		Where("university_id = ? AND stop_ids @> ?", universityID, ids).
		Order("name").
		Find(&routes).Error
	return routes, err
}

func (s *GormStore) DeleteRoute(ctx context.Context, universityID, id uint) error {
	return s.hardDelete(ctx, &models.Route{}, universityID, id)
}

// Shuttles

func (s *GormStore) CreateShuttle(ctx context.Context, sh *models.Shuttle) error {
	return translate(s.conn(ctx).Create(sh).Error)
}

// SaveShuttle writes everything but occupancy, which only moves through the
// guarded seat updates. The new capacity must still cover the stored
// occupancy, else ErrOccupancyBounds.
func (s *GormStore) SaveShuttle(ctx context.Context, sh *models.Shuttle) error {
	res := s.conn(ctx).Model(sh).
		Where("occupancy <= ?", sh.Capacity).
		Select("number", "capacity", "active", "current_route_id", "location", "updated_at").
		Updates(sh)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}
	ok, err := s.exists(ctx, &models.Shuttle{}, "id = ?", sh.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return ErrOccupancyBounds
}

func (s *GormStore) GetShuttle(ctx context.Context, universityID, id uint) (*models.Shuttle, error) {
	return first[models.Shuttle](s.conn(ctx).Where("id = ? AND university_id = ?", id, universityID))
}

func (s *GormStore) GetShuttleOnRoute(ctx context.Context, universityID, routeID uint) (*models.Shuttle, error) {
	return first[models.Shuttle](s.conn(ctx).
		Where("university_id = ? AND current_route_id = ?", universityID, routeID).
		Order("id"))
}

func (s *GormStore) ListShuttles(ctx context.Context, universityID uint) ([]models.Shuttle, error) {
	var shuttles []models.Shuttle
	err := s.conn(ctx).Where("university_id = ?", universityID).Order("number").Find(&shuttles).Error
	return shuttles, err
}

func (s *GormStore) CountShuttlesOnRoute(ctx context.Context, universityID, routeID uint) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Shuttle{}).
		Where("university_id = ? AND current_route_id = ?", universityID, routeID).
		Count(&n).Error
	return n, err
}

func (s *GormStore) DeleteShuttle(ctx context.Context, universityID, id uint) error {
	return s.hardDelete(ctx, &models.Shuttle{}, universityID, id)
}

func (s *GormStore) TakeSeat(ctx context.Context, shuttleID uint) error {
	res := s.conn(ctx).Model(&models.Shuttle{}).
		Where("id = ? AND occupancy < capacity", shuttleID).
		Update("occupancy", gorm.Expr("occupancy + 1"))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}
	ok, err := s.exists(ctx, &models.Shuttle{}, "id = ?", shuttleID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return ErrShuttleFull
}

func (s *GormStore) ReleaseSeat(ctx context.Context, shuttleID uint) (bool, error) {
	res := s.conn(ctx).Model(&models.Shuttle{}).
		Where("id = ? AND occupancy > 0", shuttleID).
		Update("occupancy", gorm.Expr("occupancy - 1"))
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) SetOccupancy(ctx context.Context, universityID, shuttleID uint, occupancy int) error {
	if occupancy < 0 {
		return ErrOccupancyBounds
	}
	res := s.conn(ctx).Model(&models.Shuttle{}).
		Where("id = ? AND university_id = ? AND capacity >= ?", shuttleID, universityID, occupancy).
		Update("occupancy", occupancy)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}
	ok, err := s.exists(ctx, &models.Shuttle{}, "id = ? AND university_id = ?", shuttleID, universityID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return ErrOccupancyBounds
}

// Bookings

func (s *GormStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	return translate(s.conn(ctx).Create(b).Error)
}

func (s *GormStore) GetBookingForUser(ctx context.Context, userID, id uint) (*models.Booking, error) {
	return first[models.Booking](s.conn(ctx).Where("id = ? AND user_id = ?", id, userID))
}

func (s *GormStore) ListBookings(ctx context.Context, userID uint, status string, upcomingFirst bool) ([]models.Booking, error) {
	q := s.conn(ctx).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if upcomingFirst {
		q = q.Order("ride_start_time ASC")
	} else {
		q = q.Order("created_at DESC")
	}
	var bookings []models.Booking
	err := q.Find(&bookings).Error
	return bookings, err
}

func (s *GormStore) ListBookingsDue(ctx context.Context, status string, t time.Time) ([]models.Booking, error) {
	column := "ride_end_time"
	if status == models.BookingUpcoming {
		column = "ride_start_time"
	}
	var bookings []models.Booking
	err := s.conn(ctx).
		Where("status = ? AND "+column+" <= ?", status, t).
		Order(column).
		Find(&bookings).Error
	return bookings, err
}

func (s *GormStore) TransitionBooking(ctx context.Context, id uint, from, to string) error {
	res := s.conn(ctx).Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleBooking
	}
	return nil
}
