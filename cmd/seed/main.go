// Command seed loads a demo university with stops, a route, a shuttle, an
// admin and a student.
package main

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"campus_shuttle/internal/auth"
	"campus_shuttle/internal/config"
	"campus_shuttle/internal/logger"
	"campus_shuttle/internal/models"
	"campus_shuttle/internal/services"
	"campus_shuttle/internal/store"
)

const demoPassword = "123456789"

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogFile, cfg.LogLevel)

	db, err := config.InitDB(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("database setup failed")
	}
	if err := seed(context.Background(), store.New(db), auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)); err != nil {
		logrus.WithError(err).Fatal("seed failed")
	}
	logrus.Info("seed complete")
}

func seed(ctx context.Context, st store.Store, tokens *auth.TokenManager) error {
	univ, err := st.GetUniversityByCode(ctx, "IIITJ")
	switch {
	case err == nil:
		logrus.Info("IIITJ already seeded, skipping catalog")
	case errors.Is(err, store.ErrNotFound):
		if univ, err = seedCatalog(ctx, st); err != nil {
			return err
		}
	default:
		return err
	}

	users := services.NewAuthService(st, tokens)
	for _, in := range []services.RegisterInput{
		{Name: "Admin User", Email: "admin@iiitdmj.ac.in", Password: demoPassword, UniversityCode: univ.Code},
		{Name: "Demo Student", Email: "student@iiitdmj.ac.in", Password: demoPassword, UniversityCode: univ.Code},
	} {
		if _, err := users.Register(ctx, in); err != nil {
			if services.IsRule(err) {
				logrus.WithField("email", in.Email).Info("user already exists")
				continue
			}
			return err
		}
	}
	return nil
}

// seedCatalog creates the university, its stops, a route and a shuttle in
// one transaction.
func seedCatalog(ctx context.Context, st store.Store) (*models.University, error) {
	univ := &models.University{
		Code:        "IIITJ",
		Name:        "IIIT Jabalpur",
		Location:    "Jabalpur, Madhya Pradesh, India",
		Domain:      "iiitdmj.ac.in",
		AdminEmails: pq.StringArray{"admin@iiitdmj.ac.in"},
	}
	err := st.Transaction(ctx, func(tx store.Store) error {
		if err := tx.CreateUniversity(ctx, univ); err != nil {
			return err
		}

		stops := []models.Stop{
			{UniversityID: univ.ID, Name: "Dorm A", Lat: 23.1, Lng: 79.9, Zone: "Hostel"},
			{UniversityID: univ.ID, Name: "Library", Lat: 23.2, Lng: 79.91, Zone: "Academic"},
			{UniversityID: univ.ID, Name: "Admin Block", Lat: 23.21, Lng: 79.93, Zone: "Admin"},
		}
		ids := make([]uint, 0, len(stops))
		for i := range stops {
			if err := tx.CreateStop(ctx, &stops[i]); err != nil {
				return err
			}
			ids = append(ids, stops[i].ID)
		}

		route, err := services.NewRouteService(tx).Create(ctx, univ.ID, services.RouteInput{
			Name:  "Morning Route A",
			Stops: ids,
			TimingSlots: []models.TimingSlot{
				{StartTime: "08:00", EndTime: "09:00", Days: []string{"Mon", "Tue", "Wed", "Thu", "Fri"}},
			},
			OptimizedFor: []string{"Peak Hour"},
		})
		if err != nil {
			return err
		}
		routeID := route.ID

		_, err = services.NewShuttleService(tx, nil).Create(ctx, univ.ID, services.ShuttleInput{
			ShuttleNumber:   "SH-101",
			Capacity:        20,
			CurrentRouteID:  &routeID,
			CurrentLocation: "Dorm A",
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return univ, nil
}
