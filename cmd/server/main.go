package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"campus_shuttle/internal/auth"
	"campus_shuttle/internal/config"
	"campus_shuttle/internal/jobs"
	"campus_shuttle/internal/logger"
	"campus_shuttle/internal/realtime"
	"campus_shuttle/internal/routes"
	"campus_shuttle/internal/services"
	"campus_shuttle/internal/store"
)

func main() {
	cfg := config.Load()

	// Initialize structured logging to file
	sink := logger.Setup(cfg.LogFile, cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	// Connect to the database
	db, err := config.InitDB(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("database setup failed")
	}
	st := store.New(db)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub(256)
	go hub.Run(ctx)

	lifecycle := jobs.NewManager(services.NewBookingService(st, hub), cfg.RideLifecycleSchedule)
	if err := lifecycle.Start(); err != nil {
		logrus.WithError(err).Fatal("could not schedule ride lifecycle job")
	}

	r := routes.SetupRouter(routes.Deps{
		Store:       st,
		Tokens:      tokens,
		Hub:         hub,
		CORSOrigins: cfg.CORSOrigins,
		AccessLog:   sink,
	})
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithField("addr", cfg.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}
	lifecycle.Stop()
	hub.Close()

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
