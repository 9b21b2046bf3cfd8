package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// RideAdvancer moves bookings along their lifecycle as time passes.
type RideAdvancer interface {
	AdvanceRides(ctx context.Context) (started, completed int, err error)
}

// Manager runs the scheduled background jobs.
type Manager struct {
	cron     *cron.Cron
	rides    RideAdvancer
	schedule string
	timeout  time.Duration
	running  sync.Mutex
}

// NewManager schedules the ride lifecycle job with a six-field (seconds
// first) cron expression.
func NewManager(rides RideAdvancer, schedule string) *Manager {
	return &Manager{
		cron:     cron.New(cron.WithSeconds()),
		rides:    rides,
		schedule: schedule,
		timeout:  30 * time.Second,
	}
}

// Start registers the jobs and starts the scheduler.
func (m *Manager) Start() error {
	if _, err := m.cron.AddFunc(m.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		m.RunOnce(ctx)
	}); err != nil {
		return err
	}
	m.cron.Start()
	logrus.WithField("schedule", m.schedule).Info("jobs: ride lifecycle scheduled")
	return nil
}

// Stop waits for a running job to finish.
func (m *Manager) Stop() {
	<-m.cron.Stop().Done()
	logrus.Info("jobs: stopped")
}

// RunOnce advances rides now. Overlapping runs are skipped.
func (m *Manager) RunOnce(ctx context.Context) (started, completed int, err error) {
	if !m.running.TryLock() {
		logrus.Debug("jobs: ride lifecycle still running, skipping tick")
		return 0, 0, nil
	}
	defer m.running.Unlock()

	started, completed, err = m.rides.AdvanceRides(ctx)
	entry := logrus.WithFields(logrus.Fields{"started": started, "completed": completed})
	if err != nil {
		entry.WithError(err).Error("jobs: ride lifecycle failed")
		return started, completed, err
	}
	if started+completed > 0 {
		entry.Info("jobs: ride lifecycle advanced bookings")
	}
	return started, completed, nil
}
