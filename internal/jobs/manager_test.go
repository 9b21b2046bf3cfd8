package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeRides struct {
	calls atomic.Int32
	err   error
	block chan struct{}
}

func (f *fakeRides) AdvanceRides(ctx context.Context) (int, int, error) {
	f.calls.Add(1)
	if f.block != nil {
		<-f.block
	}
	return 2, 1, f.err
}

func TestRunOnce(t *testing.T) {
	rides := &fakeRides{}
	m := NewManager(rides, "0 * * * * *")

	started, completed, err := m.RunOnce(context.Background())
	if err != nil || started != 2 || completed != 1 {
		t.Fatalf("RunOnce = %d, %d, %v", started, completed, err)
	}

	rides.err = errors.New("db down")
	if _, _, err := m.RunOnce(context.Background()); err == nil {
		t.Fatal("expected error to surface")
	}
}

func TestRunOnceSkipsOverlap(t *testing.T) {
	rides := &fakeRides{block: make(chan struct{})}
	m := NewManager(rides, "0 * * * * *")

	done := make(chan struct{})
	go func() {
		m.RunOnce(context.Background())
		close(done)
	}()
	for rides.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	if s, c, err := m.RunOnce(context.Background()); s != 0 || c != 0 || err != nil {
		t.Fatalf("overlapping run did work: %d %d %v", s, c, err)
	}
	close(rides.block)
	<-done
	if got := rides.calls.Load(); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	m := NewManager(&fakeRides{}, "every minute")
	if err := m.Start(); err == nil {
		m.Stop()
		t.Fatal("expected schedule parse error")
	}
}

func TestStartRuns(t *testing.T) {
	rides := &fakeRides{}
	m := NewManager(rides, "* * * * * *")
	if err := m.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	deadline := time.Now().Add(3 * time.Second)
	for rides.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	m.Stop()
	if rides.calls.Load() == 0 {
		t.Fatal("scheduled job never ran")
	}
}
