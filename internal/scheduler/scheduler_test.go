package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/logging"
)

func TestSchedulerWarmsOnTick(t *testing.T) {
	var mu sync.Mutex
	var warmed []string
	warmFn := func(_ context.Context, userID string) error {
		mu.Lock()
		warmed = append(warmed, userID)
		mu.Unlock()
		return nil
	}

	s := NewScheduler(warmFn, "user-1", 20*time.Millisecond, logging.NewLogger())
	s.Start()
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(warmed)
		mu.Unlock()
		if n >= 2 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(warmed) < 2 {
		t.Fatalf("expected at least 2 warm calls, got %d", len(warmed))
	}
	if warmed[0] != "user-1" {
		t.Fatalf("expected warm for user-1, got %s", warmed[0])
	}
}

func TestSchedulerDisabledWithoutWarmUser(t *testing.T) {
	called := false
	warmFn := func(context.Context, string) error {
		called = true
		return nil
	}

	s := NewScheduler(warmFn, "", 10*time.Millisecond, logging.NewLogger())
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	if called {
		t.Fatal("expected warm task to stay disabled without a warm user")
	}
}

func TestSchedulerDefaultInterval(t *testing.T) {
	s := NewScheduler(func(context.Context, string) error { return nil }, "user-1", 0, logging.NewLogger())
	if s.interval != DefaultInterval {
		t.Fatalf("expected default interval, got %v", s.interval)
	}
}
