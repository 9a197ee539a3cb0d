package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/models"
)

func snap(date string) *models.DailySnapshot {
	return &models.DailySnapshot{SnapshotDate: date}
}

func TestCacheGetHitMissStaleRefresh(t *testing.T) {
	c := New(Options{TTL: 20 * time.Millisecond, StaleWhileRevalidate: 50 * time.Millisecond, MaxEntries: 10}, MetricsHooks{})

	var mu sync.Mutex
	callCount := 0
	refreshCalled := make(chan struct{}, 1)
	loader := func(_ context.Context, _ string) (*models.DailySnapshot, error) {
		mu.Lock()
		callCount++
		count := callCount
		mu.Unlock()
		if count == 2 {
			refreshCalled <- struct{}{}
		}
		if count == 1 {
			return snap("first"), nil
		}
		return snap("second"), nil
	}

	got, err := c.Get(context.Background(), "alpha", loader)
	if err != nil || got.SnapshotDate != "first" {
		t.Fatalf("expected first load, got %v %v", got, err)
	}

	got, err = c.Get(context.Background(), "alpha", loader)
	if err != nil || got.SnapshotDate != "first" {
		t.Fatalf("expected cache hit, got %v %v", got, err)
	}

	time.Sleep(25 * time.Millisecond)
	got, err = c.Get(context.Background(), "alpha", loader)
	if err != nil || got.SnapshotDate != "first" {
		t.Fatalf("expected stale value, got %v %v", got, err)
	}

	select {
	case <-refreshCalled:
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("expected refresh to run")
	}

	time.Sleep(10 * time.Millisecond)
	got, ok := c.Peek("alpha")
	if !ok || got.SnapshotDate != "second" {
		t.Fatalf("expected refreshed value, got %v", got)
	}
}

func TestCacheStaleRefreshSurvivesRequestCancellation(t *testing.T) {
	c := New(Options{TTL: 10 * time.Millisecond, StaleWhileRevalidate: time.Minute, NegativeTTL: time.Minute, MaxEntries: 10}, MetricsHooks{})

	var mu sync.Mutex
	callCount := 0
	refreshed := make(chan error, 1)
	loader := func(ctx context.Context, _ string) (*models.DailySnapshot, error) {
		mu.Lock()
		callCount++
		count := callCount
		mu.Unlock()
		if err := ctx.Err(); err != nil {
			if count == 2 {
				refreshed <- err
			}
			return nil, err
		}
		if count == 2 {
			refreshed <- nil
		}
		return snap("fresh"), nil
	}

	if _, err := c.Get(context.Background(), "alpha", loader); err != nil {
		t.Fatalf("expected seed load, got %v", err)
	}

	time.Sleep(15 * time.Millisecond)

	// A stale read from an already-finished request: the handler's context
	// is cancelled the moment the response goes out, but the background
	// rebuild must still complete with a live context.
	reqCtx, cancel := context.WithCancel(context.Background())
	cancel()
	got, err := c.Get(reqCtx, "alpha", loader)
	if err != nil || got.SnapshotDate != "fresh" {
		t.Fatalf("expected stale value despite cancelled request, got %v %v", got, err)
	}

	select {
	case err := <-refreshed:
		if err != nil {
			t.Fatalf("expected refresh to run detached from the request context, got %v", err)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("expected refresh to run")
	}

	// The refreshed entry must be positive: a later read gets the value,
	// not a cached context error.
	time.Sleep(10 * time.Millisecond)
	got, err = c.Get(context.Background(), "alpha", loader)
	if err != nil || got == nil {
		t.Fatalf("expected healthy value after refresh, got %v %v", got, err)
	}
}

func TestCacheConcurrentHits(t *testing.T) {
	c := New(Options{TTL: time.Minute, MaxEntries: 10}, MetricsHooks{})

	loader := func(_ context.Context, _ string) (*models.DailySnapshot, error) {
		return snap("shared"), nil
	}
	if _, err := c.Get(context.Background(), "alpha", loader); err != nil {
		t.Fatalf("expected seed load, got %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				got, err := c.Get(context.Background(), "alpha", loader)
				if err != nil || got.SnapshotDate != "shared" {
					t.Errorf("expected shared hit, got %v %v", got, err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestCacheNegativeTTL(t *testing.T) {
	c := New(Options{TTL: 50 * time.Millisecond, StaleWhileRevalidate: 20 * time.Millisecond, NegativeTTL: 30 * time.Millisecond, MaxEntries: 10}, MetricsHooks{})

	var mu sync.Mutex
	callCount := 0
	errBoom := errors.New("boom")
	loader := func(_ context.Context, _ string) (*models.DailySnapshot, error) {
		mu.Lock()
		callCount++
		mu.Unlock()
		return nil, errBoom
	}

	if _, err := c.Get(context.Background(), "neg", loader); !errors.Is(err, errBoom) {
		t.Fatalf("expected negative load error, got %v", err)
	}
	if _, err := c.Get(context.Background(), "neg", loader); !errors.Is(err, errBoom) {
		t.Fatalf("expected cached negative error, got %v", err)
	}

	mu.Lock()
	firstCount := callCount
	mu.Unlock()
	if firstCount != 1 {
		t.Fatalf("expected single loader call, got %d", firstCount)
	}

	time.Sleep(35 * time.Millisecond)
	_, _ = c.Get(context.Background(), "neg", loader)

	mu.Lock()
	secondCount := callCount
	mu.Unlock()
	if secondCount < 2 {
		t.Fatalf("expected loader to run after negative ttl")
	}
}

func TestCacheDelete(t *testing.T) {
	c := New(Options{TTL: time.Minute, MaxEntries: 10}, MetricsHooks{})

	loader := func(_ context.Context, _ string) (*models.DailySnapshot, error) {
		return snap("kept"), nil
	}
	if _, err := c.Get(context.Background(), "alpha", loader); err != nil {
		t.Fatalf("expected load, got %v", err)
	}
	if _, ok := c.Peek("alpha"); !ok {
		t.Fatalf("expected cached entry")
	}

	c.Delete("alpha")
	if _, ok := c.Peek("alpha"); ok {
		t.Fatalf("expected key to be deleted")
	}
}

func TestCacheEviction(t *testing.T) {
	c := New(Options{TTL: time.Minute, MaxEntries: 2}, MetricsHooks{})

	for _, key := range []string{"first", "second", "third"} {
		k := key
		if _, err := c.Get(context.Background(), k, func(_ context.Context, _ string) (*models.DailySnapshot, error) {
			return snap(k), nil
		}); err != nil {
			t.Fatalf("expected load for %s, got %v", k, err)
		}
	}

	if _, ok := c.Peek("first"); ok {
		t.Fatalf("expected first entry to be evicted")
	}
	if _, ok := c.Peek("second"); !ok {
		t.Fatalf("expected second entry to remain")
	}
	if _, ok := c.Peek("third"); !ok {
		t.Fatalf("expected third entry to remain")
	}
}
