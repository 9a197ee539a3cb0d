// Package cache memoizes built daily snapshots per user and day. Entries are
// served fresh within the TTL, served stale while a single background
// rebuild runs, and failed builds are held briefly as negative entries so a
// broken collaborator cannot stampede the store.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/models"
)

// DefaultRefreshTimeout bounds background rebuilds triggered by stale reads.
const DefaultRefreshTimeout = 30 * time.Second

type Options struct {
	TTL                  time.Duration
	StaleWhileRevalidate time.Duration
	NegativeTTL          time.Duration
	MaxEntries           int
	RefreshTimeout       time.Duration
}

type MetricsHooks struct {
	OnHit   func(labels map[string]string)
	OnMiss  func(labels map[string]string)
	OnStale func(labels map[string]string)
	OnStore func(labels map[string]string)
	OnError func(labels map[string]string)
}

// entry is immutable once stored; readers share it without locking.
type entry struct {
	snapshot  *models.DailySnapshot
	err       error
	expiresAt time.Time
	staleAt   time.Time
	negative  bool
}

type Cache struct {
	mu      sync.RWMutex
	items   map[string]*entry
	order   []string
	opts    Options
	metrics MetricsHooks
	sf      singleflight.Group
}

func New(opts Options, hooks MetricsHooks) *Cache {
	if opts.RefreshTimeout <= 0 {
		opts.RefreshTimeout = DefaultRefreshTimeout
	}
	return &Cache{
		items:   make(map[string]*entry),
		order:   make([]string, 0, 128),
		opts:    opts,
		metrics: hooks,
	}
}

// Loader builds the snapshot for a key on miss or refresh.
type Loader func(ctx context.Context, key string) (*models.DailySnapshot, error)

// Get returns the cached snapshot for key, loading it on miss. Fresh entries
// are returned directly; entries inside the stale window are returned while
// one background rebuild runs; hard-expired entries are rebuilt inline.
// Concurrent misses for the same key share a single load.
func (c *Cache) Get(ctx context.Context, key string, loader Loader) (*models.DailySnapshot, error) {
	now := time.Now()
	c.mu.RLock()
	e, found := c.items[key]
	c.mu.RUnlock()

	if found {
		switch {
		case now.Before(e.expiresAt):
			if c.metrics.OnHit != nil {
				c.metrics.OnHit(map[string]string{"key": key})
			}
			if e.negative {
				return nil, e.err
			}
			return e.snapshot, nil

		case now.Before(e.staleAt):
			if c.metrics.OnStale != nil {
				c.metrics.OnStale(map[string]string{"key": key})
			}
			// The rebuild must outlive the request: gin cancels the request
			// context as soon as the response is written.
			refreshCtx := context.WithoutCancel(ctx)
			go func() {
				_, _, _ = c.sf.Do("refresh:"+key, func() (interface{}, error) {
					rctx, cancel := context.WithTimeout(refreshCtx, c.opts.RefreshTimeout)
					defer cancel()
					snap, err := loader(rctx, key)
					c.store(key, snap, err)
					return nil, nil
				})
			}()
			if e.negative {
				return nil, e.err
			}
			return e.snapshot, nil

		default:
			c.mu.Lock()
			delete(c.items, key)
			c.removeFromOrder(key)
			c.mu.Unlock()
		}
	}

	if c.metrics.OnMiss != nil {
		c.metrics.OnMiss(map[string]string{"key": key})
	}
	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		snap, err := loader(ctx, key)
		c.store(key, snap, err)
		return snap, err
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.DailySnapshot), nil
}

func (c *Cache) store(key string, snap *models.DailySnapshot, err error) {
	now := time.Now()
	var e *entry
	if err == nil {
		e = &entry{
			snapshot:  snap,
			expiresAt: now.Add(c.opts.TTL),
			staleAt:   now.Add(c.opts.TTL + c.opts.StaleWhileRevalidate),
		}
	} else {
		if c.metrics.OnError != nil {
			c.metrics.OnError(map[string]string{"key": key})
		}
		if c.opts.NegativeTTL <= 0 {
			return
		}
		e = &entry{
			err:       err,
			negative:  true,
			expiresAt: now.Add(c.opts.NegativeTTL),
			staleAt:   now.Add(c.opts.NegativeTTL),
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.items[key]; !exists {
		c.order = append(c.order, key)
	}
	c.items[key] = e
	c.evictIfNeeded()
	if c.metrics.OnStore != nil {
		c.metrics.OnStore(map[string]string{"key": key, "ok": boolStr(err == nil)})
	}
}

func (c *Cache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

func (c *Cache) evictIfNeeded() {
	if c.opts.MaxEntries <= 0 || len(c.items) <= c.opts.MaxEntries {
		return
	}
	// FIFO by insertion order; one entry per user/day makes LRU overkill
	excess := len(c.items) - c.opts.MaxEntries
	for excess > 0 && len(c.order) > 0 {
		victim := c.order[0]
		c.order = c.order[1:]
		delete(c.items, victim)
		excess--
	}
}

// Peek returns a cached snapshot without triggering a load. Stale entries
// are allowed; negative and hard-expired entries are not.
func (c *Cache) Peek(key string) (*models.DailySnapshot, bool) {
	now := time.Now()
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.items[key]
	if !ok || e.negative || now.After(e.staleAt) {
		return nil, false
	}
	return e.snapshot, true
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.removeFromOrder(key)
	c.mu.Unlock()
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
