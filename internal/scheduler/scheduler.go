// Package scheduler runs the recurring cache-warm task that keeps the
// default daily snapshot fresh without waiting for the first request.
package scheduler

import (
	"context"
	"time"

	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/logging"
)

// DefaultInterval is how often the warm task runs.
const DefaultInterval = 10 * time.Minute

// WarmFunc precomputes one user's snapshot.
type WarmFunc func(ctx context.Context, userID string) error

// Scheduler handles the periodic snapshot warm task
type Scheduler struct {
	logger   logging.Logger
	warmFn   WarmFunc
	warmUser string
	interval time.Duration
	ticker   *time.Ticker
	stopChan chan bool
}

// NewScheduler creates a new scheduler instance. warmUser is the user whose
// snapshot gets precomputed; an empty warmUser disables warming.
func NewScheduler(warmFn WarmFunc, warmUser string, interval time.Duration, logger logging.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		logger:   logger,
		warmFn:   warmFn,
		warmUser: warmUser,
		interval: interval,
		stopChan: make(chan bool),
	}
}

// Start begins the scheduled tasks
func (s *Scheduler) Start() {
	if s.warmUser == "" {
		s.logger.Info("Snapshot warm task disabled, no warm user configured")
		return
	}

	s.logger.WithFields(logging.Fields{
		"interval":  s.interval,
		"warm_user": s.warmUser,
	}).Info("Starting snapshot warm scheduler")

	s.ticker = time.NewTicker(s.interval)
	go s.runWarmTask()

	// Warm once shortly after startup
	go func() {
		time.Sleep(5 * time.Second)
		s.warm()
	}()
}

// Stop stops all scheduled tasks
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping snapshot warm scheduler")

	if s.ticker != nil {
		s.ticker.Stop()
	}

	close(s.stopChan)
}

func (s *Scheduler) runWarmTask() {
	for {
		select {
		case <-s.ticker.C:
			s.warm()
		case <-s.stopChan:
			s.logger.Info("Stopping snapshot warm task runner")
			return
		}
	}
}

func (s *Scheduler) warm() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.warmFn(ctx, s.warmUser); err != nil {
		s.logger.WithError(err).Error("Failed to warm daily snapshot")
		return
	}
	s.logger.Debug("Warmed daily snapshot")
}
