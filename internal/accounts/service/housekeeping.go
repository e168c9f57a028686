package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/studyconnect/accounts/internal/accounts/store"
)

// HousekeepingService periodically stamps expired invitations and deletes
// dead sessions to prevent unbounded table growth. The expired stamp on
// invitations is advisory (redemption checks the clock, not the stamp), it
// exists so operators reading the table see reality.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// This is non-blocking and should be called after the database is ready.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

// run is the main background worker loop.
func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup performs the actual maintenance. Each task is independent, a
// failure in one won't stop the others.
func (s *HousekeepingService) cleanup() {
	ctx := context.Background()
	now := time.Now().UTC()

	// Stamp expired invitations
	if n, err := s.Store.Invitations().MarkExpired(ctx, now); err != nil {
		s.Logger.Error("failed to stamp expired invitations", "error", err)
	} else if n > 0 {
		s.Logger.Debug("stamped expired invitations", "count", n)
	}

	// Delete expired and revoked sessions
	if err := s.Store.Sessions().DeleteExpired(ctx, now); err != nil {
		s.Logger.Error("failed to delete dead sessions", "error", err)
	} else {
		s.Logger.Debug("deleted dead sessions")
	}
}
