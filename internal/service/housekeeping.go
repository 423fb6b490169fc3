package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/caronte/internal/store"
)

// HousekeepingService periodically removes session records that have not
// been written for MaxAge. Exchanges rewrite the record and reads touch it,
// so only abandoned browser sessions age out.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	MaxAge   time.Duration
	Now      func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates the service. A non-positive interval
// defaults to one hour and a non-positive maxAge to thirty days.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval, maxAge time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	if maxAge <= 0 {
		maxAge = 30 * 24 * time.Hour
	}

	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		MaxAge:   maxAge,
		Now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the sweep immediately and then every Interval until Stop.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "max_age", s.MaxAge)
}

// Stop blocks until an in-progress sweep has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Sweep(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Sweep deletes stale session records once and reports how many went.
func (s *HousekeepingService) Sweep(ctx context.Context) int64 {
	cutoff := s.Now().Add(-s.MaxAge)

	n, err := s.Store.SessionTokens().DeleteSessionTokensBefore(ctx, cutoff)
	if err != nil {
		s.Logger.Error("failed to delete stale sessions", "error", err)
		return 0
	}

	s.Logger.Info("housekeeping cleanup completed", "deleted_sessions", n)
	return n
}
