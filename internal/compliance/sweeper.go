package compliance

import (
	"context"
	"log/slog"
	"time"

	"custodia/pkg/requestcontext"
)

// Sweeper runs the reconciliation sweep on a fixed interval. One sweep runs
// immediately on start so a restarted service never waits a full interval to
// catch up on elapsed due dates.
type Sweeper struct {
	manager  *Manager
	interval time.Duration
	logger   *slog.Logger
}

func NewSweeper(manager *Manager, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{manager: manager, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("reconciliation sweeper started", "interval", s.interval)

	s.sweep(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reconciliation sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	ctx = requestcontext.WithTime(ctx, time.Now().UTC())
	if _, err := s.manager.ReconcileAll(ctx); err != nil {
		s.logger.Error("reconciliation sweep failed", "error", err)
	}
}
