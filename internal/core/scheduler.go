package core

// scheduler.go provides background maintenance for the view registry.
//
// The reaper evicts views that have not been read or mutated for longer
// than the configured idle timeout. It is long-running and context-aware
// for graceful shutdown.

import (
	"context"
	"log/slog"
	"time"

	"github.com/JonMunkholm/countrytable/internal/metrics"
)

// StartViewReaper periodically evicts idle views until ctx is done.
// A non-positive interval falls back to the configured sweep interval.
func (s *Service) StartViewReaper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = s.viewsCfg.SweepInterval
	}

	slog.Info("view reaper started",
		"interval", interval,
		"idle_timeout", s.viewsCfg.IdleTimeout,
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("view reaper stopped")
			return
		case <-ticker.C:
			if n := s.reapIdleViews(); n > 0 {
				slog.Info("evicted idle views", "evicted", n, "active", s.ActiveViews())
			}
		}
	}
}

// reapIdleViews removes views idle longer than the idle timeout and returns
// how many were removed.
func (s *Service) reapIdleViews() int {
	cutoff := s.now().Add(-s.viewsCfg.IdleTimeout).UnixNano()

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, lv := range s.views {
		if lv.lastUsed.Load() < cutoff {
			delete(s.views, id)
			evicted++
		}
	}
	metrics.ActiveViews.Set(float64(len(s.views)))
	return evicted
}
