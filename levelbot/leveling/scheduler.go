package leveling

import (
	"context"
	"log/slog"
	"time"
)

const (
	cleanupInterval = 6 * time.Hour
	resetJobTimeout = 5 * time.Minute
)

// Scheduler drives the time-based ledger maintenance: the once-per-boundary
// daily reset and the periodic retention purge. The next boundary is always
// recomputed through the ledger's own DayCycle, so scheduler and ledger can
// never disagree about where a day ends.
type Scheduler struct {
	ledger *Ledger
	cycle  *DayCycle
}

func NewScheduler(ledger *Ledger, cycle *DayCycle) *Scheduler {
	return &Scheduler{ledger: ledger, cycle: cycle}
}

// Start runs the reset loop and the cleanup ticker until ctx is cancelled.
// An initial cleanup runs immediately so stale rows from downtime do not
// linger until the first tick.
func (s *Scheduler) Start(ctx context.Context) {
	go s.resetLoop(ctx)
	go s.cleanupLoop(ctx)
}

func (s *Scheduler) resetLoop(ctx context.Context) {
	for {
		next := s.cycle.NextReset(time.Now())
		wait := time.Until(next)
		slog.Info("Next daily XP reset scheduled",
			slog.String("type", "sys"),
			slog.Time("at", next),
			slog.Duration("in", wait))

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
			jobCtx, cancel := context.WithTimeout(ctx, resetJobTimeout)
			if _, err := s.ledger.ResetDaily(jobCtx); err != nil {
				slog.Error("Scheduled daily reset failed",
					slog.String("type", "sys"),
					slog.Any("error", err))
			}
			cancel()
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

func (s *Scheduler) cleanupLoop(ctx context.Context) {
	run := func() {
		jobCtx, cancel := context.WithTimeout(ctx, resetJobTimeout)
		defer cancel()
		if _, err := s.ledger.CleanupOldRecords(jobCtx); err != nil {
			slog.Error("Daily progress cleanup failed",
				slog.String("type", "sys"),
				slog.Any("error", err))
		}
	}

	run()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			run()
		case <-ctx.Done():
			return
		}
	}
}
