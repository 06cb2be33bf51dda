package cleanup

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// IdleSweeper drops sessions that have been idle longer than maxIdle.
type IdleSweeper interface {
	CleanupIdle(maxIdle time.Duration) int
}

type Worker struct {
	Sessions IdleSweeper
	MaxIdle  time.Duration
	Interval time.Duration
}

func NewWorker(sessions IdleSweeper, maxIdle, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Worker{Sessions: sessions, MaxIdle: maxIdle, Interval: interval}
}

// Start runs one sweep immediately and then every Interval until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	log.Info().Str("component", "cleanup").Dur("interval", w.Interval).Dur("max_idle", w.MaxIdle).Msg("background worker started")

	w.runCleanup()

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("component", "cleanup").Msg("background worker stopped")
			return
		case <-ticker.C:
			w.runCleanup()
		}
	}
}

func (w *Worker) runCleanup() int {
	removed := w.Sessions.CleanupIdle(w.MaxIdle)
	if removed > 0 {
		log.Info().Str("component", "cleanup").Int("removed", removed).Msg("removed idle sessions")
	}
	return removed
}
