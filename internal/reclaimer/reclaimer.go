// Package reclaimer runs the periodic sweep that deletes abandoned rooms.
package reclaimer

import (
	"context"
	"time"

	"github.com/juanmoore-creator/elimpostor/internal/lobby"
	"go.uber.org/zap"
)

type Reclaimer struct {
	manager  *lobby.Manager
	interval time.Duration
	logger   *zap.SugaredLogger
}

func New(manager *lobby.Manager, interval time.Duration, logger *zap.SugaredLogger) *Reclaimer {
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	return &Reclaimer{
		manager:  manager,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps on a fixed interval until the context is cancelled. The first
// sweep happens one interval in, not at startup; creation-time reclamation
// covers the window.
func (r *Reclaimer) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Infow("reclaimer shutting down")
			return

		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Reclaimer) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	reclaimed, err := r.manager.ReclaimStaleRooms(sweepCtx)
	if err != nil {
		r.logger.Warnw("reclaim sweep failed", "error", err)
		return
	}

	if reclaimed > 0 {
		r.logger.Infow("reclaimed stale rooms", "count", reclaimed)
	}
}
