package core

// scheduler.go runs periodic customer snapshot exports.
//
// The scheduler is long-running and stops when its context is cancelled.
// A failed export is logged and retried on the next tick; it never stops
// the scheduler or the server.

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// StartExportScheduler exports a snapshot every interval until ctx is done.
// The first export happens one interval after start.
func (s *Service) StartExportScheduler(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.snapshots == nil {
		return
	}
	slog.Info("export scheduler started", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("export scheduler stopped")
			return
		case <-ticker.C:
			s.runExportJob(ctx)
		}
	}
}

func (s *Service) runExportJob(ctx context.Context) {
	res, err := s.ExportSnapshot(ctx)
	switch {
	case err == nil:
		slog.Debug("scheduled export completed", "location", res.Location)
	case errors.Is(err, context.Canceled):
	case errors.Is(err, ErrTooManyExports):
		slog.Warn("scheduled export skipped, exports busy")
	default:
		slog.Error("scheduled export failed", "error", err)
	}
}
