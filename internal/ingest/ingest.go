package ingest

import (
	"context"
	"log/slog"
	"time"

	"riskwatch/internal/model"
)

func SendNonBlocking(ctx context.Context, out chan<- model.EvidenceSet, ev model.EvidenceSet, logger *slog.Logger) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	default:
		if logger != nil {
			logger.Warn("evidence channel full, dropping batch", "country", ev.CountryCode)
		}
		return false
	}
}

func BackoffSleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		d = 200 * time.Millisecond
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
