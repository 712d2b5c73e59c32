package core

// scheduler.go runs background maintenance for the batch registry.
//
// Previews are held in memory until confirmed, cancelled or expired. The
// janitor drops expired batches so abandoned uploads do not accumulate.
// It is context-aware for graceful shutdown.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultJanitorInterval is how often expired batches are purged.
const DefaultJanitorInterval = time.Minute

// StartBatchJanitor purges expired batches every interval until ctx is
// cancelled. It blocks; run it in a goroutine.
func (s *Service) StartBatchJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}

	slog.Info("batch janitor started",
		"interval", interval.String(),
		"batch_ttl", s.opts.BatchTTL.String(),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("batch janitor stopped")
			return
		case <-ticker.C:
			s.runJanitor()
		}
	}
}

func (s *Service) runJanitor() {
	start := time.Now()
	removed := s.PurgeExpiredBatches()
	if removed == 0 {
		return
	}
	slog.Info("purged expired import batches",
		"batches_purged", removed,
		"batches_remaining", s.BatchCount(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
