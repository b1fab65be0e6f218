package central

import (
	"context"
	"log/slog"
	"time"

	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/cache"
)

const (
	syncInterval = 5 * time.Minute
	syncBatch    = 50
)

// Syncer drains the Redis learning queue into the central store on a fixed
// interval. Records are confirmed off the queue only after the store accepts
// them, so delivery is at-least-once.
type Syncer struct {
	store  *cache.Store
	client *Client
	logger *slog.Logger
}

// NewSyncer wires the feedback queue to the central store.
func NewSyncer(store *cache.Store, client *Client, logger *slog.Logger) *Syncer {
	return &Syncer{store: store, client: client, logger: logger}
}

// Run blocks, syncing every five minutes until ctx is cancelled. Intended to
// run in its own goroutine from main.
func (s *Syncer) Run(ctx context.Context) {
	if !s.client.Enabled() {
		s.logger.Info("central store not configured, feedback sync disabled")
		return
	}
	ticker := time.NewTicker(syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.syncOnce(ctx)
		}
	}
}

func (s *Syncer) syncOnce(ctx context.Context) {
	records, err := s.store.LearningBatch(ctx, syncBatch)
	if err != nil {
		s.logger.Warn("feedback sync skipped", "error", err)
		return
	}
	if len(records) == 0 {
		return
	}

	accepted, err := s.client.PersistFeedbackBatch(ctx, records)
	if accepted > 0 {
		s.store.ConfirmProcessed(ctx, accepted)
	}
	if err != nil {
		s.logger.Warn("feedback sync partial",
			"accepted", accepted, "pending", len(records)-accepted, "error", err)
		return
	}
	s.logger.Info("feedback synced", "count", accepted)
}
