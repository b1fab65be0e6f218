// Package cache wraps Redis for analysis result caching and the feedback
// learning queue. Every operation is best-effort: a missing or unreachable
// Redis degrades the service to uncached operation, it never fails a request.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/models"
)

const (
	analysisKeyPrefix = "url_cache:"
	feedbackKeyPrefix = "feedback:"
	learningQueueKey  = "learning_queue"

	// AnalysisTTL bounds staleness of cached verdicts. Feedback records live
	// longer so an offline central store does not lose them.
	AnalysisTTL = 7 * 24 * time.Hour
	FeedbackTTL = 30 * 24 * time.Hour
)

// Store is the Redis-backed cache and feedback queue.
type Store struct {
	client *redis.Client
	logger *slog.Logger
}

// New connects to Redis at addr. A failed ping is logged and the returned
// Store operates in degraded mode; it is never nil.
func New(addr, password string, db int, logger *slog.Logger) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, caching disabled", "addr", addr, "error", err)
	}
	return &Store{client: client, logger: logger}
}

// Available reports whether Redis currently answers pings.
func (s *Store) Available(ctx context.Context) bool {
	if s == nil || s.client == nil {
		return false
	}
	return s.client.Ping(ctx).Err() == nil
}

// GetAnalysis returns the cached result for url, or nil on miss or any
// Redis/decode failure.
func (s *Store) GetAnalysis(ctx context.Context, url string) *models.AnalysisResult {
	if s == nil || s.client == nil {
		return nil
	}
	raw, err := s.client.Get(ctx, analysisKeyPrefix+url).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("cache read failed", "error", err)
		}
		return nil
	}
	var result models.AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		s.logger.Warn("cache entry corrupt, dropping", "url", url, "error", err)
		s.client.Del(ctx, analysisKeyPrefix+url)
		return nil
	}
	result.Cached = true
	return &result
}

// SetAnalysis caches result under its URL for AnalysisTTL.
func (s *Store) SetAnalysis(ctx context.Context, result *models.AnalysisResult) {
	if s == nil || s.client == nil || result == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn("cache encode failed", "error", err)
		return
	}
	if err := s.client.Set(ctx, analysisKeyPrefix+result.URL, raw, AnalysisTTL).Err(); err != nil {
		s.logger.Warn("cache write failed", "error", err)
	}
}

// StoreFeedback records one feedback entry under a per-URL key and pushes it
// onto the learning queue for eventual central-store sync.
func (s *Store) StoreFeedback(ctx context.Context, rec models.FeedbackRecord) error {
	if s == nil || s.client == nil {
		return redis.ErrClosed
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, feedbackKeyPrefix+rec.URL, raw, FeedbackTTL)
	pipe.LPush(ctx, learningQueueKey, raw)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warn("feedback store failed", "url", rec.URL, "error", err)
		return err
	}
	return nil
}

// LearningBatch returns up to limit queued feedback records without removing
// them, oldest first. Records stay queued until ConfirmProcessed; a crash
// between read and confirm re-delivers, never loses.
func (s *Store) LearningBatch(ctx context.Context, limit int) ([]models.FeedbackRecord, error) {
	if s == nil || s.client == nil {
		return nil, redis.ErrClosed
	}
	raws, err := s.client.LRange(ctx, learningQueueKey, int64(-limit), -1).Result()
	if err != nil {
		return nil, err
	}
	// New records LPUSH at the head, so the tail slice arrives newest-first.
	// Reverse it: records[0] must be the tail entry, the one ConfirmProcessed
	// pops first, or a partial confirm would remove undelivered records.
	records := make([]models.FeedbackRecord, 0, len(raws))
	for i := len(raws) - 1; i >= 0; i-- {
		var rec models.FeedbackRecord
		if err := json.Unmarshal([]byte(raws[i]), &rec); err != nil {
			s.logger.Warn("skipping corrupt queue entry", "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// ConfirmProcessed removes n records from the tail of the learning queue
// after a successful central-store sync.
func (s *Store) ConfirmProcessed(ctx context.Context, n int) {
	if s == nil || s.client == nil || n <= 0 {
		return
	}
	for i := 0; i < n; i++ {
		if err := s.client.RPop(ctx, learningQueueKey).Err(); err != nil {
			if err != redis.Nil {
				s.logger.Warn("queue trim failed", "error", err)
			}
			return
		}
	}
}

// QueueSize returns the current learning queue depth, or -1 when Redis is
// unreachable.
func (s *Store) QueueSize(ctx context.Context) int64 {
	if s == nil || s.client == nil {
		return -1
	}
	n, err := s.client.LLen(ctx, learningQueueKey).Result()
	if err != nil {
		return -1
	}
	return n
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
