package cache

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	return New(mr.Addr(), "", 0, slog.Default())
}

func TestAnalysisCacheRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if got := s.GetAnalysis(ctx, "https://example.com/"); got != nil {
		t.Fatalf("cold cache returned %+v", got)
	}

	result := &models.AnalysisResult{
		URL:          "https://example.com/",
		IsPhishing:   false,
		ThreatScore:  10,
		ModelVersion: "test",
		Timestamp:    time.Now().UTC(),
	}
	s.SetAnalysis(ctx, result)

	got := s.GetAnalysis(ctx, "https://example.com/")
	if got == nil {
		t.Fatal("cache miss after set")
	}
	if got.ThreatScore != 10 || got.ModelVersion != "test" {
		t.Errorf("cached result = %+v", got)
	}
	if !got.Cached {
		t.Error("Cached flag not set on replayed result")
	}

	if other := s.GetAnalysis(ctx, "https://other.com/"); other != nil {
		t.Errorf("unrelated URL hit the cache: %+v", other)
	}
}

func queueThree(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	for _, u := range []string{"http://a.test/", "http://b.test/", "http://c.test/"} {
		err := s.StoreFeedback(ctx, models.FeedbackRecord{
			URL:          u,
			IsPhishing:   true,
			FeedbackType: models.FeedbackFalseNegative,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
}

func TestLearningBatchOldestFirst(t *testing.T) {
	s := testStore(t)
	queueThree(t, s)

	batch, err := s.LearningBatch(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch) != 2 {
		t.Fatalf("batch size = %d, want 2", len(batch))
	}
	if batch[0].URL != "http://a.test/" || batch[1].URL != "http://b.test/" {
		t.Errorf("batch = [%s, %s], want oldest first [a, b]", batch[0].URL, batch[1].URL)
	}

	// reading must not remove anything
	if n := s.QueueSize(context.Background()); n != 3 {
		t.Errorf("queue size after read = %d, want 3", n)
	}
}

func TestLearningBatchLargerThanQueue(t *testing.T) {
	s := testStore(t)
	queueThree(t, s)

	batch, err := s.LearningBatch(context.Background(), 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch) != 3 {
		t.Fatalf("batch size = %d, want all 3", len(batch))
	}
	if batch[0].URL != "http://a.test/" || batch[2].URL != "http://c.test/" {
		t.Errorf("batch order = [%s .. %s], want a first, c last", batch[0].URL, batch[2].URL)
	}
}

func TestConfirmProcessedRemovesExactlyTheBatchPrefix(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	queueThree(t, s)

	batch, err := s.LearningBatch(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}

	// only the first record of the batch was accepted downstream
	s.ConfirmProcessed(ctx, 1)

	if n := s.QueueSize(ctx); n != 2 {
		t.Fatalf("queue size = %d, want 2 after confirming 1", n)
	}
	remaining, err := s.LearningBatch(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if remaining[0].URL != batch[1].URL {
		t.Errorf("oldest remaining = %s, want the unaccepted %s", remaining[0].URL, batch[1].URL)
	}
	for _, rec := range remaining {
		if rec.URL == batch[0].URL {
			t.Errorf("accepted record %s still queued", rec.URL)
		}
	}
}

func TestConfirmProcessedFullDrain(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	queueThree(t, s)

	s.ConfirmProcessed(ctx, 3)
	if n := s.QueueSize(ctx); n != 0 {
		t.Errorf("queue size = %d, want empty", n)
	}

	// over-confirm on an empty queue is harmless
	s.ConfirmProcessed(ctx, 5)
	if n := s.QueueSize(ctx); n != 0 {
		t.Errorf("queue size = %d after over-confirm", n)
	}
}

func TestStoreFeedbackKeepsPerURLRecord(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	queueThree(t, s)

	raw, err := s.client.Get(ctx, feedbackKeyPrefix+"http://b.test/").Result()
	if err != nil {
		t.Fatalf("per-URL feedback key missing: %v", err)
	}
	if raw == "" {
		t.Error("empty feedback record")
	}
}

func TestAvailability(t *testing.T) {
	mr := miniredis.RunT(t)
	s := New(mr.Addr(), "", 0, slog.Default())
	if !s.Available(context.Background()) {
		t.Error("running redis reported unavailable")
	}

	mr.Close()
	if s.Available(context.Background()) {
		t.Error("closed redis reported available")
	}
	if got := s.GetAnalysis(context.Background(), "u"); got != nil {
		t.Errorf("dead redis returned a cached result: %+v", got)
	}
	if n := s.QueueSize(context.Background()); n != -1 {
		t.Errorf("dead redis queue size = %d, want -1", n)
	}
}
