package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"metahub/internal/domain"
)

type fakeMetricsSource struct {
	snapshot *domain.MetricsSnapshot
	err      error
	presets  []string
}

func (s *fakeMetricsSource) AdAccountInsights(ctx context.Context, datePreset string) (*domain.MetricsSnapshot, error) {
	s.presets = append(s.presets, datePreset)
	return s.snapshot, s.err
}

type fakeMetricsSink struct {
	saved []domain.MetricsSnapshot
	err   error
}

func (s *fakeMetricsSink) SaveMetrics(ctx context.Context, m domain.MetricsSnapshot) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.saved = append(s.saved, m)
	return "metrics-page", nil
}

func TestSyncMetricsWritesSnapshot(t *testing.T) {
	source := &fakeMetricsSource{snapshot: &domain.MetricsSnapshot{Impressions: 500, Platform: "Facebook Ads"}}
	sink := &fakeMetricsSink{}
	s := &Scheduler{Source: source, Sink: sink}

	snapshot, err := s.SyncMetrics(context.Background(), "last_7d")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if snapshot == nil || snapshot.Impressions != 500 {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	if len(sink.saved) != 1 {
		t.Fatalf("expected one write, got %d", len(sink.saved))
	}
	if len(source.presets) != 1 || source.presets[0] != "last_7d" {
		t.Fatalf("expected preset forwarded, got %v", source.presets)
	}
}

func TestSyncMetricsNoDataWritesNothing(t *testing.T) {
	source := &fakeMetricsSource{}
	sink := &fakeMetricsSink{}
	s := &Scheduler{Source: source, Sink: sink}

	snapshot, err := s.SyncMetrics(context.Background(), "yesterday")
	if err != nil {
		t.Fatalf("empty period is not an error: %v", err)
	}
	if snapshot != nil {
		t.Fatalf("expected nil snapshot, got %+v", snapshot)
	}
	if len(sink.saved) != 0 {
		t.Fatalf("nothing should be written, got %d", len(sink.saved))
	}
}

func TestSyncMetricsSinkFailure(t *testing.T) {
	source := &fakeMetricsSource{snapshot: &domain.MetricsSnapshot{Impressions: 1}}
	sink := &fakeMetricsSink{err: errors.New("notion: down")}
	s := &Scheduler{Source: source, Sink: sink}

	if _, err := s.SyncMetrics(context.Background(), "last_7d"); err == nil {
		t.Fatalf("expected sink error surfaced")
	}
}

func TestUntilNext(t *testing.T) {
	morning := time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC)
	if got := untilNext(morning, 8); got != 2*time.Hour {
		t.Fatalf("expected 2h, got %v", got)
	}

	// At or past the hour, roll over to the next day.
	noon := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	if got := untilNext(noon, 8); got != 20*time.Hour {
		t.Fatalf("expected 20h, got %v", got)
	}
	exactly := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	if got := untilNext(exactly, 8); got != 24*time.Hour {
		t.Fatalf("expected 24h, got %v", got)
	}
}
