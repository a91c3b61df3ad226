package scheduler

import (
	"context"
	"log/slog"
	"time"

	"metahub/internal/domain"
)

type MetricsSource interface {
	AdAccountInsights(ctx context.Context, datePreset string) (*domain.MetricsSnapshot, error)
}

type MetricsSink interface {
	SaveMetrics(ctx context.Context, m domain.MetricsSnapshot) (string, error)
}

// Scheduler drives the periodic jobs: the post reconciliation loop and the
// daily ad-metrics sync.
type Scheduler struct {
	Processor *Processor
	Source    MetricsSource
	Sink      MetricsSink
}

// Run triggers the reconciliation loop on a fixed interval until ctx is done.
// An overlap (previous pass still running when the ticker fires) is logged
// and dropped, never stacked.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	slog.Info("post processor started", "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("post processor stopped")
			return
		case <-ticker.C:
			summary, err := s.Processor.ProcessDuePosts(ctx)
			if err != nil {
				slog.Error("scheduled run failed", "err", err)
				continue
			}
			if summary.Processed > 0 {
				slog.Info("scheduled run finished",
					"run_id", summary.RunID,
					"processed", summary.Processed,
					"published", summary.Published,
					"failed", summary.Failed,
					"skipped", summary.Skipped,
				)
			}
		}
	}
}

// SyncMetrics pulls one ad insights snapshot and stores it. A period with no
// data is not an error; nothing is written.
func (s *Scheduler) SyncMetrics(ctx context.Context, datePreset string) (*domain.MetricsSnapshot, error) {
	snapshot, err := s.Source.AdAccountInsights(ctx, datePreset)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, nil
	}
	if _, err := s.Sink.SaveMetrics(ctx, *snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// RunMetricsSync syncs yesterday's ad metrics every day at 08:00 UTC.
func (s *Scheduler) RunMetricsSync(ctx context.Context) {
	slog.Info("daily metrics sync started")
	for {
		timer := time.NewTimer(untilNext(time.Now().UTC(), 8))
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("daily metrics sync stopped")
			return
		case <-timer.C:
			if _, err := s.SyncMetrics(ctx, "yesterday"); err != nil {
				slog.Error("daily metrics sync failed", "err", err)
			} else {
				slog.Info("daily metrics synced")
			}
		}
	}
}

func untilNext(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}
