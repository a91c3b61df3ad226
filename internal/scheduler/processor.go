package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"metahub/internal/domain"
	"metahub/internal/observability"
	"metahub/internal/util"
)

// ErrRunInProgress is returned when a reconciliation run is triggered while
// the previous one is still going. Overlapping runs would read the same
// Scheduled set and double-publish.
var ErrRunInProgress = errors.New("reconciliation run already in progress")

type Store interface {
	QueryDuePosts(ctx context.Context, now time.Time) ([]domain.ScheduledPost, error)
	ClaimPost(ctx context.Context, pageID string) error
	UpdatePostStatus(ctx context.Context, pageID string, status domain.PostStatus, externalID string) error
}

type Publisher interface {
	PublishPost(ctx context.Context, content, imageURL string) (string, error)
	PublishToInstagram(ctx context.Context, imageURL, caption string) (string, error)
}

const (
	OutcomePublished = "published"
	OutcomeError     = "error"
	OutcomeSkipped   = "skipped"
)

type Result struct {
	PostID     string `json:"postId"`
	ExternalID string `json:"externalId,omitempty"`
	Outcome    string `json:"outcome"`
	Reason     string `json:"reason,omitempty"`
}

type Summary struct {
	RunID     string    `json:"runId"`
	StartedAt time.Time `json:"startedAt"`
	Processed int       `json:"processed"`
	Published int       `json:"published"`
	Failed    int       `json:"failed"`
	Skipped   int       `json:"skipped"`
	Results   []Result  `json:"results"`
}

// Processor publishes due scheduled posts and writes their terminal status
// back, isolating failures per post.
type Processor struct {
	Store     Store
	Publisher Publisher
	Limiter   *rate.Limiter

	// Now is overridable for tests; defaults to util.NowUTC.
	Now func() time.Time

	runMu sync.Mutex
}

// ProcessDuePosts runs one reconciliation pass. At most one pass runs at a
// time; a second trigger gets ErrRunInProgress instead of a duplicate batch.
func (p *Processor) ProcessDuePosts(ctx context.Context) (Summary, error) {
	if !p.runMu.TryLock() {
		observability.ReconcileRuns.WithLabelValues("overlap").Inc()
		return Summary{}, ErrRunInProgress
	}
	defer p.runMu.Unlock()

	now := p.now()
	summary := Summary{RunID: util.NewRunID(), StartedAt: now}

	posts, err := p.Store.QueryDuePosts(ctx, now)
	if err != nil {
		observability.ReconcileRuns.WithLabelValues("query_error").Inc()
		return summary, err
	}

	for _, post := range posts {
		// The store query already filters on status and publish time; keep
		// the invariant local so a misbehaving store cannot trigger a publish.
		if !post.Due(now) {
			continue
		}
		summary.Processed++
		res := p.processPost(ctx, post)
		switch res.Outcome {
		case OutcomePublished:
			summary.Published++
		case OutcomeError:
			summary.Failed++
		case OutcomeSkipped:
			summary.Skipped++
		}
		observability.ReconcilePosts.WithLabelValues(res.Outcome).Inc()
		summary.Results = append(summary.Results, res)
	}

	observability.ReconcileRuns.WithLabelValues("ok").Inc()
	return summary, nil
}

func (p *Processor) processPost(ctx context.Context, post domain.ScheduledPost) Result {
	res := Result{PostID: post.ID}

	// A post without content is a silent no-op: no status change, no attempt.
	if post.Content == "" {
		slog.Warn("scheduled post has no content, skipping", "post_id", post.ID)
		res.Outcome = OutcomeSkipped
		res.Reason = "empty content"
		return res
	}

	// Claim before publishing so a concurrent external edit or late overlap
	// sees Processing, not Scheduled. A failed claim skips the publish: if the
	// store is unreachable we could not record the outcome either.
	if err := p.Store.ClaimPost(ctx, post.ID); err != nil {
		slog.Error("post claim failed", "post_id", post.ID, "err", err)
		res.Outcome = OutcomeError
		res.Reason = "claim failed: " + err.Error()
		return res
	}

	if p.Limiter != nil {
		if err := p.Limiter.Wait(ctx); err != nil {
			p.markError(ctx, post.ID)
			res.Outcome = OutcomeError
			res.Reason = err.Error()
			return res
		}
	}

	start := time.Now()
	externalID, err := p.publish(ctx, post)
	observability.PublishLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		observability.PublishAttempts.WithLabelValues(string(post.Platform), "error").Inc()
		slog.Error("post publish failed", "post_id", post.ID, "platform", post.Platform, "err", err)
		p.markError(ctx, post.ID)
		res.Outcome = OutcomeError
		res.Reason = err.Error()
		return res
	}

	observability.PublishAttempts.WithLabelValues(string(post.Platform), "ok").Inc()
	res.ExternalID = externalID
	res.Outcome = OutcomePublished

	if err := p.Store.UpdatePostStatus(ctx, post.ID, domain.StatusPublished, externalID); err != nil {
		// The post is live; only the bookkeeping failed. Surface it in the
		// summary without reclassifying the publish itself.
		slog.Error("published post status update failed", "post_id", post.ID, "external_id", externalID, "err", err)
		res.Reason = "status update failed: " + err.Error()
	}
	return res
}

// publish routes to the two-phase Instagram flow when the post targets
// Instagram and carries media; everything else goes through the generic page
// publish (text, or photo when media is present).
func (p *Processor) publish(ctx context.Context, post domain.ScheduledPost) (string, error) {
	if post.Platform == domain.PlatformInstagram && post.ImageURL != "" {
		return p.Publisher.PublishToInstagram(ctx, post.ImageURL, post.Content)
	}
	return p.Publisher.PublishPost(ctx, post.Content, post.ImageURL)
}

func (p *Processor) markError(ctx context.Context, postID string) {
	if err := p.Store.UpdatePostStatus(ctx, postID, domain.StatusError, ""); err != nil {
		slog.Error("post error-status update failed", "post_id", postID, "err", err)
	}
}

func (p *Processor) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return util.NowUTC()
}
