package httpapi

import (
	"log/slog"
	"net/http"
	"sync"

	"metahub/internal/meta"
)

func (a *API) handleBestTimes(w http.ResponseWriter, r *http.Request) {
	times, err := a.Platform.BestPostingTimes(r.Context())
	if err != nil {
		slog.Error("best posting times fetch failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, times)
}

func (a *API) handleMetaScheduled(w http.ResponseWriter, r *http.Request) {
	posts, err := a.Platform.ScheduledFromMeta(r.Context())
	if err != nil {
		slog.Error("scheduled posts fetch failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(posts),
		"posts": posts,
	})
}

// handleInsightsSummary fans out both insight calls concurrently and degrades
// per section: a failure in one leaves the other intact.
func (a *API) handleInsightsSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		wg        sync.WaitGroup
		times     meta.PostingTimes
		timesErr  error
		scheduled []meta.MetaScheduledPost
		schedErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		times, timesErr = a.Platform.BestPostingTimes(ctx)
	}()
	go func() {
		defer wg.Done()
		scheduled, schedErr = a.Platform.ScheduledFromMeta(ctx)
	}()
	wg.Wait()

	body := map[string]any{}
	if timesErr != nil {
		slog.Error("best posting times fetch failed", "err", timesErr)
		body["bestTimes"] = map[string]string{"error": timesErr.Error()}
	} else {
		body["bestTimes"] = times
	}
	if schedErr != nil {
		slog.Error("scheduled posts fetch failed", "err", schedErr)
		body["scheduledPosts"] = map[string]string{"error": schedErr.Error()}
	} else {
		body["scheduledPosts"] = map[string]any{
			"count": len(scheduled),
			"posts": scheduled,
		}
	}
	writeJSON(w, http.StatusOK, body)
}
