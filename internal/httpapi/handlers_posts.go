package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"metahub/internal/domain"
	"metahub/internal/scheduler"
	"metahub/internal/util"
)

func (a *API) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := a.Store.ListScheduled(r.Context())
	if err != nil {
		slog.Error("list posts failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(posts),
		"posts": posts,
	})
}

func (a *API) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidJSON)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pageID, err := a.createPost(r, req)
	if err != nil {
		slog.Error("create post failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"postId":  pageID,
		"message": "post scheduled",
	})
}

func (a *API) createPost(r *http.Request, req domain.CreatePostRequest) (string, error) {
	platform := domain.Platform(req.Platform)
	if platform == "" {
		platform = domain.PlatformInstagram
	}
	publishAt := util.NowUTC()
	if req.PublishDate != "" {
		t, err := time.Parse(time.RFC3339, req.PublishDate)
		if err != nil {
			return "", fmt.Errorf("invalid publishDate: %w", err)
		}
		publishAt = t
	}
	return a.Store.CreateScheduledPost(r.Context(), req.Content, req.ImageURL, platform, publishAt)
}

type batchItemResult struct {
	Success bool   `json:"success"`
	PostID  string `json:"postId,omitempty"`
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

// handleBatchCreate schedules each post independently: one invalid or failed
// item never blocks the rest. Items with empty content are rejected here so
// they cannot reach the processing loop's silent-skip branch.
func (a *API) handleBatchCreate(w http.ResponseWriter, r *http.Request) {
	var req domain.BatchCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidJSON)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	results := make([]batchItemResult, 0, len(req.Posts))
	succeeded := 0
	for _, post := range req.Posts {
		item := batchItemResult{Content: util.Truncate(post.Content, 50)}
		if err := post.Validate(); err != nil {
			item.Error = err.Error()
		} else if pageID, err := a.createPost(r, post); err != nil {
			item.Error = err.Error()
		} else {
			item.Success = true
			item.PostID = pageID
			succeeded++
		}
		results = append(results, item)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("%d posts scheduled, %d errors", succeeded, len(results)-succeeded),
		"total":   len(req.Posts),
		"success": succeeded,
		"errors":  len(results) - succeeded,
		"results": results,
	})
}

func (a *API) handlePublishNow(w http.ResponseWriter, r *http.Request) {
	var req domain.PublishNowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidJSON)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var externalID string
	var err error
	if domain.Platform(req.Platform) == domain.PlatformInstagram && req.ImageURL != "" {
		externalID, err = a.Platform.PublishToInstagram(r.Context(), req.ImageURL, req.Content)
	} else {
		externalID, err = a.Platform.PublishPost(r.Context(), req.Content, req.ImageURL)
	}
	if err != nil {
		slog.Error("immediate publish failed", "platform", req.Platform, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	platform := req.Platform
	if platform == "" {
		platform = string(domain.PlatformFacebook)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"postId":  externalID,
		"message": "post published to " + platform,
	})
}

// handleProcessNow runs the reconciliation loop on demand. A run already in
// progress yields 409 rather than a second overlapping batch.
func (a *API) handleProcessNow(w http.ResponseWriter, r *http.Request) {
	summary, err := a.Processor.ProcessDuePosts(r.Context())
	if err != nil {
		if errors.Is(err, scheduler.ErrRunInProgress) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		slog.Error("on-demand reconciliation failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
