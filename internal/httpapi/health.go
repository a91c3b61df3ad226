package httpapi

import (
	"context"
	"net/http"
	"time"

	"metahub/internal/util"
)

type ReadyzCheck func(ctx context.Context) error

func Healthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
}

func Readyz(timeout time.Duration, checks ...ReadyzCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		for _, check := range checks {
			if err := check(ctx); err != nil {
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}

var startedAt = util.NowUTC()

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": util.NowUTC().Format(time.RFC3339),
		"uptime":    time.Since(startedAt).Seconds(),
		"services":  a.Services,
	})
}

func (a *API) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":   "metahub",
		"status": "running",
		"endpoints": map[string]string{
			"health":     "/health",
			"auth":       "/auth/facebook",
			"authStatus": "/auth/status",
			"webhook":    "/webhook",
			"leads":      "/api/leads",
			"posts":      "/api/posts",
			"metrics":    "/api/metrics",
			"messages":   "/api/messages",
			"insights":   "/api/insights/summary",
			"upload":     "/api/upload",
		},
	})
}
