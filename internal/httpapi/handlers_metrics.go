package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

func (a *API) handleGetMetrics(w http.ResponseWriter, r *http.Request) {
	preset := r.URL.Query().Get("range")
	if preset == "" {
		preset = "last_7d"
	}

	snapshot, err := a.Platform.AdAccountInsights(r.Context(), preset)
	if err != nil {
		slog.Error("ad insights fetch failed", "range", preset, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if snapshot == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"range":   preset,
			"metrics": nil,
			"message": "no data for the requested range",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"range":   preset,
		"metrics": snapshot,
	})
}

func (a *API) handlePageMetrics(w http.ResponseWriter, r *http.Request) {
	insights, err := a.Platform.PageInsights(r.Context())
	if err != nil {
		slog.Error("page insights fetch failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"insights": insights,
	})
}

// handleSyncMetrics fetches ad insights and writes them through to the
// metrics database in one call.
func (a *API) handleSyncMetrics(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Range string `json:"range"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Range == "" {
		req.Range = "last_7d"
	}

	snapshot, err := a.Metrics.SyncMetrics(r.Context(), req.Range)
	if err != nil {
		slog.Error("metrics sync failed", "range", req.Range, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if snapshot == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "no metrics available for " + req.Range,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "metrics synced",
		"metrics": snapshot,
	})
}
