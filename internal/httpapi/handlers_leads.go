package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"metahub/internal/domain"
	"metahub/internal/observability"
)

func (a *API) handleLeadsInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "leads are captured automatically via webhook",
		"webhook_url": "/webhook",
	})
}

// handleLeadSyncInfo is informational: Graph offers no backfill for lead form
// submissions, so the only way to capture them is the webhook.
func (a *API) handleLeadSyncInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "historical leads cannot be fetched, configure the webhook to capture new submissions",
		"formId":      mux.Vars(r)["formId"],
		"webhook_url": "/webhook",
	})
}

func (a *API) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidJSON)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	source := req.Source
	if source == "" {
		source = "Manual"
	}
	pageID, err := a.Store.CreateLead(r.Context(), domain.Lead{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Source:   source,
		Campaign: req.Campaign,
	})
	if err != nil {
		slog.Error("create lead failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	observability.LeadsCaptured.WithLabelValues(source).Inc()

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "lead created",
		"leadId":  pageID,
	})
}
