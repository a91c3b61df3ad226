package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"metahub/internal/domain"
	"metahub/internal/observability"
)

func (a *API) handleMessagesInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "messages are received automatically via webhook",
		"webhook_url": "/webhook",
		"platforms":   []string{"WhatsApp", "Messenger", "Instagram DM"},
		"send_endpoints": map[string]string{
			"whatsapp":  "POST /api/messages/whatsapp",
			"messenger": "POST /api/messages/messenger",
		},
	})
}

func (a *API) handleSendWhatsApp(w http.ResponseWriter, r *http.Request) {
	var req domain.SendWhatsAppRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidJSON)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	var err error
	switch req.Type {
	case "template":
		_, err = a.WhatsApp.SendTemplate(ctx, req.To, req.TemplateName, "")
	case "image":
		_, err = a.WhatsApp.SendImage(ctx, req.To, req.ImageURL, req.Caption)
	default:
		_, err = a.WhatsApp.SendText(ctx, req.To, req.Text)
	}
	if err != nil {
		slog.Error("whatsapp send failed", "to", req.To, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "message sent via WhatsApp",
	})
}

func (a *API) handleSendMessenger(w http.ResponseWriter, r *http.Request) {
	var req domain.SendMessengerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidJSON)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := a.Platform.SendMessengerMessage(r.Context(), req.RecipientID, req.Text); err != nil {
		slog.Error("messenger send failed", "recipient_id", req.RecipientID, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "message sent via Messenger",
	})
}

func (a *API) handleLogMessage(w http.ResponseWriter, r *http.Request) {
	var req domain.LogMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidJSON)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	platform := domain.MessagePlatform(req.Platform)
	if platform == "" {
		platform = domain.MessageManual
	}
	pageID, err := a.Store.SaveMessage(r.Context(), domain.InboundMessage{
		From:     req.From,
		Text:     req.Text,
		Platform: platform,
	})
	if err != nil {
		slog.Error("log message failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	observability.MessagesSaved.WithLabelValues(string(platform)).Inc()

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "message logged",
		"messageId": pageID,
	})
}
