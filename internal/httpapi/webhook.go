package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"metahub/internal/normalize"
	"metahub/internal/observability"
)

// handleWebhookVerify answers Meta's subscription handshake: echo the
// challenge iff the verify token matches, otherwise 403 with an empty body.
func (a *API) handleWebhookVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode == "subscribe" && token == a.VerifyToken {
		slog.Info("webhook verified")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(challenge))
		return
	}
	slog.Warn("webhook verification failed", "mode", mode)
	w.WriteHeader(http.StatusForbidden)
}

// webhookMaxBody caps the delivery payload; Meta's events are a few KB, so
// anything near the cap is not a webhook.
const webhookMaxBody = 100 << 10

// handleWebhookReceive acknowledges immediately so Meta never retries on our
// downstream latency, then hands the body to a detached goroutine. Failures
// past this point are logged, never surfaced.
func (a *API) handleWebhookReceive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, webhookMaxBody))

	w.WriteHeader(http.StatusOK)

	if err != nil {
		slog.Error("webhook body read failed", "err", err)
		return
	}
	go a.dispatchWebhook(body)
}

const dispatchTimeout = 30 * time.Second

// dispatchWebhook normalizes and persists one webhook delivery. It runs
// outside the request lifecycle and carries its own deadline.
func (a *API) dispatchWebhook(body []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	ev, err := normalize.ParseEvent(body)
	if err != nil {
		slog.Error("webhook payload unparseable", "err", err)
		return
	}
	observability.WebhookEvents.WithLabelValues(ev.Object).Inc()

	switch ev.Object {
	case normalize.ObjectPage:
		a.dispatchLeads(ctx, ev)
		a.dispatchMessages(ctx, ev)
	case normalize.ObjectInstagram:
		a.dispatchMessages(ctx, ev)
	case normalize.ObjectWhatsApp:
		a.dispatchWhatsApp(ctx, ev)
	default:
		slog.Warn("webhook object ignored", "object", ev.Object)
	}
}

func (a *API) dispatchLeads(ctx context.Context, ev normalize.Event) {
	for _, ref := range a.Normalizer.LeadRefs(ev) {
		data, err := a.Platform.GetLeadData(ctx, ref.LeadgenID)
		if err != nil {
			slog.Error("lead fetch failed", "leadgen_id", ref.LeadgenID, "err", err)
			continue
		}
		lead := a.Normalizer.ParseLeadFields(data.FieldData)
		lead.Source = "Facebook Ads"
		lead.Campaign = ref.AdID
		if lead.Campaign == "" {
			lead.Campaign = "Campanha"
		}

		if _, err := a.Store.CreateLead(ctx, lead); err != nil {
			slog.Error("lead save failed", "leadgen_id", ref.LeadgenID, "err", err)
			continue
		}
		observability.LeadsCaptured.WithLabelValues(lead.Source).Inc()
		slog.Info("lead captured", "leadgen_id", ref.LeadgenID)
	}
}

func (a *API) dispatchMessages(ctx context.Context, ev normalize.Event) {
	for _, msg := range a.Normalizer.Messages(ev) {
		if _, err := a.Store.SaveMessage(ctx, msg); err != nil {
			slog.Error("message save failed", "platform", msg.Platform, "from", msg.From, "err", err)
			continue
		}
		observability.MessagesSaved.WithLabelValues(string(msg.Platform)).Inc()
		slog.Info("message saved", "platform", msg.Platform, "from", msg.From)
	}
}

func (a *API) dispatchWhatsApp(ctx context.Context, ev normalize.Event) {
	msg, ok := a.Normalizer.WhatsAppMessage(ev)
	if !ok {
		// Status-only delivery, nothing to store.
		return
	}

	// Read receipt and persistence are independent side effects; the receipt
	// is best-effort either way.
	if msg.MessageID != "" {
		a.WhatsApp.MarkAsRead(ctx, msg.MessageID)
	}

	if _, err := a.Store.SaveMessage(ctx, msg); err != nil {
		slog.Error("whatsapp message save failed", "from", msg.From, "err", err)
		return
	}
	observability.MessagesSaved.WithLabelValues(string(msg.Platform)).Inc()
	slog.Info("whatsapp message saved", "from", msg.From, "contact", msg.ContactName)
}
