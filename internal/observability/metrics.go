package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "metahub_api_requests_total", Help: "API requests"},
		[]string{"endpoint", "status"},
	)
	WebhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "metahub_webhook_events_total", Help: "Webhook events by object type"},
		[]string{"object"},
	)
	PublishAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "metahub_publish_total", Help: "Platform publish outcomes"},
		[]string{"platform", "result"},
	)
	PublishLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "metahub_publish_latency_seconds", Help: "Platform publish latency"},
	)
	ReconcileRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "metahub_reconcile_runs_total", Help: "Reconciliation run outcomes"},
		[]string{"result"},
	)
	ReconcilePosts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "metahub_reconcile_posts_total", Help: "Per-post reconciliation outcomes"},
		[]string{"outcome"},
	)
	NotionCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "metahub_notion_calls_total", Help: "Notion API call outcomes"},
		[]string{"operation", "result"},
	)
	LeadsCaptured = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "metahub_leads_captured_total", Help: "Leads captured by source"},
		[]string{"source"},
	)
	MessagesSaved = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "metahub_messages_saved_total", Help: "Inbound messages saved by platform"},
		[]string{"platform"},
	)
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(APIRequests, WebhookEvents, PublishAttempts, PublishLatency,
		ReconcileRuns, ReconcilePosts, NotionCalls, LeadsCaptured, MessagesSaved)
}
