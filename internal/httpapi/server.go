package httpapi

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"metahub/internal/domain"
	"metahub/internal/meta"
	"metahub/internal/normalize"
	"metahub/internal/scheduler"
	"metahub/internal/upload"
	"metahub/internal/whatsapp"
)

type Server struct {
	Mux *mux.Router
}

func New() *Server {
	return &Server{Mux: mux.NewRouter()}
}

// RecordStore is the slice of the Notion client the handlers use.
type RecordStore interface {
	CreateScheduledPost(ctx context.Context, content, imageURL string, platform domain.Platform, publishAt time.Time) (string, error)
	ListScheduled(ctx context.Context) ([]domain.ScheduledPost, error)
	CreateLead(ctx context.Context, lead domain.Lead) (string, error)
	SaveMessage(ctx context.Context, msg domain.InboundMessage) (string, error)
	SaveMetrics(ctx context.Context, m domain.MetricsSnapshot) (string, error)
}

// Platform is the slice of the Graph client the handlers use.
type Platform interface {
	PublishPost(ctx context.Context, content, imageURL string) (string, error)
	PublishToInstagram(ctx context.Context, imageURL, caption string) (string, error)
	GetLeadData(ctx context.Context, leadgenID string) (meta.LeadData, error)
	SendMessengerMessage(ctx context.Context, recipientID, text string) (string, error)
	AdAccountInsights(ctx context.Context, datePreset string) (*domain.MetricsSnapshot, error)
	PageInsights(ctx context.Context) ([]meta.PageInsight, error)
	ScheduledFromMeta(ctx context.Context) ([]meta.MetaScheduledPost, error)
	BestPostingTimes(ctx context.Context) (meta.PostingTimes, error)
}

type Messenger interface {
	SendText(ctx context.Context, to, text string) (whatsapp.SendResult, error)
	SendTemplate(ctx context.Context, to, templateName, languageCode string) (whatsapp.SendResult, error)
	SendImage(ctx context.Context, to, imageURL, caption string) (whatsapp.SendResult, error)
	MarkAsRead(ctx context.Context, messageID string)
}

type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, file io.Reader) (upload.Asset, error)
}

type Reconciler interface {
	ProcessDuePosts(ctx context.Context) (scheduler.Summary, error)
}

type MetricsSyncer interface {
	SyncMetrics(ctx context.Context, datePreset string) (*domain.MetricsSnapshot, error)
}

// ServiceFlags reports which external collaborators are configured, for the
// health endpoint.
type ServiceFlags struct {
	Notion   bool `json:"notion"`
	Meta     bool `json:"meta"`
	WhatsApp bool `json:"whatsapp"`
}

// API wires the JSON endpoints to the external collaborators.
type API struct {
	Store      RecordStore
	Platform   Platform
	WhatsApp   Messenger
	Uploader   Uploader
	Processor  Reconciler
	Metrics    MetricsSyncer
	Normalizer *normalize.Normalizer

	VerifyToken string
	Services    ServiceFlags
}

func (a *API) Register(r *mux.Router) {
	r.HandleFunc("/", a.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/health", a.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/webhook", a.handleWebhookVerify).Methods(http.MethodGet)
	r.HandleFunc("/webhook", a.handleWebhookReceive).Methods(http.MethodPost)

	r.HandleFunc("/api/posts", a.handleListPosts).Methods(http.MethodGet)
	r.HandleFunc("/api/posts", a.handleCreatePost).Methods(http.MethodPost)
	r.HandleFunc("/api/posts/batch", a.handleBatchCreate).Methods(http.MethodPost)
	r.HandleFunc("/api/posts/publish", a.handlePublishNow).Methods(http.MethodPost)
	r.HandleFunc("/api/posts/process", a.handleProcessNow).Methods(http.MethodPost)

	r.HandleFunc("/api/leads", a.handleLeadsInfo).Methods(http.MethodGet)
	r.HandleFunc("/api/leads", a.handleCreateLead).Methods(http.MethodPost)
	r.HandleFunc("/api/leads/sync/{formId}", a.handleLeadSyncInfo).Methods(http.MethodPost)

	r.HandleFunc("/api/messages", a.handleMessagesInfo).Methods(http.MethodGet)
	r.HandleFunc("/api/messages/whatsapp", a.handleSendWhatsApp).Methods(http.MethodPost)
	r.HandleFunc("/api/messages/messenger", a.handleSendMessenger).Methods(http.MethodPost)
	r.HandleFunc("/api/messages/log", a.handleLogMessage).Methods(http.MethodPost)

	r.HandleFunc("/api/metrics", a.handleGetMetrics).Methods(http.MethodGet)
	r.HandleFunc("/api/metrics/page", a.handlePageMetrics).Methods(http.MethodGet)
	r.HandleFunc("/api/metrics/sync", a.handleSyncMetrics).Methods(http.MethodPost)

	r.HandleFunc("/api/insights/best-times", a.handleBestTimes).Methods(http.MethodGet)
	r.HandleFunc("/api/insights/scheduled", a.handleMetaScheduled).Methods(http.MethodGet)
	r.HandleFunc("/api/insights/summary", a.handleInsightsSummary).Methods(http.MethodGet)

	r.HandleFunc("/api/upload", a.handleUpload).Methods(http.MethodPost)
	r.HandleFunc("/api/upload/multiple", a.handleUploadMultiple).Methods(http.MethodPost)
}
