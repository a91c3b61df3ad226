package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"metahub/internal/config"
	"metahub/internal/httpapi"
	"metahub/internal/logging"
	"metahub/internal/meta"
	"metahub/internal/normalize"
	"metahub/internal/notion"
	"metahub/internal/oauth"
	"metahub/internal/observability"
	"metahub/internal/scheduler"
	"metahub/internal/upload"
	"metahub/internal/whatsapp"
)

func main() {
	_ = godotenv.Load()

	cfg := config.LoadServer()
	logging.Init("server", cfg.LogFormat)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	observability.Register(prometheus.DefaultRegisterer)

	notionClient := &notion.Client{
		Token:      cfg.NotionToken,
		HTTP:       &http.Client{Timeout: 15 * time.Second},
		PostsDB:    cfg.NotionPostsDB,
		LeadsDB:    cfg.NotionLeadsDB,
		MessagesDB: cfg.NotionMessagesDB,
		MetricsDB:  cfg.NotionMetricsDB,
	}
	metaClient := &meta.Client{
		AccessToken: cfg.MetaAccessToken,
		PageID:      cfg.MetaPageID,
		AdAccountID: cfg.MetaAdAccountID,
		HTTP:        &http.Client{Timeout: 15 * time.Second},
	}
	waClient := &whatsapp.Client{
		PhoneNumberID: cfg.WhatsAppPhoneNumberID,
		AccessToken:   cfg.MetaAccessToken,
		HTTP:          &http.Client{Timeout: 15 * time.Second},
	}
	uploader := &upload.Client{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		HTTP:      &http.Client{Timeout: 60 * time.Second},
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.PublishRPS), cfg.PublishBurst)
	processor := &scheduler.Processor{
		Store:     notionClient,
		Publisher: metaClient,
		Limiter:   limiter,
	}
	sched := &scheduler.Scheduler{
		Processor: processor,
		Source:    metaClient,
		Sink:      notionClient,
	}

	s := httpapi.New()
	api := &httpapi.API{
		Store:      notionClient,
		Platform:   metaClient,
		WhatsApp:   waClient,
		Uploader:   uploader,
		Processor:  processor,
		Metrics:    sched,
		Normalizer: &normalize.Normalizer{StrictLeadFields: cfg.StrictLeadFields},

		VerifyToken: cfg.WebhookVerifyToken,
		Services: httpapi.ServiceFlags{
			Notion:   cfg.NotionToken != "",
			Meta:     cfg.MetaAccessToken != "",
			WhatsApp: cfg.WhatsAppPhoneNumberID != "",
		},
	}
	api.Register(s.Mux)

	auth := &oauth.Handler{
		AppID:       cfg.MetaAppID,
		AppSecret:   cfg.MetaAppSecret,
		RedirectURI: cfg.OAuthRedirectURI,
		Environment: cfg.Environment,
		HTTP:        &http.Client{Timeout: 10 * time.Second},
		Tokens:      oauth.NewTokenStore(),
	}
	auth.Register(s.Mux)

	s.Mux.HandleFunc("/healthz", httpapi.Healthz())
	s.Mux.HandleFunc("/readyz", httpapi.Readyz(2*time.Second))

	s.Mux.Use(httpapi.Metrics(observability.APIRequests))
	handler := httpapi.Logging(s.Mux)
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: metricsMux,
	}
	go func() {
		slog.Info("metrics listening", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server failed", "err", err)
		}
	}()

	interval, err := time.ParseDuration(cfg.ProcessInterval)
	if err != nil {
		slog.Warn("invalid PROCESS_INTERVAL, using 5m", "value", cfg.ProcessInterval)
		interval = 5 * time.Minute
	}
	go sched.Run(ctx, interval)
	go sched.RunMetricsSync(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("server shutdown", "signal", sig.String())
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server listening", "port", cfg.Port, "environment", cfg.Environment)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}
