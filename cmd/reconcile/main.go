package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"metahub/internal/config"
	"metahub/internal/logging"
	"metahub/internal/meta"
	"metahub/internal/notion"
	"metahub/internal/scheduler"
)

// reconcile runs a single reconciliation pass and prints the summary as JSON.
// Meant for cron-style invocation or manual operation.
func main() {
	_ = godotenv.Load()

	cfg := config.LoadReconcile()
	logging.Init("reconcile", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notionClient := &notion.Client{
		Token:   cfg.NotionToken,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
		PostsDB: cfg.NotionPostsDB,
	}
	metaClient := &meta.Client{
		AccessToken: cfg.MetaAccessToken,
		PageID:      cfg.MetaPageID,
		HTTP:        &http.Client{Timeout: 15 * time.Second},
	}

	processor := &scheduler.Processor{
		Store:     notionClient,
		Publisher: metaClient,
		Limiter:   rate.NewLimiter(rate.Limit(cfg.PublishRPS), cfg.PublishBurst),
	}

	summary, err := processor.ProcessDuePosts(ctx)
	if err != nil {
		slog.Error("reconciliation failed", "err", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(summary)
}
