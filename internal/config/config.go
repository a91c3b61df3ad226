package config

import "github.com/kelseyhightower/envconfig"

type ServerConfig struct {
	Port        string `envconfig:"PORT" default:"8080"`
	MetricsPort string `envconfig:"METRICS_PORT" default:"9090"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"json"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// Notion
	NotionToken      string `envconfig:"NOTION_TOKEN" required:"true"`
	NotionPostsDB    string `envconfig:"NOTION_POSTS_DB" required:"true"`
	NotionLeadsDB    string `envconfig:"NOTION_LEADS_DB" required:"true"`
	NotionMessagesDB string `envconfig:"NOTION_MESSAGES_DB" required:"true"`
	NotionMetricsDB  string `envconfig:"NOTION_METRICS_DB" required:"true"`

	// Meta Graph API
	MetaAppID       string `envconfig:"META_APP_ID"`
	MetaAppSecret   string `envconfig:"META_APP_SECRET"`
	MetaAccessToken string `envconfig:"META_ACCESS_TOKEN" required:"true"`
	MetaPageID      string `envconfig:"META_PAGE_ID" required:"true"`
	MetaAdAccountID string `envconfig:"META_AD_ACCOUNT_ID"`

	// WhatsApp Cloud API
	WhatsAppPhoneNumberID string `envconfig:"WHATSAPP_PHONE_NUMBER_ID"`

	// Webhook verification
	WebhookVerifyToken string `envconfig:"WEBHOOK_VERIFY_TOKEN" required:"true"`

	// Cloudinary asset storage
	CloudinaryCloudName string `envconfig:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `envconfig:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `envconfig:"CLOUDINARY_API_SECRET"`

	// OAuth
	OAuthRedirectURI string `envconfig:"OAUTH_REDIRECT_URI" default:"http://localhost:8080/auth/callback"`

	// Scheduler
	ProcessInterval string  `envconfig:"PROCESS_INTERVAL" default:"5m"`
	PublishRPS      float64 `envconfig:"PUBLISH_RPS" default:"1"`
	PublishBurst    int     `envconfig:"PUBLISH_BURST" default:"3"`

	// Lead parsing: exact label allow-list instead of substring matching
	StrictLeadFields bool `envconfig:"STRICT_LEAD_FIELDS" default:"false"`
}

type ReconcileConfig struct {
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	NotionToken     string `envconfig:"NOTION_TOKEN" required:"true"`
	NotionPostsDB   string `envconfig:"NOTION_POSTS_DB" required:"true"`
	MetaAccessToken string `envconfig:"META_ACCESS_TOKEN" required:"true"`
	MetaPageID      string `envconfig:"META_PAGE_ID" required:"true"`

	PublishRPS   float64 `envconfig:"PUBLISH_RPS" default:"1"`
	PublishBurst int     `envconfig:"PUBLISH_BURST" default:"3"`
}

func LoadServer() ServerConfig {
	var cfg ServerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		panic(err)
	}
	return cfg
}

func LoadReconcile() ReconcileConfig {
	var cfg ReconcileConfig
	if err := envconfig.Process("", &cfg); err != nil {
		panic(err)
	}
	return cfg
}
