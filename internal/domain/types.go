package domain

import "time"

type Platform string

const (
	PlatformInstagram Platform = "Instagram"
	PlatformFacebook  Platform = "Facebook"
	PlatformWhatsApp  Platform = "WhatsApp"
)

type PostStatus string

const (
	StatusDraft      PostStatus = "Draft"
	StatusScheduled  PostStatus = "Scheduled"
	StatusProcessing PostStatus = "Processing"
	StatusPublished  PostStatus = "Published"
	StatusError      PostStatus = "Error"
)

type MessagePlatform string

const (
	MessageWhatsApp    MessagePlatform = "WhatsApp"
	MessageMessenger   MessagePlatform = "Messenger"
	MessageInstagramDM MessagePlatform = "Instagram DM"
	MessageManual      MessagePlatform = "Manual"
)

// ScheduledPost is a unit of content pending publication. The Notion page id
// doubles as the post id; ExternalPostID is set once a platform accepts it.
type ScheduledPost struct {
	ID             string     `json:"id"`
	Content        string     `json:"content"`
	ImageURL       string     `json:"imageUrl,omitempty"`
	Platform       Platform   `json:"platform"`
	PublishAt      time.Time  `json:"publishAt"`
	Status         PostStatus `json:"status"`
	ExternalPostID string     `json:"externalPostId,omitempty"`
}

// Due reports whether the post is eligible for the reconciliation loop.
func (p ScheduledPost) Due(now time.Time) bool {
	return p.Status == StatusScheduled && !p.PublishAt.After(now)
}

// InboundMessage is the normalized form of a received chat/DM event.
// Text may be empty (attachment-only messages); From never is.
type InboundMessage struct {
	From        string          `json:"from"`
	ContactName string          `json:"contactName,omitempty"`
	Text        string          `json:"text"`
	Platform    MessagePlatform `json:"platform"`
	MessageID   string          `json:"messageId,omitempty"`
	ReceivedAt  time.Time       `json:"receivedAt"`
}

// Lead is a captured contact. At least one of Name/Email/Phone is set.
type Lead struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Source    string    `json:"source"`
	Campaign  string    `json:"campaign"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// MetricsSnapshot is a point-in-time aggregate of ad performance.
type MetricsSnapshot struct {
	Impressions int       `json:"impressions"`
	Reach       int       `json:"reach"`
	Clicks      int       `json:"clicks"`
	Spend       float64   `json:"spend"`
	CPM         float64   `json:"cpm"`
	CPC         float64   `json:"cpc"`
	Platform    string    `json:"platform"`
	CollectedAt time.Time `json:"collectedAt"`
}
