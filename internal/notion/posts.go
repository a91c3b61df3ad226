package notion

import (
	"context"
	"time"

	"metahub/internal/domain"
)

// Posts database property names. The schema predates this service, hence the
// Portuguese labels.
const (
	propContent   = "Conteudo"
	propPlatform  = "Plataforma"
	propPublishAt = "DataPublicacao"
	propStatus    = "Status"
	propImage     = "Imagem"
	propPostID    = "ID do Post"
)

// CreateScheduledPost stores a post with status Scheduled and returns the
// page id assigned by Notion.
func (c *Client) CreateScheduledPost(ctx context.Context, content, imageURL string, platform domain.Platform, publishAt time.Time) (string, error) {
	props := map[string]any{
		propContent:   titleProp(content),
		propPlatform:  selectProp(string(platform)),
		propPublishAt: dateProp(publishAt),
		propStatus:    statusProp(string(domain.StatusScheduled)),
	}
	if imageURL != "" {
		props[propImage] = urlProp(imageURL)
	}
	return c.createPage(ctx, "create_post", c.PostsDB, props)
}

// QueryDuePosts returns every post with status Scheduled whose publish time
// is at or before now. The filter runs store-side; posts already moved to
// Processing/Published/Error never come back.
func (c *Client) QueryDuePosts(ctx context.Context, now time.Time) ([]domain.ScheduledPost, error) {
	filter := map[string]any{
		"and": []any{
			map[string]any{"property": propStatus, "status": map[string]any{"equals": string(domain.StatusScheduled)}},
			map[string]any{"property": propPublishAt, "date": map[string]any{"on_or_before": now.UTC().Format(time.RFC3339)}},
		},
	}
	pages, err := c.queryDatabase(ctx, "query_due_posts", c.PostsDB, filter)
	if err != nil {
		return nil, err
	}
	return postsFromPages(pages), nil
}

// ListScheduled returns all posts still waiting for publication.
func (c *Client) ListScheduled(ctx context.Context) ([]domain.ScheduledPost, error) {
	filter := map[string]any{
		"property": propStatus,
		"status":   map[string]any{"equals": string(domain.StatusScheduled)},
	}
	pages, err := c.queryDatabase(ctx, "list_posts", c.PostsDB, filter)
	if err != nil {
		return nil, err
	}
	return postsFromPages(pages), nil
}

// UpdatePostStatus moves a post to a new status and, when non-empty, records
// the external post id returned by the platform.
func (c *Client) UpdatePostStatus(ctx context.Context, pageID string, status domain.PostStatus, externalID string) error {
	props := map[string]any{
		propStatus: statusProp(string(status)),
	}
	if externalID != "" {
		props[propPostID] = richTextProp(externalID)
	}
	return c.updatePage(ctx, "update_post_status", pageID, props)
}

// ClaimPost marks a post Processing before the publish attempt, narrowing the
// window in which a concurrent run could pick it up again.
func (c *Client) ClaimPost(ctx context.Context, pageID string) error {
	return c.updatePage(ctx, "claim_post", pageID, map[string]any{
		propStatus: statusProp(string(domain.StatusProcessing)),
	})
}

func postsFromPages(pages []page) []domain.ScheduledPost {
	posts := make([]domain.ScheduledPost, 0, len(pages))
	for _, pg := range pages {
		post := domain.ScheduledPost{
			ID:             pg.ID,
			Content:        pg.Properties[propContent].Text(),
			ImageURL:       pg.Properties[propImage].URLValue(),
			Platform:       domain.Platform(pg.Properties[propPlatform].Text()),
			Status:         domain.PostStatus(pg.Properties[propStatus].Text()),
			ExternalPostID: pg.Properties[propPostID].Text(),
		}
		if t, ok := pg.Properties[propPublishAt].DateValue(); ok {
			post.PublishAt = t
		}
		posts = append(posts, post)
	}
	return posts
}
