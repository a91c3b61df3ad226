package meta

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// Client wraps the Meta Graph API for publishing, lead retrieval, messaging
// and insights. No retry or backoff: failures surface the Graph error message
// verbatim and the caller decides.
type Client struct {
	AccessToken string
	PageID      string
	AdAccountID string
	BaseURL     string
	HTTP        *http.Client

	mu        sync.Mutex
	pageToken string
}

type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

type idResponse struct {
	ID     string `json:"id"`
	PostID string `json:"post_id"`
}

// LeadField is one entry of a lead form submission.
type LeadField struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// LeadData is the raw lead record fetched by leadgen id.
type LeadData struct {
	ID          string      `json:"id"`
	CreatedTime string      `json:"created_time"`
	FieldData   []LeadField `json:"field_data"`
}

func (c *Client) baseURL() string {
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		base = "https://graph.facebook.com/v18.0"
	}
	return base
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) (int, error) {
	if form.Get("access_token") == "" {
		form.Set("access_token", c.AccessToken)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL()+path, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.send(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload map[string]any, out any) (int, error) {
	payload["access_token"] = c.AccessToken
	b, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL()+path, bytes.NewReader(b))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(req, out)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) (int, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("access_token", c.AccessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL()+path+"?"+params.Encode(), nil)
	if err != nil {
		return 0, err
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) (int, error) {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ge graphError
		_ = json.Unmarshal(b, &ge)
		if ge.Error.Message != "" {
			return resp.StatusCode, fmt.Errorf("graph api: %s", ge.Error.Message)
		}
		return resp.StatusCode, errors.New("graph api: request failed with status " + resp.Status)
	}
	if out != nil {
		_ = json.Unmarshal(b, out)
	}
	return resp.StatusCode, nil
}

// PublishPost publishes a text post to the page feed, or a photo post when
// imageURL is set. Returns the external post id.
func (c *Client) PublishPost(ctx context.Context, content, imageURL string) (string, error) {
	form := url.Values{}
	form.Set("access_token", c.PageToken(ctx))
	path := "/" + c.PageID + "/feed"
	if imageURL != "" {
		path = "/" + c.PageID + "/photos"
		form.Set("url", imageURL)
		form.Set("caption", content)
	} else {
		form.Set("message", content)
	}

	var res idResponse
	if _, err := c.postForm(ctx, path, form, &res); err != nil {
		return "", err
	}
	if res.PostID != "" {
		return res.PostID, nil
	}
	return res.ID, nil
}

// PublishToInstagram runs the two-phase Instagram publish: create a media
// container, then publish it. A failure between the two calls leaves an
// orphaned container upstream; containers expire on their own, so no
// compensation is attempted.
func (c *Client) PublishToInstagram(ctx context.Context, imageURL, caption string) (string, error) {
	pageToken := c.PageToken(ctx)

	form := url.Values{}
	form.Set("access_token", pageToken)
	form.Set("image_url", imageURL)
	form.Set("caption", caption)

	var container idResponse
	if _, err := c.postForm(ctx, "/"+c.PageID+"/media", form, &container); err != nil {
		return "", fmt.Errorf("create media container: %w", err)
	}

	publishForm := url.Values{}
	publishForm.Set("access_token", pageToken)
	publishForm.Set("creation_id", container.ID)

	var published idResponse
	if _, err := c.postForm(ctx, "/"+c.PageID+"/media_publish", publishForm, &published); err != nil {
		return "", fmt.Errorf("publish media container %s: %w", container.ID, err)
	}
	return published.ID, nil
}

// GetLeadData fetches the raw lead form submission by leadgen id.
func (c *Client) GetLeadData(ctx context.Context, leadgenID string) (LeadData, error) {
	var data LeadData
	if _, err := c.get(ctx, "/"+leadgenID, nil, &data); err != nil {
		return LeadData{}, err
	}
	return data, nil
}

// SendMessengerMessage sends a text reply through the page inbox.
func (c *Client) SendMessengerMessage(ctx context.Context, recipientID, text string) (string, error) {
	payload := map[string]any{
		"recipient": map[string]any{"id": recipientID},
		"message":   map[string]any{"text": text},
	}
	var res struct {
		MessageID string `json:"message_id"`
	}
	if _, err := c.postJSON(ctx, "/me/messages", payload, &res); err != nil {
		return "", err
	}
	return res.MessageID, nil
}

// PageToken resolves and caches the page access token from /me/accounts.
// Falls back to the system token when the lookup fails or the page is not
// listed. Publishing goes through the page token because page feed and photo
// endpoints reject system-user tokens on some app configurations.
func (c *Client) PageToken(ctx context.Context) string {
	c.mu.Lock()
	cached := c.pageToken
	c.mu.Unlock()
	if cached != "" {
		return cached
	}

	var res struct {
		Data []struct {
			ID          string `json:"id"`
			Name        string `json:"name"`
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if _, err := c.get(ctx, "/me/accounts", nil, &res); err != nil {
		slog.Warn("page token lookup failed, using system token", "err", err)
		return c.AccessToken
	}

	var token string
	for _, pg := range res.Data {
		if token == "" {
			token = pg.AccessToken
		}
		if pg.ID == c.PageID {
			token = pg.AccessToken
			break
		}
	}
	if token == "" {
		return c.AccessToken
	}

	c.mu.Lock()
	c.pageToken = token
	c.mu.Unlock()
	return token
}
