package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"metahub/internal/observability"
)

const apiVersion = "2022-06-28"

// Client wraps the Notion REST API. All hub entities (posts, leads, messages,
// metric snapshots) live in Notion databases; the hub keeps no store of its own.
type Client struct {
	Token   string
	BaseURL string
	HTTP    *http.Client

	PostsDB    string
	LeadsDB    string
	MessagesDB string
	MetricsDB  string
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// page is the subset of a Notion page the hub reads back.
type page struct {
	ID         string          `json:"id"`
	Properties map[string]Prop `json:"properties"`
}

type queryResponse struct {
	Results []page `json:"results"`
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) (int, error) {
	baseURL := strings.TrimRight(c.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.notion.com"
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Notion-Version", apiVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		_ = json.Unmarshal(b, &apiErr)
		if apiErr.Message != "" {
			return resp.StatusCode, fmt.Errorf("notion: %s", apiErr.Message)
		}
		return resp.StatusCode, errors.New("notion: request failed with status " + resp.Status)
	}
	if out != nil {
		_ = json.Unmarshal(b, out)
	}
	return resp.StatusCode, nil
}

func (c *Client) createPage(ctx context.Context, op, databaseID string, properties map[string]any) (string, error) {
	payload := map[string]any{
		"parent":     map[string]any{"database_id": databaseID},
		"properties": properties,
	}
	var created page
	_, err := c.do(ctx, http.MethodPost, "/v1/pages", payload, &created)
	if err != nil {
		observability.NotionCalls.WithLabelValues(op, "error").Inc()
		return "", err
	}
	observability.NotionCalls.WithLabelValues(op, "ok").Inc()
	return created.ID, nil
}

func (c *Client) updatePage(ctx context.Context, op, pageID string, properties map[string]any) error {
	payload := map[string]any{"properties": properties}
	_, err := c.do(ctx, http.MethodPatch, "/v1/pages/"+pageID, payload, nil)
	if err != nil {
		observability.NotionCalls.WithLabelValues(op, "error").Inc()
		return err
	}
	observability.NotionCalls.WithLabelValues(op, "ok").Inc()
	return nil
}

func (c *Client) queryDatabase(ctx context.Context, op, databaseID string, filter any) ([]page, error) {
	payload := map[string]any{}
	if filter != nil {
		payload["filter"] = filter
	}
	var res queryResponse
	_, err := c.do(ctx, http.MethodPost, "/v1/databases/"+databaseID+"/query", payload, &res)
	if err != nil {
		observability.NotionCalls.WithLabelValues(op, "error").Inc()
		return nil, err
	}
	observability.NotionCalls.WithLabelValues(op, "ok").Inc()
	return res.Results, nil
}
