package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// Client wraps the WhatsApp Cloud API messaging endpoint for a single
// business phone number.
type Client struct {
	PhoneNumberID string
	AccessToken   string
	BaseURL       string
	HTTP          *http.Client
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SendResult carries the message id assigned by the platform.
type SendResult struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

func (r SendResult) MessageID() string {
	if len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[0].ID
}

func (c *Client) post(ctx context.Context, payload map[string]any, out any) (int, error) {
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		base = "https://graph.facebook.com/v18.0"
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/"+c.PhoneNumberID+"/messages", bytes.NewReader(b))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ae apiError
		_ = json.Unmarshal(raw, &ae)
		if ae.Error.Message != "" {
			return resp.StatusCode, fmt.Errorf("whatsapp: %s", ae.Error.Message)
		}
		return resp.StatusCode, errors.New("whatsapp: request failed with status " + resp.Status)
	}
	if out != nil {
		_ = json.Unmarshal(raw, out)
	}
	return resp.StatusCode, nil
}

func (c *Client) SendText(ctx context.Context, to, text string) (SendResult, error) {
	var res SendResult
	_, err := c.post(ctx, map[string]any{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                to,
		"type":              "text",
		"text":              map[string]any{"body": text},
	}, &res)
	return res, err
}

// SendTemplate opens a conversation with an approved template.
func (c *Client) SendTemplate(ctx context.Context, to, templateName, languageCode string) (SendResult, error) {
	if languageCode == "" {
		languageCode = "pt_BR"
	}
	var res SendResult
	_, err := c.post(ctx, map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "template",
		"template": map[string]any{
			"name":     templateName,
			"language": map[string]any{"code": languageCode},
		},
	}, &res)
	return res, err
}

func (c *Client) SendImage(ctx context.Context, to, imageURL, caption string) (SendResult, error) {
	var res SendResult
	_, err := c.post(ctx, map[string]any{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                to,
		"type":              "image",
		"image":             map[string]any{"link": imageURL, "caption": caption},
	}, &res)
	return res, err
}

// MarkAsRead acknowledges an inbound message. Best effort: a failed read
// receipt is logged and never blocks persistence.
func (c *Client) MarkAsRead(ctx context.Context, messageID string) {
	_, err := c.post(ctx, map[string]any{
		"messaging_product": "whatsapp",
		"status":            "read",
		"message_id":        messageID,
	}, nil)
	if err != nil {
		slog.Warn("whatsapp mark-as-read failed", "message_id", messageID, "err", err)
	}
}
