package upload

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

const uploadFolder = "metahub"

// Client proxies media files to Cloudinary and hands back the public URL.
// The hub never stores file bytes itself.
type Client struct {
	CloudName string
	APIKey    string
	APISecret string
	BaseURL   string
	HTTP      *http.Client
}

// Asset describes one uploaded file.
type Asset struct {
	URL          string `json:"url"`
	Type         string `json:"type"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	Bytes     int64  `json:"bytes"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload sends one file. Resource type (image/video) is chosen from the MIME
// type; Cloudinary requires it in the endpoint path.
func (c *Client) Upload(ctx context.Context, filename, contentType string, file io.Reader) (Asset, error) {
	resourceType := "image"
	if strings.HasPrefix(contentType, "video/") {
		resourceType = "video"
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	params := map[string]string{
		"folder":    uploadFolder,
		"timestamp": timestamp,
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for k, v := range params {
		_ = writer.WriteField(k, v)
	}
	_ = writer.WriteField("api_key", c.APIKey)
	_ = writer.WriteField("signature", c.sign(params))

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return Asset{}, err
	}
	size, err := io.Copy(part, file)
	if err != nil {
		return Asset{}, err
	}
	if err := writer.Close(); err != nil {
		return Asset{}, err
	}

	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		base = "https://api.cloudinary.com"
	}
	endpoint := fmt.Sprintf("%s/v1_1/%s/%s/upload", base, c.CloudName, resourceType)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return Asset{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Asset{}, err
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	var out uploadResponse
	_ = json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if out.Error != nil && out.Error.Message != "" {
			return Asset{}, fmt.Errorf("cloudinary: %s", out.Error.Message)
		}
		return Asset{}, errors.New("cloudinary: upload failed with status " + resp.Status)
	}

	assetURL := out.SecureURL
	if assetURL == "" {
		assetURL = out.URL
	}
	assetSize := out.Bytes
	if assetSize == 0 {
		assetSize = size
	}
	return Asset{
		URL:          assetURL,
		Type:         resourceType,
		OriginalName: filename,
		Size:         assetSize,
	}, nil
}

// sign builds the Cloudinary request signature: SHA-1 over the sorted
// parameter string concatenated with the API secret.
func (c *Client) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + c.APISecret))
	return hex.EncodeToString(sum[:])
}
