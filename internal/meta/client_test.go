package meta

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Client{
		AccessToken: "token",
		PageID:      "page-1",
		AdAccountID: "act_1",
		BaseURL:     srv.URL,
		HTTP:        srv.Client(),
	}
}

func TestPublishPostTextGoesToFeed(t *testing.T) {
	var gotPath, gotMessage string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/me/accounts" {
			w.Write([]byte(`{"data": []}`))
			return
		}
		gotPath = r.URL.Path
		_ = r.ParseForm()
		gotMessage = r.PostForm.Get("message")
		w.Write([]byte(`{"id": "post-123"}`))
	})

	id, err := c.PublishPost(context.Background(), "hello world", "")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if gotPath != "/page-1/feed" {
		t.Fatalf("expected feed endpoint, got %s", gotPath)
	}
	if gotMessage != "hello world" {
		t.Fatalf("expected message forwarded, got %q", gotMessage)
	}
	if id != "post-123" {
		t.Fatalf("expected post id, got %q", id)
	}
}

func TestPublishPostWithImageGoesToPhotos(t *testing.T) {
	var gotPath string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/me/accounts" {
			w.Write([]byte(`{"data": []}`))
			return
		}
		gotPath = r.URL.Path
		_ = r.ParseForm()
		if r.PostForm.Get("url") == "" || r.PostForm.Get("caption") == "" {
			t.Errorf("expected url and caption in form, got %v", r.PostForm)
		}
		w.Write([]byte(`{"id": "photo-1", "post_id": "post-456"}`))
	})

	id, err := c.PublishPost(context.Background(), "caption", "https://img.example/a.jpg")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if gotPath != "/page-1/photos" {
		t.Fatalf("expected photos endpoint, got %s", gotPath)
	}
	// post_id takes precedence over the photo object id.
	if id != "post-456" {
		t.Fatalf("expected post_id, got %q", id)
	}
}

func TestPublishToInstagramTwoPhase(t *testing.T) {
	var paths []string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		switch r.URL.Path {
		case "/me/accounts":
			w.Write([]byte(`{"data": []}`))
			return
		case "/page-1/media":
			w.Write([]byte(`{"id": "container-1"}`))
		case "/page-1/media_publish":
			if r.PostForm.Get("creation_id") != "container-1" {
				t.Errorf("expected creation_id container-1, got %q", r.PostForm.Get("creation_id"))
			}
			w.Write([]byte(`{"id": "ig-post-1"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		paths = append(paths, r.URL.Path)
	})

	id, err := c.PublishToInstagram(context.Background(), "https://img.example/a.jpg", "caption")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if id != "ig-post-1" {
		t.Fatalf("expected published media id, got %q", id)
	}
	if len(paths) != 2 || paths[0] != "/page-1/media" || paths[1] != "/page-1/media_publish" {
		t.Fatalf("expected container then publish, got %v", paths)
	}
}

func TestPublishToInstagramContainerFailure(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "Invalid image URL", "code": 100}}`))
	})

	_, err := c.PublishToInstagram(context.Background(), "bad", "caption")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "create media container") {
		t.Fatalf("expected phase in error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid image URL") {
		t.Fatalf("expected upstream message surfaced, got %v", err)
	}
}

func TestGetLeadData(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lead-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("access_token") != "token" {
			t.Errorf("expected access token in query")
		}
		w.Write([]byte(`{"id": "lead-1", "field_data": [{"name": "email", "values": ["a@b.c"]}]}`))
	})

	data, err := c.GetLeadData(context.Background(), "lead-1")
	if err != nil {
		t.Fatalf("get lead: %v", err)
	}
	if len(data.FieldData) != 1 || data.FieldData[0].Values[0] != "a@b.c" {
		t.Fatalf("unexpected field data: %+v", data.FieldData)
	}
}

func TestAdAccountInsightsEmptyPeriod(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	})

	snapshot, err := c.AdAccountInsights(context.Background(), "last_7d")
	if err != nil {
		t.Fatalf("insights: %v", err)
	}
	if snapshot != nil {
		t.Fatalf("expected nil snapshot for empty period, got %+v", snapshot)
	}
}

func TestAdAccountInsightsParsesStringNumbers(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("date_preset") != "yesterday" {
			t.Errorf("expected date_preset forwarded, got %q", r.URL.Query().Get("date_preset"))
		}
		w.Write([]byte(`{"data": [{"impressions": "1200", "reach": "800", "clicks": "45", "spend": "99.50", "cpm": "8.29", "cpc": "2.21"}]}`))
	})

	snapshot, err := c.AdAccountInsights(context.Background(), "yesterday")
	if err != nil {
		t.Fatalf("insights: %v", err)
	}
	if snapshot.Impressions != 1200 || snapshot.Reach != 800 || snapshot.Clicks != 45 {
		t.Fatalf("unexpected counts: %+v", snapshot)
	}
	if snapshot.Spend != 99.50 {
		t.Fatalf("unexpected spend: %v", snapshot.Spend)
	}
	if snapshot.Platform != "Facebook Ads" {
		t.Fatalf("unexpected platform: %q", snapshot.Platform)
	}
}

func TestPublishUsesPageToken(t *testing.T) {
	var accountLookups int
	var feedTokens []string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/me/accounts":
			accountLookups++
			w.Write([]byte(`{"data": [
				{"id": "other-page", "name": "Other", "access_token": "other-token"},
				{"id": "page-1", "name": "Loja", "access_token": "page-token"}
			]}`))
		case "/page-1/feed":
			_ = r.ParseForm()
			feedTokens = append(feedTokens, r.PostForm.Get("access_token"))
			w.Write([]byte(`{"id": "post-1"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	for i := 0; i < 2; i++ {
		if _, err := c.PublishPost(context.Background(), "hello", ""); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	if accountLookups != 1 {
		t.Fatalf("expected a single cached lookup, got %d", accountLookups)
	}
	if len(feedTokens) != 2 {
		t.Fatalf("expected two publishes, got %d", len(feedTokens))
	}
	for _, token := range feedTokens {
		if token != "page-token" {
			t.Fatalf("publish must use the page token, got %q", token)
		}
	}
}

func TestPageTokenFallsBackToSystemToken(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/me/accounts":
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error": {"message": "temporarily unavailable"}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	if got := c.PageToken(context.Background()); got != "token" {
		t.Fatalf("expected system token fallback, got %q", got)
	}
}

func TestPageTokenConcurrentCallers(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me/accounts" {
			t.Errorf("unexpected path %s", r.URL.Path)
			return
		}
		w.Write([]byte(`{"data": [{"id": "page-1", "name": "Loja", "access_token": "page-token"}]}`))
	})

	var wg sync.WaitGroup
	tokens := make([]string, 8)
	for i := range tokens {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i] = c.PageToken(context.Background())
		}(i)
	}
	wg.Wait()

	for _, token := range tokens {
		if token != "page-token" {
			t.Fatalf("expected page token for every caller, got %v", tokens)
		}
	}
}
