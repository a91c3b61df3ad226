package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLeadSyncPointsAtWebhook(t *testing.T) {
	store := &fakeRecordStore{}
	_, r := newTestAPI(store, &fakePlatform{}, &fakeMessenger{})

	req := httptest.NewRequest(http.MethodPost, "/api/leads/sync/form-42", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var res struct {
		Message    string `json:"message"`
		FormID     string `json:"formId"`
		WebhookURL string `json:"webhook_url"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.FormID != "form-42" {
		t.Fatalf("expected form id echoed, got %q", res.FormID)
	}
	if !strings.Contains(res.Message, "webhook") || res.WebhookURL != "/webhook" {
		t.Fatalf("expected webhook guidance, got %s", rr.Body.String())
	}
	if len(store.leads) != 0 {
		t.Fatalf("sync endpoint must not create leads, got %d", len(store.leads))
	}
}

func TestCreateLeadDefaultsManualSource(t *testing.T) {
	store := &fakeRecordStore{}
	_, r := newTestAPI(store, &fakePlatform{}, &fakeMessenger{})

	body := `{"name": "Ana", "email": "ana@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(store.leads) != 1 || store.leads[0].Source != "Manual" {
		t.Fatalf("unexpected leads: %+v", store.leads)
	}
}
