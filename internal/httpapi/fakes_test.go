package httpapi

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"metahub/internal/domain"
	"metahub/internal/meta"
	"metahub/internal/scheduler"
	"metahub/internal/upload"
	"metahub/internal/whatsapp"
)

type fakeRecordStore struct {
	mu       sync.Mutex
	posts    []domain.ScheduledPost
	leads    []domain.Lead
	messages []domain.InboundMessage
	metrics  []domain.MetricsSnapshot

	createErr error
	saved     chan struct{}
}

func (s *fakeRecordStore) notify() {
	if s.saved != nil {
		s.saved <- struct{}{}
	}
}

func (s *fakeRecordStore) CreateScheduledPost(ctx context.Context, content, imageURL string, platform domain.Platform, publishAt time.Time) (string, error) {
	if s.createErr != nil {
		return "", s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append(s.posts, domain.ScheduledPost{
		ID:        "page-" + content,
		Content:   content,
		ImageURL:  imageURL,
		Platform:  platform,
		PublishAt: publishAt,
		Status:    domain.StatusScheduled,
	})
	return "page-" + content, nil
}

func (s *fakeRecordStore) ListScheduled(ctx context.Context) ([]domain.ScheduledPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.posts, nil
}

func (s *fakeRecordStore) CreateLead(ctx context.Context, lead domain.Lead) (string, error) {
	s.mu.Lock()
	s.leads = append(s.leads, lead)
	s.mu.Unlock()
	s.notify()
	return "lead-page", nil
}

func (s *fakeRecordStore) SaveMessage(ctx context.Context, msg domain.InboundMessage) (string, error) {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
	s.notify()
	return "msg-page", nil
}

func (s *fakeRecordStore) SaveMetrics(ctx context.Context, m domain.MetricsSnapshot) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = append(s.metrics, m)
	return "metrics-page", nil
}

type fakePlatform struct {
	publishErr error
	leadData   meta.LeadData
	times      meta.PostingTimes
	scheduled  []meta.MetaScheduledPost
}

func (p *fakePlatform) PublishPost(ctx context.Context, content, imageURL string) (string, error) {
	if p.publishErr != nil {
		return "", p.publishErr
	}
	return "fb_post", nil
}

func (p *fakePlatform) PublishToInstagram(ctx context.Context, imageURL, caption string) (string, error) {
	if p.publishErr != nil {
		return "", p.publishErr
	}
	return "ig_post", nil
}

func (p *fakePlatform) GetLeadData(ctx context.Context, leadgenID string) (meta.LeadData, error) {
	if p.leadData.ID == "" {
		return meta.LeadData{}, errors.New("graph api: unknown lead")
	}
	return p.leadData, nil
}

func (p *fakePlatform) SendMessengerMessage(ctx context.Context, recipientID, text string) (string, error) {
	return "mid", nil
}

func (p *fakePlatform) AdAccountInsights(ctx context.Context, datePreset string) (*domain.MetricsSnapshot, error) {
	return &domain.MetricsSnapshot{Impressions: 100, Platform: "Facebook Ads"}, nil
}

func (p *fakePlatform) PageInsights(ctx context.Context) ([]meta.PageInsight, error) {
	return nil, nil
}

func (p *fakePlatform) ScheduledFromMeta(ctx context.Context) ([]meta.MetaScheduledPost, error) {
	return p.scheduled, nil
}

func (p *fakePlatform) BestPostingTimes(ctx context.Context) (meta.PostingTimes, error) {
	return p.times, nil
}

type fakeMessenger struct {
	mu        sync.Mutex
	texts     []string
	templates []string
	images    []string
	read      []string
}

func (m *fakeMessenger) SendText(ctx context.Context, to, text string) (whatsapp.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, text)
	return whatsapp.SendResult{}, nil
}

func (m *fakeMessenger) SendTemplate(ctx context.Context, to, templateName, languageCode string) (whatsapp.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates = append(m.templates, templateName)
	return whatsapp.SendResult{}, nil
}

func (m *fakeMessenger) SendImage(ctx context.Context, to, imageURL, caption string) (whatsapp.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images = append(m.images, imageURL)
	return whatsapp.SendResult{}, nil
}

func (m *fakeMessenger) MarkAsRead(ctx context.Context, messageID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.read = append(m.read, messageID)
}

type fakeReconciler struct {
	summary scheduler.Summary
	err     error
}

func (r *fakeReconciler) ProcessDuePosts(ctx context.Context) (scheduler.Summary, error) {
	return r.summary, r.err
}

type fakeUploader struct{}

func (fakeUploader) Upload(ctx context.Context, filename, contentType string, file io.Reader) (upload.Asset, error) {
	size, _ := io.Copy(io.Discard, file)
	return upload.Asset{URL: "https://cdn.example/" + filename, OriginalName: filename, Size: size}, nil
}
