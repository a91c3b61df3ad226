package oauth

import "sync"

// PageCredentials are the per-page artifacts of a completed OAuth flow.
type PageCredentials struct {
	Name        string
	Token       string
	InstagramID string
}

// TokenStore holds OAuth tokens in memory for the lifetime of the process.
// Nothing here is persisted: a restart requires re-authenticating. The
// callback handler writes, the status endpoints read.
type TokenStore struct {
	mu        sync.RWMutex
	userToken string
	pages     map[string]PageCredentials
}

func NewTokenStore() *TokenStore {
	return &TokenStore{pages: make(map[string]PageCredentials)}
}

func (s *TokenStore) SetUserToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userToken = token
}

func (s *TokenStore) UserToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userToken
}

func (s *TokenStore) Connected() bool {
	return s.UserToken() != ""
}

func (s *TokenStore) SetPage(id string, creds PageCredentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[id] = creds
}

func (s *TokenStore) SetInstagramAccount(pageID, instagramID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	creds := s.pages[pageID]
	creds.InstagramID = instagramID
	s.pages[pageID] = creds
}

// Pages returns a copy of the stored page credentials keyed by page id.
func (s *TokenStore) Pages() map[string]PageCredentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]PageCredentials, len(s.pages))
	for id, creds := range s.pages {
		out[id] = creds
	}
	return out
}
