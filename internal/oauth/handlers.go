package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/gorilla/mux"
)

// Development-tier permissions; production needs more scopes after app review.
const scopes = "pages_show_list"

// Handler implements the Facebook OAuth redirect-and-exchange flow and the
// token status endpoints. Tokens land in the in-memory TokenStore only.
type Handler struct {
	AppID        string
	AppSecret    string
	RedirectURI  string
	Environment  string
	DialogURL    string // defaults to the Facebook OAuth dialog
	GraphBaseURL string // defaults to graph.facebook.com/v18.0
	HTTP         *http.Client
	Tokens       *TokenStore
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/auth/facebook", h.handleStart).Methods(http.MethodGet)
	r.HandleFunc("/auth/callback", h.handleCallback).Methods(http.MethodGet)
	r.HandleFunc("/auth/success", h.handleSuccess).Methods(http.MethodGet)
	r.HandleFunc("/auth/status", h.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/auth/tokens", h.handleTokens).Methods(http.MethodGet)
}

func (h *Handler) dialogURL() string {
	if h.DialogURL != "" {
		return strings.TrimRight(h.DialogURL, "/")
	}
	return "https://www.facebook.com/v18.0/dialog/oauth"
}

func (h *Handler) graphURL() string {
	if h.GraphBaseURL != "" {
		return strings.TrimRight(h.GraphBaseURL, "/")
	}
	return "https://graph.facebook.com/v18.0"
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	params := url.Values{}
	params.Set("client_id", h.AppID)
	params.Set("redirect_uri", h.RedirectURI)
	params.Set("scope", scopes)
	params.Set("response_type", "code")

	http.Redirect(w, r, h.dialogURL()+"?"+params.Encode(), http.StatusFound)
}

func (h *Handler) handleCallback(w http.ResponseWriter, r *http.Request) {
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		slog.Error("oauth callback returned error", "err", errParam)
		h.renderError(w, errParam)
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		h.renderError(w, "authorization code missing")
		return
	}

	ctx := r.Context()
	userToken, err := h.exchangeCode(ctx, code)
	if err != nil {
		slog.Error("oauth code exchange failed", "err", err)
		h.renderError(w, err.Error())
		return
	}
	h.Tokens.SetUserToken(userToken)

	if err := h.loadPages(ctx, userToken); err != nil {
		slog.Error("oauth page enumeration failed", "err", err)
		h.renderError(w, err.Error())
		return
	}

	http.Redirect(w, r, "/auth/success", http.StatusFound)
}

func (h *Handler) exchangeCode(ctx context.Context, code string) (string, error) {
	params := url.Values{}
	params.Set("client_id", h.AppID)
	params.Set("client_secret", h.AppSecret)
	params.Set("redirect_uri", h.RedirectURI)
	params.Set("code", code)

	var res struct {
		AccessToken string `json:"access_token"`
		Error       *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := h.getJSON(ctx, h.graphURL()+"/oauth/access_token?"+params.Encode(), &res); err != nil {
		return "", err
	}
	if res.Error != nil {
		return "", errors.New(res.Error.Message)
	}
	if res.AccessToken == "" {
		return "", errors.New("token exchange returned no access token")
	}
	return res.AccessToken, nil
}

// loadPages stores a token per page and discovers linked Instagram business
// accounts. A page without Instagram is fine; a failed Instagram lookup is
// logged and skipped, the page token itself is kept.
func (h *Handler) loadPages(ctx context.Context, userToken string) error {
	var res struct {
		Data []struct {
			ID          string `json:"id"`
			Name        string `json:"name"`
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := h.getJSON(ctx, h.graphURL()+"/me/accounts?access_token="+url.QueryEscape(userToken), &res); err != nil {
		return err
	}

	for _, pg := range res.Data {
		h.Tokens.SetPage(pg.ID, PageCredentials{Name: pg.Name, Token: pg.AccessToken})
		slog.Info("page token stored", "page_id", pg.ID, "page_name", pg.Name)

		var ig struct {
			InstagramBusinessAccount *struct {
				ID string `json:"id"`
			} `json:"instagram_business_account"`
		}
		igURL := fmt.Sprintf("%s/%s?fields=instagram_business_account&access_token=%s",
			h.graphURL(), pg.ID, url.QueryEscape(pg.AccessToken))
		if err := h.getJSON(ctx, igURL, &ig); err != nil {
			slog.Warn("instagram account lookup failed", "page_id", pg.ID, "err", err)
			continue
		}
		if ig.InstagramBusinessAccount != nil {
			h.Tokens.SetInstagramAccount(pg.ID, ig.InstagramBusinessAccount.ID)
			slog.Info("instagram account linked", "page_id", pg.ID, "instagram_id", ig.InstagramBusinessAccount.ID)
		}
	}
	return nil
}

func (h *Handler) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := h.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return json.Unmarshal(b, out)
}

type pageStatus struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	HasToken    bool   `json:"hasToken"`
	InstagramID string `json:"instagramId,omitempty"`
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	pages := make([]pageStatus, 0)
	for id, creds := range h.Tokens.Pages() {
		pages = append(pages, pageStatus{
			ID:          id,
			Name:        creds.Name,
			HasToken:    creds.Token != "",
			InstagramID: creds.InstagramID,
		})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].ID < pages[j].ID })

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"connected": h.Tokens.Connected(),
		"pages":     pages,
	})
}

func (h *Handler) handleTokens(w http.ResponseWriter, r *http.Request) {
	if h.Environment == "production" {
		http.Error(w, `{"error":"not available in production"}`, http.StatusForbidden)
		return
	}

	type tokenPreview struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Preview     string `json:"tokenPreview,omitempty"`
		InstagramID string `json:"instagramId,omitempty"`
	}
	pages := make([]tokenPreview, 0)
	for id, creds := range h.Tokens.Pages() {
		pages = append(pages, tokenPreview{
			ID:          id,
			Name:        creds.Name,
			Preview:     preview(creds.Token),
			InstagramID: creds.InstagramID,
		})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].ID < pages[j].ID })

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"userToken":  preview(h.Tokens.UserToken()),
		"pageTokens": pages,
	})
}

func (h *Handler) handleSuccess(w http.ResponseWriter, r *http.Request) {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><title>Connected</title></head><body>`)
	b.WriteString(`<h1>Connected successfully</h1><p>Pages and Instagram accounts are ready.</p><ul>`)

	pages := h.Tokens.Pages()
	ids := make([]string, 0, len(pages))
	for id := range pages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		creds := pages[id]
		b.WriteString("<li>" + html.EscapeString(creds.Name) + " (" + html.EscapeString(id) + ")")
		if creds.InstagramID != "" {
			b.WriteString(" - Instagram linked")
		}
		b.WriteString("</li>")
	}
	if len(ids) == 0 {
		b.WriteString("<li>No pages found</li>")
	}
	b.WriteString(`</ul><a href="/auth/status">Status</a></body></html>`)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}

func (h *Handler) renderError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `<!DOCTYPE html><html><body><h1>Authentication failed</h1><p>%s</p><a href="/auth/facebook">Try again</a></body></html>`,
		html.EscapeString(message))
}

func preview(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 50 {
		return token[:len(token)/2] + "..."
	}
	return token[:50] + "..."
}
