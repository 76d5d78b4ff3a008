package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"
)

// expiryBuffer is subtracted from the reported token lifetime so a
// token is refreshed before the remote side actually rejects it.
const expiryBuffer = 5 * time.Minute

// TokenProvider performs the OAuth client-credentials exchange for the
// catalog API and caches the result until shortly before expiry.
// Concurrent callers near expiry collapse into a single exchange.
type TokenProvider struct {
	authURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	logger       *slog.Logger

	group singleflight.Group

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

func NewTokenProvider(authURL, clientID, clientSecret string, logger *slog.Logger) *TokenProvider {
	return &TokenProvider{
		authURL:      strings.TrimSuffix(authURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		logger:       logger,
	}
}

// AccessToken returns a cached, still-valid bearer token or performs a
// client-credentials exchange. The cached token counts as expired once
// less than the expiry buffer of its lifetime remains; a failed refresh
// leaves the cache expired so the next call retries.
func (p *TokenProvider) AccessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	if p.token != "" && time.Now().Before(p.expiresAt) {
		token := p.token
		p.mu.Unlock()
		return token, nil
	}
	p.mu.Unlock()

	// Collapse concurrent refreshes into one exchange; every waiter
	// observes the same replacement token.
	v, err, _ := p.group.Do("token", func() (interface{}, error) {
		p.mu.Lock()
		if p.token != "" && time.Now().Before(p.expiresAt) {
			token := p.token
			p.mu.Unlock()
			return token, nil
		}
		p.mu.Unlock()

		token, expiresAt, err := p.exchange(ctx)
		if err != nil {
			return "", err
		}

		p.mu.Lock()
		p.token = token
		p.expiresAt = expiresAt
		p.mu.Unlock()
		return token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (p *TokenProvider) exchange(ctx context.Context) (string, time.Time, error) {
	form := url.Values{}
	form.Set("client_id", p.clientID)
	form.Set("client_secret", p.clientSecret)
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.authURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, &AuthError{Msg: "failed to create token request", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	p.logger.Debug("Exchanging client credentials for access token", slog.String("url", p.authURL))

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", time.Time{}, &AuthError{Msg: "token exchange request failed", Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			p.logger.Error("failed to close response body", slog.Any("error", err))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", time.Time{}, &AuthError{Status: resp.StatusCode, Msg: "token endpoint returned non-success status"}
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", time.Time{}, &AuthError{Msg: "failed to decode token response", Err: err}
	}
	if tr.AccessToken == "" {
		return "", time.Time{}, &AuthError{Msg: "token response missing access_token"}
	}

	issued := time.Now()
	expiresAt := issued.Add(time.Duration(tr.ExpiresIn)*time.Second - expiryBuffer)

	p.logger.Debug("Obtained new access token",
		slog.Int64("expires_in", tr.ExpiresIn),
		slog.Time("cached_until", expiresAt))

	return tr.AccessToken, expiresAt, nil
}

// ValidateToken probes the validation endpoint for the given token. It
// reports false on any transport error and never returns an error.
func (p *TokenProvider) ValidateToken(ctx context.Context, token string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.authURL+"/validate", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Debug("Token validation request failed", slog.Any("error", err))
		return false
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}
