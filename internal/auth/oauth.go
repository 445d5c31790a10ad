package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// TokenManager supplies bearer tokens to the HTTP layer.
type TokenManager interface {
	// GetToken returns a valid access token, refreshing if necessary.
	GetToken(ctx context.Context) (string, error)
	// RefreshToken forces a refresh regardless of the current token's
	// validity.
	RefreshToken(ctx context.Context) error
	// SetToken manually installs an access token.
	SetToken(token string, expiresAt time.Time)
}

// Static errors for err113 compliance.
var (
	ErrNoCredentials      = errors.New("no valid credentials available")
	ErrStaticTokenRefresh = errors.New("static token cannot be refreshed")
)

// OAuth2Config configures an OAuth2TokenManager. Which grant is used
// depends on the populated fields: refresh_token when a refresh token is
// held, then client_credentials, then password.
type OAuth2Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	RefreshToken string
	AccessToken  string
	Scopes       []string
	HTTPClient   *http.Client
}

// OAuth2TokenManager obtains and refreshes tokens from an OAuth2 token
// endpoint. Safe for concurrent use.
type OAuth2TokenManager struct {
	config *OAuth2Config
	store  *TokenStore
	client *http.Client
	mu     sync.Mutex
}

// NewOAuth2TokenManager creates a token manager for the given config.
func NewOAuth2TokenManager(config *OAuth2Config) *OAuth2TokenManager {
	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	manager := &OAuth2TokenManager{
		config: config,
		store:  NewTokenStore(),
		client: client,
	}

	if config.AccessToken != "" {
		manager.store.Set(&Token{
			AccessToken:  config.AccessToken,
			RefreshToken: config.RefreshToken,
			TokenType:    "bearer",
		})
	} else if config.RefreshToken != "" {
		// Hold the refresh token so the first GetToken call exchanges it.
		manager.store.Set(&Token{RefreshToken: config.RefreshToken})
	}

	return manager
}

// GetToken returns a valid access token, obtaining or refreshing one as
// needed.
func (m *OAuth2TokenManager) GetToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if token := m.store.Get(); token.Valid() {
		return token.AccessToken, nil
	}

	token, err := m.obtainToken(ctx)
	if err != nil {
		return "", err
	}

	m.store.Set(token)

	return token.AccessToken, nil
}

// RefreshToken forces a new token to be obtained.
func (m *OAuth2TokenManager) RefreshToken(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, err := m.obtainToken(ctx)
	if err != nil {
		return err
	}

	m.store.Set(token)

	return nil
}

// SetToken manually installs an access token.
func (m *OAuth2TokenManager) SetToken(token string, expiresAt time.Time) {
	m.store.Set(&Token{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	})
}

// obtainToken picks a grant based on available credentials. Callers hold
// m.mu.
func (m *OAuth2TokenManager) obtainToken(ctx context.Context) (*Token, error) {
	current := m.store.Get()

	switch {
	case current != nil && current.RefreshToken != "":
		return m.requestToken(ctx, url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {current.RefreshToken},
		}, false)
	case m.config.RefreshToken != "":
		return m.requestToken(ctx, url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {m.config.RefreshToken},
		}, false)
	case m.config.ClientID != "" && m.config.ClientSecret != "" && m.config.Username == "":
		return m.requestToken(ctx, url.Values{
			"grant_type": {"client_credentials"},
		}, true)
	case m.config.Username != "" && m.config.Password != "":
		values := url.Values{
			"grant_type": {"password"},
			"username":   {m.config.Username},
			"password":   {m.config.Password},
		}
		if m.config.ClientID != "" {
			values.Set("client_id", m.config.ClientID)
		}

		return m.requestToken(ctx, values, m.config.ClientSecret != "")
	default:
		return nil, ErrNoCredentials
	}
}

// tokenError is the error body of a failed token request.
type tokenError struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (m *OAuth2TokenManager) requestToken(ctx context.Context, form url.Values, basicAuth bool) (*Token, error) {
	if len(m.config.Scopes) > 0 {
		form.Set("scope", strings.Join(m.config.Scopes, " "))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	if basicAuth {
		req.SetBasicAuth(m.config.ClientID, m.config.ClientSecret)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var oauthErr tokenError
		if json.Unmarshal(body, &oauthErr) == nil && oauthErr.Code != "" {
			return nil, fmt.Errorf("token request failed: %s: %s", oauthErr.Code, oauthErr.Description)
		}

		return nil, fmt.Errorf("token request failed with status %d", resp.StatusCode)
	}

	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("decoding token response: %w", err)
	}

	if token.ExpiresIn > 0 {
		token.ExpiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}

	return &token, nil
}

// StaticTokenManager serves one fixed token and never refreshes it.
type StaticTokenManager struct {
	store *TokenStore
}

// NewStaticTokenManager creates a manager around a fixed token.
func NewStaticTokenManager(token string) *StaticTokenManager {
	manager := &StaticTokenManager{store: NewTokenStore()}
	manager.store.Set(&Token{AccessToken: token, TokenType: "bearer"})

	return manager
}

// GetToken returns the fixed token.
func (m *StaticTokenManager) GetToken(ctx context.Context) (string, error) {
	token := m.store.Get()
	if token == nil || token.AccessToken == "" {
		return "", ErrNoCredentials
	}

	return token.AccessToken, nil
}

// RefreshToken fails; a static token has nothing to refresh with.
func (m *StaticTokenManager) RefreshToken(ctx context.Context) error {
	return ErrStaticTokenRefresh
}

// SetToken replaces the fixed token.
func (m *StaticTokenManager) SetToken(token string, expiresAt time.Time) {
	m.store.Set(&Token{AccessToken: token, TokenType: "bearer", ExpiresAt: expiresAt})
}
