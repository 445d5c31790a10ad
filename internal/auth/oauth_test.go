package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOAuth2TokenManager_GetToken(t *testing.T) {
	t.Run("returns existing valid token", func(t *testing.T) {
		manager := NewOAuth2TokenManager(&OAuth2Config{
			AccessToken: "existing-token",
		})

		token, err := manager.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "existing-token", token)
	})

	t.Run("refreshes expired token using refresh token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/oauth/token", r.URL.Path)
			assert.Equal(t, "POST", r.Method)

			err := r.ParseForm()
			require.NoError(t, err)
			assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
			assert.Equal(t, "old-refresh-token", r.Form.Get("refresh_token"))

			response := Token{
				AccessToken:  "new-access-token",
				RefreshToken: "new-refresh-token",
				ExpiresIn:    3600,
				TokenType:    "bearer",
			}
			_ = json.NewEncoder(w).Encode(response)
		}))
		defer server.Close()

		manager := NewOAuth2TokenManager(&OAuth2Config{
			TokenURL:     server.URL + "/oauth/token",
			RefreshToken: "old-refresh-token",
		})

		// Set expired token
		manager.store.Set(&Token{
			AccessToken:  "expired-token",
			RefreshToken: "old-refresh-token",
			ExpiresAt:    time.Now().Add(-1 * time.Hour),
		})

		token, err := manager.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "new-access-token", token)
	})

	t.Run("uses client credentials when no refresh token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/oauth/token", r.URL.Path)
			assert.Equal(t, "POST", r.Method)

			// Check basic auth
			username, password, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "client-id", username)
			assert.Equal(t, "client-secret", password)

			err := r.ParseForm()
			require.NoError(t, err)
			assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))

			response := Token{
				AccessToken: "client-token",
				ExpiresIn:   3600,
				TokenType:   "bearer",
			}
			_ = json.NewEncoder(w).Encode(response)
		}))
		defer server.Close()

		manager := NewOAuth2TokenManager(&OAuth2Config{
			TokenURL:     server.URL + "/oauth/token",
			ClientID:     "client-id",
			ClientSecret: "client-secret",
		})

		token, err := manager.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "client-token", token)
	})

	t.Run("uses password grant", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/oauth/token", r.URL.Path)
			assert.Equal(t, "POST", r.Method)

			err := r.ParseForm()
			require.NoError(t, err)
			assert.Equal(t, "password", r.Form.Get("grant_type"))
			assert.Equal(t, "testuser", r.Form.Get("username"))
			assert.Equal(t, "testpass", r.Form.Get("password"))

			response := Token{
				AccessToken:  "password-token",
				RefreshToken: "refresh-token",
				ExpiresIn:    3600,
				TokenType:    "bearer",
			}
			_ = json.NewEncoder(w).Encode(response)
		}))
		defer server.Close()

		manager := NewOAuth2TokenManager(&OAuth2Config{
			TokenURL: server.URL + "/oauth/token",
			Username: "testuser",
			Password: "testpass",
		})

		token, err := manager.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "password-token", token)
	})

	t.Run("handles token request error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			response := map[string]string{
				"error":             "invalid_client",
				"error_description": "Client authentication failed",
			}
			_ = json.NewEncoder(w).Encode(response)
		}))
		defer server.Close()

		manager := NewOAuth2TokenManager(&OAuth2Config{
			TokenURL:     server.URL + "/oauth/token",
			ClientID:     "bad-client",
			ClientSecret: "bad-secret",
		})

		token, err := manager.GetToken(context.Background())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid_client")
		assert.Contains(t, err.Error(), "Client authentication failed")
		assert.Equal(t, "", token)
	})

	t.Run("no credentials available", func(t *testing.T) {
		manager := NewOAuth2TokenManager(&OAuth2Config{
			TokenURL: "http://example.com/oauth/token",
		})

		token, err := manager.GetToken(context.Background())
		assert.Error(t, err)
		require.ErrorIs(t, err, ErrNoCredentials)
		assert.Equal(t, "", token)
	})

	t.Run("sends scopes when configured", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := r.ParseForm()
			require.NoError(t, err)
			assert.Equal(t, "read write", r.Form.Get("scope"))

			_ = json.NewEncoder(w).Encode(Token{AccessToken: "scoped-token", ExpiresIn: 3600})
		}))
		defer server.Close()

		manager := NewOAuth2TokenManager(&OAuth2Config{
			TokenURL:     server.URL + "/oauth/token",
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			Scopes:       []string{"read", "write"},
		})

		token, err := manager.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "scoped-token", token)
	})
}

func TestOAuth2TokenManager_SetToken(t *testing.T) {
	manager := NewOAuth2TokenManager(&OAuth2Config{})

	expiresAt := time.Now().Add(1 * time.Hour)
	manager.SetToken("manual-token", expiresAt)

	token, err := manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "manual-token", token)

	storedToken := manager.store.Get()
	assert.Equal(t, "manual-token", storedToken.AccessToken)
	assert.Equal(t, "bearer", storedToken.TokenType)
	assert.Equal(t, expiresAt.Unix(), storedToken.ExpiresAt.Unix())
}

func TestOAuth2TokenManager_RefreshToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response := Token{
			AccessToken: "refreshed-token",
			ExpiresIn:   3600,
			TokenType:   "bearer",
		}
		_ = json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	manager := NewOAuth2TokenManager(&OAuth2Config{
		TokenURL:     server.URL + "/oauth/token",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	})

	// Set a valid token
	manager.SetToken("current-token", time.Now().Add(1*time.Hour))

	// Force refresh
	err := manager.RefreshToken(context.Background())
	require.NoError(t, err)

	// Should have new token
	token, err := manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "refreshed-token", token)
}

func TestStaticTokenManager(t *testing.T) {
	manager := NewStaticTokenManager("fixed-token")

	token, err := manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fixed-token", token)

	err = manager.RefreshToken(context.Background())
	require.ErrorIs(t, err, ErrStaticTokenRefresh)

	manager.SetToken("replacement", time.Time{})

	token, err = manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "replacement", token)
}

// memoryPersister records SaveToken calls for assertions.
type memoryPersister struct {
	endpoint     string
	accessToken  string
	refreshToken string
	saves        int
}

func (p *memoryPersister) SaveToken(endpoint, accessToken string, expiresAt time.Time, refreshToken string) error {
	p.endpoint = endpoint
	p.accessToken = accessToken
	p.refreshToken = refreshToken
	p.saves++

	return nil
}

func TestPersistingTokenManager(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Token{
			AccessToken:  "fresh-token",
			RefreshToken: "fresh-refresh",
			ExpiresIn:    3600,
			TokenType:    "bearer",
		})
	}))
	defer server.Close()

	persister := &memoryPersister{}
	manager := NewPersistingTokenManager(&OAuth2Config{
		TokenURL:     server.URL + "/oauth/token",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	}, persister, "api.example.com", "stale-token", time.Now().Add(-time.Hour))

	token, err := manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)

	assert.Equal(t, 1, persister.saves)
	assert.Equal(t, "api.example.com", persister.endpoint)
	assert.Equal(t, "fresh-token", persister.accessToken)
	assert.Equal(t, "fresh-refresh", persister.refreshToken)

	// A second call reuses the fresh token without another save.
	_, err = manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, persister.saves)
}
