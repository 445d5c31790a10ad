package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrNoPersister = errors.New("no token persister configured")
)

// TokenPersister saves refreshed tokens so CLI sessions survive restarts.
type TokenPersister interface {
	SaveToken(endpoint, accessToken string, expiresAt time.Time, refreshToken string) error
}

// PersistingTokenManager wraps an OAuth2TokenManager and writes every
// refreshed token through a TokenPersister.
type PersistingTokenManager struct {
	inner     *OAuth2TokenManager
	persister TokenPersister
	endpoint  string

	lastToken  string
	lastExpiry time.Time
}

// NewPersistingTokenManager creates a persisting manager. A non-empty
// initialToken seeds the inner manager so a previously saved session is
// reused until it expires.
func NewPersistingTokenManager(config *OAuth2Config, persister TokenPersister, endpoint, initialToken string, initialExpiry time.Time) *PersistingTokenManager {
	inner := NewOAuth2TokenManager(config)

	if initialToken != "" {
		inner.SetToken(initialToken, initialExpiry)
	}

	return &PersistingTokenManager{
		inner:      inner,
		persister:  persister,
		endpoint:   endpoint,
		lastToken:  initialToken,
		lastExpiry: initialExpiry,
	}
}

// GetToken returns a valid access token, persisting it when a refresh
// happened underneath.
func (m *PersistingTokenManager) GetToken(ctx context.Context) (string, error) {
	token, err := m.inner.GetToken(ctx)
	if err != nil {
		return "", err
	}

	m.persistIfChanged()

	return token, nil
}

// RefreshToken forces a refresh and persists the new token.
func (m *PersistingTokenManager) RefreshToken(ctx context.Context) error {
	if err := m.inner.RefreshToken(ctx); err != nil {
		return err
	}

	m.persistIfChanged()

	return nil
}

// SetToken manually installs a token and records it as persisted.
func (m *PersistingTokenManager) SetToken(token string, expiresAt time.Time) {
	m.inner.SetToken(token, expiresAt)
	m.lastToken = token
	m.lastExpiry = expiresAt
}

// Expiry returns the current token's expiration time, zero when no token
// is held.
func (m *PersistingTokenManager) Expiry() time.Time {
	token := m.inner.store.Get()
	if token == nil {
		return time.Time{}
	}

	return token.ExpiresAt
}

func (m *PersistingTokenManager) persistIfChanged() {
	current := m.inner.store.Get()
	if current == nil {
		return
	}

	if current.AccessToken == m.lastToken && current.ExpiresAt.Equal(m.lastExpiry) {
		return
	}

	m.lastToken = current.AccessToken
	m.lastExpiry = current.ExpiresAt

	if err := m.persist(current); err != nil {
		// A failed save must not fail the request that triggered it.
		_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to persist refreshed token: %v\n", err)
	}
}

func (m *PersistingTokenManager) persist(token *Token) error {
	if m.persister == nil {
		return ErrNoPersister
	}

	err := m.persister.SaveToken(m.endpoint, token.AccessToken, token.ExpiresAt, token.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	return nil
}
