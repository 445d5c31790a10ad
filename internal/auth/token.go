// Package auth manages access tokens for API clients: static tokens, API
// keys, and OAuth2 grants with automatic refresh.
package auth

import (
	"sync"
	"time"
)

// expiryBuffer is how long before actual expiry a token is treated as
// expired, so in-flight requests don't race the deadline.
const expiryBuffer = 30 * time.Second

// Token represents an OAuth2 access token with metadata.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in,omitempty"`
	Scope        string    `json:"scope,omitempty"`
	ExpiresAt    time.Time `json:"-"`
}

// Valid reports whether the token can still be used. A token without an
// expiry never expires; one with an expiry goes invalid expiryBuffer early.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Add(expiryBuffer).Before(t.ExpiresAt)
}

// TokenStore holds the current token behind a mutex for concurrent use.
type TokenStore struct {
	mu    sync.RWMutex
	token *Token
}

// NewTokenStore creates an empty token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the stored token, or nil.
func (s *TokenStore) Get() *Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// Set replaces the stored token.
func (s *TokenStore) Set(token *Token) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Clear removes the stored token.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	s.token = nil
	s.mu.Unlock()
}
