// Package forgeclient provides the main entry point for creating forge API clients
package forgeclient

import (
	"fmt"
	"strings"

	"github.com/clientforge-io/forge/internal/client"
	"github.com/clientforge-io/forge/pkg/forge"
)

// New creates a new API client from the given configuration.
func New(config *forge.Config) (forge.Client, error) {
	if config == nil {
		return nil, forge.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, forge.ErrEndpointRequired
	}

	// Normalize API endpoint
	apiEndpoint := strings.TrimSuffix(config.APIEndpoint, "/")
	if !strings.HasPrefix(apiEndpoint, "http://") && !strings.HasPrefix(apiEndpoint, "https://") {
		apiEndpoint = "https://" + apiEndpoint
	}

	config.APIEndpoint = apiEndpoint

	cli, err := client.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return cli, nil
}

// NewWithEndpoint creates a new client with just an API endpoint (no auth).
func NewWithEndpoint(endpoint string) (forge.Client, error) {
	return New(&forge.Config{
		APIEndpoint: endpoint,
	})
}

// NewWithToken creates a new client with an API endpoint and access token.
func NewWithToken(endpoint, token string) (forge.Client, error) {
	return New(&forge.Config{
		APIEndpoint: endpoint,
		AccessToken: token,
	})
}

// NewWithAPIKey creates a new client that authenticates with an API key header.
func NewWithAPIKey(endpoint, key string) (forge.Client, error) {
	return New(&forge.Config{
		APIEndpoint: endpoint,
		APIKey:      key,
	})
}

// NewWithClientCredentials creates a new client using OAuth2 client credentials.
func NewWithClientCredentials(endpoint, clientID, clientSecret string) (forge.Client, error) {
	return New(&forge.Config{
		APIEndpoint:  endpoint,
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})
}

// NewWithPassword creates a new client using username/password authentication.
func NewWithPassword(endpoint, username, password string) (forge.Client, error) {
	return New(&forge.Config{
		APIEndpoint: endpoint,
		Username:    username,
		Password:    password,
	})
}
