// Package client provides the concrete forge.Client implementation,
// wiring configuration into the transport, auth, and cache layers.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/clientforge-io/forge/internal/auth"
	"github.com/clientforge-io/forge/internal/http"
	"github.com/clientforge-io/forge/pkg/forge"
)

// Client implements the forge.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager auth.TokenManager
	baseURL      string
	logger       forge.Logger
}

// createTokenManager creates the appropriate token manager based on config.
// See forge.Config for the precedence rules.
func createTokenManager(config *forge.Config) auth.TokenManager {
	if config.AccessToken != "" {
		return auth.NewStaticTokenManager(config.AccessToken)
	}

	if config.APIKey != "" {
		// API keys travel as a header, not a bearer token.
		return nil
	}

	if config.ClientID != "" && config.ClientSecret != "" {
		return auth.NewOAuth2TokenManager(&auth.OAuth2Config{
			TokenURL:     tokenURL(config),
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Username:     config.Username,
			Password:     config.Password,
			RefreshToken: config.RefreshToken,
		})
	}

	if config.Username != "" && config.Password != "" {
		return auth.NewOAuth2TokenManager(&auth.OAuth2Config{
			TokenURL:     tokenURL(config),
			Username:     config.Username,
			Password:     config.Password,
			RefreshToken: config.RefreshToken,
		})
	}

	return nil // No authentication
}

func tokenURL(config *forge.Config) string {
	if config.TokenURL != "" {
		return config.TokenURL
	}

	return config.APIEndpoint + "/oauth/token"
}

// createHTTPClientOptions builds transport options from config.
func createHTTPClientOptions(config *forge.Config) ([]http.Option, error) {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.APIKey != "" {
		httpOpts = append(httpOpts, http.WithAPIKey(config.APIKey, config.APIKeyHeader))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.RateLimit > 0 {
		httpOpts = append(httpOpts, http.WithRateLimit(config.RateLimit, config.RateBurst))
	}

	if config.RetryMax > 0 {
		retryWaitMin := 1 * time.Second
		retryWaitMax := 30 * time.Second

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	if config.Cache != nil && config.Cache.Type != forge.CacheTypeNone {
		cache, err := forge.NewCacheFromConfig(config.Cache)
		if err != nil {
			return nil, fmt.Errorf("building response cache: %w", err)
		}

		options := config.Cache.Options
		if options == nil {
			options = forge.DefaultCacheOptions()
		}

		httpOpts = append(httpOpts, http.WithCache(cache, options.DefaultTTL))
	}

	if config.DefaultHeaders != nil {
		chain := forge.NewInterceptorChain()
		chain.AddRequestInterceptor(forge.HeaderInterceptor(config.DefaultHeaders))
		httpOpts = append(httpOpts, http.WithInterceptors(chain))
	}

	return httpOpts, nil
}

// New creates a client for the configured endpoint.
func New(config *forge.Config) (*Client, error) {
	if config == nil {
		return nil, forge.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, forge.ErrEndpointRequired
	}

	return NewWithTokenManager(config, createTokenManager(config))
}

// NewWithTokenManager creates a client with a caller-supplied token
// manager, bypassing the credential precedence in config.
func NewWithTokenManager(config *forge.Config, tokenManager auth.TokenManager) (*Client, error) {
	if config == nil {
		return nil, forge.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, forge.ErrEndpointRequired
	}

	httpOpts, err := createHTTPClientOptions(config)
	if err != nil {
		return nil, err
	}

	httpClient := http.NewClient(config.APIEndpoint, tokenManager, httpOpts...)

	return &Client{
		httpClient:   httpClient,
		tokenManager: tokenManager,
		baseURL:      config.APIEndpoint,
		logger:       config.Logger,
	}, nil
}

// Endpoint implements forge.Client.
func (c *Client) Endpoint() string {
	return c.baseURL
}

// TokenManager returns the client's token manager, nil when requests are
// unauthenticated.
func (c *Client) TokenManager() auth.TokenManager {
	return c.tokenManager
}

// Get implements forge.Client.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (any, error) {
	resp, err := c.httpClient.Get(ctx, path, params)
	if err != nil {
		return nil, err
	}

	return decodeNode(resp.Body)
}

// Post implements forge.Client.
func (c *Client) Post(ctx context.Context, path string, body any) (any, error) {
	resp, err := c.httpClient.Post(ctx, path, body)
	if err != nil {
		return nil, err
	}

	return decodeNode(resp.Body)
}

// Put implements forge.Client.
func (c *Client) Put(ctx context.Context, path string, body any) (any, error) {
	resp, err := c.httpClient.Put(ctx, path, body)
	if err != nil {
		return nil, err
	}

	return decodeNode(resp.Body)
}

// Patch implements forge.Client.
func (c *Client) Patch(ctx context.Context, path string, body any) (any, error) {
	resp, err := c.httpClient.Patch(ctx, path, body)
	if err != nil {
		return nil, err
	}

	return decodeNode(resp.Body)
}

// Delete implements forge.Client.
func (c *Client) Delete(ctx context.Context, path string) (any, error) {
	resp, err := c.httpClient.Delete(ctx, path)
	if err != nil {
		return nil, err
	}

	return decodeNode(resp.Body)
}

// decodeNode parses a response body into node form, preserving number
// precision. Empty bodies decode to nil.
func decodeNode(body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var node any

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	if err := dec.Decode(&node); err != nil {
		return nil, &forge.DecodeError{Target: "node", Err: err}
	}

	return node, nil
}
