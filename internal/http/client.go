// Package http implements the transport layer shared by every generated
// client: retrying HTTP with token injection, interceptors, rate limiting,
// and response caching.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	retryablehttp "github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/clientforge-io/forge/internal/auth"
	"github.com/clientforge-io/forge/pkg/forge"
)

const defaultUserAgent = "forge-client/1.0"

// Request is one transport-level request.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Headers map[string]string
	Body    any
}

// Response is one transport-level response with the body fully read.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Client performs HTTP requests against one API endpoint.
type Client struct {
	baseURL      string
	httpClient   *retryablehttp.Client
	tokenManager auth.TokenManager
	logger       forge.Logger
	debug        bool
	userAgent    string
	apiKey       string
	apiKeyHeader string
	limiter      *rate.Limiter
	interceptors *forge.InterceptorChain
	cache        forge.Cache
	cacheTTL     time.Duration
}

// NewClient creates a transport client for baseURL. A nil tokenManager
// sends unauthenticated requests.
func NewClient(baseURL string, tokenManager auth.TokenManager, opts ...Option) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 3
	httpClient.RetryWaitMin = 1 * time.Second
	httpClient.RetryWaitMax = 30 * time.Second
	httpClient.Logger = nil

	client := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   httpClient,
		tokenManager: tokenManager,
		userAgent:    defaultUserAgent,
		interceptors: forge.NewInterceptorChain(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Interceptors returns the client's interceptor chain for callers that
// want to extend it.
func (c *Client) Interceptors() *forge.InterceptorChain {
	return c.interceptors
}

// Do performs one request and returns the response. Responses with status
// >= 400 return both the response and a *forge.ResponseError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	fullURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	var bodyBytes []byte

	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}

		bodyBytes = encoded
	}

	interceptReq := &forge.Request{
		Method:  req.Method,
		Path:    req.Path,
		Headers: make(http.Header),
		Body:    bodyBytes,
	}

	c.setStandardHeaders(interceptReq.Headers, bodyBytes != nil)

	for key, value := range req.Headers {
		interceptReq.Headers.Set(key, value)
	}

	if err := c.authorize(ctx, interceptReq.Headers); err != nil {
		return nil, err
	}

	if err := c.interceptors.ExecuteRequestInterceptors(ctx, interceptReq); err != nil {
		return nil, err
	}

	cacheKey := req.Method + " " + fullURL
	if cached := c.cachedResponse(ctx, req.Method, cacheKey); cached != nil {
		return cached, nil
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
		})
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	httpReq.Header = interceptReq.Headers

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method":      req.Method,
			"url":         fullURL,
			"status_code": resp.StatusCode,
		})
	}

	respErr := c.responseError(resp)

	interceptResp := &forge.Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
		Error:      respErr,
	}
	if err := c.interceptors.ExecuteResponseInterceptors(ctx, interceptReq, interceptResp); err != nil {
		return resp, err
	}

	if respErr != nil {
		return resp, respErr
	}

	c.storeResponse(ctx, req.Method, cacheKey, resp)

	return resp, nil
}

func (c *Client) setStandardHeaders(headers http.Header, hasBody bool) {
	headers.Set("Accept", "application/json")
	headers.Set("User-Agent", c.userAgent)
	headers.Set("X-Request-ID", uuid.NewString())

	if hasBody {
		headers.Set("Content-Type", "application/json")
	}

	if c.apiKey != "" {
		headers.Set(c.apiKeyHeader, c.apiKey)
	}
}

func (c *Client) authorize(ctx context.Context, headers http.Header) error {
	if c.tokenManager == nil {
		return nil
	}

	token, err := c.tokenManager.GetToken(ctx)
	if err != nil {
		return fmt.Errorf("getting token: %w", err)
	}

	headers.Set("Authorization", "Bearer "+token)

	return nil
}

// responseError maps non-2xx responses to *forge.ResponseError, decoding
// the conventional errors array when present.
func (c *Client) responseError(resp *Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	respErr := &forge.ResponseError{StatusCode: resp.StatusCode}

	var parsed struct {
		Errors []forge.APIError `json:"errors"`
	}

	if err := json.Unmarshal(resp.Body, &parsed); err == nil && len(parsed.Errors) > 0 {
		respErr.Errors = parsed.Errors
	}

	return respErr
}

func (c *Client) cachedResponse(ctx context.Context, method, key string) *Response {
	if c.cache == nil || method != http.MethodGet {
		return nil
	}

	entry, err := c.cache.Get(ctx, key)
	if err != nil {
		return nil
	}

	return &Response{StatusCode: http.StatusOK, Body: entry.Data}
}

func (c *Client) storeResponse(ctx context.Context, method, key string, resp *Response) {
	if c.cache == nil || method != http.MethodGet || resp.StatusCode != http.StatusOK {
		return
	}

	entry := &forge.CacheEntry{
		Data:      resp.Body,
		ExpiresAt: time.Now().Add(c.cacheTTL),
		ETag:      resp.Headers.Get("ETag"),
	}

	if err := c.cache.Set(ctx, key, entry); err != nil && c.logger != nil {
		c.logger.Warn("failed to cache response", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}
