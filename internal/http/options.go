package http

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/clientforge-io/forge/pkg/forge"
)

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the structured logger used for transport logging.
func WithLogger(logger forge.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging when a logger is set.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithAPIKey sends a static API key on every request in the given header.
func WithAPIKey(key, header string) Option {
	return func(c *Client) {
		c.apiKey = key
		c.apiKeyHeader = header

		if c.apiKeyHeader == "" {
			c.apiKeyHeader = "X-API-Key"
		}
	}
}

// WithRetryConfig tunes the transport's retry behavior.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithTimeout sets the underlying HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithRateLimit bounds the client to requestsPerSecond with the given
// burst. A zero or negative rate disables limiting.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			return
		}

		if burst <= 0 {
			burst = 1
		}

		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// WithCache caches successful GET responses for ttl.
func WithCache(cache forge.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// WithInterceptors replaces the client's interceptor chain.
func WithInterceptors(chain *forge.InterceptorChain) Option {
	return func(c *Client) {
		if chain != nil {
			c.interceptors = chain
		}
	}
}
