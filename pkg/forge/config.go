package forge

import (
	"net/url"
	"strconv"
	"time"
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a forge.Client.
//
// # Authentication precedence
//
// The following precedence is applied by the concrete client implementation
// (see pkg/forgeclient and internal/client):
//  1. AccessToken: if set, it is used directly as a static Bearer token.
//  2. APIKey: sent on every request in the header named by APIKeyHeader
//     (default "X-API-Key").
//  3. ClientID/ClientSecret: uses the OAuth2 client_credentials grant
//     against TokenURL.
//  4. Username/Password: uses the OAuth2 password grant against TokenURL.
//  5. No credentials: requests are sent without authentication.
type Config struct {
	// Required fields
	// APIEndpoint: base URL for the API (e.g., "https://api.example.com").
	// forgeclient.New normalizes this value by trimming a trailing slash and
	// adding "https://" if no scheme is present.
	APIEndpoint string

	// Authentication options (provide one)
	// AccessToken: if set, used directly as a static Bearer token.
	AccessToken string
	// APIKey: static API key sent in the APIKeyHeader header.
	APIKey string
	// APIKeyHeader: header name for APIKey (default "X-API-Key").
	APIKeyHeader string
	// ClientID: OAuth2 client ID for the client_credentials grant.
	ClientID string
	// ClientSecret: OAuth2 client secret used with ClientID.
	ClientSecret string
	// Username: account username for the OAuth2 password grant.
	Username string
	// Password: account password for the OAuth2 password grant.
	Password string
	// RefreshToken: optional refresh token used by the OAuth2 manager to
	// renew access tokens.
	RefreshToken string
	// TokenURL: full OAuth2 token endpoint. Required when an OAuth2 grant
	// is selected by the precedence above.
	TokenURL string

	// Optional configurations
	// HTTPTimeout: optional default HTTP timeout where supported. Most
	// calls should rely on context timeouts; this may be used by helpers.
	HTTPTimeout time.Duration
	// RetryMax: maximum number of retries for transient failures (>=500,
	// 429, and connection errors). If 0, a sensible default is used.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMax time.Duration
	// RateLimit: maximum requests per second; 0 disables client-side
	// rate limiting.
	RateLimit float64
	// RateBurst: burst size for the rate limiter (default 1 when
	// RateLimit > 0).
	RateBurst int
	// Debug: enables verbose HTTP request/response logging when a Logger
	// is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer and helpers.
	Logger Logger
	// UserAgent: overrides the default User-Agent header sent by the client.
	UserAgent string
	// DefaultHeaders: headers added to every request.
	DefaultHeaders map[string]string
	// Cache: optional response cache configuration for GET requests.
	Cache *CacheConfig
}

// QueryParams builds query strings for list requests.
type QueryParams struct {
	// Filters maps a parameter name to one or more values.
	Filters map[string][]string
	// OrderBy names the sort field; prefix with "-" for descending.
	OrderBy string
	// PageSize requests a page size; 0 leaves it to the paginator.
	PageSize int
	// Extra holds parameters passed through verbatim.
	Extra map[string]string
}

// NewQueryParams creates an empty QueryParams.
func NewQueryParams() *QueryParams {
	return &QueryParams{
		Filters: make(map[string][]string),
		Extra:   make(map[string]string),
	}
}

// WithFilter adds filter values for a parameter and returns the receiver
// for chaining.
func (q *QueryParams) WithFilter(name string, values ...string) *QueryParams {
	if q.Filters == nil {
		q.Filters = make(map[string][]string)
	}

	q.Filters[name] = append(q.Filters[name], values...)

	return q
}

// WithOrderBy sets the sort field and returns the receiver for chaining.
func (q *QueryParams) WithOrderBy(field string) *QueryParams {
	q.OrderBy = field

	return q
}

// WithExtra sets a verbatim parameter and returns the receiver for chaining.
func (q *QueryParams) WithExtra(name, value string) *QueryParams {
	if q.Extra == nil {
		q.Extra = make(map[string]string)
	}

	q.Extra[name] = value

	return q
}

// ToValues renders the parameters as url.Values.
func (q *QueryParams) ToValues() url.Values {
	values := url.Values{}

	if q == nil {
		return values
	}

	for name, vals := range q.Filters {
		for _, v := range vals {
			values.Add(name, v)
		}
	}

	if q.OrderBy != "" {
		values.Set("order_by", q.OrderBy)
	}

	if q.PageSize > 0 {
		values.Set("per_page", strconv.Itoa(q.PageSize))
	}

	for name, v := range q.Extra {
		values.Set(name, v)
	}

	return values
}
