package forge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// Cache stores API responses keyed by request identity.
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) bool
}

// CacheEntry is one cached response.
type CacheEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
	ETag      string    `json:"etag,omitempty"`
}

// Expired reports whether the entry is past its expiry.
func (e *CacheEntry) Expired() bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}

// CacheOptions holds common options applied to any cache backend.
type CacheOptions struct {
	// DefaultTTL is the entry lifetime used when the response carries no
	// cache directives.
	DefaultTTL time.Duration
	// RespectCacheControl honors Cache-Control response headers when
	// computing entry lifetimes.
	RespectCacheControl bool
}

// DefaultCacheOptions returns the default cache options.
func DefaultCacheOptions() *CacheOptions {
	return &CacheOptions{
		DefaultTTL:          5 * time.Minute,
		RespectCacheControl: true,
	}
}

// DefaultCacheSize is the default in-memory cache capacity.
const DefaultCacheSize = 1000

// MemoryCache is an in-memory cache with a bounded size. When full, the
// entry closest to expiry is evicted.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*CacheEntry
	maxSize int
}

// NewMemoryCache creates an in-memory cache holding at most maxSize entries.
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}

	return &MemoryCache{
		entries: make(map[string]*CacheEntry),
		maxSize: maxSize,
	}
}

// Get retrieves an entry, failing for missing or expired keys.
func (c *MemoryCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCacheKeyNotFound, key)
	}

	if entry.Expired() {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()

		return nil, fmt.Errorf("%w: %s", ErrCacheEntryExpired, key)
	}

	return entry, nil
}

// Set stores an entry, evicting the soonest-expiring entry when full.
func (c *MemoryCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictLocked()
	}

	c.entries[key] = entry

	return nil
}

// evictLocked removes the entry closest to expiry. Callers hold c.mu.
func (c *MemoryCache) evictLocked() {
	var (
		oldestKey string
		oldest    time.Time
	)

	for key, entry := range c.entries {
		if oldestKey == "" || entry.ExpiresAt.Before(oldest) {
			oldestKey = key
			oldest = entry.ExpiresAt
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// Delete removes an entry.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	return nil
}

// Clear removes all entries.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]*CacheEntry)
	c.mu.Unlock()

	return nil
}

// Has reports whether a live entry exists for key.
func (c *MemoryCache) Has(ctx context.Context, key string) bool {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	return ok && !entry.Expired()
}

// Cleanup removes expired entries. Callers may run it periodically.
func (c *MemoryCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		if entry.Expired() {
			delete(c.entries, key)
		}
	}
}

// NATSKVConfig configures the NATS JetStream KV cache backend.
type NATSKVConfig struct {
	// URL is the NATS server URL (e.g. nats://localhost:4222).
	URL string
	// Bucket is the KV bucket name.
	Bucket string
	// TTL is the bucket-level entry lifetime.
	TTL time.Duration
	// Credentials is an optional path to a NATS credentials file.
	Credentials string
}

// NATSKVCache stores entries in a NATS JetStream key-value bucket so
// multiple client processes can share one response cache.
type NATSKVCache struct {
	conn *nats.Conn
	kv   nats.KeyValue
}

// NewNATSKVCache connects to NATS and opens (or creates) the configured
// KV bucket.
func NewNATSKVCache(config *NATSKVConfig) (*NATSKVCache, error) {
	if config == nil || config.URL == "" || config.Bucket == "" {
		return nil, ErrNATSConfigRequired
	}

	var opts []nats.Option
	if config.Credentials != "" {
		opts = append(opts, nats.UserCredentials(config.Credentials))
	}

	conn, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("opening JetStream context: %w", err)
	}

	kv, err := js.KeyValue(config.Bucket)
	if err != nil {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket: config.Bucket,
			TTL:    config.TTL,
		})
		if err != nil {
			conn.Close()

			return nil, fmt.Errorf("creating KV bucket %q: %w", config.Bucket, err)
		}
	}

	return &NATSKVCache{conn: conn, kv: kv}, nil
}

// Get retrieves an entry from the KV bucket.
func (c *NATSKVCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	kvEntry, err := c.kv.Get(sanitizeKVKey(key))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCacheKeyNotFound, key)
	}

	var entry CacheEntry
	if err := json.Unmarshal(kvEntry.Value(), &entry); err != nil {
		return nil, fmt.Errorf("decoding cache entry: %w", err)
	}

	if entry.Expired() {
		_ = c.kv.Delete(sanitizeKVKey(key))

		return nil, fmt.Errorf("%w: %s", ErrCacheEntryExpired, key)
	}

	return &entry, nil
}

// Set stores an entry in the KV bucket.
func (c *NATSKVCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	if _, err := c.kv.Put(sanitizeKVKey(key), data); err != nil {
		return fmt.Errorf("storing cache entry: %w", err)
	}

	return nil
}

// Delete removes an entry from the KV bucket.
func (c *NATSKVCache) Delete(ctx context.Context, key string) error {
	if err := c.kv.Delete(sanitizeKVKey(key)); err != nil {
		return fmt.Errorf("deleting cache entry: %w", err)
	}

	return nil
}

// Clear purges all entries from the KV bucket.
func (c *NATSKVCache) Clear(ctx context.Context) error {
	keys, err := c.kv.Keys()
	if err != nil {
		return nil
	}

	for _, key := range keys {
		_ = c.kv.Purge(key)
	}

	return nil
}

// Has reports whether a live entry exists for key.
func (c *NATSKVCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Close releases the NATS connection.
func (c *NATSKVCache) Close() error {
	c.conn.Close()

	return nil
}

// sanitizeKVKey maps cache keys onto the NATS KV key alphabet.
func sanitizeKVKey(key string) string {
	out := []byte(key)
	for i, b := range out {
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9',
			b == '-', b == '_', b == '.':
		default:
			out[i] = '_'
		}
	}

	return string(out)
}
