package query

import (
	"context"
	"sync"
	"time"
)

// Config holds the client options spec §6 "Configuration enumerations"
// names, each with the spec's documented default.
type Config struct {
	CacheMaxSize   int
	CacheTime      time.Duration
	StaleTime      time.Duration
	Dedupe         bool
	ThrowOnError   bool
	CacheEnabled   bool
	WSReconnect    bool
	WSMaxRetries   int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		CacheMaxSize:   DefaultCacheMaxSize,
		CacheTime:      DefaultCacheTime,
		StaleTime:      0,
		Dedupe:         true,
		ThrowOnError:   true,
		CacheEnabled:   true,
		WSReconnect:    true,
		WSMaxRetries:   5,
		RetryBaseDelay: time.Second,
		RetryMaxDelay:  30 * time.Second,
	}
}

// Option configures a Client at construction time.
type Option func(*Config)

func WithCacheMaxSize(n int) Option        { return func(c *Config) { c.CacheMaxSize = n } }
func WithCacheTime(d time.Duration) Option { return func(c *Config) { c.CacheTime = d } }
func WithStaleTime(d time.Duration) Option { return func(c *Config) { c.StaleTime = d } }
func WithDedupe(enabled bool) Option       { return func(c *Config) { c.Dedupe = enabled } }
func WithThrowOnError(v bool) Option       { return func(c *Config) { c.ThrowOnError = v } }
func WithCache(enabled bool) Option        { return func(c *Config) { c.CacheEnabled = enabled } }
func WithWSReconnect(v bool) Option        { return func(c *Config) { c.WSReconnect = v } }
func WithWSMaxRetries(n int) Option        { return func(c *Config) { c.WSMaxRetries = n } }
func WithRetryDelays(base, max time.Duration) Option {
	return func(c *Config) { c.RetryBaseDelay = base; c.RetryMaxDelay = max }
}

// Request is a single GraphQL operation dispatched through a Client.
type Request struct {
	OperationName string
	Query         string
	Variables     map[string]any
}

// Executor performs the actual network dispatch for a Request. The HTTP
// transport itself (retry policy, URL building) is out of scope here
// (spec §1 Non-goals); a Client is handed one by its caller.
type Executor func(ctx context.Context, req Request) (any, error)

// dedupEntry is the in-flight value shared by callers asking for the same
// key while dedupe is enabled (spec §4.6 "In-flight dedup").
type dedupEntry struct {
	done  chan struct{}
	value any
	err   error
}

// Client is the shared object a useQuery/useMutation/useSubscription call
// dispatches through: cache, dedup map, and interceptor chains are all
// per-client (spec §6 "Cache, dedup map, interceptor lists are per-client").
type Client struct {
	cfg Config

	cache *Cache

	dedupMu sync.Mutex
	dedup   map[string]*dedupEntry

	RequestInterceptors  *Interceptors
	ResponseInterceptors *Interceptors

	execute Executor

	subs SubscriptionTransport
}

// NewClient creates a Client dispatching requests through execute.
// transport (may be nil if the application never subscribes) backs
// useSubscription.
func NewClient(execute Executor, transport SubscriptionTransport, opts ...Option) *Client {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Client{
		cfg:                  cfg,
		cache:                NewCache(cfg.CacheMaxSize, cfg.CacheTime),
		dedup:                make(map[string]*dedupEntry),
		RequestInterceptors:  NewInterceptors(),
		ResponseInterceptors: NewInterceptors(),
		execute:              execute,
		subs:                 transport,
	}
}

// CacheGet looks up key, honoring the global cache on/off switch (spec §9
// Open Questions: "the cache option ... treat as a global on/off for the
// LRU layer").
func (c *Client) CacheGet(key string) (CacheEntry, bool) {
	if !c.cfg.CacheEnabled {
		return CacheEntry{}, false
	}
	return c.cache.Get(key)
}

// CacheSet stores value under key, a no-op if caching is disabled.
func (c *Client) CacheSet(key string, value any) {
	if !c.cfg.CacheEnabled {
		return
	}
	c.cache.Set(key, value)
}

// Invalidate evicts key (spec §4.5 "invalidate() ... evicts the client's
// cache entry"). A no-op if key is absent (spec §8 idempotence).
func (c *Client) Invalidate(key string) {
	c.cache.Delete(key)
}

// Dispatch runs req through the request interceptors, the dedup map (if
// Dedupe is enabled), the executor, and the response interceptors, in
// that order.
func (c *Client) Dispatch(ctx context.Context, req Request, cacheKey string) (any, error) {
	transformed, err := c.RequestInterceptors.Run(req)
	if err != nil {
		return nil, err
	}
	req = transformed.(Request)

	if !c.cfg.Dedupe {
		return c.dispatchOnce(ctx, req)
	}

	c.dedupMu.Lock()
	if entry, ok := c.dedup[cacheKey]; ok {
		c.dedupMu.Unlock()
		<-entry.done
		return entry.value, entry.err
	}

	entry := &dedupEntry{done: make(chan struct{})}
	c.dedup[cacheKey] = entry
	c.dedupMu.Unlock()

	entry.value, entry.err = c.dispatchOnce(ctx, req)

	c.dedupMu.Lock()
	delete(c.dedup, cacheKey)
	c.dedupMu.Unlock()

	close(entry.done)

	return entry.value, entry.err
}

func (c *Client) dispatchOnce(ctx context.Context, req Request) (any, error) {
	value, err := c.execute(ctx, req)
	if err != nil {
		return nil, Wrap(err, CodeHTTPError)
	}

	transformed, err := c.ResponseInterceptors.Run(value)
	if err != nil {
		return nil, Wrap(err, CodeGraphQLError)
	}

	return transformed, nil
}
