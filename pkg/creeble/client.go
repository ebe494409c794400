package creeble

import (
	"context"
	"time"
)

// DataClient provides read access to a project endpoint's content.
type DataClient interface {
	// List fetches a single page of items.
	List(ctx context.Context, endpoint string, params *QueryParams) (*ListResponse, error)

	// Get fetches a single item by its identifier.
	Get(ctx context.Context, endpoint, itemID string, params *QueryParams) (Item, error)

	// All fetches every item sequentially.
	All(ctx context.Context, endpoint string, params *QueryParams) ([]Item, error)

	// AllConcurrent fetches every item using batched concurrent page
	// requests, falling back to a sequential fetch on failure.
	AllConcurrent(ctx context.Context, endpoint string, params *QueryParams, batchWidth int) ([]Item, error)

	// AllOptimized probes the dataset size and picks the cheaper strategy.
	AllOptimized(ctx context.Context, endpoint string, params *QueryParams, opts *OptimizedOptions) ([]Item, error)

	// Search fetches items matching a free-text term.
	Search(ctx context.Context, endpoint, term string, params *QueryParams) (*ListResponse, error)

	// Filter fetches items where field matches value.
	Filter(ctx context.Context, endpoint, field, value string) (*ListResponse, error)

	// First returns the first item of the endpoint, or ErrNoItemsFound.
	First(ctx context.Context, endpoint string, params *QueryParams) (Item, error)

	// Exists reports whether an item exists. Any error, including network
	// failure, is treated as "does not exist".
	Exists(ctx context.Context, endpoint, itemID string) bool

	// Count returns the total item count via the minimal-payload probe.
	Count(ctx context.Context, endpoint string, params *QueryParams) (int, error)

	// Info describes the endpoint (name and item count) via the probe.
	Info(ctx context.Context, endpoint string) (*EndpointInfo, error)
}

// FormsClient submits entries to form-enabled endpoints.
type FormsClient interface {
	// Submit posts the values to the endpoint's form. Submissions are never
	// cached.
	Submit(ctx context.Context, endpoint string, values map[string]any) (*FormSubmission, error)
}

// Client is the top-level Creeble API client.
type Client interface {
	Data() DataClient
	Forms() FormsClient

	// ClearCache drops every cached response.
	ClearCache(ctx context.Context) error

	// CacheStats returns hit/miss/set counters for the response cache.
	CacheStats() CacheStats
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

// Config represents client configuration.
type Config struct {
	// APIKey is the Creeble API key sent on every request (required).
	APIKey string `json:"api_key" yaml:"api_key" mapstructure:"api_key"`

	// BaseURL overrides the default API base URL (https://creeble.io).
	// A trailing slash is trimmed and "https://" is added when no scheme is
	// present.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// HTTPTimeout is the per-request transport timeout. Callers needing
	// finer control should use context deadlines.
	HTTPTimeout time.Duration `json:"http_timeout,omitempty" yaml:"http_timeout,omitempty" mapstructure:"http_timeout"`

	// RetryMax is the maximum number of transport-level retries for
	// transient failures (>=500 and connection errors). Zero uses the
	// default of 3; a negative value disables retries.
	RetryMax int `json:"retry_max,omitempty" yaml:"retry_max,omitempty" mapstructure:"retry_max"`

	// RetryWaitMin is the minimum backoff between retries.
	RetryWaitMin time.Duration `json:"retry_wait_min,omitempty" yaml:"retry_wait_min,omitempty" mapstructure:"retry_wait_min"`

	// RetryWaitMax is the maximum backoff between retries.
	RetryWaitMax time.Duration `json:"retry_wait_max,omitempty" yaml:"retry_wait_max,omitempty" mapstructure:"retry_wait_max"`

	// CacheEnabled turns on the GET response cache.
	CacheEnabled bool `json:"cache_enabled,omitempty" yaml:"cache_enabled,omitempty" mapstructure:"cache_enabled"`

	// CacheTTL is the fixed time-to-live for cached responses. Zero uses
	// the default of five minutes.
	CacheTTL time.Duration `json:"cache_ttl,omitempty" yaml:"cache_ttl,omitempty" mapstructure:"cache_ttl"`

	// CacheBackend selects and configures the cache store. Nil uses the
	// in-memory backend.
	CacheBackend *CacheConfig `json:"cache_backend,omitempty" yaml:"cache_backend,omitempty" mapstructure:"cache_backend"`

	// Debug enables request/response logging when a Logger is provided.
	Debug bool `json:"debug,omitempty" yaml:"debug,omitempty" mapstructure:"debug"`

	// Logger is an optional structured logger used by the transport.
	Logger Logger `json:"-" yaml:"-" mapstructure:"-"`

	// UserAgent overrides the default User-Agent header.
	UserAgent string `json:"user_agent,omitempty" yaml:"user_agent,omitempty" mapstructure:"user_agent"`
}
