package constants

import "time"

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as count probes.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Pagination limits.
const (
	// MaxPageSize is the largest page size the API accepts per request.
	MaxPageSize = 100

	// DefaultPageSize is used when the caller does not set a limit.
	DefaultPageSize = 25

	// DefaultBatchWidth is the number of pages fetched per concurrent batch.
	DefaultBatchWidth = 3

	// SequentialPageThreshold is the page count at or below which the
	// optimized selector prefers the sequential strategy.
	SequentialPageThreshold = 3

	// DefaultMaxItems is the optimized-fetch ceiling; datasets larger than
	// this must be narrowed with filters before a full fetch.
	DefaultMaxItems = 1000
)

// Cache defaults.
const (
	// DefaultCacheSize is the default maximum number of memory cache entries.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is the default time-to-live for cached responses.
	DefaultCacheTTL = 5 * time.Minute
)
