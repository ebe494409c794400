package creeble

import (
	"encoding/json"
	"errors"
	"fmt"
)

// APIError is the generic error returned for any failed API call that does
// not map to a more specific type. It carries the HTTP status and, when the
// failure happened below HTTP, the underlying cause.
type APIError struct {
	StatusCode int    `json:"status_code" yaml:"status_code"`
	Message    string `json:"message"     yaml:"message"`
	Err        error  `json:"-"           yaml:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("creeble: %s (status: %d): %v", e.Message, e.StatusCode, e.Err)
	}

	return fmt.Sprintf("creeble: %s (status: %d)", e.Message, e.StatusCode)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.Err
}

// AuthenticationError is returned when the API rejects the API key (401).
type AuthenticationError struct {
	Message string `json:"message" yaml:"message"`
}

// Error implements the error interface.
func (e *AuthenticationError) Error() string {
	if e.Message == "" {
		return "creeble: authentication failed, check your API key"
	}

	return "creeble: authentication failed: " + e.Message
}

// ValidationError is returned on 422 responses. Errors maps a field name to
// the list of messages the server reported for it.
type ValidationError struct {
	Message string              `json:"message" yaml:"message"`
	Errors  map[string][]string `json:"errors"  yaml:"errors"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "creeble: validation failed: " + e.Message
	}

	return fmt.Sprintf("creeble: validation failed: %s (%d invalid fields)", e.Message, len(e.Errors))
}

// FieldErrors returns the messages for one field, or nil.
func (e *ValidationError) FieldErrors(field string) []string {
	return e.Errors[field]
}

// RateLimitError is returned on 429 responses. RetryAfter is the number of
// seconds the server asked the client to wait, parsed from the Retry-After
// header (0 when the header was absent or unparseable).
type RateLimitError struct {
	Message    string `json:"message"     yaml:"message"`
	RetryAfter int    `json:"retry_after" yaml:"retry_after"`
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("creeble: rate limit exceeded, retry after %d seconds", e.RetryAfter)
	}

	return "creeble: rate limit exceeded"
}

// DatasetTooLargeError is returned by the optimized fetch when the probed
// total item count exceeds the configured ceiling. The caller should narrow
// the dataset with filters instead of fetching everything.
type DatasetTooLargeError struct {
	Total    int `json:"total"     yaml:"total"`
	MaxItems int `json:"max_items" yaml:"max_items"`
}

// Error implements the error interface.
func (e *DatasetTooLargeError) Error() string {
	return fmt.Sprintf("creeble: dataset has %d items, exceeding the limit of %d; add filters to narrow the result set", e.Total, e.MaxItems)
}

// Static errors that can be wrapped with context.
var (
	ErrConfigRequired      = errors.New("config is required")
	ErrAPIKeyRequired      = errors.New("API key is required")
	ErrEndpointRequired    = errors.New("endpoint is required")
	ErrItemIDRequired      = errors.New("item id is required")
	ErrCacheEntryNotFound  = errors.New("cache key not found")
	ErrCacheEntryExpired   = errors.New("cache entry expired")
	ErrCacheDisabled       = errors.New("cache disabled")
	ErrNoMoreItems         = errors.New("no more items")
	ErrNoItemsFound        = errors.New("no items found")
	ErrMissingPagination   = errors.New("response has no pagination envelope")
	ErrConcurrentAbandoned = errors.New("concurrent fetch abandoned")
)

// errorBody is the JSON error envelope the API returns on failures.
type errorBody struct {
	Message string              `json:"message"`
	Error   string              `json:"error"`
	Errors  map[string][]string `json:"errors"`
}

func (b *errorBody) message() string {
	if b.Message != "" {
		return b.Message
	}

	return b.Error
}

// ClassifyResponseError maps an HTTP status code and response body to the
// typed error for that failure class.
func ClassifyResponseError(statusCode int, body []byte, retryAfter int) error {
	var parsed errorBody

	// A non-JSON body is fine; the status code alone determines the type.
	_ = json.Unmarshal(body, &parsed)

	switch statusCode {
	case 401:
		return &AuthenticationError{Message: parsed.message()}
	case 422:
		return &ValidationError{Message: parsed.message(), Errors: parsed.Errors}
	case 429:
		return &RateLimitError{Message: parsed.message(), RetryAfter: retryAfter}
	default:
		message := parsed.message()
		if message == "" {
			message = "API request failed"
		}

		return &APIError{StatusCode: statusCode, Message: message}
	}
}

// IsAuthentication checks if the error is an authentication failure.
func IsAuthentication(err error) bool {
	target := &AuthenticationError{}

	return errors.As(err, &target)
}

// IsValidation checks if the error is a validation failure.
func IsValidation(err error) bool {
	target := &ValidationError{}

	return errors.As(err, &target)
}

// IsRateLimit checks if the error is a rate limit rejection.
func IsRateLimit(err error) bool {
	target := &RateLimitError{}

	return errors.As(err, &target)
}

// IsNotFound checks if the error is a 404 API error.
func IsNotFound(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}

	return false
}

// IsDatasetTooLarge checks if the error is an optimized-fetch ceiling breach.
func IsDatasetTooLarge(err error) bool {
	target := &DatasetTooLargeError{}

	return errors.As(err, &target)
}
