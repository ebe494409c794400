// Package http implements the transport layer for the Creeble API: URL
// construction, API-key authentication, interceptor chains, retrying HTTP
// calls, response caching, and status-code classification.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/creeblers/creeble-go/internal/constants"
	"github.com/creeblers/creeble-go/pkg/creeble"
)

// Request represents an API request.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    any
	Headers nethttp.Header
}

// Response represents an API response.
type Response struct {
	StatusCode int
	Headers    nethttp.Header
	Body       []byte
}

// Client performs HTTP requests against the Creeble API.
type Client struct {
	baseURL      string
	apiKey       string
	httpClient   *nethttp.Client
	logger       creeble.Logger
	debug        bool
	userAgent    string
	interceptors *creeble.InterceptorChain
	cacheManager *creeble.CacheManager
	cachePolicy  *creeble.CachingPolicy
	cacheTTL     time.Duration
	cacheEnabled bool
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the structured logger.
func WithLogger(logger creeble.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithTimeout sets the transport timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRetryConfig tunes transport-level retries.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		retryClient := newRetryClient(retryMax, waitMin, waitMax)
		retryClient.HTTPClient.Timeout = c.httpClient.Timeout
		c.httpClient = retryClient.StandardClient()
	}
}

// WithCache enables the GET response cache with a fixed TTL.
func WithCache(cache creeble.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		if ttl <= 0 {
			ttl = constants.DefaultCacheTTL
		}

		c.cacheManager = creeble.NewCacheManager(cache, c.logger)
		c.cacheTTL = ttl
		c.cacheEnabled = true
	}
}

func newRetryClient(retryMax int, waitMin, waitMax time.Duration) *retryablehttp.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = retryMax
	retryClient.RetryWaitMin = waitMin
	retryClient.RetryWaitMax = waitMax
	retryClient.Logger = nil

	return retryClient
}

// NewClient creates a Creeble transport client. The API key is merged into
// every request via the X-API-KEY header.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	retryClient := newRetryClient(constants.DefaultRetryMax, constants.DefaultRetryWaitMin, constants.DefaultRetryWaitMax)
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout

	client := &Client{
		baseURL:      baseURL,
		apiKey:       apiKey,
		httpClient:   retryClient.StandardClient(),
		userAgent:    "creeble-go/1.0",
		interceptors: creeble.NewInterceptorChain(),
		cachePolicy:  creeble.DefaultCachingPolicy(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Interceptors exposes the interceptor chain for registration.
func (c *Client) Interceptors() *creeble.InterceptorChain {
	return c.interceptors
}

// CacheManager returns the response cache manager, or nil when caching is
// disabled.
func (c *Client) CacheManager() *creeble.CacheManager {
	return c.cacheManager
}

// Do performs a request through the full pipeline: request interceptors,
// cache lookup (GET only), HTTP call, then response or error interceptors.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	intercepted := &creeble.Request{
		Method:  req.Method,
		Path:    req.Path,
		Query:   req.Query,
		Headers: cloneHeader(req.Headers),
	}

	if intercepted.Headers == nil {
		intercepted.Headers = make(nethttp.Header)
	}

	if c.apiKey != "" {
		intercepted.Headers.Set("X-API-KEY", c.apiKey)
	}

	err := c.interceptors.ExecuteRequestInterceptors(ctx, intercepted)
	if err != nil {
		return nil, err
	}

	cacheKey := ""
	if c.cacheEnabled && req.Method == nethttp.MethodGet {
		cacheKey = c.cacheManager.GetCacheKey(intercepted.Method, intercepted.Path, intercepted.Query)

		cached, cacheErr := c.cacheManager.Get(ctx, cacheKey)
		if cacheErr == nil {
			return &Response{StatusCode: nethttp.StatusOK, Body: cached}, nil
		}
	}

	resp, err := c.perform(ctx, intercepted, req.Body)
	if err != nil {
		return nil, c.interceptors.ExecuteErrorInterceptors(ctx, intercepted, err)
	}

	if resp.StatusCode >= 400 {
		classified := creeble.ClassifyResponseError(resp.StatusCode, resp.Body, parseRetryAfter(resp.Headers))

		return nil, c.interceptors.ExecuteErrorInterceptors(ctx, intercepted, classified)
	}

	interceptedResp := &creeble.Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
	}

	err = c.interceptors.ExecuteResponseInterceptors(ctx, intercepted, interceptedResp)
	if err != nil {
		return nil, err
	}

	resp.Body = interceptedResp.Body

	if cacheKey != "" && c.cachePolicy.ShouldCache(intercepted.Method, intercepted.Path, resp.StatusCode) {
		_ = c.cacheManager.Set(ctx, cacheKey, resp.Body, c.cacheTTL)
	}

	return resp, nil
}

// perform builds and executes the underlying HTTP request.
func (c *Client) perform(ctx context.Context, req *creeble.Request, body any) (*Response, error) {
	fullURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + url.Values(req.Query).Encode()
	}

	var bodyReader io.Reader

	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}

		bodyReader = bytes.NewReader(encoded)
	}

	httpReq, err := nethttp.NewRequestWithContext(ctx, req.Method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	for key, values := range req.Headers {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("API request", map[string]any{
			"method": req.Method,
			"url":    fullURL,
		})
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &creeble.APIError{Message: "request failed", Err: err}
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &creeble.APIError{StatusCode: httpResp.StatusCode, Message: "reading response body", Err: err}
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("API response", map[string]any{
			"method":      req.Method,
			"url":         fullURL,
			"status_code": httpResp.StatusCode,
			"bytes":       len(respBody),
		})
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodPost, Path: path, Body: body})
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodDelete, Path: path})
}

// ClearCache drops all cached responses.
func (c *Client) ClearCache(ctx context.Context) error {
	if c.cacheManager == nil {
		return nil
	}

	return c.cacheManager.Clear(ctx)
}

// CacheStats returns the cache hit/miss/set counters.
func (c *Client) CacheStats() creeble.CacheStats {
	if c.cacheManager == nil {
		return creeble.CacheStats{}
	}

	return c.cacheManager.GetStats()
}

func parseRetryAfter(headers nethttp.Header) int {
	value := headers.Get("Retry-After")
	if value == "" {
		return 0
	}

	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}

	return seconds
}

func cloneHeader(headers nethttp.Header) nethttp.Header {
	if headers == nil {
		return nil
	}

	return headers.Clone()
}
