package creeble

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Request represents an API request passing through the interceptor chain.
// Interceptors may rewrite any field before the request is sent.
type Request struct {
	Method   string
	Path     string
	Query    map[string][]string
	Headers  http.Header
	Body     []byte
	Metadata map[string]any
}

// Response represents an API response passing through the interceptor chain.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// RequestInterceptor is called before a request is sent.
type RequestInterceptor func(ctx context.Context, req *Request) error

// ResponseInterceptor is called after a successful response is received.
type ResponseInterceptor func(ctx context.Context, req *Request, resp *Response) error

// ErrorInterceptor is called when a request fails, before the error is
// classified and returned. It may return a replacement error, or the
// original one unchanged.
type ErrorInterceptor func(ctx context.Context, req *Request, err error) error

// InterceptorChain manages ordered lists of interceptors. Interceptors run
// in registration order; the chain is owned by a single client and is not
// safe for concurrent mutation after requests start flowing.
type InterceptorChain struct {
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
	errorInterceptors    []ErrorInterceptor
}

// NewInterceptorChain creates a new interceptor chain.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{
		requestInterceptors:  make([]RequestInterceptor, 0),
		responseInterceptors: make([]ResponseInterceptor, 0),
		errorInterceptors:    make([]ErrorInterceptor, 0),
	}
}

// AddRequestInterceptor adds a request interceptor to the chain.
func (c *InterceptorChain) AddRequestInterceptor(interceptor RequestInterceptor) {
	c.requestInterceptors = append(c.requestInterceptors, interceptor)
}

// AddResponseInterceptor adds a response interceptor to the chain.
func (c *InterceptorChain) AddResponseInterceptor(interceptor ResponseInterceptor) {
	c.responseInterceptors = append(c.responseInterceptors, interceptor)
}

// AddErrorInterceptor adds an error interceptor to the chain.
func (c *InterceptorChain) AddErrorInterceptor(interceptor ErrorInterceptor) {
	c.errorInterceptors = append(c.errorInterceptors, interceptor)
}

// ExecuteRequestInterceptors runs all request interceptors in order.
func (c *InterceptorChain) ExecuteRequestInterceptors(ctx context.Context, req *Request) error {
	for _, interceptor := range c.requestInterceptors {
		err := interceptor(ctx, req)
		if err != nil {
			return fmt.Errorf("request interceptor failed: %w", err)
		}
	}

	return nil
}

// ExecuteResponseInterceptors runs all response interceptors in order.
func (c *InterceptorChain) ExecuteResponseInterceptors(ctx context.Context, req *Request, resp *Response) error {
	for _, interceptor := range c.responseInterceptors {
		err := interceptor(ctx, req, resp)
		if err != nil {
			return fmt.Errorf("response interceptor failed: %w", err)
		}
	}

	return nil
}

// ExecuteErrorInterceptors runs all error interceptors in order, threading
// the (possibly replaced) error through the chain.
func (c *InterceptorChain) ExecuteErrorInterceptors(ctx context.Context, req *Request, err error) error {
	for _, interceptor := range c.errorInterceptors {
		err = interceptor(ctx, req, err)
	}

	return err
}

// Common Interceptors

// LoggingInterceptor logs outgoing requests.
func LoggingInterceptor(logger Logger) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		logger.Debug("API Request", map[string]any{
			"method": req.Method,
			"path":   req.Path,
		})

		return nil
	}
}

// LoggingResponseInterceptor logs responses.
func LoggingResponseInterceptor(logger Logger) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		logger.Debug("API Response", map[string]any{
			"method":      req.Method,
			"path":        req.Path,
			"status_code": resp.StatusCode,
		})

		return nil
	}
}

// LoggingErrorInterceptor logs failed requests without altering the error.
func LoggingErrorInterceptor(logger Logger) ErrorInterceptor {
	return func(ctx context.Context, req *Request, err error) error {
		logger.Error("API Request Failed", map[string]any{
			"method": req.Method,
			"path":   req.Path,
			"error":  err.Error(),
		})

		return err
	}
}

// HeaderInterceptor adds custom headers to requests.
func HeaderInterceptor(headers map[string]string) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		for key, value := range headers {
			req.Headers.Set(key, value)
		}

		return nil
	}
}

// APIKeyInterceptor sets the X-API-KEY header on every request.
func APIKeyInterceptor(apiKey string) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		req.Headers.Set("X-API-KEY", apiKey)

		return nil
	}
}

// RateLimitInterceptor implements client-side rate limiting with a simple
// token bucket refilled on a ticker.
func RateLimitInterceptor(requestsPerSecond int) RequestInterceptor {
	bucket := make(chan struct{}, requestsPerSecond)

	for i := 0; i < requestsPerSecond; i++ {
		bucket <- struct{}{}
	}

	go func() {
		ticker := time.NewTicker(time.Second / time.Duration(requestsPerSecond))
		defer ticker.Stop()

		for range ticker.C {
			select {
			case bucket <- struct{}{}:
			default:
				// Bucket is full
			}
		}
	}()

	return func(ctx context.Context, req *Request) error {
		select {
		case <-bucket:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
