// Package client implements the creeble.Client interface over the internal
// HTTP transport.
package client

import (
	"context"
	"fmt"

	"github.com/creeblers/creeble-go/internal/constants"
	"github.com/creeblers/creeble-go/internal/http"
	"github.com/creeblers/creeble-go/pkg/creeble"
)

// Client implements the creeble.Client interface.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     creeble.Logger

	data  *DataClient
	forms *FormsClient
}

// createHTTPClientOptions builds transport options from config.
func createHTTPClientOptions(config *creeble.Config) ([]http.Option, error) {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax != 0 {
		retryMax := config.RetryMax
		if retryMax < 0 {
			retryMax = 0
		}

		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(retryMax, retryWaitMin, retryWaitMax))
	}

	if config.CacheEnabled {
		cache, err := creeble.NewCacheFromConfig(config.CacheBackend)
		if err != nil {
			return nil, fmt.Errorf("building cache backend: %w", err)
		}

		ttl := config.CacheTTL
		if ttl <= 0 {
			ttl = constants.DefaultCacheTTL
		}

		httpOpts = append(httpOpts, http.WithCache(cache, ttl))
	}

	return httpOpts, nil
}

// New creates a new Creeble API client.
func New(config *creeble.Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, creeble.ErrAPIKeyRequired
	}

	httpOpts, err := createHTTPClientOptions(config)
	if err != nil {
		return nil, err
	}

	httpClient := http.NewClient(config.BaseURL, config.APIKey, httpOpts...)

	client := &Client{
		httpClient: httpClient,
		baseURL:    config.BaseURL,
		logger:     config.Logger,
	}

	client.data = NewDataClient(httpClient)
	client.forms = NewFormsClient(httpClient)

	return client, nil
}

// Data implements creeble.Client.Data.
func (c *Client) Data() creeble.DataClient {
	return c.data
}

// Forms implements creeble.Client.Forms.
func (c *Client) Forms() creeble.FormsClient {
	return c.forms
}

// ClearCache implements creeble.Client.ClearCache.
func (c *Client) ClearCache(ctx context.Context) error {
	return c.httpClient.ClearCache(ctx)
}

// CacheStats implements creeble.Client.CacheStats.
func (c *Client) CacheStats() creeble.CacheStats {
	return c.httpClient.CacheStats()
}
