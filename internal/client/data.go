package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/creeblers/creeble-go/internal/http"
	"github.com/creeblers/creeble-go/pkg/creeble"
)

// DataClient implements creeble.DataClient.
type DataClient struct {
	httpClient *http.Client
}

// NewDataClient creates a new data client.
func NewDataClient(httpClient *http.Client) *DataClient {
	return &DataClient{httpClient: httpClient}
}

func endpointPath(endpoint string) string {
	return "/api/v1/" + url.PathEscape(endpoint)
}

// List implements creeble.DataClient.List.
func (c *DataClient) List(ctx context.Context, endpoint string, params *creeble.QueryParams) (*creeble.ListResponse, error) {
	if endpoint == "" {
		return nil, creeble.ErrEndpointRequired
	}

	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, endpointPath(endpoint), query)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", endpoint, err)
	}

	var list creeble.ListResponse

	err = json.Unmarshal(resp.Body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing %s list: %w", endpoint, err)
	}

	return &list, nil
}

// Get implements creeble.DataClient.Get.
func (c *DataClient) Get(ctx context.Context, endpoint, itemID string, params *creeble.QueryParams) (creeble.Item, error) {
	if endpoint == "" {
		return nil, creeble.ErrEndpointRequired
	}

	if itemID == "" {
		return nil, creeble.ErrItemIDRequired
	}

	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, endpointPath(endpoint)+"/"+url.PathEscape(itemID), query)
	if err != nil {
		return nil, fmt.Errorf("getting %s/%s: %w", endpoint, itemID, err)
	}

	// Single-item responses use the same data envelope as lists.
	var envelope struct {
		Data creeble.Item `json:"data"`
	}

	err = json.Unmarshal(resp.Body, &envelope)
	if err != nil {
		return nil, fmt.Errorf("parsing %s item: %w", endpoint, err)
	}

	if envelope.Data != nil {
		return envelope.Data, nil
	}

	var item creeble.Item

	err = json.Unmarshal(resp.Body, &item)
	if err != nil {
		return nil, fmt.Errorf("parsing %s item: %w", endpoint, err)
	}

	return item, nil
}

// All implements creeble.DataClient.All using the sequential strategy.
func (c *DataClient) All(ctx context.Context, endpoint string, params *creeble.QueryParams) ([]creeble.Item, error) {
	return creeble.FetchAllPages(ctx, c, endpoint, params, nil)
}

// AllConcurrent implements creeble.DataClient.AllConcurrent using batched
// concurrent page fetches.
func (c *DataClient) AllConcurrent(ctx context.Context, endpoint string, params *creeble.QueryParams, batchWidth int) ([]creeble.Item, error) {
	return creeble.FetchAllPagesConcurrent(ctx, c, endpoint, params, batchWidth)
}

// AllOptimized implements creeble.DataClient.AllOptimized using the
// probe-and-select strategy.
func (c *DataClient) AllOptimized(ctx context.Context, endpoint string, params *creeble.QueryParams, opts *creeble.OptimizedOptions) ([]creeble.Item, error) {
	return creeble.FetchAllPagesOptimized(ctx, c, endpoint, params, opts)
}

// Search implements creeble.DataClient.Search.
func (c *DataClient) Search(ctx context.Context, endpoint, term string, params *creeble.QueryParams) (*creeble.ListResponse, error) {
	searchParams := params.Clone()
	searchParams.Search = term

	return c.List(ctx, endpoint, searchParams)
}

// Filter implements creeble.DataClient.Filter.
func (c *DataClient) Filter(ctx context.Context, endpoint, field, value string) (*creeble.ListResponse, error) {
	return c.List(ctx, endpoint, creeble.NewQueryParams().WithFilter(field, value))
}

// First implements creeble.DataClient.First.
func (c *DataClient) First(ctx context.Context, endpoint string, params *creeble.QueryParams) (creeble.Item, error) {
	firstParams := params.Clone()
	firstParams.Page = 1
	firstParams.Limit = 1

	list, err := c.List(ctx, endpoint, firstParams)
	if err != nil {
		return nil, err
	}

	if len(list.Data) == 0 {
		return nil, fmt.Errorf("%w in %s", creeble.ErrNoItemsFound, endpoint)
	}

	return list.Data[0], nil
}

// Exists implements creeble.DataClient.Exists. Any error is treated as "not
// found", including network failures; callers who need to distinguish the
// two should use Get directly.
func (c *DataClient) Exists(ctx context.Context, endpoint, itemID string) bool {
	_, err := c.Get(ctx, endpoint, itemID, nil)

	return err == nil
}

// Count implements creeble.DataClient.Count via the minimal-payload probe.
func (c *DataClient) Count(ctx context.Context, endpoint string, params *creeble.QueryParams) (int, error) {
	probe, err := creeble.ProbeEndpoint(ctx, c, endpoint, params)
	if err != nil {
		return 0, err
	}

	if probe == nil {
		return 0, fmt.Errorf("counting %s: %w", endpoint, creeble.ErrMissingPagination)
	}

	return probe.Total, nil
}

// Info implements creeble.DataClient.Info.
func (c *DataClient) Info(ctx context.Context, endpoint string) (*creeble.EndpointInfo, error) {
	total, err := c.Count(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}

	return &creeble.EndpointInfo{
		Name:  endpoint,
		Total: total,
	}, nil
}
