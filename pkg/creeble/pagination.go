package creeble

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/creeblers/creeble-go/internal/constants"
)

// PageLister fetches one page of items from an endpoint. The concrete client
// implements it; tests can substitute a fake.
type PageLister interface {
	List(ctx context.Context, endpoint string, params *QueryParams) (*ListResponse, error)
}

// PaginationOptions controls full-dataset fetches.
type PaginationOptions struct {
	// PageSize overrides the page size from the query params (capped at the
	// server maximum).
	PageSize int
	// MaxPages limits how many pages are fetched; 0 means no limit.
	MaxPages int
}

// OptimizedOptions controls the strategy-selecting fetch.
type OptimizedOptions struct {
	// MaxItems is the dataset ceiling; a probed total above it aborts the
	// fetch with a DatasetTooLargeError. 0 uses the default of 1000.
	MaxItems int
	// DisableConcurrency forces the sequential strategy.
	DisableConcurrency bool
	// BatchWidth is the concurrent batch width; 0 uses the default of 3.
	BatchWidth int
}

func effectiveParams(params *QueryParams, opts *PaginationOptions) (*QueryParams, int) {
	cloned := params.Clone()

	if opts != nil && opts.PageSize > 0 {
		cloned.Limit = opts.PageSize
	}

	if cloned.Limit <= 0 {
		cloned.Limit = constants.DefaultPageSize
	}

	limit := cloned.EffectiveLimit()
	cloned.Limit = limit

	return cloned, limit
}

// FetchAllPages fetches every page sequentially, starting at page 1,
// concatenating items in server order. Fetching stops when the server
// reports no further pages or, for responses without a pagination envelope,
// when a page comes back shorter than the requested limit.
func FetchAllPages(ctx context.Context, lister PageLister, endpoint string, params *QueryParams, opts *PaginationOptions) ([]Item, error) {
	pageParams, limit := effectiveParams(params, opts)

	var items []Item

	for page := 1; ; page++ {
		if opts != nil && opts.MaxPages > 0 && page > opts.MaxPages {
			break
		}

		pageParams.Page = page

		resp, err := lister.List(ctx, endpoint, pageParams)
		if err != nil {
			return nil, fmt.Errorf("fetching page %d: %w", page, err)
		}

		items = append(items, resp.Data...)

		if len(resp.Data) == 0 || !resp.HasMorePages(limit) {
			break
		}

		if resp.Pagination != nil && resp.Pagination.LastPage > 0 && page >= resp.Pagination.LastPage {
			break
		}
	}

	return items, nil
}

// FetchAllPagesConcurrent fetches page 1 to learn the page count, then
// fetches the remaining pages in fixed-width batches, waiting for each batch
// to complete before starting the next. Items are concatenated in page
// order. Any failure inside a batch abandons the concurrent run and the
// whole fetch restarts sequentially from page 1.
func FetchAllPagesConcurrent(ctx context.Context, lister PageLister, endpoint string, params *QueryParams, batchWidth int) ([]Item, error) {
	if batchWidth <= 0 {
		batchWidth = constants.DefaultBatchWidth
	}

	pageParams, _ := effectiveParams(params, nil)
	pageParams.Page = 1

	first, err := lister.List(ctx, endpoint, pageParams)
	if err != nil {
		return nil, fmt.Errorf("fetching page 1: %w", err)
	}

	// Without a pagination envelope the page count is unknowable up front;
	// only the sequential strategy can walk such a dataset.
	if first.Pagination == nil {
		return FetchAllPages(ctx, lister, endpoint, params, nil)
	}

	lastPage := first.Pagination.LastPage
	if lastPage <= 1 {
		return first.Data, nil
	}

	pages := make([][]Item, lastPage+1)
	pages[1] = first.Data

	var mu sync.Mutex

	for batchStart := 2; batchStart <= lastPage; batchStart += batchWidth {
		batchEnd := batchStart + batchWidth - 1
		if batchEnd > lastPage {
			batchEnd = lastPage
		}

		group, groupCtx := errgroup.WithContext(ctx)

		for page := batchStart; page <= batchEnd; page++ {
			page := page
			group.Go(func() error {
				batchParams := pageParams.Clone()
				batchParams.Page = page

				resp, listErr := lister.List(groupCtx, endpoint, batchParams)
				if listErr != nil {
					return fmt.Errorf("fetching page %d: %w", page, listErr)
				}

				mu.Lock()
				pages[page] = resp.Data
				mu.Unlock()

				return nil
			})
		}

		err = group.Wait()
		if err != nil {
			return restartSequential(ctx, lister, endpoint, params, err)
		}
	}

	var items []Item
	for page := 1; page <= lastPage; page++ {
		items = append(items, pages[page]...)
	}

	return items, nil
}

// restartSequential reruns the entire fetch with the sequential strategy
// after a concurrent batch failed. The original failure is kept in the error
// chain if the sequential pass also fails, so partial-failure causes are not
// hidden from the caller.
func restartSequential(ctx context.Context, lister PageLister, endpoint string, params *QueryParams, concurrentErr error) ([]Item, error) {
	items, err := FetchAllPages(ctx, lister, endpoint, params, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: sequential fallback failed: %w (concurrent fetch failed: %w)", ErrConcurrentAbandoned, err, concurrentErr)
	}

	return items, nil
}

// FetchAllPagesOptimized probes the dataset size with a minimal-payload
// request (identifier field only), fails fast when the total exceeds the
// ceiling, and picks the sequential strategy for small datasets (at most 3
// pages) or the concurrent strategy otherwise.
func FetchAllPagesOptimized(ctx context.Context, lister PageLister, endpoint string, params *QueryParams, opts *OptimizedOptions) ([]Item, error) {
	if opts == nil {
		opts = &OptimizedOptions{}
	}

	maxItems := opts.MaxItems
	if maxItems <= 0 {
		maxItems = constants.DefaultMaxItems
	}

	probe, err := ProbeEndpoint(ctx, lister, endpoint, params)
	if err != nil {
		return nil, err
	}

	// Older deployments answer without an envelope; nothing to select on.
	if probe == nil {
		return FetchAllPages(ctx, lister, endpoint, params, nil)
	}

	if probe.Total > maxItems {
		return nil, &DatasetTooLargeError{Total: probe.Total, MaxItems: maxItems}
	}

	if opts.DisableConcurrency || probe.LastPage <= constants.SequentialPageThreshold {
		return FetchAllPages(ctx, lister, endpoint, params, nil)
	}

	return FetchAllPagesConcurrent(ctx, lister, endpoint, params, opts.BatchWidth)
}

// ProbeEndpoint issues the minimal-payload count probe: the caller's filters
// and page size, projected down to the identifier field so the response
// carries pagination metadata without item payloads. Returns nil when the
// server did not include a pagination envelope.
func ProbeEndpoint(ctx context.Context, lister PageLister, endpoint string, params *QueryParams) (*Pagination, error) {
	probeParams, _ := effectiveParams(params, nil)
	probeParams.Page = 1
	probeParams.Fields = []string{"id"}

	resp, err := lister.List(ctx, endpoint, probeParams)
	if err != nil {
		return nil, fmt.Errorf("probing endpoint %q: %w", endpoint, err)
	}

	return resp.Pagination, nil
}

// PageResult is one page delivered by StreamPages.
type PageResult struct {
	Page  int
	Items []Item
	Err   error
}

// StreamPages fetches pages sequentially and delivers each one on a channel
// as it arrives. The channel closes after the last page or the first error.
func StreamPages(ctx context.Context, lister PageLister, endpoint string, params *QueryParams, opts *PaginationOptions) <-chan PageResult {
	results := make(chan PageResult)

	go func() {
		defer close(results)

		pageParams, limit := effectiveParams(params, opts)

		for page := 1; ; page++ {
			if opts != nil && opts.MaxPages > 0 && page > opts.MaxPages {
				return
			}

			pageParams.Page = page

			resp, err := lister.List(ctx, endpoint, pageParams)
			if err != nil {
				select {
				case results <- PageResult{Page: page, Err: err}:
				case <-ctx.Done():
				}

				return
			}

			select {
			case results <- PageResult{Page: page, Items: resp.Data}:
			case <-ctx.Done():
				return
			}

			if len(resp.Data) == 0 || !resp.HasMorePages(limit) {
				return
			}

			if resp.Pagination != nil && resp.Pagination.LastPage > 0 && page >= resp.Pagination.LastPage {
				return
			}
		}
	}()

	return results
}

// PaginationIterator walks a paginated endpoint item by item, fetching pages
// lazily.
type PaginationIterator struct {
	ctx      context.Context
	lister   PageLister
	endpoint string
	params   *QueryParams
	limit    int

	current  []Item
	index    int
	page     int
	done     bool
	fetched  bool
	lastPage int
	err      error
}

// NewPaginationIterator creates an iterator over an endpoint.
func NewPaginationIterator(ctx context.Context, lister PageLister, endpoint string, params *QueryParams) *PaginationIterator {
	pageParams, limit := effectiveParams(params, nil)

	return &PaginationIterator{
		ctx:      ctx,
		lister:   lister,
		endpoint: endpoint,
		params:   pageParams,
		limit:    limit,
	}
}

func (it *PaginationIterator) fetchNextPage() error {
	it.page++
	it.params.Page = it.page

	resp, err := it.lister.List(it.ctx, it.endpoint, it.params)
	if err != nil {
		it.err = fmt.Errorf("fetching page %d: %w", it.page, err)
		it.done = true
		it.fetched = true

		return it.err
	}

	it.current = resp.Data
	it.index = 0
	it.fetched = true

	if resp.Pagination != nil {
		it.lastPage = resp.Pagination.LastPage
	}

	if len(resp.Data) == 0 || !resp.HasMorePages(it.limit) {
		it.done = true
	}

	if it.lastPage > 0 && it.page >= it.lastPage {
		it.done = true
	}

	return nil
}

// HasNext reports whether another item is available. The first call fetches
// page 1. After a fetch failure HasNext returns false; callers looping on it
// must check Err to distinguish exhaustion from failure.
func (it *PaginationIterator) HasNext() bool {
	if it.err != nil {
		return false
	}

	if !it.fetched {
		if err := it.fetchNextPage(); err != nil {
			return false
		}
	}

	if it.index < len(it.current) {
		return true
	}

	if it.done {
		return false
	}

	if err := it.fetchNextPage(); err != nil {
		return false
	}

	return it.index < len(it.current)
}

// Err returns the fetch error that stopped iteration, or nil.
func (it *PaginationIterator) Err() error {
	return it.err
}

// Next returns the next item, fetching the next page when the current one is
// exhausted. Returns ErrNoMoreItems past the end.
func (it *PaginationIterator) Next() (Item, error) {
	if it.err != nil {
		return nil, it.err
	}

	if !it.fetched {
		if err := it.fetchNextPage(); err != nil {
			return nil, err
		}
	}

	if it.index >= len(it.current) {
		if it.done {
			return nil, ErrNoMoreItems
		}

		if err := it.fetchNextPage(); err != nil {
			return nil, err
		}

		if it.index >= len(it.current) {
			return nil, ErrNoMoreItems
		}
	}

	item := it.current[it.index]
	it.index++

	return item, nil
}

// All drains the iterator into a slice. A page-fetch failure anywhere in the
// walk returns the error and no items; partial results are never handed back
// as a complete set.
func (it *PaginationIterator) All() ([]Item, error) {
	var items []Item

	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	if it.err != nil {
		return nil, it.err
	}

	return items, nil
}

// ForEach applies fn to every remaining item, stopping at the first error.
func (it *PaginationIterator) ForEach(fn func(Item) error) error {
	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			return err
		}

		err = fn(item)
		if err != nil {
			return err
		}
	}

	return it.err
}
