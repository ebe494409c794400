package creeble_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creeblers/creeble-go/pkg/creeble"
)

// fakeLister serves a fixed dataset page by page, recording every request.
type fakeLister struct {
	mu        sync.Mutex
	items     []creeble.Item
	legacy    bool // respond without a pagination envelope
	requests  []requestRecord
	failPages map[int]int // page number -> remaining failures
}

type requestRecord struct {
	Page   int
	Limit  int
	Fields []string
}

func newFakeLister(total int) *fakeLister {
	items := make([]creeble.Item, total)
	for i := 0; i < total; i++ {
		items[i] = creeble.Item{"id": fmt.Sprintf("%d", i+1), "name": fmt.Sprintf("item %d", i+1)}
	}

	return &fakeLister{items: items, failPages: make(map[int]int)}
}

func (f *fakeLister) List(ctx context.Context, endpoint string, params *creeble.QueryParams) (*creeble.ListResponse, error) {
	limit := params.EffectiveLimit()

	page := 1
	if params != nil && params.Page > 0 {
		page = params.Page
	}

	f.mu.Lock()

	var fields []string
	if params != nil {
		fields = append([]string(nil), params.Fields...)
	}

	f.requests = append(f.requests, requestRecord{Page: page, Limit: limit, Fields: fields})

	if remaining, ok := f.failPages[page]; ok && remaining > 0 {
		f.failPages[page]--
		f.mu.Unlock()

		return nil, &creeble.APIError{StatusCode: 500, Message: "server blew up"}
	}
	f.mu.Unlock()

	start := (page - 1) * limit
	end := start + limit

	if start > len(f.items) {
		start = len(f.items)
	}

	if end > len(f.items) {
		end = len(f.items)
	}

	resp := &creeble.ListResponse{Data: f.items[start:end]}

	if !f.legacy {
		lastPage := (len(f.items) + limit - 1) / limit
		if lastPage < 1 {
			lastPage = 1
		}

		resp.Pagination = &creeble.Pagination{
			CurrentPage: page,
			PerPage:     limit,
			Total:       len(f.items),
			LastPage:    lastPage,
			HasMore:     page < lastPage,
		}
	}

	return resp, nil
}

func (f *fakeLister) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.requests)
}

func itemIDs(items []creeble.Item) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID()
	}

	return ids
}

func TestFetchAllPages_TwoPages(t *testing.T) {
	t.Parallel()

	lister := newFakeLister(47)
	ctx := context.Background()

	items, err := creeble.FetchAllPages(ctx, lister, "products", creeble.NewQueryParams().WithLimit(25), nil)
	require.NoError(t, err)
	assert.Len(t, items, 47)
	assert.Equal(t, 2, lister.requestCount())

	// Server order preserved across page boundaries.
	assert.Equal(t, "1", items[0].ID())
	assert.Equal(t, "25", items[24].ID())
	assert.Equal(t, "26", items[25].ID())
	assert.Equal(t, "47", items[46].ID())
}

func TestFetchAllPages_LegacyCompletionInference(t *testing.T) {
	t.Parallel()

	lister := newFakeLister(47)
	lister.legacy = true
	ctx := context.Background()

	items, err := creeble.FetchAllPages(ctx, lister, "products", creeble.NewQueryParams().WithLimit(25), nil)
	require.NoError(t, err)
	assert.Len(t, items, 47)
	// Page 2 comes back with 22 items, fewer than the requested 25, which
	// signals completion without an envelope.
	assert.Equal(t, 2, lister.requestCount())
}

func TestFetchAllPages_EmptyEndpoint(t *testing.T) {
	t.Parallel()

	lister := newFakeLister(0)
	ctx := context.Background()

	items, err := creeble.FetchAllPages(ctx, lister, "products", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 1, lister.requestCount())
}

func TestFetchAllPages_MaxPages(t *testing.T) {
	t.Parallel()

	lister := newFakeLister(100)
	ctx := context.Background()

	opts := &creeble.PaginationOptions{PageSize: 10, MaxPages: 3}

	items, err := creeble.FetchAllPages(ctx, lister, "products", nil, opts)
	require.NoError(t, err)
	assert.Len(t, items, 30)
	assert.Equal(t, 3, lister.requestCount())
}

func TestFetchAllPages_LimitCappedAtServerMax(t *testing.T) {
	t.Parallel()

	lister := newFakeLister(150)
	ctx := context.Background()

	_, err := creeble.FetchAllPages(ctx, lister, "products", creeble.NewQueryParams().WithLimit(500), nil)
	require.NoError(t, err)

	lister.mu.Lock()
	defer lister.mu.Unlock()

	for _, record := range lister.requests {
		assert.Equal(t, 100, record.Limit)
	}
}

func TestFetchAllPagesConcurrent_SinglePage(t *testing.T) {
	t.Parallel()

	lister := newFakeLister(10)
	ctx := context.Background()

	items, err := creeble.FetchAllPagesConcurrent(ctx, lister, "products", creeble.NewQueryParams().WithLimit(25), 3)
	require.NoError(t, err)
	assert.Len(t, items, 10)
	assert.Equal(t, 1, lister.requestCount())
}

func TestFetchAllPagesConcurrent_TwoPages(t *testing.T) {
	t.Parallel()

	lister := newFakeLister(47)
	ctx := context.Background()

	items, err := creeble.FetchAllPagesConcurrent(ctx, lister, "products", creeble.NewQueryParams().WithLimit(25), 3)
	require.NoError(t, err)
	assert.Len(t, items, 47)
	// Page 1 to learn the count, then the single remaining page in one batch.
	assert.Equal(t, 2, lister.requestCount())
	assert.Equal(t, itemIDs(items)[0], "1")
	assert.Equal(t, itemIDs(items)[46], "47")
}

func TestFetchAllPagesConcurrent_MatchesSequential(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	params := creeble.NewQueryParams().WithLimit(10)

	sequentialLister := newFakeLister(95)

	sequential, err := creeble.FetchAllPages(ctx, sequentialLister, "products", params, nil)
	require.NoError(t, err)

	concurrentLister := newFakeLister(95)

	concurrent, err := creeble.FetchAllPagesConcurrent(ctx, concurrentLister, "products", params, 3)
	require.NoError(t, err)

	assert.Equal(t, itemIDs(sequential), itemIDs(concurrent))
	assert.Equal(t, 10, concurrentLister.requestCount())
}

func TestFetchAllPagesConcurrent_LegacyFallsBackToSequential(t *testing.T) {
	t.Parallel()

	lister := newFakeLister(47)
	lister.legacy = true
	ctx := context.Background()

	items, err := creeble.FetchAllPagesConcurrent(ctx, lister, "products", creeble.NewQueryParams().WithLimit(25), 3)
	require.NoError(t, err)
	assert.Len(t, items, 47)
}

func TestFetchAllPagesConcurrent_RestartsSequentiallyOnFailure(t *testing.T) {
	t.Parallel()

	lister := newFakeLister(95)
	lister.failPages[4] = 1 // fail once inside the second batch
	ctx := context.Background()

	items, err := creeble.FetchAllPagesConcurrent(ctx, lister, "products", creeble.NewQueryParams().WithLimit(10), 3)
	require.NoError(t, err)
	assert.Len(t, items, 95)

	// The sequential restart begins again at page 1.
	lister.mu.Lock()
	lastRequests := lister.requests[len(lister.requests)-10:]
	lister.mu.Unlock()

	for i, record := range lastRequests {
		assert.Equal(t, i+1, record.Page)
	}
}

func TestFetchAllPagesConcurrent_FallbackFailureKeepsBothCauses(t *testing.T) {
	t.Parallel()

	lister := newFakeLister(95)
	lister.failPages[4] = 10 // fail in the batch and again during the fallback
	ctx := context.Background()

	_, err := creeble.FetchAllPagesConcurrent(ctx, lister, "products", creeble.NewQueryParams().WithLimit(10), 3)
	require.Error(t, err)
	require.ErrorIs(t, err, creeble.ErrConcurrentAbandoned)
	assert.Contains(t, err.Error(), "concurrent fetch failed")
	assert.Contains(t, err.Error(), "sequential fallback failed")
}

func TestFetchAllPagesOptimized_SmallDatasetUsesSequential(t *testing.T) {
	t.Parallel()

	lister := newFakeLister(47)
	ctx := context.Background()

	items, err := creeble.FetchAllPagesOptimized(ctx, lister, "products", creeble.NewQueryParams().WithLimit(25), nil)
	require.NoError(t, err)
	assert.Len(t, items, 47)

	// Probe + the two sequential pages, nothing more.
	require.Equal(t, 3, lister.requestCount())

	lister.mu.Lock()
	defer lister.mu.Unlock()

	assert.Equal(t, []string{"id"}, lister.requests[0].Fields)
	assert.Equal(t, 1, lister.requests[1].Page)
	assert.Empty(t, lister.requests[1].Fields)
	assert.Equal(t, 2, lister.requests[2].Page)
}

func TestFetchAllPagesOptimized_CeilingExceeded(t *testing.T) {
	t.Parallel()

	lister := newFakeLister(1500)
	ctx := context.Background()

	_, err := creeble.FetchAllPagesOptimized(ctx, lister, "products", creeble.NewQueryParams().WithLimit(100), nil)
	require.Error(t, err)
	assert.True(t, creeble.IsDatasetTooLarge(err))

	// Only the probe went out.
	assert.Equal(t, 1, lister.requestCount())

	tooLarge := &creeble.DatasetTooLargeError{}
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, 1500, tooLarge.Total)
	assert.Equal(t, 1000, tooLarge.MaxItems)
}

func TestFetchAllPagesOptimized_CustomCeiling(t *testing.T) {
	t.Parallel()

	lister := newFakeLister(500)
	ctx := context.Background()

	opts := &creeble.OptimizedOptions{MaxItems: 100}

	_, err := creeble.FetchAllPagesOptimized(ctx, lister, "products", creeble.NewQueryParams().WithLimit(50), opts)
	require.Error(t, err)
	assert.True(t, creeble.IsDatasetTooLarge(err))
}

func TestFetchAllPagesOptimized_LargeDatasetUsesConcurrent(t *testing.T) {
	t.Parallel()

	lister := newFakeLister(500)
	ctx := context.Background()

	items, err := creeble.FetchAllPagesOptimized(ctx, lister, "products", creeble.NewQueryParams().WithLimit(50), nil)
	require.NoError(t, err)
	assert.Len(t, items, 500)

	// Probe + page 1 + nine remaining pages.
	assert.Equal(t, 11, lister.requestCount())
}

func TestFetchAllPagesOptimized_DisableConcurrency(t *testing.T) {
	t.Parallel()

	lister := newFakeLister(500)
	ctx := context.Background()

	opts := &creeble.OptimizedOptions{DisableConcurrency: true}

	items, err := creeble.FetchAllPagesOptimized(ctx, lister, "products", creeble.NewQueryParams().WithLimit(50), opts)
	require.NoError(t, err)
	assert.Len(t, items, 500)

	lister.mu.Lock()
	defer lister.mu.Unlock()

	// Sequential pages after the probe, in order.
	for i, record := range lister.requests[1:] {
		assert.Equal(t, i+1, record.Page)
	}
}

func TestFetchAllPagesOptimized_LegacyServerFallsBack(t *testing.T) {
	t.Parallel()

	lister := newFakeLister(47)
	lister.legacy = true
	ctx := context.Background()

	items, err := creeble.FetchAllPagesOptimized(ctx, lister, "products", creeble.NewQueryParams().WithLimit(25), nil)
	require.NoError(t, err)
	assert.Len(t, items, 47)
}

func TestProbeEndpoint(t *testing.T) {
	t.Parallel()

	lister := newFakeLister(47)
	ctx := context.Background()

	probe, err := creeble.ProbeEndpoint(ctx, lister, "products", creeble.NewQueryParams().WithLimit(25))
	require.NoError(t, err)
	require.NotNil(t, probe)
	assert.Equal(t, 47, probe.Total)
	assert.Equal(t, 2, probe.LastPage)

	lister.mu.Lock()
	defer lister.mu.Unlock()

	assert.Equal(t, []string{"id"}, lister.requests[0].Fields)
}

func TestStreamPages(t *testing.T) {
	t.Parallel()

	lister := newFakeLister(47)
	ctx := context.Background()

	results := creeble.StreamPages(ctx, lister, "products", creeble.NewQueryParams().WithLimit(25), nil)

	var (
		all       []creeble.Item
		pageCount int
	)

	for result := range results {
		require.NoError(t, result.Err)

		all = append(all, result.Items...)
		pageCount++
	}

	assert.Equal(t, 2, pageCount)
	assert.Len(t, all, 47)
}

func TestStreamPages_DeliversError(t *testing.T) {
	t.Parallel()

	lister := newFakeLister(47)
	lister.failPages[2] = 1
	ctx := context.Background()

	results := creeble.StreamPages(ctx, lister, "products", creeble.NewQueryParams().WithLimit(25), nil)

	var sawErr bool

	for result := range results {
		if result.Err != nil {
			sawErr = true

			assert.Equal(t, 2, result.Page)
		}
	}

	assert.True(t, sawErr)
}

func TestPaginationIterator_Walk(t *testing.T) {
	t.Parallel()

	lister := newFakeLister(5)
	ctx := context.Background()

	it := creeble.NewPaginationIterator(ctx, lister, "products", creeble.NewQueryParams().WithLimit(2))

	var ids []string

	for it.HasNext() {
		item, err := it.Next()
		require.NoError(t, err)

		ids = append(ids, item.ID())
	}

	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids)

	_, err := it.Next()
	require.ErrorIs(t, err, creeble.ErrNoMoreItems)
}

func TestPaginationIterator_SurfacesFetchError(t *testing.T) {
	t.Parallel()

	lister := newFakeLister(6)
	lister.failPages[2] = 1
	ctx := context.Background()

	it := creeble.NewPaginationIterator(ctx, lister, "products", creeble.NewQueryParams().WithLimit(2))

	items, err := it.All()
	require.Error(t, err)
	assert.Nil(t, items)

	// The failure is sticky: iteration does not resume, HasNext loops can
	// detect it via Err, and Next keeps returning the same error.
	assert.False(t, it.HasNext())
	require.Error(t, it.Err())

	_, err = it.Next()
	require.ErrorIs(t, err, it.Err())
}

func TestPaginationIterator_ForEachSurfacesFetchError(t *testing.T) {
	t.Parallel()

	lister := newFakeLister(6)
	lister.failPages[2] = 1
	ctx := context.Background()

	it := creeble.NewPaginationIterator(ctx, lister, "products", creeble.NewQueryParams().WithLimit(2))

	var seen int

	err := it.ForEach(func(item creeble.Item) error {
		seen++

		return nil
	})
	require.Error(t, err)
	assert.Equal(t, 2, seen)
}

func TestPaginationIterator_All(t *testing.T) {
	t.Parallel()

	lister := newFakeLister(7)
	ctx := context.Background()

	it := creeble.NewPaginationIterator(ctx, lister, "products", creeble.NewQueryParams().WithLimit(3))

	items, err := it.All()
	require.NoError(t, err)
	assert.Len(t, items, 7)
}

func TestPaginationIterator_ForEach(t *testing.T) {
	t.Parallel()

	lister := newFakeLister(4)
	ctx := context.Background()

	it := creeble.NewPaginationIterator(ctx, lister, "products", creeble.NewQueryParams().WithLimit(2))

	var collected []string

	err := it.ForEach(func(item creeble.Item) error {
		collected = append(collected, item.ID())

		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4"}, collected)
}
