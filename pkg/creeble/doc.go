// Package creeble provides types, interfaces, and helpers for working with
// the Creeble content API, a Notion-backed headless CMS.
//
// # Overview
//
// The creeble package defines the domain types (Item, ListResponse,
// Pagination), the error taxonomy, the query parameter builder, the cache
// abstraction, and the pagination strategies. A concrete client
// implementation is provided by the creebleclient package, which wires
// configuration, transport, caching, and interceptors. Most consumers should
// import creebleclient to construct a client and then interact with the
// Client interface exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/creeblers/creeble-go/pkg/creeble"
//	  "github.com/creeblers/creeble-go/pkg/creebleclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := creebleclient.New(&creeble.Config{APIKey: "your-api-key"})
//	  if err != nil { log.Fatal(err) }
//
//	  // List the first page of an endpoint
//	  page, err := cli.Data().List(ctx, "products", creeble.NewQueryParams().WithLimit(50))
//	  if err != nil { log.Fatal(err) }
//	  _ = page
//	}
//
// # Queries and pagination
//
// Use QueryParams to express list options (page, limit, search, field
// projection, filters). Multi-valued parameters are flattened to repeated
// "key[]" pairs on the wire. Full datasets can be fetched three ways:
// FetchAllPages walks pages one at a time; FetchAllPagesConcurrent fetches
// remaining pages in fixed-width batches after learning the page count from
// page 1, restarting sequentially if any batch request fails; and
// FetchAllPagesOptimized probes the dataset size with an identifier-only
// request and picks whichever strategy fits, refusing datasets above a
// configurable ceiling. PaginationIterator and StreamPages cover item-wise
// and page-wise consumption.
//
// # Errors
//
// Failed requests map to typed errors by HTTP status: AuthenticationError
// (401), ValidationError (422, with field-level detail), RateLimitError
// (429, with Retry-After seconds), and APIError for everything else.
// Helpers such as IsAuthentication, IsValidation, IsRateLimit, and
// IsNotFound make branching straightforward.
//
// # Interceptors and caching
//
// The package includes request/response/error interceptor chains (logging,
// custom headers, client-side rate limiting) and a pluggable Cache
// abstraction with in-memory and NATS KV backends. GET responses are cached
// with a fixed TTL when enabled; expired entries are evicted lazily and
// mutating requests are never cached.
package creeble
