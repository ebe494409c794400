package creeble

import (
	"net/url"
	"strconv"

	"github.com/creeblers/creeble-go/internal/constants"
)

// QueryParams represents query parameters for API requests.
type QueryParams struct {
	// Page is the 1-based page number.
	Page int
	// Limit is the requested page size; the server caps it at MaxPageSize.
	Limit int
	// Search is a free-text search term applied server-side.
	Search string
	// Fields is a projection allow-list; only these fields are returned.
	Fields []string
	// Filters maps a field name to accepted values (field=value matching).
	Filters map[string][]string
}

// NewQueryParams creates an empty QueryParams.
func NewQueryParams() *QueryParams {
	return &QueryParams{
		Filters: make(map[string][]string),
	}
}

// WithPage sets the page number.
func (q *QueryParams) WithPage(page int) *QueryParams {
	q.Page = page

	return q
}

// WithLimit sets the page size.
func (q *QueryParams) WithLimit(limit int) *QueryParams {
	q.Limit = limit

	return q
}

// WithSearch sets the search term.
func (q *QueryParams) WithSearch(term string) *QueryParams {
	q.Search = term

	return q
}

// WithFields sets the field projection.
func (q *QueryParams) WithFields(fields ...string) *QueryParams {
	q.Fields = fields

	return q
}

// WithFilter adds a filter value for a field.
func (q *QueryParams) WithFilter(field string, values ...string) *QueryParams {
	if q.Filters == nil {
		q.Filters = make(map[string][]string)
	}

	q.Filters[field] = append(q.Filters[field], values...)

	return q
}

// EffectiveLimit returns the limit that will actually be requested: the
// configured limit capped at the server maximum, or the default when unset.
func (q *QueryParams) EffectiveLimit() int {
	if q == nil || q.Limit <= 0 {
		return constants.DefaultPageSize
	}

	if q.Limit > constants.MaxPageSize {
		return constants.MaxPageSize
	}

	return q.Limit
}

// ToValues converts the params to url.Values. Multi-valued entries (fields,
// filters) are flattened to repeated "key[]" pairs, which is how the API
// expects arrays on GET requests.
func (q *QueryParams) ToValues() url.Values {
	values := url.Values{}

	if q == nil {
		return values
	}

	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}

	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.EffectiveLimit()))
	}

	if q.Search != "" {
		values.Set("search", q.Search)
	}

	for _, field := range q.Fields {
		values.Add("fields[]", field)
	}

	for field, filterValues := range q.Filters {
		for _, value := range filterValues {
			values.Add(field+"[]", value)
		}
	}

	return values
}

// Clone returns a deep copy so strategies can adjust page/limit without
// mutating the caller's params.
func (q *QueryParams) Clone() *QueryParams {
	if q == nil {
		return NewQueryParams()
	}

	clone := &QueryParams{
		Page:   q.Page,
		Limit:  q.Limit,
		Search: q.Search,
		Fields: append([]string(nil), q.Fields...),
	}

	if q.Filters != nil {
		clone.Filters = make(map[string][]string, len(q.Filters))
		for field, filterValues := range q.Filters {
			clone.Filters[field] = append([]string(nil), filterValues...)
		}
	}

	return clone
}
