package creeble_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/creeblers/creeble-go/pkg/creeble"
)

func TestQueryParams_ToValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		params   *creeble.QueryParams
		expected url.Values
	}{
		{
			name:     "empty params",
			params:   creeble.NewQueryParams(),
			expected: url.Values{},
		},
		{
			name: "with pagination",
			params: &creeble.QueryParams{
				Page:  2,
				Limit: 50,
			},
			expected: url.Values{
				"page":  []string{"2"},
				"limit": []string{"50"},
			},
		},
		{
			name: "limit capped at server maximum",
			params: &creeble.QueryParams{
				Limit: 500,
			},
			expected: url.Values{
				"limit": []string{"100"},
			},
		},
		{
			name: "with search",
			params: &creeble.QueryParams{
				Search: "notion",
			},
			expected: url.Values{
				"search": []string{"notion"},
			},
		},
		{
			name: "fields flattened to repeated key[] pairs",
			params: &creeble.QueryParams{
				Fields: []string{"id", "name", "price"},
			},
			expected: url.Values{
				"fields[]": []string{"id", "name", "price"},
			},
		},
		{
			name: "filters flattened to repeated key[] pairs",
			params: &creeble.QueryParams{
				Filters: map[string][]string{
					"category": {"books", "games"},
					"status":   {"published"},
				},
			},
			expected: url.Values{
				"category[]": []string{"books", "games"},
				"status[]":   []string{"published"},
			},
		},
		{
			name: "with all options",
			params: &creeble.QueryParams{
				Page:   3,
				Limit:  25,
				Search: "widget",
				Fields: []string{"id", "name"},
				Filters: map[string][]string{
					"category": {"tools"},
				},
			},
			expected: url.Values{
				"page":       []string{"3"},
				"limit":      []string{"25"},
				"search":     []string{"widget"},
				"fields[]":   []string{"id", "name"},
				"category[]": []string{"tools"},
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := tt.params.ToValues()
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestQueryParams_Builder(t *testing.T) {
	t.Parallel()

	params := creeble.NewQueryParams().
		WithPage(2).
		WithLimit(10).
		WithSearch("term").
		WithFields("id", "name").
		WithFilter("category", "books")

	assert.Equal(t, 2, params.Page)
	assert.Equal(t, 10, params.Limit)
	assert.Equal(t, "term", params.Search)
	assert.Equal(t, []string{"id", "name"}, params.Fields)
	assert.Equal(t, []string{"books"}, params.Filters["category"])
}

func TestQueryParams_EffectiveLimit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 25, (*creeble.QueryParams)(nil).EffectiveLimit())
	assert.Equal(t, 25, creeble.NewQueryParams().EffectiveLimit())
	assert.Equal(t, 50, creeble.NewQueryParams().WithLimit(50).EffectiveLimit())
	assert.Equal(t, 100, creeble.NewQueryParams().WithLimit(9000).EffectiveLimit())
}

func TestQueryParams_Clone(t *testing.T) {
	t.Parallel()

	original := creeble.NewQueryParams().
		WithPage(1).
		WithFields("id").
		WithFilter("status", "published")

	clone := original.Clone()
	clone.Page = 9
	clone.Fields[0] = "changed"
	clone.Filters["status"][0] = "draft"

	assert.Equal(t, 1, original.Page)
	assert.Equal(t, "id", original.Fields[0])
	assert.Equal(t, "published", original.Filters["status"][0])
}

func TestQueryParams_CloneNil(t *testing.T) {
	t.Parallel()

	clone := (*creeble.QueryParams)(nil).Clone()
	assert.NotNil(t, clone)
	assert.NotNil(t, clone.Filters)
}
