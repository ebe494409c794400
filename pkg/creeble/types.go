package creeble

// Item is a single content record returned by the API. Records are schemaless
// Notion rows, so the library does not impose field types beyond the mapping.
type Item map[string]any

// ID returns the item's identifier field, or the empty string when absent.
func (i Item) ID() string {
	if v, ok := i["id"].(string); ok {
		return v
	}

	return ""
}

// Field returns the named field and whether it is present.
func (i Item) Field(name string) (any, bool) {
	v, ok := i[name]

	return v, ok
}

// StringField returns the named field as a string, or "" when absent or not
// a string.
func (i Item) StringField(name string) string {
	if v, ok := i[name].(string); ok {
		return v
	}

	return ""
}

// Pagination is the pagination envelope attached to list responses.
type Pagination struct {
	CurrentPage int  `json:"current_page" yaml:"current_page"`
	PerPage     int  `json:"per_page"     yaml:"per_page"`
	Total       int  `json:"total"        yaml:"total"`
	LastPage    int  `json:"last_page"    yaml:"last_page"`
	HasMore     bool `json:"has_more"     yaml:"has_more"`
}

// ListResponse is a single page of items plus its pagination envelope.
// Older deployments omit the pagination block entirely; callers detect this
// via a zero LastPage and fall back to inferring completion from page size.
type ListResponse struct {
	Data       []Item      `json:"data"                 yaml:"data"`
	Pagination *Pagination `json:"pagination,omitempty" yaml:"pagination,omitempty"`
}

// HasMorePages reports whether the server indicated further pages. When the
// envelope is missing, requestedLimit is used to infer completion: a short
// page means the dataset is exhausted.
func (r *ListResponse) HasMorePages(requestedLimit int) bool {
	if r.Pagination != nil {
		return r.Pagination.HasMore
	}

	return requestedLimit > 0 && len(r.Data) >= requestedLimit
}

// FormSubmission is the receipt returned after a successful form submission.
type FormSubmission struct {
	ID        string `json:"id,omitempty"      yaml:"id,omitempty"`
	Success   bool   `json:"success"           yaml:"success"`
	Message   string `json:"message,omitempty" yaml:"message,omitempty"`
	CreatedAt string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// EndpointInfo describes a project endpoint (name, item count, structure).
type EndpointInfo struct {
	Name      string            `json:"name"                yaml:"name"`
	Total     int               `json:"total"               yaml:"total"`
	Fields    map[string]string `json:"fields,omitempty"    yaml:"fields,omitempty"`
	UpdatedAt string            `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}
