package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/creeblers/creeble-go/internal/http"
	"github.com/creeblers/creeble-go/pkg/creeble"
)

// FormsClient implements creeble.FormsClient.
type FormsClient struct {
	httpClient *http.Client
}

// NewFormsClient creates a new forms client.
func NewFormsClient(httpClient *http.Client) *FormsClient {
	return &FormsClient{httpClient: httpClient}
}

// Submit implements creeble.FormsClient.Submit. Submissions go through the
// same pipeline as reads but are never cached.
func (c *FormsClient) Submit(ctx context.Context, endpoint string, values map[string]any) (*creeble.FormSubmission, error) {
	if endpoint == "" {
		return nil, creeble.ErrEndpointRequired
	}

	path := "/api/v1/forms/" + url.PathEscape(endpoint)

	resp, err := c.httpClient.Post(ctx, path, values)
	if err != nil {
		return nil, fmt.Errorf("submitting form to %s: %w", endpoint, err)
	}

	var submission creeble.FormSubmission

	err = json.Unmarshal(resp.Body, &submission)
	if err != nil {
		return nil, fmt.Errorf("parsing form submission response: %w", err)
	}

	return &submission, nil
}
