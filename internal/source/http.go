package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/JonMunkholm/countrytable/internal/country"
)

// ErrUnexpectedStatus is returned when the remote API answers with a
// non-2xx status.
var ErrUnexpectedStatus = errors.New("unexpected status")

// maxErrorBody caps how much of an error response is kept for the log.
const maxErrorBody = 512

// HTTPFetcher retrieves the dataset from the remote countries API.
type HTTPFetcher struct {
	URL    string
	Client *http.Client
}

// NewHTTPFetcher creates a fetcher for url using http.DefaultClient.
// The client has no timeout; bound the request through the context.
func NewHTTPFetcher(url string) *HTTPFetcher {
	return &HTTPFetcher{URL: url, Client: http.DefaultClient}
}

// Fetch issues one GET request and decodes the response body.
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]country.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", f.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("get %s: %w %d: %s", f.URL, ErrUnexpectedStatus, resp.StatusCode, snippet)
	}

	return country.Decode(resp.Body)
}
