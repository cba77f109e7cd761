// Package source retrieves the country dataset and tracks the one-shot load
// that feeds the table.
package source

import (
	"context"
	"fmt"
	"os"

	"github.com/JonMunkholm/countrytable/internal/country"
)

// Fetcher produces the full record set in one request.
type Fetcher interface {
	Fetch(ctx context.Context) ([]country.Record, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context) ([]country.Record, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context) ([]country.Record, error) {
	return f(ctx)
}

// FileFetcher reads a JSON snapshot in the remote API's format.
type FileFetcher struct {
	Path string
}

// NewFileFetcher creates a fetcher for the snapshot at path.
func NewFileFetcher(path string) *FileFetcher {
	return &FileFetcher{Path: path}
}

// Fetch opens and decodes the snapshot.
func (f *FileFetcher) Fetch(ctx context.Context) ([]country.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer file.Close()

	return country.Decode(file)
}

// sourceName labels a fetcher in logs and metrics.
func sourceName(f Fetcher) string {
	switch f.(type) {
	case *HTTPFetcher:
		return "http"
	case *FileFetcher:
		return "file"
	case *PostgresFetcher:
		return "postgres"
	default:
		return "custom"
	}
}
