package source

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/countrytable/internal/config"
)

// ErrNoDatabase is returned when the postgres source is selected without a
// database handle.
var ErrNoDatabase = errors.New("postgres source needs a database connection")

// NewFetcher builds the fetcher selected by cfg.Kind. db is only used by the
// postgres source and may be nil otherwise.
func NewFetcher(cfg config.SourceConfig, db Querier) (Fetcher, error) {
	switch strings.ToLower(cfg.Kind) {
	case config.SourceHTTP, "":
		url := cfg.URL
		if url == "" {
			url = config.DefaultSourceURL
		}
		return NewHTTPFetcher(url), nil
	case config.SourceFile:
		if cfg.File == "" {
			return nil, errors.New("file source needs a path")
		}
		return NewFileFetcher(cfg.File), nil
	case config.SourcePostgres:
		if db == nil {
			return nil, ErrNoDatabase
		}
		return NewPostgresFetcher(db), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}
