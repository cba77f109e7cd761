package source

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/countrytable/internal/country"
	"github.com/JonMunkholm/countrytable/internal/metrics"
)

// ErrNotStarted is returned by Wait on a loader whose fetch was never started.
var ErrNotStarted = errors.New("loader not started")

// Status is the lifecycle state of a Loader.
type Status int

const (
	StatusPending Status = iota
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Loader performs the single dataset fetch and publishes its outcome.
//
// The loader is pending until the fetch completes, then either ready with
// the record set or failed with the fetch error. The outcome never changes
// afterwards: there is no retry and no refresh.
type Loader struct {
	fetcher Fetcher
	timeout time.Duration
	name    string
	logger  *slog.Logger

	once sync.Once
	done chan struct{}

	mu      sync.RWMutex
	started bool
	records []country.Record
	err     error
}

// NewLoader creates a pending loader. A timeout of zero leaves the fetch
// unbounded.
func NewLoader(f Fetcher, timeout time.Duration) *Loader {
	return &Loader{
		fetcher: f,
		timeout: timeout,
		name:    sourceName(f),
		logger:  slog.Default(),
		done:    make(chan struct{}),
	}
}

// WithLogger sets the logger used for fetch progress. Call it before Start.
func (l *Loader) WithLogger(logger *slog.Logger) *Loader {
	if logger != nil {
		l.logger = logger
	}
	return l
}

// Start issues the fetch in the background. Only the first call has an
// effect. Cancelling ctx after Start returns does not abort the fetch; ctx
// only contributes its values.
func (l *Loader) Start(ctx context.Context) {
	l.once.Do(func() {
		l.mu.Lock()
		l.started = true
		l.mu.Unlock()

		go l.run(context.WithoutCancel(ctx))
	})
}

func (l *Loader) run(ctx context.Context) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	l.logger.Info("fetching countries", "source", l.name)
	start := time.Now()
	records, err := l.fetcher.Fetch(ctx)
	took := time.Since(start)
	metrics.ObserveFetch(l.name, took, err)

	if err != nil {
		l.logger.Error("fetch countries failed", "source", l.name, "duration", took, "error", err)
	} else {
		l.logger.Info("countries loaded", "source", l.name, "count", len(records), "duration", took)
	}

	l.mu.Lock()
	if err != nil {
		l.err = err
		l.records = nil
	} else {
		if records == nil {
			records = []country.Record{}
		}
		l.records = records
	}
	l.mu.Unlock()
	close(l.done)
}

// Done is closed once the fetch has completed.
func (l *Loader) Done() <-chan struct{} {
	return l.done
}

// State reports the current status without blocking. Records are set only
// when ready; err only when failed.
func (l *Loader) State() (Status, []country.Record, error) {
	select {
	case <-l.done:
	default:
		return StatusPending, nil, nil
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.err != nil {
		return StatusFailed, nil, l.err
	}
	return StatusReady, l.records, nil
}

// Wait blocks until the fetch completes or ctx is done. Waiting on a loader
// that was never started fails immediately with ErrNotStarted.
func (l *Loader) Wait(ctx context.Context) ([]country.Record, error) {
	l.mu.RLock()
	started := l.started
	l.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}

	select {
	case <-l.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	_, records, err := l.State()
	return records, err
}

// Load starts the loader and waits for the outcome.
func (l *Loader) Load(ctx context.Context) ([]country.Record, error) {
	l.Start(ctx)
	return l.Wait(ctx)
}
