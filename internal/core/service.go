package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JonMunkholm/countrytable/internal/config"
	"github.com/JonMunkholm/countrytable/internal/country"
	"github.com/JonMunkholm/countrytable/internal/logging"
	"github.com/JonMunkholm/countrytable/internal/metrics"
	"github.com/JonMunkholm/countrytable/internal/source"
	"github.com/JonMunkholm/countrytable/internal/table"
	"github.com/google/uuid"
)

var (
	// ErrDataPending is returned while the dataset fetch is still in flight.
	ErrDataPending = errors.New("data is still loading")

	// ErrDataUnavailable is returned after the dataset fetch failed.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrViewNotFound is returned for unknown or evicted view ids.
	ErrViewNotFound = errors.New("view not found")

	// ErrTooManyViews is returned when the live view limit is reached.
	ErrTooManyViews = errors.New("too many views")
)

// Page is one rendered page of the country table.
type Page = table.Page[country.Record]

// DataStatus describes the dataset load.
type DataStatus struct {
	Status source.Status
	Count  int   // records loaded, when ready
	Err    error // fetch error, when failed
}

// Service provides the core business logic for the country table.
type Service struct {
	loader   *source.Loader
	cols     table.Columns[country.Record]
	tableCfg config.TableConfig
	viewsCfg config.ViewsConfig
	now      func() time.Time

	mu    sync.RWMutex
	views map[string]*liveView
}

type liveView struct {
	view     *table.View[country.Record]
	lastUsed atomic.Int64 // unix nanoseconds
}

// NewService creates a new Service reading from loader. The loader is
// started by the caller.
func NewService(loader *source.Loader, cfg *config.Config) *Service {
	return &Service{
		loader:   loader,
		cols:     country.Columns(),
		tableCfg: cfg.Table,
		viewsCfg: cfg.Views,
		now:      time.Now,
		views:    make(map[string]*liveView),
	}
}

// Columns returns the column catalog.
func (s *Service) Columns() table.Columns[country.Record] {
	return s.cols
}

// TableConfig returns the pagination settings.
func (s *Service) TableConfig() config.TableConfig {
	return s.tableCfg
}

// DataStatus reports the dataset load without blocking.
func (s *Service) DataStatus() DataStatus {
	status, records, err := s.loader.State()
	return DataStatus{Status: status, Count: len(records), Err: err}
}

// records returns the loaded record set or the load state as an error.
func (s *Service) records() ([]country.Record, error) {
	status, records, err := s.loader.State()
	switch status {
	case source.StatusReady:
		return records, nil
	case source.StatusFailed:
		return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	default:
		return nil, ErrDataPending
	}
}

// Query evaluates st against the record set without keeping any state.
// The page size is bounded by the configured maximum. The returned state is
// the one actually applied.
func (s *Service) Query(ctx context.Context, st table.State) (Page, table.State, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, table.State{}, err
	}
	records, err := s.records()
	if err != nil {
		return Page{}, table.State{}, err
	}

	st.Pagination.PageSize = s.tableCfg.ClampPageSize(st.Pagination.PageSize)

	done := metrics.TimePipeline("query")
	page, applied := table.Apply(records, s.cols, st)
	done()
	return page, applied, nil
}

// CreateView registers a new view with no filters and no sort.
// A page size of zero selects the configured default.
func (s *Service) CreateView(ctx context.Context, pageSize int) (string, Page, error) {
	if err := ctx.Err(); err != nil {
		return "", Page{}, err
	}
	records, err := s.records()
	if err != nil {
		return "", Page{}, err
	}
	if pageSize < 0 {
		return "", Page{}, fmt.Errorf("create view with page size %d: %w", pageSize, table.ErrInvalidPageSize)
	}

	lv := &liveView{view: table.NewView(records, s.cols, s.tableCfg.ClampPageSize(pageSize))}
	lv.lastUsed.Store(s.now().UnixNano())
	id := uuid.NewString()

	s.mu.Lock()
	if len(s.views) >= s.viewsCfg.MaxActive {
		s.mu.Unlock()
		return "", Page{}, fmt.Errorf("%w (limit %d)", ErrTooManyViews, s.viewsCfg.MaxActive)
	}
	s.views[id] = lv
	metrics.ActiveViews.Set(float64(len(s.views)))
	s.mu.Unlock()

	logging.WithFields(ctx, "view_id", id).Debug("view created", "page_size", lv.view.State().Pagination.PageSize)
	return id, s.snapshot(lv), nil
}

// View returns the current page of a view.
func (s *Service) View(ctx context.Context, id string) (Page, error) {
	lv, err := s.lookup(id)
	if err != nil {
		return Page{}, err
	}
	return s.snapshot(lv), nil
}

// ViewState returns the control state of a view.
func (s *Service) ViewState(ctx context.Context, id string) (table.State, error) {
	lv, err := s.lookup(id)
	if err != nil {
		return table.State{}, err
	}
	return lv.view.State(), nil
}

// SetFilter sets a column filter on a view. An empty value clears it.
func (s *Service) SetFilter(ctx context.Context, id, columnID, value string) (Page, error) {
	return s.mutate(ctx, id, "set_filter", func(v *table.View[country.Record]) error {
		return v.SetFilter(columnID, value)
	})
}

// ToggleSort advances the sort cycle of a column on a view.
func (s *Service) ToggleSort(ctx context.Context, id, columnID string) (Page, error) {
	return s.mutate(ctx, id, "toggle_sort", func(v *table.View[country.Record]) error {
		return v.ToggleSort(columnID)
	})
}

// SetPageIndex moves a view to a zero-based page, clamped into range.
func (s *Service) SetPageIndex(ctx context.Context, id string, n int) (Page, error) {
	return s.mutate(ctx, id, "set_page_index", func(v *table.View[country.Record]) error {
		v.SetPageIndex(n)
		return nil
	})
}

// SetPageSize changes the page size of a view. Sizes above the configured
// maximum are capped; sizes below 1 are rejected.
func (s *Service) SetPageSize(ctx context.Context, id string, n int) (Page, error) {
	if n > s.tableCfg.MaxPageSize && s.tableCfg.MaxPageSize > 0 {
		n = s.tableCfg.MaxPageSize
	}
	return s.mutate(ctx, id, "set_page_size", func(v *table.View[country.Record]) error {
		return v.SetPageSize(n)
	})
}

// NextPage advances a view by one page.
func (s *Service) NextPage(ctx context.Context, id string) (Page, error) {
	return s.mutate(ctx, id, "next_page", func(v *table.View[country.Record]) error {
		v.NextPage()
		return nil
	})
}

// PreviousPage moves a view back by one page.
func (s *Service) PreviousPage(ctx context.Context, id string) (Page, error) {
	return s.mutate(ctx, id, "previous_page", func(v *table.View[country.Record]) error {
		v.PreviousPage()
		return nil
	})
}

// CloseView discards a view.
func (s *Service) CloseView(ctx context.Context, id string) error {
	s.mu.Lock()
	_, ok := s.views[id]
	delete(s.views, id)
	metrics.ActiveViews.Set(float64(len(s.views)))
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("close view %s: %w", id, ErrViewNotFound)
	}
	logging.WithFields(ctx, "view_id", id).Debug("view closed")
	return nil
}

// ActiveViews returns the number of live views.
func (s *Service) ActiveViews() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.views)
}

func (s *Service) lookup(id string) (*liveView, error) {
	s.mu.RLock()
	lv, ok := s.views[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("view %s: %w", id, ErrViewNotFound)
	}
	lv.lastUsed.Store(s.now().UnixNano())
	return lv, nil
}

func (s *Service) mutate(ctx context.Context, id, op string, fn func(*table.View[country.Record]) error) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	lv, err := s.lookup(id)
	if err != nil {
		return Page{}, err
	}

	done := metrics.TimePipeline("view")
	err = fn(lv.view)
	done()
	if err != nil {
		return Page{}, err
	}

	metrics.ViewMutations.WithLabelValues(op).Inc()
	logging.WithFields(ctx, "view_id", id).Debug("view updated", "op", op)
	return s.snapshot(lv), nil
}

func (s *Service) snapshot(lv *liveView) Page {
	return lv.view.Snapshot()
}
