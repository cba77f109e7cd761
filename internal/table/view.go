package table

import (
	"fmt"
	"sync"
)

// View owns the control state of one table over an immutable record set.
//
// Mutators are serialized by an internal lock and re-run the pipeline
// synchronously before returning, so a View is safe to share between
// goroutines. The record slice passed to NewView must not be modified
// afterwards.
type View[R any] struct {
	rows []R
	cols Columns[R]

	mu      sync.Mutex
	state   State
	visible []R // filtered and sorted, recomputed on filter/sort changes
}

// NewView creates a view with no filters, no sort and the given page size.
// A page size below 1 becomes DefaultPageSize.
func NewView[R any](rows []R, cols Columns[R], pageSize int) *View[R] {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	v := &View[R]{
		rows:  rows,
		cols:  cols,
		state: State{Pagination: Pagination{PageSize: pageSize}},
	}
	v.recompute()
	return v
}

// SetFilter sets the filter value for a column, replacing any previous value.
// Filtering a column that is not filterable is a no-op.
func (v *View[R]) SetFilter(columnID, value string) error {
	col, ok := v.cols.Lookup(columnID)
	if !ok {
		return fmt.Errorf("set filter %q: %w", columnID, ErrUnknownColumn)
	}
	if !col.Filterable {
		return nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.state.Filters = v.state.Filters.Set(columnID, value)
	v.recompute()
	return nil
}

// ToggleSort advances the sort of a column through
// none -> first direction -> opposite direction -> none.
// Toggling a different column replaces the active sort. Toggling a column
// that is not sortable leaves the sort unchanged.
func (v *View[R]) ToggleSort(columnID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	next, err := NextSort(v.cols, v.state.Sort, columnID)
	if err != nil {
		return err
	}
	v.state.Sort = next
	v.recompute()
	return nil
}

// NextSort returns the sort descriptor that results from toggling columnID
// while cur is active. It is the transition ToggleSort applies, exposed for
// callers that carry state in URLs.
func NextSort[R any](cols Columns[R], cur *SortDescriptor, columnID string) (*SortDescriptor, error) {
	col, ok := cols.Lookup(columnID)
	if !ok {
		return nil, fmt.Errorf("toggle sort %q: %w", columnID, ErrUnknownColumn)
	}
	if !col.Sortable {
		if cur == nil {
			return nil, nil
		}
		sd := *cur
		return &sd, nil
	}

	first := col.firstDirection()
	switch {
	case cur == nil || cur.ColumnID != columnID:
		return &SortDescriptor{ColumnID: columnID, Direction: first}, nil
	case cur.Direction == first:
		return &SortDescriptor{ColumnID: columnID, Direction: first.opposite()}, nil
	default:
		return nil, nil
	}
}

// SetPageIndex moves to page n, clamped into the valid range.
func (v *View[R]) SetPageIndex(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Pagination.PageIndex = clampIndex(n, len(v.visible), v.state.Pagination.PageSize)
}

// SetPageSize changes the page size. The page index is re-anchored so the
// first visible row stays on screen, then clamped.
func (v *View[R]) SetPageSize(n int) error {
	if n < 1 {
		return fmt.Errorf("set page size %d: %w", n, ErrInvalidPageSize)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	p := v.state.Pagination
	top := p.PageIndex * p.PageSize
	v.state.Pagination = Pagination{
		PageSize:  n,
		PageIndex: clampIndex(top/n, len(v.visible), n),
	}
	return nil
}

// NextPage advances one page; a no-op on the last page.
func (v *View[R]) NextPage() {
	v.mu.Lock()
	defer v.mu.Unlock()
	p := &v.state.Pagination
	if p.PageIndex < PageCount(len(v.visible), p.PageSize)-1 {
		p.PageIndex++
	}
}

// PreviousPage goes back one page; a no-op on the first page.
func (v *View[R]) PreviousPage() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state.Pagination.PageIndex > 0 {
		v.state.Pagination.PageIndex--
	}
}

// State returns a copy of the current control state.
func (v *View[R]) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.clone()
}

// Snapshot returns the current page and its navigation state.
func (v *View[R]) Snapshot() Page[R] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return buildPage(v.visible, len(v.rows), v.cols, v.state)
}

// Columns returns the view's column set.
func (v *View[R]) Columns() Columns[R] {
	return v.cols
}

// recompute re-runs filter and sort from the full record set and re-clamps
// the page index. Callers hold v.mu, except NewView.
func (v *View[R]) recompute() {
	v.visible = Sort(Filter(v.rows, v.cols, v.state.Filters), v.cols, v.state.Sort)
	p := &v.state.Pagination
	p.PageIndex = clampIndex(p.PageIndex, len(v.visible), p.PageSize)
}
