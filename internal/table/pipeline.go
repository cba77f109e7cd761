// Package table implements the table view pipeline: column-scoped filtering,
// single-column stable sorting and fixed-size pagination over an immutable
// record set.
//
// The stages are pure functions over a slice and never modify their input:
//
//	visible := Sort(Filter(rows, cols, st.Filters), cols, st.Sort)
//	page := Paginate(visible, st.Pagination)
//
// [View] owns a mutable [State] and re-runs the stages after every mutation.
// [Apply] evaluates a requested state in one shot for stateless callers.
package table

import (
	"slices"
)

// Filter returns the records matching every active filter, in input order.
// Filters with an empty value, on unknown columns, or on columns that are not
// filterable are ignored.
func Filter[R any](rows []R, cols Columns[R], filters Filters) []R {
	type active struct {
		col   *Column[R]
		value string
	}
	var preds []active
	for _, f := range filters {
		if f.Value == "" {
			continue
		}
		col, ok := cols.Lookup(f.ColumnID)
		if !ok || !col.Filterable {
			continue
		}
		preds = append(preds, active{col: col, value: f.Value})
	}

	out := make([]R, 0, len(rows))
	if len(preds) == 0 {
		return append(out, rows...)
	}

rows:
	for _, row := range rows {
		for _, p := range preds {
			if !p.col.matches(row, p.value) {
				continue rows
			}
		}
		out = append(out, row)
	}
	return out
}

// Sort returns a stably sorted copy of rows. A nil descriptor, or one naming
// an unknown or non-sortable column, leaves the order unchanged.
func Sort[R any](rows []R, cols Columns[R], sort *SortDescriptor) []R {
	out := slices.Clone(rows)
	col, ok := sortColumn(cols, sort)
	if !ok {
		return out
	}

	compare := col.comparator()
	if sort.Direction == Descending {
		asc := compare
		compare = func(a, b R) int { return -asc(a, b) }
	}
	slices.SortStableFunc(out, compare)
	return out
}

// sortColumn resolves the column a descriptor refers to, if it may sort.
func sortColumn[R any](cols Columns[R], sort *SortDescriptor) (*Column[R], bool) {
	if sort == nil {
		return nil, false
	}
	col, ok := cols.Lookup(sort.ColumnID)
	if !ok || !col.Sortable {
		return nil, false
	}
	return col, true
}

// Paginate returns the window [index*size, min((index+1)*size, len)).
// An index past the last page yields an empty page; a size below 1 is
// treated as DefaultPageSize.
func Paginate[R any](rows []R, p Pagination) []R {
	size := p.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	if p.PageIndex < 0 || p.PageIndex >= PageCount(len(rows), size) {
		return []R{}
	}
	start := p.PageIndex * size
	end := start + min(size, len(rows)-start)
	return slices.Clone(rows[start:end])
}

// PageCount returns ceil(total/size).
func PageCount(total, size int) int {
	if size < 1 || total <= 0 {
		return 0
	}
	n := total / size
	if total%size != 0 {
		n++
	}
	return n
}

// clampIndex keeps a page index within [0, max(pageCount-1, 0)].
func clampIndex(index, total, size int) int {
	last := PageCount(total, size) - 1
	if index > last {
		index = last
	}
	if index < 0 {
		index = 0
	}
	return index
}

// ColumnState is the outbound per-column view state.
type ColumnState struct {
	ID         string    `json:"id"`
	Header     string    `json:"header"`
	Sortable   bool      `json:"sortable"`
	Filterable bool      `json:"filterable"`
	Sort       Direction `json:"sort,omitempty"`
	Filter     string    `json:"filter,omitempty"`
}

// Page is everything a renderer needs to draw the current page.
type Page[R any] struct {
	Rows          []R
	PageIndex     int
	PageSize      int
	PageCount     int
	FilteredCount int
	TotalCount    int
	CanPrevious   bool
	CanNext       bool
	Columns       []ColumnState
}

// Apply normalizes st against the record set and evaluates the pipeline.
// The returned State is the one actually applied: an invalid sort is
// dropped, a page size below 1 becomes DefaultPageSize, and the page index
// is clamped into range.
func Apply[R any](rows []R, cols Columns[R], st State) (Page[R], State) {
	st = st.clone()
	if _, ok := sortColumn(cols, st.Sort); !ok {
		st.Sort = nil
	}
	if st.Pagination.PageSize < 1 {
		st.Pagination.PageSize = DefaultPageSize
	}

	visible := Sort(Filter(rows, cols, st.Filters), cols, st.Sort)
	st.Pagination.PageIndex = clampIndex(st.Pagination.PageIndex, len(visible), st.Pagination.PageSize)
	return buildPage(visible, len(rows), cols, st), st
}

// buildPage slices the visible sequence and assembles the outbound model.
func buildPage[R any](visible []R, total int, cols Columns[R], st State) Page[R] {
	p := st.Pagination
	count := PageCount(len(visible), p.PageSize)

	states := make([]ColumnState, len(cols))
	for i, c := range cols {
		cs := ColumnState{
			ID:         c.ID,
			Header:     c.Header,
			Sortable:   c.Sortable,
			Filterable: c.Filterable,
		}
		if st.Sort != nil && st.Sort.ColumnID == c.ID {
			cs.Sort = st.Sort.Direction
		}
		if v, ok := st.Filters.Get(c.ID); ok {
			cs.Filter = v
		}
		states[i] = cs
	}

	return Page[R]{
		Rows:          Paginate(visible, p),
		PageIndex:     p.PageIndex,
		PageSize:      p.PageSize,
		PageCount:     count,
		FilteredCount: len(visible),
		TotalCount:    total,
		CanPrevious:   p.PageIndex > 0,
		CanNext:       p.PageIndex < count-1,
		Columns:       states,
	}
}
