package table

import (
	"errors"
	"fmt"
)

// ErrUnknownColumn is returned when a mutator names a column that is not
// part of the view's column set.
var ErrUnknownColumn = errors.New("unknown column")

// ErrInvalidPageSize is returned when a page size below 1 is requested.
var ErrInvalidPageSize = errors.New("invalid page size")

// Column describes one column of a table over records of type R.
//
// Behaviour is data-driven: a column opts into filtering and sorting with
// Filterable and Sortable. Filter and Compare override the defaults derived
// from Accessor; Render overrides the default cell text.
type Column[R any] struct {
	ID     string
	Header string

	// Accessor returns the raw cell value. A nil result means the field is
	// absent for that record.
	Accessor func(R) any

	// Render returns the display text for the cell. Optional.
	Render func(R) string

	// Filter reports whether the record matches a filter value. Optional;
	// filterable columns without one use a case-insensitive starts-with
	// match against the Accessor value.
	Filter func(row R, value string) bool

	// Compare orders two records. Optional; sortable columns without one
	// compare their Accessor values.
	Compare func(a, b R) int

	Sortable   bool
	Filterable bool

	// SortDescFirst makes the first sort toggle descending.
	SortDescFirst bool
}

// firstDirection is the direction a column takes when its sort is first enabled.
func (c *Column[R]) firstDirection() Direction {
	if c.SortDescFirst {
		return Descending
	}
	return Ascending
}

// matches evaluates the column's filter predicate for one record.
func (c *Column[R]) matches(row R, value string) bool {
	if c.Filter != nil {
		return c.Filter(row, value)
	}
	if c.Accessor == nil {
		return false
	}
	v := c.Accessor(row)
	if v == nil {
		return false
	}
	return HasPrefixFold(stringify(v), value)
}

// comparator returns the ordering function used when sorting by this column.
func (c *Column[R]) comparator() func(a, b R) int {
	if c.Compare != nil {
		return c.Compare
	}
	return func(a, b R) int {
		return compareValues(c.value(a), c.value(b))
	}
}

func (c *Column[R]) value(row R) any {
	if c.Accessor == nil {
		return nil
	}
	return c.Accessor(row)
}

// Text returns the display text of the cell for row.
func (c *Column[R]) Text(row R) string {
	if c.Render != nil {
		return c.Render(row)
	}
	v := c.value(row)
	if v == nil {
		return ""
	}
	return stringify(v)
}

// Columns is an ordered column set.
type Columns[R any] []Column[R]

// Lookup returns the column with the given id.
func (cs Columns[R]) Lookup(id string) (*Column[R], bool) {
	for i := range cs {
		if cs[i].ID == id {
			return &cs[i], true
		}
	}
	return nil, false
}

// Validate checks that column ids are non-empty and unique.
func (cs Columns[R]) Validate() error {
	seen := make(map[string]bool, len(cs))
	for i, c := range cs {
		if c.ID == "" {
			return fmt.Errorf("column %d: empty id", i)
		}
		if seen[c.ID] {
			return fmt.Errorf("column %q: duplicate id", c.ID)
		}
		seen[c.ID] = true
	}
	return nil
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}
