package table

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection converts "asc"/"desc" to a Direction. Anything else is
// treated as ascending.
func ParseDirection(s string) Direction {
	if s == string(Descending) {
		return Descending
	}
	return Ascending
}

// opposite returns the other direction.
func (d Direction) opposite() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// ColumnFilter is a filter value scoped to one column.
type ColumnFilter struct {
	ColumnID string `json:"id"`
	Value    string `json:"value"`
}

// Filters holds at most one ColumnFilter per column. All entries are
// combined with AND.
type Filters []ColumnFilter

// Set returns filters with the value for columnID replaced, or appended
// when the column has no filter yet. The receiver is not modified.
func (fs Filters) Set(columnID, value string) Filters {
	out := make(Filters, len(fs), len(fs)+1)
	copy(out, fs)
	for i := range out {
		if out[i].ColumnID == columnID {
			out[i].Value = value
			return out
		}
	}
	return append(out, ColumnFilter{ColumnID: columnID, Value: value})
}

// Get returns the filter value for columnID.
func (fs Filters) Get(columnID string) (string, bool) {
	for _, f := range fs {
		if f.ColumnID == columnID {
			return f.Value, true
		}
	}
	return "", false
}

// SortDescriptor is the single active sort.
type SortDescriptor struct {
	ColumnID  string    `json:"id"`
	Direction Direction `json:"direction"`
}

// Pagination selects a page window. PageIndex is zero-based.
type Pagination struct {
	PageIndex int `json:"pageIndex"`
	PageSize  int `json:"pageSize"`
}

// DefaultPageSize is used when a view is created without an explicit size.
const DefaultPageSize = 10

// State is the complete control state of a table view.
type State struct {
	Filters    Filters         `json:"filters"`
	Sort       *SortDescriptor `json:"sort,omitempty"`
	Pagination Pagination      `json:"pagination"`
}

// clone returns a deep copy of the state.
func (s State) clone() State {
	out := State{Pagination: s.Pagination}
	if s.Filters != nil {
		out.Filters = append(Filters(nil), s.Filters...)
	}
	if s.Sort != nil {
		sd := *s.Sort
		out.Sort = &sd
	}
	return out
}
