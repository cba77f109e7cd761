package templates

// HeaderCell is one column header.
type HeaderCell struct {
	Label     string
	Sortable  bool
	Indicator string // " 🔼", " 🔽" or ""
	SortURL   string // URL applying the next sort state
	Numeric   bool
}

// FilterInput is one filter box of the search form.
type FilterInput struct {
	Name        string // form field name, e.g. filter[name]
	Value       string
	Placeholder string
}

// PageSizeOption is one page size button.
type PageSizeOption struct {
	Size   int
	URL    string
	Active bool
}

// Hidden is a hidden form field carried across filter submissions.
type Hidden struct {
	Name  string
	Value string
}

// TablePageData is everything the table page renders.
type TablePageData struct {
	Title       string
	Headers     []HeaderCell
	Rows        [][]string
	Filters     []FilterInput
	Hidden      []Hidden
	PageNumber  int // 1-based
	PageCount   int
	PrevURL     string
	NextURL     string
	CanPrevious bool
	CanNext     bool
	PageSizes   []PageSizeOption
	Summary     string
}

// numeric reports whether column i holds right-aligned numbers.
func (d TablePageData) numeric(i int) bool {
	return i < len(d.Headers) && d.Headers[i].Numeric
}
