package table

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type place struct {
	name       string
	population int
	region     *string
	tags       []string
}

func strp(s string) *string { return &s }

func testColumns() Columns[place] {
	return Columns[place]{
		{
			ID:         "name",
			Header:     "Name",
			Accessor:   func(p place) any { return p.name },
			Filter:     StartsWith(func(p place) string { return p.name }),
			Compare:    TextCompare(func(p place) string { return p.name }),
			Sortable:   true,
			Filterable: true,
		},
		{
			ID:            "population",
			Header:        "Population",
			Accessor:      func(p place) any { return p.population },
			Sortable:      true,
			SortDescFirst: true,
		},
		{
			ID:     "region",
			Header: "Region",
			Accessor: func(p place) any {
				if p.region == nil {
					return nil
				}
				return *p.region
			},
			Filterable: true,
		},
		{
			ID:       "tags",
			Header:   "Tags",
			Accessor: func(p place) any { return p.tags },
		},
	}
}

func names(rows []place) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.name
	}
	return out
}

func samplePlaces() []place {
	return []place{
		{name: "Zambia", population: 10, region: strp("Africa")},
		{name: "Aruba", population: 5, region: strp("Americas")},
		{name: "albania", population: 7, region: strp("Europe")},
		{name: "Åland Islands", population: 3, region: nil},
		{name: "Brazil", population: 200, region: strp("Americas")},
		{name: "Argentina", population: 45, region: strp("Americas")},
	}
}

func TestFilter_StartsWithCaseInsensitive(t *testing.T) {
	rows := samplePlaces()
	got := Filter(rows, testColumns(), Filters{{ColumnID: "name", Value: "a"}})

	assert.Equal(t, []string{"Aruba", "albania", "Argentina"}, names(got))
	for _, r := range got {
		assert.True(t, HasPrefixFold(r.name, "a"), "%s should start with a", r.name)
	}
}

func TestFilter_NotSubstring(t *testing.T) {
	got := Filter(samplePlaces(), testColumns(), Filters{{ColumnID: "name", Value: "rub"}})
	assert.Empty(t, got)
}

func TestFilter_Idempotent(t *testing.T) {
	cols := testColumns()
	f := Filters{{ColumnID: "name", Value: "AR"}, {ColumnID: "region", Value: "am"}}

	once := Filter(samplePlaces(), cols, f)
	twice := Filter(once, cols, f)

	assert.Equal(t, once, twice)
	assert.Equal(t, []string{"Aruba", "Argentina"}, names(once))
}

func TestFilter_AbsentFieldIsNonMatch(t *testing.T) {
	var got []place
	require.NotPanics(t, func() {
		got = Filter(samplePlaces(), testColumns(), Filters{{ColumnID: "region", Value: "e"}})
	})
	assert.Equal(t, []string{"albania"}, names(got))
}

func TestFilter_IgnoresInactiveFilters(t *testing.T) {
	rows := samplePlaces()
	f := Filters{
		{ColumnID: "name", Value: ""},
		{ColumnID: "population", Value: "1"}, // not filterable
		{ColumnID: "nope", Value: "x"},
	}
	got := Filter(rows, testColumns(), f)
	assert.Equal(t, names(rows), names(got))
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	rows := samplePlaces()
	before := names(rows)
	_ = Filter(rows, testColumns(), Filters{{ColumnID: "name", Value: "z"}})
	assert.Equal(t, before, names(rows))
}

func TestFilters_SetReplaces(t *testing.T) {
	var f Filters
	f = f.Set("name", "a")
	f = f.Set("region", "e")
	require.Len(t, f, 2)

	f2 := f.Set("name", "ar")
	assert.Len(t, f2, 2)
	v, ok := f2.Get("name")
	assert.True(t, ok)
	assert.Equal(t, "ar", v)

	// original untouched
	v, _ = f.Get("name")
	assert.Equal(t, "a", v)
}

func TestCompareText(t *testing.T) {
	assert.Zero(t, CompareText("aruba", "ARUBA"))
	assert.Negative(t, CompareText("apple", "Banana"))
	assert.Negative(t, CompareText("Åland Islands", "Albania"))
	assert.Positive(t, CompareText("Zambia", "aruba"))
}

func TestHasPrefixFold(t *testing.T) {
	assert.True(t, HasPrefixFold("Éire", "é"))
	assert.True(t, HasPrefixFold("anything", ""))
	assert.False(t, HasPrefixFold("", "a"))
	assert.False(t, HasPrefixFold("Aruba", "ruba"))
}

func TestSort_AscendingDescending(t *testing.T) {
	cols := testColumns()
	rows := samplePlaces()

	asc := Sort(rows, cols, &SortDescriptor{ColumnID: "name", Direction: Ascending})
	assert.Equal(t, []string{"Åland Islands", "albania", "Argentina", "Aruba", "Brazil", "Zambia"}, names(asc))

	desc := Sort(rows, cols, &SortDescriptor{ColumnID: "population", Direction: Descending})
	assert.Equal(t, []string{"Brazil", "Argentina", "Zambia", "albania", "Aruba", "Åland Islands"}, names(desc))
}

func TestSort_AdjacentPairsOrdered(t *testing.T) {
	cols := testColumns()
	for _, dir := range []Direction{Ascending, Descending} {
		sorted := Sort(samplePlaces(), cols, &SortDescriptor{ColumnID: "name", Direction: dir})
		for i := 1; i < len(sorted); i++ {
			c := CompareText(sorted[i-1].name, sorted[i].name)
			if dir == Descending {
				c = -c
			}
			assert.LessOrEqual(t, c, 0, "%s before %s (%s)", sorted[i-1].name, sorted[i].name, dir)
		}
	}
}

func TestSort_Stable(t *testing.T) {
	rows := []place{
		{name: "aruba", population: 1},
		{name: "Chad", population: 2},
		{name: "ARUBA", population: 3},
		{name: "Aruba", population: 4},
	}
	cols := testColumns()

	asc := Sort(rows, cols, &SortDescriptor{ColumnID: "name", Direction: Ascending})
	assert.Equal(t, []int{1, 3, 4, 2}, populations(asc))

	desc := Sort(rows, cols, &SortDescriptor{ColumnID: "name", Direction: Descending})
	assert.Equal(t, []int{2, 1, 3, 4}, populations(desc))
}

func populations(rows []place) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.population
	}
	return out
}

func TestSort_UnsortedKeepsOrder(t *testing.T) {
	rows := samplePlaces()
	cols := testColumns()

	assert.Equal(t, names(rows), names(Sort(rows, cols, nil)))
	assert.Equal(t, names(rows), names(Sort(rows, cols, &SortDescriptor{ColumnID: "region", Direction: Ascending})))
	assert.Equal(t, names(rows), names(Sort(rows, cols, &SortDescriptor{ColumnID: "missing", Direction: Descending})))
}

func TestSort_DefaultComparatorFromAccessor(t *testing.T) {
	cols := testColumns()
	cols[1].Compare = nil // population already has none; keep explicit
	sorted := Sort(samplePlaces(), cols, &SortDescriptor{ColumnID: "population", Direction: Ascending})
	assert.Equal(t, []int{3, 5, 7, 10, 45, 200}, populations(sorted))
}

func TestPaginate_ConcatenationReconstructs(t *testing.T) {
	rows := Sort(samplePlaces(), testColumns(), &SortDescriptor{ColumnID: "name", Direction: Ascending})

	for size := 1; size <= len(rows)+1; size++ {
		var all []place
		count := PageCount(len(rows), size)
		for i := 0; i < count; i++ {
			page := Paginate(rows, Pagination{PageIndex: i, PageSize: size})
			assert.NotEmpty(t, page)
			assert.LessOrEqual(t, len(page), size)
			all = append(all, page...)
		}
		assert.Equal(t, names(rows), names(all), "size %d", size)
		assert.Empty(t, Paginate(rows, Pagination{PageIndex: count, PageSize: size}))
	}
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{250, 15, 17},
		{5, 0, 0},
		{5, math.MaxInt, 1},
		{math.MaxInt, 1, math.MaxInt},
		{math.MaxInt, math.MaxInt - 1, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PageCount(tt.total, tt.size), "PageCount(%d, %d)", tt.total, tt.size)
	}
}

func TestPaginate_LargeValues(t *testing.T) {
	rows := []int{1, 2, 3}

	tests := []struct {
		name string
		p    Pagination
		want []int
	}{
		{"index far past the end", Pagination{PageIndex: math.MaxInt/10 + 1, PageSize: 10}, []int{}},
		{"max index", Pagination{PageIndex: math.MaxInt, PageSize: 2}, []int{}},
		{"max size", Pagination{PageIndex: 0, PageSize: math.MaxInt}, []int{1, 2, 3}},
		{"max size second page", Pagination{PageIndex: 1, PageSize: math.MaxInt}, []int{}},
		{"last partial page", Pagination{PageIndex: 1, PageSize: 2}, []int{3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Paginate(rows, tt.p))
		})
	}
}

func TestPipeline_Example(t *testing.T) {
	rows := []place{{name: "Zambia", population: 10}, {name: "Aruba", population: 5}}
	cols := testColumns()

	filtered := Filter(rows, cols, Filters{{ColumnID: "name", Value: "a"}})
	assert.Equal(t, []place{{name: "Aruba", population: 5}}, filtered)

	sorted := Sort(rows, cols, &SortDescriptor{ColumnID: "name", Direction: Ascending})
	assert.Equal(t, []string{"Aruba", "Zambia"}, names(sorted))

	assert.Equal(t, []string{"Aruba"}, names(Paginate(sorted, Pagination{PageIndex: 0, PageSize: 1})))
	assert.Equal(t, []string{"Zambia"}, names(Paginate(sorted, Pagination{PageIndex: 1, PageSize: 1})))
	assert.Empty(t, Paginate(sorted, Pagination{PageIndex: 2, PageSize: 1}))
}

func TestApply_NormalizesState(t *testing.T) {
	rows := samplePlaces()
	page, st := Apply(rows, testColumns(), State{
		Filters:    Filters{{ColumnID: "name", Value: "a"}},
		Sort:       &SortDescriptor{ColumnID: "region", Direction: Ascending},
		Pagination: Pagination{PageIndex: 9, PageSize: 2},
	})

	assert.Nil(t, st.Sort)
	assert.Equal(t, 1, st.Pagination.PageIndex)
	assert.Equal(t, 1, page.PageIndex)
	assert.Equal(t, 2, page.PageCount)
	assert.Equal(t, 3, page.FilteredCount)
	assert.Equal(t, 6, page.TotalCount)
	assert.Equal(t, []string{"Argentina"}, names(page.Rows))
	assert.True(t, page.CanPrevious)
	assert.False(t, page.CanNext)
}

func TestApply_EmptyResult(t *testing.T) {
	page, st := Apply(samplePlaces(), testColumns(), State{
		Filters:    Filters{{ColumnID: "name", Value: "qq"}},
		Pagination: Pagination{PageIndex: 3},
	})

	assert.Equal(t, DefaultPageSize, st.Pagination.PageSize)
	assert.Equal(t, 0, page.PageIndex)
	assert.Equal(t, 0, page.PageCount)
	assert.Empty(t, page.Rows)
	assert.False(t, page.CanPrevious)
	assert.False(t, page.CanNext)
}

func TestColumns_Validate(t *testing.T) {
	require.NoError(t, testColumns().Validate())

	dup := append(testColumns(), Column[place]{ID: "name"})
	assert.Error(t, dup.Validate())

	assert.Error(t, Columns[place]{{Header: "no id"}}.Validate())
}
