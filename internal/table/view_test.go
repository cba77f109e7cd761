package table

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestView_Defaults(t *testing.T) {
	v := NewView(samplePlaces(), testColumns(), 0)
	page := v.Snapshot()

	assert.Equal(t, DefaultPageSize, page.PageSize)
	assert.Equal(t, 0, page.PageIndex)
	assert.Equal(t, 1, page.PageCount)
	assert.Len(t, page.Rows, 6)
	assert.False(t, page.CanPrevious)
	assert.False(t, page.CanNext)
	assert.Nil(t, v.State().Sort)
}

func TestView_MaxPageSize(t *testing.T) {
	v := NewView(samplePlaces(), testColumns(), math.MaxInt)
	page := v.Snapshot()

	assert.Equal(t, 1, page.PageCount)
	assert.Len(t, page.Rows, 6)
	assert.False(t, page.CanNext)

	v.NextPage()
	v.SetPageIndex(math.MaxInt)
	assert.Equal(t, 0, v.Snapshot().PageIndex)

	require.NoError(t, v.SetPageSize(2))
	v.SetPageIndex(math.MaxInt)
	page = v.Snapshot()
	assert.Equal(t, 2, page.PageIndex)
	assert.Len(t, page.Rows, 2)
}

func TestView_ToggleSortCycle(t *testing.T) {
	v := NewView(samplePlaces(), testColumns(), 10)

	require.NoError(t, v.ToggleSort("name"))
	assert.Equal(t, &SortDescriptor{ColumnID: "name", Direction: Ascending}, v.State().Sort)

	require.NoError(t, v.ToggleSort("name"))
	assert.Equal(t, &SortDescriptor{ColumnID: "name", Direction: Descending}, v.State().Sort)

	require.NoError(t, v.ToggleSort("name"))
	assert.Nil(t, v.State().Sort)
	assert.Equal(t, names(samplePlaces()), names(v.Snapshot().Rows))
}

func TestView_ToggleSortDescFirst(t *testing.T) {
	v := NewView(samplePlaces(), testColumns(), 10)

	require.NoError(t, v.ToggleSort("population"))
	assert.Equal(t, Descending, v.State().Sort.Direction)
	assert.Equal(t, "Brazil", v.Snapshot().Rows[0].name)

	require.NoError(t, v.ToggleSort("population"))
	assert.Equal(t, Ascending, v.State().Sort.Direction)

	require.NoError(t, v.ToggleSort("population"))
	assert.Nil(t, v.State().Sort)
}

func TestView_ToggleSortReplacesOtherColumn(t *testing.T) {
	v := NewView(samplePlaces(), testColumns(), 10)

	require.NoError(t, v.ToggleSort("population"))
	require.NoError(t, v.ToggleSort("name"))
	assert.Equal(t, &SortDescriptor{ColumnID: "name", Direction: Ascending}, v.State().Sort)

	var sorted []Direction
	for _, c := range v.Snapshot().Columns {
		if c.Sort != "" {
			sorted = append(sorted, c.Sort)
		}
	}
	assert.Equal(t, []Direction{Ascending}, sorted)
}

func TestView_ToggleSortNonSortable(t *testing.T) {
	v := NewView(samplePlaces(), testColumns(), 10)
	require.NoError(t, v.ToggleSort("name"))
	before := v.State().Sort

	require.NoError(t, v.ToggleSort("tags"))
	assert.Equal(t, before, v.State().Sort)
}

func TestView_UnknownColumn(t *testing.T) {
	v := NewView(samplePlaces(), testColumns(), 10)

	assert.ErrorIs(t, v.ToggleSort("nope"), ErrUnknownColumn)
	assert.ErrorIs(t, v.SetFilter("nope", "x"), ErrUnknownColumn)
}

func TestView_SetFilterReplaces(t *testing.T) {
	v := NewView(samplePlaces(), testColumns(), 10)

	require.NoError(t, v.SetFilter("name", "a"))
	require.NoError(t, v.SetFilter("name", "ar"))
	require.NoError(t, v.SetFilter("tags", "x")) // not filterable

	st := v.State()
	assert.Len(t, st.Filters, 1)
	assert.Equal(t, []string{"Aruba", "Argentina"}, names(v.Snapshot().Rows))

	require.NoError(t, v.SetFilter("name", ""))
	assert.Len(t, v.State().Filters, 1)
	assert.Len(t, v.Snapshot().Rows, 6)
}

func TestView_FilterClampsPageIndex(t *testing.T) {
	v := NewView(samplePlaces(), testColumns(), 2)
	v.SetPageIndex(2)
	require.Equal(t, 2, v.Snapshot().PageIndex)

	require.NoError(t, v.SetFilter("name", "a"))
	page := v.Snapshot()
	assert.Equal(t, 1, page.PageIndex)
	assert.Equal(t, 2, page.PageCount)
	assert.Equal(t, []string{"Argentina"}, names(page.Rows))

	require.NoError(t, v.SetFilter("name", "zzz"))
	page = v.Snapshot()
	assert.Equal(t, 0, page.PageIndex)
	assert.Empty(t, page.Rows)
}

func TestView_SetPageIndexClamps(t *testing.T) {
	rows := []place{{name: "Zambia", population: 10}, {name: "Aruba", population: 5}}
	v := NewView(rows, testColumns(), 1)
	require.NoError(t, v.ToggleSort("name"))

	v.SetPageIndex(1)
	assert.Equal(t, []string{"Zambia"}, names(v.Snapshot().Rows))

	v.SetPageIndex(2)
	page := v.Snapshot()
	assert.Equal(t, 1, page.PageIndex)
	assert.Equal(t, []string{"Zambia"}, names(page.Rows))

	v.SetPageIndex(-4)
	assert.Equal(t, 0, v.Snapshot().PageIndex)
}

func TestView_SetPageSizeKeepsTopRow(t *testing.T) {
	rows := make([]place, 100)
	for i := range rows {
		rows[i] = place{name: "p", population: i}
	}
	v := NewView(rows, testColumns(), 10)
	v.SetPageIndex(3) // rows 30..39

	require.NoError(t, v.SetPageSize(15))
	page := v.Snapshot()
	assert.Equal(t, 2, page.PageIndex) // rows 30..44
	assert.Equal(t, 30, page.Rows[0].population)

	require.NoError(t, v.SetPageSize(100))
	assert.Equal(t, 0, v.Snapshot().PageIndex)

	assert.ErrorIs(t, v.SetPageSize(0), ErrInvalidPageSize)
	assert.Equal(t, 100, v.State().Pagination.PageSize)
}

func TestView_NextPrevious(t *testing.T) {
	v := NewView(samplePlaces(), testColumns(), 4)

	v.PreviousPage()
	assert.Equal(t, 0, v.Snapshot().PageIndex)

	v.NextPage()
	page := v.Snapshot()
	assert.Equal(t, 1, page.PageIndex)
	assert.True(t, page.CanPrevious)
	assert.False(t, page.CanNext)

	v.NextPage()
	assert.Equal(t, 1, v.Snapshot().PageIndex)

	v.PreviousPage()
	assert.Equal(t, 0, v.Snapshot().PageIndex)
}

func TestView_SnapshotColumns(t *testing.T) {
	v := NewView(samplePlaces(), testColumns(), 10)
	require.NoError(t, v.SetFilter("name", "b"))
	require.NoError(t, v.ToggleSort("population"))

	cols := v.Snapshot().Columns
	require.Len(t, cols, 4)
	assert.Equal(t, ColumnState{ID: "name", Header: "Name", Sortable: true, Filterable: true, Filter: "b"}, cols[0])
	assert.Equal(t, ColumnState{ID: "population", Header: "Population", Sortable: true, Sort: Descending}, cols[1])
	assert.Equal(t, ColumnState{ID: "tags", Header: "Tags"}, cols[3])
}

func TestView_DoesNotMutateRows(t *testing.T) {
	rows := samplePlaces()
	before := names(rows)

	v := NewView(rows, testColumns(), 2)
	require.NoError(t, v.ToggleSort("name"))
	require.NoError(t, v.SetFilter("name", "a"))

	assert.Equal(t, before, names(rows))
}

func TestView_ConcurrentMutators(t *testing.T) {
	v := NewView(samplePlaces(), testColumns(), 2)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 4 {
			case 0:
				_ = v.ToggleSort("name")
			case 1:
				v.NextPage()
			case 2:
				_ = v.SetFilter("name", "a")
			default:
				_ = v.Snapshot()
			}
		}(i)
	}
	wg.Wait()

	page := v.Snapshot()
	assert.GreaterOrEqual(t, page.PageIndex, 0)
	assert.LessOrEqual(t, page.PageIndex, max(page.PageCount-1, 0))
}

func TestNextSort(t *testing.T) {
	cols := testColumns()

	next, err := NextSort(cols, nil, "population")
	require.NoError(t, err)
	assert.Equal(t, &SortDescriptor{ColumnID: "population", Direction: Descending}, next)

	next, err = NextSort(cols, next, "population")
	require.NoError(t, err)
	assert.Equal(t, &SortDescriptor{ColumnID: "population", Direction: Ascending}, next)

	next, err = NextSort(cols, next, "population")
	require.NoError(t, err)
	assert.Nil(t, next)

	cur := &SortDescriptor{ColumnID: "name", Direction: Descending}
	next, err = NextSort(cols, cur, "tags")
	require.NoError(t, err)
	assert.Equal(t, cur, next)
	assert.NotSame(t, cur, next)

	_, err = NextSort(cols, nil, "nope")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}
