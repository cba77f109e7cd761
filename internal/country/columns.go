package country

import (
	"strings"

	"github.com/JonMunkholm/countrytable/internal/table"
	"github.com/dustin/go-humanize"
)

// Column ids.
const (
	ColName       = "name"
	ColCapital    = "capital"
	ColRegion     = "region"
	ColPopulation = "population"
	ColLanguages  = "languages"
)

// NoLanguages is shown when a record lists no languages.
const NoLanguages = "not available"

func commonName(r Record) string { return r.Name.Common }

// Columns returns the country table's column catalog.
//
// Only name and population sort. Name and region filter with a
// case-insensitive starts-with match. Population toggles descending first,
// like any numeric column.
func Columns() table.Columns[Record] {
	return table.Columns[Record]{
		{
			ID:         ColName,
			Header:     "Name",
			Accessor:   func(r Record) any { return r.Name.Common },
			Filter:     table.StartsWith(commonName),
			Compare:    table.TextCompare(commonName),
			Sortable:   true,
			Filterable: true,
		},
		{
			ID:       ColCapital,
			Header:   "Capital",
			Accessor: func(r Record) any { return r.Capital },
			Render:   Record.FirstCapital,
		},
		{
			ID:         ColRegion,
			Header:     "Region",
			Accessor:   func(r Record) any { return r.Region },
			Filter:     table.StartsWith(func(r Record) string { return r.Region }),
			Filterable: true,
		},
		{
			ID:            ColPopulation,
			Header:        "Population",
			Accessor:      func(r Record) any { return r.Population },
			Render:        func(r Record) string { return humanize.Comma(r.Population) },
			Compare:       table.CompareBy(func(r Record) int64 { return r.Population }),
			Sortable:      true,
			SortDescFirst: true,
		},
		{
			ID:       ColLanguages,
			Header:   "Languages",
			Accessor: func(r Record) any { return r.Languages },
			Render:   renderLanguages,
		},
	}
}

func renderLanguages(r Record) string {
	names := r.LanguageNames()
	if len(names) == 0 {
		return NoLanguages
	}
	return strings.Join(names, ", ")
}

// Row is the flat JSON form of a record as rendered in the table.
type Row struct {
	Name       string   `json:"name"`
	Capital    string   `json:"capital"`
	Region     string   `json:"region"`
	Population int64    `json:"population"`
	Languages  []string `json:"languages"`
}

// ToRow flattens a record for API responses.
func ToRow(r Record) Row {
	langs := r.LanguageNames()
	if langs == nil {
		langs = []string{}
	}
	return Row{
		Name:       r.Name.Common,
		Capital:    r.FirstCapital(),
		Region:     r.Region,
		Population: r.Population,
		Languages:  langs,
	}
}
