package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/JonMunkholm/countrytable/internal/core"
	"github.com/JonMunkholm/countrytable/internal/country"
	tbl "github.com/JonMunkholm/countrytable/internal/table"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Output formats of the show command.
const (
	formatTable    = "table"
	formatJSON     = "json"
	formatCSV      = "csv"
	formatMarkdown = "markdown"
)

var outputFormats = []string{formatTable, formatJSON, formatCSV, formatMarkdown}

func validFormat(f string) bool {
	return slices.Contains(outputFormats, f)
}

// pageOutput is the JSON form of a rendered page.
type pageOutput struct {
	Rows          []country.Row `json:"rows"`
	Page          int           `json:"page"`
	PageCount     int           `json:"pageCount"`
	PageSize      int           `json:"pageSize"`
	FilteredCount int           `json:"filteredCount"`
	TotalCount    int           `json:"totalCount"`
}

// renderPage writes one page in the requested format.
func renderPage(w io.Writer, format string, cols tbl.Columns[country.Record], page core.Page) error {
	switch format {
	case formatJSON:
		return renderJSON(w, page)
	case formatCSV:
		_, err := fmt.Fprintln(w, newWriter(cols, page, true).RenderCSV())
		return err
	case formatMarkdown:
		_, err := fmt.Fprintln(w, newWriter(cols, page, false).RenderMarkdown())
		return err
	default:
		return renderTable(w, cols, page)
	}
}

func renderTable(w io.Writer, cols tbl.Columns[country.Record], page core.Page) error {
	if len(page.Rows) == 0 {
		_, err := fmt.Fprintf(w, "(0 of %s countries)\n", humanize.Comma(int64(page.TotalCount)))
		return err
	}

	t := newWriter(cols, page, false)
	t.SetStyle(table.StyleLight)
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Page %d of %d (%s of %s countries)\n",
		page.PageIndex+1, page.PageCount,
		humanize.Comma(int64(page.FilteredCount)), humanize.Comma(int64(page.TotalCount)))
	return err
}

func renderJSON(w io.Writer, page core.Page) error {
	out := pageOutput{
		Rows:          make([]country.Row, len(page.Rows)),
		Page:          page.PageIndex + 1,
		PageCount:     page.PageCount,
		PageSize:      page.PageSize,
		FilteredCount: page.FilteredCount,
		TotalCount:    page.TotalCount,
	}
	for i, r := range page.Rows {
		out.Rows[i] = country.ToRow(r)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// newWriter fills a table writer with the page. With raw set, population is
// written as a plain number.
func newWriter(cols tbl.Columns[country.Record], page core.Page, raw bool) table.Writer {
	t := table.NewWriter()

	header := make(table.Row, len(cols))
	var configs []table.ColumnConfig
	for i, c := range cols {
		header[i] = c.Header
		if c.ID == country.ColPopulation {
			configs = append(configs, table.ColumnConfig{Number: i + 1, Align: text.AlignRight})
		}
	}
	t.AppendHeader(header)
	t.SetColumnConfigs(configs)

	for _, rec := range page.Rows {
		row := make(table.Row, len(cols))
		for i := range cols {
			if raw && cols[i].ID == country.ColPopulation {
				row[i] = rec.Population
				continue
			}
			row[i] = cols[i].Text(rec)
		}
		t.AppendRow(row)
	}
	return t
}
