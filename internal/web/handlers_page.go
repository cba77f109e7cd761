package web

import (
	"fmt"
	"net/http"

	"github.com/JonMunkholm/countrytable/internal/core"
	"github.com/JonMunkholm/countrytable/internal/country"
	"github.com/JonMunkholm/countrytable/internal/logging"
	"github.com/JonMunkholm/countrytable/internal/source"
	"github.com/JonMunkholm/countrytable/internal/table"
	"github.com/JonMunkholm/countrytable/internal/web/templates"
	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const pageTitle = "Countries data"

// handleIndex renders the table page for the state in the query string.
// While the dataset loads it shows a self-refreshing spinner; after a failed
// load it shows only the load error.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	switch s.service.DataStatus().Status {
	case source.StatusPending:
		s.render(w, r, http.StatusOK, templates.Loading())
		return
	case source.StatusFailed:
		s.render(w, r, http.StatusBadGateway, templates.LoadError())
		return
	}

	requested, err := s.parseTableState(r.URL.Query())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	page, st, err := s.service.Query(r.Context(), requested)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, templates.TablePage(s.tablePageData(page, st)))
}

// tablePageData builds the view model of the table page. Every control is a
// link carrying the full state that results from using it.
func (s *Server) tablePageData(page core.Page, st table.State) templates.TablePageData {
	cols := s.service.Columns()
	tcfg := s.service.TableConfig()
	def := tcfg.DefaultPageSize
	link := func(next table.State) string { return stateURL("/", next, def) }

	d := templates.TablePageData{
		Title:       pageTitle,
		PageNumber:  page.PageIndex + 1,
		PageCount:   page.PageCount,
		CanPrevious: page.CanPrevious,
		CanNext:     page.CanNext,
		Summary: fmt.Sprintf("%s of %s countries",
			humanize.Comma(int64(page.FilteredCount)), humanize.Comma(int64(page.TotalCount))),
	}

	for _, cs := range page.Columns {
		h := templates.HeaderCell{
			Label:    cs.Header,
			Sortable: cs.Sortable,
			Numeric:  cs.ID == country.ColPopulation,
		}
		switch cs.Sort {
		case table.Ascending:
			h.Indicator = " 🔼"
		case table.Descending:
			h.Indicator = " 🔽"
		}
		if cs.Sortable {
			next := st
			if sd, err := table.NextSort(cols, st.Sort, cs.ID); err == nil {
				next.Sort = sd
			}
			h.SortURL = link(next)
		}
		d.Headers = append(d.Headers, h)

		if cs.Filterable {
			d.Filters = append(d.Filters, templates.FilterInput{
				Name:        filterParam(cs.ID),
				Value:       cs.Filter,
				Placeholder: filterPlaceholder(cs),
			})
		}
	}

	// A filter submission starts over on the first page with the same
	// sort and size.
	carried := stateQuery(table.State{Sort: st.Sort, Pagination: table.Pagination{PageSize: st.Pagination.PageSize}}, def)
	for _, key := range []string{paramSort, paramDir, paramSize} {
		if v := carried.Get(key); v != "" {
			d.Hidden = append(d.Hidden, templates.Hidden{Name: key, Value: v})
		}
	}

	for _, rec := range page.Rows {
		row := make([]string, len(cols))
		for i := range cols {
			row[i] = cols[i].Text(rec)
		}
		d.Rows = append(d.Rows, row)
	}

	if page.CanPrevious {
		prev := st
		prev.Pagination.PageIndex--
		d.PrevURL = link(prev)
	}
	if page.CanNext {
		next := st
		next.Pagination.PageIndex++
		d.NextURL = link(next)
	}

	for _, size := range tcfg.PageSizeOptions {
		next := st
		next.Pagination = table.Pagination{
			PageSize:  size,
			PageIndex: st.Pagination.PageIndex * st.Pagination.PageSize / size,
		}
		d.PageSizes = append(d.PageSizes, templates.PageSizeOption{
			Size:   size,
			URL:    link(next),
			Active: size == st.Pagination.PageSize,
		})
	}

	return d
}

func filterPlaceholder(cs table.ColumnState) string {
	if cs.ID == country.ColName {
		return "search country name"
	}
	return "search " + cases.Lower(language.English).String(cs.Header)
}

// render writes an HTML component with the given status.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "error", err)
	}
}
