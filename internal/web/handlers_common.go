// Package web provides HTTP handlers for the country table.
// This file contains shared utilities and helper functions used across handlers.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/JonMunkholm/countrytable/internal/core"
	"github.com/JonMunkholm/countrytable/internal/country"
	"github.com/JonMunkholm/countrytable/internal/logging"
	"github.com/JonMunkholm/countrytable/internal/table"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// Query parameters of the URL-driven table.
const (
	paramSort = "sort"
	paramDir  = "dir"
	paramPage = "page" // 1-based
	paramSize = "size"
)

// filterParam returns the query key holding the filter of a column.
func filterParam(columnID string) string {
	return "filter[" + columnID + "]"
}

// parseTableState reads a table state from query parameters.
// Filters and sort must name known columns. Malformed page and size values
// fall back to the first page and the default size.
func (s *Server) parseTableState(q url.Values) (table.State, error) {
	cols := s.service.Columns()
	var st table.State

	for key := range q {
		if !strings.HasPrefix(key, "filter[") || !strings.HasSuffix(key, "]") {
			continue
		}
		id := key[len("filter[") : len(key)-1]
		if _, ok := cols.Lookup(id); !ok {
			return table.State{}, fmt.Errorf("filter %q: %w", id, table.ErrUnknownColumn)
		}
	}
	// Catalog order keeps the filter list deterministic.
	for _, c := range cols {
		if v := q.Get(filterParam(c.ID)); v != "" {
			st.Filters = st.Filters.Set(c.ID, v)
		}
	}

	if id := q.Get(paramSort); id != "" {
		first, err := table.NextSort(cols, nil, id)
		if err != nil {
			return table.State{}, err
		}
		if first != nil {
			if dir := q.Get(paramDir); dir != "" {
				first.Direction = table.ParseDirection(dir)
			}
			st.Sort = first
		}
	}

	if page, err := strconv.Atoi(q.Get(paramPage)); err == nil && page > 1 {
		st.Pagination.PageIndex = page - 1
	}
	if size, err := strconv.Atoi(q.Get(paramSize)); err == nil && size > 0 {
		st.Pagination.PageSize = size
	}
	return st, nil
}

// stateQuery encodes a state as query parameters. Defaults are omitted.
func stateQuery(st table.State, defaultSize int) url.Values {
	q := url.Values{}
	for _, f := range st.Filters {
		if f.Value != "" {
			q.Set(filterParam(f.ColumnID), f.Value)
		}
	}
	if st.Sort != nil {
		q.Set(paramSort, st.Sort.ColumnID)
		q.Set(paramDir, string(st.Sort.Direction))
	}
	if st.Pagination.PageIndex > 0 {
		q.Set(paramPage, strconv.Itoa(st.Pagination.PageIndex+1))
	}
	if st.Pagination.PageSize > 0 && st.Pagination.PageSize != defaultSize {
		q.Set(paramSize, strconv.Itoa(st.Pagination.PageSize))
	}
	return q
}

// stateURL returns path with st encoded in its query string.
func stateURL(path string, st table.State, defaultSize int) string {
	q := stateQuery(st, defaultSize)
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// pageResponse is the JSON form of one table page.
type pageResponse struct {
	Rows          []country.Row       `json:"rows"`
	PageIndex     int                 `json:"pageIndex"`
	PageCount     int                 `json:"pageCount"`
	PageSize      int                 `json:"pageSize"`
	FilteredCount int                 `json:"filteredCount"`
	TotalCount    int                 `json:"totalCount"`
	CanPrevious   bool                `json:"canPrevious"`
	CanNext       bool                `json:"canNext"`
	Columns       []table.ColumnState `json:"columns"`
}

// viewResponse is the JSON form of a stateful view.
type viewResponse struct {
	ID   string       `json:"id"`
	Page pageResponse `json:"page"`
}

func toPageResponse(p core.Page) pageResponse {
	rows := make([]country.Row, len(p.Rows))
	for i, r := range p.Rows {
		rows[i] = country.ToRow(r)
	}
	return pageResponse{
		Rows:          rows,
		PageIndex:     p.PageIndex,
		PageCount:     p.PageCount,
		PageSize:      p.PageSize,
		FilteredCount: p.FilteredCount,
		TotalCount:    p.TotalCount,
		CanPrevious:   p.CanPrevious,
		CanNext:       p.CanNext,
		Columns:       p.Columns,
	}
}

// decodeJSON decodes a JSON request body into v. An empty body is an error
// unless optional is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return nil
}

// writeJSON encodes v as JSON and writes it with the given status.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
