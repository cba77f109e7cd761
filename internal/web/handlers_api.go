package web

import (
	"net/http"

	"github.com/JonMunkholm/countrytable/internal/core"
	"github.com/JonMunkholm/countrytable/internal/source"
	"github.com/go-chi/chi/v5"
)

// handleHealth reports the dataset load. Ready answers 200, pending and
// failed answer 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ds := s.service.DataStatus()
	resp := map[string]any{
		"status":      ds.Status.String(),
		"countries":   ds.Count,
		"activeViews": s.service.ActiveViews(),
	}
	status := http.StatusOK
	if ds.Status != source.StatusReady {
		status = http.StatusServiceUnavailable
	}
	if ds.Err != nil {
		resp["error"] = core.MapError(core.ErrDataUnavailable).Message
	}
	writeJSON(w, r, status, resp)
}

// handleCountries evaluates the state in the query string and returns the
// page as JSON.
func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	st, err := s.parseTableState(r.URL.Query())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	page, _, err := s.service.Query(r.Context(), st)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toPageResponse(page))
}

// handleCreateView creates a stateful view. The body is optional:
// {"pageSize": 15}.
func (s *Server) handleCreateView(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PageSize int `json:"pageSize"`
	}
	if err := decodeJSON(w, r, &req, true); err != nil {
		s.fail(w, r, err)
		return
	}

	id, page, err := s.service.CreateView(r.Context(), req.PageSize)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/views/"+id)
	writeJSON(w, r, http.StatusCreated, viewResponse{ID: id, Page: toPageResponse(page)})
}

// handleGetView returns the current page of a view.
func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "viewID")
	page, err := s.service.View(r.Context(), id)
	s.respondView(w, r, id, page, err)
}

// handleCloseView discards a view.
func (s *Server) handleCloseView(w http.ResponseWriter, r *http.Request) {
	if err := s.service.CloseView(r.Context(), chi.URLParam(r, "viewID")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSetFilter sets one column filter: {"value": "a"}. An empty value
// clears the filter.
func (s *Server) handleSetFilter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value *string `json:"value"`
	}
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Value == nil {
		s.fail(w, r, errMissingField("value"))
		return
	}

	id := chi.URLParam(r, "viewID")
	page, err := s.service.SetFilter(r.Context(), id, chi.URLParam(r, "columnID"), *req.Value)
	s.respondView(w, r, id, page, err)
}

// handleToggleSort advances the sort cycle of one column.
func (s *Server) handleToggleSort(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "viewID")
	page, err := s.service.ToggleSort(r.Context(), id, chi.URLParam(r, "columnID"))
	s.respondView(w, r, id, page, err)
}

// handleSetPageIndex jumps to a zero-based page: {"pageIndex": 2}.
func (s *Server) handleSetPageIndex(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PageIndex *int `json:"pageIndex"`
	}
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.PageIndex == nil {
		s.fail(w, r, errMissingField("pageIndex"))
		return
	}

	id := chi.URLParam(r, "viewID")
	page, err := s.service.SetPageIndex(r.Context(), id, *req.PageIndex)
	s.respondView(w, r, id, page, err)
}

// handleSetPageSize changes the page size: {"pageSize": 50}.
func (s *Server) handleSetPageSize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PageSize *int `json:"pageSize"`
	}
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.PageSize == nil {
		s.fail(w, r, errMissingField("pageSize"))
		return
	}

	id := chi.URLParam(r, "viewID")
	page, err := s.service.SetPageSize(r.Context(), id, *req.PageSize)
	s.respondView(w, r, id, page, err)
}

// handleNextPage advances one page.
func (s *Server) handleNextPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "viewID")
	page, err := s.service.NextPage(r.Context(), id)
	s.respondView(w, r, id, page, err)
}

// handlePreviousPage goes back one page.
func (s *Server) handlePreviousPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "viewID")
	page, err := s.service.PreviousPage(r.Context(), id)
	s.respondView(w, r, id, page, err)
}

// respondView writes a view page or the error that prevented it.
func (s *Server) respondView(w http.ResponseWriter, r *http.Request, id string, page core.Page, err error) {
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, viewResponse{ID: id, Page: toPageResponse(page)})
}
