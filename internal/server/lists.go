package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/adminlist/internal/dataprovider"
	"github.com/HerbHall/adminlist/internal/listcontroller"
	"github.com/HerbHall/adminlist/internal/listparams"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

type sortRequest struct {
	Field string `json:"field"`
	Order string `json:"order"`
}

type createListRequest struct {
	Resource            string            `json:"resource"`
	Filter              listparams.Filter `json:"filter"`
	FilterDefaultValues listparams.Filter `json:"filterDefaultValues"`
	PerPage             int               `json:"perPage"`
	Sort                *sortRequest      `json:"sort"`
	// Debounce is a Go duration string such as "300ms"; "-1ms" disables it.
	Debounce string `json:"debounce"`
	Location string `json:"location"`
}

type listResponse struct {
	ID string `json:"id"`
	listcontroller.View
}

type pageRequest struct {
	Page int `json:"page"`
}

type perPageRequest struct {
	PerPage int `json:"perPage"`
}

type filtersRequest struct {
	Filter           listparams.Filter `json:"filter"`
	DisplayedFilters map[string]bool   `json:"displayedFilters"`
	// Flush applies the change now instead of after the debounce delay.
	Flush bool `json:"flush"`
}

type showFilterRequest struct {
	DefaultValue any `json:"defaultValue"`
}

type selectRequest struct {
	IDs []any `json:"ids"`
}

type toggleRequest struct {
	ID any `json:"id"`
}

// handleListSessions lists the open lists.
//
//	@Summary		List open lists
//	@Tags			lists
//	@Produce		json
//	@Success		200 {array} SessionInfo
//	@Router			/lists [get]
func (s *Server) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sessions.All())
}

// handleCreateList opens a list and returns its first page.
//
//	@Summary		Open a list
//	@Description	Opens a list on a resource and waits for its first fetch. Settings left out fall back to the server defaults.
//	@Tags			lists
//	@Accept			json
//	@Produce		json
//	@Param			request body createListRequest true "List settings"
//	@Success		201 {object} listResponse
//	@Failure		400 {object} Problem
//	@Router			/lists [post]
func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	var req createListRequest
	if !decodeBody(w, r, &req) {
		return
	}

	cfg := listcontroller.Config{
		Resource:            req.Resource,
		Filter:              req.Filter,
		FilterDefaultValues: req.FilterDefaultValues,
		PerPage:             req.PerPage,
		Sort:                s.deps.Defaults.Sort,
		Debounce:            s.deps.Defaults.Debounce,
		PerPagePolicy:       s.deps.Defaults.PerPagePolicy,
		Location:            req.Location,
		FetchTimeout:        s.deps.Defaults.FetchTimeout,
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = s.deps.Defaults.PerPage
	}
	if req.Sort != nil && req.Sort.Field != "" {
		order, err := parseOrder(req.Sort.Order)
		if err != nil {
			BadRequest(w, err.Error(), r.URL.Path)
			return
		}
		cfg.Sort = listparams.Sort{Field: req.Sort.Field, Order: order}
	}
	if req.Debounce != "" {
		d, err := time.ParseDuration(req.Debounce)
		if err != nil {
			BadRequest(w, fmt.Sprintf("invalid debounce %q: %v", req.Debounce, err), r.URL.Path)
			return
		}
		cfg.Debounce = d
	}

	c, err := listcontroller.New(cfg, listcontroller.Deps{
		Provider:    s.deps.Provider,
		Snapshot:    s.deps.Snapshot,
		ParamsStore: s.deps.ParamsStore,
		Notifier:    s.notifier,
		Selections:  s.deps.Selections,
		Metrics:     s.deps.Metrics,
		Logger:      s.logger,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	id := s.sessions.Add(c)

	if err := c.Wait(r.Context()); err != nil {
		s.logger.Debug("client left before first fetch", zap.String("id", id), zap.Error(err))
		_ = s.sessions.Remove(id)
		return
	}
	writeJSON(w, http.StatusCreated, listResponse{ID: id, View: c.View()})
}

//	@Summary		Get a list
//	@Tags			lists
//	@Produce		json
//	@Param			id path string true "List ID"
//	@Success		200 {object} listResponse
//	@Failure		404 {object} Problem
//	@Router			/lists/{id} [get]
func (s *Server) handleGetList(w http.ResponseWriter, r *http.Request) {
	s.withList(w, r, func(*listcontroller.Controller) error { return nil })
}

//	@Summary		Close a list
//	@Tags			lists
//	@Param			id path string true "List ID"
//	@Success		204
//	@Failure		404 {object} Problem
//	@Router			/lists/{id} [delete]
func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Remove(r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

//	@Summary		Change page
//	@Tags			lists
//	@Accept			json
//	@Produce		json
//	@Param			id path string true "List ID"
//	@Param			request body pageRequest true "Page"
//	@Success		200 {object} listResponse
//	@Failure		400 {object} Problem
//	@Failure		404 {object} Problem
//	@Router			/lists/{id}/page [put]
func (s *Server) handleSetPage(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.withList(w, r, func(c *listcontroller.Controller) error {
		c.SetPage(req.Page)
		return nil
	})
}

//	@Summary		Change page size
//	@Tags			lists
//	@Accept			json
//	@Produce		json
//	@Param			id path string true "List ID"
//	@Param			request body perPageRequest true "Page size"
//	@Success		200 {object} listResponse
//	@Failure		400 {object} Problem
//	@Failure		404 {object} Problem
//	@Router			/lists/{id}/per-page [put]
func (s *Server) handleSetPerPage(w http.ResponseWriter, r *http.Request) {
	var req perPageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.PerPage <= 0 {
		BadRequest(w, "perPage must be greater than zero", r.URL.Path)
		return
	}
	s.withList(w, r, func(c *listcontroller.Controller) error {
		c.SetPerPage(req.PerPage)
		return nil
	})
}

//	@Summary		Change sort
//	@Tags			lists
//	@Accept			json
//	@Produce		json
//	@Param			id path string true "List ID"
//	@Param			request body sortRequest true "Sort field and order"
//	@Success		200 {object} listResponse
//	@Failure		400 {object} Problem
//	@Failure		404 {object} Problem
//	@Router			/lists/{id}/sort [put]
func (s *Server) handleSetSort(w http.ResponseWriter, r *http.Request) {
	var req sortRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Field == "" {
		BadRequest(w, "field is required", r.URL.Path)
		return
	}
	order, err := parseOrder(req.Order)
	if err != nil {
		BadRequest(w, err.Error(), r.URL.Path)
		return
	}
	s.withList(w, r, func(c *listcontroller.Controller) error {
		c.SetSort(req.Field, order)
		return nil
	})
}

// handleSetFilters replaces the filter values. The change is debounced unless
// flush is set.
//
//	@Summary		Change filters
//	@Tags			filters
//	@Accept			json
//	@Produce		json
//	@Param			id path string true "List ID"
//	@Param			request body filtersRequest true "Filter values"
//	@Success		200 {object} listResponse
//	@Failure		404 {object} Problem
//	@Router			/lists/{id}/filters [put]
func (s *Server) handleSetFilters(w http.ResponseWriter, r *http.Request) {
	var req filtersRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.withList(w, r, func(c *listcontroller.Controller) error {
		c.SetFilters(req.Filter, req.DisplayedFilters)
		if req.Flush {
			c.FlushFilters()
		}
		return nil
	})
}

// Showing or hiding one filter is a discrete action, so it is applied
// immediately.
//
//	@Summary		Show a filter
//	@Tags			filters
//	@Accept			json
//	@Produce		json
//	@Param			id path string true "List ID"
//	@Param			name path string true "Filter name"
//	@Param			request body showFilterRequest false "Initial value"
//	@Success		200 {object} listResponse
//	@Failure		404 {object} Problem
//	@Router			/lists/{id}/filters/{name} [put]
func (s *Server) handleShowFilter(w http.ResponseWriter, r *http.Request) {
	var req showFilterRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}
	name := r.PathValue("name")
	s.withList(w, r, func(c *listcontroller.Controller) error {
		c.ShowFilter(name, req.DefaultValue)
		c.FlushFilters()
		return nil
	})
}

//	@Summary		Hide a filter
//	@Tags			filters
//	@Produce		json
//	@Param			id path string true "List ID"
//	@Param			name path string true "Filter name"
//	@Success		200 {object} listResponse
//	@Failure		404 {object} Problem
//	@Router			/lists/{id}/filters/{name} [delete]
func (s *Server) handleHideFilter(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	s.withList(w, r, func(c *listcontroller.Controller) error {
		c.HideFilter(name)
		c.FlushFilters()
		return nil
	})
}

type locationBody struct {
	Search string `json:"search"`
}

//	@Summary		Get the URL search string
//	@Tags			location
//	@Produce		json
//	@Param			id path string true "List ID"
//	@Success		200 {object} locationBody
//	@Failure		404 {object} Problem
//	@Router			/lists/{id}/location [get]
func (s *Server) handleGetLocation(w http.ResponseWriter, r *http.Request) {
	c, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, locationBody{Search: c.Location()})
}

//	@Summary		Sync from a URL search string
//	@Tags			location
//	@Accept			json
//	@Produce		json
//	@Param			id path string true "List ID"
//	@Param			request body locationBody true "Search string"
//	@Success		200 {object} listResponse
//	@Failure		404 {object} Problem
//	@Router			/lists/{id}/location [put]
func (s *Server) handleSetLocation(w http.ResponseWriter, r *http.Request) {
	var req locationBody
	if !decodeBody(w, r, &req) {
		return
	}
	s.withList(w, r, func(c *listcontroller.Controller) error {
		c.SyncLocation(req.Search)
		return nil
	})
}

//	@Summary		Select records
//	@Tags			selection
//	@Accept			json
//	@Produce		json
//	@Param			id path string true "List ID"
//	@Param			request body selectRequest true "Record ids"
//	@Success		200 {object} listResponse
//	@Failure		404 {object} Problem
//	@Router			/lists/{id}/selection [put]
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ids := make([]dataprovider.Identifier, 0, len(req.IDs))
	for _, v := range req.IDs {
		ids = append(ids, dataprovider.ToIdentifier(v))
	}
	s.withList(w, r, func(c *listcontroller.Controller) error {
		c.Select(ids)
		return nil
	})
}

//	@Summary		Toggle one record
//	@Tags			selection
//	@Accept			json
//	@Produce		json
//	@Param			id path string true "List ID"
//	@Param			request body toggleRequest true "Record id"
//	@Success		200 {object} listResponse
//	@Failure		400 {object} Problem
//	@Failure		404 {object} Problem
//	@Router			/lists/{id}/selection/toggle [post]
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	id := dataprovider.ToIdentifier(req.ID)
	if id == "" {
		BadRequest(w, "id is required", r.URL.Path)
		return
	}
	s.withList(w, r, func(c *listcontroller.Controller) error {
		c.Toggle(id)
		return nil
	})
}

//	@Summary		Clear the selection
//	@Tags			selection
//	@Produce		json
//	@Param			id path string true "List ID"
//	@Success		200 {object} listResponse
//	@Failure		404 {object} Problem
//	@Router			/lists/{id}/selection [delete]
func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	s.withList(w, r, func(c *listcontroller.Controller) error {
		c.ClearSelection()
		return nil
	})
}

//	@Summary		Refetch the current page
//	@Tags			lists
//	@Produce		json
//	@Param			id path string true "List ID"
//	@Success		200 {object} listResponse
//	@Failure		404 {object} Problem
//	@Router			/lists/{id}/refresh [post]
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.withList(w, r, func(c *listcontroller.Controller) error {
		return c.Refresh(r.Context())
	})
}

// handleExport streams every matching record as CSV.
//
//	@Summary		Export records
//	@Tags			lists
//	@Produce		text/csv
//	@Param			id path string true "List ID"
//	@Success		200 {string} string "CSV"
//	@Failure		404 {object} Problem
//	@Failure		502 {object} Problem
//	@Router			/lists/{id}/export [get]
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	c, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Buffer so a provider failure can still be reported as a problem.
	var buf strings.Builder
	if err := c.Export(r.Context(), &buf); err != nil {
		s.logger.Warn("export failed", zap.String("resource", c.Resource()), zap.Error(err))
		BadGateway(w, err.Error(), r.URL.Path)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, c.Resource()))
	_, _ = io.WriteString(w, buf.String())
}

// withList looks up the list named in the path, applies fn, waits for the
// resulting fetch and writes the list view.
func (s *Server) withList(w http.ResponseWriter, r *http.Request, fn func(*listcontroller.Controller) error) {
	id := r.PathValue("id")
	c, err := s.sessions.Get(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := fn(c); err != nil {
		writeError(w, r, err)
		return
	}
	if err := c.Wait(r.Context()); err != nil {
		return
	}
	writeJSON(w, http.StatusOK, listResponse{ID: id, View: c.View()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			BadRequest(w, "request body is required", r.URL.Path)
		} else {
			BadRequest(w, "invalid JSON body: "+err.Error(), r.URL.Path)
		}
		return false
	}
	return true
}

func parseOrder(s string) (listparams.Order, error) {
	if s == "" {
		return "", nil
	}
	o := listparams.Order(strings.ToUpper(s))
	if !o.Valid() {
		return "", fmt.Errorf("invalid sort order %q, want ASC or DESC", s)
	}
	return o, nil
}
