package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gridline-labs/gridline/internal/engine"
	"github.com/gridline-labs/gridline/pkg/grid"
)

// --- Table handlers ---

type createTableRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateTable(w http.ResponseWriter, r *http.Request) {
	var req createTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, badRequest("invalid request body"))
		return
	}
	if req.Name == "" {
		s.respondError(w, r, badRequest("name is required"))
		return
	}

	table, err := s.engine.CreateTable(r.Context(), req.Name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, table)
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.engine.ListTables(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, tables)
}

func (s *Server) handleDeleteTable(w http.ResponseWriter, r *http.Request) {
	tableID := chi.URLParam(r, "tableID")
	if err := s.authorize(r, tableID); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.engine.DeleteTable(r.Context(), tableID); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Field handlers ---

type createFieldRequest struct {
	Name string         `json:"name"`
	Type grid.FieldType `json:"type"`
}

func (s *Server) handleCreateField(w http.ResponseWriter, r *http.Request) {
	tableID := chi.URLParam(r, "tableID")
	if err := s.authorize(r, tableID); err != nil {
		s.respondError(w, r, err)
		return
	}

	var req createFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, badRequest("invalid request body"))
		return
	}
	if req.Name == "" {
		s.respondError(w, r, badRequest("name is required"))
		return
	}

	field, err := s.engine.CreateField(r.Context(), tableID, req.Name, req.Type)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, field)
}

func (s *Server) handleListFields(w http.ResponseWriter, r *http.Request) {
	tableID := chi.URLParam(r, "tableID")
	fields, err := s.engine.ListFields(r.Context(), tableID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, fields)
}

func (s *Server) handleDeleteField(w http.ResponseWriter, r *http.Request) {
	fieldID := chi.URLParam(r, "fieldID")
	if err := s.authorize(r, fieldID); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.engine.DeleteField(r.Context(), fieldID); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Record handlers ---

type createRecordRequest struct {
	Cells map[string]any `json:"cells"`
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	tableID := chi.URLParam(r, "tableID")
	if err := s.authorize(r, tableID); err != nil {
		s.respondError(w, r, err)
		return
	}

	var req createRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, badRequest("invalid request body"))
		return
	}

	record, err := s.engine.CreateRecord(r.Context(), tableID, req.Cells)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]any{
		"id":        record.ID,
		"tableId":   record.TableID,
		"createdAt": record.CreatedAt,
	})
}

type bulkCreateRequest struct {
	Rows []map[string]any `json:"rows"`
}

func (s *Server) handleBulkCreateRecords(w http.ResponseWriter, r *http.Request) {
	tableID := chi.URLParam(r, "tableID")
	if err := s.authorize(r, tableID); err != nil {
		s.respondError(w, r, err)
		return
	}

	var req bulkCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, badRequest("invalid request body"))
		return
	}

	ids, err := s.engine.BulkCreateRecords(r.Context(), tableID, req.Rows)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]any{
		"ids":   ids,
		"count": len(ids),
	})
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "recordID")
	if err := s.authorize(r, recordID); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.engine.DeleteRecord(r.Context(), recordID); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Cell handlers ---

type upsertCellRequest struct {
	Value any `json:"value"`
}

func (s *Server) handleUpsertCell(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "recordID")
	fieldID := chi.URLParam(r, "fieldID")
	if err := s.authorize(r, recordID); err != nil {
		s.respondError(w, r, err)
		return
	}

	var req upsertCellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, badRequest("invalid request body"))
		return
	}

	cell, err := s.engine.UpsertCell(r.Context(), recordID, fieldID, req.Value)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"recordId": cell.RecordID,
		"fieldId":  cell.FieldID,
		"value":    cell.Value.Native(),
	})
}

// --- Query handlers ---

type queryRequest struct {
	ViewID  string        `json:"viewId"`
	Filters []grid.Filter `json:"filters"`
	Sorts   []grid.Sort   `json:"sorts"`
	Search  string        `json:"search"`
	Limit   int           `json:"limit"`
	Cursor  string        `json:"cursor"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	tableID := chi.URLParam(r, "tableID")
	if err := s.authorize(r, tableID); err != nil {
		s.respondError(w, r, err)
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, badRequest("invalid request body"))
		return
	}

	page, err := s.engine.ListPage(r.Context(), tableID, grid.ListOptions{
		ViewID:  req.ViewID,
		Filters: req.Filters,
		Sorts:   req.Sorts,
		Search:  req.Search,
		Limit:   req.Limit,
		Cursor:  req.Cursor,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, page)
}

// handleListRows is the GET form of the page query: view, search,
// limit, and cursor only. Ad-hoc filters and sorts go through the
// POST query endpoint.
func (s *Server) handleListRows(w http.ResponseWriter, r *http.Request) {
	tableID := chi.URLParam(r, "tableID")
	if err := s.authorize(r, tableID); err != nil {
		s.respondError(w, r, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(w, r, badRequest("limit must be an integer"))
			return
		}
		limit = n
	}

	page, err := s.engine.ListPage(r.Context(), tableID, grid.ListOptions{
		ViewID: r.URL.Query().Get("viewId"),
		Search: r.URL.Query().Get("search"),
		Limit:  limit,
		Cursor: r.URL.Query().Get("cursor"),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, page)
}

// --- View handlers ---

type createViewRequest struct {
	Name           string        `json:"name"`
	Filters        []grid.Filter `json:"filters"`
	Sorts          []grid.Sort   `json:"sorts"`
	HiddenFieldIDs []string      `json:"hiddenFieldIds"`
	IsDefault      bool          `json:"isDefault"`
}

func (s *Server) handleCreateView(w http.ResponseWriter, r *http.Request) {
	tableID := chi.URLParam(r, "tableID")
	if err := s.authorize(r, tableID); err != nil {
		s.respondError(w, r, err)
		return
	}

	var req createViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, badRequest("invalid request body"))
		return
	}
	if req.Name == "" {
		s.respondError(w, r, badRequest("name is required"))
		return
	}

	view, err := s.engine.CreateView(r.Context(), tableID, engine.CreateViewParams{
		Name:           req.Name,
		Filters:        req.Filters,
		Sorts:          req.Sorts,
		HiddenFieldIDs: req.HiddenFieldIDs,
		IsDefault:      req.IsDefault,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, view)
}

func (s *Server) handleListViews(w http.ResponseWriter, r *http.Request) {
	tableID := chi.URLParam(r, "tableID")
	views, err := s.engine.ListViews(r.Context(), tableID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	view, err := s.engine.GetView(r.Context(), chi.URLParam(r, "viewID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, view)
}

type updateViewRequest struct {
	Name           *string        `json:"name"`
	IsDefault      *bool          `json:"isDefault"`
	HiddenFieldIDs *[]string      `json:"hiddenFieldIds"`
	Filters        *[]grid.Filter `json:"filters"`
	Sorts          *[]grid.Sort   `json:"sorts"`
}

func (s *Server) handleUpdateView(w http.ResponseWriter, r *http.Request) {
	viewID := chi.URLParam(r, "viewID")
	if err := s.authorize(r, viewID); err != nil {
		s.respondError(w, r, err)
		return
	}

	var req updateViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, badRequest("invalid request body"))
		return
	}

	view, err := s.engine.UpdateView(r.Context(), viewID, grid.ViewPatch{
		Name:           req.Name,
		IsDefault:      req.IsDefault,
		HiddenFieldIDs: req.HiddenFieldIDs,
		Filters:        req.Filters,
		Sorts:          req.Sorts,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleDeleteView(w http.ResponseWriter, r *http.Request) {
	viewID := chi.URLParam(r, "viewID")
	if err := s.authorize(r, viewID); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.engine.DeleteView(r.Context(), viewID); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetDefaultView(w http.ResponseWriter, r *http.Request) {
	viewID := chi.URLParam(r, "viewID")
	if err := s.authorize(r, viewID); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.engine.SetDefaultView(r.Context(), viewID); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Response helpers ---

type apiError struct {
	status  int
	message string
}

func (e apiError) Error() string { return e.message }

func badRequest(msg string) error {
	return apiError{status: http.StatusBadRequest, message: msg}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// respondError maps the error taxonomy onto HTTP statuses.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	var apiErr apiError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.status
	case errors.Is(err, grid.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, grid.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, grid.ErrInvalidReference),
		errors.Is(err, grid.ErrInvalidOperator),
		errors.Is(err, grid.ErrLastViewDeletion),
		errors.Is(err, grid.ErrInvalidCursor):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	s.respondJSON(w, status, map[string]string{"error": err.Error()})
}
