package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/tablebook/internal/application"
)

type tableService interface {
	ListTables(ctx context.Context) ([]application.Table, error)
	CreateTable(ctx context.Context, input application.TableInput) (application.Table, error)
	UpdateTable(ctx context.Context, input application.TableInput) (application.Table, error)
}

type TableHandler struct {
	service   tableService
	responder responder
	logger    *slog.Logger
}

func NewTableHandler(service tableService, logger *slog.Logger) *TableHandler {
	base := defaultLogger(logger)
	return &TableHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *TableHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "TableHandler", operation, attrs...)
}

func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	tables, err := h.service.ListTables(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listTablesResponse{Tables: toTableDTOs(tables)})
}

func (h *TableHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req tableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode table request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "table_id", req.ID)

	created, err := h.service.CreateTable(r.Context(), application.TableInput{
		ID:    req.ID,
		Name:  strings.TrimSpace(req.Name),
		Seats: req.Seats,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "table creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "table created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toTableDTO(created))
}

func (h *TableHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := TableIDFromContext(r.Context())
	if !ok || id <= 0 {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTableID)
		return
	}

	var req tableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "table_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode table update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "table_id", id)

	updated, err := h.service.UpdateTable(r.Context(), application.TableInput{
		ID:    id,
		Name:  strings.TrimSpace(req.Name),
		Seats: req.Seats,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "table update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "table updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toTableDTO(updated))
}

type tableRequest struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Seats int    `json:"seats"`
}

type listTablesResponse struct {
	Tables []tableDTO `json:"tables"`
}

type tableDTO struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Seats int    `json:"seats"`
}

func toTableDTO(table application.Table) tableDTO {
	return tableDTO{ID: table.ID, Name: table.Name, Seats: table.Seats}
}

func toTableDTOs(tables []application.Table) []tableDTO {
	out := make([]tableDTO, 0, len(tables))
	for _, table := range tables {
		out = append(out, toTableDTO(table))
	}
	return out
}
