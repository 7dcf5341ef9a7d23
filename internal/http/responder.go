package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/tablebook/internal/application"
	"github.com/example/tablebook/internal/booking"
)

var (
	errBadRequestBody    = errors.New("invalid request body")
	errInvalidBookingRef = errors.New("booking reference must be /{date}/{index}")
	errInvalidTableID    = errors.New("invalid table id")
	errMissingDate       = errors.New("date query parameter is required")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError translates the service error taxonomy into wire
// responses. Rejections carry a stable error_code so clients can branch
// without parsing messages.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	if errors.Is(err, application.ErrNotFound) {
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "resource not found"})
		return
	}

	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		RecordRejection(application.ErrorKind(err))
		r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{
			Message: "invalid input",
			Errors:  vErr.FieldErrors,
		})
		return
	}

	var noTable *booking.NoTableError
	if errors.As(err, &noTable) {
		RecordRejection(application.ErrorKind(err))
		r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{
			ErrorCode: "NO_TABLE_AVAILABLE",
			Message:   noTable.Error(),
		})
		return
	}

	var capErr *application.CapacityError
	if errors.As(err, &capErr) {
		RecordRejection(application.ErrorKind(err))
		r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{
			ErrorCode: "TABLE_TOO_SMALL",
			Message:   capErr.Error(),
		})
		return
	}

	var conflict *application.ConflictError
	if errors.As(err, &conflict) {
		RecordRejection(application.ErrorKind(err))
		r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{
			ErrorCode: "TABLE_OCCUPIED",
			Message:   conflict.Error(),
		})
		return
	}

	if errors.Is(err, booking.ErrInvalidTimeFormat) ||
		errors.Is(err, booking.ErrInvalidTimeValue) ||
		errors.Is(err, booking.ErrInvalidInterval) {
		RecordRejection(application.ErrorKind(err))
		r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Message: err.Error()})
		return
	}

	r.loggerFor(ctx).ErrorContext(ctx, "request failed", "error", err)
	r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "internal server error"})
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
