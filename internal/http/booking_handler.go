package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/tablebook/internal/application"
	"github.com/example/tablebook/internal/booking"
)

type bookingService interface {
	ListBookings(ctx context.Context, date string) ([]application.Booking, error)
	GetBooking(ctx context.Context, date string, index int) (application.Booking, error)
	CreateBooking(ctx context.Context, input application.CreateBookingInput) (application.Booking, application.Table, error)
	MoveToTable(ctx context.Context, date string, index, newTableID int) error
	SwapTables(ctx context.Context, date string, index1, index2 int) error
	EditBooking(ctx context.Context, date string, index int, input application.EditBookingInput) (application.Booking, error)
	DeleteBooking(ctx context.Context, date string, index int) error
	AvailableTimes(ctx context.Context, date string, partySize, durationMinutes int) ([]string, error)
}

type BookingHandler struct {
	service   bookingService
	responder responder
	logger    *slog.Logger
}

func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	base := defaultLogger(logger)
	return &BookingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BookingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BookingHandler", operation, attrs...)
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingDate)
		return
	}

	bookings, err := h.service.ListBookings(r.Context(), date)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listBookingsResponse{
		Date:     date,
		Bookings: toBookingDTOs(bookings),
	})
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "date", req.Date)

	created, table, err := h.service.CreateBooking(r.Context(), application.CreateBookingInput{
		Date:            strings.TrimSpace(req.Date),
		Name:            req.Name,
		PartySize:       req.PartySize,
		StartTime:       strings.TrimSpace(req.StartTime),
		EndTime:         strings.TrimSpace(req.EndTime),
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "booking creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	RecordBookingCreated()

	logger.With("table_id", table.ID).InfoContext(r.Context(), "booking created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, createBookingResponse{
		Booking: toBookingDTO(created, -1),
		Table:   toTableDTO(table),
	})
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ref, ok := BookingRefFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingRef)
		return
	}

	found, err := h.service.GetBooking(r.Context(), ref.Date, ref.Index)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toBookingDTO(found, ref.Index))
}

func (h *BookingHandler) Move(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req moveBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Move", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode move request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Move", "date", req.Date, "booking_index", req.BookingIndex, "new_table_id", req.NewTableID)

	if err := h.service.MoveToTable(r.Context(), strings.TrimSpace(req.Date), req.BookingIndex, req.NewTableID); err != nil {
		logger.ErrorContext(r.Context(), "booking move failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "booking moved")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, statusResponse{Status: "ok"})
}

func (h *BookingHandler) Swap(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req swapBookingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Swap", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode swap request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Swap", "date", req.Date, "booking_index_1", req.BookingIndex1, "booking_index_2", req.BookingIndex2)

	if err := h.service.SwapTables(r.Context(), strings.TrimSpace(req.Date), req.BookingIndex1, req.BookingIndex2); err != nil {
		logger.ErrorContext(r.Context(), "booking swap failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "bookings swapped")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, statusResponse{Status: "ok"})
}

func (h *BookingHandler) Edit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ref, ok := BookingRefFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingRef)
		return
	}

	var req editBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Edit", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode edit request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Edit", "date", ref.Date, "booking_index", ref.Index)

	edited, err := h.service.EditBooking(r.Context(), ref.Date, ref.Index, application.EditBookingInput{
		Name:            req.Name,
		PartySize:       req.PartySize,
		Date:            req.Date,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationMinutes: req.DurationMinutes,
		TableID:         req.TableID,
		Notes:           req.Notes,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "booking edit failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "booking updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toBookingDTO(edited, -1))
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ref, ok := BookingRefFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingRef)
		return
	}

	logger := h.log(r.Context(), "Delete", "date", ref.Date, "booking_index", ref.Index)

	if err := h.service.DeleteBooking(r.Context(), ref.Date, ref.Index); err != nil {
		logger.ErrorContext(r.Context(), "booking cancellation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	RecordBookingCancelled()

	logger.InfoContext(r.Context(), "booking cancelled")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, statusResponse{Status: "ok"})
}

func (h *BookingHandler) AvailableTimes(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	date := strings.TrimSpace(query.Get("date"))
	if date == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingDate)
		return
	}

	partySize, _ := strconv.Atoi(query.Get("party_size"))
	durationMinutes := 0
	if raw := strings.TrimSpace(query.Get("duration_minutes")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.responder.writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{
				Message: "invalid input",
				Errors:  map[string]string{"duration_minutes": "duration must be positive"},
			})
			return
		}
		durationMinutes = parsed
	}

	times, err := h.service.AvailableTimes(r.Context(), date, partySize, durationMinutes)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, availableTimesResponse{
		Date:      date,
		PartySize: partySize,
		Times:     times,
	})
}

type createBookingRequest struct {
	Date            string `json:"date"`
	Name            string `json:"name"`
	PartySize       int    `json:"party_size"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	DurationMinutes int    `json:"duration_minutes"`
	Notes           string `json:"notes"`
}

type moveBookingRequest struct {
	Date         string `json:"date"`
	BookingIndex int    `json:"booking_index"`
	NewTableID   int    `json:"new_table_id"`
}

type swapBookingsRequest struct {
	Date          string `json:"date"`
	BookingIndex1 int    `json:"booking_index_1"`
	BookingIndex2 int    `json:"booking_index_2"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type editBookingRequest struct {
	Name            *string `json:"name"`
	PartySize       *int    `json:"party_size"`
	Date            *string `json:"date"`
	StartTime       *string `json:"start_time"`
	EndTime         *string `json:"end_time"`
	DurationMinutes *int    `json:"duration_minutes"`
	TableID         *int    `json:"table_id"`
	Notes           *string `json:"notes"`
}

type createBookingResponse struct {
	Booking bookingDTO `json:"booking"`
	Table   tableDTO   `json:"table"`
}

type listBookingsResponse struct {
	Date     string       `json:"date"`
	Bookings []bookingDTO `json:"bookings"`
}

type availableTimesResponse struct {
	Date      string   `json:"date"`
	PartySize int      `json:"party_size"`
	Times     []string `json:"times"`
}

type bookingDTO struct {
	Index     *int   `json:"index,omitempty"`
	Date      string `json:"date"`
	Name      string `json:"name"`
	PartySize int    `json:"party_size"`
	TableID   int    `json:"table_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// toBookingDTO renders a booking; a negative index means the position within
// the date's collection is not part of the response.
func toBookingDTO(b application.Booking, index int) bookingDTO {
	dto := bookingDTO{
		Date:      b.Date,
		Name:      b.Name,
		PartySize: b.PartySize,
		TableID:   b.TableID,
		StartTime: clockText(b.Start),
		EndTime:   clockText(b.End),
		Notes:     b.Notes,
	}
	if !b.CreatedAt.IsZero() {
		dto.CreatedAt = b.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	if !b.UpdatedAt.IsZero() {
		dto.UpdatedAt = b.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	if index >= 0 {
		dto.Index = &index
	}
	return dto
}

func toBookingDTOs(bookings []application.Booking) []bookingDTO {
	out := make([]bookingDTO, 0, len(bookings))
	for i, b := range bookings {
		out = append(out, toBookingDTO(b, i))
	}
	return out
}

// clockText renders a minute offset for the wire. A booking may end exactly
// at midnight, one past the last representable clock value.
func clockText(m booking.Minutes) string {
	if m == booking.MinutesPerDay {
		return "24:00"
	}
	if text, err := booking.FormatClock(m); err == nil {
		return text
	}
	return m.String()
}
