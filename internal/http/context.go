package http

import (
	"context"
	"log/slog"

	"github.com/example/tablebook/internal/logging"
)

type contextKey string

const (
	bookingRefContextKey contextKey = "booking_ref"
	tableIDContextKey    contextKey = "table_id"
)

// BookingRef addresses a booking by its date and position within that date's
// collection, mirroring how clients identify bookings on the wire.
type BookingRef struct {
	Date  string
	Index int
}

// ContextWithBookingRef injects the booking reference resolved from the request path.
func ContextWithBookingRef(ctx context.Context, ref BookingRef) context.Context {
	return context.WithValue(ctx, bookingRefContextKey, ref)
}

// BookingRefFromContext extracts a booking reference previously associated with the context.
func BookingRefFromContext(ctx context.Context) (BookingRef, bool) {
	ref, ok := ctx.Value(bookingRefContextKey).(BookingRef)
	return ref, ok
}

// ContextWithTableID injects the table identifier resolved from the request path.
func ContextWithTableID(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, tableIDContextKey, id)
}

// TableIDFromContext extracts a table identifier previously associated with the context.
func TableIDFromContext(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(tableIDContextKey).(int)
	return id, ok
}

// ContextWithLogger returns a derived context that carries the provided logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts a logger previously attached to the context.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
