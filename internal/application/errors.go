package application

import (
	"errors"
	"fmt"

	"github.com/example/tablebook/internal/booking"
)

// ErrNotFound is returned when the referenced booking or table does not exist.
var ErrNotFound = errors.New("application: not found")

// ValidationError captures field level validation issues that callers can
// surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// CapacityError reports a mutation targeting a table too small for the party.
type CapacityError struct {
	TableID   int
	Seats     int
	PartySize int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("table %d seats %d, cannot host party of %d", e.TableID, e.Seats, e.PartySize)
}

// ConflictError reports a mutation that would collide with another booking on
// the same table. With identifies the conflicting booking.
type ConflictError struct {
	TableID int
	With    string
	Start   booking.Minutes
	End     booking.Minutes
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("table %d already booked %s-%s (booking %s)", e.TableID, e.Start, e.End, e.With)
}

// ErrorKind maps sentinel and structured errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, booking.ErrInvalidInterval):
		return "invalid_interval"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}
	var noTable *booking.NoTableError
	if errors.As(err, &noTable) {
		return "no_table"
	}
	var capErr *CapacityError
	if errors.As(err, &capErr) {
		return "capacity"
	}
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return "conflict"
	}

	return "unexpected"
}
