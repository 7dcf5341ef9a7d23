package application

import (
	"time"

	"github.com/example/tablebook/internal/booking"
)

// Table is a roster entry as exposed to callers.
type Table struct {
	ID    int
	Name  string
	Seats int
}

// Booking is a reservation as exposed to callers. Start and End are minutes
// since midnight; the wire form is rendered at the HTTP boundary.
type Booking struct {
	ID        string
	Date      string
	Name      string
	PartySize int
	TableID   int
	Start     booking.Minutes
	End       booking.Minutes
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateBookingInput captures caller provided fields for a new booking.
//
// Exactly one of EndTime or DurationMinutes may be supplied; when neither is,
// the service substitutes its default turn duration.
type CreateBookingInput struct {
	Date            string
	Name            string
	PartySize       int
	StartTime       string
	EndTime         string
	DurationMinutes int
	Notes           string
}

// EditBookingInput is a partial replacement for an existing booking. Nil
// fields keep the stored value.
type EditBookingInput struct {
	Name            *string
	PartySize       *int
	Date            *string
	StartTime       *string
	EndTime         *string
	DurationMinutes *int
	TableID         *int
	Notes           *string
}

// TableInput captures caller provided fields for roster configuration.
type TableInput struct {
	ID    int
	Name  string
	Seats int
}
