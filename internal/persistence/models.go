package persistence

import "time"

// Table represents a bookable table in the floor-plan roster.
type Table struct {
	ID        int
	Name      string
	Seats     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Booking represents a reservation stored for a single calendar date.
//
// Start and End are minutes since midnight; Date is the "YYYY-MM-DD" key the
// per-date collection is scoped by. The per-date list order (creation order)
// is stable and is what index addressing at the API boundary refers to.
type Booking struct {
	ID        string
	Date      string
	Name      string
	PartySize int
	TableID   int
	Start     int
	End       int
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
