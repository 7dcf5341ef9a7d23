package persistence

import "context"

// TableRepository exposes CRUD operations for the table roster.
//
// ListTables returns tables in ascending ID order; that order is the
// availability resolver's scan order, so implementations must keep it stable.
type TableRepository interface {
	CreateTable(ctx context.Context, table Table) error
	UpdateTable(ctx context.Context, table Table) error
	GetTable(ctx context.Context, id int) (Table, error)
	ListTables(ctx context.Context) ([]Table, error)
	DeleteTable(ctx context.Context, id int) error
}

// BookingRepository stores bookings keyed by calendar date.
//
// ListBookings returns each date's bookings in creation order; the position of
// a booking in that list is the index the HTTP boundary addresses it by.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) error
	UpdateBooking(ctx context.Context, booking Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	ListBookings(ctx context.Context, date string) ([]Booking, error)
	DeleteBooking(ctx context.Context, id string) error
}
