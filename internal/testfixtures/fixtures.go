package testfixtures

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/example/tablebook/internal/persistence"
)

var referenceTime = time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
// Booking-window validation treats this as "now", so fixture dates should be
// on or shortly after it.
func ReferenceTime() time.Time {
	return referenceTime
}

// FixedClock returns a now-func pinned to the reference time.
func FixedClock() func() time.Time {
	return func() time.Time { return referenceTime }
}

// SequentialIDs returns a deterministic booking ID generator.
func SequentialIDs(prefix string) func() string {
	var counter uint64
	return func() string {
		return fmt.Sprintf("%s-%03d", prefix, atomic.AddUint64(&counter, 1))
	}
}

// InMemoryTables is a TableRepository test double holding the roster in a map.
type InMemoryTables struct {
	mu     sync.RWMutex
	tables map[int]persistence.Table
}

// NewInMemoryTables creates an empty in-memory roster.
func NewInMemoryTables() *InMemoryTables {
	return &InMemoryTables{tables: make(map[int]persistence.Table)}
}

// NewThreeTableRoster returns a roster with the canonical 2/4/6 seat fixture
// tables used throughout the service tests.
func NewThreeTableRoster() *InMemoryTables {
	roster := NewInMemoryTables()
	for id, seats := range map[int]int{1: 2, 2: 4, 3: 6} {
		roster.tables[id] = persistence.Table{ID: id, Name: fmt.Sprintf("%d", id), Seats: seats}
	}
	return roster
}

func (r *InMemoryTables) CreateTable(_ context.Context, table persistence.Table) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tables[table.ID]; ok {
		return persistence.ErrDuplicate
	}
	r.tables[table.ID] = table
	return nil
}

func (r *InMemoryTables) UpdateTable(_ context.Context, table persistence.Table) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tables[table.ID]; !ok {
		return persistence.ErrNotFound
	}
	r.tables[table.ID] = table
	return nil
}

func (r *InMemoryTables) GetTable(_ context.Context, id int) (persistence.Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	table, ok := r.tables[id]
	if !ok {
		return persistence.Table{}, persistence.ErrNotFound
	}
	return table, nil
}

func (r *InMemoryTables) ListTables(_ context.Context) ([]persistence.Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tables := make([]persistence.Table, 0, len(r.tables))
	for _, table := range r.tables {
		tables = append(tables, table)
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].ID < tables[j].ID })
	return tables, nil
}

func (r *InMemoryTables) DeleteTable(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tables[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.tables, id)
	return nil
}

// InMemoryBookings is a BookingRepository test double. Listing orders by
// creation time with the creation sequence as tie-break, mirroring the SQLite
// implementation's ORDER BY created_at, rowid; a booking moved to another date
// keeps its original creation time and so lands at the position a client of
// the real store would see.
type InMemoryBookings struct {
	mu      sync.RWMutex
	byID    map[string]persistence.Booking
	seq     map[string]int // booking ID -> creation sequence
	nextSeq int
	failOn  map[string]error
	updates int
}

// NewInMemoryBookings creates an empty in-memory booking store.
func NewInMemoryBookings() *InMemoryBookings {
	return &InMemoryBookings{
		byID:   make(map[string]persistence.Booking),
		seq:    make(map[string]int),
		failOn: make(map[string]error),
	}
}

// FailUpdateFor makes UpdateBooking fail for the given booking ID; used to
// exercise rollback paths.
func (r *InMemoryBookings) FailUpdateFor(id string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failOn[id] = err
}

// UpdateCount reports how many updates were applied.
func (r *InMemoryBookings) UpdateCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.updates
}

func (r *InMemoryBookings) CreateBooking(_ context.Context, booking persistence.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[booking.ID]; ok {
		return persistence.ErrDuplicate
	}
	booking.CreatedAt = referenceTime.Add(time.Duration(r.nextSeq) * time.Second)
	booking.UpdatedAt = booking.CreatedAt
	r.byID[booking.ID] = booking
	r.seq[booking.ID] = r.nextSeq
	r.nextSeq++
	return nil
}

func (r *InMemoryBookings) UpdateBooking(_ context.Context, booking persistence.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failOn[booking.ID]; ok {
		return err
	}
	previous, ok := r.byID[booking.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	booking.CreatedAt = previous.CreatedAt
	booking.UpdatedAt = referenceTime.Add(time.Duration(r.nextSeq) * time.Second)
	r.byID[booking.ID] = booking
	r.updates++
	return nil
}

func (r *InMemoryBookings) GetBooking(_ context.Context, id string) (persistence.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	booking, ok := r.byID[id]
	if !ok {
		return persistence.Booking{}, persistence.ErrNotFound
	}
	return booking, nil
}

func (r *InMemoryBookings) ListBookings(_ context.Context, date string) ([]persistence.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var bookings []persistence.Booking
	for _, booking := range r.byID {
		if booking.Date == date {
			bookings = append(bookings, booking)
		}
	}
	sort.Slice(bookings, func(i, j int) bool {
		a, b := bookings[i], bookings[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return r.seq[a.ID] < r.seq[b.ID]
	})
	return bookings, nil
}

func (r *InMemoryBookings) DeleteBooking(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.byID, id)
	delete(r.seq, id)
	return nil
}
