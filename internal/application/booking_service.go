package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/tablebook/internal/booking"
	"github.com/example/tablebook/internal/persistence"
)

// TableRoster captures the roster interactions needed by the service.
type TableRoster interface {
	CreateTable(ctx context.Context, table persistence.Table) error
	UpdateTable(ctx context.Context, table persistence.Table) error
	GetTable(ctx context.Context, id int) (persistence.Table, error)
	ListTables(ctx context.Context) ([]persistence.Table, error)
}

// BookingStore captures the per-date booking interactions needed by the service.
type BookingStore interface {
	CreateBooking(ctx context.Context, booking persistence.Booking) error
	UpdateBooking(ctx context.Context, booking persistence.Booking) error
	ListBookings(ctx context.Context, date string) ([]persistence.Booking, error)
	DeleteBooking(ctx context.Context, id string) error
}

// Policy collects the reservation policy constants applied by the service,
// not by the resolver: default turn length, how far ahead bookings may be
// placed, and the slot grid used for availability listings.
type Policy struct {
	DefaultDurationMinutes int
	BookingWindowDays      int
	OpeningTime            booking.Minutes
	LastSeating            booking.Minutes
	SlotMinutes            int
}

// DefaultPolicy returns the restaurant's standing policy: 150 minute turns,
// bookings up to 60 days ahead, seatings from 17:00 with a 21:00 last start
// on a 30 minute grid.
func DefaultPolicy() Policy {
	return Policy{
		DefaultDurationMinutes: 150,
		BookingWindowDays:      60,
		OpeningTime:            17 * 60,
		LastSeating:            21 * 60,
		SlotMinutes:            30,
	}
}

const dateLayout = "2006-01-02"

// BookingService orchestrates validation, table assignment, and persistence
// for reservation operations. All operations against one date's collection
// are serialized; different dates proceed in parallel.
type BookingService struct {
	tables       TableRoster
	bookings     BookingStore
	policy       Policy
	locks        *dateLocks
	availability *availabilityCache
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewBookingService wires dependencies for reservation operations.
func NewBookingService(tables TableRoster, bookings BookingStore, policy Policy, idGenerator func() string, now func() time.Time) *BookingService {
	return NewBookingServiceWithLogger(tables, bookings, policy, idGenerator, now, nil)
}

// NewBookingServiceWithLogger wires dependencies including a base logger.
func NewBookingServiceWithLogger(tables TableRoster, bookings BookingStore, policy Policy, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if policy.DefaultDurationMinutes <= 0 {
		policy.DefaultDurationMinutes = DefaultPolicy().DefaultDurationMinutes
	}
	if policy.SlotMinutes <= 0 {
		policy.SlotMinutes = DefaultPolicy().SlotMinutes
	}
	return &BookingService{
		tables:       tables,
		bookings:     bookings,
		policy:       policy,
		locks:        newDateLocks(),
		availability: newAvailabilityCache(0, 0),
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

// ConfigureAvailabilityCache replaces the availability cache sizing. Intended
// for wiring time, before the service starts handling requests.
func (s *BookingService) ConfigureAvailabilityCache(size int, ttl time.Duration) {
	s.availability = newAvailabilityCache(size, ttl)
}

// ListTables returns the roster in scan order.
func (s *BookingService) ListTables(ctx context.Context) ([]Table, error) {
	records, err := s.tables.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	tables := make([]Table, 0, len(records))
	for _, record := range records {
		tables = append(tables, Table{ID: record.ID, Name: record.Name, Seats: record.Seats})
	}
	return tables, nil
}

// CreateTable adds a roster entry.
func (s *BookingService) CreateTable(ctx context.Context, input TableInput) (Table, error) {
	vErr := &ValidationError{}
	if input.ID <= 0 {
		vErr.add("id", "table id must be positive")
	}
	if input.Seats <= 0 {
		vErr.add("seats", "seat count must be positive")
	}
	if vErr.HasErrors() {
		return Table{}, vErr
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = fmt.Sprintf("%d", input.ID)
	}

	record := persistence.Table{ID: input.ID, Name: name, Seats: input.Seats}
	if err := s.tables.CreateTable(ctx, record); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			vErr.add("id", "table id already exists")
			return Table{}, vErr
		}
		return Table{}, err
	}
	return Table{ID: record.ID, Name: record.Name, Seats: record.Seats}, nil
}

// UpdateTable changes a roster entry. Existing bookings keep their
// assignment; a smaller capacity only affects future validation.
func (s *BookingService) UpdateTable(ctx context.Context, input TableInput) (Table, error) {
	vErr := &ValidationError{}
	if input.ID <= 0 {
		vErr.add("id", "table id must be positive")
	}
	if input.Seats <= 0 {
		vErr.add("seats", "seat count must be positive")
	}
	if vErr.HasErrors() {
		return Table{}, vErr
	}

	record := persistence.Table{ID: input.ID, Name: strings.TrimSpace(input.Name), Seats: input.Seats}
	if err := s.tables.UpdateTable(ctx, record); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Table{}, ErrNotFound
		}
		return Table{}, err
	}
	return Table{ID: record.ID, Name: record.Name, Seats: record.Seats}, nil
}

// EnsureDefaultRoster seeds the standard 14-table floor plan when the roster
// is empty: nine square two-tops, two larger rounds, three round two-tops.
func (s *BookingService) EnsureDefaultRoster(ctx context.Context) error {
	existing, err := s.tables.ListTables(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	seats := map[int]int{10: 4, 11: 5}
	for id := 1; id <= 14; id++ {
		count, ok := seats[id]
		if !ok {
			count = 2
		}
		table := persistence.Table{ID: id, Name: fmt.Sprintf("%d", id), Seats: count}
		if err := s.tables.CreateTable(ctx, table); err != nil {
			return fmt.Errorf("seed table %d: %w", id, err)
		}
	}

	s.logger.InfoContext(ctx, "seeded default table roster", "tables", 14)
	return nil
}

// ListBookings returns a date's bookings in index order.
func (s *BookingService) ListBookings(ctx context.Context, date string) ([]Booking, error) {
	vErr := &ValidationError{}
	s.parseDate(date, "date", vErr)
	if vErr.HasErrors() {
		return nil, vErr
	}

	records, err := s.bookings.ListBookings(ctx, date)
	if err != nil {
		return nil, err
	}
	bookings := make([]Booking, 0, len(records))
	for _, record := range records {
		bookings = append(bookings, fromRecord(record))
	}
	return bookings, nil
}

// GetBooking returns the booking at a date's index position.
func (s *BookingService) GetBooking(ctx context.Context, date string, index int) (Booking, error) {
	record, err := s.bookingAt(ctx, date, index)
	if err != nil {
		return Booking{}, err
	}
	return fromRecord(record), nil
}

// CreateBooking validates the request, resolves a table, and persists the
// booking. The returned table is the assignment the resolver chose.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (Booking, Table, error) {
	logger := serviceLogger(ctx, s.logger, "create_booking", "date", input.Date)

	vErr := &ValidationError{}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		vErr.add("name", "name is required")
	}
	if input.PartySize <= 0 {
		vErr.add("party_size", "party size must be positive")
	}
	s.validateBookingDate(input.Date, "date", vErr)
	start, duration := s.resolveWindow(input.StartTime, input.EndTime, input.DurationMinutes, vErr)
	if vErr.HasErrors() {
		return Booking{}, Table{}, vErr
	}

	unlock := s.locks.lock(input.Date)
	defer unlock()

	roster, err := s.tables.ListTables(ctx)
	if err != nil {
		return Booking{}, Table{}, err
	}
	existing, err := s.bookings.ListBookings(ctx, input.Date)
	if err != nil {
		return Booking{}, Table{}, err
	}

	table, err := booking.FindTable(toResolverTables(roster), toPlacements(existing, nil), input.PartySize, start, duration)
	if err != nil {
		logger.InfoContext(ctx, "booking rejected", "error_kind", ErrorKind(err))
		return Booking{}, Table{}, err
	}

	record := persistence.Booking{
		ID:        s.idGenerator(),
		Date:      input.Date,
		Name:      name,
		PartySize: input.PartySize,
		TableID:   table.ID,
		Start:     int(start),
		End:       int(start) + duration,
	}
	if notes := strings.TrimSpace(input.Notes); notes != "" {
		record.Notes = &notes
	}

	if err := s.bookings.CreateBooking(ctx, record); err != nil {
		return Booking{}, Table{}, err
	}
	s.availability.Invalidate(input.Date)

	logger.InfoContext(ctx, "booking committed", "table_id", table.ID, "party_size", input.PartySize)

	assigned := Table{ID: table.ID, Seats: table.Seats}
	for _, entry := range roster {
		if entry.ID == table.ID {
			assigned.Name = entry.Name
			break
		}
	}
	return fromRecord(record), assigned, nil
}

// MoveToTable reassigns a booking to another table, keeping its time. The
// target must seat the party and be free of overlapping bookings; on any
// failure the booking is left unchanged.
func (s *BookingService) MoveToTable(ctx context.Context, date string, index, newTableID int) error {
	logger := serviceLogger(ctx, s.logger, "move_to_table", "date", date, "index", index, "table_id", newTableID)

	unlock := s.locks.lock(date)
	defer unlock()

	list, err := s.bookings.ListBookings(ctx, date)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(list) {
		return ErrNotFound
	}
	target := list[index]

	table, err := s.tables.GetTable(ctx, newTableID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	excluded := map[string]bool{target.ID: true}
	if err := validatePlacement(table, target.PartySize, booking.Minutes(target.Start), booking.Minutes(target.End), list, excluded); err != nil {
		logger.InfoContext(ctx, "move rejected", "error_kind", ErrorKind(err))
		return err
	}

	target.TableID = newTableID
	if err := s.bookings.UpdateBooking(ctx, target); err != nil {
		return err
	}
	s.availability.Invalidate(date)

	logger.InfoContext(ctx, "move committed")
	return nil
}

// SwapTables exchanges the table assignments of two bookings on one date.
// Both sides are validated against the post-swap assignment before either is
// written; if either side fails, neither booking changes.
func (s *BookingService) SwapTables(ctx context.Context, date string, index1, index2 int) error {
	logger := serviceLogger(ctx, s.logger, "swap_tables", "date", date, "index_1", index1, "index_2", index2)

	unlock := s.locks.lock(date)
	defer unlock()

	list, err := s.bookings.ListBookings(ctx, date)
	if err != nil {
		return err
	}
	if index1 < 0 || index1 >= len(list) || index2 < 0 || index2 >= len(list) {
		return ErrNotFound
	}
	if index1 == index2 {
		return nil
	}

	first, second := list[index1], list[index2]
	if first.TableID == second.TableID {
		return nil
	}

	// Both moving bookings are excluded from the occupancy check: each is
	// leaving its current table as part of the same swap.
	excluded := map[string]bool{first.ID: true, second.ID: true}

	firstTarget, err := s.tables.GetTable(ctx, second.TableID)
	if err != nil {
		return err
	}
	secondTarget, err := s.tables.GetTable(ctx, first.TableID)
	if err != nil {
		return err
	}

	if err := validatePlacement(firstTarget, first.PartySize, booking.Minutes(first.Start), booking.Minutes(first.End), list, excluded); err != nil {
		logger.InfoContext(ctx, "swap rejected", "error_kind", ErrorKind(err))
		return err
	}
	if err := validatePlacement(secondTarget, second.PartySize, booking.Minutes(second.Start), booking.Minutes(second.End), list, excluded); err != nil {
		logger.InfoContext(ctx, "swap rejected", "error_kind", ErrorKind(err))
		return err
	}

	first.TableID, second.TableID = second.TableID, first.TableID
	if err := s.bookings.UpdateBooking(ctx, first); err != nil {
		return err
	}
	if err := s.bookings.UpdateBooking(ctx, second); err != nil {
		// Restore the first side so a half-applied swap is never visible.
		first.TableID = secondTarget.ID
		if restoreErr := s.bookings.UpdateBooking(ctx, first); restoreErr != nil {
			return fmt.Errorf("swap failed (restore error: %v): %w", restoreErr, err)
		}
		return err
	}
	s.availability.Invalidate(date)

	logger.InfoContext(ctx, "swap committed")
	return nil
}

// EditBooking applies a full or partial replacement to a booking. When the
// table, date, time, or party size changes, capacity and overlap are
// re-validated against the (possibly new) date's collection, excluding the
// booking's own prior record so it cannot conflict with itself.
func (s *BookingService) EditBooking(ctx context.Context, date string, index int, input EditBookingInput) (Booking, error) {
	logger := serviceLogger(ctx, s.logger, "edit_booking", "date", date, "index", index)

	vErr := &ValidationError{}
	newDate := date
	if input.Date != nil {
		newDate = *input.Date
		s.validateBookingDate(newDate, "date", vErr)
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.PartySize != nil && *input.PartySize <= 0 {
		vErr.add("party_size", "party size must be positive")
	}
	if vErr.HasErrors() {
		return Booking{}, vErr
	}

	unlock := s.locks.lockPair(date, newDate)
	defer unlock()

	list, err := s.bookings.ListBookings(ctx, date)
	if err != nil {
		return Booking{}, err
	}
	if index < 0 || index >= len(list) {
		return Booking{}, ErrNotFound
	}
	current := list[index]
	updated := current

	if input.Name != nil {
		updated.Name = strings.TrimSpace(*input.Name)
	}
	if input.PartySize != nil {
		updated.PartySize = *input.PartySize
	}
	if input.TableID != nil {
		updated.TableID = *input.TableID
	}
	if input.Notes != nil {
		if notes := strings.TrimSpace(*input.Notes); notes != "" {
			updated.Notes = &notes
		} else {
			updated.Notes = nil
		}
	}
	updated.Date = newDate

	start, end := s.resolveEditedWindow(current, input, vErr)
	if vErr.HasErrors() {
		return Booking{}, vErr
	}
	updated.Start = int(start)
	updated.End = int(end)

	needsRevalidation := updated.TableID != current.TableID ||
		updated.Date != current.Date ||
		updated.Start != current.Start ||
		updated.End != current.End ||
		updated.PartySize > current.PartySize

	if needsRevalidation {
		table, err := s.tables.GetTable(ctx, updated.TableID)
		if err != nil {
			if errors.Is(err, persistence.ErrNotFound) {
				return Booking{}, ErrNotFound
			}
			return Booking{}, err
		}

		collection := list
		if updated.Date != date {
			collection, err = s.bookings.ListBookings(ctx, updated.Date)
			if err != nil {
				return Booking{}, err
			}
		}

		excluded := map[string]bool{current.ID: true}
		if err := validatePlacement(table, updated.PartySize, start, end, collection, excluded); err != nil {
			logger.InfoContext(ctx, "edit rejected", "error_kind", ErrorKind(err))
			return Booking{}, err
		}
	}

	if err := s.bookings.UpdateBooking(ctx, updated); err != nil {
		return Booking{}, err
	}
	s.availability.Invalidate(date)
	if updated.Date != date {
		s.availability.Invalidate(updated.Date)
	}

	logger.InfoContext(ctx, "edit committed", "table_id", updated.TableID)
	return fromRecord(updated), nil
}

// DeleteBooking removes the booking at a date's index position.
func (s *BookingService) DeleteBooking(ctx context.Context, date string, index int) error {
	logger := serviceLogger(ctx, s.logger, "delete_booking", "date", date, "index", index)

	unlock := s.locks.lock(date)
	defer unlock()

	list, err := s.bookings.ListBookings(ctx, date)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(list) {
		return ErrNotFound
	}

	if err := s.bookings.DeleteBooking(ctx, list[index].ID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.availability.Invalidate(date)

	logger.InfoContext(ctx, "booking deleted", "booking_id", list[index].ID)
	return nil
}

// AvailableTimes lists the slot starts on the policy grid for which at least
// one table could host the party. Results are cached per date until a
// mutation for that date invalidates them.
func (s *BookingService) AvailableTimes(ctx context.Context, date string, partySize, durationMinutes int) ([]string, error) {
	vErr := &ValidationError{}
	s.parseDate(date, "date", vErr)
	if partySize <= 0 {
		vErr.add("party_size", "party size must be positive")
	}
	if durationMinutes < 0 {
		vErr.add("duration_minutes", "duration must be positive")
	}
	if vErr.HasErrors() {
		return nil, vErr
	}
	if durationMinutes == 0 {
		durationMinutes = s.policy.DefaultDurationMinutes
	}

	if slots, ok := s.availability.Get(date, partySize, durationMinutes); ok {
		return slots, nil
	}

	unlock := s.locks.lock(date)
	defer unlock()

	roster, err := s.tables.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := s.bookings.ListBookings(ctx, date)
	if err != nil {
		return nil, err
	}

	resolverTables := toResolverTables(roster)
	placements := toPlacements(existing, nil)

	slots := make([]string, 0)
	for slot := s.policy.OpeningTime; slot <= s.policy.LastSeating; slot += booking.Minutes(s.policy.SlotMinutes) {
		if int(slot)+durationMinutes > booking.MinutesPerDay {
			break
		}
		if _, err := booking.FindTable(resolverTables, placements, partySize, slot, durationMinutes); err != nil {
			continue
		}
		text, err := booking.FormatClock(slot)
		if err != nil {
			return nil, err
		}
		slots = append(slots, text)
	}

	s.availability.Store(date, partySize, durationMinutes, slots)
	return slots, nil
}

// ---------------------------------------------------------------------------

func (s *BookingService) bookingAt(ctx context.Context, date string, index int) (persistence.Booking, error) {
	list, err := s.bookings.ListBookings(ctx, date)
	if err != nil {
		return persistence.Booking{}, err
	}
	if index < 0 || index >= len(list) {
		return persistence.Booking{}, ErrNotFound
	}
	return list[index], nil
}

// parseDate checks the YYYY-MM-DD shape only.
func (s *BookingService) parseDate(value, field string, vErr *ValidationError) time.Time {
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		vErr.add(field, "date must be YYYY-MM-DD")
		return time.Time{}
	}
	return parsed
}

// validateBookingDate additionally enforces the booking window: today or
// later, and at most BookingWindowDays ahead.
func (s *BookingService) validateBookingDate(value, field string, vErr *ValidationError) {
	parsed := s.parseDate(value, field, vErr)
	if parsed.IsZero() {
		return
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if parsed.Before(today) {
		vErr.add(field, "cannot book in the past")
		return
	}
	if s.policy.BookingWindowDays > 0 && parsed.After(today.AddDate(0, 0, s.policy.BookingWindowDays)) {
		vErr.add(field, fmt.Sprintf("bookings can be made at most %d days in advance", s.policy.BookingWindowDays))
	}
}

// resolveWindow converts the wire time fields into a start minute and a
// duration, substituting the default turn length when neither an end time nor
// a duration was supplied.
func (s *BookingService) resolveWindow(startTime, endTime string, durationMinutes int, vErr *ValidationError) (booking.Minutes, int) {
	start, err := booking.ParseClock(startTime)
	if err != nil {
		vErr.add("start_time", "must be HH:MM (24-hour)")
		return 0, 0
	}

	duration := durationMinutes
	switch {
	case endTime != "":
		end, err := booking.ParseClock(endTime)
		if err != nil {
			vErr.add("end_time", "must be HH:MM (24-hour)")
			return 0, 0
		}
		duration = int(end - start)
		if duration <= 0 {
			vErr.add("end_time", "must be after start_time")
			return 0, 0
		}
	case duration < 0:
		vErr.add("duration_minutes", "duration must be positive")
		return 0, 0
	case duration == 0:
		duration = s.policy.DefaultDurationMinutes
	}

	if int(start)+duration > booking.MinutesPerDay {
		vErr.add("end_time", "booking must end by midnight")
		return 0, 0
	}
	return start, duration
}

// resolveEditedWindow derives the post-edit interval, keeping the stored turn
// length when only the start moves.
func (s *BookingService) resolveEditedWindow(current persistence.Booking, input EditBookingInput, vErr *ValidationError) (booking.Minutes, booking.Minutes) {
	start := booking.Minutes(current.Start)
	if input.StartTime != nil {
		parsed, err := booking.ParseClock(*input.StartTime)
		if err != nil {
			vErr.add("start_time", "must be HH:MM (24-hour)")
			return 0, 0
		}
		start = parsed
	}

	var end booking.Minutes
	switch {
	case input.EndTime != nil:
		parsed, err := booking.ParseClock(*input.EndTime)
		if err != nil {
			vErr.add("end_time", "must be HH:MM (24-hour)")
			return 0, 0
		}
		end = parsed
	case input.DurationMinutes != nil:
		if *input.DurationMinutes <= 0 {
			vErr.add("duration_minutes", "duration must be positive")
			return 0, 0
		}
		end = start + booking.Minutes(*input.DurationMinutes)
	default:
		end = start + booking.Minutes(current.End-current.Start)
	}

	window := booking.Interval{Start: start, End: end}
	if err := window.Validate(); err != nil {
		vErr.add("end_time", "must be after start_time")
		return 0, 0
	}
	if end > booking.MinutesPerDay {
		vErr.add("end_time", "booking must end by midnight")
		return 0, 0
	}
	return start, end
}

// validatePlacement checks capacity and overlap for one booking landing on
// one table, ignoring the excluded booking IDs.
func validatePlacement(table persistence.Table, partySize int, start, end booking.Minutes, collection []persistence.Booking, excluded map[string]bool) error {
	if table.Seats < partySize {
		return &CapacityError{TableID: table.ID, Seats: table.Seats, PartySize: partySize}
	}
	for _, other := range collection {
		if excluded[other.ID] || other.TableID != table.ID {
			continue
		}
		if booking.Overlaps(start, end, booking.Minutes(other.Start), booking.Minutes(other.End)) {
			return &ConflictError{
				TableID: table.ID,
				With:    other.ID,
				Start:   booking.Minutes(other.Start),
				End:     booking.Minutes(other.End),
			}
		}
	}
	return nil
}

func toResolverTables(records []persistence.Table) []booking.Table {
	tables := make([]booking.Table, 0, len(records))
	for _, record := range records {
		tables = append(tables, booking.Table{ID: record.ID, Seats: record.Seats})
	}
	return tables
}

func toPlacements(records []persistence.Booking, excluded map[string]bool) []booking.Placement {
	placements := make([]booking.Placement, 0, len(records))
	for _, record := range records {
		if excluded[record.ID] {
			continue
		}
		placements = append(placements, booking.Placement{
			TableID: record.TableID,
			Start:   booking.Minutes(record.Start),
			End:     booking.Minutes(record.End),
		})
	}
	return placements
}

func fromRecord(record persistence.Booking) Booking {
	result := Booking{
		ID:        record.ID,
		Date:      record.Date,
		Name:      record.Name,
		PartySize: record.PartySize,
		TableID:   record.TableID,
		Start:     booking.Minutes(record.Start),
		End:       booking.Minutes(record.End),
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
	if record.Notes != nil {
		result.Notes = *record.Notes
	}
	return result
}
