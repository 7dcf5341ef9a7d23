package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/example/tablebook/internal/persistence"
)

func setupBookingRepos(t *testing.T) (*TableRepository, *BookingRepository) {
	t.Helper()

	store := setupStore(t)
	tables := NewTableRepository(store)
	ctx := context.Background()
	for id, seats := range map[int]int{1: 2, 2: 4, 3: 6} {
		table := persistence.Table{ID: id, Name: fmt.Sprintf("%d", id), Seats: seats}
		if err := tables.CreateTable(ctx, table); err != nil {
			t.Fatalf("CreateTable(%d) failed: %v", id, err)
		}
	}
	return tables, NewBookingRepository(store)
}

func testBooking(id, date string, tableID, start, end int) persistence.Booking {
	return persistence.Booking{
		ID:        id,
		Date:      date,
		Name:      "Guest " + id,
		PartySize: 2,
		TableID:   tableID,
		Start:     start,
		End:       end,
	}
}

func TestBookingRepository_CreateAndList(t *testing.T) {
	_, repo := setupBookingRepos(t)
	ctx := context.Background()

	notes := "window seat"
	booking := testBooking("b1", "2026-09-01", 1, 19*60, 21*60)
	booking.Notes = &notes

	if err := repo.CreateBooking(ctx, booking); err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	bookings, err := repo.ListBookings(ctx, "2026-09-01")
	if err != nil {
		t.Fatalf("ListBookings failed: %v", err)
	}
	if len(bookings) != 1 {
		t.Fatalf("got %d bookings, want 1", len(bookings))
	}
	got := bookings[0]
	if got.Name != "Guest b1" || got.Start != 19*60 || got.End != 21*60 {
		t.Errorf("unexpected booking: %+v", got)
	}
	if got.Notes == nil || *got.Notes != "window seat" {
		t.Errorf("Notes not round-tripped: %v", got.Notes)
	}
}

func TestBookingRepository_ListPreservesCreationOrder(t *testing.T) {
	_, repo := setupBookingRepos(t)
	ctx := context.Background()

	ids := []string{"b1", "b2", "b3"}
	for i, id := range ids {
		booking := testBooking(id, "2026-09-01", 1+i%3, 17*60+i*30, 19*60+i*30)
		if err := repo.CreateBooking(ctx, booking); err != nil {
			t.Fatalf("CreateBooking(%s) failed: %v", id, err)
		}
	}

	bookings, err := repo.ListBookings(ctx, "2026-09-01")
	if err != nil {
		t.Fatalf("ListBookings failed: %v", err)
	}
	if len(bookings) != len(ids) {
		t.Fatalf("got %d bookings, want %d", len(bookings), len(ids))
	}
	for i, id := range ids {
		if bookings[i].ID != id {
			t.Errorf("bookings[%d].ID = %s, want %s", i, bookings[i].ID, id)
		}
	}
}

func TestBookingRepository_DatesAreIndependent(t *testing.T) {
	_, repo := setupBookingRepos(t)
	ctx := context.Background()

	if err := repo.CreateBooking(ctx, testBooking("b1", "2026-09-01", 1, 19*60, 21*60)); err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}
	if err := repo.CreateBooking(ctx, testBooking("b2", "2026-09-02", 1, 19*60, 21*60)); err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	bookings, err := repo.ListBookings(ctx, "2026-09-01")
	if err != nil {
		t.Fatalf("ListBookings failed: %v", err)
	}
	if len(bookings) != 1 || bookings[0].ID != "b1" {
		t.Fatalf("expected only b1 on 2026-09-01, got %+v", bookings)
	}
}

func TestBookingRepository_UpdateMovesAcrossDates(t *testing.T) {
	_, repo := setupBookingRepos(t)
	ctx := context.Background()

	booking := testBooking("b1", "2026-09-01", 1, 19*60, 21*60)
	if err := repo.CreateBooking(ctx, booking); err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	booking.Date = "2026-09-02"
	booking.TableID = 2
	if err := repo.UpdateBooking(ctx, booking); err != nil {
		t.Fatalf("UpdateBooking failed: %v", err)
	}

	old, err := repo.ListBookings(ctx, "2026-09-01")
	if err != nil {
		t.Fatalf("ListBookings failed: %v", err)
	}
	if len(old) != 0 {
		t.Errorf("expected empty original date, got %d bookings", len(old))
	}

	moved, err := repo.ListBookings(ctx, "2026-09-02")
	if err != nil {
		t.Fatalf("ListBookings failed: %v", err)
	}
	if len(moved) != 1 || moved[0].TableID != 2 {
		t.Fatalf("expected moved booking on table 2, got %+v", moved)
	}
}

func TestBookingRepository_GetMissing(t *testing.T) {
	_, repo := setupBookingRepos(t)

	if _, err := repo.GetBooking(context.Background(), "missing"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBookingRepository_Delete(t *testing.T) {
	_, repo := setupBookingRepos(t)
	ctx := context.Background()

	if err := repo.CreateBooking(ctx, testBooking("b1", "2026-09-01", 1, 19*60, 21*60)); err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}
	if err := repo.DeleteBooking(ctx, "b1"); err != nil {
		t.Fatalf("DeleteBooking failed: %v", err)
	}
	if err := repo.DeleteBooking(ctx, "b1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
