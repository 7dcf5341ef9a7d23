package application

import (
	"testing"
	"time"
)

func TestAvailabilityCacheStoresAndReturnsCopies(t *testing.T) {
	cache := newAvailabilityCache(8, time.Minute)

	original := []string{"17:00", "17:30"}
	cache.Store("2026-09-05", 2, 120, original)

	// Mutating the original slice should not affect the cached copy.
	original[0] = "mutated"

	cached, ok := cache.Get("2026-09-05", 2, 120)
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if cached[0] != "17:00" {
		t.Fatalf("expected cached slot to remain unchanged, got %s", cached[0])
	}
}

func TestAvailabilityCacheKeysOnPartyAndDuration(t *testing.T) {
	cache := newAvailabilityCache(8, time.Minute)

	cache.Store("2026-09-05", 2, 120, []string{"17:00"})
	if _, ok := cache.Get("2026-09-05", 4, 120); ok {
		t.Fatalf("expected miss for a different party size")
	}
	if _, ok := cache.Get("2026-09-05", 2, 90); ok {
		t.Fatalf("expected miss for a different duration")
	}
}

func TestAvailabilityCacheInvalidateIsPerDate(t *testing.T) {
	cache := newAvailabilityCache(8, time.Minute)

	cache.Store("2026-09-05", 2, 120, []string{"17:00"})
	cache.Store("2026-09-06", 2, 120, []string{"18:00"})

	cache.Invalidate("2026-09-05")

	if _, ok := cache.Get("2026-09-05", 2, 120); ok {
		t.Fatalf("expected invalidated date to miss")
	}
	if _, ok := cache.Get("2026-09-06", 2, 120); !ok {
		t.Fatalf("expected untouched date to still hit")
	}
}
