package booking

import "fmt"

// Table is a bookable table as seen by the resolver: a stable identifier and
// a seat capacity. The roster's declared order is the resolver's scan order.
type Table struct {
	ID    int
	Seats int
}

// Placement is an existing table assignment the resolver checks against.
type Placement struct {
	TableID int
	Start   Minutes
	End     Minutes
}

// NoTableError reports that no table can host the requested party for the
// requested window. It carries the request so callers can render a precise
// message; the resolver never retries or relaxes constraints on its own.
type NoTableError struct {
	PartySize       int
	Start           Minutes
	DurationMinutes int
}

func (e *NoTableError) Error() string {
	return fmt.Sprintf("no table available for party of %d at %s for %d minutes",
		e.PartySize, e.Start, e.DurationMinutes)
}

// FindTable returns the first table, in roster order, that seats the party
// and has no overlapping placement during [start, start+duration).
//
// The scan is first-fit rather than best-fit: capacity must be sufficient but
// is not required to be minimal. Combined with the fixed scan order this makes
// the assignment deterministic for identical inputs. Placements on other
// tables are irrelevant to a candidate table.
func FindTable(tables []Table, existing []Placement, partySize int, start Minutes, durationMinutes int) (Table, error) {
	window := Interval{Start: start, End: start + Minutes(durationMinutes)}
	if err := window.Validate(); err != nil {
		return Table{}, err
	}

	for _, table := range tables {
		if table.Seats < partySize {
			continue
		}
		if tableIsFree(table.ID, existing, window) {
			return table, nil
		}
	}

	return Table{}, &NoTableError{
		PartySize:       partySize,
		Start:           start,
		DurationMinutes: durationMinutes,
	}
}

// tableIsFree reports whether no placement on the given table overlaps the
// candidate window.
func tableIsFree(tableID int, existing []Placement, window Interval) bool {
	for _, placement := range existing {
		if placement.TableID != tableID {
			continue
		}
		if Overlaps(window.Start, window.End, placement.Start, placement.End) {
			return false
		}
	}
	return true
}
