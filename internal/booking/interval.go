package booking

import (
	"errors"
	"fmt"
)

// ErrInvalidInterval is returned when an interval's start is not strictly
// before its end. It signals a caller contract violation, not user input.
var ErrInvalidInterval = errors.New("booking: invalid interval")

// Interval is a half-open [Start, End) window within a single day.
type Interval struct {
	Start Minutes
	End   Minutes
}

// Validate checks the start-before-end invariant.
func (iv Interval) Validate() error {
	if iv.Start >= iv.End {
		return fmt.Errorf("%w: [%s, %s)", ErrInvalidInterval, iv.Start, iv.End)
	}
	return nil
}

// Overlaps reports whether two half-open intervals intersect.
//
// [s1,e1) and [s2,e2) overlap iff s1 < e2 && s2 < e1, so a booking ending
// exactly when another starts does not conflict and back-to-back turns are
// legal. Both intervals must satisfy start < end.
func Overlaps(s1, e1, s2, e2 Minutes) bool {
	return s1 < e2 && s2 < e1
}
