package booking

import (
	"errors"
	"fmt"
)

// MinutesPerDay bounds the minutes-since-midnight representation.
const MinutesPerDay = 24 * 60

var (
	// ErrInvalidTimeFormat is returned when a clock string is not zero-padded HH:MM.
	ErrInvalidTimeFormat = errors.New("booking: invalid time format")
	// ErrInvalidTimeValue is returned when a minute value falls outside [0, 1440).
	ErrInvalidTimeValue = errors.New("booking: invalid time value")
)

// Minutes is a time of day expressed as minutes since midnight.
type Minutes int

// ParseClock converts a wall-clock string to minutes since midnight.
//
// The accepted shape is exactly "HH:MM" with a zero-padded 24-hour value:
// "19:00" parses, "7:00", "19.00" and "24:00" do not.
func ParseClock(text string) (Minutes, error) {
	if len(text) != 5 || text[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, text)
	}

	hour, ok := parseTwoDigits(text[0], text[1])
	if !ok || hour > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, text)
	}
	minute, ok := parseTwoDigits(text[3], text[4])
	if !ok || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, text)
	}

	return Minutes(hour*60 + minute), nil
}

// FormatClock renders a minute value as a zero-padded "HH:MM" string.
// ParseClock(FormatClock(m)) == m for every m in [0, 1440).
func FormatClock(m Minutes) (string, error) {
	if m < 0 || m >= MinutesPerDay {
		return "", fmt.Errorf("%w: %d", ErrInvalidTimeValue, int(m))
	}
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60), nil
}

// Valid reports whether the value lies within a single day.
func (m Minutes) Valid() bool {
	return m >= 0 && m < MinutesPerDay
}

// String renders the value for logs and error messages. Out-of-range values
// fall back to the raw minute count so diagnostics never fail.
func (m Minutes) String() string {
	text, err := FormatClock(m)
	if err != nil {
		return fmt.Sprintf("%d min", int(m))
	}
	return text
}

func parseTwoDigits(tens, units byte) (int, bool) {
	if tens < '0' || tens > '9' || units < '0' || units > '9' {
		return 0, false
	}
	return int(tens-'0')*10 + int(units-'0'), true
}
