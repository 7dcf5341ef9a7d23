package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/tablebook/internal/application"
	"github.com/example/tablebook/internal/booking"
)

// Config captures environment driven configuration values for the reservation service.
type Config struct {
	HTTPPort               int
	SQLiteDSN              string
	DefaultDurationMinutes int
	BookingWindowDays      int
	OpeningTime            booking.Minutes
	LastSeating            booking.Minutes
	SlotMinutes            int
	AvailabilityCacheTTL   time.Duration
	SeedDefaultTables      bool
}

// Load parses configuration values from a .env file (when present) and the
// current process environment.
//
// The loader applies the restaurant's standing policy as defaults for
// optional fields while validating supplied values and reporting every bad
// entry at once.
func Load() (Config, error) {
	// A missing .env file is the normal production case.
	_ = godotenv.Load()

	policy := application.DefaultPolicy()
	cfg := Config{
		HTTPPort:               8080,
		SQLiteDSN:              "file:tablebook.db?_foreign_keys=on",
		DefaultDurationMinutes: policy.DefaultDurationMinutes,
		BookingWindowDays:      policy.BookingWindowDays,
		OpeningTime:            policy.OpeningTime,
		LastSeating:            policy.LastSeating,
		SlotMinutes:            policy.SlotMinutes,
		AvailabilityCacheTTL:   30 * time.Second,
		SeedDefaultTables:      true,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("TABLEBOOK_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "TABLEBOOK_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("TABLEBOOK_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if value := strings.TrimSpace(os.Getenv("TABLEBOOK_DEFAULT_DURATION_MINUTES")); value != "" {
		minutes, err := strconv.Atoi(value)
		if err != nil || minutes <= 0 || minutes > booking.MinutesPerDay {
			invalid = append(invalid, "TABLEBOOK_DEFAULT_DURATION_MINUTES")
		} else {
			cfg.DefaultDurationMinutes = minutes
		}
	}

	if value := strings.TrimSpace(os.Getenv("TABLEBOOK_BOOKING_WINDOW_DAYS")); value != "" {
		days, err := strconv.Atoi(value)
		if err != nil || days <= 0 {
			invalid = append(invalid, "TABLEBOOK_BOOKING_WINDOW_DAYS")
		} else {
			cfg.BookingWindowDays = days
		}
	}

	if value := strings.TrimSpace(os.Getenv("TABLEBOOK_OPENING_TIME")); value != "" {
		opening, err := booking.ParseClock(value)
		if err != nil {
			invalid = append(invalid, "TABLEBOOK_OPENING_TIME")
		} else {
			cfg.OpeningTime = opening
		}
	}

	if value := strings.TrimSpace(os.Getenv("TABLEBOOK_LAST_SEATING")); value != "" {
		last, err := booking.ParseClock(value)
		if err != nil {
			invalid = append(invalid, "TABLEBOOK_LAST_SEATING")
		} else {
			cfg.LastSeating = last
		}
	}

	if value := strings.TrimSpace(os.Getenv("TABLEBOOK_SLOT_MINUTES")); value != "" {
		minutes, err := strconv.Atoi(value)
		if err != nil || minutes <= 0 {
			invalid = append(invalid, "TABLEBOOK_SLOT_MINUTES")
		} else {
			cfg.SlotMinutes = minutes
		}
	}

	if value := strings.TrimSpace(os.Getenv("TABLEBOOK_AVAILABILITY_CACHE_TTL")); value != "" {
		ttl, err := time.ParseDuration(value)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "TABLEBOOK_AVAILABILITY_CACHE_TTL")
		} else {
			cfg.AvailabilityCacheTTL = ttl
		}
	}

	if value := strings.TrimSpace(os.Getenv("TABLEBOOK_SEED_DEFAULT_TABLES")); value != "" {
		seed, err := strconv.ParseBool(value)
		if err != nil {
			invalid = append(invalid, "TABLEBOOK_SEED_DEFAULT_TABLES")
		} else {
			cfg.SeedDefaultTables = seed
		}
	}

	if cfg.LastSeating < cfg.OpeningTime {
		invalid = append(invalid, "TABLEBOOK_LAST_SEATING")
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// Policy maps the loaded configuration onto the service policy.
func (c Config) Policy() application.Policy {
	return application.Policy{
		DefaultDurationMinutes: c.DefaultDurationMinutes,
		BookingWindowDays:      c.BookingWindowDays,
		OpeningTime:            c.OpeningTime,
		LastSeating:            c.LastSeating,
		SlotMinutes:            c.SlotMinutes,
	}
}
