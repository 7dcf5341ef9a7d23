package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/tablebook/internal/persistence"
	_ "modernc.org/sqlite"
)

// Store owns the SQLite connection shared by the repositories.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at the given DSN.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", dsn, err)
	}

	// SQLite allows a single writer; a pool larger than one connection only
	// produces SQLITE_BUSY under write load.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	return &Store{db: db}, nil
}

// DB exposes the underlying connection for tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close releases the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the connection is usable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate applies pragmas and creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	pragmas := []string{
		`PRAGMA journal_mode=WAL`,
		`PRAGMA foreign_keys=ON`,
	}
	for _, pragma := range pragmas {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS tables (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			seats INTEGER NOT NULL CHECK (seats > 0),
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS bookings (
			id TEXT PRIMARY KEY,
			date TEXT NOT NULL,
			name TEXT NOT NULL,
			party_size INTEGER NOT NULL CHECK (party_size > 0),
			table_id INTEGER NOT NULL REFERENCES tables(id),
			start_minutes INTEGER NOT NULL,
			end_minutes INTEGER NOT NULL CHECK (start_minutes < end_minutes),
			notes TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_date ON bookings(date)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_table ON bookings(table_id)`,
	}
	for _, statement := range statements {
		if _, err := s.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("sqlite: migrate: %w", err)
		}
	}

	return nil
}

// mapError translates driver errors into the persistence sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		return persistence.ErrNotFound
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", persistence.ErrDuplicate, err)
	case strings.Contains(msg, "CHECK constraint failed"),
		strings.Contains(msg, "NOT NULL constraint failed"),
		strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %v", persistence.ErrConstraintViolation, err)
	}
	return err
}
