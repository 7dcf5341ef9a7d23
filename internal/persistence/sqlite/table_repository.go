package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/tablebook/internal/persistence"
)

// TableRepository implements persistence.TableRepository using SQLite.
type TableRepository struct {
	store *Store
}

// NewTableRepository creates a SQLite-backed table roster repository.
func NewTableRepository(store *Store) *TableRepository {
	return &TableRepository{store: store}
}

// CreateTable inserts a new roster entry.
func (r *TableRepository) CreateTable(ctx context.Context, table persistence.Table) error {
	if table.ID <= 0 || table.Seats <= 0 {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	table.CreatedAt = now
	table.UpdatedAt = now

	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO tables (id, name, seats, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		table.ID,
		table.Name,
		table.Seats,
		table.CreatedAt.Format(time.RFC3339),
		table.UpdatedAt.Format(time.RFC3339),
	)
	return mapError(err)
}

// UpdateTable updates an existing roster entry.
func (r *TableRepository) UpdateTable(ctx context.Context, table persistence.Table) error {
	if table.ID <= 0 || table.Seats <= 0 {
		return persistence.ErrConstraintViolation
	}

	table.UpdatedAt = time.Now().UTC()

	result, err := r.store.db.ExecContext(ctx, `
		UPDATE tables SET name = ?, seats = ?, updated_at = ? WHERE id = ?`,
		table.Name,
		table.Seats,
		table.UpdatedAt.Format(time.RFC3339),
		table.ID,
	)
	if err != nil {
		return mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetTable retrieves a roster entry by ID.
func (r *TableRepository) GetTable(ctx context.Context, id int) (persistence.Table, error) {
	row := r.store.db.QueryRowContext(ctx, `
		SELECT id, name, seats, created_at, updated_at FROM tables WHERE id = ?`, id)

	table, err := scanTable(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Table{}, persistence.ErrNotFound
		}
		return persistence.Table{}, mapError(err)
	}
	return table, nil
}

// ListTables returns the full roster ordered by ID ascending. This order is
// the availability scan order and must stay stable across calls.
func (r *TableRepository) ListTables(ctx context.Context) ([]persistence.Table, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, name, seats, created_at, updated_at FROM tables ORDER BY id ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var tables []persistence.Table
	for rows.Next() {
		table, err := scanTable(rows.Scan)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return tables, nil
}

// DeleteTable removes a roster entry.
func (r *TableRepository) DeleteTable(ctx context.Context, id int) error {
	result, err := r.store.db.ExecContext(ctx, `DELETE FROM tables WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func scanTable(scan func(dest ...any) error) (persistence.Table, error) {
	var table persistence.Table
	var createdAt, updatedAt string

	if err := scan(&table.ID, &table.Name, &table.Seats, &createdAt, &updatedAt); err != nil {
		return persistence.Table{}, err
	}

	var err error
	if table.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Table{}, fmt.Errorf("sqlite: parse created_at: %w", err)
	}
	if table.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.Table{}, fmt.Errorf("sqlite: parse updated_at: %w", err)
	}
	return table, nil
}
