package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gridline-labs/gridline/pkg/grid"
)

// DefaultViewName is the name of the view seeded with a new table.
const DefaultViewName = "Grid view"

// CreateTable creates a table and seeds its default view, so every
// table starts with exactly one view carrying the default flag.
func (s *SQLiteStore) CreateTable(ctx context.Context, name string) (*grid.Table, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	table := &grid.Table{
		ID:        generateID(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO grid_tables (id, name, created_at) VALUES (?, ?, ?)`,
			table.ID, table.Name, table.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert table: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO views (id, table_id, name, is_default, hidden_field_ids, created_at)
			 VALUES (?, ?, ?, 1, '[]', ?)`,
			generateID(), table.ID, DefaultViewName, table.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to seed default view: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return table, nil
}

// GetTable retrieves a table by id.
func (s *SQLiteStore) GetTable(ctx context.Context, id string) (*grid.Table, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	table := &grid.Table{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM grid_tables WHERE id = ?`, id,
	).Scan(&table.ID, &table.Name, &table.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: table %s", grid.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get table: %w", err)
	}
	return table, nil
}

// ListTables retrieves all tables in creation order.
func (s *SQLiteStore) ListTables(ctx context.Context) ([]*grid.Table, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM grid_tables ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []*grid.Table
	for rows.Next() {
		t := &grid.Table{}
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// DeleteTable removes a table; fields, records, cells, and views
// cascade at the schema level.
func (s *SQLiteStore) DeleteTable(ctx context.Context, id string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM grid_tables WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete table: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: table %s", grid.ErrNotFound, id)
	}
	return nil
}
