package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gridline-labs/gridline/pkg/grid"
)

// CreateField appends a typed column to a table. Position is assigned
// after the current last field; the type is immutable afterwards.
func (s *SQLiteStore) CreateField(ctx context.Context, tableID, name string, ft grid.FieldType) (*grid.Field, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if !ft.Valid() {
		return nil, fmt.Errorf("%w: field type %q", grid.ErrInvalidOperator, ft)
	}
	if _, err := s.GetTable(ctx, tableID); err != nil {
		return nil, err
	}

	field := &grid.Field{
		ID:      generateID(),
		TableID: tableID,
		Name:    name,
		Type:    ft,
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(position), -1) + 1 FROM fields WHERE table_id = ?`, tableID,
		).Scan(&field.Position); err != nil {
			return fmt.Errorf("failed to assign field position: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO fields (id, table_id, name, type, position) VALUES (?, ?, ?, ?, ?)`,
			field.ID, field.TableID, field.Name, field.Type, field.Position,
		); err != nil {
			return fmt.Errorf("failed to insert field: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return field, nil
}

// ListFields returns a table's fields in position order.
func (s *SQLiteStore) ListFields(ctx context.Context, tableID string) ([]grid.Field, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, table_id, name, type, position FROM fields WHERE table_id = ? ORDER BY position`,
		tableID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list fields: %w", err)
	}
	defer rows.Close()

	var fields []grid.Field
	for rows.Next() {
		var f grid.Field
		if err := rows.Scan(&f.ID, &f.TableID, &f.Name, &f.Type, &f.Position); err != nil {
			return nil, fmt.Errorf("failed to scan field: %w", err)
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

// DeleteField removes a field, its cells, and any view filter or sort
// clauses naming it.
func (s *SQLiteStore) DeleteField(ctx context.Context, id string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM fields WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete field: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: field %s", grid.ErrNotFound, id)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM view_filters WHERE field_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete view filters for field: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM view_sorts WHERE field_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete view sorts for field: %w", err)
		}
		return nil
	})
}

// getField loads a field through any query-capable handle.
func getField(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}, id string) (*grid.Field, error) {
	f := &grid.Field{}
	err := q.QueryRowContext(ctx,
		`SELECT id, table_id, name, type, position FROM fields WHERE id = ?`, id,
	).Scan(&f.ID, &f.TableID, &f.Name, &f.Type, &f.Position)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: field %s", grid.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get field: %w", err)
	}
	return f, nil
}

// GetField retrieves a field by id.
func (s *SQLiteStore) GetField(ctx context.Context, id string) (*grid.Field, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	return getField(ctx, s.db, id)
}
