package engine

import (
	"context"
	"fmt"

	"github.com/gridline-labs/gridline/pkg/grid"
)

// Lifecycle operations are thin pass-throughs: the engine only needs
// them so callers have one front door, the interesting invariants
// live in the store.

// CreateTable creates a table with its seeded default view.
func (e *Engine) CreateTable(ctx context.Context, name string) (*grid.Table, error) {
	return e.store.CreateTable(ctx, name)
}

// ListTables returns all tables.
func (e *Engine) ListTables(ctx context.Context) ([]*grid.Table, error) {
	return e.store.ListTables(ctx)
}

// DeleteTable removes a table and everything it owns.
func (e *Engine) DeleteTable(ctx context.Context, tableID string) error {
	return e.store.DeleteTable(ctx, tableID)
}

// CreateField appends a typed column to a table.
func (e *Engine) CreateField(ctx context.Context, tableID, name string, ft grid.FieldType) (*grid.Field, error) {
	return e.store.CreateField(ctx, tableID, name, ft)
}

// ListFields returns a table's fields in position order.
func (e *Engine) ListFields(ctx context.Context, tableID string) ([]grid.Field, error) {
	if _, err := e.store.GetTable(ctx, tableID); err != nil {
		return nil, err
	}
	return e.store.ListFields(ctx, tableID)
}

// DeleteField removes a field and the clauses referencing it.
func (e *Engine) DeleteField(ctx context.Context, fieldID string) error {
	return e.store.DeleteField(ctx, fieldID)
}

// CreateRecord inserts one row. Cell values are coerced; malformed
// input degrades to empty cells.
func (e *Engine) CreateRecord(ctx context.Context, tableID string, cells map[string]any) (*grid.Record, error) {
	coerced, err := e.coerceCells(ctx, tableID, cells)
	if err != nil {
		return nil, err
	}
	return e.store.CreateRecord(ctx, tableID, coerced)
}

// BulkCreateRecords inserts rows in independently committed chunks
// and returns the ids created.
func (e *Engine) BulkCreateRecords(ctx context.Context, tableID string, rows []map[string]any) ([]string, error) {
	coerced := make([]map[string]grid.Value, 0, len(rows))
	for _, cells := range rows {
		c, err := e.coerceCells(ctx, tableID, cells)
		if err != nil {
			return nil, err
		}
		coerced = append(coerced, c)
	}
	return e.store.BulkCreateRecords(ctx, tableID, coerced)
}

// DeleteRecord removes a row and its cells.
func (e *Engine) DeleteRecord(ctx context.Context, recordID string) error {
	return e.store.DeleteRecord(ctx, recordID)
}

// coerceCells types raw cell input and rejects field ids that do not
// belong to the table.
func (e *Engine) coerceCells(ctx context.Context, tableID string, cells map[string]any) (map[string]grid.Value, error) {
	reg, err := e.registry(ctx, tableID)
	if err != nil {
		return nil, err
	}

	coerced := make(map[string]grid.Value, len(cells))
	for fieldID, raw := range cells {
		if _, ok := reg.Lookup(fieldID); !ok {
			return nil, fmt.Errorf("%w: field %s does not belong to table %s", grid.ErrInvalidReference, fieldID, tableID)
		}
		coerced[fieldID] = grid.Coerce(raw)
	}
	return coerced, nil
}
