package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gridline-labs/gridline/pkg/grid"
)

// UpsertCell writes the value for one (record, field) pair, creating
// the cell on first write and replacing it afterwards. Concurrent
// writers serialize at the store; the last committed write wins.
func (s *SQLiteStore) UpsertCell(ctx context.Context, recordID, fieldID string, v grid.Value) (*grid.CellValue, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		return upsertCellTx(ctx, tx, recordID, fieldID, v)
	})
	if err != nil {
		return nil, err
	}

	return &grid.CellValue{RecordID: recordID, FieldID: fieldID, Value: v}, nil
}

func upsertCellTx(ctx context.Context, tx *sql.Tx, recordID, fieldID string, v grid.Value) error {
	kind, text, num := bindValue(v)
	_, err := tx.ExecContext(ctx,
		`INSERT INTO cell_values (record_id, field_id, kind, value_text, value_num)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (record_id, field_id)
		 DO UPDATE SET kind = excluded.kind, value_text = excluded.value_text, value_num = excluded.value_num`,
		recordID, fieldID, kind, text, num,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert cell (%s, %s): %w", recordID, fieldID, err)
	}
	return nil
}

// CellsForRecords loads all cells of the given records in one query,
// keyed by record id then field id.
func (s *SQLiteStore) CellsForRecords(ctx context.Context, recordIDs []string) (map[string]map[string]grid.Value, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	result := make(map[string]map[string]grid.Value, len(recordIDs))
	if len(recordIDs) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?, ", len(recordIDs)-1) + "?"
	args := make([]any, len(recordIDs))
	for i, id := range recordIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT record_id, field_id, kind, value_text, value_num
		 FROM cell_values WHERE record_id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load cells: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recordID, fieldID, kind string
		var text sql.NullString
		var num sql.NullFloat64
		if err := rows.Scan(&recordID, &fieldID, &kind, &text, &num); err != nil {
			return nil, fmt.Errorf("failed to scan cell: %w", err)
		}
		if result[recordID] == nil {
			result[recordID] = make(map[string]grid.Value)
		}
		result[recordID][fieldID] = scanValue(kind, text, num)
	}
	return result, rows.Err()
}

// bindValue splits a Value into its stored columns. Number cells also
// persist their canonical decimal text so substring operators read
// value_text for every kind, at the same precision Textualize renders.
func bindValue(v grid.Value) (kind string, text sql.NullString, num sql.NullFloat64) {
	switch v.Kind {
	case grid.KindText:
		return "text", sql.NullString{String: v.Text, Valid: true}, sql.NullFloat64{}
	case grid.KindNumber:
		return "number", sql.NullString{String: grid.Textualize(v), Valid: true}, sql.NullFloat64{Float64: v.Num, Valid: true}
	default:
		return "null", sql.NullString{}, sql.NullFloat64{}
	}
}

// scanValue rebuilds a Value from its stored columns.
func scanValue(kind string, text sql.NullString, num sql.NullFloat64) grid.Value {
	switch kind {
	case "text":
		return grid.TextValue(text.String)
	case "number":
		return grid.NumberValue(num.Float64)
	default:
		return grid.Null
	}
}
