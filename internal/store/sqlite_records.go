package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gridline-labs/gridline/pkg/grid"
)

// CreateRecord inserts one row with optional initial cells, keyed by
// field id. The store assigns the strictly increasing seq.
func (s *SQLiteStore) CreateRecord(ctx context.Context, tableID string, cells map[string]grid.Value) (*grid.Record, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if _, err := s.GetTable(ctx, tableID); err != nil {
		return nil, err
	}

	record := &grid.Record{
		ID:        generateID(),
		TableID:   tableID,
		CreatedAt: time.Now().UTC(),
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		seq, err := insertRecord(ctx, tx, record, cells)
		if err != nil {
			return err
		}
		record.Seq = seq
		return nil
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// BulkCreateRecords inserts rows in chunks of BulkChunkSize, one
// transaction per chunk. A failed chunk leaves earlier chunks
// committed; the caller may retry from the returned count.
func (s *SQLiteStore) BulkCreateRecords(ctx context.Context, tableID string, rows []map[string]grid.Value) ([]string, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if _, err := s.GetTable(ctx, tableID); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(rows))
	for start := 0; start < len(rows); start += BulkChunkSize {
		end := start + BulkChunkSize
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		err := s.inTx(ctx, func(tx *sql.Tx) error {
			now := time.Now().UTC()
			for _, cells := range chunk {
				record := &grid.Record{ID: generateID(), TableID: tableID, CreatedAt: now}
				if _, err := insertRecord(ctx, tx, record, cells); err != nil {
					return err
				}
				ids = append(ids, record.ID)
			}
			return nil
		})
		if err != nil {
			return ids[:start], fmt.Errorf("bulk insert failed at row %d: %w", start, err)
		}
	}

	return ids, nil
}

// insertRecord writes one record plus its cells inside tx and returns
// the assigned seq.
func insertRecord(ctx context.Context, tx *sql.Tx, record *grid.Record, cells map[string]grid.Value) (int64, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO records (id, table_id, created_at) VALUES (?, ?, ?)`,
		record.ID, record.TableID, record.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert record: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read record seq: %w", err)
	}

	for fieldID, v := range cells {
		if err := upsertCellTx(ctx, tx, record.ID, fieldID, v); err != nil {
			return 0, err
		}
	}
	return seq, nil
}

// GetRecord retrieves a record by id.
func (s *SQLiteStore) GetRecord(ctx context.Context, id string) (*grid.Record, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	record := &grid.Record{}
	err := s.db.QueryRowContext(ctx,
		`SELECT seq, id, table_id, created_at FROM records WHERE id = ?`, id,
	).Scan(&record.Seq, &record.ID, &record.TableID, &record.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: record %s", grid.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return record, nil
}

// DeleteRecord removes a record; its cells cascade.
func (s *SQLiteStore) DeleteRecord(ctx context.Context, id string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: record %s", grid.ErrNotFound, id)
	}
	return nil
}
