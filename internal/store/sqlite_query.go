package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/gridline-labs/gridline/internal/query"
	"github.com/gridline-labs/gridline/pkg/grid"
)

// QueryRecordsPage runs a compiled page plan as one bounded SELECT.
// It fetches plan.Limit+1 records so the caller can detect a further
// page without a separate count.
func (s *SQLiteStore) QueryRecordsPage(ctx context.Context, tableID string, plan query.Plan) ([]grid.Record, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	var sb strings.Builder
	sb.WriteString(`SELECT r.seq, r.id, r.table_id, r.created_at FROM records r WHERE r.table_id = ?`)
	args := []any{tableID}

	if plan.Predicate != "" {
		sb.WriteString(" AND ")
		sb.WriteString(plan.Predicate)
		args = append(args, plan.PredicateArgs...)
	}

	if k, ok := plan.Strategy.(query.Keyset); ok && k.AfterSeq > 0 {
		sb.WriteString(" AND r.seq > ?")
		args = append(args, k.AfterSeq)
	}

	sb.WriteString(" ORDER BY ")
	sb.WriteString(plan.OrderBy)
	args = append(args, plan.OrderArgs...)

	sb.WriteString(" LIMIT ?")
	args = append(args, plan.Limit+1)

	if o, ok := plan.Strategy.(query.Offset); ok && o.Offset > 0 {
		sb.WriteString(" OFFSET ?")
		args = append(args, o.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records page: %w", err)
	}
	defer rows.Close()

	var records []grid.Record
	for rows.Next() {
		var r grid.Record
		if err := rows.Scan(&r.Seq, &r.ID, &r.TableID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
