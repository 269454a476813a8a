package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gridline-labs/gridline/pkg/grid"
)

// CreateView persists a view. The first view of a table always
// becomes the default; a later view created with IsDefault set
// displaces the current default in the same transaction.
func (s *SQLiteStore) CreateView(ctx context.Context, view *grid.View) (*grid.View, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if _, err := s.GetTable(ctx, view.TableID); err != nil {
		return nil, err
	}

	view.ID = generateID()
	view.CreatedAt = time.Now().UTC()

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var existing int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM views WHERE table_id = ?`, view.TableID,
		).Scan(&existing); err != nil {
			return fmt.Errorf("failed to count views: %w", err)
		}
		if existing == 0 {
			view.IsDefault = true
		}

		if view.IsDefault {
			if _, err := tx.ExecContext(ctx,
				`UPDATE views SET is_default = 0 WHERE table_id = ?`, view.TableID,
			); err != nil {
				return fmt.Errorf("failed to unset default views: %w", err)
			}
		}

		hidden, err := marshalHidden(view.HiddenFieldIDs)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO views (id, table_id, name, is_default, hidden_field_ids, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			view.ID, view.TableID, view.Name, view.IsDefault, hidden, view.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert view: %w", err)
		}

		return writeViewClauses(ctx, tx, view.ID, view.Filters, view.Sorts)
	})
	if err != nil {
		return nil, err
	}

	return s.GetView(ctx, view.ID)
}

// GetView retrieves a view with its filter and sort lists.
func (s *SQLiteStore) GetView(ctx context.Context, id string) (*grid.View, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	view := &grid.View{}
	var hidden string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, table_id, name, is_default, hidden_field_ids, created_at FROM views WHERE id = ?`, id,
	).Scan(&view.ID, &view.TableID, &view.Name, &view.IsDefault, &hidden, &view.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: view %s", grid.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get view: %w", err)
	}

	if err := json.Unmarshal([]byte(hidden), &view.HiddenFieldIDs); err != nil {
		return nil, fmt.Errorf("failed to decode hidden field ids: %w", err)
	}

	if view.Filters, view.Sorts, err = s.loadViewClauses(ctx, id); err != nil {
		return nil, err
	}
	return view, nil
}

// ListViews returns a table's views in creation order.
func (s *SQLiteStore) ListViews(ctx context.Context, tableID string) ([]*grid.View, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM views WHERE table_id = ? ORDER BY created_at, rowid`, tableID)
	if err != nil {
		return nil, fmt.Errorf("failed to list views: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan view id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	views := make([]*grid.View, 0, len(ids))
	for _, id := range ids {
		v, err := s.GetView(ctx, id)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// UpdateView applies a partial update. Non-nil slice members replace
// the stored lists wholesale. IsDefault can only promote: setting it
// true displaces the current default in the same transaction, setting
// it false is ignored so the single-default invariant cannot break.
func (s *SQLiteStore) UpdateView(ctx context.Context, id string, patch grid.ViewPatch) (*grid.View, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	view, err := s.GetView(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if patch.Name != nil {
			if _, err := tx.ExecContext(ctx,
				`UPDATE views SET name = ? WHERE id = ?`, *patch.Name, id,
			); err != nil {
				return fmt.Errorf("failed to update view name: %w", err)
			}
		}

		if patch.HiddenFieldIDs != nil {
			hidden, err := marshalHidden(*patch.HiddenFieldIDs)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE views SET hidden_field_ids = ? WHERE id = ?`, hidden, id,
			); err != nil {
				return fmt.Errorf("failed to update hidden field ids: %w", err)
			}
		}

		if patch.Filters != nil || patch.Sorts != nil {
			filters, sorts := view.Filters, view.Sorts
			if patch.Filters != nil {
				filters = *patch.Filters
			}
			if patch.Sorts != nil {
				sorts = *patch.Sorts
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM view_filters WHERE view_id = ?`, id); err != nil {
				return fmt.Errorf("failed to clear view filters: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM view_sorts WHERE view_id = ?`, id); err != nil {
				return fmt.Errorf("failed to clear view sorts: %w", err)
			}
			if err := writeViewClauses(ctx, tx, id, filters, sorts); err != nil {
				return err
			}
		}

		if patch.IsDefault != nil && *patch.IsDefault {
			return setDefaultTx(ctx, tx, view.TableID, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetView(ctx, id)
}

// DeleteView removes a view. Deleting a table's only view is
// rejected; deleting the default view promotes the most recently
// created survivor inside the same transaction.
func (s *SQLiteStore) DeleteView(ctx context.Context, id string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	view, err := s.GetView(ctx, id)
	if err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM views WHERE table_id = ?`, view.TableID,
		).Scan(&count); err != nil {
			return fmt.Errorf("failed to count views: %w", err)
		}
		if count <= 1 {
			return fmt.Errorf("%w: view %s", grid.ErrLastViewDeletion, id)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM views WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete view: %w", err)
		}

		if view.IsDefault {
			return promoteLatestTx(ctx, tx, view.TableID)
		}
		return nil
	})
}

// SetDefaultView atomically moves the default flag of a table to the
// given view, leaving exactly one default at every point visible to
// other transactions.
func (s *SQLiteStore) SetDefaultView(ctx context.Context, tableID, viewID string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		return setDefaultTx(ctx, tx, tableID, viewID)
	})
}

// EnsureDefaultView repairs the single-default invariant: when views
// exist but none is default, the most recently created one is
// promoted. A table with zero views is left alone; queries treat it
// as an implicit unfiltered view.
func (s *SQLiteStore) EnsureDefaultView(ctx context.Context, tableID string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		var defaults int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM views WHERE table_id = ? AND is_default = 1`, tableID,
		).Scan(&defaults); err != nil {
			return fmt.Errorf("failed to count default views: %w", err)
		}
		if defaults == 1 {
			return nil
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE views SET is_default = 0 WHERE table_id = ?`, tableID,
		); err != nil {
			return fmt.Errorf("failed to reset default views: %w", err)
		}
		return promoteLatestTx(ctx, tx, tableID)
	})
}

func setDefaultTx(ctx context.Context, tx *sql.Tx, tableID, viewID string) error {
	var owner string
	err := tx.QueryRowContext(ctx, `SELECT table_id FROM views WHERE id = ?`, viewID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: view %s", grid.ErrNotFound, viewID)
	}
	if err != nil {
		return fmt.Errorf("failed to resolve view: %w", err)
	}
	if owner != tableID {
		return fmt.Errorf("%w: view %s does not belong to table %s", grid.ErrInvalidReference, viewID, tableID)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE views SET is_default = (id = ?) WHERE table_id = ?`, viewID, tableID,
	); err != nil {
		return fmt.Errorf("failed to set default view: %w", err)
	}
	return nil
}

// promoteLatestTx makes the most recently created view of a table the
// default. No-op when the table has no views.
func promoteLatestTx(ctx context.Context, tx *sql.Tx, tableID string) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE views SET is_default = 1 WHERE id =
		 (SELECT id FROM views WHERE table_id = ? ORDER BY created_at DESC, rowid DESC LIMIT 1)`,
		tableID,
	); err != nil {
		return fmt.Errorf("failed to promote default view: %w", err)
	}
	return nil
}

func (s *SQLiteStore) loadViewClauses(ctx context.Context, viewID string) ([]grid.Filter, []grid.Sort, error) {
	frows, err := s.db.QueryContext(ctx,
		`SELECT field_id, op, value FROM view_filters WHERE view_id = ? ORDER BY position`, viewID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load view filters: %w", err)
	}
	defer frows.Close()

	var filters []grid.Filter
	for frows.Next() {
		var f grid.Filter
		var value sql.NullString
		if err := frows.Scan(&f.FieldID, &f.Operator, &value); err != nil {
			return nil, nil, fmt.Errorf("failed to scan view filter: %w", err)
		}
		if value.Valid {
			f.Value = &value.String
		}
		filters = append(filters, f)
	}
	if err := frows.Err(); err != nil {
		return nil, nil, err
	}

	srows, err := s.db.QueryContext(ctx,
		`SELECT field_id, direction FROM view_sorts WHERE view_id = ? ORDER BY position`, viewID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load view sorts: %w", err)
	}
	defer srows.Close()

	var sorts []grid.Sort
	for srows.Next() {
		var srt grid.Sort
		if err := srows.Scan(&srt.FieldID, &srt.Direction); err != nil {
			return nil, nil, fmt.Errorf("failed to scan view sort: %w", err)
		}
		sorts = append(sorts, srt)
	}
	return filters, sorts, srows.Err()
}

func writeViewClauses(ctx context.Context, tx *sql.Tx, viewID string, filters []grid.Filter, sorts []grid.Sort) error {
	for i, f := range filters {
		var value sql.NullString
		if f.Value != nil {
			value = sql.NullString{String: *f.Value, Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO view_filters (view_id, position, field_id, op, value) VALUES (?, ?, ?, ?, ?)`,
			viewID, i, f.FieldID, f.Operator, value,
		); err != nil {
			return fmt.Errorf("failed to insert view filter: %w", err)
		}
	}
	for i, srt := range sorts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO view_sorts (view_id, position, field_id, direction) VALUES (?, ?, ?, ?)`,
			viewID, i, srt.FieldID, srt.Direction,
		); err != nil {
			return fmt.Errorf("failed to insert view sort: %w", err)
		}
	}
	return nil
}

func marshalHidden(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("failed to encode hidden field ids: %w", err)
	}
	return string(raw), nil
}
