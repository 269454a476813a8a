// Package engine composes the field registry, view state, predicate
// compiler, sort resolver, and pagination planner into the grid query
// executor, and fronts the store for lifecycle operations.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gridline-labs/gridline/internal/query"
	"github.com/gridline-labs/gridline/internal/store"
	"github.com/gridline-labs/gridline/pkg/grid"
)

// Engine executes grid operations. It is stateless per call: all
// state lives in the store, so calls may run concurrently.
type Engine struct {
	store  store.Store
	logger *slog.Logger
}

// Config holds the engine's collaborators.
type Config struct {
	Store  store.Store
	Logger *slog.Logger
}

// New creates an engine.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: cfg.Store, logger: logger}
}

// ListPage turns a stored view or ad-hoc filter/sort parameters into
// one correctly ordered, filtered, stably paginated page of rows.
func (e *Engine) ListPage(ctx context.Context, tableID string, opts grid.ListOptions) (*grid.Page, error) {
	if _, err := e.store.GetTable(ctx, tableID); err != nil {
		return nil, err
	}

	// The registry is re-resolved per request; fields can be added
	// mid-session and must never be cached across calls.
	fields, err := e.store.ListFields(ctx, tableID)
	if err != nil {
		return nil, err
	}
	reg := query.NewRegistry(fields)

	filters, sorts := opts.Filters, opts.Sorts
	hidden := map[string]bool{}
	if opts.ViewID != "" {
		view, err := e.store.GetView(ctx, opts.ViewID)
		if err != nil {
			return nil, err
		}
		if view.TableID != tableID {
			return nil, fmt.Errorf("%w: view %s does not belong to table %s", grid.ErrInvalidReference, view.ID, tableID)
		}
		filters, sorts = view.Filters, view.Sorts
		for _, id := range view.HiddenFieldIDs {
			hidden[id] = true
		}
	}

	predicate, err := query.Compile(reg, filters, opts.Search)
	if err != nil {
		return nil, err
	}
	predSQL, predArgs := query.Lower(predicate)

	orderSQL, orderArgs, err := query.OrderBy(reg, sorts)
	if err != nil {
		return nil, err
	}

	limit := grid.ClampLimit(opts.Limit)
	strategy, err := query.PlanPagination(len(sorts) > 0, opts.Cursor)
	if err != nil {
		return nil, err
	}

	plan := query.Plan{
		Predicate:     predSQL,
		PredicateArgs: predArgs,
		OrderBy:       orderSQL,
		OrderArgs:     orderArgs,
		Limit:         limit,
		Strategy:      strategy,
	}

	records, err := e.store.QueryRecordsPage(ctx, tableID, plan)
	if err != nil {
		return nil, err
	}

	hasMore := len(records) > limit
	if hasMore {
		records = records[:limit]
	}

	nextCursor := ""
	if hasMore {
		switch s := strategy.(type) {
		case query.Keyset:
			nextCursor = s.Next(records[len(records)-1].Seq)
		case query.Offset:
			nextCursor = s.Next(len(records))
		}
	}

	page, err := e.shapePage(ctx, fields, hidden, records)
	if err != nil {
		return nil, err
	}
	page.HasMore = hasMore
	page.NextCursor = nextCursor

	e.logger.Debug("page query executed",
		"table", tableID,
		"view", opts.ViewID,
		"filters", len(filters),
		"sorts", len(sorts),
		"rows", len(page.Rows),
		"hasMore", hasMore,
	)
	return page, nil
}

// shapePage loads the page's cells in one batch and shapes the
// result. Every column gets a value in every row, nil for empty
// cells, so consumer-side comparisons are total. Hidden columns are
// kept with the flag set; dropping them is the consumer's job.
func (e *Engine) shapePage(ctx context.Context, fields []grid.Field, hidden map[string]bool, records []grid.Record) (*grid.Page, error) {
	columns := make([]grid.Column, 0, len(fields))
	for _, f := range fields {
		columns = append(columns, grid.Column{
			ID:     f.ID,
			Name:   f.Name,
			Type:   f.Type,
			Hidden: hidden[f.ID],
		})
	}

	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	cells, err := e.store.CellsForRecords(ctx, ids)
	if err != nil {
		return nil, err
	}

	rows := make([]grid.Row, 0, len(records))
	for _, r := range records {
		row := grid.Row{ID: r.ID, Cells: make(map[string]any, len(fields))}
		for _, f := range fields {
			row.Cells[f.ID] = cells[r.ID][f.ID].Native()
		}
		rows = append(rows, row)
	}

	return &grid.Page{Columns: columns, Rows: rows}, nil
}

// UpsertCell coerces raw input into a typed value and writes it to
// one (record, field) pair. Malformed input degrades to an empty
// cell rather than failing.
func (e *Engine) UpsertCell(ctx context.Context, recordID, fieldID string, raw any) (*grid.CellValue, error) {
	record, err := e.store.GetRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	field, err := e.store.GetField(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	if field.TableID != record.TableID {
		return nil, fmt.Errorf("%w: field %s does not belong to table %s", grid.ErrInvalidReference, fieldID, record.TableID)
	}

	return e.store.UpsertCell(ctx, recordID, fieldID, grid.Coerce(raw))
}
