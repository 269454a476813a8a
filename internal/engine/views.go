package engine

import (
	"context"
	"fmt"

	"github.com/gridline-labs/gridline/internal/query"
	"github.com/gridline-labs/gridline/pkg/grid"
)

// CreateViewParams are the inputs of CreateView.
type CreateViewParams struct {
	Name           string
	Filters        []grid.Filter
	Sorts          []grid.Sort
	HiddenFieldIDs []string
	IsDefault      bool
}

// CreateView validates the clause lists against the table's field
// registry and persists the view.
func (e *Engine) CreateView(ctx context.Context, tableID string, params CreateViewParams) (*grid.View, error) {
	reg, err := e.registry(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if err := validateClauses(reg, params.Filters, params.Sorts, params.HiddenFieldIDs); err != nil {
		return nil, err
	}

	return e.store.CreateView(ctx, &grid.View{
		TableID:        tableID,
		Name:           params.Name,
		IsDefault:      params.IsDefault,
		HiddenFieldIDs: params.HiddenFieldIDs,
		Filters:        params.Filters,
		Sorts:          params.Sorts,
	})
}

// UpdateView validates any replaced clause lists and applies the
// partial update.
func (e *Engine) UpdateView(ctx context.Context, viewID string, patch grid.ViewPatch) (*grid.View, error) {
	view, err := e.store.GetView(ctx, viewID)
	if err != nil {
		return nil, err
	}
	reg, err := e.registry(ctx, view.TableID)
	if err != nil {
		return nil, err
	}

	var filters []grid.Filter
	var sorts []grid.Sort
	var hidden []string
	if patch.Filters != nil {
		filters = *patch.Filters
	}
	if patch.Sorts != nil {
		sorts = *patch.Sorts
	}
	if patch.HiddenFieldIDs != nil {
		hidden = *patch.HiddenFieldIDs
	}
	if err := validateClauses(reg, filters, sorts, hidden); err != nil {
		return nil, err
	}

	return e.store.UpdateView(ctx, viewID, patch)
}

// GetView retrieves a view.
func (e *Engine) GetView(ctx context.Context, viewID string) (*grid.View, error) {
	return e.store.GetView(ctx, viewID)
}

// ListViews returns a table's views in creation order.
func (e *Engine) ListViews(ctx context.Context, tableID string) ([]*grid.View, error) {
	if _, err := e.store.GetTable(ctx, tableID); err != nil {
		return nil, err
	}
	return e.store.ListViews(ctx, tableID)
}

// DeleteView removes a view; the store rejects deleting a table's
// only view and repairs the default flag when needed.
func (e *Engine) DeleteView(ctx context.Context, viewID string) error {
	return e.store.DeleteView(ctx, viewID)
}

// SetDefaultView promotes a view to its table's default.
func (e *Engine) SetDefaultView(ctx context.Context, viewID string) error {
	view, err := e.store.GetView(ctx, viewID)
	if err != nil {
		return err
	}
	return e.store.SetDefaultView(ctx, view.TableID, viewID)
}

// RepairDefaultViews restores the single-default invariant on every
// table. Runs at startup so a database edited outside the API heals
// before queries resolve default views.
func (e *Engine) RepairDefaultViews(ctx context.Context) error {
	tables, err := e.store.ListTables(ctx)
	if err != nil {
		return err
	}
	for _, table := range tables {
		if err := e.store.EnsureDefaultView(ctx, table.ID); err != nil {
			return fmt.Errorf("failed to repair default view for table %s: %w", table.ID, err)
		}
	}
	return nil
}

// registry loads a table's field registry for one request.
func (e *Engine) registry(ctx context.Context, tableID string) (*query.Registry, error) {
	fields, err := e.store.ListFields(ctx, tableID)
	if err != nil {
		return nil, err
	}
	return query.NewRegistry(fields), nil
}

// validateClauses compiles the clause lists against the registry,
// surfacing bad references and operator/value mismatches before
// anything is persisted.
func validateClauses(reg *query.Registry, filters []grid.Filter, sorts []grid.Sort, hidden []string) error {
	if _, err := query.Compile(reg, filters, ""); err != nil {
		return err
	}
	if _, _, err := query.OrderBy(reg, sorts); err != nil {
		return err
	}
	for _, id := range hidden {
		if _, ok := reg.Lookup(id); !ok {
			return fmt.Errorf("%w: hidden field %s", grid.ErrInvalidReference, id)
		}
	}
	return nil
}
