package query

import "github.com/gridline-labs/gridline/pkg/grid"

// Registry is a table's field registry loaded once per query: the
// ordered field list indexed by id for O(1) lookup during predicate
// and sort compilation.
type Registry struct {
	fields []grid.Field
	byID   map[string]grid.Field
}

// NewRegistry builds a registry from fields already in position order.
func NewRegistry(fields []grid.Field) *Registry {
	byID := make(map[string]grid.Field, len(fields))
	for _, f := range fields {
		byID[f.ID] = f
	}
	return &Registry{fields: fields, byID: byID}
}

// Lookup returns the field with the given id.
func (r *Registry) Lookup(id string) (grid.Field, bool) {
	f, ok := r.byID[id]
	return f, ok
}

// Fields returns the fields in position order.
func (r *Registry) Fields() []grid.Field {
	return r.fields
}
