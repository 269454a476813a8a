package query

import (
	"fmt"

	"github.com/gridline-labs/gridline/pkg/grid"
)

// Compile turns a filter list plus an optional free-text search term
// into a single admission predicate: the AND of all filter clauses,
// further ANDed with an OR-across-fields contains test for the search
// term. Bad filter shape (unknown operator, missing value, field not
// in the registry) is an error; unparseable values inside an
// otherwise valid filter degrade to a matches-nothing clause instead.
func Compile(reg *Registry, filters []grid.Filter, search string) (Node, error) {
	root := &And{}

	for _, f := range filters {
		node, err := compileFilter(reg, f)
		if err != nil {
			return nil, err
		}
		root.Children = append(root.Children, node)
	}

	if search != "" {
		or := &Or{}
		for _, fld := range reg.Fields() {
			or.Children = append(or.Children, &Compare{Field: fld, Op: grid.OpContains, Value: search})
		}
		root.Children = append(root.Children, or)
	}

	return root, nil
}

func compileFilter(reg *Registry, f grid.Filter) (Node, error) {
	if !f.Operator.Valid() {
		return nil, fmt.Errorf("%w: %q", grid.ErrInvalidOperator, f.Operator)
	}
	fld, ok := reg.Lookup(f.FieldID)
	if !ok {
		return nil, fmt.Errorf("%w: field %s", grid.ErrInvalidReference, f.FieldID)
	}

	switch f.Operator {
	case grid.OpIsEmpty:
		return &IsEmpty{Field: fld}, nil
	case grid.OpIsNotEmpty:
		return &IsEmpty{Field: fld, Negate: true}, nil
	}

	if f.Value == nil {
		return nil, fmt.Errorf("%w: %s requires a value", grid.ErrInvalidOperator, f.Operator)
	}
	return &Compare{Field: fld, Op: f.Operator, Value: *f.Value}, nil
}
