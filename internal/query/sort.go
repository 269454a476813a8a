package query

import (
	"fmt"

	"github.com/gridline-labs/gridline/pkg/grid"
)

// OrderBy lowers a sort list into an ORDER BY clause over the record
// alias `r`. Missing and null cells take the field type's zero value
// (empty string or 0), so under a descending sort they land at the
// low end, i.e. last. The final tie-break on insertion order is
// always appended; it is what makes pagination well-defined and is
// not configurable.
func OrderBy(reg *Registry, sorts []grid.Sort) (string, []any, error) {
	b := &builder{}

	for _, s := range sorts {
		if !s.Direction.Valid() {
			return "", nil, fmt.Errorf("%w: direction %q", grid.ErrInvalidOperator, s.Direction)
		}
		fld, ok := reg.Lookup(s.FieldID)
		if !ok {
			return "", nil, fmt.Errorf("%w: field %s", grid.ErrInvalidReference, s.FieldID)
		}

		if fld.Type == grid.FieldTypeNumber {
			numExpr(b, fld.ID)
		} else {
			textExpr(b, fld.ID)
		}
		if s.Direction == grid.Descending {
			b.write(" DESC")
		} else {
			b.write(" ASC")
		}
		b.write(", ")
	}

	b.write("r.seq ASC")
	return b.sql.String(), b.args, nil
}
