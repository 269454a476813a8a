package query

import (
	"strconv"
	"strings"

	"github.com/gridline-labs/gridline/pkg/grid"
)

// Node is a node of the predicate AST. Lowering emits parameterized
// SQL over the record alias `r`; values travel as bound arguments.
type Node interface {
	lower(b *builder)
}

// And admits a record when every child admits it. An empty And
// admits everything.
type And struct {
	Children []Node
}

// Or admits a record when any child admits it. An empty Or admits
// nothing.
type Or struct {
	Children []Node
}

// Compare admits a record by comparing one field's cell against a
// bound value.
type Compare struct {
	Field grid.Field
	Op    grid.Operator
	Value string
}

// IsEmpty admits a record whose cell for the field is absent, null,
// or textualizes to the empty string. Negate inverts the test.
type IsEmpty struct {
	Field  grid.Field
	Negate bool
}

// Nothing admits no record. It is the compiled form of a filter whose
// value cannot apply, such as non-numeric text compared against a
// number field: the clause matches nothing rather than erroring.
type Nothing struct{}

// builder accumulates SQL text and its bound arguments.
type builder struct {
	sql  strings.Builder
	args []any
}

func (b *builder) write(s string) {
	b.sql.WriteString(s)
}

func (b *builder) bind(arg any) {
	b.sql.WriteByte('?')
	b.args = append(b.args, arg)
}

// textExpr emits the textualized cell expression for a field. Number
// cells persist their canonical decimal text in value_text at write
// time, so every kind reads the same column at full precision; absent
// and null cells read as ''.
func textExpr(b *builder, fieldID string) {
	b.write("COALESCE((SELECT c.value_text FROM cell_values c WHERE c.record_id = r.id AND c.field_id = ")
	b.bind(fieldID)
	b.write("), '')")
}

// numExpr emits the numeric cell expression for a field: numbers as
// stored, text via CAST (prefix parse, '' -> 0), absent or null
// cells as 0.
func numExpr(b *builder, fieldID string) {
	b.write("COALESCE((SELECT CASE c.kind WHEN 'number' THEN c.value_num WHEN 'text' THEN CAST(COALESCE(c.value_text, '') AS REAL) ELSE 0 END FROM cell_values c WHERE c.record_id = r.id AND c.field_id = ")
	b.bind(fieldID)
	b.write("), 0)")
}

func (n *And) lower(b *builder) {
	if len(n.Children) == 0 {
		b.write("1 = 1")
		return
	}
	b.write("(")
	for i, child := range n.Children {
		if i > 0 {
			b.write(" AND ")
		}
		child.lower(b)
	}
	b.write(")")
}

func (n *Or) lower(b *builder) {
	if len(n.Children) == 0 {
		b.write("0 = 1")
		return
	}
	b.write("(")
	for i, child := range n.Children {
		if i > 0 {
			b.write(" OR ")
		}
		child.lower(b)
	}
	b.write(")")
}

func (n *Compare) lower(b *builder) {
	switch n.Op {
	case grid.OpContains, grid.OpNotContains:
		b.write("instr(lower(")
		textExpr(b, n.Field.ID)
		b.write("), lower(")
		b.bind(n.Value)
		if n.Op == grid.OpContains {
			b.write(")) > 0")
		} else {
			b.write(")) = 0")
		}

	case grid.OpEquals:
		if n.Field.Type == grid.FieldTypeNumber {
			f, err := strconv.ParseFloat(strings.TrimSpace(n.Value), 64)
			if err != nil {
				(&Nothing{}).lower(b)
				return
			}
			numExpr(b, n.Field.ID)
			b.write(" = ")
			b.bind(f)
			return
		}
		textExpr(b, n.Field.ID)
		b.write(" = ")
		b.bind(n.Value)

	case grid.OpGreaterThan, grid.OpLessThan:
		cmp := " > "
		if n.Op == grid.OpLessThan {
			cmp = " < "
		}
		if n.Field.Type == grid.FieldTypeNumber {
			f, err := strconv.ParseFloat(strings.TrimSpace(n.Value), 64)
			if err != nil {
				(&Nothing{}).lower(b)
				return
			}
			numExpr(b, n.Field.ID)
			b.write(cmp)
			b.bind(f)
			return
		}
		textExpr(b, n.Field.ID)
		b.write(cmp)
		b.bind(n.Value)
	}
}

func (n *IsEmpty) lower(b *builder) {
	textExpr(b, n.Field.ID)
	if n.Negate {
		b.write(" <> ''")
	} else {
		b.write(" = ''")
	}
}

func (n *Nothing) lower(b *builder) {
	b.write("0 = 1")
}

// Lower renders a predicate into SQL text plus its bound arguments.
func Lower(n Node) (string, []any) {
	b := &builder{}
	n.lower(b)
	return b.sql.String(), b.args
}
