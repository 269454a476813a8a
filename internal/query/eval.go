package query

import (
	"strconv"
	"strings"

	"github.com/gridline-labs/gridline/pkg/grid"
)

// Matches evaluates a predicate against a record's cells in memory,
// with the same semantics the lowered SQL has. Cells is keyed by
// field id; absent keys and null values both count as empty.
func Matches(n Node, cells map[string]grid.Value) bool {
	switch node := n.(type) {
	case *And:
		for _, child := range node.Children {
			if !Matches(child, cells) {
				return false
			}
		}
		return true

	case *Or:
		for _, child := range node.Children {
			if Matches(child, cells) {
				return true
			}
		}
		return false

	case *IsEmpty:
		empty := grid.Textualize(cells[node.Field.ID]) == ""
		return empty != node.Negate

	case *Compare:
		return matchesCompare(node, cells[node.Field.ID])

	case *Nothing:
		return false
	}
	return false
}

func matchesCompare(n *Compare, cell grid.Value) bool {
	switch n.Op {
	case grid.OpContains:
		return strings.Contains(foldASCII(grid.Textualize(cell)), foldASCII(n.Value))
	case grid.OpNotContains:
		return !strings.Contains(foldASCII(grid.Textualize(cell)), foldASCII(n.Value))

	case grid.OpEquals:
		if n.Field.Type == grid.FieldTypeNumber {
			f, err := strconv.ParseFloat(strings.TrimSpace(n.Value), 64)
			if err != nil {
				return false
			}
			return cell.Numeric() == f
		}
		return grid.Textualize(cell) == n.Value

	case grid.OpGreaterThan, grid.OpLessThan:
		var cmp int
		if n.Field.Type == grid.FieldTypeNumber {
			f, err := strconv.ParseFloat(strings.TrimSpace(n.Value), 64)
			if err != nil {
				return false
			}
			cmp = grid.Compare(cell, grid.NumberValue(f), grid.FieldTypeNumber)
		} else {
			cmp = strings.Compare(grid.Textualize(cell), n.Value)
		}
		if n.Op == grid.OpGreaterThan {
			return cmp > 0
		}
		return cmp < 0
	}
	return false
}

// foldASCII lowercases ASCII letters only, the same folding SQLite's
// lower() applies inside the lowered predicate.
func foldASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}

// Comparator builds the composite in-memory comparator a sort list
// defines: each clause compares cells under the field's type with
// missing cells substituted by the type's zero value, negated for
// descending, with the mandatory insertion-order tie-break last.
func Comparator(reg *Registry, sorts []grid.Sort) func(a, b RecordCells) int {
	type key struct {
		field grid.Field
		desc  bool
	}
	keys := make([]key, 0, len(sorts))
	for _, s := range sorts {
		if fld, ok := reg.Lookup(s.FieldID); ok {
			keys = append(keys, key{field: fld, desc: s.Direction == grid.Descending})
		}
	}

	return func(a, b RecordCells) int {
		for _, k := range keys {
			av, ok := a.Cells[k.field.ID]
			if !ok || av.IsNull() {
				av = grid.ZeroValue(k.field.Type)
			}
			bv, ok := b.Cells[k.field.ID]
			if !ok || bv.IsNull() {
				bv = grid.ZeroValue(k.field.Type)
			}
			cmp := grid.Compare(av, bv, k.field.Type)
			if k.desc {
				cmp = -cmp
			}
			if cmp != 0 {
				return cmp
			}
		}
		switch {
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		default:
			return 0
		}
	}
}

// RecordCells pairs a record's insertion order with its cells, the
// inputs the comparator needs.
type RecordCells struct {
	Seq   int64
	Cells map[string]grid.Value
}
