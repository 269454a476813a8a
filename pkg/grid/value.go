package grid

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ValueKind tags the content of a Value.
type ValueKind int

// Value kinds.
const (
	KindNull ValueKind = iota
	KindText
	KindNumber
)

// Value is the tagged representation of a cell's content. The zero
// value is Null. Every comparison site switches on the kind rather
// than holding untyped data.
type Value struct {
	Kind ValueKind
	Text string
	Num  float64
}

// Null is the empty cell value.
var Null = Value{Kind: KindNull}

// Text returns a text value.
func TextValue(s string) Value { return Value{Kind: KindText, Text: s} }

// NumberValue returns a number value.
func NumberValue(f float64) Value { return Value{Kind: KindNumber, Num: f} }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Coerce converts untyped external input into a Value. Strings and
// numbers map to their kinds; nil and anything else degrade to Null.
// Malformed writes become empty cells rather than failing the request.
func Coerce(raw any) Value {
	switch x := raw.(type) {
	case nil:
		return Null
	case string:
		return TextValue(x)
	case float64:
		return NumberValue(x)
	case float32:
		return NumberValue(float64(x))
	case int:
		return NumberValue(float64(x))
	case int64:
		return NumberValue(float64(x))
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Null
		}
		return NumberValue(f)
	default:
		return Null
	}
}

// Textualize renders a value for substring operators and display:
// numbers become decimal text, null becomes the empty string.
func Textualize(v Value) string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	default:
		return ""
	}
}

// Numeric coerces a value to a number. Text that does not parse as a
// float counts as 0, null counts as 0.
func (v Value) Numeric() float64 {
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindText:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Compare orders two values under a field type. Number fields compare
// via numeric coercion; text fields compare case-sensitively by code
// point. Returns -1, 0, or 1.
func Compare(a, b Value, ft FieldType) int {
	if ft == FieldTypeNumber {
		an, bn := a.Numeric(), b.Numeric()
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(Textualize(a), Textualize(b))
}

// Native returns the value as a plain Go value for JSON shaping:
// string, float64, or nil.
func (v Value) Native() any {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		return v.Num
	default:
		return nil
	}
}

// ZeroValue is the substitute for missing cells in sort keys: the
// empty string for text fields, 0 for number fields. Missing cells
// sort as if they held the minimum value (so they land last under a
// descending sort).
func ZeroValue(ft FieldType) Value {
	if ft == FieldTypeNumber {
		return NumberValue(0)
	}
	return TextValue("")
}
