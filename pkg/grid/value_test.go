package grid

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want Value
	}{
		{name: "string", raw: "hello", want: TextValue("hello")},
		{name: "empty string", raw: "", want: TextValue("")},
		{name: "float64", raw: 42.5, want: NumberValue(42.5)},
		{name: "int", raw: 7, want: NumberValue(7)},
		{name: "json number", raw: json.Number("3.25"), want: NumberValue(3.25)},
		{name: "nil", raw: nil, want: Null},
		{name: "bool degrades to null", raw: true, want: Null},
		{name: "slice degrades to null", raw: []string{"x"}, want: Null},
		{name: "map degrades to null", raw: map[string]any{"a": 1}, want: Null},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Coerce(tt.raw))
		})
	}
}

func TestTextualize(t *testing.T) {
	assert.Equal(t, "hello", Textualize(TextValue("hello")))
	assert.Equal(t, "", Textualize(Null))
	assert.Equal(t, "30", Textualize(NumberValue(30)))
	assert.Equal(t, "2.5", Textualize(NumberValue(2.5)))
	assert.Equal(t, "-0.125", Textualize(NumberValue(-0.125)))
}

func TestNumeric(t *testing.T) {
	assert.Equal(t, 12.5, NumberValue(12.5).Numeric())
	assert.Equal(t, 42.0, TextValue("42").Numeric())
	assert.Equal(t, 42.0, TextValue(" 42 ").Numeric())
	assert.Equal(t, 0.0, TextValue("not a number").Numeric())
	assert.Equal(t, 0.0, Null.Numeric())
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		ft   FieldType
		want int
	}{
		{name: "numbers ordered", a: NumberValue(1), b: NumberValue(2), ft: FieldTypeNumber, want: -1},
		{name: "numbers equal", a: NumberValue(3), b: NumberValue(3), ft: FieldTypeNumber, want: 0},
		{name: "numeric text on number field", a: TextValue("10"), b: NumberValue(9), ft: FieldTypeNumber, want: 1},
		{name: "unparseable text counts as zero", a: TextValue("abc"), b: NumberValue(0), ft: FieldTypeNumber, want: 0},
		{name: "null counts as zero on number field", a: Null, b: NumberValue(-1), ft: FieldTypeNumber, want: 1},
		{name: "text code point order", a: TextValue("Apple"), b: TextValue("apple"), ft: FieldTypeText, want: -1},
		{name: "null is empty text", a: Null, b: TextValue("a"), ft: FieldTypeText, want: -1},
		{name: "number textualized on text field", a: NumberValue(2), b: TextValue("10"), ft: FieldTypeText, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.a, tt.b, tt.ft))
		})
	}
}

func TestZeroValue(t *testing.T) {
	assert.Equal(t, TextValue(""), ZeroValue(FieldTypeText))
	assert.Equal(t, NumberValue(0), ZeroValue(FieldTypeNumber))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultPageSize, ClampLimit(0))
	assert.Equal(t, MinPageSize, ClampLimit(-5))
	assert.Equal(t, 25, ClampLimit(25))
	assert.Equal(t, MaxPageSize, ClampLimit(10_000))
}
