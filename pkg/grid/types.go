package grid

import "time"

// FieldType is the declared type of a field's cell values.
type FieldType string

// Field type constants.
const (
	FieldTypeText   FieldType = "text"
	FieldTypeNumber FieldType = "number"
)

// Valid reports whether ft is a known field type.
func (ft FieldType) Valid() bool {
	return ft == FieldTypeText || ft == FieldTypeNumber
}

// Table is a user-defined grid that owns fields, records, and views.
type Table struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Field is a typed column of a table. The type is immutable after
// creation; Position defines display and tie-break order.
type Field struct {
	ID       string    `json:"id"`
	TableID  string    `json:"tableId"`
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Position int       `json:"position"`
}

// Record is a row of a table, identified independently of its cells.
// Seq is assigned by the store and is strictly increasing in insertion
// order; it is the basis of default ordering and keyset pagination.
type Record struct {
	Seq       int64
	ID        string
	TableID   string
	CreatedAt time.Time
}

// CellValue is the stored value for one (record, field) pair.
// At most one CellValue exists per pair; absence of a pair and an
// explicit null are both treated as "empty" by filters and sorts.
type CellValue struct {
	RecordID string
	FieldID  string
	Value    Value
}

// Operator is a filter comparison operator.
type Operator string

// Filter operators.
const (
	OpContains    Operator = "contains"
	OpNotContains Operator = "notContains"
	OpEquals      Operator = "equals"
	OpIsEmpty     Operator = "isEmpty"
	OpIsNotEmpty  Operator = "isNotEmpty"
	OpGreaterThan Operator = "greaterThan"
	OpLessThan    Operator = "lessThan"
)

// NeedsValue reports whether the operator requires a comparison value.
func (op Operator) NeedsValue() bool {
	return op != OpIsEmpty && op != OpIsNotEmpty
}

// Valid reports whether op is a known operator.
func (op Operator) Valid() bool {
	switch op {
	case OpContains, OpNotContains, OpEquals, OpIsEmpty, OpIsNotEmpty, OpGreaterThan, OpLessThan:
		return true
	}
	return false
}

// Filter is one admission clause of a view or an ad-hoc query.
// All filters of a query combine with AND. Value is required except
// for the empty-test operators; nil means the value was not supplied.
type Filter struct {
	FieldID  string   `json:"fieldId"`
	Operator Operator `json:"operator"`
	Value    *string  `json:"value,omitempty"`
}

// NewFilter builds a filter carrying a comparison value.
func NewFilter(fieldID string, op Operator, value string) Filter {
	return Filter{FieldID: fieldID, Operator: op, Value: &value}
}

// Direction is a sort direction.
type Direction string

// Sort directions.
const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == Ascending || d == Descending
}

// Sort is one ordering clause. Clauses are applied in list order;
// ties after all clauses fall back to record insertion order.
type Sort struct {
	FieldID   string    `json:"fieldId"`
	Direction Direction `json:"direction"`
}

// View is a named, persisted filter/sort/visibility configuration
// over a table. Exactly one view per table has IsDefault set.
type View struct {
	ID             string   `json:"id"`
	TableID        string   `json:"tableId"`
	Name           string   `json:"name"`
	IsDefault      bool     `json:"isDefault"`
	HiddenFieldIDs []string `json:"hiddenFieldIds"`
	Filters        []Filter `json:"filters"`
	Sorts          []Sort   `json:"sorts"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ViewPatch carries a partial view update. Nil members are left
// unchanged; non-nil slices replace the stored lists wholesale.
type ViewPatch struct {
	Name           *string
	IsDefault      *bool
	HiddenFieldIDs *[]string
	Filters        *[]Filter
	Sorts          *[]Sort
}

// ListOptions are the inputs of a page query. When ViewID is set the
// view's filters, sorts, and hidden columns apply; otherwise the
// ad-hoc Filters/Sorts apply (both empty means insertion order).
type ListOptions struct {
	ViewID  string
	Filters []Filter
	Sorts   []Sort
	Search  string
	Limit   int
	Cursor  string
}

// Column describes one field of a page result. Hidden columns are
// included with Hidden set; dropping them is the consumer's job.
type Column struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Type   FieldType `json:"type"`
	Hidden bool      `json:"hidden"`
}

// Row is one shaped record of a page. Cells is keyed by field id and
// holds a value for every column, nil when the cell is empty, so
// consumer-side comparisons are total.
type Row struct {
	ID    string         `json:"id"`
	Cells map[string]any `json:"cells"`
}

// Page is the result of a page query. NextCursor is opaque to
// callers and empty when HasMore is false.
type Page struct {
	Columns    []Column `json:"columns"`
	Rows       []Row    `json:"rows"`
	HasMore    bool     `json:"hasMore"`
	NextCursor string   `json:"nextCursor,omitempty"`
}

// Page limits. Requests outside the range are clamped.
const (
	MinPageSize     = 1
	MaxPageSize     = 100
	DefaultPageSize = 50
)

// ClampLimit clamps a requested page size into [MinPageSize, MaxPageSize].
// Zero (unset) becomes DefaultPageSize.
func ClampLimit(limit int) int {
	if limit == 0 {
		return DefaultPageSize
	}
	if limit < MinPageSize {
		return MinPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}
