// Package grid defines the shared language of the Gridline system.
//
// This package contains:
//   - Domain entities (Table, Field, Record, CellValue, View)
//   - The cell value model (Value, Coerce, Compare, Textualize)
//   - Query inputs and outputs (Filter, Sort, ListOptions, Page)
//   - The error taxonomy shared by store, engine, and server
//
// The Golden Rule: pkg/grid imports ONLY stdlib.
// All other packages depend on grid, not the reverse.
package grid
