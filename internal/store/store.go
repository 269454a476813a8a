package store

import (
	"context"

	"github.com/gridline-labs/gridline/internal/query"
	"github.com/gridline-labs/gridline/pkg/grid"
)

// Store defines the persistence operations of the grid engine.
type Store interface {
	Open(path string) error
	Close() error
	Migrate() error

	// Table lifecycle
	CreateTable(ctx context.Context, name string) (*grid.Table, error)
	GetTable(ctx context.Context, id string) (*grid.Table, error)
	ListTables(ctx context.Context) ([]*grid.Table, error)
	DeleteTable(ctx context.Context, id string) error

	// Field registry
	CreateField(ctx context.Context, tableID, name string, ft grid.FieldType) (*grid.Field, error)
	GetField(ctx context.Context, id string) (*grid.Field, error)
	ListFields(ctx context.Context, tableID string) ([]grid.Field, error)
	DeleteField(ctx context.Context, id string) error

	// Records and cells
	CreateRecord(ctx context.Context, tableID string, cells map[string]grid.Value) (*grid.Record, error)
	BulkCreateRecords(ctx context.Context, tableID string, rows []map[string]grid.Value) ([]string, error)
	GetRecord(ctx context.Context, id string) (*grid.Record, error)
	DeleteRecord(ctx context.Context, id string) error
	UpsertCell(ctx context.Context, recordID, fieldID string, v grid.Value) (*grid.CellValue, error)
	CellsForRecords(ctx context.Context, recordIDs []string) (map[string]map[string]grid.Value, error)

	// Views
	CreateView(ctx context.Context, view *grid.View) (*grid.View, error)
	GetView(ctx context.Context, id string) (*grid.View, error)
	ListViews(ctx context.Context, tableID string) ([]*grid.View, error)
	UpdateView(ctx context.Context, id string, patch grid.ViewPatch) (*grid.View, error)
	DeleteView(ctx context.Context, id string) error
	SetDefaultView(ctx context.Context, tableID, viewID string) error
	EnsureDefaultView(ctx context.Context, tableID string) error

	// Query execution
	QueryRecordsPage(ctx context.Context, tableID string, plan query.Plan) ([]grid.Record, error)
}

// BulkChunkSize bounds the rows per transaction during bulk insert.
// Each chunk commits independently, so a failed chunk never corrupts
// previously committed ones.
const BulkChunkSize = 1000
