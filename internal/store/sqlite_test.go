package store

import (
	"context"
	"testing"

	"github.com/gridline-labs/gridline/pkg/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore opens a migrated in-memory store.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s := NewSQLiteStore()
	require.NoError(t, s.Open(":memory:"))
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Migrate())
	return s
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := setupTestStore(t)
	require.NoError(t, s.Migrate())

	version, err := s.MigrationVersion()
	require.NoError(t, err)
	assert.Greater(t, version, int64(0))
}

func TestCreateTableSeedsDefaultView(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	table, err := s.CreateTable(ctx, "People")
	require.NoError(t, err)
	assert.NotEmpty(t, table.ID)

	views, err := s.ListViews(ctx, table.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, DefaultViewName, views[0].Name)
	assert.True(t, views[0].IsDefault)
}

func TestGetTableNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetTable(context.Background(), "nope")
	assert.ErrorIs(t, err, grid.ErrNotFound)
}

func TestListTablesInCreationOrder(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first, err := s.CreateTable(ctx, "first")
	require.NoError(t, err)
	second, err := s.CreateTable(ctx, "second")
	require.NoError(t, err)

	tables, err := s.ListTables(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, first.ID, tables[0].ID)
	assert.Equal(t, second.ID, tables[1].ID)
}

func TestDeleteTableCascades(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	table, err := s.CreateTable(ctx, "People")
	require.NoError(t, err)
	field, err := s.CreateField(ctx, table.ID, "Name", grid.FieldTypeText)
	require.NoError(t, err)
	record, err := s.CreateRecord(ctx, table.ID, map[string]grid.Value{
		field.ID: grid.TextValue("Ann"),
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteTable(ctx, table.ID))

	_, err = s.GetRecord(ctx, record.ID)
	assert.ErrorIs(t, err, grid.ErrNotFound)
	_, err = s.GetField(ctx, field.ID)
	assert.ErrorIs(t, err, grid.ErrNotFound)

	assert.ErrorIs(t, s.DeleteTable(ctx, table.ID), grid.ErrNotFound)
}
