package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gridline-labs/gridline/internal/query"
	"github.com/gridline-labs/gridline/pkg/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The page query is assembled from precompiled fragments; these tests
// pin the exact SQL shape and the argument binding order.

func TestQueryRecordsPageKeysetSQL(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()
	s := &SQLiteStore{db: db}

	now := time.Now().UTC()
	mock.ExpectQuery(
		`SELECT r.seq, r.id, r.table_id, r.created_at FROM records r WHERE r.table_id = ? AND 1 = 1 AND r.seq > ? ORDER BY r.seq ASC LIMIT ?`,
	).WithArgs("t1", int64(5), 3).WillReturnRows(
		sqlmock.NewRows([]string{"seq", "id", "table_id", "created_at"}).
			AddRow(int64(6), "r6", "t1", now).
			AddRow(int64(7), "r7", "t1", now),
	)

	records, err := s.QueryRecordsPage(context.Background(), "t1", query.Plan{
		Predicate: "1 = 1",
		OrderBy:   "r.seq ASC",
		Limit:     2,
		Strategy:  query.Keyset{AfterSeq: 5},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(6), records[0].Seq)
	assert.Equal(t, "r7", records[1].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryRecordsPageOffsetSQL(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()
	s := &SQLiteStore{db: db}

	mock.ExpectQuery(
		`SELECT r.seq, r.id, r.table_id, r.created_at FROM records r WHERE r.table_id = ? AND pred ORDER BY expr DESC, r.seq ASC LIMIT ? OFFSET ?`,
	).WithArgs("t1", "f_age", "f_age", 51, 100).WillReturnRows(
		sqlmock.NewRows([]string{"seq", "id", "table_id", "created_at"}),
	)

	// Argument order is table id, predicate binds, order binds, limit,
	// then offset.
	_, err = s.QueryRecordsPage(context.Background(), "t1", query.Plan{
		Predicate:     "pred",
		PredicateArgs: []any{"f_age"},
		OrderBy:       "expr DESC, r.seq ASC",
		OrderArgs:     []any{"f_age"},
		Limit:         50,
		Strategy:      query.Offset{Offset: 100},
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryRecordsPageAgainstSQLite(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	table, err := s.CreateTable(ctx, "People")
	require.NoError(t, err)
	age, err := s.CreateField(ctx, table.ID, "Age", grid.FieldTypeNumber)
	require.NoError(t, err)

	for _, a := range []float64{30, 25, 40} {
		_, err := s.CreateRecord(ctx, table.ID, map[string]grid.Value{age.ID: grid.NumberValue(a)})
		require.NoError(t, err)
	}

	reg := query.NewRegistry([]grid.Field{*ageField(t, s, age.ID)})
	node, err := query.Compile(reg, []grid.Filter{grid.NewFilter(age.ID, grid.OpGreaterThan, "26")}, "")
	require.NoError(t, err)
	pred, predArgs := query.Lower(node)
	orderBy, orderArgs, err := query.OrderBy(reg, []grid.Sort{{FieldID: age.ID, Direction: grid.Ascending}})
	require.NoError(t, err)

	records, err := s.QueryRecordsPage(ctx, table.ID, query.Plan{
		Predicate:     pred,
		PredicateArgs: predArgs,
		OrderBy:       orderBy,
		OrderArgs:     orderArgs,
		Limit:         10,
		Strategy:      query.Offset{},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(1), records[0].Seq, "age 30 before age 40")
	assert.Equal(t, int64(3), records[1].Seq)
}

func ageField(t *testing.T, s *SQLiteStore, id string) *grid.Field {
	t.Helper()
	f, err := s.GetField(context.Background(), id)
	require.NoError(t, err)
	return f
}
