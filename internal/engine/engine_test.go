package engine

import (
	"context"
	"testing"

	"github.com/gridline-labs/gridline/internal/store"
	"github.com/gridline-labs/gridline/internal/testutil"
	"github.com/gridline-labs/gridline/pkg/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	s := store.NewSQLiteStore()
	require.NoError(t, s.Open(":memory:"))
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate())

	return New(Config{Store: s, Logger: testutil.NewTestLogger(t)})
}

// peopleFixture seeds a People table with five records:
//
//	r1: Name "Ann",  Age 30
//	r2: Name "Bob",  Age 10
//	r3: Name "Cara", Age 20
//	r4: Name "",     Age absent
//	r5: no cells at all
type peopleFixture struct {
	tableID   string
	nameID    string
	ageID     string
	recordIDs []string
}

func seedPeople(t *testing.T, e *Engine) peopleFixture {
	t.Helper()
	ctx := context.Background()

	table, err := e.CreateTable(ctx, "People")
	require.NoError(t, err)
	name, err := e.CreateField(ctx, table.ID, "Name", grid.FieldTypeText)
	require.NoError(t, err)
	age, err := e.CreateField(ctx, table.ID, "Age", grid.FieldTypeNumber)
	require.NoError(t, err)

	rows := []map[string]any{
		{name.ID: "Ann", age.ID: 30.0},
		{name.ID: "Bob", age.ID: 10.0},
		{name.ID: "Cara", age.ID: 20.0},
		{name.ID: ""},
		{},
	}

	f := peopleFixture{tableID: table.ID, nameID: name.ID, ageID: age.ID}
	for _, cells := range rows {
		r, err := e.CreateRecord(ctx, table.ID, cells)
		require.NoError(t, err)
		f.recordIDs = append(f.recordIDs, r.ID)
	}
	return f
}

func rowIDs(page *grid.Page) []string {
	ids := make([]string, len(page.Rows))
	for i, r := range page.Rows {
		ids[i] = r.ID
	}
	return ids
}

func (f peopleFixture) ids(indices ...int) []string {
	out := make([]string, len(indices))
	for i, n := range indices {
		out[i] = f.recordIDs[n-1]
	}
	return out
}

func TestListPageDefaultsToInsertionOrder(t *testing.T) {
	e := newTestEngine(t)
	f := seedPeople(t, e)

	page, err := e.ListPage(context.Background(), f.tableID, grid.ListOptions{})
	require.NoError(t, err)

	assert.Equal(t, f.ids(1, 2, 3, 4, 5), rowIDs(page))
	assert.False(t, page.HasMore)
	assert.Empty(t, page.NextCursor)

	require.Len(t, page.Columns, 2)
	assert.Equal(t, "Name", page.Columns[0].Name)
	assert.Equal(t, "Age", page.Columns[1].Name)
}

func TestListPageShapesEveryCell(t *testing.T) {
	e := newTestEngine(t)
	f := seedPeople(t, e)

	page, err := e.ListPage(context.Background(), f.tableID, grid.ListOptions{})
	require.NoError(t, err)

	first := page.Rows[0]
	assert.Equal(t, "Ann", first.Cells[f.nameID])
	assert.Equal(t, 30.0, first.Cells[f.ageID])

	// Absent cells are present as nil so comparisons stay total.
	last := page.Rows[4]
	assert.Nil(t, last.Cells[f.nameID])
	assert.Nil(t, last.Cells[f.ageID])
}

func TestListPageSortByAgeAscending(t *testing.T) {
	e := newTestEngine(t)
	f := seedPeople(t, e)

	page, err := e.ListPage(context.Background(), f.tableID, grid.ListOptions{
		Sorts: []grid.Sort{{FieldID: f.ageID, Direction: grid.Ascending}},
	})
	require.NoError(t, err)

	// Missing ages sort as 0 first, tied on insertion order.
	assert.Equal(t, f.ids(4, 5, 2, 3, 1), rowIDs(page))
}

func TestListPageSortDescendingPutsEmptyLast(t *testing.T) {
	e := newTestEngine(t)
	f := seedPeople(t, e)

	page, err := e.ListPage(context.Background(), f.tableID, grid.ListOptions{
		Sorts: []grid.Sort{{FieldID: f.ageID, Direction: grid.Descending}},
	})
	require.NoError(t, err)

	assert.Equal(t, f.ids(1, 3, 2, 4, 5), rowIDs(page))
}

func TestListPageFilterGreaterThan(t *testing.T) {
	e := newTestEngine(t)
	f := seedPeople(t, e)

	page, err := e.ListPage(context.Background(), f.tableID, grid.ListOptions{
		Filters: []grid.Filter{grid.NewFilter(f.ageID, grid.OpGreaterThan, "15")},
	})
	require.NoError(t, err)

	assert.Equal(t, f.ids(1, 3), rowIDs(page))
}

func TestListPageIsEmptyCoversAbsentAndBlank(t *testing.T) {
	e := newTestEngine(t)
	f := seedPeople(t, e)

	page, err := e.ListPage(context.Background(), f.tableID, grid.ListOptions{
		Filters: []grid.Filter{{FieldID: f.nameID, Operator: grid.OpIsEmpty}},
	})
	require.NoError(t, err)

	// r4 stores the empty string, r5 has no cell; both are empty.
	assert.Equal(t, f.ids(4, 5), rowIDs(page))

	// isEmpty and isNotEmpty partition the table.
	rest, err := e.ListPage(context.Background(), f.tableID, grid.ListOptions{
		Filters: []grid.Filter{{FieldID: f.nameID, Operator: grid.OpIsNotEmpty}},
	})
	require.NoError(t, err)
	assert.Equal(t, f.ids(1, 2, 3), rowIDs(rest))
}

func TestListPageSearchSpansFieldsCaseInsensitively(t *testing.T) {
	e := newTestEngine(t)
	f := seedPeople(t, e)

	page, err := e.ListPage(context.Background(), f.tableID, grid.ListOptions{Search: "ANN"})
	require.NoError(t, err)
	assert.Equal(t, f.ids(1), rowIDs(page))

	// Numbers are searched through their decimal text.
	page, err = e.ListPage(context.Background(), f.tableID, grid.ListOptions{Search: "20"})
	require.NoError(t, err)
	assert.Equal(t, f.ids(3), rowIDs(page))
}

func TestListPageMatchesFullPrecisionNumberText(t *testing.T) {
	e := newTestEngine(t)
	f := seedPeople(t, e)
	ctx := context.Background()

	r, err := e.CreateRecord(ctx, f.tableID, map[string]any{f.ageID: 1234.5678})
	require.NoError(t, err)

	// Substring operators read the same decimal text the shaped page
	// renders, past six significant digits.
	page, err := e.ListPage(ctx, f.tableID, grid.ListOptions{
		Filters: []grid.Filter{grid.NewFilter(f.ageID, grid.OpContains, "1234.5678")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{r.ID}, rowIDs(page))

	page, err = e.ListPage(ctx, f.tableID, grid.ListOptions{Search: "234.567"})
	require.NoError(t, err)
	assert.Equal(t, []string{r.ID}, rowIDs(page))
}

func TestListPageUnparseableNumberFilterMatchesNothing(t *testing.T) {
	e := newTestEngine(t)
	f := seedPeople(t, e)

	page, err := e.ListPage(context.Background(), f.tableID, grid.ListOptions{
		Filters: []grid.Filter{grid.NewFilter(f.ageID, grid.OpGreaterThan, "banana")},
	})
	require.NoError(t, err)
	assert.Empty(t, page.Rows)
}

func TestListPageKeysetPagination(t *testing.T) {
	e := newTestEngine(t)
	f := seedPeople(t, e)
	ctx := context.Background()

	page1, err := e.ListPage(ctx, f.tableID, grid.ListOptions{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, f.ids(1, 2), rowIDs(page1))
	assert.True(t, page1.HasMore)
	require.NotEmpty(t, page1.NextCursor)

	page2, err := e.ListPage(ctx, f.tableID, grid.ListOptions{Limit: 2, Cursor: page1.NextCursor})
	require.NoError(t, err)
	assert.Equal(t, f.ids(3, 4), rowIDs(page2))
	assert.True(t, page2.HasMore)

	page3, err := e.ListPage(ctx, f.tableID, grid.ListOptions{Limit: 2, Cursor: page2.NextCursor})
	require.NoError(t, err)
	assert.Equal(t, f.ids(5), rowIDs(page3))
	assert.False(t, page3.HasMore)
	assert.Empty(t, page3.NextCursor)
}

func TestListPageExactlyFullLastPage(t *testing.T) {
	e := newTestEngine(t)
	f := seedPeople(t, e)
	ctx := context.Background()

	// Four records, limit 2: the second page comes back full and final.
	require.NoError(t, e.DeleteRecord(ctx, f.recordIDs[4]))

	page1, err := e.ListPage(ctx, f.tableID, grid.ListOptions{Limit: 2})
	require.NoError(t, err)
	require.True(t, page1.HasMore)

	page2, err := e.ListPage(ctx, f.tableID, grid.ListOptions{Limit: 2, Cursor: page1.NextCursor})
	require.NoError(t, err)
	assert.Equal(t, f.ids(3, 4), rowIDs(page2))
	assert.False(t, page2.HasMore)
	assert.Empty(t, page2.NextCursor)

	// Same under a sort, where pagination runs on offsets.
	sorts := []grid.Sort{{FieldID: f.ageID, Direction: grid.Ascending}}
	page1, err = e.ListPage(ctx, f.tableID, grid.ListOptions{Limit: 2, Sorts: sorts})
	require.NoError(t, err)
	require.True(t, page1.HasMore)

	page2, err = e.ListPage(ctx, f.tableID, grid.ListOptions{Limit: 2, Sorts: sorts, Cursor: page1.NextCursor})
	require.NoError(t, err)
	assert.Len(t, page2.Rows, 2)
	assert.False(t, page2.HasMore)
	assert.Empty(t, page2.NextCursor)
}

func TestListPageKeysetCursorSurvivesDeletion(t *testing.T) {
	e := newTestEngine(t)
	f := seedPeople(t, e)
	ctx := context.Background()

	page1, err := e.ListPage(ctx, f.tableID, grid.ListOptions{Limit: 2})
	require.NoError(t, err)

	// Deleting an already-returned record must not shift the next page.
	require.NoError(t, e.DeleteRecord(ctx, f.recordIDs[0]))

	page2, err := e.ListPage(ctx, f.tableID, grid.ListOptions{Limit: 2, Cursor: page1.NextCursor})
	require.NoError(t, err)
	assert.Equal(t, f.ids(3, 4), rowIDs(page2))
}

func TestListPageOffsetPaginationUnderSort(t *testing.T) {
	e := newTestEngine(t)
	f := seedPeople(t, e)
	ctx := context.Background()

	sorts := []grid.Sort{{FieldID: f.ageID, Direction: grid.Ascending}}

	page1, err := e.ListPage(ctx, f.tableID, grid.ListOptions{Limit: 2, Sorts: sorts})
	require.NoError(t, err)
	assert.Equal(t, f.ids(4, 5), rowIDs(page1))
	require.True(t, page1.HasMore)

	page2, err := e.ListPage(ctx, f.tableID, grid.ListOptions{Limit: 2, Sorts: sorts, Cursor: page1.NextCursor})
	require.NoError(t, err)
	assert.Equal(t, f.ids(2, 3), rowIDs(page2))
	require.True(t, page2.HasMore)

	page3, err := e.ListPage(ctx, f.tableID, grid.ListOptions{Limit: 2, Sorts: sorts, Cursor: page2.NextCursor})
	require.NoError(t, err)
	assert.Equal(t, f.ids(1), rowIDs(page3))
	assert.False(t, page3.HasMore)
}

func TestListPageRejectsCursorFromOtherStrategy(t *testing.T) {
	e := newTestEngine(t)
	f := seedPeople(t, e)
	ctx := context.Background()

	page, err := e.ListPage(ctx, f.tableID, grid.ListOptions{Limit: 2})
	require.NoError(t, err)

	_, err = e.ListPage(ctx, f.tableID, grid.ListOptions{
		Limit:  2,
		Sorts:  []grid.Sort{{FieldID: f.ageID, Direction: grid.Ascending}},
		Cursor: page.NextCursor,
	})
	assert.ErrorIs(t, err, grid.ErrInvalidCursor)
}

func TestListPageThroughView(t *testing.T) {
	e := newTestEngine(t)
	f := seedPeople(t, e)
	ctx := context.Background()

	view, err := e.CreateView(ctx, f.tableID, CreateViewParams{
		Name:           "Adults",
		Filters:        []grid.Filter{grid.NewFilter(f.ageID, grid.OpGreaterThan, "15")},
		Sorts:          []grid.Sort{{FieldID: f.ageID, Direction: grid.Descending}},
		HiddenFieldIDs: []string{f.ageID},
	})
	require.NoError(t, err)

	page, err := e.ListPage(ctx, f.tableID, grid.ListOptions{ViewID: view.ID})
	require.NoError(t, err)

	assert.Equal(t, f.ids(1, 3), rowIDs(page))

	// Hidden columns are flagged, not dropped; their cells still ship.
	require.Len(t, page.Columns, 2)
	assert.False(t, page.Columns[0].Hidden)
	assert.True(t, page.Columns[1].Hidden)
	assert.Equal(t, 30.0, page.Rows[0].Cells[f.ageID])
}

func TestListPageRejectsForeignView(t *testing.T) {
	e := newTestEngine(t)
	f := seedPeople(t, e)
	ctx := context.Background()

	other, err := e.CreateTable(ctx, "Other")
	require.NoError(t, err)
	views, err := e.ListViews(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)

	_, err = e.ListPage(ctx, f.tableID, grid.ListOptions{ViewID: views[0].ID})
	assert.ErrorIs(t, err, grid.ErrInvalidReference)
}

func TestCreateViewValidatesClauses(t *testing.T) {
	e := newTestEngine(t)
	f := seedPeople(t, e)
	ctx := context.Background()

	_, err := e.CreateView(ctx, f.tableID, CreateViewParams{
		Name:    "bad filter",
		Filters: []grid.Filter{grid.NewFilter("no-such-field", grid.OpEquals, "x")},
	})
	assert.ErrorIs(t, err, grid.ErrInvalidReference)

	_, err = e.CreateView(ctx, f.tableID, CreateViewParams{
		Name:  "bad sort",
		Sorts: []grid.Sort{{FieldID: f.ageID, Direction: "sideways"}},
	})
	assert.ErrorIs(t, err, grid.ErrInvalidOperator)

	_, err = e.CreateView(ctx, f.tableID, CreateViewParams{
		Name:           "bad hidden",
		HiddenFieldIDs: []string{"no-such-field"},
	})
	assert.ErrorIs(t, err, grid.ErrInvalidReference)
}

func TestRepairDefaultViewsKeepsOneDefaultPerTable(t *testing.T) {
	e := newTestEngine(t)
	f := seedPeople(t, e)
	ctx := context.Background()

	other, err := e.CreateTable(ctx, "Other")
	require.NoError(t, err)
	_, err = e.CreateView(ctx, f.tableID, CreateViewParams{Name: "extra"})
	require.NoError(t, err)

	require.NoError(t, e.RepairDefaultViews(ctx))

	for _, tableID := range []string{f.tableID, other.ID} {
		views, err := e.ListViews(ctx, tableID)
		require.NoError(t, err)
		defaults := 0
		for _, v := range views {
			if v.IsDefault {
				defaults++
			}
		}
		assert.Equal(t, 1, defaults, "table %s", tableID)
	}
}

func TestUpsertCellRejectsCrossTableWrite(t *testing.T) {
	e := newTestEngine(t)
	f := seedPeople(t, e)
	ctx := context.Background()

	other, err := e.CreateTable(ctx, "Other")
	require.NoError(t, err)
	foreign, err := e.CreateField(ctx, other.ID, "Foreign", grid.FieldTypeText)
	require.NoError(t, err)

	_, err = e.UpsertCell(ctx, f.recordIDs[0], foreign.ID, "x")
	assert.ErrorIs(t, err, grid.ErrInvalidReference)
}

func TestUpsertCellCoercesMalformedInputToEmpty(t *testing.T) {
	e := newTestEngine(t)
	f := seedPeople(t, e)
	ctx := context.Background()

	cell, err := e.UpsertCell(ctx, f.recordIDs[0], f.nameID, []string{"not", "a", "scalar"})
	require.NoError(t, err)
	assert.Nil(t, cell.Value.Native())

	page, err := e.ListPage(ctx, f.tableID, grid.ListOptions{
		Filters: []grid.Filter{{FieldID: f.nameID, Operator: grid.OpIsEmpty}},
	})
	require.NoError(t, err)
	assert.Contains(t, rowIDs(page), f.recordIDs[0])
}

func TestCreateRecordRejectsForeignField(t *testing.T) {
	e := newTestEngine(t)
	f := seedPeople(t, e)

	_, err := e.CreateRecord(context.Background(), f.tableID, map[string]any{
		"no-such-field": "x",
	})
	assert.ErrorIs(t, err, grid.ErrInvalidReference)
}

func TestBulkCreateRecordsRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	f := seedPeople(t, e)
	ctx := context.Background()

	rows := make([]map[string]any, 20)
	for i := range rows {
		rows[i] = map[string]any{f.ageID: float64(i)}
	}
	ids, err := e.BulkCreateRecords(ctx, f.tableID, rows)
	require.NoError(t, err)
	assert.Len(t, ids, 20)

	page, err := e.ListPage(ctx, f.tableID, grid.ListOptions{Limit: 100})
	require.NoError(t, err)
	assert.Len(t, page.Rows, 25)
}
