package schema

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophfarm/internal/common"
	"github.com/dmitrijs2005/gophfarm/internal/dbx"
	"github.com/dmitrijs2005/gophfarm/internal/logging"
	"github.com/dmitrijs2005/gophfarm/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) (*sql.DB, *Manager) {
	t.Helper()
	db, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "farm.db"), store.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, NewManager(dbx.NewRunner(db), logging.Nop{})
}

func newManagerWithMock(t *testing.T) (*Manager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewManager(dbx.NewRunner(db), logging.Nop{}), mock
}

func columnTypes(t *testing.T, m *Manager, table string) map[string]string {
	t.Helper()
	cols, err := m.Columns(context.Background(), table)
	require.NoError(t, err)
	out := make(map[string]string, len(cols))
	for _, c := range cols {
		out[c.Name] = c.Type
	}
	return out
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "`+table+`"`).Scan(&n))
	return n
}

var cropsV1 = TableSchema{
	Name: "crops",
	Columns: []Column{
		{Name: "uid", Type: "TEXT", Modifiers: "NOT NULL"},
		{Name: "plant", Type: "TEXT", Modifiers: "NOT NULL"},
		{Name: "count", Type: "INTEGER", Modifiers: "NOT NULL DEFAULT 0"},
	},
	PrimaryKey: []string{"uid", "plant"},
}

func withColumns(s TableSchema, cols ...Column) TableSchema {
	out := s
	out.Columns = append(append([]Column{}, s.Columns...), cols...)
	return out
}

func withoutColumn(s TableSchema, name string) TableSchema {
	out := s
	out.Columns = nil
	for _, c := range s.Columns {
		if c.Name != name {
			out.Columns = append(out.Columns, c)
		}
	}
	return out
}

func seedCrops(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO crops (uid, plant, count) VALUES ('u1', 'wheat', 4), ('u1', 'corn', 2), ('u2', 'wheat', 7)`)
	require.NoError(t, err)
}

func TestReconcile_CreateThenIdempotent(t *testing.T) {
	_, m := setupDB(t)
	ctx := context.Background()

	for _, s := range All() {
		changed, err := m.Reconcile(ctx, s)
		require.NoError(t, err, s.Name)
		assert.True(t, changed, "first reconcile of %s creates it", s.Name)
	}

	for _, s := range All() {
		before := columnTypes(t, m, s.Name)
		changed, err := m.Reconcile(ctx, s)
		require.NoError(t, err, s.Name)
		assert.False(t, changed, "second reconcile of %s is a no-op", s.Name)
		assert.Equal(t, before, columnTypes(t, m, s.Name))
	}

	assert.Equal(t, map[string]string{
		"uid": "TEXT", "seed": "TEXT", "count": "INTEGER",
	}, columnTypes(t, m, SeedTableName))
}

func TestReconcile_TypeComparisonIgnoresCaseAndSpace(t *testing.T) {
	db, m := setupDB(t)
	ctx := context.Background()

	_, err := db.Exec(`CREATE TABLE crops ("uid" text NOT NULL, "plant" Text NOT NULL, "count" integer NOT NULL DEFAULT 0, PRIMARY KEY ("uid", "plant"))`)
	require.NoError(t, err)

	changed, err := m.Reconcile(ctx, cropsV1)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestReconcile_AdditiveKeepsRows(t *testing.T) {
	db, m := setupDB(t)
	ctx := context.Background()

	_, err := m.Reconcile(ctx, cropsV1)
	require.NoError(t, err)
	seedCrops(t, db)

	v2 := withColumns(cropsV1,
		Column{Name: "isLock", Type: "INTEGER", Modifiers: "NOT NULL DEFAULT 0"},
		Column{Name: "note", Type: "TEXT"},
	)
	changed, err := m.Reconcile(ctx, v2)
	require.NoError(t, err)
	assert.True(t, changed)

	assert.Equal(t, 3, countRows(t, db, "crops"))
	var count, lock int
	var note sql.NullString
	require.NoError(t, db.QueryRow(`SELECT count, isLock, note FROM crops WHERE uid = 'u2' AND plant = 'wheat'`).Scan(&count, &lock, &note))
	assert.Equal(t, 7, count)
	assert.Equal(t, 0, lock)
	assert.False(t, note.Valid)

	changed, err = m.Reconcile(ctx, v2)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestReconcile_RebuildOnRemovedColumn(t *testing.T) {
	db, m := setupDB(t)
	ctx := context.Background()

	v0 := withColumns(cropsV1, Column{Name: "legacy", Type: "TEXT"})
	_, err := m.Reconcile(ctx, v0)
	require.NoError(t, err)
	seedCrops(t, db)

	changed, err := m.Reconcile(ctx, cropsV1)
	require.NoError(t, err)
	assert.True(t, changed)

	assert.Equal(t, map[string]string{"uid": "TEXT", "plant": "TEXT", "count": "INTEGER"}, columnTypes(t, m, "crops"))
	assert.Equal(t, 3, countRows(t, db, "crops"))

	var count int
	require.NoError(t, db.QueryRow(`SELECT count FROM crops WHERE uid = 'u1' AND plant = 'corn'`).Scan(&count))
	assert.Equal(t, 2, count)

	ok, err := TableExists(ctx, db, "crops_new")
	require.NoError(t, err)
	assert.False(t, ok, "shadow table must not survive the swap")
}

func TestReconcile_RebuildOnRetype(t *testing.T) {
	db, m := setupDB(t)
	ctx := context.Background()

	_, err := m.Reconcile(ctx, cropsV1)
	require.NoError(t, err)
	seedCrops(t, db)

	retyped := cropsV1
	retyped.Columns = []Column{
		{Name: "uid", Type: "TEXT", Modifiers: "NOT NULL"},
		{Name: "plant", Type: "TEXT", Modifiers: "NOT NULL"},
		{Name: "count", Type: "INT", Modifiers: "NOT NULL DEFAULT 0"},
	}
	changed, err := m.Reconcile(ctx, retyped)
	require.NoError(t, err)
	assert.True(t, changed, "INT and INTEGER are different declared types")
	assert.Equal(t, "INT", columnTypes(t, m, "crops")["count"])
	assert.Equal(t, 3, countRows(t, db, "crops"))

	changed, err = m.Reconcile(ctx, retyped)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestReconcile_RebuildWhenAddedColumnNotAddable(t *testing.T) {
	db, m := setupDB(t)
	ctx := context.Background()

	_, err := m.Reconcile(ctx, withoutColumn(SignLogTable, "createdAt"))
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO userSignLog (uid, signDate) VALUES ('u1', '2024-05-01')`)
	require.NoError(t, err)

	changed, err := m.Reconcile(ctx, SignLogTable)
	require.NoError(t, err)
	assert.True(t, changed)

	var createdAt string
	require.NoError(t, db.QueryRow(`SELECT createdAt FROM userSignLog WHERE uid = 'u1'`).Scan(&createdAt))
	assert.NotEmpty(t, createdAt, "CURRENT_TIMESTAMP default filled in by the rebuild")
}

func TestReconcile_RebuildRestoresIndexes(t *testing.T) {
	db, m := setupDB(t)
	ctx := context.Background()

	v0 := withColumns(cropsV1, Column{Name: "legacy", Type: "TEXT"})
	_, err := m.Reconcile(ctx, v0)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE INDEX idx_crops_plant ON crops (plant)`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE INDEX idx_crops_legacy ON crops (legacy)`)
	require.NoError(t, err)

	_, err = m.Reconcile(ctx, cropsV1)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = 'idx_crops_plant'`).Scan(&n))
	assert.Equal(t, 1, n)
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = 'idx_crops_legacy'`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestReconcile_FailedRebuildLeavesTableIntact(t *testing.T) {
	db, m := setupDB(t)
	ctx := context.Background()

	_, err := m.Reconcile(ctx, cropsV1)
	require.NoError(t, err)
	seedCrops(t, db)

	// required column with no default: rows cannot be copied
	broken := withColumns(cropsV1, Column{Name: "owner", Type: "TEXT", Modifiers: "NOT NULL"})
	changed, err := m.Reconcile(ctx, broken)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrorConstraint)
	assert.False(t, changed)

	assert.Equal(t, map[string]string{"uid": "TEXT", "plant": "TEXT", "count": "INTEGER"}, columnTypes(t, m, "crops"))
	assert.Equal(t, 3, countRows(t, db, "crops"))
	ok, err := TableExists(ctx, db, "crops_new")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReconcile_InjectedFailureMidRebuildRollsBack(t *testing.T) {
	m, mock := newManagerWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM pragma_table_info(?)`)).
		WithArgs("crops").
		WillReturnRows(sqlmock.NewRows([]string{"name", "type", "notnull", "dflt_value", "pk"}).
			AddRow("uid", "TEXT", 1, nil, 1).
			AddRow("plant", "TEXT", 1, nil, 2).
			AddRow("count", "INTEGER", 1, "0", 0).
			AddRow("legacy", "TEXT", 0, nil, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT sql FROM sqlite_master WHERE type = 'index'`)).
		WithArgs("crops").
		WillReturnRows(sqlmock.NewRows([]string{"sql"}))
	mock.ExpectExec(regexp.QuoteMeta(`DROP TABLE IF EXISTS "crops_new"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE "crops_new"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "crops_new" ("uid", "plant", "count") SELECT "uid", "plant", "count" FROM "crops"`)).
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	changed, err := m.Reconcile(context.Background(), cropsV1)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrorStore)
	assert.False(t, changed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcile_InjectedFailureOnAddColumnRollsBack(t *testing.T) {
	m, mock := newManagerWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM pragma_table_info(?)`)).
		WithArgs("crops").
		WillReturnRows(sqlmock.NewRows([]string{"name", "type", "notnull", "dflt_value", "pk"}).
			AddRow("uid", "TEXT", 1, nil, 1).
			AddRow("plant", "TEXT", 1, nil, 2))
	mock.ExpectExec(regexp.QuoteMeta(`ALTER TABLE "crops" ADD COLUMN "count" INTEGER NOT NULL DEFAULT 0`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`ALTER TABLE "crops" ADD COLUMN "note" TEXT`)).
		WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()

	_, err := m.Reconcile(context.Background(), withColumns(cropsV1, Column{Name: "note", Type: "TEXT"}))
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcile_InvalidIdentifierTouchesNothing(t *testing.T) {
	m, mock := newManagerWithMock(t)
	ctx := context.Background()

	cases := []TableSchema{
		{Name: "crops; DROP TABLE user", Columns: cropsV1.Columns},
		{Name: "crops", Columns: []Column{{Name: "1bad", Type: "TEXT"}}},
		{Name: "crops", Columns: []Column{{Name: "ok", Type: "TEXT); DROP TABLE x; --"}}},
		{Name: "crops", Columns: []Column{{Name: "ok", Type: "TEXT", Modifiers: "DEFAULT 1; DROP TABLE x"}}},
		{Name: "crops", Columns: []Column{{Name: "ok", Type: "TEXT"}}, PrimaryKey: []string{"missing"}},
		{Name: "crops", Columns: []Column{{Name: "a", Type: "TEXT"}, {Name: "A", Type: "TEXT"}}},
		{Name: "crops"},
	}
	for _, s := range cases {
		changed, err := m.Reconcile(ctx, s)
		require.ErrorIs(t, err, common.ErrorValidation, "%+v", s)
		assert.False(t, changed)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileAll_StopsAtFirstError(t *testing.T) {
	_, m := setupDB(t)

	bad := TableSchema{Name: "bad-name", Columns: cropsV1.Columns}
	changed, err := m.ReconcileAll(context.Background(), PlotTable, bad, SeedTable)
	require.ErrorIs(t, err, common.ErrInvalidIdentifier)
	assert.Equal(t, []string{PlotTableName}, changed)

	cols, err := m.Columns(context.Background(), SeedTableName)
	require.NoError(t, err)
	assert.Empty(t, cols, "tables after the failure are not touched")
}

func TestColumns_AbsentTable(t *testing.T) {
	_, m := setupDB(t)
	cols, err := m.Columns(context.Background(), "nothing_here")
	require.NoError(t, err)
	assert.Empty(t, cols)

	_, err = m.Columns(context.Background(), "bad name")
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestDropTable(t *testing.T) {
	db, m := setupDB(t)
	ctx := context.Background()

	_, err := m.Reconcile(ctx, cropsV1)
	require.NoError(t, err)
	require.NoError(t, DropTable(ctx, db, "crops"))
	require.NoError(t, DropTable(ctx, db, "crops"))

	ok, err := TableExists(ctx, db, "crops")
	require.NoError(t, err)
	assert.False(t, ok)
}
