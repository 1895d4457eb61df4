package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophfarm/internal/dbx"
	"github.com/dmitrijs2005/gophfarm/internal/logging"
	"github.com/dmitrijs2005/gophfarm/internal/repositories/repomanager"
	"github.com/dmitrijs2005/gophfarm/internal/store"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type stubCatalog map[string]int

func (c stubCatalog) GrowthHours(plant string) (int, bool) {
	h, ok := c[plant]
	return h, ok
}

type testEnv struct {
	db      *sql.DB
	runner  *dbx.Runner
	rm      repomanager.RepositoryManager
	clock   *testClock
	plots   *PlotService
	seeds   *InventoryLedger
	crops   *InventoryLedger
	thefts  *TheftLedger
	farm    *FarmService
	signins *SignInService
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := store.Open(ctx, filepath.Join(t.TempDir(), "farm.db"), store.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logging.Nop{}
	rm := repomanager.NewSQLiteRepositoryManager(log)
	runner := dbx.NewRunner(db)
	_, err = rm.Reconcile(ctx, runner)
	require.NoError(t, err)

	clock := &testClock{now: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)}
	catalog := stubCatalog{"wheat": 4, "corn": 12}

	suite := NewSuite(runner, rm, catalog, clock, 3, log)
	e := &testEnv{
		db:      db,
		runner:  runner,
		rm:      rm,
		clock:   clock,
		plots:   suite.Plots,
		seeds:   suite.Seeds,
		crops:   suite.Crops,
		thefts:  suite.Thefts,
		farm:    suite.Farm,
		signins: suite.SignIns,
	}
	return e
}

// rawPlot returns the stored row as text so that comparisons see every column.
func (e *testEnv) rawPlot(t *testing.T, uid string, slot int) []string {
	t.Helper()
	rows, err := e.db.Query(`SELECT * FROM "userSoil" WHERE "uid" = ? AND "soilIndex" = ?`, uid, slot)
	require.NoError(t, err)
	defer rows.Close()

	cols, err := rows.Columns()
	require.NoError(t, err)
	require.True(t, rows.Next(), "row %s/%d missing", uid, slot)

	values := make([]sql.RawBytes, len(cols))
	dest := make([]any, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}
	require.NoError(t, rows.Scan(dest...))

	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
