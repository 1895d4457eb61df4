package cli

import (
	"bytes"
	"database/sql"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

type harness struct {
	dsn      string
	terminal bool
	stdin    string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{dsn: filepath.Join(t.TempDir(), "farm.db")}
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	a := NewApp()
	a.in = strings.NewReader(h.stdin)
	a.isTerminal = func() bool { return h.terminal }

	root := a.Root()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--db", h.dsn, "--catalog", filepath.Join(filepath.Dir(h.dsn), "plant.json")}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestReconcile(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "reconcile")
	require.NoError(t, err)
	assert.Contains(t, out, "reconciled:")
	assert.Contains(t, out, "userSoil")

	out, err = h.run(t, "reconcile")
	require.NoError(t, err)
	assert.Contains(t, out, "schema up to date")
}

func TestProvisionAndShowPlots(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "provision", "1001", "--name", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "opened farm 1001")

	out, err = h.run(t, "provision", "1001")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	out, err = h.run(t, "provision", "1001", "--plots", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "2 new plot(s)")

	out, err = h.run(t, "show", "plots", "1001")
	require.NoError(t, err)
	assert.Contains(t, out, "SLOT")
	assert.Equal(t, 6, strings.Count(out, "\n"), "header and five slots")
	assert.Contains(t, out, "empty")
}

func TestShowEmptyFarm(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "show", "plots", "ghost")
	require.NoError(t, err)
	assert.Contains(t, out, "no plots for ghost")

	out, err = h.run(t, "show", "thefts", "ghost")
	require.NoError(t, err)
	assert.Contains(t, out, "no thefts from ghost")

	out, err = h.run(t, "show", "inventory", "ghost")
	require.NoError(t, err)
	assert.Contains(t, out, "KIND")

	out, err = h.run(t, "show", "signins", "ghost")
	require.NoError(t, err)
	assert.Contains(t, out, "never signed in")
}

func TestResetPlot_NeedsYesWithoutTerminal(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "provision", "1001")
	require.NoError(t, err)

	_, err = h.run(t, "reset", "plot", "1001", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")

	out, err := h.run(t, "reset", "plot", "1001", "1", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "plot 1001/1 reset")

	out, err = h.run(t, "reset", "plot", "1001", "1", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "does not exist")
}

func TestResetPlot_AsksOnTerminal(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "provision", "1001")
	require.NoError(t, err)

	h.terminal = true
	h.stdin = "n\n"
	_, err = h.run(t, "reset", "plot", "1001", "2")
	require.EqualError(t, err, "aborted")

	h.stdin = "y\n"
	out, err := h.run(t, "reset", "plot", "1001", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "reset")
}

func TestResetFarm(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "provision", "1001")
	require.NoError(t, err)

	_, err = h.run(t, "reset", "farm", "1001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")

	out, err := h.run(t, "reset", "farm", "1001", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "farm 1001 closed")

	out, err = h.run(t, "reset", "farm", "1001", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "does not exist")

	out, err = h.run(t, "provision", "1001")
	require.NoError(t, err)
	assert.Contains(t, out, "opened farm 1001")
}

func TestMigrateLegacy(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "migrate-legacy")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to do")

	_, err = h.run(t, "provision", "1001")
	require.NoError(t, err)

	db, err := sql.Open("sqlite", h.dsn)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE soil (uid TEXT PRIMARY KEY, soil1 TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO soil (uid, soil1) VALUES ('1001', 'wheat,1700000000,1700014400,0,2002-3,1')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	out, err = h.run(t, "migrate-legacy")
	require.NoError(t, err)
	assert.Contains(t, out, "legacy soil table migrated")

	out, err = h.run(t, "show", "thefts", "1001")
	require.NoError(t, err)
	assert.Contains(t, out, "2002")

	out, err = h.run(t, "show", "plots", "1001")
	require.NoError(t, err)
	assert.Contains(t, out, "wheat")
	assert.Contains(t, out, "red")
}

func TestSign(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "sign", "1001")
	require.NoError(t, err)
	assert.Contains(t, out, "signed in 1001")

	out, err = h.run(t, "sign", "1001")
	require.NoError(t, err)
	assert.Contains(t, out, "already signed")

	_, err = h.run(t, "sign", "1001", "--date", "yesterday")
	require.Error(t, err)

	out, err = h.run(t, "show", "signins", "1001")
	require.NoError(t, err)
	assert.Contains(t, out, "total:       1")
}
