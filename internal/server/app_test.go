package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophfarm/internal/common"
	"github.com/dmitrijs2005/gophfarm/internal/config"
	"github.com/dmitrijs2005/gophfarm/internal/logging"
	"github.com/dmitrijs2005/gophfarm/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	dir := t.TempDir()
	cfg.DatabaseDSN = filepath.Join(dir, "farm.db")
	cfg.CatalogPath = filepath.Join(dir, "plant.json")
	cfg.GRPCAddr = "127.0.0.1:0"
	return cfg
}

func TestOpenEngine_ReconcilesAndWires(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.CatalogPath, []byte(`{"plant": {"wheat": {"time": 4}}}`), 0o600))
	ctx := context.Background()

	e, err := OpenEngine(ctx, cfg, logging.Nop{})
	require.NoError(t, err)
	assert.Len(t, e.Changed, len(schema.All()))

	_, err = e.Services.Farm.OpenFarm(ctx, "u1", "farmer")
	require.NoError(t, err)
	_, err = e.Services.Plots.Sow(ctx, "u1", 1, "wheat")
	require.NoError(t, err)
	require.NoError(t, e.Close())

	e, err = OpenEngine(ctx, cfg, logging.Nop{})
	require.NoError(t, err)
	defer e.Close()
	assert.Empty(t, e.Changed, "second start finds the schema in place")

	ok, err := e.Services.Plots.IsPlanted(ctx, "u1", 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOpenEngine_CatalogWithBadEntry(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.CatalogPath,
		[]byte(`{"plant": {"wheat": {"time": 4}, "weed": {"time": 0}}}`), 0o600))
	ctx := context.Background()

	e, err := OpenEngine(ctx, cfg, logging.Nop{})
	require.NoError(t, err)
	defer e.Close()

	_, err = e.Services.Farm.OpenFarm(ctx, "u1", "farmer")
	require.NoError(t, err)
	_, err = e.Services.Plots.Sow(ctx, "u1", 1, "wheat")
	require.NoError(t, err, "valid entries survive a bad neighbour")
	_, err = e.Services.Plots.Sow(ctx, "u1", 2, "weed")
	require.ErrorIs(t, err, common.ErrUnknownCrop)
}

// blockedStorePath returns a path whose parent is a regular file.
func blockedStorePath(t *testing.T) string {
	t.Helper()
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))
	return filepath.Join(blocker, "farm.db")
}

func TestOpenEngine_CreatesStoreDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.DatabaseDSN = filepath.Join(t.TempDir(), "data", "farm.db")

	e, err := OpenEngine(context.Background(), cfg, logging.Nop{})
	require.NoError(t, err)
	defer e.Close()

	_, err = os.Stat(cfg.DatabaseDSN)
	require.NoError(t, err)
}

func TestOpenEngine_BadStorePath(t *testing.T) {
	cfg := testConfig(t)
	cfg.DatabaseDSN = blockedStorePath(t)

	_, err := OpenEngine(context.Background(), cfg, logging.Nop{})
	require.Error(t, err)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	app := NewApp(cfg, logging.Nop{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after cancel")
	}
}

func TestApp_RunFailsOnBadStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.DatabaseDSN = blockedStorePath(t)

	err := NewApp(cfg, logging.Nop{}).Run(context.Background())
	require.Error(t, err)
}
