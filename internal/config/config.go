// Package config handles configuration for the farm daemon and the operator
// CLI, layering defaults, a JSON file, GOPHFARM_* environment variables and
// command-line flags (last one wins).
package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for gophfarm.
//
// Fields:
//   - DatabaseDSN: SQLite file path or DSN understood by store.Open.
//   - CatalogPath: JSON plant catalog consulted when sowing.
//   - GRPCAddr: bind address for the health endpoint.
//   - PlotsPerUser: number of empty plots provisioned for a new farm.
//   - BusyTimeout: how long SQLite waits on a locked database.
//   - LogLevel / LogFormat: slog level name and handler ("text" or "json").
//   - MigrateLegacy: run the legacy soil table migration at startup.
type Config struct {
	DatabaseDSN   string        `env:"GOPHFARM_DATABASE_DSN"`
	CatalogPath   string        `env:"GOPHFARM_CATALOG_PATH"`
	GRPCAddr      string        `env:"GOPHFARM_GRPC_ADDR"`
	PlotsPerUser  int           `env:"GOPHFARM_PLOTS_PER_USER"`
	BusyTimeout   time.Duration `env:"GOPHFARM_BUSY_TIMEOUT"`
	LogLevel      string        `env:"GOPHFARM_LOG_LEVEL"`
	LogFormat     string        `env:"GOPHFARM_LOG_FORMAT"`
	MigrateLegacy bool          `env:"GOPHFARM_MIGRATE_LEGACY"`
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "farm.db"
	c.CatalogPath = "plant.json"
	c.GRPCAddr = ":50061"
	c.PlotsPerUser = 3
	c.BusyTimeout = 5 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "json"
	c.MigrateLegacy = true
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	if c.DatabaseDSN == "" {
		return fmt.Errorf("database dsn is empty")
	}
	if c.PlotsPerUser < 1 {
		return fmt.Errorf("plots per user must be positive, got %d", c.PlotsPerUser)
	}
	if c.BusyTimeout < 0 {
		return fmt.Errorf("busy timeout must not be negative, got %s", c.BusyTimeout)
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally from args
// (usually os.Args[1:]).
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
