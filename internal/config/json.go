package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophfarm/internal/flagx"
	"github.com/dmitrijs2005/gophfarm/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept both
// strings such as "5s" and integer nanoseconds. Pointer fields distinguish
// "absent" from a zero value so a partial file only overrides what it names.
type JsonConfig struct {
	DatabaseDSN   *string         `json:"database_dsn"`
	CatalogPath   *string         `json:"catalog_path"`
	GRPCAddr      *string         `json:"grpc_addr"`
	PlotsPerUser  *int            `json:"plots_per_user"`
	BusyTimeout   *timex.Duration `json:"busy_timeout"`
	LogLevel      *string         `json:"log_level"`
	LogFormat     *string         `json:"log_format"`
	MigrateLegacy *bool           `json:"migrate_legacy"`
}

// parseJson loads the file named by -c / -config, if any, into config.
func parseJson(config *Config, args []string) error {
	path := flagx.Lookup(args, "c", "config")
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.CatalogPath != nil {
		config.CatalogPath = *c.CatalogPath
	}
	if c.GRPCAddr != nil {
		config.GRPCAddr = *c.GRPCAddr
	}
	if c.PlotsPerUser != nil {
		config.PlotsPerUser = *c.PlotsPerUser
	}
	if c.BusyTimeout != nil {
		config.BusyTimeout = c.BusyTimeout.Duration
	}
	if c.LogLevel != nil {
		config.LogLevel = *c.LogLevel
	}
	if c.LogFormat != nil {
		config.LogFormat = *c.LogFormat
	}
	if c.MigrateLegacy != nil {
		config.MigrateLegacy = *c.MigrateLegacy
	}
	return nil
}
