package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/gophfarm/internal/flagx"
)

var knownFlags = flagx.Set{
	"d":              true,
	"catalog":        true,
	"a":              true,
	"plots":          true,
	"busy":           true,
	"log-level":      true,
	"log-format":     true,
	"migrate-legacy": false,
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-d string            database DSN
//	-catalog string      plant catalog JSON
//	-a string            gRPC bind address
//	-plots int           plots provisioned per new farm
//	-busy duration       SQLite busy timeout (e.g. "5s")
//	-log-level string    debug, info, warn or error
//	-log-format string   text or json
//	-migrate-legacy      migrate the legacy soil table at startup
//
// Args are narrowed with flagx.Pick first so flags owned by other
// components do not cause parse errors.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("gophfarm", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.CatalogPath, "catalog", config.CatalogPath, "plant catalog JSON")
	fs.StringVar(&config.GRPCAddr, "a", config.GRPCAddr, "address and port to serve health on")
	fs.IntVar(&config.PlotsPerUser, "plots", config.PlotsPerUser, "plots provisioned per new farm")
	fs.DurationVar(&config.BusyTimeout, "busy", config.BusyTimeout, "sqlite busy timeout")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "log-format", config.LogFormat, "log format")
	fs.BoolVar(&config.MigrateLegacy, "migrate-legacy", config.MigrateLegacy, "migrate legacy soil table")

	return fs.Parse(flagx.Pick(args, knownFlags))
}
