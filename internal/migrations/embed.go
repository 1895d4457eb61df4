// Package migrations holds the goose migrations applied after schema
// reconciliation. Tables themselves are owned by internal/schema; only
// secondary indexes live here.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
