// Package schema reconciles declared table shapes against what the SQLite
// database actually holds. It is the only package that interpolates
// identifiers into SQL, and it validates every one of them first.
//
// Reconcile picks the cheapest path that reaches the desired shape:
//
//   - table missing: CREATE TABLE
//   - only new columns, all addable in place: ALTER TABLE ADD COLUMN
//   - anything else: copy into a shadow table, drop, rename
//
// Each path runs in a single transaction.
package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophfarm/internal/dbx"
	"github.com/dmitrijs2005/gophfarm/internal/logging"
	"github.com/dmitrijs2005/gophfarm/internal/store"
)

// ColumnInfo is one row of PRAGMA table_info.
type ColumnInfo struct {
	Name    string
	Type    string
	NotNull bool
	Default sql.NullString
	PK      int
}

// ReadColumns returns the columns of table in declaration order, or an empty
// slice if the table does not exist.
func ReadColumns(ctx context.Context, q dbx.DBTX, table string) ([]ColumnInfo, error) {
	if err := ValidateIdentifier(table); err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx,
		`SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info(?) ORDER BY cid`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []ColumnInfo
	for rows.Next() {
		var c ColumnInfo
		var notNull int
		if err := rows.Scan(&c.Name, &c.Type, &notNull, &c.Default, &c.PK); err != nil {
			return nil, err
		}
		c.NotNull = notNull != 0
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// TableExists reports whether a table named table exists.
func TableExists(ctx context.Context, q dbx.DBTX, table string) (bool, error) {
	if err := ValidateIdentifier(table); err != nil {
		return false, err
	}
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DropTable drops table if it exists.
func DropTable(ctx context.Context, q dbx.DBTX, table string) error {
	qt, err := Quote(table)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, "DROP TABLE IF EXISTS "+qt)
	return err
}

type plan struct {
	create    bool
	added     []Column
	removed   []string
	retyped   []string
	pkChanged bool
}

func (p plan) noop() bool {
	return !p.create && len(p.added) == 0 && len(p.removed) == 0 && len(p.retyped) == 0 && !p.pkChanged
}

func (p plan) additive() bool {
	if p.create || len(p.added) == 0 || len(p.removed) > 0 || len(p.retyped) > 0 || p.pkChanged {
		return false
	}
	for _, c := range p.added {
		if !c.addable() {
			return false
		}
	}
	return true
}

func diff(s TableSchema, actual []ColumnInfo) plan {
	if len(actual) == 0 {
		return plan{create: true}
	}

	var p plan
	have := make(map[string]ColumnInfo, len(actual))
	for _, c := range actual {
		have[strings.ToLower(c.Name)] = c
	}

	want := make(map[string]struct{}, len(s.Columns))
	for _, c := range s.Columns {
		key := strings.ToLower(c.Name)
		want[key] = struct{}{}
		got, ok := have[key]
		switch {
		case !ok:
			p.added = append(p.added, c)
		case normType(got.Type) != normType(c.Type):
			p.retyped = append(p.retyped, c.Name)
		}
	}
	for _, c := range actual {
		if _, ok := want[strings.ToLower(c.Name)]; !ok {
			p.removed = append(p.removed, c.Name)
		}
	}

	p.pkChanged = !samePrimaryKey(s, actual)
	return p
}

func samePrimaryKey(s TableSchema, actual []ColumnInfo) bool {
	desired := s.primaryKey()

	byOrder := make(map[int]string)
	for _, c := range actual {
		if c.PK > 0 {
			byOrder[c.PK] = strings.ToLower(c.Name)
		}
	}
	if len(byOrder) != len(desired) {
		return false
	}
	for i, name := range desired {
		if byOrder[i+1] != name {
			return false
		}
	}
	return true
}

// Manager applies TableSchema declarations to the database behind runner.
type Manager struct {
	runner *dbx.Runner
	log    logging.Logger
}

func NewManager(runner *dbx.Runner, log logging.Logger) *Manager {
	return &Manager{runner: runner, log: log.With("module", "schema")}
}

// Columns returns the actual columns of table (empty if absent).
func (m *Manager) Columns(ctx context.Context, table string) ([]ColumnInfo, error) {
	cols, err := ReadColumns(ctx, m.runner.DB(), table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, store.Classify(err))
	}
	return cols, nil
}

// Reconcile brings table s.Name in line with s. It reports whether anything
// was changed. Identifiers are validated before any statement runs; a failed
// statement rolls the whole reconciliation back.
func (m *Manager) Reconcile(ctx context.Context, s TableSchema) (bool, error) {
	if err := s.Validate(); err != nil {
		return false, err
	}

	log := m.log.With("table", s.Name)
	changed := false

	err := m.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		actual, err := ReadColumns(ctx, tx, s.Name)
		if err != nil {
			return err
		}

		p := diff(s, actual)
		switch {
		case p.noop():
			return nil
		case p.create:
			if err := exec(ctx, tx, log, s.createSQL(s.Name)); err != nil {
				return err
			}
			log.Info(ctx, "table created", "columns", len(s.Columns))
		case p.additive():
			if err := m.addColumns(ctx, tx, log, s, p.added); err != nil {
				return err
			}
			log.Info(ctx, "columns added", "added", len(p.added))
		default:
			if err := m.rebuild(ctx, tx, log, s, actual); err != nil {
				return err
			}
			log.Info(ctx, "table rebuilt",
				"added", len(p.added), "removed", p.removed, "retyped", p.retyped, "pk_changed", p.pkChanged)
		}
		changed = true
		return nil
	})
	if err != nil {
		log.Error(ctx, "reconcile failed", "error", err)
		return false, fmt.Errorf("failed to reconcile table %s: %w", s.Name, store.Classify(err))
	}
	return changed, nil
}

// ReconcileAll reconciles each schema in order and stops at the first error.
// It returns the names of the tables that changed.
func (m *Manager) ReconcileAll(ctx context.Context, schemas ...TableSchema) ([]string, error) {
	var changed []string
	for _, s := range schemas {
		ok, err := m.Reconcile(ctx, s)
		if err != nil {
			return changed, err
		}
		if ok {
			changed = append(changed, s.Name)
		}
	}
	return changed, nil
}

func (m *Manager) addColumns(ctx context.Context, tx dbx.DBTX, log logging.Logger, s TableSchema, cols []Column) error {
	for _, c := range cols {
		stmt := `ALTER TABLE "` + s.Name + `" ADD COLUMN ` + c.definition()
		if err := exec(ctx, tx, log, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) rebuild(ctx context.Context, tx dbx.DBTX, log logging.Logger, s TableSchema, actual []ColumnInfo) error {
	shadow := s.Name + "_new"
	if err := ValidateIdentifier(shadow); err != nil {
		return err
	}

	indexes, err := indexDefinitions(ctx, tx, s.Name)
	if err != nil {
		return err
	}

	have := make(map[string]struct{}, len(actual))
	for _, c := range actual {
		have[strings.ToLower(c.Name)] = struct{}{}
	}
	var shared []string
	for _, c := range s.Columns {
		if _, ok := have[strings.ToLower(c.Name)]; ok {
			shared = append(shared, c.Name)
		}
	}

	stmts := []string{
		`DROP TABLE IF EXISTS "` + shadow + `"`,
		s.createSQL(shadow),
	}
	if len(shared) > 0 {
		cols := quoteList(shared)
		stmts = append(stmts, `INSERT INTO "`+shadow+`" (`+cols+`) SELECT `+cols+` FROM "`+s.Name+`"`)
	} else {
		log.Warn(ctx, "no shared columns, rows are not copied")
	}
	stmts = append(stmts,
		`DROP TABLE "`+s.Name+`"`,
		`ALTER TABLE "`+shadow+`" RENAME TO "`+s.Name+`"`,
	)

	for _, stmt := range stmts {
		if err := exec(ctx, tx, log, stmt); err != nil {
			return err
		}
	}

	// Indexes go away with the old table. One that names a dropped column
	// cannot come back; that is logged and left to the migrations.
	for _, idx := range indexes {
		if err := exec(ctx, tx, log, idx); err != nil {
			log.Warn(ctx, "index not restored after rebuild", "sql", idx, "error", err)
		}
	}
	return nil
}

func indexDefinitions(ctx context.Context, q dbx.DBTX, table string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT sql FROM sqlite_master WHERE type = 'index' AND tbl_name = ? AND sql IS NOT NULL`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var def string
		if err := rows.Scan(&def); err != nil {
			return nil, err
		}
		out = append(out, def)
	}
	return out, rows.Err()
}

func exec(ctx context.Context, tx dbx.DBTX, log logging.Logger, stmt string) error {
	log.Debug(ctx, "ddl", "sql", stmt)
	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("%s: %w", stmt, err)
	}
	return nil
}
