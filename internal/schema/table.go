package schema

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophfarm/internal/common"
)

// Column is one declared column. Type is what PRAGMA table_info reports back
// and what reconciliation compares; Modifiers (NOT NULL, DEFAULT ...) only
// take effect when the column is created.
type Column struct {
	Name      string
	Type      string
	Modifiers string
}

// TableSchema is the desired shape of a table. Columns keep declaration order.
type TableSchema struct {
	Name       string
	Columns    []Column
	PrimaryKey []string
}

// Validate checks every identifier, type and modifier string of the schema.
func (s TableSchema) Validate() error {
	if err := ValidateIdentifier(s.Name); err != nil {
		return err
	}
	if len(s.Columns) == 0 {
		return fmt.Errorf("%w: table %s declares no columns", common.ErrorValidation, s.Name)
	}

	seen := make(map[string]struct{}, len(s.Columns))
	for _, c := range s.Columns {
		if err := ValidateIdentifier(c.Name); err != nil {
			return err
		}
		if err := validateType(c.Type); err != nil {
			return err
		}
		if err := validateModifiers(c.Modifiers); err != nil {
			return err
		}
		key := strings.ToLower(c.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate column %s.%s", common.ErrorValidation, s.Name, c.Name)
		}
		seen[key] = struct{}{}
	}

	for _, pk := range s.PrimaryKey {
		if err := ValidateIdentifier(pk); err != nil {
			return err
		}
		if _, ok := seen[strings.ToLower(pk)]; !ok {
			return fmt.Errorf("%w: primary key column %s not declared in %s", common.ErrorValidation, pk, s.Name)
		}
	}
	return nil
}

// primaryKey returns the effective key columns in lower case, whether given
// as a composite key or inline on a column.
func (s TableSchema) primaryKey() []string {
	if len(s.PrimaryKey) > 0 {
		out := make([]string, len(s.PrimaryKey))
		for i, pk := range s.PrimaryKey {
			out[i] = strings.ToLower(pk)
		}
		return out
	}
	var out []string
	for _, c := range s.Columns {
		if strings.Contains(strings.ToUpper(c.Modifiers), "PRIMARY KEY") {
			out = append(out, strings.ToLower(c.Name))
		}
	}
	return out
}

func (c Column) definition() string {
	def := `"` + c.Name + `"`
	if t := strings.TrimSpace(c.Type); t != "" {
		def += " " + t
	}
	if m := strings.TrimSpace(c.Modifiers); m != "" {
		def += " " + m
	}
	return def
}

// addable reports whether ALTER TABLE ADD COLUMN accepts the column.
func (c Column) addable() bool {
	m := strings.ToUpper(c.Modifiers)
	switch {
	case strings.Contains(m, "PRIMARY KEY"), strings.Contains(m, "UNIQUE"):
		return false
	case strings.Contains(m, "DEFAULT CURRENT_"), strings.Contains(m, "DEFAULT ("):
		return false
	case strings.Contains(m, "NOT NULL") && !strings.Contains(m, "DEFAULT"):
		return false
	}
	return true
}

// createSQL renders CREATE TABLE for the schema under the given table name.
// The schema must be validated first.
func (s TableSchema) createSQL(table string) string {
	defs := make([]string, 0, len(s.Columns)+1)
	for _, c := range s.Columns {
		defs = append(defs, c.definition())
	}
	if len(s.PrimaryKey) > 0 {
		defs = append(defs, "PRIMARY KEY ("+quoteList(s.PrimaryKey)+")")
	}
	return `CREATE TABLE "` + table + `" (` + strings.Join(defs, ", ") + ")"
}

func quoteList(names []string) string {
	q := make([]string, len(names))
	for i, n := range names {
		q[i] = `"` + n + `"`
	}
	return strings.Join(q, ", ")
}
