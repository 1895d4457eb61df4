package plots

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophfarm/internal/schema"
	"github.com/dmitrijs2005/gophfarm/internal/store"
)

var legacyColumnRe = regexp.MustCompile(`^soil([0-9]+)$`)

func (r *SQLiteRepository) LegacyExists(ctx context.Context) (bool, error) {
	ok, err := schema.TableExists(ctx, r.db, schema.LegacySoilTableName)
	if err != nil {
		return false, store.Wrap(err, "look up legacy table")
	}
	return ok, nil
}

// LegacyCells reads whichever soilN columns the legacy table has, for
// N in 1..schema.LegacySlots.
func (r *SQLiteRepository) LegacyCells(ctx context.Context, uid string) (map[int]string, error) {
	cols, err := schema.ReadColumns(ctx, r.db, schema.LegacySoilTableName)
	if err != nil {
		return nil, store.Wrap(err, "read legacy columns")
	}

	var names []string
	var slots []int
	for _, c := range cols {
		m := legacyColumnRe.FindStringSubmatch(c.Name)
		if m == nil {
			continue
		}
		slot, _ := strconv.Atoi(m[1])
		if slot < 1 || slot > schema.LegacySlots {
			continue
		}
		names = append(names, schema.MustQuote(c.Name))
		slots = append(slots, slot)
	}
	if len(names) == 0 {
		return map[int]string{}, nil
	}

	query := `SELECT ` + strings.Join(names, ", ") + ` FROM ` + schema.MustQuote(schema.LegacySoilTableName) + ` WHERE "uid" = ?`
	values := make([]sql.NullString, len(names))
	dest := make([]any, len(names))
	for i := range values {
		dest[i] = &values[i]
	}

	err = r.db.QueryRowContext(ctx, query, uid).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return map[int]string{}, nil
	}
	if err != nil {
		return nil, store.Wrap(err, "read legacy cells of %s", uid)
	}

	out := make(map[int]string, len(values))
	for i, v := range values {
		if v.Valid && strings.TrimSpace(v.String) != "" {
			out[slots[i]] = v.String
		}
	}
	return out, nil
}

func (r *SQLiteRepository) DropLegacy(ctx context.Context) error {
	return store.Wrap(schema.DropTable(ctx, r.db, schema.LegacySoilTableName), "drop legacy table")
}
