package inventory

import (
	"fmt"

	"github.com/dmitrijs2005/gophfarm/internal/schema"
)

// Kind identifies one inventory table. Its statements are rendered once,
// from validated identifiers, when the Kind is built.
type Kind struct {
	Name       string
	Table      string
	ItemColumn string
	Lockable   bool

	q queries
}

type queries struct {
	get, getAll, list, upsert, del, lock, isLocked string
}

// NewKind validates the identifiers and prepares the statements.
func NewKind(name, table, itemColumn string, lockable bool) (Kind, error) {
	t, err := schema.Quote(table)
	if err != nil {
		return Kind{}, err
	}
	item, err := schema.Quote(itemColumn)
	if err != nil {
		return Kind{}, err
	}

	lockExpr := "0"
	if lockable {
		lockExpr = `"isLock"`
	}

	k := Kind{Name: name, Table: table, ItemColumn: itemColumn, Lockable: lockable}
	k.q = queries{
		get:    fmt.Sprintf(`SELECT "count" FROM %s WHERE "uid" = ? AND %s = ?`, t, item),
		getAll: fmt.Sprintf(`SELECT %s, "count" FROM %s WHERE "uid" = ?`, item, t),
		list:   fmt.Sprintf(`SELECT %s, "count", %s FROM %s WHERE "uid" = ? ORDER BY %s`, item, lockExpr, t, item),
		upsert: fmt.Sprintf(`INSERT INTO %s ("uid", %s, "count") VALUES (?, ?, ?)
			ON CONFLICT ("uid", %s) DO UPDATE SET "count" = excluded."count"`, t, item, item),
		del: fmt.Sprintf(`DELETE FROM %s WHERE "uid" = ? AND %s = ?`, t, item),
	}
	if lockable {
		k.q.lock = fmt.Sprintf(`UPDATE %s SET "isLock" = ? WHERE "uid" = ? AND %s = ?`, t, item)
		k.q.isLocked = fmt.Sprintf(`SELECT "isLock" FROM %s WHERE "uid" = ? AND %s = ?`, t, item)
	}
	return k, nil
}

func mustKind(name, table, itemColumn string, lockable bool) Kind {
	k, err := NewKind(name, table, itemColumn, lockable)
	if err != nil {
		panic(err)
	}
	return k
}

var (
	Seeds = mustKind("seeds", schema.SeedTableName, "seed", false)
	Crops = mustKind("crops", schema.CropTableName, "plant", true)
)
