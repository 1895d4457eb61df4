package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophfarm/internal/common"
	"github.com/dmitrijs2005/gophfarm/internal/dbx"
	"github.com/dmitrijs2005/gophfarm/internal/models"
	"github.com/dmitrijs2005/gophfarm/internal/store"
)

type SQLiteRepository struct {
	db   dbx.DBTX
	kind Kind
}

func NewSQLiteRepository(db dbx.DBTX, kind Kind) *SQLiteRepository {
	return &SQLiteRepository{db: db, kind: kind}
}

func (r *SQLiteRepository) Get(ctx context.Context, uid, item string) (int64, bool, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, r.kind.q.get, uid, item).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, store.Wrap(err, "get %s %s/%s", r.kind.Name, uid, item)
	}
	return count, true, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context, uid string) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, r.kind.q.getAll, uid)
	if err != nil {
		return nil, store.Wrap(err, "list %s of %s", r.kind.Name, uid)
	}
	defer rows.Close()

	result := make(map[string]int64)
	for rows.Next() {
		var item string
		var count int64
		if err := rows.Scan(&item, &count); err != nil {
			return nil, store.Wrap(err, "scan %s row", r.kind.Name)
		}
		result[item] = count
	}
	if err := rows.Err(); err != nil {
		return nil, store.Wrap(err, "iterate %s rows", r.kind.Name)
	}
	return result, nil
}

func (r *SQLiteRepository) List(ctx context.Context, uid string) ([]models.InventoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, r.kind.q.list, uid)
	if err != nil {
		return nil, store.Wrap(err, "list %s of %s", r.kind.Name, uid)
	}
	defer rows.Close()

	var out []models.InventoryEntry
	for rows.Next() {
		e := models.InventoryEntry{UID: uid}
		var locked int64
		if err := rows.Scan(&e.Item, &e.Count, &locked); err != nil {
			return nil, store.Wrap(err, "scan %s row", r.kind.Name)
		}
		e.Locked = locked != 0
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Wrap(err, "iterate %s rows", r.kind.Name)
	}
	return out, nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, uid, item string, count int64) error {
	_, err := r.db.ExecContext(ctx, r.kind.q.upsert, uid, item, count)
	return store.Wrap(err, "upsert %s %s/%s", r.kind.Name, uid, item)
}

func (r *SQLiteRepository) Delete(ctx context.Context, uid, item string) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.kind.q.del, uid, item)
	if err != nil {
		return false, store.Wrap(err, "delete %s %s/%s", r.kind.Name, uid, item)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, store.Wrap(err, "delete %s %s/%s", r.kind.Name, uid, item)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) SetLocked(ctx context.Context, uid, item string, locked bool) (bool, error) {
	if !r.kind.Lockable {
		return false, fmt.Errorf("%w: %s cannot be locked", common.ErrorValidation, r.kind.Name)
	}
	res, err := r.db.ExecContext(ctx, r.kind.q.lock, locked, uid, item)
	if err != nil {
		return false, store.Wrap(err, "lock %s %s/%s", r.kind.Name, uid, item)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, store.Wrap(err, "lock %s %s/%s", r.kind.Name, uid, item)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) IsLocked(ctx context.Context, uid, item string) (bool, error) {
	if !r.kind.Lockable {
		return false, nil
	}
	var locked int64
	err := r.db.QueryRowContext(ctx, r.kind.q.isLocked, uid, item).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, store.Wrap(err, "read lock of %s %s/%s", r.kind.Name, uid, item)
	}
	return locked != 0, nil
}
