package thefts

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophfarm/internal/dbx"
	"github.com/dmitrijs2005/gophfarm/internal/models"
	"github.com/dmitrijs2005/gophfarm/internal/store"
)

const selectTheft = `SELECT "uid", "soilIndex", "stealerUid", "stealCount", "stealTime" FROM "userSteal"`

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, t models.TheftRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO "userSteal" ("uid", "soilIndex", "stealerUid", "stealCount", "stealTime") VALUES (?, ?, ?, ?, ?)`,
		t.VictimUID, t.Slot, t.ThiefUID, t.Count, t.StolenAt)
	return store.Wrap(err, "record theft %s/%d by %s", t.VictimUID, t.Slot, t.ThiefUID)
}

func (r *SQLiteRepository) Update(ctx context.Context, t models.TheftRecord) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE "userSteal" SET "stealCount" = ?, "stealTime" = ? WHERE "uid" = ? AND "soilIndex" = ? AND "stealerUid" = ?`,
		t.Count, t.StolenAt, t.VictimUID, t.Slot, t.ThiefUID)
	return rowsChanged(res, err, "update theft %s/%d by %s", t.VictimUID, t.Slot, t.ThiefUID)
}

func (r *SQLiteRepository) Exists(ctx context.Context, victim string, slot int, thief string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM "userSteal" WHERE "uid" = ? AND "soilIndex" = ? AND "stealerUid" = ?)`,
		victim, slot, thief).Scan(&exists)
	if err != nil {
		return false, store.Wrap(err, "check theft %s/%d by %s", victim, slot, thief)
	}
	return exists, nil
}

func (r *SQLiteRepository) Total(ctx context.Context, victim string, slot int) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM("stealCount"), 0) FROM "userSteal" WHERE "uid" = ? AND "soilIndex" = ?`,
		victim, slot).Scan(&total)
	if err != nil {
		return 0, store.Wrap(err, "sum thefts of %s/%d", victim, slot)
	}
	return total, nil
}

func (r *SQLiteRepository) DistinctThieves(ctx context.Context, victim string, slot int) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT "stealerUid") FROM "userSteal" WHERE "uid" = ? AND "soilIndex" = ?`,
		victim, slot).Scan(&n)
	if err != nil {
		return 0, store.Wrap(err, "count thieves of %s/%d", victim, slot)
	}
	return n, nil
}

func (r *SQLiteRepository) ListByVictim(ctx context.Context, victim string) ([]models.TheftRecord, error) {
	return r.list(ctx, selectTheft+` WHERE "uid" = ? ORDER BY "soilIndex", "stealTime", "stealerUid"`, victim)
}

func (r *SQLiteRepository) ListByPlot(ctx context.Context, victim string, slot int) ([]models.TheftRecord, error) {
	return r.list(ctx, selectTheft+` WHERE "uid" = ? AND "soilIndex" = ? ORDER BY "stealTime", "stealerUid"`, victim, slot)
}

func (r *SQLiteRepository) ListByThief(ctx context.Context, thief string) ([]models.TheftRecord, error) {
	return r.list(ctx, selectTheft+` WHERE "stealerUid" = ? ORDER BY "stealTime", "uid", "soilIndex"`, thief)
}

func (r *SQLiteRepository) Delete(ctx context.Context, victim string, slot int, thief string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM "userSteal" WHERE "uid" = ? AND "soilIndex" = ? AND "stealerUid" = ?`, victim, slot, thief)
	return rowsChanged(res, err, "delete theft %s/%d by %s", victim, slot, thief)
}

func (r *SQLiteRepository) DeletePlot(ctx context.Context, victim string, slot int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM "userSteal" WHERE "uid" = ? AND "soilIndex" = ?`, victim, slot)
	return rowCount(res, err, "clear thefts of %s/%d", victim, slot)
}

func (r *SQLiteRepository) DeleteVictim(ctx context.Context, victim string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM "userSteal" WHERE "uid" = ?`, victim)
	return rowCount(res, err, "clear thefts of %s", victim)
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]models.TheftRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.Wrap(err, "list thefts")
	}
	defer rows.Close()

	var out []models.TheftRecord
	for rows.Next() {
		var t models.TheftRecord
		if err := rows.Scan(&t.VictimUID, &t.Slot, &t.ThiefUID, &t.Count, &t.StolenAt); err != nil {
			return nil, store.Wrap(err, "scan theft row")
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Wrap(err, "iterate theft rows")
	}
	return out, nil
}

func rowCount(res sql.Result, err error, format string, args ...any) (int64, error) {
	if err != nil {
		return 0, store.Wrap(err, format, args...)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, store.Wrap(err, format, args...)
	}
	return n, nil
}

func rowsChanged(res sql.Result, err error, format string, args ...any) (bool, error) {
	n, err := rowCount(res, err, format, args...)
	return n > 0, err
}
