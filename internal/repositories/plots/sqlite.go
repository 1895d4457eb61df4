package plots

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

const selectPlot = `SELECT "uid", "soilIndex", "plantName", "plantTime", "matureTime", "soilLevel",
	"wiltStatus", "fertilizerStatus", "bugStatus", "weedStatus", "waterStatus"
	FROM "userSoil"`

const insertPlot = `INSERT INTO "userSoil" ("uid", "soilIndex", "plantName", "plantTime", "matureTime", "soilLevel",
	"wiltStatus", "fertilizerStatus", "bugStatus", "weedStatus", "waterStatus")
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const upsertPlot = insertPlot + `
	ON CONFLICT ("uid", "soilIndex") DO UPDATE SET
		"plantName" = excluded."plantName",
		"plantTime" = excluded."plantTime",
		"matureTime" = excluded."matureTime",
		"soilLevel" = excluded."soilLevel",
		"wiltStatus" = excluded."wiltStatus",
		"fertilizerStatus" = excluded."fertilizerStatus",
		"bugStatus" = excluded."bugStatus",
		"weedStatus" = excluded."weedStatus",
		"waterStatus" = excluded."waterStatus"`

const clearPlot = `UPDATE "userSoil" SET "plantName" = '', "plantTime" = 0, "matureTime" = 0,
	"wiltStatus" = 0, "fertilizerStatus" = 0, "bugStatus" = 0, "weedStatus" = 0, "waterStatus" = 0
	WHERE "uid" = ? AND "soilIndex" = ?`

// setFieldSQL holds one statement per updatable flag column.
var setFieldSQL = map[models.Field]string{
	models.FieldWilt:       `UPDATE "userSoil" SET "wiltStatus" = ? WHERE "uid" = ? AND "soilIndex" = ?`,
	models.FieldFertilizer: `UPDATE "userSoil" SET "fertilizerStatus" = ? WHERE "uid" = ? AND "soilIndex" = ?`,
	models.FieldPest:       `UPDATE "userSoil" SET "bugStatus" = ? WHERE "uid" = ? AND "soilIndex" = ?`,
	models.FieldWeed:       `UPDATE "userSoil" SET "weedStatus" = ? WHERE "uid" = ? AND "soilIndex" = ?`,
	models.FieldDrought:    `UPDATE "userSoil" SET "waterStatus" = ? WHERE "uid" = ? AND "soilIndex" = ?`,
}

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlot(s scanner) (*models.Plot, error) {
	p := &models.Plot{}
	var level, wilt, fert, bug, weed, water int64
	err := s.Scan(&p.UID, &p.Slot, &p.PlantName, &p.PlantedAt, &p.MatureAt, &level,
		&wilt, &fert, &bug, &weed, &water)
	if err != nil {
		return nil, err
	}
	p.SoilLevel = models.SoilLevel(level)
	p.Wilted = wilt != 0
	p.Fertilized = fert != 0
	p.Pest = bug != 0
	p.Weed = weed != 0
	p.Drought = water != 0
	return p, nil
}

func plotArgs(p models.Plot) []any {
	return []any{p.UID, p.Slot, p.PlantName, p.PlantedAt, p.MatureAt, int64(p.SoilLevel),
		p.Wilted, p.Fertilized, p.Pest, p.Weed, p.Drought}
}

func (r *SQLiteRepository) Get(ctx context.Context, uid string, slot int) (*models.Plot, error) {
	row := r.db.QueryRowContext(ctx, selectPlot+` WHERE "uid" = ? AND "soilIndex" = ?`, uid, slot)
	p, err := scanPlot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("plot %s/%d: %w", uid, slot, common.ErrorNotFound)
	}
	if err != nil {
		return nil, store.Wrap(err, "get plot %s/%d", uid, slot)
	}
	return p, nil
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]models.Plot, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.Wrap(err, "list plots")
	}
	defer rows.Close()

	var out []models.Plot
	for rows.Next() {
		p, err := scanPlot(rows)
		if err != nil {
			return nil, store.Wrap(err, "scan plot row")
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Wrap(err, "iterate plot rows")
	}
	return out, nil
}

func (r *SQLiteRepository) List(ctx context.Context, uid string) ([]models.Plot, error) {
	return r.list(ctx, selectPlot+` WHERE "uid" = ? ORDER BY "soilIndex"`, uid)
}

func (r *SQLiteRepository) ListMature(ctx context.Context, uid string, now int64) ([]models.Plot, error) {
	return r.list(ctx, selectPlot+` WHERE "uid" = ? AND "plantName" != '' AND "plantTime" > 0 AND "matureTime" <= ?
		ORDER BY "soilIndex"`, uid, now)
}

func (r *SQLiteRepository) Insert(ctx context.Context, p models.Plot) error {
	_, err := r.db.ExecContext(ctx, insertPlot, plotArgs(p)...)
	return store.Wrap(err, "insert plot %s/%d", p.UID, p.Slot)
}

func (r *SQLiteRepository) Upsert(ctx context.Context, p models.Plot) error {
	_, err := r.db.ExecContext(ctx, upsertPlot, plotArgs(p)...)
	return store.Wrap(err, "upsert plot %s/%d", p.UID, p.Slot)
}

func (r *SQLiteRepository) InsertEmpty(ctx context.Context, uid string, slot int) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO "userSoil" ("uid", "soilIndex") VALUES (?, ?) ON CONFLICT ("uid", "soilIndex") DO NOTHING`,
		uid, slot)
	return affected(res, err, "provision plot %s/%d", uid, slot)
}

func (r *SQLiteRepository) Delete(ctx context.Context, uid string, slot int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM "userSoil" WHERE "uid" = ? AND "soilIndex" = ?`, uid, slot)
	return affected(res, err, "delete plot %s/%d", uid, slot)
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context, uid string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM "userSoil" WHERE "uid" = ?`, uid)
	if err != nil {
		return 0, store.Wrap(err, "delete plots of %s", uid)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, store.Wrap(err, "delete plots of %s", uid)
	}
	return n, nil
}

func (r *SQLiteRepository) SetField(ctx context.Context, uid string, slot int, field models.Field, value bool) (bool, error) {
	query, ok := setFieldSQL[field]
	if !ok {
		return false, fmt.Errorf("%w: %q", common.ErrUnknownField, string(field))
	}
	res, err := r.db.ExecContext(ctx, query, value, uid, slot)
	return affected(res, err, "set %s on plot %s/%d", field, uid, slot)
}

func (r *SQLiteRepository) Clear(ctx context.Context, uid string, slot int) (bool, error) {
	res, err := r.db.ExecContext(ctx, clearPlot, uid, slot)
	return affected(res, err, "clear plot %s/%d", uid, slot)
}

func affected(res sql.Result, err error, format string, args ...any) (bool, error) {
	if err != nil {
		return false, store.Wrap(err, format, args...)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, store.Wrap(err, format, args...)
	}
	return n > 0, nil
}
