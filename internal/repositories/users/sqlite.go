package users

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
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, u models.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO "user" ("uid", "name", "exp", "point", "soil", "stealing") VALUES (?, ?, ?, ?, ?, ?)`,
		u.UID, u.Name, u.Exp, u.Point, u.Plots, u.Stealing)
	return store.Wrap(err, "create user %s", u.UID)
}

func (r *SQLiteRepository) Get(ctx context.Context, uid string) (*models.User, error) {
	u := &models.User{}
	var exp, point, plots sql.NullInt64
	var stealing sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT "uid", "name", "exp", "point", "soil", "stealing" FROM "user" WHERE "uid" = ?`, uid).
		Scan(&u.UID, &u.Name, &exp, &point, &plots, &stealing)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", uid, common.ErrorNotFound)
	}
	if err != nil {
		return nil, store.Wrap(err, "get user %s", uid)
	}
	u.Exp, u.Point, u.Plots, u.Stealing = exp.Int64, point.Int64, int(plots.Int64), stealing.String
	return u, nil
}

func (r *SQLiteRepository) ListAllUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT "uid" FROM "user" ORDER BY "uid"`)
	if err != nil {
		return nil, store.Wrap(err, "list users")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, store.Wrap(err, "scan user row")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Wrap(err, "iterate user rows")
	}
	return ids, nil
}

func (r *SQLiteRepository) SetPlotCount(ctx context.Context, uid string, plots int) (bool, error) {
	return r.exec(ctx, `UPDATE "user" SET "soil" = ? WHERE "uid" = ?`, []any{plots, uid}, "set plot count of %s", uid)
}

func (r *SQLiteRepository) Delete(ctx context.Context, uid string) (bool, error) {
	return r.exec(ctx, `DELETE FROM "user" WHERE "uid" = ?`, []any{uid}, "delete user %s", uid)
}

func (r *SQLiteRepository) exec(ctx context.Context, query string, args []any, format string, fargs ...any) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, store.Wrap(err, format, fargs...)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, store.Wrap(err, format, fargs...)
	}
	return n > 0, nil
}
