package signins

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophfarm/internal/common"
	"github.com/dmitrijs2005/gophfarm/internal/dbx"
	"github.com/dmitrijs2005/gophfarm/internal/models"
	"github.com/dmitrijs2005/gophfarm/internal/store"
)

// SQLite CURRENT_TIMESTAMP format.
const timestampLayout = "2006-01-02 15:04:05"

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) InsertLog(ctx context.Context, l models.SignLog) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO "userSignLog" ("uid", "signDate", "isSupplement", "rewardType") VALUES (?, ?, ?, ?)`,
		l.UID, l.Date, l.IsSupplement, l.RewardType)
	return store.Wrap(err, "insert sign-in %s/%s", l.UID, l.Date)
}

func (r *SQLiteRepository) HasSigned(ctx context.Context, uid, date string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM "userSignLog" WHERE "uid" = ? AND "signDate" = ?)`, uid, date).Scan(&exists)
	if err != nil {
		return false, store.Wrap(err, "check sign-in %s/%s", uid, date)
	}
	return exists, nil
}

func (r *SQLiteRepository) CountMonth(ctx context.Context, uid, month string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM "userSignLog" WHERE "uid" = ? AND "signDate" LIKE ?`, uid, month+"-%").Scan(&n)
	if err != nil {
		return 0, store.Wrap(err, "count sign-ins %s/%s", uid, month)
	}
	return n, nil
}

func (r *SQLiteRepository) Days(ctx context.Context, uid, month string) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT CAST("signDate" AS TEXT) FROM "userSignLog" WHERE "uid" = ? AND "signDate" LIKE ? ORDER BY "signDate"`,
		uid, month+"-%")
	if err != nil {
		return nil, store.Wrap(err, "list sign-ins %s/%s", uid, month)
	}
	defer rows.Close()

	var days []int
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, store.Wrap(err, "scan sign-in row")
		}
		if len(date) < 2 {
			continue
		}
		if d, err := strconv.Atoi(date[len(date)-2:]); err == nil {
			days = append(days, d)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, store.Wrap(err, "iterate sign-in rows")
	}
	return days, nil
}

func (r *SQLiteRepository) GetSummary(ctx context.Context, uid string) (*models.SignSummary, error) {
	s := &models.SignSummary{}
	var updated string
	err := r.db.QueryRowContext(ctx,
		`SELECT "uid", "totalSignDays", "currentMonth", "monthSignDays", CAST("lastSignDate" AS TEXT),
			"continuousDays", "supplementCount", CAST("updatedAt" AS TEXT)
		FROM "userSignSummary" WHERE "uid" = ?`, uid).
		Scan(&s.UID, &s.TotalSignDays, &s.CurrentMonth, &s.MonthSignDays, &s.LastSignDate,
			&s.ContinuousDays, &s.SupplementCount, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sign-in summary %s: %w", uid, common.ErrorNotFound)
	}
	if err != nil {
		return nil, store.Wrap(err, "get sign-in summary %s", uid)
	}
	if t, err := time.Parse(timestampLayout, updated); err == nil {
		s.UpdatedAt = t
	}
	return s, nil
}

func (r *SQLiteRepository) UpsertSummary(ctx context.Context, s models.SignSummary) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO "userSignSummary" ("uid", "totalSignDays", "currentMonth", "monthSignDays", "lastSignDate",
			"continuousDays", "supplementCount", "updatedAt")
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT ("uid") DO UPDATE SET
			"totalSignDays" = excluded."totalSignDays",
			"currentMonth" = excluded."currentMonth",
			"monthSignDays" = excluded."monthSignDays",
			"lastSignDate" = excluded."lastSignDate",
			"continuousDays" = excluded."continuousDays",
			"supplementCount" = excluded."supplementCount",
			"updatedAt" = CURRENT_TIMESTAMP`,
		s.UID, s.TotalSignDays, s.CurrentMonth, s.MonthSignDays, s.LastSignDate, s.ContinuousDays, s.SupplementCount)
	return store.Wrap(err, "upsert sign-in summary %s", s.UID)
}
