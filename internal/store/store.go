// Package store opens the embedded SQLite database used by every gophfarm
// component and classifies driver errors into the common taxonomy.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophfarm/internal/common"
	"github.com/dmitrijs2005/gophfarm/internal/filex"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Options tune the connection. Zero values pick the defaults.
type Options struct {
	BusyTimeout time.Duration
}

const defaultBusyTimeout = 5 * time.Second

// DSN builds a modernc.org/sqlite DSN for path with WAL journaling, foreign
// keys, the busy timeout and immediate write transactions.
func DSN(path string, opts Options) string {
	busy := opts.BusyTimeout
	if busy <= 0 {
		busy = defaultBusyTimeout
	}

	params := []string{
		"_pragma=busy_timeout(" + fmt.Sprint(busy.Milliseconds()) + ")",
		"_pragma=foreign_keys(1)",
		"_pragma=synchronous(NORMAL)",
		"_txlock=immediate",
	}
	if !isMemory(path) {
		params = append(params, "_pragma=journal_mode(WAL)")
		path = filepath.Clean(path)
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&")
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}

// Open opens and pings the database at path, creating its directory when
// needed. The caller owns the returned handle and must close it.
func Open(ctx context.Context, path string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: storage path is required", common.ErrorValidation)
	}

	if !isMemory(path) && !strings.HasPrefix(path, "file:") {
		if _, err := filex.EnsureParentDir(path); err != nil {
			return nil, fmt.Errorf("prepare sqlite dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", DSN(path, opts))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if isMemory(path) {
		// every new connection to :memory: is a fresh database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return db, nil
}

// IsConstraint reports whether err is a constraint failure raised by the
// driver (primary key, unique, not null, check).
func IsConstraint(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch code := sqliteErr.Code(); code {
	case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
		return true
	default:
		// extended codes keep the primary code in the low byte
		return code&0xff == sqlite3lib.SQLITE_CONSTRAINT
	}
}

// IsUniqueViolation reports whether err is a duplicate primary or unique key.
func IsUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	return false
}

// Classify maps a driver error onto the common taxonomy: constraint failures
// wrap ErrorConstraint, everything else wraps ErrorStore. Errors already
// carrying a common sentinel pass through unchanged.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorValidation),
		errors.Is(err, common.ErrorConstraint),
		errors.Is(err, common.ErrorNotFound),
		errors.Is(err, common.ErrorStore):
		return err
	case IsConstraint(err):
		return fmt.Errorf("%w: %w", common.ErrorConstraint, err)
	default:
		return fmt.Errorf("%w: %w", common.ErrorStore, err)
	}
}

// Wrap classifies err and prefixes it with the failed operation. A nil err
// stays nil.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to "+format+": %w", append(args, Classify(err))...)
}
