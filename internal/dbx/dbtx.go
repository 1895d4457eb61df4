// Package dbx provides tiny DB abstractions shared by repositories:
// a minimal interface (DBTX) implemented by both *sql.DB and *sql.Tx,
// a helper to run functions inside a transaction, and a Runner that
// serializes transaction scopes against one store handle.
package dbx

import (
	"context"
	"database/sql"
	"errors"
	"sync"
)

// ErrNestedTx is returned when a transaction scope is opened from inside
// another one. Nesting is not supported.
var ErrNestedTx = errors.New("nested transaction")

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxFunc is a unit of work executed against a transactional handle.
type TxFunc func(ctx context.Context, tx DBTX) error

// WithTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
//
// Typical use:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    // use tx instead of db
//	    _, err := tx.ExecContext(ctx, "UPDATE ...")
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn TxFunc) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}

type txMarker struct{}

// InTx reports whether ctx was handed out by a Runner transaction scope.
func InTx(ctx context.Context) bool {
	v, _ := ctx.Value(txMarker{}).(bool)
	return v
}

// Runner owns the store handle and executes transaction scopes one at a
// time. Reads that do not need a transaction use DB directly.
type Runner struct {
	db *sql.DB
	mu sync.Mutex
}

// NewRunner wraps db. The caller keeps ownership of db and closes it.
func NewRunner(db *sql.DB) *Runner {
	return &Runner{db: db}
}

// DB returns the underlying handle for non-transactional reads.
func (r *Runner) DB() *sql.DB {
	return r.db
}

// WithTx runs fn in a transaction. Scopes are serialized; a scope opened
// with a context that is already inside a scope fails with ErrNestedTx
// before touching the store.
func (r *Runner) WithTx(ctx context.Context, fn TxFunc) error {
	if InTx(ctx) {
		return ErrNestedTx
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return WithTx(context.WithValue(ctx, txMarker{}, true), r.db, nil, fn)
}
