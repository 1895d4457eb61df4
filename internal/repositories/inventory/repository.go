// Package inventory stores per-user item counts. One table per Kind: seeds
// and crops share the same shape and statements.
package inventory

import (
	"context"

	"github.com/dmitrijs2005/gophfarm/internal/models"
)

type Repository interface {
	// Get returns the stored count; found is false when there is no row.
	Get(ctx context.Context, uid, item string) (count int64, found bool, err error)
	GetAll(ctx context.Context, uid string) (map[string]int64, error)
	List(ctx context.Context, uid string) ([]models.InventoryEntry, error)
	// Upsert writes count as is. Callers make sure it is positive.
	Upsert(ctx context.Context, uid, item string, count int64) error
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, uid, item string) (bool, error)
	// SetLocked reports whether the row existed. Kinds without a lock column
	// return common.ErrorValidation.
	SetLocked(ctx context.Context, uid, item string, locked bool) (bool, error)
	IsLocked(ctx context.Context, uid, item string) (bool, error)
}
