// Package plots stores per-user plot rows (table userSoil) and reads the
// legacy soil table they were once packed into.
package plots

import (
	"context"

	"github.com/dmitrijs2005/gophfarm/internal/models"
)

type Repository interface {
	// Get returns common.ErrorNotFound when the slot has no row.
	Get(ctx context.Context, uid string, slot int) (*models.Plot, error)
	List(ctx context.Context, uid string) ([]models.Plot, error)
	ListMature(ctx context.Context, uid string, now int64) ([]models.Plot, error)
	Insert(ctx context.Context, p models.Plot) error
	Upsert(ctx context.Context, p models.Plot) error
	// InsertEmpty creates an empty slot unless one exists and reports whether
	// it did.
	InsertEmpty(ctx context.Context, uid string, slot int) (bool, error)
	Delete(ctx context.Context, uid string, slot int) (bool, error)
	DeleteAll(ctx context.Context, uid string) (int64, error)
	SetField(ctx context.Context, uid string, slot int, field models.Field, value bool) (bool, error)
	Clear(ctx context.Context, uid string, slot int) (bool, error)

	LegacyExists(ctx context.Context) (bool, error)
	// LegacyCells returns the non-blank legacy cells of uid keyed by slot.
	LegacyCells(ctx context.Context, uid string) (map[int]string, error)
	DropLegacy(ctx context.Context) error
}
