// Package thefts stores who took how much from which plot (table userSteal).
package thefts

import (
	"context"

	"github.com/dmitrijs2005/gophfarm/internal/models"
)

type Repository interface {
	// Insert fails with common.ErrorConstraint if the triple already exists.
	Insert(ctx context.Context, r models.TheftRecord) error
	// Update reports whether the triple existed.
	Update(ctx context.Context, r models.TheftRecord) (bool, error)
	Exists(ctx context.Context, victim string, slot int, thief string) (bool, error)
	Total(ctx context.Context, victim string, slot int) (int64, error)
	DistinctThieves(ctx context.Context, victim string, slot int) (int, error)
	ListByVictim(ctx context.Context, victim string) ([]models.TheftRecord, error)
	ListByPlot(ctx context.Context, victim string, slot int) ([]models.TheftRecord, error)
	ListByThief(ctx context.Context, thief string) ([]models.TheftRecord, error)
	Delete(ctx context.Context, victim string, slot int, thief string) (bool, error)
	DeletePlot(ctx context.Context, victim string, slot int) (int64, error)
	DeleteVictim(ctx context.Context, victim string) (int64, error)
}
