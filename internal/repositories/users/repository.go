// Package users stores farm owner profiles (table user).
package users

import (
	"context"

	"github.com/dmitrijs2005/gophfarm/internal/models"
)

type Repository interface {
	// Create fails with common.ErrorConstraint if the uid is taken.
	Create(ctx context.Context, u models.User) error
	Get(ctx context.Context, uid string) (*models.User, error)
	ListAllUserIDs(ctx context.Context) ([]string, error)
	SetPlotCount(ctx context.Context, uid string, plots int) (bool, error)
	Delete(ctx context.Context, uid string) (bool, error)
}
