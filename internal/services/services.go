// Package services holds the farm's business operations. Every mutation
// runs in one dbx.Runner transaction with repositories bound to it; reads
// go straight to the store handle.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophfarm/internal/common"
	"github.com/dmitrijs2005/gophfarm/internal/logging"
)

// CropCatalog resolves how long a crop takes to grow.
type CropCatalog interface {
	GrowthHours(plant string) (int, bool)
}

// UserRegistry lists every known user id. Only the legacy migration uses it.
type UserRegistry interface {
	ListAllUserIDs(ctx context.Context) ([]string, error)
}

type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func requireID(what, id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty %s", common.ErrorValidation, what)
	}
	return nil
}

func requireSlot(slot int) error {
	if slot < 1 {
		return fmt.Errorf("%w: %d", common.ErrInvalidSlot, slot)
	}
	return nil
}

// logFailure records a failed operation. Caller mistakes are warnings; store
// failures are errors.
func logFailure(ctx context.Context, log logging.Logger, op string, err error, args ...any) {
	args = append(args, "op", op, "error", err)
	switch {
	case errors.Is(err, common.ErrorValidation),
		errors.Is(err, common.ErrorConstraint),
		errors.Is(err, common.ErrorNotFound):
		log.Warn(ctx, "operation rejected", args...)
	default:
		log.Error(ctx, "operation failed", args...)
	}
}
