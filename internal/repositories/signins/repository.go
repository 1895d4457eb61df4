// Package signins stores daily sign-ins (userSignLog) and the per-user
// summary kept next to them (userSignSummary).
package signins

import (
	"context"

	"github.com/dmitrijs2005/gophfarm/internal/models"
)

type Repository interface {
	// InsertLog fails with common.ErrorConstraint if the day is taken.
	InsertLog(ctx context.Context, l models.SignLog) error
	HasSigned(ctx context.Context, uid, date string) (bool, error)
	// CountMonth counts sign-ins in month ("YYYY-MM").
	CountMonth(ctx context.Context, uid, month string) (int, error)
	// Days returns the signed days of month in ascending order.
	Days(ctx context.Context, uid, month string) ([]int, error)
	// GetSummary returns common.ErrorNotFound for users that never signed.
	GetSummary(ctx context.Context, uid string) (*models.SignSummary, error)
	UpsertSummary(ctx context.Context, s models.SignSummary) error
}
