package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophfarm/internal/common"
	"github.com/dmitrijs2005/gophfarm/internal/dbx"
	"github.com/dmitrijs2005/gophfarm/internal/logging"
	"github.com/dmitrijs2005/gophfarm/internal/models"
	"github.com/dmitrijs2005/gophfarm/internal/repositories/repomanager"
)

// TheftLedger records who stole how much from which plot. History belongs
// to one planting and is cleared by whoever re-sows the plot; the ledger
// never cascades on its own.
type TheftLedger struct {
	runner *dbx.Runner
	rm     repomanager.RepositoryManager
	log    logging.Logger
}

func NewTheftLedger(runner *dbx.Runner, rm repomanager.RepositoryManager, log logging.Logger) *TheftLedger {
	return &TheftLedger{runner: runner, rm: rm, log: log.With("module", "thefts")}
}

// Record inserts a new theft. A second record for the same victim, slot and
// thief fails with common.ErrorConstraint; use Update for that.
func (l *TheftLedger) Record(ctx context.Context, victim string, slot int, thief string, amount, when int64) error {
	rec, err := theftRecord(victim, slot, thief, amount, when)
	if err != nil {
		return err
	}
	err = l.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return l.rm.Thefts(tx).Insert(ctx, rec)
	})
	if err != nil {
		logFailure(ctx, l.log, "record", err, "victim", victim, "slot", slot, "thief", thief)
	}
	return err
}

// Update overwrites count and time of an existing theft.
func (l *TheftLedger) Update(ctx context.Context, victim string, slot int, thief string, amount, when int64) error {
	rec, err := theftRecord(victim, slot, thief, amount, when)
	if err != nil {
		return err
	}
	err = l.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		ok, err := l.rm.Thefts(tx).Update(ctx, rec)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("theft %s/%d by %s: %w", victim, slot, thief, common.ErrorNotFound)
		}
		return nil
	})
	if err != nil {
		logFailure(ctx, l.log, "update", err, "victim", victim, "slot", slot, "thief", thief)
	}
	return err
}

func (l *TheftLedger) HasStolen(ctx context.Context, victim string, slot int, thief string) (bool, error) {
	return l.rm.Thefts(l.runner.DB()).Exists(ctx, victim, slot, thief)
}

// TotalStolen sums every thief's take from the plot; 0 when nothing was taken.
func (l *TheftLedger) TotalStolen(ctx context.Context, victim string, slot int) (int64, error) {
	return l.rm.Thefts(l.runner.DB()).Total(ctx, victim, slot)
}

func (l *TheftLedger) DistinctThieves(ctx context.Context, victim string, slot int) (int, error) {
	return l.rm.Thefts(l.runner.DB()).DistinctThieves(ctx, victim, slot)
}

func (l *TheftLedger) ListByVictim(ctx context.Context, victim string) ([]models.TheftRecord, error) {
	return l.rm.Thefts(l.runner.DB()).ListByVictim(ctx, victim)
}

func (l *TheftLedger) ListByPlot(ctx context.Context, victim string, slot int) ([]models.TheftRecord, error) {
	return l.rm.Thefts(l.runner.DB()).ListByPlot(ctx, victim, slot)
}

func (l *TheftLedger) ListByThief(ctx context.Context, thief string) ([]models.TheftRecord, error) {
	return l.rm.Thefts(l.runner.DB()).ListByThief(ctx, thief)
}

// Delete removes one theft and reports whether it existed.
func (l *TheftLedger) Delete(ctx context.Context, victim string, slot int, thief string) (bool, error) {
	var deleted bool
	err := l.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		deleted, err = l.rm.Thefts(tx).Delete(ctx, victim, slot, thief)
		return err
	})
	if err != nil {
		logFailure(ctx, l.log, "delete", err, "victim", victim, "slot", slot, "thief", thief)
		return false, err
	}
	return deleted, nil
}

// ClearPlot drops the whole history of a plot and returns how many thefts
// were removed. The sow flow calls it when a new planting starts.
func (l *TheftLedger) ClearPlot(ctx context.Context, victim string, slot int) (int64, error) {
	var n int64
	err := l.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		n, err = l.rm.Thefts(tx).DeletePlot(ctx, victim, slot)
		return err
	})
	if err != nil {
		logFailure(ctx, l.log, "clear plot", err, "victim", victim, "slot", slot)
		return 0, err
	}
	return n, nil
}

func theftRecord(victim string, slot int, thief string, amount, when int64) (models.TheftRecord, error) {
	if err := requirePlot(victim, slot); err != nil {
		return models.TheftRecord{}, err
	}
	if err := requireID("thief", thief); err != nil {
		return models.TheftRecord{}, err
	}
	if amount < 1 {
		return models.TheftRecord{}, fmt.Errorf("%w: stolen amount %d", common.ErrInvalidAmount, amount)
	}
	return models.TheftRecord{VictimUID: victim, Slot: slot, ThiefUID: thief, Count: amount, StolenAt: when}, nil
}
