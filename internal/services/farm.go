package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophfarm/internal/common"
	"github.com/dmitrijs2005/gophfarm/internal/dbx"
	"github.com/dmitrijs2005/gophfarm/internal/logging"
	"github.com/dmitrijs2005/gophfarm/internal/models"
	"github.com/dmitrijs2005/gophfarm/internal/repositories/repomanager"
	"github.com/dmitrijs2005/gophfarm/internal/store"
)

// FarmService runs the user actions that span several ledgers, each as a
// single transaction.
type FarmService struct {
	runner       *dbx.Runner
	rm           repomanager.RepositoryManager
	plots        *PlotService
	seeds        *InventoryLedger
	crops        *InventoryLedger
	plotsPerUser int
	log          logging.Logger
}

func NewFarmService(runner *dbx.Runner, rm repomanager.RepositoryManager, plots *PlotService,
	seeds, crops *InventoryLedger, plotsPerUser int, log logging.Logger) *FarmService {
	return &FarmService{
		runner:       runner,
		rm:           rm,
		plots:        plots,
		seeds:        seeds,
		crops:        crops,
		plotsPerUser: plotsPerUser,
		log:          log.With("module", "farm"),
	}
}

// OpenFarm creates the user profile and its empty plots.
func (s *FarmService) OpenFarm(ctx context.Context, uid, name string) (*models.User, error) {
	if err := requireID("uid", uid); err != nil {
		return nil, err
	}
	u := models.User{UID: uid, Name: name, Plots: s.plotsPerUser}
	err := s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.rm.Users(tx).Create(ctx, u); err != nil {
			if store.IsUniqueViolation(err) {
				return fmt.Errorf("%w: %s", common.ErrFarmAlreadyOpen, uid)
			}
			return err
		}
		_, err := s.plots.provision(ctx, tx, uid, s.plotsPerUser)
		return err
	})
	if err != nil {
		logFailure(ctx, s.log, "open farm", err, "uid", uid)
		return nil, err
	}
	s.log.Info(ctx, "farm opened", "uid", uid, "plots", s.plotsPerUser)
	return &u, nil
}

// CloseFarm deletes the user profile, every plot and the thefts against
// them. Inventories are kept so a reopened farm finds its seeds and crops.
// It returns the number of plots removed.
func (s *FarmService) CloseFarm(ctx context.Context, uid string) (int64, error) {
	if err := requireID("uid", uid); err != nil {
		return 0, err
	}
	var n int64
	err := s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		found, err := s.rm.Users(tx).Delete(ctx, uid)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("farm %s: %w", uid, common.ErrorNotFound)
		}
		n, err = s.plots.decommission(ctx, tx, uid)
		return err
	})
	if err != nil {
		logFailure(ctx, s.log, "close farm", err, "uid", uid)
		return 0, err
	}
	s.log.Info(ctx, "farm closed", "uid", uid, "plots", n)
	return n, nil
}

// SowFromInventory consumes one seed of plant and sows it. The theft history
// of the previous planting is dropped with it.
func (s *FarmService) SowFromInventory(ctx context.Context, uid string, slot int, plant string) (*models.Plot, error) {
	if err := requirePlot(uid, slot); err != nil {
		return nil, err
	}
	hours, err := s.plots.growthHours(plant)
	if err != nil {
		return nil, err
	}

	var sown *models.Plot
	err = s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if sown, err = s.plots.sow(ctx, tx, uid, slot, plant, hours); err != nil {
			return err
		}
		if err := s.seeds.take(ctx, tx, uid, plant, 1); err != nil {
			return err
		}
		_, err = s.rm.Thefts(tx).DeletePlot(ctx, uid, slot)
		return err
	})
	if err != nil {
		logFailure(ctx, s.log, "sow from inventory", err, "uid", uid, "slot", slot, "plant", plant)
		return nil, err
	}
	return sown, nil
}

// Harvest empties a mature plot and credits yield minus what thieves took
// to the crop inventory. It returns the credited amount.
func (s *FarmService) Harvest(ctx context.Context, uid string, slot int, yield int64) (int64, error) {
	if err := requirePlot(uid, slot); err != nil {
		return 0, err
	}
	if yield < 0 {
		return 0, fmt.Errorf("%w: yield %d", common.ErrInvalidAmount, yield)
	}

	var gained int64
	err := s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		p, err := s.maturePlot(ctx, tx, uid, slot)
		if err != nil {
			return err
		}
		thefts := s.rm.Thefts(tx)
		stolen, err := thefts.Total(ctx, uid, slot)
		if err != nil {
			return err
		}
		gained = max(yield-stolen, 0)
		if gained > 0 {
			if _, err := s.crops.add(ctx, tx, uid, p.PlantName, gained); err != nil {
				return err
			}
		}
		if err := s.plots.clear(ctx, tx, uid, slot); err != nil {
			return err
		}
		_, err = thefts.DeletePlot(ctx, uid, slot)
		return err
	})
	if err != nil {
		logFailure(ctx, s.log, "harvest", err, "uid", uid, "slot", slot)
		return 0, err
	}
	s.log.Info(ctx, "harvested", "uid", uid, "slot", slot, "gained", gained)
	return gained, nil
}

// Steal moves amount of the victim's mature crop into the thief's crop
// inventory. A thief gets one go per planting.
func (s *FarmService) Steal(ctx context.Context, victim string, slot int, thief string, amount int64) error {
	rec, err := theftRecord(victim, slot, thief, amount, 0)
	if err != nil {
		return err
	}
	if victim == thief {
		return fmt.Errorf("%w: %s", common.ErrSelfTheft, thief)
	}

	err = s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		p, err := s.maturePlot(ctx, tx, victim, slot)
		if err != nil {
			return err
		}
		thefts := s.rm.Thefts(tx)
		stolen, err := thefts.Exists(ctx, victim, slot, thief)
		if err != nil {
			return err
		}
		if stolen {
			return fmt.Errorf("%w: %s from %s/%d", common.ErrAlreadyStolen, thief, victim, slot)
		}
		rec.StolenAt = s.plots.clock.Now().Unix()
		if err := thefts.Insert(ctx, rec); err != nil {
			return err
		}
		_, err = s.crops.add(ctx, tx, thief, p.PlantName, amount)
		return err
	})
	if err != nil {
		logFailure(ctx, s.log, "steal", err, "victim", victim, "slot", slot, "thief", thief)
		return err
	}
	s.log.Info(ctx, "stolen", "victim", victim, "slot", slot, "thief", thief, "amount", amount)
	return nil
}

func (s *FarmService) maturePlot(ctx context.Context, tx dbx.DBTX, uid string, slot int) (*models.Plot, error) {
	p, err := s.rm.Plots(tx).Get(ctx, uid, slot)
	if err != nil {
		return nil, err
	}
	if !p.MatureAtOrBefore(s.plots.clock.Now().Unix()) {
		return nil, fmt.Errorf("%w: %s/%d", common.ErrPlotNotMature, uid, slot)
	}
	return p, nil
}
