package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophfarm/internal/common"
	"github.com/dmitrijs2005/gophfarm/internal/dbx"
	"github.com/dmitrijs2005/gophfarm/internal/legacy"
	"github.com/dmitrijs2005/gophfarm/internal/logging"
	"github.com/dmitrijs2005/gophfarm/internal/models"
	"github.com/dmitrijs2005/gophfarm/internal/repositories/repomanager"
)

// PlotService drives the plot lifecycle: Empty, Growing, Mature and back to
// Empty on harvest or clear.
type PlotService struct {
	runner  *dbx.Runner
	rm      repomanager.RepositoryManager
	catalog CropCatalog
	users   UserRegistry
	clock   Clock
	log     logging.Logger
}

func NewPlotService(runner *dbx.Runner, rm repomanager.RepositoryManager, catalog CropCatalog,
	users UserRegistry, clock Clock, log logging.Logger) *PlotService {
	return &PlotService{
		runner:  runner,
		rm:      rm,
		catalog: catalog,
		users:   users,
		clock:   clock,
		log:     log.With("module", "plots"),
	}
}

// growthHours resolves plant in the catalog before anything touches the store.
func (s *PlotService) growthHours(plant string) (int64, error) {
	hours, ok := s.catalog.GrowthHours(plant)
	if !ok {
		return 0, fmt.Errorf("%w: %q", common.ErrUnknownCrop, plant)
	}
	return int64(hours), nil
}

// Sow plants plant into an empty slot. It fails with common.ErrPlotOccupied,
// leaving the row untouched, when the slot already carries a crop.
func (s *PlotService) Sow(ctx context.Context, uid string, slot int, plant string) (*models.Plot, error) {
	if err := requirePlot(uid, slot); err != nil {
		return nil, err
	}
	hours, err := s.growthHours(plant)
	if err != nil {
		return nil, err
	}

	var sown *models.Plot
	err = s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		sown, err = s.sow(ctx, tx, uid, slot, plant, hours)
		return err
	})
	if err != nil {
		logFailure(ctx, s.log, "sow", err, "uid", uid, "slot", slot, "plant", plant)
		return nil, err
	}
	s.log.Debug(ctx, "sown", "uid", uid, "slot", slot, "plant", plant, "mature_at", sown.MatureAt)
	return sown, nil
}

// sow replaces the row of an empty slot with a freshly planted one. Soil
// level survives; flags start cleared.
func (s *PlotService) sow(ctx context.Context, tx dbx.DBTX, uid string, slot int, plant string, hours int64) (*models.Plot, error) {
	repo := s.rm.Plots(tx)

	p := models.Plot{UID: uid, Slot: slot, SoilLevel: models.SoilNormal}
	current, err := repo.Get(ctx, uid, slot)
	switch {
	case err == nil:
		if current.PlantName != "" {
			return nil, fmt.Errorf("%w: %s/%d grows %s", common.ErrPlotOccupied, uid, slot, current.PlantName)
		}
		p = current.Empty()
	case !errors.Is(err, common.ErrorNotFound):
		return nil, err
	}

	if _, err := repo.Delete(ctx, uid, slot); err != nil {
		return nil, err
	}
	now := s.clock.Now().Unix()
	p.PlantName = plant
	p.PlantedAt = now
	p.MatureAt = now + hours*3600
	if err := repo.Insert(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Get returns the plot or common.ErrorNotFound.
func (s *PlotService) Get(ctx context.Context, uid string, slot int) (*models.Plot, error) {
	return s.rm.Plots(s.runner.DB()).Get(ctx, uid, slot)
}

// List returns the plots of uid ordered by slot.
func (s *PlotService) List(ctx context.Context, uid string) ([]models.Plot, error) {
	return s.rm.Plots(s.runner.DB()).List(ctx, uid)
}

// ListMature returns the plots of uid that can be harvested now.
func (s *PlotService) ListMature(ctx context.Context, uid string) ([]models.Plot, error) {
	return s.rm.Plots(s.runner.DB()).ListMature(ctx, uid, s.clock.Now().Unix())
}

// IsPlanted is false for missing and half-written rows.
func (s *PlotService) IsPlanted(ctx context.Context, uid string, slot int) (bool, error) {
	p, err := s.lookup(ctx, uid, slot)
	if err != nil || p == nil {
		return false, err
	}
	return p.Planted(), nil
}

// IsMature reports whether the crop in the slot can be harvested now.
func (s *PlotService) IsMature(ctx context.Context, uid string, slot int) (bool, error) {
	p, err := s.lookup(ctx, uid, slot)
	if err != nil || p == nil {
		return false, err
	}
	return p.MatureAtOrBefore(s.clock.Now().Unix()), nil
}

// lookup returns nil without error when the slot has no row.
func (s *PlotService) lookup(ctx context.Context, uid string, slot int) (*models.Plot, error) {
	p, err := s.Get(ctx, uid, slot)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	return p, err
}

// SetField toggles one flag column. Unknown fields are rejected before the
// store is touched.
func (s *PlotService) SetField(ctx context.Context, uid string, slot int, field models.Field, value bool) error {
	if err := requirePlot(uid, slot); err != nil {
		return err
	}
	if _, ok := (models.Plot{}).Flag(field); !ok {
		return fmt.Errorf("%w: %q", common.ErrUnknownField, field)
	}
	err := s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		ok, err := s.rm.Plots(tx).SetField(ctx, uid, slot, field, value)
		if err != nil {
			return err
		}
		if !ok {
			return plotNotFound(uid, slot)
		}
		return nil
	})
	if err != nil {
		logFailure(ctx, s.log, "set field", err, "uid", uid, "slot", slot, "field", field)
	}
	return err
}

// Clear returns the slot to Empty, keeping its soil level.
func (s *PlotService) Clear(ctx context.Context, uid string, slot int) error {
	if err := requirePlot(uid, slot); err != nil {
		return err
	}
	err := s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return s.clear(ctx, tx, uid, slot)
	})
	if err != nil {
		logFailure(ctx, s.log, "clear", err, "uid", uid, "slot", slot)
	}
	return err
}

func (s *PlotService) clear(ctx context.Context, tx dbx.DBTX, uid string, slot int) error {
	ok, err := s.rm.Plots(tx).Clear(ctx, uid, slot)
	if err != nil {
		return err
	}
	if !ok {
		return plotNotFound(uid, slot)
	}
	return nil
}

// Provision creates empty slots 1..count for uid and returns how many were
// new. Existing slots are left alone. A registered user's plot count grows
// to count if it was lower.
func (s *PlotService) Provision(ctx context.Context, uid string, count int) (int, error) {
	if err := requireID("uid", uid); err != nil {
		return 0, err
	}
	if count < 1 {
		return 0, fmt.Errorf("%w: plot count %d", common.ErrInvalidAmount, count)
	}
	var created int
	err := s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if created, err = s.provision(ctx, tx, uid, count); err != nil {
			return err
		}
		return s.raisePlotCount(ctx, tx, uid, count)
	})
	if err != nil {
		logFailure(ctx, s.log, "provision", err, "uid", uid, "count", count)
		return 0, err
	}
	return created, nil
}

func (s *PlotService) raisePlotCount(ctx context.Context, tx dbx.DBTX, uid string, count int) error {
	users := s.rm.Users(tx)
	u, err := users.Get(ctx, uid)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return nil
	case err != nil:
		return err
	case u.Plots >= count:
		return nil
	}
	_, err = users.SetPlotCount(ctx, uid, count)
	return err
}

func (s *PlotService) provision(ctx context.Context, tx dbx.DBTX, uid string, count int) (int, error) {
	repo := s.rm.Plots(tx)
	created := 0
	for slot := 1; slot <= count; slot++ {
		ok, err := repo.InsertEmpty(ctx, uid, slot)
		if err != nil {
			return 0, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}

// Reset deletes one slot together with its theft history. It is an operator
// action, not part of the normal lifecycle.
func (s *PlotService) Reset(ctx context.Context, uid string, slot int) (bool, error) {
	if err := requirePlot(uid, slot); err != nil {
		return false, err
	}
	var deleted bool
	err := s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if deleted, err = s.rm.Plots(tx).Delete(ctx, uid, slot); err != nil {
			return err
		}
		_, err = s.rm.Thefts(tx).DeletePlot(ctx, uid, slot)
		return err
	})
	if err != nil {
		logFailure(ctx, s.log, "reset", err, "uid", uid, "slot", slot)
		return false, err
	}
	s.log.Info(ctx, "plot reset", "uid", uid, "slot", slot, "deleted", deleted)
	return deleted, nil
}

// decommission deletes every plot of uid and the thefts against them.
func (s *PlotService) decommission(ctx context.Context, tx dbx.DBTX, uid string) (int64, error) {
	n, err := s.rm.Plots(tx).DeleteAll(ctx, uid)
	if err != nil {
		return 0, err
	}
	_, err = s.rm.Thefts(tx).DeleteVictim(ctx, uid)
	return n, err
}

// MigrateLegacy moves the packed soil table into plot and theft rows and
// drops it, all in one transaction. Without a soil table it returns false
// and writes nothing, so running it again is harmless.
func (s *PlotService) MigrateLegacy(ctx context.Context) (bool, error) {
	exists, err := s.rm.Plots(s.runner.DB()).LegacyExists(ctx)
	if err != nil || !exists {
		return false, err
	}

	uids, err := s.users.ListAllUserIDs(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list users: %w", err)
	}

	var plotsMigrated, theftsMigrated, skipped int
	err = s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		plotsMigrated, theftsMigrated, skipped = 0, 0, 0
		plotRepo := s.rm.Plots(tx)
		theftRepo := s.rm.Thefts(tx)

		// another run may have finished between the check above and this scope
		still, err := plotRepo.LegacyExists(ctx)
		if err != nil {
			return err
		}
		if exists = still; !exists {
			return nil
		}

		for _, uid := range uids {
			cells, err := plotRepo.LegacyCells(ctx, uid)
			if err != nil {
				return err
			}
			for slot, raw := range cells {
				cell, ok, err := legacy.ParseCell(slot, raw)
				if err != nil {
					s.log.Warn(ctx, "skipping malformed legacy cell", "uid", uid, "slot", slot, "error", err)
					skipped++
					continue
				}
				if !ok {
					continue
				}
				if len(cell.Ignored) > 0 {
					s.log.Warn(ctx, "legacy cell partly decoded", "uid", uid, "slot", slot, "ignored", cell.Ignored)
				}
				if err := plotRepo.Upsert(ctx, cell.Plot(uid)); err != nil {
					return err
				}
				plotsMigrated++

				for _, rec := range cell.TheftRecords(uid) {
					updated, err := theftRepo.Update(ctx, rec)
					if err != nil {
						return err
					}
					if !updated {
						if err := theftRepo.Insert(ctx, rec); err != nil {
							return err
						}
					}
					theftsMigrated++
				}
			}
		}
		return plotRepo.DropLegacy(ctx)
	})
	if err != nil {
		logFailure(ctx, s.log, "migrate legacy", err)
		return false, err
	}
	if !exists {
		return false, nil
	}
	s.log.Info(ctx, "legacy soil table migrated",
		"users", len(uids), "plots", plotsMigrated, "thefts", theftsMigrated, "skipped", skipped)
	return true, nil
}

func requirePlot(uid string, slot int) error {
	if err := requireID("uid", uid); err != nil {
		return err
	}
	return requireSlot(slot)
}

func plotNotFound(uid string, slot int) error {
	return fmt.Errorf("plot %s/%d: %w", uid, slot, common.ErrorNotFound)
}
