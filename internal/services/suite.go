package services

import (
	"github.com/dmitrijs2005/gophfarm/internal/dbx"
	"github.com/dmitrijs2005/gophfarm/internal/logging"
	"github.com/dmitrijs2005/gophfarm/internal/repositories/inventory"
	"github.com/dmitrijs2005/gophfarm/internal/repositories/repomanager"
)

// Suite is every service wired against one store handle.
type Suite struct {
	Plots   *PlotService
	Seeds   *InventoryLedger
	Crops   *InventoryLedger
	Thefts  *TheftLedger
	Farm    *FarmService
	SignIns *SignInService
}

func NewSuite(runner *dbx.Runner, rm repomanager.RepositoryManager, catalog CropCatalog,
	clock Clock, plotsPerUser int, log logging.Logger) *Suite {
	s := &Suite{
		Plots:   NewPlotService(runner, rm, catalog, rm.Users(runner.DB()), clock, log),
		Seeds:   NewInventoryLedger(runner, rm, inventory.Seeds, log),
		Crops:   NewInventoryLedger(runner, rm, inventory.Crops, log),
		Thefts:  NewTheftLedger(runner, rm, log),
		SignIns: NewSignInService(runner, rm, clock, log),
	}
	s.Farm = NewFarmService(runner, rm, s.Plots, s.Seeds, s.Crops, plotsPerUser, log)
	return s
}
