package services

import (
	"context"
	"fmt"
	"math"

	"github.com/dmitrijs2005/gophfarm/internal/common"
	"github.com/dmitrijs2005/gophfarm/internal/dbx"
	"github.com/dmitrijs2005/gophfarm/internal/logging"
	"github.com/dmitrijs2005/gophfarm/internal/models"
	"github.com/dmitrijs2005/gophfarm/internal/repositories/inventory"
	"github.com/dmitrijs2005/gophfarm/internal/repositories/repomanager"
)

// InventoryLedger keeps item counts of one inventory kind. A row exists only
// while its count is positive.
type InventoryLedger struct {
	runner *dbx.Runner
	rm     repomanager.RepositoryManager
	kind   inventory.Kind
	log    logging.Logger
}

func NewInventoryLedger(runner *dbx.Runner, rm repomanager.RepositoryManager, kind inventory.Kind, log logging.Logger) *InventoryLedger {
	return &InventoryLedger{
		runner: runner,
		rm:     rm,
		kind:   kind,
		log:    log.With("module", "inventory", "kind", kind.Name),
	}
}

// Kind returns the inventory kind the ledger writes to.
func (l *InventoryLedger) Kind() inventory.Kind {
	return l.kind
}

// Add applies delta to the stored count and returns the new count. A
// negative delta consumes; a result of zero or less deletes the row.
func (l *InventoryLedger) Add(ctx context.Context, uid, item string, delta int64) (int64, error) {
	if err := requireItem(uid, item); err != nil {
		return 0, err
	}
	var count int64
	err := l.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		count, err = l.add(ctx, tx, uid, item, delta)
		return err
	})
	if err != nil {
		logFailure(ctx, l.log, "add", err, "uid", uid, "item", item, "delta", delta)
		return 0, err
	}
	return count, nil
}

func (l *InventoryLedger) add(ctx context.Context, tx dbx.DBTX, uid, item string, delta int64) (int64, error) {
	repo := l.rm.Inventory(tx, l.kind)
	current, _, err := repo.Get(ctx, uid, item)
	if err != nil {
		return 0, err
	}
	if delta > 0 && current > math.MaxInt64-delta {
		return 0, fmt.Errorf("%w: %s holds %d %s, adding %d overflows", common.ErrInvalidAmount, uid, current, item, delta)
	}
	return l.store(ctx, repo, uid, item, current+delta)
}

// take consumes n items and fails without writing if fewer are held.
func (l *InventoryLedger) take(ctx context.Context, tx dbx.DBTX, uid, item string, n int64) error {
	repo := l.rm.Inventory(tx, l.kind)
	current, _, err := repo.Get(ctx, uid, item)
	if err != nil {
		return err
	}
	if current < n {
		return fmt.Errorf("%w: %s has %d %s, needs %d", common.ErrNotEnoughItems, uid, current, item, n)
	}
	_, err = l.store(ctx, repo, uid, item, current-n)
	return err
}

func (l *InventoryLedger) store(ctx context.Context, repo inventory.Repository, uid, item string, count int64) (int64, error) {
	if count <= 0 {
		_, err := repo.Delete(ctx, uid, item)
		return 0, err
	}
	return count, repo.Upsert(ctx, uid, item, count)
}

// Get returns the count of item; found is false when the user holds none.
func (l *InventoryLedger) Get(ctx context.Context, uid, item string) (int64, bool, error) {
	return l.rm.Inventory(l.runner.DB(), l.kind).Get(ctx, uid, item)
}

func (l *InventoryLedger) GetAll(ctx context.Context, uid string) (map[string]int64, error) {
	return l.rm.Inventory(l.runner.DB(), l.kind).GetAll(ctx, uid)
}

// List returns the entries of uid ordered by item name.
func (l *InventoryLedger) List(ctx context.Context, uid string) ([]models.InventoryEntry, error) {
	return l.rm.Inventory(l.runner.DB(), l.kind).List(ctx, uid)
}

// Set overwrites the count of item. A count of zero or less deletes the row.
func (l *InventoryLedger) Set(ctx context.Context, uid, item string, count int64) error {
	if err := requireItem(uid, item); err != nil {
		return err
	}
	err := l.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := l.store(ctx, l.rm.Inventory(tx, l.kind), uid, item, count)
		return err
	})
	if err != nil {
		logFailure(ctx, l.log, "set", err, "uid", uid, "item", item, "count", count)
	}
	return err
}

// Remove deletes item unconditionally and reports whether it was held.
func (l *InventoryLedger) Remove(ctx context.Context, uid, item string) (bool, error) {
	if err := requireItem(uid, item); err != nil {
		return false, err
	}
	var removed bool
	err := l.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		removed, err = l.rm.Inventory(tx, l.kind).Delete(ctx, uid, item)
		return err
	})
	if err != nil {
		logFailure(ctx, l.log, "remove", err, "uid", uid, "item", item)
		return false, err
	}
	return removed, nil
}

// Lock marks a held crop as excluded from bulk sale. It returns
// common.ErrorNotFound when the item is not held.
func (l *InventoryLedger) Lock(ctx context.Context, uid, item string, locked bool) error {
	if err := requireItem(uid, item); err != nil {
		return err
	}
	err := l.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		ok, err := l.rm.Inventory(tx, l.kind).SetLocked(ctx, uid, item, locked)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s %s/%s: %w", l.kind.Name, uid, item, common.ErrorNotFound)
		}
		return nil
	})
	if err != nil {
		logFailure(ctx, l.log, "lock", err, "uid", uid, "item", item)
	}
	return err
}

func (l *InventoryLedger) IsLocked(ctx context.Context, uid, item string) (bool, error) {
	return l.rm.Inventory(l.runner.DB(), l.kind).IsLocked(ctx, uid, item)
}

func requireItem(uid, item string) error {
	if err := requireID("uid", uid); err != nil {
		return err
	}
	return requireID("item", item)
}
