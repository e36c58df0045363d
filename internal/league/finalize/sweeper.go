package finalize

import (
	"context"
	"fmt"
	"time"

	"memebattles/internal/league/epoch"

	"go.uber.org/zap"
)

// Sweeper moves expired, never-paid winner slots into the rollover ledger of
// the period's live epoch. A slot with a payout row is never swept; claiming
// alone does not protect a slot from expiry.
type Sweeper struct {
	logs     *zap.SugaredLogger
	store    Store
	chainIDs []int64
}

func NewSweeper(logs *zap.SugaredLogger, store Store, chainIDs []int64) *Sweeper {
	return &Sweeper{
		logs:     logs,
		store:    store,
		chainIDs: chainIDs,
	}
}

// SweepExpired sweeps every expired unclaimed slot on every configured
// chain. Safe to run concurrently with itself and with claim settlement: the
// guarded per-slot update makes redundant runs no-ops.
func (s *Sweeper) SweepExpired(ctx context.Context, now time.Time) error {
	for _, chainID := range s.chainIDs {
		if err := s.sweepChain(ctx, chainID, now); err != nil {
			return fmt.Errorf("sweep chain %d: %w", chainID, err)
		}
	}
	return nil
}

func (s *Sweeper) sweepChain(ctx context.Context, chainID int64, now time.Time) error {
	candidates, err := s.store.SweepCandidates(ctx, chainID, now)
	if err != nil {
		return err
	}

	for _, slot := range candidates {
		target := epoch.Containing(slot.Period, now).Start
		swept, err := s.store.SweepSlot(ctx, slot, target, now)
		if err != nil {
			return fmt.Errorf("sweep slot %s: %w", slot.SlotID, err)
		}
		if !swept {
			// paid or already swept since candidate selection
			continue
		}
		s.logs.Infow("expired slot swept into rollover",
			"chain_id", chainID,
			"slot", slot.SlotID.String(),
			"amount", slot.Amount.String(),
			"target_epoch", target)
	}
	return nil
}
