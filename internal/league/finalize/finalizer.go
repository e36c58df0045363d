package finalize

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"memebattles/internal/league/epoch"
	"memebattles/internal/league/leaderboard"
	"memebattles/internal/league/model"
	"memebattles/internal/league/pool"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// claimWindow is how long after epoch end a winner slot stays claimable.
const claimWindow = 90 * 24 * time.Hour

// backfillEpochs is how many completed epochs each run looks back over, so a
// stalled scheduler catches up without manual intervention.
const backfillEpochs = 4

// Finalizer turns completed epochs into immutable winner rows. Every write
// is insert-if-absent at the category granularity, so overlapping or
// repeated runs, and runs resuming after a partial crash, are safe.
type Finalizer struct {
	logs       *zap.SugaredLogger
	store      Store
	boards     *leaderboard.Engine
	calculator *pool.Calculator
	cache      *pool.Cache
	chainIDs   []int64
}

func NewFinalizer(logs *zap.SugaredLogger, store Store, boards *leaderboard.Engine, calculator *pool.Calculator, cache *pool.Cache, chainIDs []int64) *Finalizer {
	return &Finalizer{
		logs:       logs,
		store:      store,
		boards:     boards,
		calculator: calculator,
		cache:      cache,
		chainIDs:   chainIDs,
	}
}

// FinalizeDue finalizes every pending completed epoch on every configured
// chain, chains in parallel.
func (f *Finalizer) FinalizeDue(ctx context.Context, now time.Time) error {
	group, gctx := errgroup.WithContext(ctx)
	for _, chainID := range f.chainIDs {
		group.Go(func() error {
			return f.finalizeChain(gctx, chainID, now)
		})
	}
	return group.Wait()
}

func (f *Finalizer) finalizeChain(ctx context.Context, chainID int64, now time.Time) error {
	for _, period := range []model.Period{model.PeriodWeekly, model.PeriodMonthly} {
		// oldest first: an epoch's rollover must land in its successor's
		// ledger before the successor's pot is computed, or the amount
		// would sit unreachable behind an already-finalized epoch
		for offset := backfillEpochs; offset >= 1; offset-- {
			window := epoch.At(period, offset, now)
			if err := f.FinalizeEpoch(ctx, chainID, period, window); err != nil {
				return fmt.Errorf("finalize %s epoch %s: %w", period, window.Start.Format(time.RFC3339), err)
			}
		}
	}
	return nil
}

// FinalizeEpoch finalizes each not-yet-finalized category of one completed
// epoch: either winner rows are inserted or the pot rolls to the next epoch.
func (f *Finalizer) FinalizeEpoch(ctx context.Context, chainID int64, period model.Period, window epoch.Window) error {
	if window.IsLive {
		return fmt.Errorf("epoch starting %s is still live", window.Start.Format(time.RFC3339))
	}

	var breakdown pool.Breakdown
	computed := false

	for _, category := range model.EligibleCategories(period) {
		done, err := f.categoryFinalized(ctx, chainID, period, window.Start, category)
		if err != nil {
			return err
		}
		if done {
			continue
		}

		// compute the pool lazily: fully finalized epochs skip the scan
		if !computed {
			breakdown, err = f.calculator.Breakdown(ctx, chainID, period, window)
			if err != nil {
				return fmt.Errorf("prize breakdown: %w", err)
			}
			computed = true
		}

		if err := f.finalizeCategory(ctx, chainID, period, window, category, breakdown); err != nil {
			return fmt.Errorf("category %s: %w", category, err)
		}
	}

	if computed {
		f.cache.Invalidate(chainID, period, window.Start)
	}
	return nil
}

func (f *Finalizer) categoryFinalized(ctx context.Context, chainID int64, period model.Period, epochStart time.Time, category model.Category) (bool, error) {
	hasWinners, err := f.store.CategoryHasWinners(ctx, chainID, period, epochStart, category)
	if err != nil {
		return false, err
	}
	if hasWinners {
		return true, nil
	}
	return f.store.RolloverEventExists(ctx, chainID, period, epochStart, category, model.RolloverNoClearWinner)
}

func (f *Finalizer) finalizeCategory(ctx context.Context, chainID int64, period model.Period, window epoch.Window, category model.Category, breakdown pool.Breakdown) error {
	pot, ok := breakdown.Pot(category)
	if !ok {
		return fmt.Errorf("no pot computed for %s", category)
	}

	entries, err := f.boards.Rank(ctx, chainID, category, window)
	if err != nil {
		return fmt.Errorf("rank: %w", err)
	}

	nextStart := epoch.Next(period, window).Start

	// strict top-1-vs-top-2 equality check; deeper ties do not void the epoch
	if len(entries) == 0 || (len(entries) > 1 && entries[0].ScoreEquals(entries[1])) {
		f.logs.Infow("no clear winner, rolling pot forward",
			"chain_id", chainID,
			"period", period,
			"epoch_start", window.Start,
			"category", category,
			"entries", len(entries),
			"pot", pot.Available.String())
		return f.store.ApplyRolloverOnce(ctx, model.RolloverApplication{
			ChainID:          chainID,
			Period:           period,
			SourceEpochStart: window.Start,
			TargetEpochStart: nextStart,
			Category:         category,
			Reason:           model.RolloverNoClearWinner,
			Amount:           pot.Available,
		})
	}

	ranks := model.RanksFor(period)
	if ranks > len(entries) {
		ranks = len(entries)
	}

	slots := make([]model.WinnerSlot, 0, ranks)
	awarded := new(big.Int)
	for i := 0; i < ranks; i++ {
		meta, err := winnerMeta(entries[i])
		if err != nil {
			return err
		}
		slots = append(slots, model.WinnerSlot{
			SlotID: model.SlotID{
				ChainID:    chainID,
				Period:     period,
				EpochStart: window.Start,
				Category:   category,
				Rank:       i + 1,
			},
			EpochEnd:  window.End,
			Recipient: entries[i].Recipient,
			Amount:    pot.RankPayouts[i],
			ExpiresAt: window.End.Add(claimWindow),
			Meta:      meta,
		})
		awarded.Add(awarded, pot.RankPayouts[i])
	}

	// fewer eligible entries than paid ranks: the unfilled rank amounts
	// roll forward in the same write as the winner rows, so a crash in
	// between cannot strand the remainder behind a finalized category
	var rollover *model.RolloverApplication
	leftover := new(big.Int).Sub(pot.Available, awarded)
	if leftover.Sign() > 0 {
		rollover = &model.RolloverApplication{
			ChainID:          chainID,
			Period:           period,
			SourceEpochStart: window.Start,
			TargetEpochStart: nextStart,
			Category:         category,
			Reason:           model.RolloverNoClearWinner,
			Amount:           leftover,
		}
	}

	if err := f.store.InsertWinners(ctx, slots, rollover); err != nil {
		return err
	}

	f.logs.Infow("category finalized",
		"chain_id", chainID,
		"period", period,
		"epoch_start", window.Start,
		"category", category,
		"winners", len(slots),
		"awarded", awarded.String(),
		"leftover", leftover.String())

	return nil
}

func winnerMeta(entry leaderboard.Entry) (string, error) {
	scores := make([]string, 0, len(entry.Score))
	for _, s := range entry.Score {
		scores = append(scores, s.String())
	}
	meta, err := json.Marshal(struct {
		Campaign string   `json:"campaign,omitempty"`
		TxHash   string   `json:"tx_hash,omitempty"`
		Score    []string `json:"score"`
	}{
		Campaign: entry.Campaign,
		TxHash:   entry.TxHash,
		Score:    scores,
	})
	if err != nil {
		return "", fmt.Errorf("encode winner meta: %w", err)
	}
	return string(meta), nil
}
