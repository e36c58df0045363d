package pool

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"memebattles/internal/league/epoch"
	"memebattles/internal/league/fees"
	"memebattles/internal/league/model"

	"go.uber.org/zap"
)

// Config carries the protocol's fee and budget parameters in basis points.
type Config struct {
	ProtocolFeeBps   int64
	LeagueFeeBps     int64
	WeeklyBudgetBps  int64
	MonthlyBudgetBps int64
}

func (c Config) budgetBps(period model.Period) int64 {
	if period == model.PeriodMonthly {
		return c.MonthlyBudgetBps
	}
	return c.WeeklyBudgetBps
}

// CategoryPot is the prize accounting for one category of an epoch.
type CategoryPot struct {
	Category    model.Category
	Budget      *big.Int
	Rollover    *big.Int
	Paid        *big.Int
	Available   *big.Int
	RankPayouts []*big.Int
}

// Breakdown is the full prize accounting for one (chain, period, epoch).
type Breakdown struct {
	ChainID    int64
	Period     model.Period
	EpochStart time.Time
	RangeEnd   time.Time
	TotalFees  *big.Int
	Budget     *big.Int
	Pots       []CategoryPot
}

// Pot returns the accounting for a single category of the breakdown.
func (b Breakdown) Pot(category model.Category) (CategoryPot, bool) {
	for _, pot := range b.Pots {
		if pot.Category == category {
			return pot, true
		}
	}
	return CategoryPot{}, false
}

// Calculator aggregates League fee revenue over an epoch's trade window and
// splits it into per-category, per-rank prize pots. Recomputation is a full
// trade scan, so results go through an injected TTL cache keyed by the epoch
// identity.
type Calculator struct {
	logs     *zap.SugaredLogger
	source   Source
	inverter *fees.Inverter
	cfg      Config
	cache    *Cache
}

func NewCalculator(logs *zap.SugaredLogger, source Source, inverter *fees.Inverter, cfg Config, cache *Cache) *Calculator {
	return &Calculator{
		logs:     logs,
		source:   source,
		inverter: inverter,
		cfg:      cfg,
		cache:    cache,
	}
}

// Breakdown computes (or returns the cached) prize accounting for an epoch.
func (c *Calculator) Breakdown(ctx context.Context, chainID int64, period model.Period, window epoch.Window) (Breakdown, error) {
	key := cacheKey{ChainID: chainID, Period: period, EpochStart: window.Start.Unix()}
	if cached, ok := c.cache.Get(key); ok {
		return cached, nil
	}

	breakdown, err := c.compute(ctx, chainID, period, window)
	if err != nil {
		return Breakdown{}, err
	}

	c.cache.Set(key, breakdown)
	return breakdown, nil
}

func (c *Calculator) compute(ctx context.Context, chainID int64, period model.Period, window epoch.Window) (Breakdown, error) {
	trades, err := c.source.TradesInWindow(ctx, chainID, window.Start, window.RangeEnd)
	if err != nil {
		return Breakdown{}, fmt.Errorf("load epoch trades: %w", err)
	}

	total := new(big.Int)
	for _, trade := range trades {
		total.Add(total, c.inverter.LeagueFee(trade.NativeAmount, trade.Side))
	}

	budget := new(big.Int).Mul(total, big.NewInt(c.cfg.budgetBps(period)))
	budget.Quo(budget, bpsDenominator)

	categories := model.EligibleCategories(period)
	shares := SplitEven(budget, len(categories))

	pots := make([]CategoryPot, 0, len(categories))
	for i, category := range categories {
		rollover, err := c.source.RolloverAmount(ctx, chainID, period, window.Start, category)
		if err != nil {
			return Breakdown{}, fmt.Errorf("load rollover for %s: %w", category, err)
		}
		paid, err := c.source.PayoutTotal(ctx, chainID, period, window.Start, category)
		if err != nil {
			return Breakdown{}, fmt.Errorf("load payouts for %s: %w", category, err)
		}

		available := new(big.Int).Add(shares[i], rollover)
		available.Sub(available, paid)
		if available.Sign() < 0 {
			available.SetInt64(0)
		}

		pot := CategoryPot{
			Category:  category,
			Budget:    shares[i],
			Rollover:  rollover,
			Paid:      paid,
			Available: available,
		}
		if period == model.PeriodMonthly {
			pot.RankPayouts = SplitRanks(available)
		} else {
			pot.RankPayouts = []*big.Int{new(big.Int).Set(available)}
		}
		pots = append(pots, pot)
	}

	c.logs.Infow("prize pool computed",
		"chain_id", chainID,
		"period", period,
		"epoch_start", window.Start,
		"trades", len(trades),
		"total_fees", total.String(),
		"budget", budget.String())

	return Breakdown{
		ChainID:    chainID,
		Period:     period,
		EpochStart: window.Start,
		RangeEnd:   window.RangeEnd,
		TotalFees:  total,
		Budget:     budget,
		Pots:       pots,
	}, nil
}
