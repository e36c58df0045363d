package model

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
)

var ErrBadPeriod = errors.New("unknown league period")
var ErrBadCategory = errors.New("unknown league category")
var ErrBadAmount = errors.New("malformed raw amount")

var ErrSlotNotFound = errors.New("winner slot not found")
var ErrPayoutNotFound = errors.New("payout not found")
var ErrNonceNotFound = errors.New("nonce not found")
var ErrNonceExpired = errors.New("nonce expired")
var ErrNonceUsed = errors.New("nonce already used")

// Period is the competition cadence of an epoch.
type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// Code returns the numeric period encoding committed into Merkle epoch ids.
func (p Period) Code() uint8 {
	if p == PeriodMonthly {
		return 2
	}
	return 1
}

func ParsePeriod(raw string) (Period, error) {
	switch Period(raw) {
	case PeriodWeekly:
		return PeriodWeekly, nil
	case PeriodMonthly:
		return PeriodMonthly, nil
	}
	return "", fmt.Errorf("%w: %q", ErrBadPeriod, raw)
}

// Category identifies one prize competition within an epoch.
type Category string

const (
	CategoryFastestFinish Category = "fastest_finish"
	CategoryPerfectRun    Category = "perfect_run"
	CategoryBiggestHit    Category = "biggest_hit"
	CategoryCrowdFavorite Category = "crowd_favorite"
	CategoryTopEarner     Category = "top_earner"
)

func ParseCategory(raw string) (Category, error) {
	switch Category(raw) {
	case CategoryFastestFinish, CategoryPerfectRun, CategoryBiggestHit,
		CategoryCrowdFavorite, CategoryTopEarner:
		return Category(raw), nil
	}
	return "", fmt.Errorf("%w: %q", ErrBadCategory, raw)
}

// EligibleCategories returns the prize categories of a period in their
// canonical, deterministic order. perfect_run runs monthly only.
func EligibleCategories(period Period) []Category {
	if period == PeriodMonthly {
		return []Category{
			CategoryFastestFinish,
			CategoryPerfectRun,
			CategoryBiggestHit,
			CategoryCrowdFavorite,
			CategoryTopEarner,
		}
	}
	return []Category{
		CategoryFastestFinish,
		CategoryBiggestHit,
		CategoryCrowdFavorite,
		CategoryTopEarner,
	}
}

// RanksFor returns how many winner ranks a period pays out.
func RanksFor(period Period) int {
	if period == PeriodMonthly {
		return 5
	}
	return 1
}

// TradeSide is the direction of a bonding-curve trade.
type TradeSide string

const (
	SideBuy  TradeSide = "buy"
	SideSell TradeSide = "sell"
)

// Trade is one bonding-curve trade as materialized by the indexer.
// NativeAmount is the net, post-fee amount in wei.
type Trade struct {
	ChainID         int64
	CampaignAddress string
	Side            TradeSide
	Wallet          string
	NativeAmount    *big.Int
	BlockNumber     int64
	BlockTime       time.Time
	TxHash          string
	LogIndex        int64
}

// Campaign is a launched token with its self-dealing address set and
// bonding window bounds. Graduated fields are zero-valued until graduation.
type Campaign struct {
	ChainID             int64
	CampaignAddress     string
	CreatorAddress      string
	FeeRecipientAddress string
	CreatedAtChain      time.Time
	GraduatedAtChain    time.Time
	CreatedBlock        int64
	GraduatedBlock      int64
}

// Graduated reports whether the campaign has completed its bonding curve.
func (c Campaign) Graduated() bool {
	return !c.GraduatedAtChain.IsZero()
}

// IsInsider reports whether a wallet is excluded from eligibility on this
// campaign (creator, campaign or fee-recipient self-dealing).
func (c Campaign) IsInsider(wallet string) bool {
	w := strings.ToLower(wallet)
	return w == strings.ToLower(c.CampaignAddress) ||
		w == strings.ToLower(c.CreatorAddress) ||
		w == strings.ToLower(c.FeeRecipientAddress)
}

// Vote is one confirmed crowd-favorite vote.
type Vote struct {
	ChainID         int64
	CampaignAddress string
	VoterAddress    string
	Amount          *big.Int
	BlockTimestamp  time.Time
}

// SlotID is the canonical winner-slot identity used as the primary key of
// winners, claims and payouts and as the advisory lock scope.
type SlotID struct {
	ChainID    int64
	Period     Period
	EpochStart time.Time
	Category   Category
	Rank       int
}

// String renders the identity as a stable tuple string. Used for advisory
// lock hashing; never parsed back.
func (id SlotID) String() string {
	return fmt.Sprintf("%d|%s|%d|%s|%d",
		id.ChainID, id.Period, id.EpochStart.UTC().Unix(), id.Category, id.Rank)
}

// WinnerSlot is one finalized prize slot. Immutable once inserted, except
// for the sweep marker set when an expired unclaimed slot's pot rolls over.
type WinnerSlot struct {
	SlotID
	EpochEnd  time.Time
	Recipient string
	Amount    *big.Int
	ExpiresAt time.Time
	SweptAt   time.Time
	Meta      string
}

// Swept reports whether the slot's pot was reclaimed by the expiry sweep.
func (w WinnerSlot) Swept() bool {
	return !w.SweptAt.IsZero()
}

// Payout records final settlement of a winner slot. Its existence is the
// single source of truth for "paid".
type Payout struct {
	SlotID
	TxHash    string
	Amount    *big.Int
	Recipient string
	PaidAt    time.Time
}

// UnpaidSlot is one claimed-but-unpaid winner slot in the operator export.
type UnpaidSlot struct {
	SlotID
	EpochEnd  time.Time
	Recipient string
	Amount    *big.Int
	ClaimedAt time.Time
}

// RolloverReason tags why a pot moved to a later epoch.
type RolloverReason string

const (
	RolloverExpiredUnclaimed RolloverReason = "expired_unclaimed"
	RolloverNoClearWinner    RolloverReason = "no_clear_winner"
)

// RolloverApplication moves a pot from a source epoch into a target epoch's
// rollover ledger, tagged with the reason. For no-winner events the
// (source epoch, category, reason) tuple is an at-most-once idempotency key.
type RolloverApplication struct {
	ChainID          int64
	Period           Period
	SourceEpochStart time.Time
	TargetEpochStart time.Time
	Category         Category
	Reason           RolloverReason
	Amount           *big.Int
}

// ParseAmount converts a decimal raw-amount column into a big integer.
func ParseAmount(raw string) (*big.Int, error) {
	if raw == "" {
		return new(big.Int), nil
	}
	n, ok := new(big.Int).SetString(raw, 10)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q", ErrBadAmount, raw)
	}
	return n, nil
}
