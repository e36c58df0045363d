package claim

import (
	"context"
	"time"

	"memebattles/internal/league/model"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

// Store is the persistence surface the settlement coordinator runs against.
// WithSlotLock serializes the closure on a database advisory lock scoped to
// the winner-slot identity: all precondition checks and writes of one claim
// happen inside it, and claims for different slots never contend.
//
//counterfeiter:generate -o fake -fake-name Store . Store
type Store interface {
	Winner(ctx context.Context, id model.SlotID) (model.WinnerSlot, error)
	EpochWinners(ctx context.Context, chainID int64, period model.Period, epochStart time.Time) ([]model.WinnerSlot, error)
	Payout(ctx context.Context, id model.SlotID) (model.Payout, error)
	InsertPayout(ctx context.Context, payout model.Payout) error
	InsertClaim(ctx context.Context, id model.SlotID, recipient string, at time.Time) error
	IssueNonce(ctx context.Context, chainID int64, address string, ttl time.Duration, now time.Time) (string, error)
	ConsumeNonce(ctx context.Context, chainID int64, address, nonce string, now time.Time) error
	ClaimedUnpaid(ctx context.Context, chainID int64) ([]model.UnpaidSlot, error)
	WithSlotLock(ctx context.Context, id model.SlotID, fn func(tx Store) error) error
}
