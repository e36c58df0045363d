package finalize

import (
	"context"
	"time"

	"memebattles/internal/league/model"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

//counterfeiter:generate -o fake -fake-name Store . Store
type Store interface {
	CategoryHasWinners(ctx context.Context, chainID int64, period model.Period, epochStart time.Time, category model.Category) (bool, error)
	RolloverEventExists(ctx context.Context, chainID int64, period model.Period, sourceEpochStart time.Time, category model.Category, reason model.RolloverReason) (bool, error)
	InsertWinners(ctx context.Context, slots []model.WinnerSlot, leftover *model.RolloverApplication) error
	ApplyRolloverOnce(ctx context.Context, app model.RolloverApplication) error
	SweepCandidates(ctx context.Context, chainID int64, now time.Time) ([]model.WinnerSlot, error)
	SweepSlot(ctx context.Context, slot model.WinnerSlot, targetEpochStart, now time.Time) (bool, error)
}
