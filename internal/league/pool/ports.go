package pool

import (
	"context"
	"math/big"
	"time"

	"memebattles/internal/league/model"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

//counterfeiter:generate -o fake -fake-name Source . Source
type Source interface {
	TradesInWindow(ctx context.Context, chainID int64, start, end time.Time) ([]model.Trade, error)
	RolloverAmount(ctx context.Context, chainID int64, period model.Period, epochStart time.Time, category model.Category) (*big.Int, error)
	PayoutTotal(ctx context.Context, chainID int64, period model.Period, epochStart time.Time, category model.Category) (*big.Int, error)
}
