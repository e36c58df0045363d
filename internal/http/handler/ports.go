package handler

import (
	"context"
	"net/http"
	"time"

	"memebattles/internal/league/claim"
	"memebattles/internal/league/epoch"
	"memebattles/internal/league/leaderboard"
	"memebattles/internal/league/model"
	"memebattles/internal/league/pool"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

//counterfeiter:generate -o fake -fake-name ClaimService . ClaimService
type ClaimService interface {
	Nonce(ctx context.Context, chainID int64, address string) (string, time.Time, error)
	Claim(ctx context.Context, req claim.Request) (claim.Result, error)
	Record(ctx context.Context, req claim.Request) (claim.Result, error)
	RecordOperator(ctx context.Context, id model.SlotID, txHash string) (claim.Result, error)
	Unpaid(ctx context.Context, chainID int64) (claim.Report, error)
}

//counterfeiter:generate -o fake -fake-name PoolService . PoolService
type PoolService interface {
	Breakdown(ctx context.Context, chainID int64, period model.Period, window epoch.Window) (pool.Breakdown, error)
}

//counterfeiter:generate -o fake -fake-name BoardService . BoardService
type BoardService interface {
	Rank(ctx context.Context, chainID int64, category model.Category, window epoch.Window) ([]leaderboard.Entry, error)
}

//counterfeiter:generate -o fake -fake-name OperatorService . OperatorService
type OperatorService interface {
	Authenticate(ctx context.Context, name, password string) (string, error)
	Authorize(token string) (string, error)
}

//counterfeiter:generate -o fake -fake-name RequestValidator . RequestValidator
type RequestValidator interface {
	DecodeAndValidateJSONPayload(r *http.Request, object any) error
}
