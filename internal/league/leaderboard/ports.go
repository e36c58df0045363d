package leaderboard

import (
	"context"
	"time"

	"memebattles/internal/league/model"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

//counterfeiter:generate -o fake -fake-name Source . Source
type Source interface {
	TradesInWindow(ctx context.Context, chainID int64, start, end time.Time) ([]model.Trade, error)
	TradesForCampaign(ctx context.Context, chainID int64, campaignAddress string) ([]model.Trade, error)
	CampaignsByChain(ctx context.Context, chainID int64) (map[string]model.Campaign, error)
	CampaignsGraduatedBetween(ctx context.Context, chainID int64, start, end time.Time) ([]model.Campaign, error)
	ConfirmedVotesInWindow(ctx context.Context, chainID int64, start, end time.Time) ([]model.Vote, error)
}
