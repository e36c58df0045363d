package leaderboard_test

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"memebattles/internal/league/epoch"
	"memebattles/internal/league/leaderboard"
	"memebattles/internal/league/model"
)

type stubSource struct {
	trades    []model.Trade
	campaigns map[string]model.Campaign
	votes     []model.Vote
}

func (s *stubSource) TradesInWindow(ctx context.Context, chainID int64, start, end time.Time) ([]model.Trade, error) {
	inWindow := make([]model.Trade, 0, len(s.trades))
	for _, trade := range s.trades {
		if !trade.BlockTime.Before(start) && trade.BlockTime.Before(end) {
			inWindow = append(inWindow, trade)
		}
	}
	return inWindow, nil
}

func (s *stubSource) TradesForCampaign(ctx context.Context, chainID int64, campaignAddress string) ([]model.Trade, error) {
	matches := make([]model.Trade, 0)
	for _, trade := range s.trades {
		if trade.CampaignAddress == campaignAddress {
			matches = append(matches, trade)
		}
	}
	return matches, nil
}

func (s *stubSource) CampaignsByChain(ctx context.Context, chainID int64) (map[string]model.Campaign, error) {
	return s.campaigns, nil
}

func (s *stubSource) CampaignsGraduatedBetween(ctx context.Context, chainID int64, start, end time.Time) ([]model.Campaign, error) {
	matches := make([]model.Campaign, 0)
	for _, campaign := range s.campaigns {
		if campaign.Graduated() &&
			!campaign.GraduatedAtChain.Before(start) && campaign.GraduatedAtChain.Before(end) {
			matches = append(matches, campaign)
		}
	}
	return matches, nil
}

func (s *stubSource) ConfirmedVotesInWindow(ctx context.Context, chainID int64, start, end time.Time) ([]model.Vote, error) {
	return s.votes, nil
}

const (
	creatorA = "0xaaaa000000000000000000000000000000000001"
	creatorB = "0xaaaa000000000000000000000000000000000002"
	tokenA   = "0xcccc000000000000000000000000000000000001"
	tokenB   = "0xcccc000000000000000000000000000000000002"
)

var _ = Describe("Engine", func() {
	var (
		source *stubSource
		engine *leaderboard.Engine
		window epoch.Window
		ctx    context.Context

		epochStart time.Time
	)

	wallet := func(i int) string {
		return fmt.Sprintf("0xbbbb%036x", i)
	}

	buy := func(campaign, buyer string, amount int64, block int64, at time.Time) model.Trade {
		return model.Trade{
			ChainID:         8453,
			CampaignAddress: campaign,
			Side:            model.SideBuy,
			Wallet:          strings.ToLower(buyer),
			NativeAmount:    big.NewInt(amount),
			BlockNumber:     block,
			BlockTime:       at,
			TxHash:          fmt.Sprintf("0x%064x", block),
		}
	}
	sell := func(campaign, seller string, amount int64, block int64, at time.Time) model.Trade {
		trade := buy(campaign, seller, amount, block, at)
		trade.Side = model.SideSell
		return trade
	}

	BeforeEach(func() {
		epochStart = time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
		window = epoch.At(model.PeriodWeekly, 1, time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC))
		Expect(window.Start).To(Equal(epochStart))

		source = &stubSource{campaigns: map[string]model.Campaign{}}
		engine = leaderboard.NewEngine(zap.NewNop().Sugar(), source)
		ctx = context.Background()
	})

	Describe("fastest_finish", func() {
		graduatedCampaign := func(token, creator string, createdAt, graduatedAt time.Time, buyers int) model.Campaign {
			campaign := model.Campaign{
				ChainID:          8453,
				CampaignAddress:  token,
				CreatorAddress:   creator,
				CreatedAtChain:   createdAt,
				GraduatedAtChain: graduatedAt,
				CreatedBlock:     1,
				GraduatedBlock:   1000,
			}
			for i := 0; i < buyers; i++ {
				source.trades = append(source.trades,
					buy(token, wallet(i), 10, 100+int64(i), createdAt.Add(time.Minute)))
			}
			return campaign
		}

		It("ranks graduated campaigns by bonding duration ascending", func() {
			source.campaigns[tokenA] = graduatedCampaign(tokenA, creatorA,
				epochStart.Add(1*time.Hour), epochStart.Add(10*time.Hour), 30)
			source.campaigns[tokenB] = graduatedCampaign(tokenB, creatorB,
				epochStart.Add(1*time.Hour), epochStart.Add(5*time.Hour), 30)

			entries, err := engine.Rank(ctx, 8453, model.CategoryFastestFinish, window)

			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(2))
			Expect(entries[0].Campaign).To(Equal(tokenB))
			Expect(entries[0].Recipient).To(Equal(creatorB))
			Expect(entries[0].Score[0].Int64()).To(Equal(int64(4 * 3600)))
		})

		It("excludes campaigns under the unique-buyer threshold", func() {
			source.campaigns[tokenA] = graduatedCampaign(tokenA, creatorA,
				epochStart.Add(1*time.Hour), epochStart.Add(2*time.Hour), 10)

			entries, err := engine.Rank(ctx, 8453, model.CategoryFastestFinish, window)

			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})

		It("does not count creator buys toward the threshold", func() {
			campaign := graduatedCampaign(tokenA, creatorA,
				epochStart.Add(1*time.Hour), epochStart.Add(2*time.Hour), 24)
			for i := 0; i < 10; i++ {
				source.trades = append(source.trades,
					buy(tokenA, creatorA, 10, 500+int64(i), epochStart.Add(90*time.Minute)))
			}
			source.campaigns[tokenA] = campaign

			entries, err := engine.Rank(ctx, 8453, model.CategoryFastestFinish, window)

			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})
	})

	Describe("perfect_run", func() {
		It("excludes campaigns with any bonding-window sell", func() {
			campaign := model.Campaign{
				ChainID:          8453,
				CampaignAddress:  tokenA,
				CreatorAddress:   creatorA,
				CreatedAtChain:   epochStart.Add(time.Hour),
				GraduatedAtChain: epochStart.Add(2 * time.Hour),
				GraduatedBlock:   1000,
			}
			source.campaigns[tokenA] = campaign
			source.trades = append(source.trades,
				buy(tokenA, wallet(1), 100, 100, epochStart.Add(time.Hour)),
				sell(tokenA, wallet(1), 40, 200, epochStart.Add(90*time.Minute)))

			entries, err := engine.Rank(ctx, 8453, model.CategoryPerfectRun, window)

			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})

		It("ignores sells after the graduation block", func() {
			campaign := model.Campaign{
				ChainID:          8453,
				CampaignAddress:  tokenA,
				CreatorAddress:   creatorA,
				CreatedAtChain:   epochStart.Add(time.Hour),
				GraduatedAtChain: epochStart.Add(2 * time.Hour),
				GraduatedBlock:   1000,
			}
			source.campaigns[tokenA] = campaign
			source.trades = append(source.trades,
				buy(tokenA, wallet(1), 100, 100, epochStart.Add(time.Hour)),
				sell(tokenA, wallet(1), 40, 2000, epochStart.Add(3*time.Hour)))

			entries, err := engine.Rank(ctx, 8453, model.CategoryPerfectRun, window)

			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Recipient).To(Equal(creatorA))
			Expect(entries[0].Score[0].Int64()).To(Equal(int64(100)))
		})

		It("orders by buy total, then unique buyers, then duration", func() {
			mk := func(token, creator string, graduatedAfter time.Duration) model.Campaign {
				return model.Campaign{
					ChainID:          8453,
					CampaignAddress:  token,
					CreatorAddress:   creator,
					CreatedAtChain:   epochStart.Add(time.Hour),
					GraduatedAtChain: epochStart.Add(time.Hour + graduatedAfter),
					GraduatedBlock:   1000,
				}
			}
			source.campaigns[tokenA] = mk(tokenA, creatorA, 2*time.Hour)
			source.campaigns[tokenB] = mk(tokenB, creatorB, time.Hour)
			source.trades = append(source.trades,
				buy(tokenA, wallet(1), 500, 100, epochStart.Add(time.Hour)),
				buy(tokenB, wallet(2), 300, 101, epochStart.Add(time.Hour)))

			entries, err := engine.Rank(ctx, 8453, model.CategoryPerfectRun, window)

			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(2))
			Expect(entries[0].Campaign).To(Equal(tokenA))
		})
	})

	Describe("biggest_hit", func() {
		It("ranks buy trades by amount descending with txHash tiebreak", func() {
			source.trades = append(source.trades,
				buy(tokenA, wallet(1), 100, 10, epochStart.Add(time.Hour)),
				buy(tokenA, wallet(2), 300, 11, epochStart.Add(time.Hour)),
				sell(tokenA, wallet(3), 900, 12, epochStart.Add(time.Hour)))

			entries, err := engine.Rank(ctx, 8453, model.CategoryBiggestHit, window)

			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(2))
			Expect(entries[0].Recipient).To(Equal(wallet(2)))
			Expect(entries[0].Score[0].Int64()).To(Equal(int64(300)))
		})

		It("excludes insider buys and post-graduation buys", func() {
			source.campaigns[tokenA] = model.Campaign{
				ChainID:          8453,
				CampaignAddress:  tokenA,
				CreatorAddress:   creatorA,
				GraduatedAtChain: epochStart.Add(time.Hour),
				GraduatedBlock:   100,
			}
			source.trades = append(source.trades,
				buy(tokenA, creatorA, 900, 50, epochStart.Add(time.Hour)),
				buy(tokenA, wallet(1), 100, 60, epochStart.Add(time.Hour)),
				buy(tokenA, wallet(2), 800, 200, epochStart.Add(2*time.Hour)))

			entries, err := engine.Rank(ctx, 8453, model.CategoryBiggestHit, window)

			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Recipient).To(Equal(wallet(1)))
		})

		It("ignores trades outside the window", func() {
			source.trades = append(source.trades,
				buy(tokenA, wallet(1), 100, 10, epochStart.Add(-time.Hour)),
				buy(tokenA, wallet(2), 50, 11, epochStart.Add(time.Hour)))

			entries, err := engine.Rank(ctx, 8453, model.CategoryBiggestHit, window)

			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Recipient).To(Equal(wallet(2)))
		})
	})

	Describe("crowd_favorite", func() {
		It("ranks campaigns by confirmed vote count with unique-voter tiebreak", func() {
			source.campaigns[tokenA] = model.Campaign{ChainID: 8453, CampaignAddress: tokenA, CreatorAddress: creatorA}
			source.campaigns[tokenB] = model.Campaign{ChainID: 8453, CampaignAddress: tokenB, CreatorAddress: creatorB}
			source.votes = []model.Vote{
				{CampaignAddress: tokenA, VoterAddress: wallet(1)},
				{CampaignAddress: tokenA, VoterAddress: wallet(1)},
				{CampaignAddress: tokenB, VoterAddress: wallet(2)},
				{CampaignAddress: tokenB, VoterAddress: wallet(3)},
			}

			entries, err := engine.Rank(ctx, 8453, model.CategoryCrowdFavorite, window)

			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(2))
			// both have two votes; tokenB has more unique voters
			Expect(entries[0].Campaign).To(Equal(tokenB))
			Expect(entries[0].Recipient).To(Equal(creatorB))
		})

		It("skips votes for unknown campaigns", func() {
			source.votes = []model.Vote{
				{CampaignAddress: tokenA, VoterAddress: wallet(1)},
			}

			entries, err := engine.Rank(ctx, 8453, model.CategoryCrowdFavorite, window)

			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})
	})

	Describe("top_earner", func() {
		It("ranks wallets by net realized flow, positive only", func() {
			source.trades = append(source.trades,
				buy(tokenA, wallet(1), 100, 10, epochStart.Add(time.Hour)),
				sell(tokenA, wallet(1), 400, 11, epochStart.Add(2*time.Hour)),
				buy(tokenA, wallet(2), 500, 12, epochStart.Add(time.Hour)),
				sell(tokenA, wallet(2), 200, 13, epochStart.Add(2*time.Hour)))

			entries, err := engine.Rank(ctx, 8453, model.CategoryTopEarner, window)

			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Recipient).To(Equal(wallet(1)))
			Expect(entries[0].Score[0].Int64()).To(Equal(int64(300)))
		})

		It("skips insider trades entirely", func() {
			source.campaigns[tokenA] = model.Campaign{
				ChainID:         8453,
				CampaignAddress: tokenA,
				CreatorAddress:  creatorA,
			}
			source.trades = append(source.trades,
				sell(tokenA, creatorA, 900, 10, epochStart.Add(time.Hour)),
				sell(tokenA, wallet(1), 100, 11, epochStart.Add(time.Hour)))

			entries, err := engine.Rank(ctx, 8453, model.CategoryTopEarner, window)

			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Recipient).To(Equal(wallet(1)))
		})
	})
})
