package leaderboard

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"memebattles/internal/league/epoch"
	"memebattles/internal/league/model"
)

// minUniqueBuyers is the fastest_finish eligibility threshold.
const minUniqueBuyers = 25

type bondingStats struct {
	uniqueBuyers int
	buyTotal     *big.Int
	sells        int
}

func (e *Engine) bondingWindowStats(ctx context.Context, campaign model.Campaign) (bondingStats, error) {
	trades, err := e.source.TradesForCampaign(ctx, campaign.ChainID, campaign.CampaignAddress)
	if err != nil {
		return bondingStats{}, fmt.Errorf("load campaign trades: %w", err)
	}

	buyers := make(map[string]struct{})
	stats := bondingStats{buyTotal: new(big.Int)}
	for _, trade := range trades {
		if campaign.GraduatedBlock > 0 && trade.BlockNumber > campaign.GraduatedBlock {
			continue
		}
		if trade.Side == model.SideSell {
			stats.sells++
			continue
		}
		if trade.Wallet == campaign.CreatorAddress {
			continue
		}
		buyers[trade.Wallet] = struct{}{}
		stats.buyTotal.Add(stats.buyTotal, trade.NativeAmount)
	}
	stats.uniqueBuyers = len(buyers)
	return stats, nil
}

// rankFastestFinish ranks campaigns that graduated within the epoch by
// bonding duration ascending. Campaigns under the unique-buyer threshold are
// not eligible; the winner recipient is the creator.
func (e *Engine) rankFastestFinish(ctx context.Context, chainID int64, window epoch.Window) ([]Entry, error) {
	graduated, err := e.source.CampaignsGraduatedBetween(ctx, chainID, window.Start, window.RangeEnd)
	if err != nil {
		return nil, err
	}

	type candidate struct {
		entry    Entry
		duration int64
	}
	candidates := make([]candidate, 0, len(graduated))
	for _, campaign := range graduated {
		stats, err := e.bondingWindowStats(ctx, campaign)
		if err != nil {
			return nil, err
		}
		if stats.uniqueBuyers < minUniqueBuyers {
			continue
		}

		duration := int64(campaign.GraduatedAtChain.Sub(campaign.CreatedAtChain).Seconds())
		candidates = append(candidates, candidate{
			entry: Entry{
				Recipient: campaign.CreatorAddress,
				Campaign:  campaign.CampaignAddress,
				Score:     []*big.Int{big.NewInt(duration)},
			},
			duration: duration,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].duration != candidates[j].duration {
			return candidates[i].duration < candidates[j].duration
		}
		return candidates[i].entry.Campaign < candidates[j].entry.Campaign
	})

	entries := make([]Entry, 0, len(candidates))
	for _, c := range candidates {
		entries = append(entries, c.entry)
	}
	return entries, nil
}

// rankPerfectRun ranks campaigns that graduated within the epoch with zero
// sell trades during their bonding window. Full ordering: buy total desc,
// unique buyers desc, duration asc.
func (e *Engine) rankPerfectRun(ctx context.Context, chainID int64, window epoch.Window) ([]Entry, error) {
	graduated, err := e.source.CampaignsGraduatedBetween(ctx, chainID, window.Start, window.RangeEnd)
	if err != nil {
		return nil, err
	}

	type candidate struct {
		entry        Entry
		buyTotal     *big.Int
		uniqueBuyers int64
		duration     int64
	}
	candidates := make([]candidate, 0, len(graduated))
	for _, campaign := range graduated {
		stats, err := e.bondingWindowStats(ctx, campaign)
		if err != nil {
			return nil, err
		}
		if stats.sells > 0 {
			continue
		}

		duration := int64(campaign.GraduatedAtChain.Sub(campaign.CreatedAtChain).Seconds())
		candidates = append(candidates, candidate{
			entry: Entry{
				Recipient: campaign.CreatorAddress,
				Campaign:  campaign.CampaignAddress,
				Score: []*big.Int{
					stats.buyTotal,
					big.NewInt(int64(stats.uniqueBuyers)),
					big.NewInt(duration),
				},
			},
			buyTotal:     stats.buyTotal,
			uniqueBuyers: int64(stats.uniqueBuyers),
			duration:     duration,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if cmp := candidates[i].buyTotal.Cmp(candidates[j].buyTotal); cmp != 0 {
			return cmp > 0
		}
		if candidates[i].uniqueBuyers != candidates[j].uniqueBuyers {
			return candidates[i].uniqueBuyers > candidates[j].uniqueBuyers
		}
		if candidates[i].duration != candidates[j].duration {
			return candidates[i].duration < candidates[j].duration
		}
		return candidates[i].entry.Campaign < candidates[j].entry.Campaign
	})

	entries := make([]Entry, 0, len(candidates))
	for _, c := range candidates {
		entries = append(entries, c.entry)
	}
	return entries, nil
}

// rankBiggestHit ranks individual buy trades within the epoch by net amount
// descending. Trades after a campaign's graduation block and trades by
// self-dealing wallets are excluded; the winner recipient is the buyer.
func (e *Engine) rankBiggestHit(ctx context.Context, chainID int64, window epoch.Window) ([]Entry, error) {
	trades, err := e.source.TradesInWindow(ctx, chainID, window.Start, window.RangeEnd)
	if err != nil {
		return nil, err
	}
	campaigns, err := e.source.CampaignsByChain(ctx, chainID)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0)
	for _, trade := range trades {
		if trade.Side != model.SideBuy {
			continue
		}
		campaign, known := campaigns[trade.CampaignAddress]
		if known {
			if campaign.IsInsider(trade.Wallet) {
				continue
			}
			if campaign.GraduatedBlock > 0 && trade.BlockNumber > campaign.GraduatedBlock {
				continue
			}
		}
		entries = append(entries, Entry{
			Recipient: trade.Wallet,
			Campaign:  trade.CampaignAddress,
			TxHash:    trade.TxHash,
			Score:     []*big.Int{trade.NativeAmount},
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if cmp := entries[i].Score[0].Cmp(entries[j].Score[0]); cmp != 0 {
			return cmp > 0
		}
		return entries[i].TxHash < entries[j].TxHash
	})
	return entries, nil
}

// rankCrowdFavorite ranks campaigns by confirmed vote count within the
// epoch, tie-broken by unique voter count descending. Winner recipient is
// the creator.
func (e *Engine) rankCrowdFavorite(ctx context.Context, chainID int64, window epoch.Window) ([]Entry, error) {
	votes, err := e.source.ConfirmedVotesInWindow(ctx, chainID, window.Start, window.RangeEnd)
	if err != nil {
		return nil, err
	}
	campaigns, err := e.source.CampaignsByChain(ctx, chainID)
	if err != nil {
		return nil, err
	}

	type tally struct {
		count  int64
		voters map[string]struct{}
	}
	tallies := make(map[string]*tally)
	for _, vote := range votes {
		t, ok := tallies[vote.CampaignAddress]
		if !ok {
			t = &tally{voters: make(map[string]struct{})}
			tallies[vote.CampaignAddress] = t
		}
		t.count++
		t.voters[vote.VoterAddress] = struct{}{}
	}

	entries := make([]Entry, 0, len(tallies))
	for address, t := range tallies {
		campaign, known := campaigns[address]
		if !known {
			continue
		}
		entries = append(entries, Entry{
			Recipient: campaign.CreatorAddress,
			Campaign:  address,
			Score: []*big.Int{
				big.NewInt(t.count),
				big.NewInt(int64(len(t.voters))),
			},
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if cmp := entries[i].Score[0].Cmp(entries[j].Score[0]); cmp != 0 {
			return cmp > 0
		}
		if cmp := entries[i].Score[1].Cmp(entries[j].Score[1]); cmp != 0 {
			return cmp > 0
		}
		return entries[i].Campaign < entries[j].Campaign
	})
	return entries, nil
}

// rankTopEarner ranks wallets by net realized flow (sells minus buys) over
// the epoch. Trades where the wallet is a self-dealing insider of the traded
// campaign do not count; only positive net flows are eligible.
func (e *Engine) rankTopEarner(ctx context.Context, chainID int64, window epoch.Window) ([]Entry, error) {
	trades, err := e.source.TradesInWindow(ctx, chainID, window.Start, window.RangeEnd)
	if err != nil {
		return nil, err
	}
	campaigns, err := e.source.CampaignsByChain(ctx, chainID)
	if err != nil {
		return nil, err
	}

	flows := make(map[string]*big.Int)
	for _, trade := range trades {
		if campaign, known := campaigns[trade.CampaignAddress]; known && campaign.IsInsider(trade.Wallet) {
			continue
		}
		flow, ok := flows[trade.Wallet]
		if !ok {
			flow = new(big.Int)
			flows[trade.Wallet] = flow
		}
		if trade.Side == model.SideSell {
			flow.Add(flow, trade.NativeAmount)
		} else {
			flow.Sub(flow, trade.NativeAmount)
		}
	}

	entries := make([]Entry, 0, len(flows))
	for wallet, flow := range flows {
		if flow.Sign() <= 0 {
			continue
		}
		entries = append(entries, Entry{
			Recipient: wallet,
			Score:     []*big.Int{flow},
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if cmp := entries[i].Score[0].Cmp(entries[j].Score[0]); cmp != 0 {
			return cmp > 0
		}
		return entries[i].Recipient < entries[j].Recipient
	})
	return entries, nil
}
