package handler

import (
	"time"

	"memebattles/internal/league/claim"
	"memebattles/internal/league/epoch"
	"memebattles/internal/league/leaderboard"
	"memebattles/internal/league/merkle"
	"memebattles/internal/league/model"
	"memebattles/internal/league/pool"
)

// View types render big integer amounts as decimal strings and timestamps
// as RFC3339 so precision survives JSON.

type epochView struct {
	ChainID    int64    `json:"chainId"`
	Period     string   `json:"period"`
	EpochID    string   `json:"epochId"`
	EpochStart string   `json:"epochStart"`
	EpochEnd   string   `json:"epochEnd"`
	Live       bool     `json:"live"`
	Categories []string `json:"categories"`
}

func toEpochView(chainID int64, period model.Period, window epoch.Window) epochView {
	categories := model.EligibleCategories(period)
	names := make([]string, 0, len(categories))
	for _, category := range categories {
		names = append(names, string(category))
	}
	return epochView{
		ChainID:    chainID,
		Period:     string(period),
		EpochID:    merkle.EpochID(chainID, period, window.Start).Hex(),
		EpochStart: window.Start.Format(time.RFC3339),
		EpochEnd:   window.End.Format(time.RFC3339),
		Live:       window.IsLive,
		Categories: names,
	}
}

type potView struct {
	Category    string   `json:"category"`
	Budget      string   `json:"budget"`
	Rollover    string   `json:"rollover"`
	Paid        string   `json:"paid"`
	Available   string   `json:"available"`
	RankPayouts []string `json:"rankPayouts"`
}

type poolView struct {
	ChainID    int64     `json:"chainId"`
	Period     string    `json:"period"`
	EpochStart string    `json:"epochStart"`
	RangeEnd   string    `json:"rangeEnd"`
	TotalFees  string    `json:"totalFees"`
	Budget     string    `json:"budget"`
	Pots       []potView `json:"pots"`
}

func toPoolView(b pool.Breakdown) poolView {
	pots := make([]potView, 0, len(b.Pots))
	for _, pot := range b.Pots {
		payouts := make([]string, 0, len(pot.RankPayouts))
		for _, amount := range pot.RankPayouts {
			payouts = append(payouts, amount.String())
		}
		pots = append(pots, potView{
			Category:    string(pot.Category),
			Budget:      pot.Budget.String(),
			Rollover:    pot.Rollover.String(),
			Paid:        pot.Paid.String(),
			Available:   pot.Available.String(),
			RankPayouts: payouts,
		})
	}
	return poolView{
		ChainID:    b.ChainID,
		Period:     string(b.Period),
		EpochStart: b.EpochStart.Format(time.RFC3339),
		RangeEnd:   b.RangeEnd.Format(time.RFC3339),
		TotalFees:  b.TotalFees.String(),
		Budget:     b.Budget.String(),
		Pots:       pots,
	}
}

type entryView struct {
	Rank      int      `json:"rank"`
	Recipient string   `json:"recipient"`
	Campaign  string   `json:"campaign,omitempty"`
	TxHash    string   `json:"txHash,omitempty"`
	Score     []string `json:"score"`
}

func toEntryViews(entries []leaderboard.Entry) []entryView {
	views := make([]entryView, 0, len(entries))
	for i, entry := range entries {
		score := make([]string, 0, len(entry.Score))
		for _, part := range entry.Score {
			score = append(score, part.String())
		}
		views = append(views, entryView{
			Rank:      i + 1,
			Recipient: entry.Recipient,
			Campaign:  entry.Campaign,
			TxHash:    entry.TxHash,
			Score:     score,
		})
	}
	return views
}

type proofView struct {
	EpochID      string   `json:"epochId"`
	CategoryHash string   `json:"categoryHash"`
	Root         string   `json:"root"`
	LeafIndex    int      `json:"leafIndex"`
	Siblings     []string `json:"siblings"`
	TotalAmount  string   `json:"totalAmount"`
	VaultAddress string   `json:"vaultAddress"`
}

type claimResultView struct {
	Status     string     `json:"status"`
	ChainID    int64      `json:"chainId"`
	Period     string     `json:"period"`
	EpochStart string     `json:"epochStart"`
	Category   string     `json:"category"`
	Rank       int        `json:"rank"`
	Recipient  string     `json:"recipient"`
	Amount     string     `json:"amount"`
	TxHash     string     `json:"txHash,omitempty"`
	PaidAt     *time.Time `json:"paidAt,omitempty"`
	Proof      *proofView `json:"proof,omitempty"`
}

func toClaimResultView(res claim.Result) claimResultView {
	view := claimResultView{
		Status:     string(res.Status),
		ChainID:    res.Slot.ChainID,
		Period:     string(res.Slot.Period),
		EpochStart: res.Slot.EpochStart.Format(time.RFC3339),
		Category:   string(res.Slot.Category),
		Rank:       res.Slot.Rank,
		Recipient:  res.Recipient,
		Amount:     res.Amount.String(),
		TxHash:     res.TxHash,
	}
	if !res.PaidAt.IsZero() {
		paidAt := res.PaidAt
		view.PaidAt = &paidAt
	}
	if res.Proof != nil {
		view.Proof = &proofView{
			EpochID:      res.Proof.EpochID,
			CategoryHash: res.Proof.CategoryHash,
			Root:         res.Proof.Root,
			LeafIndex:    res.Proof.LeafIndex,
			Siblings:     res.Proof.Siblings,
			TotalAmount:  res.Proof.TotalAmount.String(),
			VaultAddress: res.Proof.VaultAddress,
		}
	}
	return view
}

type unpaidSlotView struct {
	Period     string `json:"period"`
	EpochStart string `json:"epochStart"`
	Category   string `json:"category"`
	Rank       int    `json:"rank"`
	Recipient  string `json:"recipient"`
	Amount     string `json:"amount"`
	ClaimedAt  string `json:"claimedAt"`
}

type epochGroupView struct {
	Period     string           `json:"period"`
	EpochStart string           `json:"epochStart"`
	TotalOwed  string           `json:"totalOwed"`
	Slots      []unpaidSlotView `json:"slots"`
}

type reportView struct {
	ChainID      int64            `json:"chainId"`
	VaultAddress string           `json:"vaultAddress"`
	VaultBalance string           `json:"vaultBalance"`
	TotalOwed    string           `json:"totalOwed"`
	Shortfall    bool             `json:"shortfall"`
	Epochs       []epochGroupView `json:"epochs"`
}

func toReportView(report claim.Report) reportView {
	groups := make([]epochGroupView, 0, len(report.Epochs))
	for _, group := range report.Epochs {
		slots := make([]unpaidSlotView, 0, len(group.Slots))
		for _, slot := range group.Slots {
			slots = append(slots, unpaidSlotView{
				Period:     string(slot.Period),
				EpochStart: slot.EpochStart.Format(time.RFC3339),
				Category:   string(slot.Category),
				Rank:       slot.Rank,
				Recipient:  slot.Recipient,
				Amount:     slot.Amount.String(),
				ClaimedAt:  slot.ClaimedAt.Format(time.RFC3339),
			})
		}
		groups = append(groups, epochGroupView{
			Period:     string(group.Period),
			EpochStart: group.EpochStart.Format(time.RFC3339),
			TotalOwed:  group.TotalOwed.String(),
			Slots:      slots,
		})
	}
	return reportView{
		ChainID:      report.ChainID,
		VaultAddress: report.VaultAddress,
		VaultBalance: report.VaultBalance.String(),
		TotalOwed:    report.TotalOwed.String(),
		Shortfall:    report.Shortfall,
		Epochs:       groups,
	}
}
