package leaderboard

import (
	"context"
	"fmt"
	"math/big"

	"memebattles/internal/league/epoch"
	"memebattles/internal/league/model"

	"go.uber.org/zap"
)

// Entry is one ranked leaderboard position. Score is the category's
// comparison vector in comparator precedence order; two entries with equal
// vectors are a dead tie regardless of their list order.
type Entry struct {
	Recipient string
	Campaign  string
	TxHash    string
	Score     []*big.Int
}

// ScoreEquals reports a dead tie between two entries.
func (e Entry) ScoreEquals(other Entry) bool {
	if len(e.Score) != len(other.Score) {
		return false
	}
	for i := range e.Score {
		if e.Score[i].Cmp(other.Score[i]) != 0 {
			return false
		}
	}
	return true
}

// Engine computes per-category rankings from the indexer feeds. All rankings
// share the self-dealing exclusion: a wallet matching a campaign's own
// address, creator or fee recipient is never eligible on that campaign.
type Engine struct {
	logs   *zap.SugaredLogger
	source Source
}

func NewEngine(logs *zap.SugaredLogger, source Source) *Engine {
	return &Engine{
		logs:   logs,
		source: source,
	}
}

// Rank returns the ordered candidate entries for a category over an epoch
// window, best first. An empty slice means no eligible participant.
func (e *Engine) Rank(ctx context.Context, chainID int64, category model.Category, window epoch.Window) ([]Entry, error) {
	switch category {
	case model.CategoryFastestFinish:
		return e.rankFastestFinish(ctx, chainID, window)
	case model.CategoryPerfectRun:
		return e.rankPerfectRun(ctx, chainID, window)
	case model.CategoryBiggestHit:
		return e.rankBiggestHit(ctx, chainID, window)
	case model.CategoryCrowdFavorite:
		return e.rankCrowdFavorite(ctx, chainID, window)
	case model.CategoryTopEarner:
		return e.rankTopEarner(ctx, chainID, window)
	}
	return nil, fmt.Errorf("%w: %q", model.ErrBadCategory, category)
}
