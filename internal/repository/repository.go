package repository

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"memebattles/internal/db"
	"memebattles/internal/league/claim"
	"memebattles/internal/league/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const undefinedTableCode = "42P01"

// LeagueRepository is the typed boundary between the League core and
// Postgres. Raw rows never leave this package: every read converts into the
// record structs of the model package.
type LeagueRepository struct {
	db   *gorm.DB
	logs *zap.SugaredLogger
}

func NewLeagueRepository(pg *db.PostgresDB, logs *zap.SugaredLogger) *LeagueRepository {
	return &LeagueRepository{
		db:   pg.Gorm(),
		logs: logs,
	}
}

func (r *LeagueRepository) MigrateAndSeed() error {
	err := r.db.AutoMigrate(
		&Winner{},
		&Claim{},
		&Payout{},
		&Rollover{},
		&RolloverEvent{},
		&ClaimNonce{},
		&Operator{},
	)
	if err != nil {
		return fmt.Errorf("migrate table(s): %w", err)
	}

	operators := []Operator{
		{
			ID:   uuid.NewString(),
			Name: "treasury-ops",
			// bcrypt hash of the bootstrap password, rotated on first login
			PasswordHash: "$2a$10$7PrikY/17DYiRAA6JlaGl.yo26gwhTT53ESuovxGWvWJ4HhvGI/GK",
		},
	}

	var count int64
	if err := r.db.Model(&Operator{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count operators: %w", err)
	}
	if count == 0 {
		if err := r.db.Create(&operators).Error; err != nil {
			return fmt.Errorf("seed operators: %w", err)
		}
	}

	return nil
}

// WithSlotLock runs fn inside one transaction holding the advisory lock for
// the slot identity. The lock is released on commit or rollback.
func (r *LeagueRepository) WithSlotLock(ctx context.Context, id model.SlotID, fn func(tx claim.Store) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", db.LockKey(id.String())).Error; err != nil {
			return fmt.Errorf("acquire slot lock: %w", err)
		}
		return fn(&LeagueRepository{db: tx, logs: r.logs})
	})
}

// --- indexer feeds (read-only) ---

func (r *LeagueRepository) TradesInWindow(ctx context.Context, chainID int64, start, end time.Time) ([]model.Trade, error) {
	var rows []Trade
	err := r.db.WithContext(ctx).
		Where("chain_id = ? AND block_time >= ? AND block_time < ?", chainID, start, end).
		Order("block_number asc, log_index asc").
		Find(&rows).Error
	if err != nil {
		if isUndefinedTable(err) {
			r.logs.Warnw("trade table not migrated yet, treating as empty", "chain_id", chainID)
			return nil, nil
		}
		return nil, fmt.Errorf("get trades in window: %w", err)
	}

	trades := make([]model.Trade, 0, len(rows))
	for _, row := range rows {
		trade, err := tradeToModel(row)
		if err != nil {
			return nil, err
		}
		trades = append(trades, trade)
	}
	return trades, nil
}

func (r *LeagueRepository) TradesForCampaign(ctx context.Context, chainID int64, campaignAddress string) ([]model.Trade, error) {
	var rows []Trade
	err := r.db.WithContext(ctx).
		Where("chain_id = ? AND campaign_address = ?", chainID, strings.ToLower(campaignAddress)).
		Order("block_number asc, log_index asc").
		Find(&rows).Error
	if err != nil {
		if isUndefinedTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get campaign trades: %w", err)
	}

	trades := make([]model.Trade, 0, len(rows))
	for _, row := range rows {
		trade, err := tradeToModel(row)
		if err != nil {
			return nil, err
		}
		trades = append(trades, trade)
	}
	return trades, nil
}

func (r *LeagueRepository) CampaignsByChain(ctx context.Context, chainID int64) (map[string]model.Campaign, error) {
	var rows []Campaign
	err := r.db.WithContext(ctx).Where("chain_id = ?", chainID).Find(&rows).Error
	if err != nil {
		if isUndefinedTable(err) {
			r.logs.Warnw("campaign table not migrated yet, treating as empty", "chain_id", chainID)
			return map[string]model.Campaign{}, nil
		}
		return nil, fmt.Errorf("get campaigns: %w", err)
	}

	campaigns := make(map[string]model.Campaign, len(rows))
	for _, row := range rows {
		campaigns[strings.ToLower(row.CampaignAddress)] = campaignToModel(row)
	}
	return campaigns, nil
}

func (r *LeagueRepository) CampaignsGraduatedBetween(ctx context.Context, chainID int64, start, end time.Time) ([]model.Campaign, error) {
	var rows []Campaign
	err := r.db.WithContext(ctx).
		Where("chain_id = ? AND graduated_at_chain >= ? AND graduated_at_chain < ?", chainID, start, end).
		Find(&rows).Error
	if err != nil {
		if isUndefinedTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get graduated campaigns: %w", err)
	}

	campaigns := make([]model.Campaign, 0, len(rows))
	for _, row := range rows {
		campaigns = append(campaigns, campaignToModel(row))
	}
	return campaigns, nil
}

func (r *LeagueRepository) ConfirmedVotesInWindow(ctx context.Context, chainID int64, start, end time.Time) ([]model.Vote, error) {
	var rows []Vote
	err := r.db.WithContext(ctx).
		Where("chain_id = ? AND status = ? AND block_timestamp >= ? AND block_timestamp < ?",
			chainID, "confirmed", start, end).
		Find(&rows).Error
	if err != nil {
		if isUndefinedTable(err) {
			r.logs.Warnw("vote table not migrated yet, treating as empty", "chain_id", chainID)
			return nil, nil
		}
		return nil, fmt.Errorf("get confirmed votes: %w", err)
	}

	votes := make([]model.Vote, 0, len(rows))
	for _, row := range rows {
		amount, err := model.ParseAmount(row.AmountRaw)
		if err != nil {
			return nil, fmt.Errorf("vote amount: %w", err)
		}
		votes = append(votes, model.Vote{
			ChainID:         row.ChainID,
			CampaignAddress: strings.ToLower(row.CampaignAddress),
			VoterAddress:    strings.ToLower(row.VoterAddress),
			Amount:          amount,
			BlockTimestamp:  row.BlockTimestamp,
		})
	}
	return votes, nil
}

// --- winner slots ---

func (r *LeagueRepository) Winner(ctx context.Context, id model.SlotID) (model.WinnerSlot, error) {
	var row Winner
	err := r.db.WithContext(ctx).
		Where("chain_id = ? AND period = ? AND epoch_start = ? AND category = ? AND rank = ?",
			id.ChainID, string(id.Period), id.EpochStart, string(id.Category), id.Rank).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.WinnerSlot{}, model.ErrSlotNotFound
		}
		return model.WinnerSlot{}, fmt.Errorf("get winner slot: %w", err)
	}
	return winnerToModel(row)
}

func (r *LeagueRepository) EpochWinners(ctx context.Context, chainID int64, period model.Period, epochStart time.Time) ([]model.WinnerSlot, error) {
	var rows []Winner
	err := r.db.WithContext(ctx).
		Where("chain_id = ? AND period = ? AND epoch_start = ?", chainID, string(period), epochStart).
		Order("category asc, rank asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("get epoch winners: %w", err)
	}

	slots := make([]model.WinnerSlot, 0, len(rows))
	for _, row := range rows {
		slot, err := winnerToModel(row)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

func (r *LeagueRepository) CategoryHasWinners(ctx context.Context, chainID int64, period model.Period, epochStart time.Time, category model.Category) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Winner{}).
		Where("chain_id = ? AND period = ? AND epoch_start = ? AND category = ?",
			chainID, string(period), epochStart, string(category)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count category winners: %w", err)
	}
	return count > 0, nil
}

// InsertWinners inserts winner rows, skipping any slot that already exists.
// Winner slots are immutable: a conflict means a previous finalization run
// already wrote the row, never that it should change. When a leftover
// application is given, the unawarded remainder rolls forward in the same
// transaction, so a crash can never leave winners written but the leftover
// gone.
func (r *LeagueRepository) InsertWinners(ctx context.Context, slots []model.WinnerSlot, leftover *model.RolloverApplication) error {
	if len(slots) == 0 && leftover == nil {
		return nil
	}

	rows := make([]Winner, 0, len(slots))
	for _, slot := range slots {
		rows = append(rows, Winner{
			ChainID:          slot.ChainID,
			Period:           string(slot.Period),
			EpochStart:       slot.EpochStart,
			Category:         string(slot.Category),
			Rank:             slot.Rank,
			EpochEnd:         slot.EpochEnd,
			RecipientAddress: strings.ToLower(slot.Recipient),
			AmountRaw:        slot.Amount.String(),
			ExpiresAt:        slot.ExpiresAt,
			Meta:             slot.Meta,
		})
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(rows) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
				return fmt.Errorf("insert winners: %w", err)
			}
		}
		if leftover != nil {
			return applyRollover(tx, *leftover)
		}
		return nil
	})
}

// --- rollover ledger ---

func (r *LeagueRepository) RolloverAmount(ctx context.Context, chainID int64, period model.Period, epochStart time.Time, category model.Category) (*big.Int, error) {
	var row Rollover
	err := r.db.WithContext(ctx).
		Where("chain_id = ? AND period = ? AND epoch_start = ? AND category = ?",
			chainID, string(period), epochStart, string(category)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return new(big.Int), nil
		}
		return nil, fmt.Errorf("get rollover amount: %w", err)
	}
	return model.ParseAmount(row.AmountRaw)
}

// ApplyRolloverOnce routes a pot into the target epoch's ledger, guarded by
// the (source epoch, category, reason) event row: an already-applied event
// makes the whole call a no-op. Used for no-winner finalization outcomes.
func (r *LeagueRepository) ApplyRolloverOnce(ctx context.Context, app model.RolloverApplication) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return applyRollover(tx, app)
	})
}

func applyRollover(tx *gorm.DB, app model.RolloverApplication) error {
	event := RolloverEvent{
		ChainID:          app.ChainID,
		Period:           string(app.Period),
		SourceEpochStart: app.SourceEpochStart,
		Category:         string(app.Category),
		Reason:           string(app.Reason),
		AmountRaw:        app.Amount.String(),
		CreatedAt:        time.Now().UTC(),
	}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&event)
	if res.Error != nil {
		return fmt.Errorf("insert rollover event: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// already applied by an earlier run
		return nil
	}

	return incrementRollover(tx, app.ChainID, app.Period, app.TargetEpochStart, app.Category, app.Amount)
}

// SweepSlot marks an expired unclaimed slot swept and routes its amount into
// the target epoch's rollover ledger in one transaction. Returns false when
// the slot was already swept or got paid in the meantime; sweeping and paying
// are mutually exclusive.
func (r *LeagueRepository) SweepSlot(ctx context.Context, slot model.WinnerSlot, targetEpochStart, now time.Time) (bool, error) {
	swept := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", db.LockKey(slot.SlotID.String())).Error; err != nil {
			return fmt.Errorf("acquire slot lock: %w", err)
		}

		res := tx.Model(&Winner{}).
			Where("chain_id = ? AND period = ? AND epoch_start = ? AND category = ? AND rank = ? AND swept_at IS NULL",
				slot.ChainID, string(slot.Period), slot.EpochStart, string(slot.Category), slot.Rank).
			Where("NOT EXISTS (SELECT 1 FROM payouts p WHERE p.chain_id = winners.chain_id AND p.period = winners.period AND p.epoch_start = winners.epoch_start AND p.category = winners.category AND p.rank = winners.rank)").
			Update("swept_at", now)
		if res.Error != nil {
			return fmt.Errorf("mark swept: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}

		swept = true
		return incrementRollover(tx, slot.ChainID, slot.Period, targetEpochStart, slot.Category, slot.Amount)
	})
	return swept, err
}

func incrementRollover(tx *gorm.DB, chainID int64, period model.Period, target time.Time, category model.Category, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}

	var ledger Rollover
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("chain_id = ? AND period = ? AND epoch_start = ? AND category = ?",
			chainID, string(period), target, string(category)).
		First(&ledger).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ledger = Rollover{
			ChainID:    chainID,
			Period:     string(period),
			EpochStart: target,
			Category:   string(category),
			AmountRaw:  amount.String(),
		}
		if err := tx.Create(&ledger).Error; err != nil {
			return fmt.Errorf("create rollover ledger row: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("lock rollover ledger row: %w", err)
	}

	current, err := model.ParseAmount(ledger.AmountRaw)
	if err != nil {
		return fmt.Errorf("rollover ledger amount: %w", err)
	}
	updated := new(big.Int).Add(current, amount)

	err = tx.Model(&Rollover{}).
		Where("chain_id = ? AND period = ? AND epoch_start = ? AND category = ?",
			chainID, string(period), target, string(category)).
		Update("amount_raw", updated.String()).Error
	if err != nil {
		return fmt.Errorf("increment rollover ledger: %w", err)
	}
	return nil
}

func (r *LeagueRepository) RolloverEventExists(ctx context.Context, chainID int64, period model.Period, sourceEpochStart time.Time, category model.Category, reason model.RolloverReason) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&RolloverEvent{}).
		Where("chain_id = ? AND period = ? AND source_epoch_start = ? AND category = ? AND reason = ?",
			chainID, string(period), sourceEpochStart, string(category), string(reason)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count rollover events: %w", err)
	}
	return count > 0, nil
}

// --- claims and payouts ---

func (r *LeagueRepository) Payout(ctx context.Context, id model.SlotID) (model.Payout, error) {
	var row Payout
	err := r.db.WithContext(ctx).
		Where("chain_id = ? AND period = ? AND epoch_start = ? AND category = ? AND rank = ?",
			id.ChainID, string(id.Period), id.EpochStart, string(id.Category), id.Rank).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Payout{}, model.ErrPayoutNotFound
		}
		return model.Payout{}, fmt.Errorf("get payout: %w", err)
	}

	amount, err := model.ParseAmount(row.AmountRaw)
	if err != nil {
		return model.Payout{}, fmt.Errorf("payout amount: %w", err)
	}
	return model.Payout{
		SlotID:    id,
		TxHash:    row.TxHash,
		Amount:    amount,
		Recipient: row.RecipientAddress,
		PaidAt:    row.PaidAt,
	}, nil
}

func (r *LeagueRepository) InsertPayout(ctx context.Context, payout model.Payout) error {
	row := Payout{
		ChainID:          payout.ChainID,
		Period:           string(payout.Period),
		EpochStart:       payout.EpochStart,
		Category:         string(payout.Category),
		Rank:             payout.Rank,
		TxHash:           payout.TxHash,
		AmountRaw:        payout.Amount.String(),
		RecipientAddress: strings.ToLower(payout.Recipient),
		PaidAt:           payout.PaidAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert payout: %w", err)
	}
	return nil
}

func (r *LeagueRepository) InsertClaim(ctx context.Context, id model.SlotID, recipient string, at time.Time) error {
	row := Claim{
		ChainID:          id.ChainID,
		Period:           string(id.Period),
		EpochStart:       id.EpochStart,
		Category:         string(id.Category),
		Rank:             id.Rank,
		RecipientAddress: strings.ToLower(recipient),
		ClaimedAt:        at,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("insert claim: %w", err)
	}
	return nil
}

func (r *LeagueRepository) PayoutTotal(ctx context.Context, chainID int64, period model.Period, epochStart time.Time, category model.Category) (*big.Int, error) {
	var rows []Payout
	err := r.db.WithContext(ctx).
		Where("chain_id = ? AND period = ? AND epoch_start = ? AND category = ?",
			chainID, string(period), epochStart, string(category)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("get category payouts: %w", err)
	}

	total := new(big.Int)
	for _, row := range rows {
		amount, err := model.ParseAmount(row.AmountRaw)
		if err != nil {
			return nil, fmt.Errorf("payout amount: %w", err)
		}
		total.Add(total, amount)
	}
	return total, nil
}

// --- nonces ---

func (r *LeagueRepository) IssueNonce(ctx context.Context, chainID int64, address string, ttl time.Duration, now time.Time) (string, error) {
	row := ClaimNonce{
		ID:        uuid.NewString(),
		ChainID:   chainID,
		Address:   strings.ToLower(address),
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("insert nonce: %w", err)
	}
	return row.ID, nil
}

// ConsumeNonce marks a nonce used. The guarded UPDATE is the serialization
// point: only one caller ever flips used_at from NULL.
func (r *LeagueRepository) ConsumeNonce(ctx context.Context, chainID int64, address, nonce string, now time.Time) error {
	res := r.db.WithContext(ctx).Model(&ClaimNonce{}).
		Where("id = ? AND chain_id = ? AND address = ? AND used_at IS NULL AND expires_at > ?",
			nonce, chainID, strings.ToLower(address), now).
		Update("used_at", now)
	if res.Error != nil {
		return fmt.Errorf("consume nonce: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// distinguish why the consume failed
	var row ClaimNonce
	err := r.db.WithContext(ctx).
		Where("id = ? AND chain_id = ? AND address = ?", nonce, chainID, strings.ToLower(address)).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ErrNonceNotFound
	}
	if err != nil {
		return fmt.Errorf("inspect nonce: %w", err)
	}
	if row.UsedAt != nil {
		return model.ErrNonceUsed
	}
	return model.ErrNonceExpired
}

// --- operator surfaces ---

func (r *LeagueRepository) ClaimedUnpaid(ctx context.Context, chainID int64) ([]model.UnpaidSlot, error) {
	var rows []struct {
		Winner
		ClaimedAt time.Time
	}
	err := r.db.WithContext(ctx).Model(&Winner{}).
		Select("winners.*, claims.claimed_at").
		Joins("JOIN claims ON claims.chain_id = winners.chain_id AND claims.period = winners.period AND claims.epoch_start = winners.epoch_start AND claims.category = winners.category AND claims.rank = winners.rank").
		Where("winners.chain_id = ? AND winners.swept_at IS NULL", chainID).
		Where("NOT EXISTS (SELECT 1 FROM payouts p WHERE p.chain_id = winners.chain_id AND p.period = winners.period AND p.epoch_start = winners.epoch_start AND p.category = winners.category AND p.rank = winners.rank)").
		Order("winners.epoch_start asc, winners.category asc, winners.rank asc").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("get claimed unpaid slots: %w", err)
	}

	slots := make([]model.UnpaidSlot, 0, len(rows))
	for _, row := range rows {
		amount, err := model.ParseAmount(row.AmountRaw)
		if err != nil {
			return nil, fmt.Errorf("winner amount: %w", err)
		}
		slots = append(slots, model.UnpaidSlot{
			SlotID: model.SlotID{
				ChainID:    row.ChainID,
				Period:     model.Period(row.Period),
				EpochStart: row.EpochStart,
				Category:   model.Category(row.Category),
				Rank:       row.Rank,
			},
			EpochEnd:  row.EpochEnd,
			Recipient: row.RecipientAddress,
			Amount:    amount,
			ClaimedAt: row.ClaimedAt,
		})
	}
	return slots, nil
}

func (r *LeagueRepository) OperatorByName(ctx context.Context, name string) (Operator, error) {
	var op Operator
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&op).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Operator{}, ErrOperatorNotFound
		}
		return Operator{}, fmt.Errorf("get operator by name: %w", err)
	}
	return op, nil
}

// --- expiry sweep ---

func (r *LeagueRepository) SweepCandidates(ctx context.Context, chainID int64, now time.Time) ([]model.WinnerSlot, error) {
	var rows []Winner
	err := r.db.WithContext(ctx).
		Where("chain_id = ? AND expires_at < ? AND swept_at IS NULL", chainID, now).
		Where("NOT EXISTS (SELECT 1 FROM payouts p WHERE p.chain_id = winners.chain_id AND p.period = winners.period AND p.epoch_start = winners.epoch_start AND p.category = winners.category AND p.rank = winners.rank)").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("get sweep candidates: %w", err)
	}

	slots := make([]model.WinnerSlot, 0, len(rows))
	for _, row := range rows {
		slot, err := winnerToModel(row)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// --- row conversions ---

func tradeToModel(row Trade) (model.Trade, error) {
	amount, err := model.ParseAmount(row.NativeAmountRaw)
	if err != nil {
		return model.Trade{}, fmt.Errorf("trade amount: %w", err)
	}
	return model.Trade{
		ChainID:         row.ChainID,
		CampaignAddress: strings.ToLower(row.CampaignAddress),
		Side:            model.TradeSide(row.Side),
		Wallet:          strings.ToLower(row.Wallet),
		NativeAmount:    amount,
		BlockNumber:     row.BlockNumber,
		BlockTime:       row.BlockTime,
		TxHash:          row.TxHash,
		LogIndex:        row.LogIndex,
	}, nil
}

func campaignToModel(row Campaign) model.Campaign {
	campaign := model.Campaign{
		ChainID:             row.ChainID,
		CampaignAddress:     strings.ToLower(row.CampaignAddress),
		CreatorAddress:      strings.ToLower(row.CreatorAddress),
		FeeRecipientAddress: strings.ToLower(row.FeeRecipientAddress),
		CreatedAtChain:      row.CreatedAtChain,
		CreatedBlock:        row.CreatedBlock,
	}
	if row.GraduatedAtChain != nil {
		campaign.GraduatedAtChain = *row.GraduatedAtChain
	}
	if row.GraduatedBlock != nil {
		campaign.GraduatedBlock = *row.GraduatedBlock
	}
	return campaign
}

func winnerToModel(row Winner) (model.WinnerSlot, error) {
	amount, err := model.ParseAmount(row.AmountRaw)
	if err != nil {
		return model.WinnerSlot{}, fmt.Errorf("winner amount: %w", err)
	}
	return model.WinnerSlot{
		SlotID: model.SlotID{
			ChainID:    row.ChainID,
			Period:     model.Period(row.Period),
			EpochStart: row.EpochStart,
			Category:   model.Category(row.Category),
			Rank:       row.Rank,
		},
		EpochEnd:  row.EpochEnd,
		Recipient: row.RecipientAddress,
		Amount:    amount,
		ExpiresAt: row.ExpiresAt,
		SweptAt:   derefTime(row.SweptAt),
		Meta:      row.Meta,
	}, nil
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

var ErrOperatorNotFound error = errors.New("operator not found")

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == undefinedTableCode
}
