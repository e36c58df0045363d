package repository

import (
	"time"
)

// Trade mirrors the indexer's append-only trade feed. The core only reads it.
type Trade struct {
	ChainID         int64     `gorm:"primaryKey;autoIncrement:false"`
	TxHash          string    `gorm:"primaryKey;size:66"` // 0x + 64 hex chars
	LogIndex        int64     `gorm:"primaryKey;autoIncrement:false"`
	CampaignAddress string    `gorm:"size:42;not null;index"`
	Side            string    `gorm:"size:4;not null"` // buy or sell
	Wallet          string    `gorm:"size:42;not null;index"`
	NativeAmountRaw string    `gorm:"size:100;not null"` // net post-fee amount in wei
	BlockNumber     int64     `gorm:"not null;index"`
	BlockTime       time.Time `gorm:"not null;index"`
}

// Campaign mirrors the indexer's campaign feed. Graduation columns stay NULL
// while the campaign is still bonding.
type Campaign struct {
	ChainID             int64      `gorm:"primaryKey;autoIncrement:false"`
	CampaignAddress     string     `gorm:"primaryKey;size:42"`
	CreatorAddress      string     `gorm:"size:42;not null"`
	FeeRecipientAddress string     `gorm:"size:42;not null"`
	CreatedAtChain      time.Time  `gorm:"not null"`
	GraduatedAtChain    *time.Time `gorm:"index"`
	CreatedBlock        int64      `gorm:"not null"`
	GraduatedBlock      *int64
}

// Vote mirrors the indexer's vote feed. Only confirmed rows count.
type Vote struct {
	ChainID         int64     `gorm:"primaryKey;autoIncrement:false"`
	CampaignAddress string    `gorm:"primaryKey;size:42"`
	VoterAddress    string    `gorm:"primaryKey;size:42"`
	BlockTimestamp  time.Time `gorm:"primaryKey"`
	AmountRaw       string    `gorm:"size:100;not null"`
	Status          string    `gorm:"size:10;not null;index"` // confirmed, reorged or invalid
}

// Winner is one finalized prize slot. Inserted exactly once, never updated
// except for the sweep marker.
type Winner struct {
	ChainID          int64     `gorm:"primaryKey;autoIncrement:false"`
	Period           string    `gorm:"primaryKey;size:10"`
	EpochStart       time.Time `gorm:"primaryKey"`
	Category         string    `gorm:"primaryKey;size:20"`
	Rank             int       `gorm:"primaryKey;autoIncrement:false"`
	EpochEnd         time.Time `gorm:"not null"`
	RecipientAddress string    `gorm:"size:42;not null;index"`
	AmountRaw        string    `gorm:"size:100;not null"`
	ExpiresAt        time.Time `gorm:"not null;index"`
	SweptAt          *time.Time
	Meta             string `gorm:"type:text"`
}

// Claim records that a claim request for a slot was authenticated. A claimed
// slot is not paid until a Payout row exists.
type Claim struct {
	ChainID          int64     `gorm:"primaryKey;autoIncrement:false"`
	Period           string    `gorm:"primaryKey;size:10"`
	EpochStart       time.Time `gorm:"primaryKey"`
	Category         string    `gorm:"primaryKey;size:20"`
	Rank             int       `gorm:"primaryKey;autoIncrement:false"`
	RecipientAddress string    `gorm:"size:42;not null"`
	ClaimedAt        time.Time `gorm:"not null"`
}

// Payout records final settlement of a slot. Its presence is the single
// source of truth for "paid".
type Payout struct {
	ChainID          int64     `gorm:"primaryKey;autoIncrement:false"`
	Period           string    `gorm:"primaryKey;size:10"`
	EpochStart       time.Time `gorm:"primaryKey"`
	Category         string    `gorm:"primaryKey;size:20"`
	Rank             int       `gorm:"primaryKey;autoIncrement:false"`
	TxHash           string    `gorm:"size:66;not null"`
	AmountRaw        string    `gorm:"size:100;not null"`
	RecipientAddress string    `gorm:"size:42;not null"`
	PaidAt           time.Time `gorm:"not null"`
}

// Rollover accumulates pot amounts carried into a target epoch. Increments
// for the same key add up rather than duplicating rows.
type Rollover struct {
	ChainID    int64     `gorm:"primaryKey;autoIncrement:false"`
	Period     string    `gorm:"primaryKey;size:10"`
	EpochStart time.Time `gorm:"primaryKey"` // target epoch receiving the pot
	Category   string    `gorm:"primaryKey;size:20"`
	AmountRaw  string    `gorm:"size:100;not null"`
	UpdatedAt  time.Time
}

// RolloverEvent is the idempotency log for rollover application: one row per
// (source epoch, category, reason) so a no-winner or sweep rollover is applied
// at most once.
type RolloverEvent struct {
	ChainID          int64     `gorm:"primaryKey;autoIncrement:false"`
	Period           string    `gorm:"primaryKey;size:10"`
	SourceEpochStart time.Time `gorm:"primaryKey"`
	Category         string    `gorm:"primaryKey;size:20"`
	Reason           string    `gorm:"primaryKey;size:20"`
	AmountRaw        string    `gorm:"size:100;not null"`
	CreatedAt        time.Time
}

// ClaimNonce is a single-use nonce issued to a wallet ahead of a claim.
type ClaimNonce struct {
	ID        string    `gorm:"primaryKey;size:36"`
	ChainID   int64     `gorm:"not null;index:idx_nonce_owner"`
	Address   string    `gorm:"size:42;not null;index:idx_nonce_owner"`
	IssuedAt  time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null"`
	UsedAt    *time.Time
}

// Operator is a human operator account for the batch-export API.
type Operator struct {
	ID           string `gorm:"primaryKey;autoIncrement:false"`
	Name         string `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
}
