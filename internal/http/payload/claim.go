package payload

import (
	"fmt"
	"regexp"
	"time"

	"github.com/jellydator/validation"

	"memebattles/internal/league/claim"
	"memebattles/internal/league/model"
)

var (
	addressRegex   = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	txHashRegex    = regexp.MustCompile(`^0x[a-fA-F0-9]{64}$`)
	signatureRegex = regexp.MustCompile(`^0x[a-fA-F0-9]{130}$`)
)

type NonceRequest struct {
	ChainID int64  `json:"chainId"`
	Address string `json:"address"`
}

func (n NonceRequest) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.ChainID, validation.Required, validation.Min(1)),
		validation.Field(&n.Address, validation.Required, validation.Match(addressRegex)),
	)
}

type ClaimRequest struct {
	ChainID    int64  `json:"chainId"`
	Recipient  string `json:"recipient"`
	Period     string `json:"period"`
	EpochStart string `json:"epochStart"`
	Category   string `json:"category"`
	Rank       int    `json:"rank"`
	Nonce      string `json:"nonce"`
	Signature  string `json:"signature"`
}

func (c ClaimRequest) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ChainID, validation.Required, validation.Min(1)),
		validation.Field(&c.Recipient, validation.Required, validation.Match(addressRegex)),
		validation.Field(&c.Period, validation.Required, validation.In("weekly", "monthly")),
		validation.Field(&c.EpochStart, validation.Required, validation.Date(time.RFC3339)),
		validation.Field(&c.Category, validation.Required),
		validation.Field(&c.Rank, validation.Required, validation.Min(1), validation.Max(5)),
		validation.Field(&c.Nonce, validation.Required),
		validation.Field(&c.Signature, validation.Required, validation.Match(signatureRegex)),
	)
}

func (c ClaimRequest) ToClaimRequest() (claim.Request, error) {
	return toRequest(c.ChainID, c.Recipient, c.Period, c.EpochStart, c.Category, c.Rank, c.Nonce, c.Signature, "")
}

type RecordRequest struct {
	ChainID    int64  `json:"chainId"`
	Recipient  string `json:"recipient"`
	Period     string `json:"period"`
	EpochStart string `json:"epochStart"`
	Category   string `json:"category"`
	Rank       int    `json:"rank"`
	Nonce      string `json:"nonce"`
	Signature  string `json:"signature"`
	TxHash     string `json:"txHash"`
}

func (c RecordRequest) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ChainID, validation.Required, validation.Min(1)),
		validation.Field(&c.Recipient, validation.Required, validation.Match(addressRegex)),
		validation.Field(&c.Period, validation.Required, validation.In("weekly", "monthly")),
		validation.Field(&c.EpochStart, validation.Required, validation.Date(time.RFC3339)),
		validation.Field(&c.Category, validation.Required),
		validation.Field(&c.Rank, validation.Required, validation.Min(1), validation.Max(5)),
		validation.Field(&c.Nonce, validation.Required),
		validation.Field(&c.Signature, validation.Required, validation.Match(signatureRegex)),
		validation.Field(&c.TxHash, validation.Required, validation.Match(txHashRegex)),
	)
}

func (c RecordRequest) ToClaimRequest() (claim.Request, error) {
	return toRequest(c.ChainID, c.Recipient, c.Period, c.EpochStart, c.Category, c.Rank, c.Nonce, c.Signature, c.TxHash)
}

// OperatorPayoutRequest reports a payout the operator executed from the vault
// directly. There is no recipient field: the payout always settles to the
// address on the winner slot.
type OperatorPayoutRequest struct {
	ChainID    int64  `json:"chainId"`
	Period     string `json:"period"`
	EpochStart string `json:"epochStart"`
	Category   string `json:"category"`
	Rank       int    `json:"rank"`
	TxHash     string `json:"txHash"`
}

func (o OperatorPayoutRequest) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.ChainID, validation.Required, validation.Min(1)),
		validation.Field(&o.Period, validation.Required, validation.In("weekly", "monthly")),
		validation.Field(&o.EpochStart, validation.Required, validation.Date(time.RFC3339)),
		validation.Field(&o.Category, validation.Required),
		validation.Field(&o.Rank, validation.Required, validation.Min(1), validation.Max(5)),
		validation.Field(&o.TxHash, validation.Required, validation.Match(txHashRegex)),
	)
}

func (o OperatorPayoutRequest) ToSlotID() (model.SlotID, error) {
	period, err := model.ParsePeriod(o.Period)
	if err != nil {
		return model.SlotID{}, err
	}
	category, err := model.ParseCategory(o.Category)
	if err != nil {
		return model.SlotID{}, err
	}
	epochStart, err := time.Parse(time.RFC3339, o.EpochStart)
	if err != nil {
		return model.SlotID{}, fmt.Errorf("parse epoch start: %w", err)
	}

	return model.SlotID{
		ChainID:    o.ChainID,
		Period:     period,
		EpochStart: epochStart.UTC(),
		Category:   category,
		Rank:       o.Rank,
	}, nil
}

func toRequest(chainID int64, recipient, rawPeriod, rawStart, rawCategory string, rank int, nonce, signature, txHash string) (claim.Request, error) {
	period, err := model.ParsePeriod(rawPeriod)
	if err != nil {
		return claim.Request{}, err
	}
	category, err := model.ParseCategory(rawCategory)
	if err != nil {
		return claim.Request{}, err
	}
	epochStart, err := time.Parse(time.RFC3339, rawStart)
	if err != nil {
		return claim.Request{}, fmt.Errorf("parse epoch start: %w", err)
	}

	return claim.Request{
		Slot: model.SlotID{
			ChainID:    chainID,
			Period:     period,
			EpochStart: epochStart.UTC(),
			Category:   category,
			Rank:       rank,
		},
		Recipient: recipient,
		Nonce:     nonce,
		Signature: signature,
		TxHash:    txHash,
	}, nil
}
