package claim

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"memebattles/internal/league/merkle"
	"memebattles/internal/league/model"
)

// NonceTTL bounds how long an issued claim nonce stays valid.
const NonceTTL = 10 * time.Minute

var (
	ErrBadSignature      error = errors.New("signature is not valid")
	ErrSignerMismatch    error = errors.New("signature does not recover to recipient")
	ErrRecipientMismatch error = errors.New("recipient does not match winner slot")
	ErrClaimNotOpen      error = errors.New("claims open only after epoch end")
	ErrClaimExpired      error = errors.New("claim window has expired")
	ErrSlotSwept         error = errors.New("slot pot was swept into rollover")
	ErrBadRequest        error = errors.New("invalid claim request")
)

// Vault is the read-only view of the on-chain prize vault.
//
//counterfeiter:generate -o fake -fake-name Vault . Vault
type Vault interface {
	Address() string
	Balance(ctx context.Context, chainID int64) (*big.Int, error)
}

// Request carries the signed fields of a claim or record call. TxHash is set
// on the record path only.
type Request struct {
	Slot      model.SlotID
	Recipient string
	Nonce     string
	Signature string
	TxHash    string
}

// Proof is the bundle a claimant submits to the vault's claim method.
type Proof struct {
	EpochID      string
	CategoryHash string
	Root         string
	LeafIndex    int
	Siblings     []string
	TotalAmount  *big.Int
	VaultAddress string
}

type Status string

const (
	StatusProofIssued Status = "proof_issued"
	StatusAlreadyPaid Status = "already_paid"
	StatusRecorded    Status = "recorded"
)

// Result is the outcome of a settled or short-circuited claim.
type Result struct {
	Status    Status
	Slot      model.SlotID
	Recipient string
	Amount    *big.Int
	TxHash    string
	PaidAt    time.Time
	Proof     *Proof
}

// Report lists all claimed-but-unpaid winner slots of one chain, grouped by
// epoch, reconciled against the live vault balance. Consumed by the operator
// driving the vault's direct payout lane.
type Report struct {
	ChainID      int64
	VaultAddress string
	VaultBalance *big.Int
	TotalOwed    *big.Int
	Shortfall    bool
	Epochs       []EpochGroup
}

type EpochGroup struct {
	Period     model.Period
	EpochStart time.Time
	TotalOwed  *big.Int
	Slots      []model.UnpaidSlot
}

// Coordinator settles prize claims exactly once per winner slot. All state
// checks and writes for one claim run inside a single advisory-locked
// transaction keyed by the slot identity, so concurrent attempts for the
// same slot serialize while different slots proceed in parallel.
type Coordinator struct {
	logs  *zap.SugaredLogger
	store Store
	vault Vault
	clock clockwork.Clock
}

func NewCoordinator(logs *zap.SugaredLogger, store Store, vault Vault, clock clockwork.Clock) *Coordinator {
	return &Coordinator{
		logs:  logs,
		store: store,
		vault: vault,
		clock: clock,
	}
}

// Nonce issues a fresh single-use claim nonce bound to (chainID, address).
func (c *Coordinator) Nonce(ctx context.Context, chainID int64, address string) (string, time.Time, error) {
	if !common.IsHexAddress(address) {
		return "", time.Time{}, fmt.Errorf("%w: address %q", ErrBadRequest, address)
	}

	now := c.clock.Now().UTC()
	nonce, err := c.store.IssueNonce(ctx, chainID, strings.ToLower(address), NonceTTL, now)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("issue nonce: %w", err)
	}
	return nonce, now.Add(NonceTTL), nil
}

// Claim authenticates a claimant and returns the Merkle proof for the slot's
// leaf so the caller can submit the on-chain claim themselves. The claim is
// recorded; the payout is not, since payment is only known once the on-chain
// transaction is reported via Record. If the slot is already paid the
// existing payout is returned as an idempotent success.
func (c *Coordinator) Claim(ctx context.Context, req Request) (Result, error) {
	req.Recipient = strings.ToLower(req.Recipient)
	if err := c.authenticate(req); err != nil {
		return Result{}, err
	}

	var result Result
	err := c.store.WithSlotLock(ctx, req.Slot, func(tx Store) error {
		now := c.clock.Now().UTC()
		if err := tx.ConsumeNonce(ctx, req.Slot.ChainID, req.Recipient, req.Nonce, now); err != nil {
			return err
		}

		winner, err := tx.Winner(ctx, req.Slot)
		if err != nil {
			return err
		}
		if winner.Recipient != req.Recipient {
			return ErrRecipientMismatch
		}

		if paid, payout, err := c.existingPayout(ctx, tx, req.Slot); err != nil {
			return err
		} else if paid {
			result = paidResult(winner, payout)
			return nil
		}

		if err := claimable(winner, now); err != nil {
			return err
		}

		proof, err := c.buildProof(ctx, tx, winner)
		if err != nil {
			return err
		}
		if err := tx.InsertClaim(ctx, winner.SlotID, winner.Recipient, now); err != nil {
			return fmt.Errorf("insert claim: %w", err)
		}

		result = Result{
			Status:    StatusProofIssued,
			Slot:      winner.SlotID,
			Recipient: winner.Recipient,
			Amount:    winner.Amount,
			Proof:     proof,
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	c.logs.Infow("claim settled",
		"slot", result.Slot.String(),
		"recipient", result.Recipient,
		"status", result.Status)
	return result, nil
}

// Record writes the payout row for a previously-mined on-chain claim
// transaction, together with the claim record, atomically inside the slot
// lock. This is the durability point of the Merkle-claim path. Recording an
// already-paid slot returns the existing payout unchanged.
func (c *Coordinator) Record(ctx context.Context, req Request) (Result, error) {
	if !isTxHash(req.TxHash) {
		return Result{}, fmt.Errorf("%w: tx hash %q", ErrBadRequest, req.TxHash)
	}
	req.Recipient = strings.ToLower(req.Recipient)
	if err := c.authenticate(req); err != nil {
		return Result{}, err
	}

	var result Result
	err := c.store.WithSlotLock(ctx, req.Slot, func(tx Store) error {
		now := c.clock.Now().UTC()
		if err := tx.ConsumeNonce(ctx, req.Slot.ChainID, req.Recipient, req.Nonce, now); err != nil {
			return err
		}

		winner, err := tx.Winner(ctx, req.Slot)
		if err != nil {
			return err
		}
		if winner.Recipient != req.Recipient {
			return ErrRecipientMismatch
		}

		if paid, payout, err := c.existingPayout(ctx, tx, req.Slot); err != nil {
			return err
		} else if paid {
			result = paidResult(winner, payout)
			return nil
		}

		if winner.Swept() {
			return ErrSlotSwept
		}
		if now.Before(winner.EpochEnd) {
			return ErrClaimNotOpen
		}

		payout := model.Payout{
			SlotID:    winner.SlotID,
			TxHash:    strings.ToLower(req.TxHash),
			Amount:    winner.Amount,
			Recipient: winner.Recipient,
			PaidAt:    now,
		}
		if err := tx.InsertClaim(ctx, winner.SlotID, winner.Recipient, now); err != nil {
			return fmt.Errorf("insert claim: %w", err)
		}
		if err := tx.InsertPayout(ctx, payout); err != nil {
			return fmt.Errorf("insert payout: %w", err)
		}

		result = Result{
			Status:    StatusRecorded,
			Slot:      winner.SlotID,
			Recipient: winner.Recipient,
			Amount:    winner.Amount,
			TxHash:    payout.TxHash,
			PaidAt:    now,
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	c.logs.Infow("payout recorded",
		"slot", result.Slot.String(),
		"recipient", result.Recipient,
		"tx_hash", result.TxHash,
		"status", result.Status)
	return result, nil
}

// RecordOperator writes the payout row for a vault payment the operator
// executed directly off the unpaid report. No claimant signature is involved;
// the caller is an authenticated operator, so the payout goes to the
// recipient stored on the winner slot and never to a caller-supplied address.
// The write runs under the same slot lock as the claimant paths, so an
// operator payment and a concurrent claimant record settle exactly once.
func (c *Coordinator) RecordOperator(ctx context.Context, id model.SlotID, txHash string) (Result, error) {
	if !isTxHash(txHash) {
		return Result{}, fmt.Errorf("%w: tx hash %q", ErrBadRequest, txHash)
	}

	var result Result
	err := c.store.WithSlotLock(ctx, id, func(tx Store) error {
		now := c.clock.Now().UTC()

		winner, err := tx.Winner(ctx, id)
		if err != nil {
			return err
		}

		if paid, payout, err := c.existingPayout(ctx, tx, id); err != nil {
			return err
		} else if paid {
			result = paidResult(winner, payout)
			return nil
		}

		if winner.Swept() {
			return ErrSlotSwept
		}
		if now.Before(winner.EpochEnd) {
			return ErrClaimNotOpen
		}

		payout := model.Payout{
			SlotID:    winner.SlotID,
			TxHash:    strings.ToLower(txHash),
			Amount:    winner.Amount,
			Recipient: winner.Recipient,
			PaidAt:    now,
		}
		if err := tx.InsertClaim(ctx, winner.SlotID, winner.Recipient, now); err != nil {
			return fmt.Errorf("insert claim: %w", err)
		}
		if err := tx.InsertPayout(ctx, payout); err != nil {
			return fmt.Errorf("insert payout: %w", err)
		}

		result = Result{
			Status:    StatusRecorded,
			Slot:      winner.SlotID,
			Recipient: winner.Recipient,
			Amount:    winner.Amount,
			TxHash:    payout.TxHash,
			PaidAt:    now,
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	c.logs.Infow("operator payout recorded",
		"slot", result.Slot.String(),
		"recipient", result.Recipient,
		"tx_hash", result.TxHash,
		"status", result.Status)
	return result, nil
}

// Unpaid builds the operator export of claimed-but-unpaid slots for one
// chain, reconciled against the vault's live balance.
func (c *Coordinator) Unpaid(ctx context.Context, chainID int64) (Report, error) {
	slots, err := c.store.ClaimedUnpaid(ctx, chainID)
	if err != nil {
		return Report{}, fmt.Errorf("claimed unpaid slots: %w", err)
	}

	balance, err := c.vault.Balance(ctx, chainID)
	if err != nil {
		return Report{}, fmt.Errorf("vault balance: %w", err)
	}

	type groupKey struct {
		Period     model.Period
		EpochStart int64
	}
	groups := make(map[groupKey]*EpochGroup)
	order := make([]groupKey, 0)
	total := new(big.Int)
	for _, slot := range slots {
		total.Add(total, slot.Amount)
		key := groupKey{Period: slot.Period, EpochStart: slot.EpochStart.UTC().Unix()}
		group, ok := groups[key]
		if !ok {
			group = &EpochGroup{
				Period:     slot.Period,
				EpochStart: slot.EpochStart.UTC(),
				TotalOwed:  new(big.Int),
			}
			groups[key] = group
			order = append(order, key)
		}
		group.TotalOwed.Add(group.TotalOwed, slot.Amount)
		group.Slots = append(group.Slots, slot)
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].EpochStart != order[j].EpochStart {
			return order[i].EpochStart < order[j].EpochStart
		}
		return order[i].Period < order[j].Period
	})

	report := Report{
		ChainID:      chainID,
		VaultAddress: c.vault.Address(),
		VaultBalance: balance,
		TotalOwed:    total,
		Shortfall:    total.Cmp(balance) > 0,
		Epochs:       make([]EpochGroup, 0, len(order)),
	}
	for _, key := range order {
		report.Epochs = append(report.Epochs, *groups[key])
	}
	return report, nil
}

// authenticate verifies the request signature over the canonical message and
// that the recovered signer is the claimed recipient. Pure, so it runs
// outside the slot lock; replay protection comes from the nonce consumed
// inside it.
func (c *Coordinator) authenticate(req Request) error {
	if !common.IsHexAddress(req.Recipient) {
		return fmt.Errorf("%w: recipient %q", ErrBadRequest, req.Recipient)
	}
	if req.Nonce == "" {
		return fmt.Errorf("%w: missing nonce", ErrBadRequest)
	}

	message := CanonicalMessage(req.Slot, req.Recipient, req.Nonce)
	signer, err := RecoverSigner(message, req.Signature)
	if err != nil {
		return err
	}
	if signer != strings.ToLower(req.Recipient) {
		return ErrSignerMismatch
	}
	return nil
}

func (c *Coordinator) existingPayout(ctx context.Context, tx Store, id model.SlotID) (bool, model.Payout, error) {
	payout, err := tx.Payout(ctx, id)
	if err == nil {
		return true, payout, nil
	}
	if errors.Is(err, model.ErrPayoutNotFound) {
		return false, model.Payout{}, nil
	}
	return false, model.Payout{}, fmt.Errorf("get payout: %w", err)
}

func (c *Coordinator) buildProof(ctx context.Context, tx Store, winner model.WinnerSlot) (*Proof, error) {
	slots, err := tx.EpochWinners(ctx, winner.ChainID, winner.Period, winner.EpochStart)
	if err != nil {
		return nil, fmt.Errorf("epoch winners: %w", err)
	}

	tree, err := merkle.Build(winner.ChainID, winner.Period, winner.EpochStart, slots)
	if err != nil {
		return nil, fmt.Errorf("build commitment: %w", err)
	}
	leaf, err := tree.Leaf(winner.SlotID)
	if err != nil {
		return nil, fmt.Errorf("locate leaf: %w", err)
	}

	siblings := tree.Proof(leaf.Index)
	hexSiblings := make([]string, 0, len(siblings))
	for _, sibling := range siblings {
		hexSiblings = append(hexSiblings, sibling.Hex())
	}

	return &Proof{
		EpochID:      tree.EpochID().Hex(),
		CategoryHash: merkle.CategoryHash(winner.Category).Hex(),
		Root:         tree.Root().Hex(),
		LeafIndex:    leaf.Index,
		Siblings:     hexSiblings,
		TotalAmount:  tree.TotalAmount(),
		VaultAddress: c.vault.Address(),
	}, nil
}

// claimable checks the slot lifecycle gates for the Merkle-claim path. Runs
// after the already-paid short-circuit: a paid slot never expires.
func claimable(winner model.WinnerSlot, now time.Time) error {
	if winner.Swept() {
		return ErrSlotSwept
	}
	if now.Before(winner.EpochEnd) {
		return ErrClaimNotOpen
	}
	if !now.Before(winner.ExpiresAt) {
		return ErrClaimExpired
	}
	return nil
}

func paidResult(winner model.WinnerSlot, payout model.Payout) Result {
	return Result{
		Status:    StatusAlreadyPaid,
		Slot:      winner.SlotID,
		Recipient: winner.Recipient,
		Amount:    payout.Amount,
		TxHash:    payout.TxHash,
		PaidAt:    payout.PaidAt,
	}
}

func isTxHash(s string) bool {
	if len(s) != 66 || !strings.HasPrefix(s, "0x") {
		return false
	}
	for _, r := range s[2:] {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
