package claim

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"memebattles/internal/league/model"
)

const claimAction = "LEAGUE_CLAIM"

// CanonicalMessage renders the text a claimant signs in their wallet. Every
// field the settlement decision depends on is bound into the message, so a
// captured signature cannot be replayed against another slot or nonce.
func CanonicalMessage(id model.SlotID, recipient, nonce string) string {
	return fmt.Sprintf(
		"MemeBattles League\nAction: %s\nChainId: %d\nRecipient: %s\nPeriod: %s\nEpochStart: %s\nCategory: %s\nRank: %d\nNonce: %s",
		claimAction,
		id.ChainID,
		strings.ToLower(recipient),
		id.Period,
		id.EpochStart.UTC().Format(time.RFC3339),
		id.Category,
		id.Rank,
		nonce,
	)
}

// RecoverSigner recovers the lowercase hex address that produced an EIP-191
// personal_sign signature over message.
func RecoverSigner(message, signature string) (string, error) {
	raw, err := hexutil.Decode(signature)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrBadSignature, err)
	}
	if len(raw) != crypto.SignatureLength {
		return "", fmt.Errorf("%w: unexpected length %d", ErrBadSignature, len(raw))
	}

	sig := make([]byte, len(raw))
	copy(sig, raw)
	// wallets emit the recovery id as 27/28
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrBadSignature, err)
	}
	return strings.ToLower(crypto.PubkeyToAddress(*pub).Hex()), nil
}
