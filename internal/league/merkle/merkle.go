package merkle

import (
	"bytes"
	"errors"
	"math/big"
	"sort"
	"time"

	"memebattles/internal/league/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrNoLeaves = errors.New("no winner slots to commit")
var ErrLeafNotFound = errors.New("slot has no leaf in the commitment")

// EpochID derives the on-chain epoch identifier:
// keccak256(uint256 chainId ++ uint8 periodCode ++ uint256 epochStartUnix).
func EpochID(chainID int64, period model.Period, epochStart time.Time) common.Hash {
	buf := make([]byte, 0, 65)
	buf = append(buf, uint256Bytes(big.NewInt(chainID))...)
	buf = append(buf, period.Code())
	buf = append(buf, uint256Bytes(big.NewInt(epochStart.UTC().Unix()))...)
	return crypto.Keccak256Hash(buf)
}

// CategoryHash is keccak256 of the category id string.
func CategoryHash(category model.Category) common.Hash {
	return crypto.Keccak256Hash([]byte(category))
}

// LeafHash is the canonical winner-slot leaf encoding, matching the vault
// verifier: keccak256(bytes32 epochId ++ bytes32 categoryHash ++ uint8 rank
// ++ address recipient ++ uint256 amount).
func LeafHash(epochID, categoryHash common.Hash, rank uint8, recipient common.Address, amount *big.Int) common.Hash {
	buf := make([]byte, 0, 117)
	buf = append(buf, epochID.Bytes()...)
	buf = append(buf, categoryHash.Bytes()...)
	buf = append(buf, rank)
	buf = append(buf, recipient.Bytes()...)
	buf = append(buf, uint256Bytes(amount)...)
	return crypto.Keccak256Hash(buf)
}

// Leaf is one committed winner slot with its position in the tree.
type Leaf struct {
	Slot  model.WinnerSlot
	Hash  common.Hash
	Index int
}

// Tree is the deterministic Merkle commitment over all winner slots of one
// epoch. Pairs hash with the sorted-pair rule so proofs verify against the
// vault's commutative verifier; odd levels duplicate their last node.
type Tree struct {
	epochID common.Hash
	leaves  []Leaf
	levels  [][]common.Hash
	total   *big.Int
}

// Build constructs the commitment for one (chain, period, epoch) slot set.
// Leaves are ordered category asc, rank asc, recipient asc before hashing so
// the same slot set always yields the same tree.
func Build(chainID int64, period model.Period, epochStart time.Time, slots []model.WinnerSlot) (*Tree, error) {
	if len(slots) == 0 {
		return nil, ErrNoLeaves
	}

	ordered := make([]model.WinnerSlot, len(slots))
	copy(ordered, slots)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Category != ordered[j].Category {
			return ordered[i].Category < ordered[j].Category
		}
		if ordered[i].Rank != ordered[j].Rank {
			return ordered[i].Rank < ordered[j].Rank
		}
		return ordered[i].Recipient < ordered[j].Recipient
	})

	epochID := EpochID(chainID, period, epochStart)
	total := new(big.Int)
	leaves := make([]Leaf, len(ordered))
	hashes := make([]common.Hash, len(ordered))
	for i, slot := range ordered {
		hash := LeafHash(
			epochID,
			CategoryHash(slot.Category),
			uint8(slot.Rank),
			common.HexToAddress(slot.Recipient),
			slot.Amount,
		)
		leaves[i] = Leaf{Slot: slot, Hash: hash, Index: i}
		hashes[i] = hash
		total.Add(total, slot.Amount)
	}

	levels := [][]common.Hash{hashes}
	for len(levels[len(levels)-1]) > 1 {
		current := levels[len(levels)-1]
		next := make([]common.Hash, 0, (len(current)+1)/2)
		for i := 0; i < len(current); i += 2 {
			if i+1 == len(current) {
				next = append(next, hashPair(current[i], current[i]))
				continue
			}
			next = append(next, hashPair(current[i], current[i+1]))
		}
		levels = append(levels, next)
	}

	return &Tree{
		epochID: epochID,
		leaves:  leaves,
		levels:  levels,
		total:   total,
	}, nil
}

func (t *Tree) EpochID() common.Hash {
	return t.epochID
}

func (t *Tree) Root() common.Hash {
	return t.levels[len(t.levels)-1][0]
}

// TotalAmount is the sum of all committed leaf amounts, posted on-chain
// alongside the root as the per-epoch claim bound.
func (t *Tree) TotalAmount() *big.Int {
	return new(big.Int).Set(t.total)
}

func (t *Tree) Leaves() []Leaf {
	return t.leaves
}

// Leaf locates the committed leaf for a winner-slot identity.
func (t *Tree) Leaf(id model.SlotID) (Leaf, error) {
	for _, leaf := range t.leaves {
		s := leaf.Slot
		if s.ChainID == id.ChainID && s.Period == id.Period &&
			s.EpochStart.Equal(id.EpochStart) && s.Category == id.Category && s.Rank == id.Rank {
			return leaf, nil
		}
	}
	return Leaf{}, ErrLeafNotFound
}

// Proof returns the sibling hashes from a leaf up to the root.
func (t *Tree) Proof(index int) []common.Hash {
	proof := make([]common.Hash, 0, len(t.levels)-1)
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := index ^ 1
		if sibling >= len(level) {
			sibling = index // odd level, duplicated last node
		}
		proof = append(proof, level[sibling])
		index /= 2
	}
	return proof
}

// Verify folds a proof with the sorted-pair rule and checks it against the
// root, mirroring the on-chain verifier.
func Verify(root, leaf common.Hash, proof []common.Hash) bool {
	node := leaf
	for _, sibling := range proof {
		node = hashPair(node, sibling)
	}
	return node == root
}

func hashPair(a, b common.Hash) common.Hash {
	if bytes.Compare(a.Bytes(), b.Bytes()) > 0 {
		a, b = b, a
	}
	return crypto.Keccak256Hash(append(a.Bytes(), b.Bytes()...))
}

func uint256Bytes(n *big.Int) []byte {
	return n.FillBytes(make([]byte, 32))
}
