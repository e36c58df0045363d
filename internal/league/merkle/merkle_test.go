package merkle_test

import (
	"fmt"
	"math/big"
	"math/rand"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"memebattles/internal/league/merkle"
	"memebattles/internal/league/model"
)

func slotFixture(category model.Category, rank int, recipient string, amount int64) model.WinnerSlot {
	return model.WinnerSlot{
		SlotID: model.SlotID{
			ChainID:    8453,
			Period:     model.PeriodMonthly,
			EpochStart: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			Category:   category,
			Rank:       rank,
		},
		Recipient: recipient,
		Amount:    big.NewInt(amount),
	}
}

var epochStart = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

var _ = Describe("Build", func() {
	It("rejects an empty slot set", func() {
		_, err := merkle.Build(8453, model.PeriodMonthly, epochStart, nil)

		Expect(err).To(MatchError(merkle.ErrNoLeaves))
	})

	It("produces a verifiable proof for a single leaf", func() {
		slots := []model.WinnerSlot{
			slotFixture(model.CategoryBiggestHit, 1, "0x1111111111111111111111111111111111111111", 1000),
		}
		tree, err := merkle.Build(8453, model.PeriodMonthly, epochStart, slots)
		Expect(err).NotTo(HaveOccurred())

		leaf, err := tree.Leaf(slots[0].SlotID)
		Expect(err).NotTo(HaveOccurred())
		Expect(leaf.Index).To(Equal(0))

		proof := tree.Proof(leaf.Index)
		Expect(proof).To(BeEmpty())
		Expect(tree.Root()).To(Equal(leaf.Hash))
		Expect(merkle.Verify(tree.Root(), leaf.Hash, proof)).To(BeTrue())
	})

	It("produces verifiable proofs for every leaf across awkward tree sizes", func() {
		rng := rand.New(rand.NewSource(42))
		for _, size := range []int{2, 3, 5, 7, 8, 13, 20, 37} {
			slots := make([]model.WinnerSlot, 0, size)
			for i := 0; i < size; i++ {
				category := model.EligibleCategories(model.PeriodMonthly)[i%5]
				slots = append(slots, slotFixture(
					category,
					i/5+1,
					fmt.Sprintf("0x%040x", rng.Int63()),
					rng.Int63n(1_000_000)+1,
				))
			}

			tree, err := merkle.Build(8453, model.PeriodMonthly, epochStart, slots)
			Expect(err).NotTo(HaveOccurred())

			for _, leaf := range tree.Leaves() {
				proof := tree.Proof(leaf.Index)
				Expect(merkle.Verify(tree.Root(), leaf.Hash, proof)).To(BeTrue(),
					"size %d leaf %d", size, leaf.Index)
			}
		}
	})

	It("builds the same root regardless of input order", func() {
		slots := []model.WinnerSlot{
			slotFixture(model.CategoryTopEarner, 2, "0x2222222222222222222222222222222222222222", 50),
			slotFixture(model.CategoryBiggestHit, 1, "0x1111111111111111111111111111111111111111", 100),
			slotFixture(model.CategoryTopEarner, 1, "0x3333333333333333333333333333333333333333", 75),
		}
		shuffled := []model.WinnerSlot{slots[2], slots[0], slots[1]}

		tree1, err := merkle.Build(8453, model.PeriodMonthly, epochStart, slots)
		Expect(err).NotTo(HaveOccurred())
		tree2, err := merkle.Build(8453, model.PeriodMonthly, epochStart, shuffled)
		Expect(err).NotTo(HaveOccurred())

		Expect(tree1.Root()).To(Equal(tree2.Root()))
	})

	It("totals all committed amounts", func() {
		slots := []model.WinnerSlot{
			slotFixture(model.CategoryBiggestHit, 1, "0x1111111111111111111111111111111111111111", 100),
			slotFixture(model.CategoryBiggestHit, 2, "0x2222222222222222222222222222222222222222", 60),
		}
		tree, err := merkle.Build(8453, model.PeriodMonthly, epochStart, slots)
		Expect(err).NotTo(HaveOccurred())

		Expect(tree.TotalAmount().Int64()).To(Equal(int64(160)))
	})

	It("rejects a proof against the wrong root", func() {
		slots := []model.WinnerSlot{
			slotFixture(model.CategoryBiggestHit, 1, "0x1111111111111111111111111111111111111111", 100),
			slotFixture(model.CategoryBiggestHit, 2, "0x2222222222222222222222222222222222222222", 60),
		}
		tampered := []model.WinnerSlot{
			slotFixture(model.CategoryBiggestHit, 1, "0x1111111111111111111111111111111111111111", 101),
			slotFixture(model.CategoryBiggestHit, 2, "0x2222222222222222222222222222222222222222", 60),
		}

		tree, err := merkle.Build(8453, model.PeriodMonthly, epochStart, slots)
		Expect(err).NotTo(HaveOccurred())
		other, err := merkle.Build(8453, model.PeriodMonthly, epochStart, tampered)
		Expect(err).NotTo(HaveOccurred())

		leaf, err := tree.Leaf(slots[0].SlotID)
		Expect(err).NotTo(HaveOccurred())
		Expect(merkle.Verify(other.Root(), leaf.Hash, tree.Proof(leaf.Index))).To(BeFalse())
	})

	It("reports a missing leaf", func() {
		slots := []model.WinnerSlot{
			slotFixture(model.CategoryBiggestHit, 1, "0x1111111111111111111111111111111111111111", 100),
		}
		tree, err := merkle.Build(8453, model.PeriodMonthly, epochStart, slots)
		Expect(err).NotTo(HaveOccurred())

		missing := slots[0].SlotID
		missing.Rank = 2
		_, err = tree.Leaf(missing)
		Expect(err).To(MatchError(merkle.ErrLeafNotFound))
	})
})

var _ = Describe("EpochID", func() {
	It("is deterministic and distinct per period and epoch", func() {
		weekly := merkle.EpochID(8453, model.PeriodWeekly, epochStart)
		monthly := merkle.EpochID(8453, model.PeriodMonthly, epochStart)
		later := merkle.EpochID(8453, model.PeriodMonthly, epochStart.AddDate(0, 1, 0))

		Expect(weekly).NotTo(Equal(monthly))
		Expect(monthly).NotTo(Equal(later))
		Expect(merkle.EpochID(8453, model.PeriodMonthly, epochStart)).To(Equal(monthly))
	})
})
