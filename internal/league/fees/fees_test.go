package fees_test

import (
	"math/big"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"memebattles/internal/league/fees"
	"memebattles/internal/league/model"
)

var _ = Describe("Inverter", func() {
	var inverter *fees.Inverter

	BeforeEach(func() {
		inverter = fees.NewInverter(zap.NewNop().Sugar(), 200, 75)
	})

	Describe("Fee", func() {
		It("floors the bps product", func() {
			Expect(fees.Fee(big.NewInt(10000), 200).Int64()).To(Equal(int64(200)))
			Expect(fees.Fee(big.NewInt(9999), 200).Int64()).To(Equal(int64(199)))
			Expect(fees.Fee(big.NewInt(49), 200).Int64()).To(Equal(int64(0)))
		})
	})

	Describe("Gross", func() {
		It("recovers the exact gross for every buy amount in a dense range", func() {
			for gross := int64(1); gross <= 5000; gross++ {
				g := big.NewInt(gross)
				net := fees.NetFromGross(g, model.SideBuy, 200)
				recovered := inverter.Gross(net, model.SideBuy)

				Expect(fees.NetFromGross(recovered, model.SideBuy, 200).Cmp(net)).To(Equal(0))
			}
		})

		It("recovers the exact gross for every sell amount in a dense range", func() {
			for gross := int64(1); gross <= 5000; gross++ {
				g := big.NewInt(gross)
				net := fees.NetFromGross(g, model.SideSell, 200)
				recovered := inverter.Gross(net, model.SideSell)

				Expect(fees.NetFromGross(recovered, model.SideSell, 200).Cmp(net)).To(Equal(0))
			}
		})

		It("round-trips a large wei-scale buy", func() {
			gross, ok := new(big.Int).SetString("123456789012345678901", 10)
			Expect(ok).To(BeTrue())

			net := fees.NetFromGross(gross, model.SideBuy, 200)
			recovered := inverter.Gross(net, model.SideBuy)

			Expect(fees.NetFromGross(recovered, model.SideBuy, 200).Cmp(net)).To(Equal(0))
		})

		It("falls back to the continuous candidate when no exact preimage exists", func() {
			// net 101 on a buy has no exact gross at 200 bps: gross 99 nets
			// 100 and gross 100 nets 102
			recovered := inverter.Gross(big.NewInt(101), model.SideBuy)

			Expect(recovered.Int64()).To(Equal(int64(99)))
		})
	})

	Describe("LeagueFee", func() {
		It("takes the league cut of the recovered gross", func() {
			// gross 10000: buyer pays net 10200, league fee = 75 bps of 10000
			fee := inverter.LeagueFee(big.NewInt(10200), model.SideBuy)

			Expect(fee.Int64()).To(Equal(int64(75)))
		})

		It("is zero for dust trades below the bps floor", func() {
			fee := inverter.LeagueFee(big.NewInt(50), model.SideBuy)

			Expect(fee.Int64()).To(Equal(int64(0)))
		})
	})
})
