package config_test

import (
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"memebattles/internal/config"
)

var _ = Describe("NewApp", func() {
	required := map[string]string{
		"API_PORT":          "9205",
		"ETH_NODE_URL":      "http://localhost:8545",
		"DB_CONNECTION_URL": "postgres://localhost:5432/league",
		"JWT_SECRET":        "test-secret",
		"VAULT_ADDRESS":     "0xaaaa000000000000000000000000000000000aaa",
		"CHAIN_IDS":         "8453,1",
	}
	optional := []string{
		"PROTOCOL_FEE_BPS",
		"LEAGUE_FEE_BPS",
		"WEEKLY_BUDGET_BPS",
		"FINALIZE_CRON",
		"SWEEP_CRON",
	}

	BeforeEach(func() {
		for key, value := range required {
			Expect(os.Setenv(key, value)).To(Succeed())
			DeferCleanup(os.Unsetenv, key)
		}
		for _, key := range optional {
			Expect(os.Unsetenv(key)).To(Succeed())
		}
	})

	It("applies the fee and schedule defaults", func() {
		app, err := config.NewApp()

		Expect(err).NotTo(HaveOccurred())
		Expect(app.ChainIDs).To(Equal([]int64{8453, 1}))
		Expect(app.ProtocolFeeBps).To(Equal(int64(200)))
		Expect(app.LeagueFeeBps).To(Equal(int64(75)))
		Expect(app.WeeklyBudgetBps).To(Equal(int64(6000)))
		Expect(app.MonthlyBudgetBps).To(Equal(int64(4000)))
		Expect(app.FinalizeCron).To(Equal("@hourly"))
		Expect(app.SweepCron).To(Equal("@daily"))
	})

	It("fails when a required variable is missing", func() {
		Expect(os.Unsetenv("JWT_SECRET")).To(Succeed())

		_, err := config.NewApp()

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("JWT_SECRET"))
	})

	DescribeTable("rejects fee rates outside [0, 10000)",
		func(value string) {
			Expect(os.Setenv("PROTOCOL_FEE_BPS", value)).To(Succeed())
			DeferCleanup(os.Unsetenv, "PROTOCOL_FEE_BPS")

			_, err := config.NewApp()

			Expect(err).To(MatchError(ContainSubstring("PROTOCOL_FEE_BPS")))
		},
		Entry("negative", "-1"),
		// gross reconstruction divides by (10000 - fee), so the full
		// 10000 would divide by zero
		Entry("full ten thousand", "10000"),
		Entry("above the scale", "10001"),
	)

	It("accepts a fee rate just under the scale", func() {
		Expect(os.Setenv("PROTOCOL_FEE_BPS", "9999")).To(Succeed())
		DeferCleanup(os.Unsetenv, "PROTOCOL_FEE_BPS")

		app, err := config.NewApp()

		Expect(err).NotTo(HaveOccurred())
		Expect(app.ProtocolFeeBps).To(Equal(int64(9999)))
	})
})
