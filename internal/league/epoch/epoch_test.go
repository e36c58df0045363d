package epoch_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"memebattles/internal/league/epoch"
	"memebattles/internal/league/model"
)

var _ = Describe("At", func() {
	var now time.Time

	BeforeEach(func() {
		// Wednesday, 2025-06-18 15:04:05 UTC
		now = time.Date(2025, 6, 18, 15, 4, 5, 0, time.UTC)
	})

	Describe("weekly windows", func() {
		It("starts the live epoch on the most recent Monday at midnight UTC", func() {
			window := epoch.At(model.PeriodWeekly, 0, now)

			Expect(window.Start).To(Equal(time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)))
			Expect(window.End).To(Equal(time.Date(2025, 6, 23, 0, 0, 0, 0, time.UTC)))
			Expect(window.IsLive).To(BeTrue())
			Expect(window.RangeEnd).To(Equal(now))
		})

		It("steps back seven days per offset", func() {
			window := epoch.At(model.PeriodWeekly, 2, now)

			Expect(window.Start).To(Equal(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)))
			Expect(window.End).To(Equal(time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)))
			Expect(window.IsLive).To(BeFalse())
			Expect(window.RangeEnd).To(Equal(window.End))
		})

		It("treats a Monday as the start of its own epoch", func() {
			monday := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
			window := epoch.At(model.PeriodWeekly, 0, monday)

			Expect(window.Start).To(Equal(monday))
		})

		It("treats a Sunday as the tail of the previous Monday's epoch", func() {
			sunday := time.Date(2025, 6, 22, 23, 59, 59, 0, time.UTC)
			window := epoch.At(model.PeriodWeekly, 0, sunday)

			Expect(window.Start).To(Equal(time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)))
		})

		It("normalizes a non-UTC now to UTC boundaries", func() {
			offsetZone := time.FixedZone("UTC+9", 9*3600)
			local := time.Date(2025, 6, 16, 5, 0, 0, 0, offsetZone) // Sunday 20:00 UTC
			window := epoch.At(model.PeriodWeekly, 0, local)

			Expect(window.Start).To(Equal(time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)))
		})
	})

	Describe("monthly windows", func() {
		It("starts the live epoch on the first of the month", func() {
			window := epoch.At(model.PeriodMonthly, 0, now)

			Expect(window.Start).To(Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))
			Expect(window.End).To(Equal(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)))
			Expect(window.IsLive).To(BeTrue())
		})

		It("steps back whole calendar months per offset", func() {
			window := epoch.At(model.PeriodMonthly, 3, now)

			Expect(window.Start).To(Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
			Expect(window.End).To(Equal(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)))
		})

		It("crosses year boundaries", func() {
			window := epoch.At(model.PeriodMonthly, 6, now)

			Expect(window.Start).To(Equal(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)))
			Expect(window.End).To(Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
		})
	})
})

var _ = Describe("Containing", func() {
	It("returns the window holding the instant", func() {
		t := time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC) // Sunday
		window := epoch.Containing(model.PeriodWeekly, t)

		Expect(window.Start).To(Equal(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)))
		Expect(window.End).To(Equal(time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)))
	})
})

var _ = Describe("Next", func() {
	It("returns the immediately following weekly window", func() {
		current := epoch.At(model.PeriodWeekly, 1, time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC))
		next := epoch.Next(model.PeriodWeekly, current)

		Expect(next.Start).To(Equal(current.End))
		Expect(next.End).To(Equal(current.End.AddDate(0, 0, 7)))
	})

	It("returns the immediately following monthly window", func() {
		current := epoch.At(model.PeriodMonthly, 1, time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC))
		next := epoch.Next(model.PeriodMonthly, current)

		Expect(next.Start).To(Equal(current.End))
		Expect(next.End).To(Equal(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)))
	})
})
