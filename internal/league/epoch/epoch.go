package epoch

import (
	"time"

	"memebattles/internal/league/model"
)

// Window is one competition epoch. Start/End are half-open UTC boundaries.
// RangeEnd caps trade aggregation: "now" while the epoch is live, End once it
// has completed.
type Window struct {
	Start    time.Time
	End      time.Time
	RangeEnd time.Time
	IsLive   bool
}

// At computes the epoch window for a period at the given offset back from
// now. Offset 0 is the live epoch, 1 the most recently completed one, and so
// on. Pure and fully deterministic given now; all math is UTC.
func At(period model.Period, offset int, now time.Time) Window {
	now = now.UTC()

	var start, end time.Time
	switch period {
	case model.PeriodMonthly:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		start = first.AddDate(0, -offset, 0)
		end = start.AddDate(0, 1, 0)
	default:
		monday := mostRecentMonday(now)
		start = monday.AddDate(0, 0, -7*offset)
		end = start.AddDate(0, 0, 7)
	}

	window := Window{
		Start:  start,
		End:    end,
		IsLive: offset == 0,
	}
	if window.IsLive {
		window.RangeEnd = now
	} else {
		window.RangeEnd = end
	}
	return window
}

// Containing returns the epoch window that contains the instant t.
func Containing(period model.Period, t time.Time) Window {
	return At(period, 0, t)
}

// Next returns the epoch window immediately after w.
func Next(period model.Period, w Window) Window {
	return Containing(period, w.End)
}

func mostRecentMonday(now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	// Weekday() has Sunday as 0; shift so Monday is 0
	back := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -back)
}
