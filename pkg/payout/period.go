package payout

import (
	"fmt"
	"time"
)

// Period is one settlement window: a half-open UTC interval [Start, End)
// covering a whole calendar month, tagged "YYYY-MM".
type Period struct {
	Start time.Time
	End   time.Time
	Tag   string
}

// Contains reports whether ts falls inside the window.
func (p Period) Contains(ts time.Time) bool {
	return !ts.Before(p.Start) && ts.Before(p.End)
}

// PreviousMonth returns the full calendar month before now, in UTC.
func PreviousMonth(now time.Time) Period {
	now = now.UTC()
	end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return monthPeriod(end.AddDate(0, -1, 0))
}

// PeriodForTag parses a "YYYY-MM" tag into its settlement window.
func PeriodForTag(tag string) (Period, error) {
	start, err := time.Parse("2006-01", tag)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period tag %q: expected YYYY-MM", tag)
	}
	return monthPeriod(start.UTC()), nil
}

func monthPeriod(start time.Time) Period {
	start = time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Period{
		Start: start,
		End:   start.AddDate(0, 1, 0),
		Tag:   start.Format("2006-01"),
	}
}

// MonthIndex returns the 1-based calendar-month index of the period relative
// to launch: the launch month itself is 1. Periods before launch return 0.
func (p Period) MonthIndex(launch time.Time) int {
	if launch.IsZero() || p.Start.Before(time.Date(launch.Year(), launch.Month(), 1, 0, 0, 0, 0, time.UTC)) {
		return 0
	}
	years := p.Start.Year() - launch.Year()
	months := int(p.Start.Month()) - int(launch.Month())
	return years*12 + months + 1
}
