package payout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPreviousMonth(t *testing.T) {
	now := time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC)
	p := PreviousMonth(now)
	require.Equal(t, "2026-02", p.Tag)
	require.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), p.Start)
	require.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), p.End)
}

func TestPreviousMonthAcrossYear(t *testing.T) {
	p := PreviousMonth(time.Date(2027, time.January, 2, 0, 0, 0, 0, time.UTC))
	require.Equal(t, "2026-12", p.Tag)
}

func TestPeriodForTag(t *testing.T) {
	p, err := PeriodForTag("2026-07")
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC), p.Start)
	require.Equal(t, time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC), p.End)

	_, err = PeriodForTag("july-2026")
	require.Error(t, err)
}

func TestPeriodContainsHalfOpen(t *testing.T) {
	p, err := PeriodForTag("2026-02")
	require.NoError(t, err)
	require.True(t, p.Contains(p.Start))
	require.True(t, p.Contains(p.End.Add(-time.Nanosecond)))
	require.False(t, p.Contains(p.End))
	require.False(t, p.Contains(p.Start.Add(-time.Nanosecond)))
}

func TestMonthIndex(t *testing.T) {
	launch := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		tag  string
		want int
	}{
		{"2026-01", 1},
		{"2026-02", 2},
		{"2026-03", 3},
		{"2026-12", 12},
		{"2027-01", 13},
		{"2025-12", 0},
	}
	for _, c := range cases {
		p, err := PeriodForTag(c.tag)
		require.NoError(t, err)
		require.Equal(t, c.want, p.MonthIndex(launch), "tag %s", c.tag)
	}
}

func TestMonthIndexZeroLaunch(t *testing.T) {
	p, err := PeriodForTag("2026-05")
	require.NoError(t, err)
	require.Equal(t, 0, p.MonthIndex(time.Time{}))
}
