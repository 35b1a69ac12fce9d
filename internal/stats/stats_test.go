package stats_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-koyomi/internal/calendar"
	"github.com/tartampluch/go-koyomi/internal/holiday"
	"github.com/tartampluch/go-koyomi/internal/stats"
)

func d(s string) calendar.Date { return calendar.MustParse(s) }

func TestRange_January2025(t *testing.T) {
	s, ok := stats.Range(d("2025-01-01"), d("2025-01-31"), holiday.Rules{})
	require.True(t, ok)

	assert.Equal(t, 31, s.TotalDays)
	assert.Equal(t, 23, s.Weekdays)
	assert.Equal(t, 8, s.Weekends)
	assert.Equal(t, 2, s.Holidays)
	assert.Equal(t, 21, s.BusinessDays)
	assert.Equal(t, s.TotalDays, s.Weekdays+s.Weekends)

	require.NotNil(t, s.FirstBusinessDay)
	assert.Equal(t, d("2025-01-02"), *s.FirstBusinessDay)
	assert.Equal(t, d("2025-01-31"), *s.LastBusinessDay)

	want := []stats.WeekdayCount{
		{Weekday: "日", Days: 4}, {Weekday: "月", Days: 4}, {Weekday: "火", Days: 4},
		{Weekday: "水", Days: 5}, {Weekday: "木", Days: 5}, {Weekday: "金", Days: 5}, {Weekday: "土", Days: 4},
	}
	assert.Equal(t, want, s.ByWeekday)
	assert.Equal(t, []calendar.Date{d("2025-01-01")}, s.MonthStarts)
	assert.Equal(t, []calendar.Date{d("2025-01-31")}, s.MonthEnds)
}

func TestRange_MonthHistogramIsClipped(t *testing.T) {
	s, ok := stats.Range(d("2024-01-20"), d("2024-03-05"), holiday.Rules{})
	require.True(t, ok)
	assert.Equal(t, []stats.MonthCount{
		{Month: "2024年1月", Days: 12},
		{Month: "2024年2月", Days: 29},
		{Month: "2024年3月", Days: 5},
	}, s.ByMonth)
	assert.Equal(t, []calendar.Date{d("2024-02-01"), d("2024-03-01")}, s.MonthStarts)
	assert.Equal(t, []calendar.Date{d("2024-01-31"), d("2024-02-29")}, s.MonthEnds)
}

func TestRange_Invalid(t *testing.T) {
	_, ok := stats.Range(d("2025-02-01"), d("2025-01-01"), holiday.Rules{})
	assert.False(t, ok)

	s, ok := stats.Range(d("2025-01-04"), d("2025-01-05"), holiday.Rules{})
	require.True(t, ok)
	assert.Nil(t, s.FirstBusinessDay, "A weekend-only range has no business day")
}

func TestCompareDates(t *testing.T) {
	in := []calendar.Date{
		d("2025-03-01"), d("2024-12-31"), d("2025-03-01"), calendar.New(2025, 2, 30), d("2025-03-01"), d("2024-12-31"),
	}
	res := stats.CompareDates(in)
	require.True(t, res.IsValid)
	assert.Len(t, res.Dates, 5)
	assert.Equal(t, d("2024-12-31"), *res.Earliest)
	assert.Equal(t, d("2025-03-01"), *res.Latest)
	assert.Equal(t, []calendar.Date{d("2024-12-31"), d("2025-03-01")}, res.Duplicates)

	// Each duplicate appears once and no two adjacent entries match.
	for i := 1; i < len(res.Duplicates); i++ {
		assert.NotEqual(t, res.Duplicates[i-1], res.Duplicates[i])
	}
}

func TestCompareDates_NoneValid(t *testing.T) {
	res := stats.CompareDates([]calendar.Date{calendar.New(2025, 13, 1)})
	assert.False(t, res.IsValid)
	assert.Nil(t, res.Earliest)
	assert.Empty(t, res.Sorted)
}

func TestCompareDateStrings(t *testing.T) {
	res := stats.CompareDateStrings([]string{"2025/01/02", "garbage", "2025-01-01", ""})
	require.True(t, res.IsValid)
	assert.Equal(t, []calendar.Date{d("2025-01-01"), d("2025-01-02")}, res.Sorted)
	assert.Empty(t, res.Duplicates)
}

func TestComputeAnniversaries(t *testing.T) {
	res, ok := stats.ComputeAnniversaries(d("2024-01-01"), d("2025-01-01"), 10)
	require.True(t, ok)
	assert.Equal(t, 366, res.DaysSinceStart)

	require.Len(t, res.Past, 6)
	assert.Equal(t, "300日記念日", res.Past[0].Label, "Past is most recent first")
	assert.Equal(t, "1週間記念日", res.Past[5].Label)

	require.Len(t, res.Upcoming, 10)
	assert.Equal(t, "1周年", res.Upcoming[0].Label, "The target day counts as upcoming")
	assert.Equal(t, d("2025-01-01"), res.Upcoming[0].Date)
	assert.Equal(t, "500日記念日", res.Upcoming[1].Label)
	assert.Equal(t, d("2031-01-01"), res.Upcoming[9].Date)

	require.NotNil(t, res.NextMilestone)
	assert.Equal(t, "1周年", res.NextMilestone.Label)
}

func TestMilestones_Labels(t *testing.T) {
	all := stats.Milestones(d("2000-02-29"), 50)
	labels := map[string]stats.Anniversary{}
	for _, a := range all {
		labels[a.Label] = a
	}

	assert.True(t, labels["25周年（銀婚式）"].IsSpecial)
	assert.True(t, labels["30周年（真珠婚式）"].IsSpecial)
	assert.True(t, labels["50周年（金婚式）"].IsSpecial)
	assert.False(t, labels["2周年"].IsSpecial)
	assert.True(t, labels["15周年"].IsSpecial)
	assert.Equal(t, d("2001-02-28"), labels["1周年"].Date, "Feb 29 clamps in common years")
	assert.Equal(t, d("2004-02-29"), labels["4周年"].Date)
	assert.Len(t, all, 62)

	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].Date.Before(all[i-1].Date))
	}
}
