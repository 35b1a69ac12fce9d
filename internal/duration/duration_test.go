package duration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-koyomi/internal/calendar"
)

func d(s string) calendar.Date { return calendar.MustParse(s) }

func TestDiff(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		opts       Options
		want       Result
	}{
		{
			name:  "Same day inclusive",
			start: "2025-01-01", end: "2025-01-01",
			opts: DefaultOptions,
			want: Result{TotalDays: 1, RemainingDays: 1},
		},
		{
			name:  "Full year inclusive",
			start: "2025-01-01", end: "2025-12-31",
			opts: DefaultOptions,
			want: Result{TotalDays: 365, Weeks: 52, RemainingDays: 1, Months: 11, Days: 30},
		},
		{
			name:  "Exclusive end",
			start: "2025-01-01", end: "2025-01-15",
			opts: Options{IncludeStart: true},
			want: Result{TotalDays: 14, Weeks: 2, Days: 13},
		},
		{
			name:  "Years months days",
			start: "2022-10-21", end: "2025-01-31",
			opts: DefaultOptions,
			want: Result{TotalDays: 834, Weeks: 119, RemainingDays: 1, Years: 2, Months: 3, Days: 10},
		},
		{
			name:  "Single day with both ends excluded is empty",
			start: "2025-01-01", end: "2025-01-01",
			opts: Options{},
			want: Result{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Diff(d(tt.start), d(tt.end), tt.opts))
		})
	}
}

func TestDiff_BusinessDays(t *testing.T) {
	// 2025-01-06 is a Monday; two full weeks.
	res := Diff(d("2025-01-06"), d("2025-01-19"), Options{IncludeStart: true, IncludeEnd: true, ExcludeWeekends: true})
	require.NotNil(t, res.BusinessDays)
	assert.Equal(t, 10, *res.BusinessDays)
	assert.Equal(t, 14, res.TotalDays)

	empty := Diff(d("2025-01-06"), d("2025-01-06"), Options{ExcludeWeekends: true})
	require.NotNil(t, empty.BusinessDays)
	assert.Zero(t, *empty.BusinessDays)

	assert.Nil(t, Diff(d("2025-01-06"), d("2025-01-19"), DefaultOptions).BusinessDays)
}

func TestDecompose_MonthEnd(t *testing.T) {
	y, m, days := Decompose(d("2025-01-31"), d("2025-02-28"))
	assert.Equal(t, [3]int{0, 1, 0}, [3]int{y, m, days})

	y, m, days = Decompose(d("2024-02-29"), d("2025-02-28"))
	assert.Equal(t, [3]int{1, 0, 0}, [3]int{y, m, days})

	y, m, days = Decompose(d("2025-03-31"), d("2025-04-29"))
	assert.Equal(t, [3]int{0, 0, 29}, [3]int{y, m, days})
}

func TestWeeksAndDays(t *testing.T) {
	w, r := WeeksAndDays(23)
	assert.Equal(t, 3, w)
	assert.Equal(t, 2, r)
}

// TestNextBirthday verifies the next-occurrence logic used for ages and contacts.
// It covers standard dates, boundaries (end of year), and leap year complexities.
func TestNextBirthday(t *testing.T) {
	// Reference "today": June 15th, 2025 (Non-Leap Year)
	today := d("2025-06-15")

	tests := []struct {
		name         string
		birth        calendar.Date
		yearKnown    bool
		expectedDate calendar.Date
		expectedAge  int
	}{
		{"Birthday in the past (this year)", d("1990-01-01"), true, d("2026-01-01"), 36},
		{"Birthday in the future (this year)", d("1990-12-31"), true, d("2025-12-31"), 35},
		{"Birthday is today", d("1990-06-15"), true, d("2025-06-15"), 35},
		{"Year unknown", calendar.New(2000, 1, 1), false, d("2026-01-01"), 0},
		{"Leapling in a common year", d("2000-02-29"), true, d("2026-03-01"), 26},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, age := NextBirthday(today, tt.birth, tt.yearKnown)
			assert.Equal(t, tt.expectedDate, next)
			assert.Equal(t, tt.expectedAge, age, "Age calculation mismatch")
		})
	}
}

// TestNextBirthday_LeapYearContext checks that Feb 29 is kept when the target year is a leap year.
func TestNextBirthday_LeapYearContext(t *testing.T) {
	next, _ := NextBirthday(d("2024-01-01"), d("2000-02-29"), true)
	assert.Equal(t, d("2024-02-29"), next, "In a leap year, the birthday should be Feb 29, not Mar 1")
}

func TestAge(t *testing.T) {
	res, ok := Age(d("1990-08-20"), d("2025-06-15"))
	require.True(t, ok)
	assert.Equal(t, 34, res.Years)
	assert.Equal(t, 9, res.Months)
	assert.Equal(t, 26, res.Days)
	assert.Equal(t, 34*12+9, res.TotalMonths)
	assert.Equal(t, d("2025-08-20"), res.NextBirthday)
	assert.Equal(t, 35, res.NextAge)
	assert.Equal(t, 66, res.DaysUntilNextBirthday)
	assert.Equal(t, calendar.DaysBetween(d("1990-08-20"), d("2025-06-15")), res.TotalDays)

	_, ok = Age(d("2030-01-01"), d("2025-01-01"))
	assert.False(t, ok, "Birth after the reference date is rejected")
}

func TestAge_LeaplingAnniversary(t *testing.T) {
	birth := d("2000-02-29")

	res, ok := Age(birth, d("2001-02-28"))
	require.True(t, ok)
	assert.Equal(t, 0, res.Years, "The first birthday in a common year is Mar 1")
	assert.Equal(t, 11, res.Months)
	assert.Equal(t, 30, res.Days)
	assert.Equal(t, d("2001-03-01"), res.NextBirthday)
	assert.Equal(t, 1, res.NextAge)
	assert.Equal(t, 1, res.DaysUntilNextBirthday)

	res, ok = Age(birth, d("2001-03-01"))
	require.True(t, ok)
	assert.Equal(t, 1, res.Years)
	assert.Equal(t, 0, res.Months)
	assert.Equal(t, 1, res.Days, "Days count from the clamped Feb 28")
	assert.Equal(t, d("2001-03-01"), res.NextBirthday)
	assert.Equal(t, 1, res.NextAge)
	assert.Zero(t, res.DaysUntilNextBirthday)

	res, ok = Age(birth, d("2004-02-29"))
	require.True(t, ok)
	assert.Equal(t, 4, res.Years)
	assert.Zero(t, res.Months)
	assert.Zero(t, res.Days)
	assert.Equal(t, d("2004-02-29"), res.NextBirthday)
}

func TestMilestoneAges(t *testing.T) {
	got := MilestoneAges(d("2000-02-29"), []int{20, 60}, d("2025-01-01"))
	require.Len(t, got, 2)
	assert.Equal(t, d("2020-02-29"), got[0].Date)
	assert.True(t, got[0].IsPast)
	assert.Equal(t, d("2060-02-29"), got[1].Date)
	assert.False(t, got[1].IsPast)
}

func TestShift(t *testing.T) {
	ref := d("2025-01-31")

	res := Shift(ref, 1, UnitMonth, ref)
	assert.Equal(t, d("2025-02-28"), res.Date)
	assert.Equal(t, "金曜日", res.Weekday)
	assert.Equal(t, 28, res.DaysFromRef)
	assert.True(t, res.IsFuture)

	res = Shift(ref, -2, UnitWeek, ref)
	assert.Equal(t, d("2025-01-17"), res.Date)
	assert.True(t, res.IsPast)

	res = Shift(ref, 0, UnitDay, ref)
	assert.True(t, res.IsToday)

	res = Shift(d("2024-02-29"), 1, UnitYear, ref)
	assert.Equal(t, d("2025-02-28"), res.Date)
}

func TestParseUnit(t *testing.T) {
	for in, want := range map[string]Unit{"day": UnitDay, "Days": UnitDay, "weeks": UnitWeek, "month": UnitMonth, "years": UnitYear} {
		got, ok := ParseUnit(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got)
	}
	_, ok := ParseUnit("fortnight")
	assert.False(t, ok)
}
