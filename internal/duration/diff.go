// Package duration measures the distance between civil dates: day counts,
// calendar-aware year/month/day decompositions, ages and date shifting.
package duration

import "github.com/tartampluch/go-koyomi/internal/calendar"

// Options controls how the endpoints of a Diff are counted.
type Options struct {
	IncludeStart    bool `json:"includeStart"`
	IncludeEnd      bool `json:"includeEnd"`
	ExcludeWeekends bool `json:"excludeWeekends"`
}

// DefaultOptions counts both endpoints.
var DefaultOptions = Options{IncludeStart: true, IncludeEnd: true}

// Result is the outcome of Diff.
type Result struct {
	TotalDays     int `json:"totalDays"`
	Weeks         int `json:"weeks"`
	RemainingDays int `json:"remainingDays"`
	Years         int `json:"years"`
	Months        int `json:"months"`
	Days          int `json:"days"`

	// BusinessDays is set only when Options.ExcludeWeekends is true.
	BusinessDays *int `json:"businessDays,omitempty"`
}

// Diff measures the range [start, end]. Excluding an endpoint moves it one
// day inward. When the adjusted range is empty (a single day with both
// endpoints excluded) every count is zero. Callers keep start <= end.
func Diff(start, end calendar.Date, opts Options) Result {
	from, to := start, end
	if !opts.IncludeStart {
		from = from.AddDays(1)
	}
	if !opts.IncludeEnd {
		to = to.AddDays(-1)
	}

	var res Result
	if opts.ExcludeWeekends {
		res.BusinessDays = new(int)
	}
	if to.Before(from) {
		return res
	}

	res.TotalDays = from.DaysUntil(to) + 1
	res.Weeks, res.RemainingDays = WeeksAndDays(res.TotalDays)
	res.Years, res.Months, res.Days = Decompose(from, to)

	if opts.ExcludeWeekends {
		*res.BusinessDays = countWeekdays(from, to)
	}
	return res
}

// WeeksAndDays splits a day count into whole weeks and leftover days.
func WeeksAndDays(totalDays int) (weeks, days int) {
	return totalDays / 7, totalDays % 7
}

// Decompose expresses the elapsed time from -> to as whole years, then whole
// months, then days. Each step re-anchors from the previous one with
// month-end clamping, so Jan 31 -> Feb 28 is exactly one month.
// It returns zeros when to is before from.
func Decompose(from, to calendar.Date) (years, months, days int) {
	if to.Before(from) {
		return 0, 0, 0
	}

	years = to.Year - from.Year
	if from.AddYears(years).After(to) {
		years--
	}
	anchor := from.AddYears(years)

	months = (to.Year-anchor.Year)*12 + int(to.Month) - int(anchor.Month)
	if anchor.AddMonths(months).After(to) {
		months--
	}
	anchor = anchor.AddMonths(months)

	return years, months, anchor.DaysUntil(to)
}

func countWeekdays(from, to calendar.Date) int {
	n := 0
	for day := range (calendar.Range{Start: from, End: to}).Days() {
		if !calendar.IsWeekend(day.Weekday()) {
			n++
		}
	}
	return n
}
