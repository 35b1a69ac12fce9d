// Package business classifies days as working or non-working from a set of
// excluded weekdays and an explicit holiday set, and counts them over ranges.
package business

import (
	"time"

	"github.com/tartampluch/go-koyomi/internal/calendar"
)

// WeekdaySet is a bitmask of time.Weekday values.
type WeekdaySet uint8

// Weekends excludes Saturday and Sunday.
var Weekends = NewWeekdaySet(time.Saturday, time.Sunday)

// NewWeekdaySet builds a set from weekdays. Values outside 0-6 are ignored.
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, w := range days {
		if w >= time.Sunday && w <= time.Saturday {
			s |= 1 << w
		}
	}
	return s
}

// Has reports whether w is in the set.
func (s WeekdaySet) Has(w time.Weekday) bool {
	return s&(1<<w) != 0
}

// Weekdays lists the members in Sunday-first order.
func (s WeekdaySet) Weekdays() []time.Weekday {
	var out []time.Weekday
	for w := time.Sunday; w <= time.Saturday; w++ {
		if s.Has(w) {
			out = append(out, w)
		}
	}
	return out
}

// DateSet is a set of calendar days. Membership is by calendar-day equality.
type DateSet map[calendar.Date]struct{}

// NewDateSet builds a set from dates.
func NewDateSet(dates ...calendar.Date) DateSet {
	s := make(DateSet, len(dates))
	for _, d := range dates {
		s[d] = struct{}{}
	}
	return s
}

// Contains reports whether d is in the set. A nil set is empty.
func (s DateSet) Contains(d calendar.Date) bool {
	_, ok := s[d]
	return ok
}

// Add inserts dates into the set.
func (s DateSet) Add(dates ...calendar.Date) {
	for _, d := range dates {
		s[d] = struct{}{}
	}
}

// ParseHolidays reads a free-form list of dates separated by newlines or
// commas. Tokens that do not parse are silently dropped.
func ParseHolidays(text string) DateSet {
	return NewDateSet(calendar.ParseList(text)...)
}

// Options configures which days are not business days.
type Options struct {
	ExcludedWeekdays WeekdaySet
	Holidays         DateSet
}

// Reason classifies a single day.
type Reason int

const (
	Working Reason = iota
	ExcludedWeekday
	ExcludedHoliday
)

// Classify decides the status of a day. An excluded weekday wins over a
// holiday, so each day lands in exactly one bucket.
func Classify(d calendar.Date, opts Options) Reason {
	switch {
	case opts.ExcludedWeekdays.Has(d.Weekday()):
		return ExcludedWeekday
	case opts.Holidays.Contains(d):
		return ExcludedHoliday
	default:
		return Working
	}
}

// IsBusinessDay reports whether d is neither an excluded weekday nor a holiday.
func IsBusinessDay(d calendar.Date, opts Options) bool {
	return Classify(d, opts) == Working
}

// CountResult is the outcome of Count.
type CountResult struct {
	BusinessDays     int             `json:"businessDays"`
	Dates            []calendar.Date `json:"businessDateList"`
	ExcludedWeekends int             `json:"excludedWeekends"`
	ExcludedHolidays int             `json:"excludedHolidays"`
}

// Count walks [start, end] inclusive and classifies every day.
// Callers keep start <= end; an inverted range counts nothing.
func Count(start, end calendar.Date, opts Options) CountResult {
	res := CountResult{Dates: []calendar.Date{}}
	for day := range (calendar.Range{Start: start, End: end}).Days() {
		switch Classify(day, opts) {
		case ExcludedWeekday:
			res.ExcludedWeekends++
		case ExcludedHoliday:
			res.ExcludedHolidays++
		default:
			res.BusinessDays++
			res.Dates = append(res.Dates, day)
		}
	}
	return res
}

// Enumerate returns only the business days of [start, end].
func Enumerate(start, end calendar.Date, opts Options) []calendar.Date {
	return Count(start, end, opts).Dates
}

// AddBusinessDays returns the n-th business day after start (before it when
// n is negative). Zero returns start unchanged. It returns false when every
// weekday is excluded.
func AddBusinessDays(start calendar.Date, n int, opts Options) (calendar.Date, bool) {
	if len(opts.ExcludedWeekdays.Weekdays()) == 7 {
		return calendar.Date{}, false
	}
	step := 1
	if n < 0 {
		step, n = -1, -n
	}
	d := start
	for n > 0 {
		d = d.AddDays(step)
		if IsBusinessDay(d, opts) {
			n--
		}
	}
	return d, true
}
