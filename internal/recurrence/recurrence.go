// Package recurrence expands weekly and monthly patterns into concrete dates
// over a bounded range.
package recurrence

import (
	"time"

	"github.com/tartampluch/go-koyomi/internal/calendar"
)

// Kind names a pattern variant.
type Kind string

const (
	KindWeekly         Kind = "weekly"
	KindMonthlyDate    Kind = "monthly-date"
	KindMonthlyWeekday Kind = "monthly-weekday"
)

// Pattern is a closed set of recurrence rules: only the types of this
// package can implement it.
type Pattern interface {
	Kind() Kind
	valid() bool
	occurrences(r calendar.Range) []calendar.Date
}

// Weekly repeats on one weekday every week.
type Weekly struct {
	Weekday time.Weekday `json:"weekday"`
}

// MonthlyByDate repeats on a day of the month. Months without that day
// (the 31st in April, the 30th in February) are skipped, not clamped.
type MonthlyByDate struct {
	Day int `json:"day"`
}

// MonthlyByNthWeekday repeats on the nth weekday of each month, e.g. the
// second Tuesday. Months without a fifth occurrence are skipped.
type MonthlyByNthWeekday struct {
	Weekday time.Weekday `json:"weekday"`
	Nth     int          `json:"nth"`
}

func (Weekly) Kind() Kind              { return KindWeekly }
func (MonthlyByDate) Kind() Kind       { return KindMonthlyDate }
func (MonthlyByNthWeekday) Kind() Kind { return KindMonthlyWeekday }

func validWeekday(w time.Weekday) bool { return w >= time.Sunday && w <= time.Saturday }

func (p Weekly) valid() bool        { return validWeekday(p.Weekday) }
func (p MonthlyByDate) valid() bool { return p.Day >= 1 && p.Day <= 31 }
func (p MonthlyByNthWeekday) valid() bool {
	return validWeekday(p.Weekday) && p.Nth >= 1 && p.Nth <= 5
}

func (p Weekly) first(r calendar.Range) calendar.Date {
	return r.Start.AddDays(calendar.Mod(int(p.Weekday)-int(r.Start.Weekday()), 7))
}

func (p Weekly) occurrences(r calendar.Range) []calendar.Date {
	var out []calendar.Date
	for d := p.first(r); !d.After(r.End); d = d.AddDays(7) {
		out = append(out, d)
	}
	return out
}

func (p MonthlyByDate) occurrences(r calendar.Range) []calendar.Date {
	var out []calendar.Date
	for m := r.Start.FirstOfMonth(); !m.After(r.End); m = m.AddMonths(1) {
		d := calendar.New(m.Year, m.Month, p.Day)
		if d.IsValid() && r.Contains(d) {
			out = append(out, d)
		}
	}
	return out
}

func (p MonthlyByNthWeekday) occurrences(r calendar.Range) []calendar.Date {
	var out []calendar.Date
	for m := r.Start.FirstOfMonth(); !m.After(r.End); m = m.AddMonths(1) {
		d, ok := calendar.NthWeekday(m.Year, m.Month, p.Weekday, p.Nth)
		if ok && r.Contains(d) {
			out = append(out, d)
		}
	}
	return out
}

// Request describes a bounded expansion.
type Request struct {
	Start   calendar.Date
	End     calendar.Date
	Pattern Pattern
}

// Result holds the generated dates in ascending order.
type Result struct {
	Dates []calendar.Date `json:"dates"`
	Count int             `json:"count"`
}

func (r Request) usable() bool {
	return r.Pattern != nil && r.Pattern.valid() && !r.End.Before(r.Start)
}

// Generate expands the pattern over [Start, End]. There is no volume limit
// here; callers check Estimate first. An inverted range or an out-of-range
// pattern field yields no dates.
func Generate(req Request) Result {
	dates := []calendar.Date{}
	if req.usable() {
		dates = append(dates, req.Pattern.occurrences(calendar.Range{Start: req.Start, End: req.End})...)
	}
	return Result{Dates: dates, Count: len(dates)}
}

// Estimate returns the number of dates Generate would produce without
// allocating them.
func Estimate(req Request) int {
	if !req.usable() {
		return 0
	}
	r := calendar.Range{Start: req.Start, End: req.End}
	switch p := req.Pattern.(type) {
	case Weekly:
		first := p.first(r)
		if first.After(r.End) {
			return 0
		}
		return first.DaysUntil(r.End)/7 + 1
	case MonthlyByDate:
		n := 0
		for m := r.Start.FirstOfMonth(); !m.After(r.End); m = m.AddMonths(1) {
			if d := calendar.New(m.Year, m.Month, p.Day); d.IsValid() && r.Contains(d) {
				n++
			}
		}
		return n
	case MonthlyByNthWeekday:
		n := 0
		for m := r.Start.FirstOfMonth(); !m.After(r.End); m = m.AddMonths(1) {
			if d, ok := calendar.NthWeekday(m.Year, m.Month, p.Weekday, p.Nth); ok && r.Contains(d) {
				n++
			}
		}
		return n
	}
	return 0
}

// ParsePattern validates raw input. weekday is 0-6 (Sunday = 0), day 1-31 and
// nth 1-5; only the fields used by kind are checked.
func ParsePattern(kind string, weekday, day, nth int) (Pattern, bool) {
	var p Pattern
	switch Kind(kind) {
	case KindWeekly:
		p = Weekly{Weekday: time.Weekday(weekday)}
	case KindMonthlyDate:
		p = MonthlyByDate{Day: day}
	case KindMonthlyWeekday:
		p = MonthlyByNthWeekday{Weekday: time.Weekday(weekday), Nth: nth}
	default:
		return nil, false
	}
	if !p.valid() {
		return nil, false
	}
	return p, true
}
