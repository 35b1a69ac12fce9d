// Package calendar provides the civil date type shared by every engine package,
// together with parsing, validation, weekday naming and sorting helpers.
package calendar

import (
	"encoding/json"
	"fmt"
	"iter"
	"time"

	"github.com/tartampluch/go-koyomi/internal/config"
)

// Date is a civil calendar date with no time zone.
// The zero value is not a valid date.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// New builds a Date from a wall-clock triple without validating it.
func New(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// FromTime extracts the wall-clock date of t in its own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current date as seen by the clock.
func Today(c Clock) Date {
	return FromTime(c.Now())
}

// Time returns midnight UTC of the date.
// Invalid dates are normalized by the time package.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// IsValid reports whether the triple names a real day of the proleptic Gregorian calendar.
func (d Date) IsValid() bool {
	if d.Month < time.January || d.Month > time.December {
		return false
	}
	return d.Day >= 1 && d.Day <= DaysInMonth(d.Year, d.Month)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Weekday returns the day of the week (Sunday = 0).
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// AddDays returns the date n days later (n may be negative).
func (d Date) AddDays(n int) Date {
	return FromTime(d.Time().AddDate(0, 0, n))
}

// AddMonths adds n calendar months. When the target month is shorter the
// day is clamped to its last day, so Jan 31 + 1 month is Feb 28 (or 29).
func (d Date) AddMonths(n int) Date {
	total := int(d.Month) - 1 + n
	year := d.Year + floorDiv(total, 12)
	month := time.Month(Mod(total, 12) + 1)
	day := min(d.Day, DaysInMonth(year, month))
	return Date{Year: year, Month: month, Day: day}
}

// AddYears adds n years with the same clamping as AddMonths (Feb 29 becomes Feb 28).
func (d Date) AddYears(n int) Date {
	return d.AddMonths(12 * n)
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after o.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }
func (d Date) Equal(o Date) bool  { return d == o }

// Between reports whether d lies in [from, to].
func (d Date) Between(from, to Date) bool {
	return !d.Before(from) && !d.After(to)
}

// DaysUntil returns the signed number of days from d to o.
func (d Date) DaysUntil(o Date) int {
	return int(o.dayNumber() - d.dayNumber())
}

// DaysBetween returns the signed number of days from a to b.
func DaysBetween(a, b Date) int {
	return a.DaysUntil(b)
}

func (d Date) dayNumber() int64 {
	return d.Time().Unix() / 86400
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Time().Format(config.DateFormatFullDash)
}

// MarshalJSON encodes the date as a YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts a strict YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse(config.DateFormatFullDash, s)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrDateParse, err)
	}
	*d = FromTime(t)
	return nil
}

// FirstOfMonth returns day 1 of the date's month.
func (d Date) FirstOfMonth() Date {
	return Date{Year: d.Year, Month: d.Month, Day: 1}
}

// LastOfMonth returns the last day of the date's month.
func (d Date) LastOfMonth() Date {
	return Date{Year: d.Year, Month: d.Month, Day: DaysInMonth(d.Year, d.Month)}
}

// Range is an inclusive span of days. Callers keep Start <= End.
type Range struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// IsValid reports whether both ends are valid and ordered.
func (r Range) IsValid() bool {
	return ValidRange(r.Start, r.End)
}

// Contains reports whether d lies within the range.
func (r Range) Contains(d Date) bool {
	return d.Between(r.Start, r.End)
}

// Days yields every date from Start to End inclusive.
// An inverted range yields nothing.
func (r Range) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := r.Start; !d.After(r.End); d = d.AddDays(1) {
			if !yield(d) {
				return
			}
		}
	}
}

// Len returns the inclusive number of days, or 0 for an inverted range.
func (r Range) Len() int {
	if r.End.Before(r.Start) {
		return 0
	}
	return r.Start.DaysUntil(r.End) + 1
}

// ValidRange reports whether start and end are valid dates with start <= end.
func ValidRange(start, end Date) bool {
	return start.IsValid() && end.IsValid() && !start.After(end)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
