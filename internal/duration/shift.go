package duration

import (
	"strings"

	"github.com/tartampluch/go-koyomi/internal/calendar"
)

// Unit is the step of a Shift.
type Unit string

const (
	UnitDay   Unit = "day"
	UnitWeek  Unit = "week"
	UnitMonth Unit = "month"
	UnitYear  Unit = "year"
)

// ParseUnit accepts singular or plural English unit names.
func ParseUnit(s string) (Unit, bool) {
	switch u := Unit(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s")); u {
	case UnitDay, UnitWeek, UnitMonth, UnitYear:
		return u, true
	}
	return "", false
}

// ShiftResult is the outcome of Shift.
type ShiftResult struct {
	Date         calendar.Date `json:"date"`
	Weekday      string        `json:"weekday"`
	WeekdayShort string        `json:"weekdayShort"`
	DaysFromRef  int           `json:"daysFromReference"`
	IsPast       bool          `json:"isPast"`
	IsFuture     bool          `json:"isFuture"`
	IsToday      bool          `json:"isToday"`
}

// Shift moves base by amount units (negative amounts go back in time) and
// reports the result relative to ref, usually today. Month and year steps
// clamp to the end of shorter months.
func Shift(base calendar.Date, amount int, unit Unit, ref calendar.Date) ShiftResult {
	var out calendar.Date
	switch unit {
	case UnitWeek:
		out = base.AddDays(7 * amount)
	case UnitMonth:
		out = base.AddMonths(amount)
	case UnitYear:
		out = base.AddYears(amount)
	default:
		out = base.AddDays(amount)
	}

	w := int(out.Weekday())
	days := ref.DaysUntil(out)
	return ShiftResult{
		Date:         out,
		Weekday:      calendar.WeekdayName(w, false),
		WeekdayShort: calendar.WeekdayName(w, true),
		DaysFromRef:  days,
		IsPast:       days < 0,
		IsFuture:     days > 0,
		IsToday:      days == 0,
	}
}
