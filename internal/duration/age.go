package duration

import (
	"time"

	"github.com/tartampluch/go-koyomi/internal/calendar"
)

// AgeResult describes how old someone born on a date is on another date.
type AgeResult struct {
	Years                 int           `json:"years"`
	Months                int           `json:"months"`
	Days                  int           `json:"days"`
	TotalDays             int           `json:"totalDays"`
	TotalMonths           int           `json:"totalMonths"`
	NextBirthday          calendar.Date `json:"nextBirthday"`
	NextAge               int           `json:"nextAge"`
	DaysUntilNextBirthday int           `json:"daysUntilNextBirthday"`
}

// Age computes the age on date on of someone born on birth.
// It returns false when birth is after on.
func Age(birth, on calendar.Date) (AgeResult, bool) {
	if birth.After(on) {
		return AgeResult{}, false
	}

	y := on.Year - birth.Year
	if anniversary(birth, on.Year).After(on) {
		y--
	}
	// Months and days count from the clamped anniversary, which for a Feb 29
	// birth in a common year is Feb 28.
	anchor := birth.AddYears(y)
	extra, m, d := Decompose(anchor, on)
	m += extra * 12
	if m >= 12 {
		m = 11
		d = anchor.AddMonths(m).DaysUntil(on)
	}
	next, nextAge := NextBirthday(on, birth, true)

	return AgeResult{
		Years:                 y,
		Months:                m,
		Days:                  d,
		TotalDays:             birth.DaysUntil(on),
		TotalMonths:           y*12 + m,
		NextBirthday:          next,
		NextAge:               nextAge,
		DaysUntilNextBirthday: on.DaysUntil(next),
	}, true
}

// NextBirthday returns the next occurrence of birth on or after today, and the
// age reached on it (0 when the birth year is unknown).
// A Feb 29 birthday falls on Mar 1 in common years.
func NextBirthday(today, birth calendar.Date, yearKnown bool) (calendar.Date, int) {
	candidate := anniversary(birth, today.Year)
	if candidate.Before(today) {
		candidate = anniversary(birth, today.Year+1)
	}

	age := 0
	if yearKnown {
		age = candidate.Year - birth.Year
	}
	return candidate, age
}

// anniversary returns the birthday of birth in year. time.Date normalizes
// Feb 29 to Mar 1 in common years, and the age increments on that day.
func anniversary(birth calendar.Date, year int) calendar.Date {
	return calendar.FromTime(time.Date(year, birth.Month, birth.Day, 0, 0, 0, 0, time.UTC))
}

// MilestoneAge is the day a given age is reached.
type MilestoneAge struct {
	Age    int           `json:"age"`
	Date   calendar.Date `json:"date"`
	IsPast bool          `json:"isPast"`
}

// MilestoneAges lists when each age in ages is reached, relative to today.
func MilestoneAges(birth calendar.Date, ages []int, today calendar.Date) []MilestoneAge {
	out := make([]MilestoneAge, 0, len(ages))
	for _, a := range ages {
		date := birth.AddYears(a)
		out = append(out, MilestoneAge{Age: a, Date: date, IsPast: date.Before(today)})
	}
	return out
}
