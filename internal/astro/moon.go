// Package astro holds low-fidelity astronomical and almanac approximations:
// lunar age and phase, the 24 solar terms and the six-day rokuyo cycle.
package astro

import (
	"math"
	"time"

	"github.com/tartampluch/go-koyomi/internal/calendar"
)

const (
	// SynodicMonth is the mean lunar cycle in days.
	SynodicMonth = 29.530588

	// referenceNewMoon is the Julian day of the new moon of 2000-01-06 18:14 UTC.
	referenceNewMoon = 2451550.26
)

// Target ages used to look for the principal phases.
const (
	NewMoonAge      = 0.0
	FirstQuarterAge = 7.38
	FullMoonAge     = 14.77
	LastQuarterAge  = 22.15
)

// PhaseName is the Japanese name of one of the eight phases.
type PhaseName string

const (
	PhaseNew            PhaseName = "新月"
	PhaseWaxingCrescent PhaseName = "三日月"
	PhaseFirstQuarter   PhaseName = "上弦"
	PhaseWaxingGibbous  PhaseName = "十三夜"
	PhaseFull           PhaseName = "満月"
	PhaseWaningGibbous  PhaseName = "十六夜"
	PhaseLastQuarter    PhaseName = "下弦"
	PhaseWaningCrescent PhaseName = "二十六夜"
)

type phase struct {
	until       float64
	name        PhaseName
	emoji       string
	description string
}

// phases partitions the cycle by upper age bound. Ages past the last bound
// wrap back to the new moon.
var phases = []phase{
	{1.84, PhaseNew, "🌑", "月と太陽が同じ方向にあり、月が見えません"},
	{5.53, PhaseWaxingCrescent, "🌒", "細い月が西の空に見えます"},
	{9.23, PhaseFirstQuarter, "🌓", "月の右半分が光って見えます"},
	{12.92, PhaseWaxingGibbous, "🌔", "満月に近づき、月が丸く見えます"},
	{16.61, PhaseFull, "🌕", "月が完全に丸く光って見えます"},
	{20.31, PhaseWaningGibbous, "🌖", "満月を過ぎ、少し欠け始めます"},
	{24.00, PhaseLastQuarter, "🌗", "月の左半分が光って見えます"},
	{27.69, PhaseWaningCrescent, "🌘", "細い月が東の空に見えます"},
}

func phaseFor(age float64) phase {
	for _, p := range phases {
		if age < p.until {
			return p
		}
	}
	return phases[0]
}

// Sample is the lunar state at local midnight of a date.
type Sample struct {
	Date         calendar.Date `json:"date"`
	Age          float64       `json:"age"`
	Illumination float64       `json:"illumination"`
	Phase        PhaseName     `json:"phase"`
	Emoji        string        `json:"emoji"`
	Description  string        `json:"description"`
}

// julianDay returns the Julian day at 00:00 of d.
func julianDay(d calendar.Date) float64 {
	a := (14 - int(d.Month)) / 12
	y := d.Year + 4800 - a
	m := int(d.Month) + 12*a - 3
	jdn := d.Day + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045
	return float64(jdn) - 0.5
}

// MoonAge returns the days elapsed since the last mean new moon, in
// [0, SynodicMonth).
func MoonAge(d calendar.Date) float64 {
	return calendar.FMod(julianDay(d)-referenceNewMoon, SynodicMonth)
}

// Illumination returns the lit fraction of the disc in percent for a moon age.
func Illumination(age float64) float64 {
	return (1 - math.Cos(2*math.Pi*age/SynodicMonth)) / 2 * 100
}

// PhaseOf names the phase for a moon age.
func PhaseOf(age float64) PhaseName {
	return phaseFor(age).name
}

// MoonPhase samples the moon on d.
func MoonPhase(d calendar.Date) Sample {
	age := MoonAge(d)
	p := phaseFor(age)
	return Sample{
		Date:         d,
		Age:          age,
		Illumination: Illumination(age),
		Phase:        p.name,
		Emoji:        p.emoji,
		Description:  p.description,
	}
}

// MonthCalendar samples every day of a month.
func MonthCalendar(year int, month time.Month) []Sample {
	first := calendar.New(year, month, 1)
	if !first.IsValid() {
		return nil
	}
	out := make([]Sample, 0, 31)
	for d := range (calendar.Range{Start: first, End: first.LastOfMonth()}).Days() {
		out = append(out, MoonPhase(d))
	}
	return out
}

// NextPhaseDate returns the first date on or after d whose age reaches
// target, rounded to the nearest day.
func NextPhaseDate(d calendar.Date, target float64) calendar.Date {
	age := MoonAge(d)
	days := target - age
	if age > target {
		days = SynodicMonth - age + target
	}
	return d.AddDays(int(math.Round(days)))
}

// Upcoming lists the next principal phases after a date.
type Upcoming struct {
	Current      PhaseName     `json:"currentPhase"`
	NewMoon      calendar.Date `json:"nextNewMoon"`
	FirstQuarter calendar.Date `json:"nextFirstQuarter"`
	FullMoon     calendar.Date `json:"nextFullMoon"`
	LastQuarter  calendar.Date `json:"nextLastQuarter"`
}

// NextPhases returns the next new, first-quarter, full and last-quarter dates.
func NextPhases(d calendar.Date) Upcoming {
	return Upcoming{
		Current:      PhaseOf(MoonAge(d)),
		NewMoon:      NextPhaseDate(d, NewMoonAge),
		FirstQuarter: NextPhaseDate(d, FirstQuarterAge),
		FullMoon:     NextPhaseDate(d, FullMoonAge),
		LastQuarter:  NextPhaseDate(d, LastQuarterAge),
	}
}

// FullMoons lists the estimated full moons in [start, end].
func FullMoons(start, end calendar.Date) []calendar.Date {
	return phaseDates(start, end, FullMoonAge)
}

// NewMoons lists the estimated new moons in [start, end].
func NewMoons(start, end calendar.Date) []calendar.Date {
	return phaseDates(start, end, NewMoonAge)
}

// phaseDates steps from the first match by whole multiples of the synodic
// month so rounding does not accumulate.
func phaseDates(start, end calendar.Date, target float64) []calendar.Date {
	out := []calendar.Date{}
	if end.Before(start) {
		return out
	}
	first := NextPhaseDate(start, target)
	for k := 0; ; k++ {
		d := first.AddDays(int(math.Round(float64(k) * SynodicMonth)))
		if d.After(end) {
			return out
		}
		out = append(out, d)
	}
}
