// Package holiday computes Japanese national holidays from a rule table.
//
// Holidays are recomputed for each requested year; nothing is cached.
// An Overlay can substitute official Cabinet Office data for the years it
// covers and merge company-specific holidays on top.
package holiday

import (
	"slices"
	"time"

	"github.com/tartampluch/go-koyomi/internal/calendar"
)

// Kind tells how a holiday was produced.
type Kind string

const (
	Fixed      Kind = "fixed"
	Variable   Kind = "variable"
	Substitute Kind = "substitute"
	Official   Kind = "official"
	Custom     Kind = "custom"
)

// Holiday is a named non-working day.
type Holiday struct {
	Date calendar.Date `json:"date"`
	Name string        `json:"name"`
	Kind Kind          `json:"kind"`
}

// ForYear returns the national holidays of year sorted by date, including
// substitute holidays and citizens' holidays.
func ForYear(year int) []Holiday {
	var base []Holiday
	for _, r := range rules {
		if d, ok := r.on(year); ok {
			base = append(base, Holiday{Date: d, Name: r.name, Kind: r.kind})
		}
	}
	for _, h := range oneOff {
		if h.Date.Year == year {
			base = append(base, h)
		}
	}
	sortByDate(base)

	all := slices.Concat(base, substitutes(year, base))
	all = append(all, citizens(year, base, all)...)
	sortByDate(all)
	return all
}

// substitutes adds a 振替休日 for every holiday that falls on a Sunday: the
// first following day that is not already a holiday, as long as it stays in
// the same year.
func substitutes(year int, base []Holiday) []Holiday {
	taken := dateSet(base)
	var out []Holiday
	for _, h := range base {
		if h.Date.Weekday() != time.Sunday || h.Date.Before(substituteStart) {
			continue
		}
		next := h.Date.AddDays(1)
		for taken[next] {
			next = next.AddDays(1)
		}
		if next.Year != year {
			continue
		}
		taken[next] = true
		out = append(out, Holiday{Date: next, Name: NameSubstitute, Kind: Substitute})
	}
	return out
}

// citizens adds a 国民の休日 for each non-holiday, non-Sunday day whose
// neighbours are both national holidays.
func citizens(year int, base, all []Holiday) []Holiday {
	national := dateSet(base)
	taken := dateSet(all)
	var out []Holiday
	for _, h := range base {
		mid := h.Date.AddDays(1)
		if mid.Year != year || mid.Before(citizensStart) || taken[mid] || mid.Weekday() == time.Sunday {
			continue
		}
		if national[mid.AddDays(1)] {
			taken[mid] = true
			out = append(out, Holiday{Date: mid, Name: NameCitizens, Kind: Variable})
		}
	}
	return out
}

// IsHoliday recomputes the holidays of d's year and looks d up.
func IsHoliday(d calendar.Date) (Holiday, bool) {
	return Lookup(Rules{}, d)
}

// Provider yields the holidays of a year.
type Provider interface {
	ForYear(year int) []Holiday
}

// Rules is the Provider backed by the national holiday table.
type Rules struct{}

// ForYear implements Provider.
func (Rules) ForYear(year int) []Holiday { return ForYear(year) }

// Lookup finds the holiday falling on d, if any.
func Lookup(p Provider, d calendar.Date) (Holiday, bool) {
	for _, h := range p.ForYear(d.Year) {
		if h.Date == d {
			return h, true
		}
	}
	return Holiday{}, false
}

// InRange returns every holiday in [start, end] in date order.
func InRange(p Provider, start, end calendar.Date) []Holiday {
	out := []Holiday{}
	for y := start.Year; y <= end.Year; y++ {
		for _, h := range p.ForYear(y) {
			if h.Date.Between(start, end) {
				out = append(out, h)
			}
		}
	}
	return out
}

// Dates returns the dates of InRange.
func Dates(p Provider, start, end calendar.Date) []calendar.Date {
	hs := InRange(p, start, end)
	out := make([]calendar.Date, len(hs))
	for i, h := range hs {
		out[i] = h.Date
	}
	return out
}

// Next returns the first holiday on or after d, looking at most into the following year.
func Next(p Provider, d calendar.Date) (Holiday, bool) {
	for y := d.Year; y <= d.Year+1; y++ {
		for _, h := range p.ForYear(y) {
			if !h.Date.Before(d) {
				return h, true
			}
		}
	}
	return Holiday{}, false
}

func sortByDate(hs []Holiday) {
	slices.SortStableFunc(hs, func(a, b Holiday) int { return a.Date.Compare(b.Date) })
}

func dateSet(hs []Holiday) map[calendar.Date]bool {
	m := make(map[calendar.Date]bool, len(hs))
	for _, h := range hs {
		m[h.Date] = true
	}
	return m
}
