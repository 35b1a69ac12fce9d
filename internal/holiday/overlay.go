package holiday

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"cloudeng.io/errors"
	"github.com/tartampluch/go-koyomi/internal/calendar"
	"github.com/tartampluch/go-koyomi/internal/config"
	"gopkg.in/yaml.v3"
)

// Overlay serves official holiday data for the years it covers and falls
// back to the rule table elsewhere. Custom holidays are merged into every
// year on dates that are not already national holidays.
// An Overlay is immutable once built and safe for concurrent use.
type Overlay struct {
	official map[int][]Holiday
	custom   map[int][]Holiday
	fallback Provider
}

// NewOverlay indexes official and custom holidays by year.
func NewOverlay(official, custom []Holiday) *Overlay {
	return &Overlay{
		official: byYear(official),
		custom:   byYear(custom),
		fallback: Rules{},
	}
}

// ForYear implements Provider.
func (o *Overlay) ForYear(year int) []Holiday {
	base, ok := o.official[year]
	if ok {
		base = slices.Clone(base)
	} else {
		base = o.fallback.ForYear(year)
	}

	extra := o.custom[year]
	if len(extra) == 0 {
		return base
	}
	taken := dateSet(base)
	for _, h := range extra {
		if !taken[h.Date] {
			taken[h.Date] = true
			base = append(base, h)
		}
	}
	sortByDate(base)
	return base
}

// OfficialYears lists the years for which official data is installed.
func (o *Overlay) OfficialYears() []int {
	years := make([]int, 0, len(o.official))
	for y := range o.official {
		years = append(years, y)
	}
	slices.Sort(years)
	return years
}

func byYear(hs []Holiday) map[int][]Holiday {
	m := make(map[int][]Holiday)
	for _, h := range hs {
		m[h.Date.Year] = append(m[h.Date.Year], h)
	}
	for y := range m {
		sortByDate(m[y])
	}
	return m
}

// customFile is the YAML layout of a company holiday file:
//
//	holidays:
//	  - date: 2025-12-29
//	    name: 年末休暇
type customFile struct {
	Holidays []struct {
		Date string `yaml:"date"`
		Name string `yaml:"name"`
	} `yaml:"holidays"`
}

// LoadCustom reads company holidays from YAML. Every bad entry is reported;
// the valid ones are still returned.
func LoadCustom(r io.Reader) ([]Holiday, error) {
	var f customFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%s: %w", config.ErrCustomHolidays, err)
	}

	var errs errors.M
	out := make([]Holiday, 0, len(f.Holidays))
	for i, e := range f.Holidays {
		d, ok := calendar.ParseDate(e.Date)
		if !ok {
			errs.Append(fmt.Errorf("%s: entry %d: %q", config.ErrDateParse, i+1, e.Date))
			continue
		}
		name := e.Name
		if name == "" {
			name = config.FallbackEventTitle
		}
		out = append(out, Holiday{Date: d, Name: name, Kind: Custom})
	}

	slog.Debug(config.MsgCustomLoaded,
		config.LogKeyComponent, config.CompHoliday,
		config.LogKeyCount, len(out),
	)
	return out, errs.Err()
}
