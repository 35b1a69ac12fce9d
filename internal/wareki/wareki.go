// Package wareki converts between Gregorian dates and Japanese era (gengo) dates.
package wareki

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tartampluch/go-koyomi/internal/calendar"
	"golang.org/x/text/width"
)

// Era is one entry of the era table.
type Era struct {
	Name      string         `json:"name"`
	Romanized string         `json:"romanized"`
	Symbol    string         `json:"symbol"`
	Start     calendar.Date  `json:"start"`
	End       *calendar.Date `json:"end"` // nil for the current era
}

func (e Era) contains(d calendar.Date) bool {
	return !d.Before(e.Start) && (e.End == nil || !d.After(*e.End))
}

func endOn(y int, m time.Month, d int) *calendar.Date {
	date := calendar.New(y, m, d)
	return &date
}

// eras is ordered oldest first. Every era ends the day before the next one
// starts: on the days where the emperor died and the era changed on the same
// calendar day (1912-07-30, 1926-12-25) the new era wins.
var eras = []Era{
	{Name: "明治", Romanized: "Meiji", Symbol: "M", Start: calendar.New(1868, 1, 25), End: endOn(1912, 7, 29)},
	{Name: "大正", Romanized: "Taisho", Symbol: "T", Start: calendar.New(1912, 7, 30), End: endOn(1926, 12, 24)},
	{Name: "昭和", Romanized: "Showa", Symbol: "S", Start: calendar.New(1926, 12, 25), End: endOn(1989, 1, 7)},
	{Name: "平成", Romanized: "Heisei", Symbol: "H", Start: calendar.New(1989, 1, 8), End: endOn(2019, 4, 30)},
	{Name: "令和", Romanized: "Reiwa", Symbol: "R", Start: calendar.New(2019, 5, 1)},
}

// Eras returns a copy of the era table, oldest first.
func Eras() []Era {
	out := make([]Era, len(eras))
	for i, e := range eras {
		out[i] = e
		if e.End != nil {
			end := *e.End
			out[i].End = &end
		}
	}
	return out
}

// Current returns the open era.
func Current() Era {
	return Eras()[len(eras)-1]
}

// EraFor finds the era containing d, scanning from the newest era.
func EraFor(d calendar.Date) (Era, bool) {
	if !d.IsValid() {
		return Era{}, false
	}
	all := Eras()
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].contains(d) {
			return all[i], true
		}
	}
	return Era{}, false
}

// Date is a date expressed in an era.
type Date struct {
	Era         string `json:"era"`
	Symbol      string `json:"eraSymbol"`
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	Day         int    `json:"day"`
	WesternYear int    `json:"westernYear"`
}

// Formatted holds the display forms of an era date.
type Formatted struct {
	Full     string `json:"full"`     // 令和元年5月1日
	Short    string `json:"short"`    // R1.5.1
	Standard string `json:"standard"` // 令和元年05月01日
}

// Conversion is the result of ToWareki.
type Conversion struct {
	Wareki    Date      `json:"wareki"`
	Formatted Formatted `json:"formatted"`
}

// ToWareki converts a Gregorian date. The first (partial) year of an era is
// year 1, rendered 元 in the long forms. It returns false for invalid dates
// and dates before the first era.
func ToWareki(d calendar.Date) (Conversion, bool) {
	era, ok := EraFor(d)
	if !ok {
		return Conversion{}, false
	}

	eraYear := d.Year - era.Start.Year + 1
	yearText := strconv.Itoa(eraYear)
	if eraYear == 1 {
		yearText = "元"
	}

	return Conversion{
		Wareki: Date{
			Era:         era.Name,
			Symbol:      era.Symbol,
			Year:        eraYear,
			Month:       int(d.Month),
			Day:         d.Day,
			WesternYear: d.Year,
		},
		Formatted: Formatted{
			Full:     fmt.Sprintf("%s%s年%d月%d日", era.Name, yearText, d.Month, d.Day),
			Short:    fmt.Sprintf("%s%d.%d.%d", era.Symbol, eraYear, d.Month, d.Day),
			Standard: fmt.Sprintf("%s%s年%02d月%02d日", era.Name, yearText, d.Month, d.Day),
		},
	}, true
}

// FindEra resolves an era by its kanji name, its symbol, or its romanized
// name (case-insensitive).
func FindEra(key string) (Era, bool) {
	key = strings.TrimSpace(key)
	for _, e := range Eras() {
		if key == e.Name || key == e.Symbol || strings.EqualFold(key, e.Romanized) {
			return e, true
		}
	}
	return Era{}, false
}

// FromWareki converts an era date back to the Gregorian calendar. It returns
// false when the era is unknown, the day does not exist, or the date falls
// outside the era.
func FromWareki(eraKey string, eraYear, month, day int) (calendar.Date, bool) {
	era, ok := FindEra(eraKey)
	if !ok || eraYear < 1 {
		return calendar.Date{}, false
	}
	d := calendar.New(era.Start.Year+eraYear-1, time.Month(month), day)
	if !d.IsValid() || !era.contains(d) {
		return calendar.Date{}, false
	}
	return d, true
}

var warekiPattern = regexp.MustCompile(
	`^(明治|大正|昭和|平成|令和|[MTSHRmtshr])\s*(元|\d{1,2})\s*(?:年|[./-])\s*(\d{1,2})\s*(?:月|[./-])\s*(\d{1,2})\s*日?$`)

// Parse reads forms such as 令和5年3月1日, 令和元年5月1日, R5.3.1 or H31/4/30.
// Full-width digits are accepted.
func Parse(text string) (calendar.Date, bool) {
	m := warekiPattern.FindStringSubmatch(strings.TrimSpace(width.Narrow.String(text)))
	if m == nil {
		return calendar.Date{}, false
	}
	year := 1
	if m[2] != "元" {
		year, _ = strconv.Atoi(m[2])
	}
	month, _ := strconv.Atoi(m[3])
	day, _ := strconv.Atoi(m[4])
	return FromWareki(strings.ToUpper(m[1]), year, month, day)
}
