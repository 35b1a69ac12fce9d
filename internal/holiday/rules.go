package holiday

import (
	"math"
	"time"

	"github.com/tartampluch/go-koyomi/internal/calendar"
)

// rule produces at most one holiday per year inside its validity window.
type rule struct {
	name string
	kind Kind
	from int // first year, inclusive
	to   int // last year, inclusive; 0 means still in force
	date func(year int) (calendar.Date, bool)

	// moved replaces the computed date for specific years.
	moved map[int]calendar.Date
}

func (r rule) activeIn(year int) bool {
	return year >= r.from && (r.to == 0 || year <= r.to)
}

func (r rule) on(year int) (calendar.Date, bool) {
	if !r.activeIn(year) {
		return calendar.Date{}, false
	}
	if d, ok := r.moved[year]; ok {
		return d, true
	}
	return r.date(year)
}

func fixed(month time.Month, day int) func(int) (calendar.Date, bool) {
	return func(year int) (calendar.Date, bool) {
		return calendar.New(year, month, day), true
	}
}

func nthMonday(month time.Month, n int) func(int) (calendar.Date, bool) {
	return func(year int) (calendar.Date, bool) {
		return calendar.NthWeekday(year, month, time.Monday, n)
	}
}

const (
	firstHolidayYear = 1949
	equinoxDrift     = 0.242194
)

// VernalEquinoxDay approximates the March equinox day of year.
// The formula is calibrated for 1980-2099; other years fall back to the 20th.
func VernalEquinoxDay(year int) int {
	return equinoxDay(year, 20.8357, 20.8431, 20)
}

// AutumnalEquinoxDay approximates the September equinox day of year.
// The formula is calibrated for 1980-2099; other years fall back to the 23rd.
func AutumnalEquinoxDay(year int) int {
	return equinoxDay(year, 23.2588, 23.2488, 23)
}

func equinoxDay(year int, base1980, base2000 float64, fallback int) int {
	var base float64
	switch {
	case year >= 2000 && year <= 2099:
		base = base2000
	case year >= 1980 && year <= 1999:
		base = base1980
	default:
		return fallback
	}
	n := year - 1980
	return int(math.Floor(base + equinoxDrift*float64(n) - math.Floor(float64(n)/4)))
}

func vernal(year int) (calendar.Date, bool) {
	return calendar.New(year, time.March, VernalEquinoxDay(year)), true
}

func autumnal(year int) (calendar.Date, bool) {
	return calendar.New(year, time.September, AutumnalEquinoxDay(year)), true
}

// Names of the generated holidays.
const (
	NameSubstitute = "振替休日"
	NameCitizens   = "国民の休日"
)

// rules is the national holiday table, one row per name and validity window.
var rules = []rule{
	{name: "元日", kind: Fixed, from: firstHolidayYear, date: fixed(time.January, 1)},
	{name: "成人の日", kind: Fixed, from: firstHolidayYear, to: 1999, date: fixed(time.January, 15)},
	{name: "成人の日", kind: Variable, from: 2000, date: nthMonday(time.January, 2)},
	{name: "建国記念の日", kind: Fixed, from: 1967, date: fixed(time.February, 11)},
	{name: "天皇誕生日", kind: Fixed, from: 2020, date: fixed(time.February, 23)},
	{name: "春分の日", kind: Variable, from: firstHolidayYear, date: vernal},
	{name: "天皇誕生日", kind: Fixed, from: firstHolidayYear, to: 1988, date: fixed(time.April, 29)},
	{name: "みどりの日", kind: Fixed, from: 1989, to: 2006, date: fixed(time.April, 29)},
	{name: "昭和の日", kind: Fixed, from: 2007, date: fixed(time.April, 29)},
	{name: "憲法記念日", kind: Fixed, from: firstHolidayYear, date: fixed(time.May, 3)},
	{name: "みどりの日", kind: Fixed, from: 2007, date: fixed(time.May, 4)},
	{name: "こどもの日", kind: Fixed, from: firstHolidayYear, date: fixed(time.May, 5)},
	{name: "海の日", kind: Fixed, from: 1996, to: 2002, date: fixed(time.July, 20)},
	{
		name: "海の日", kind: Variable, from: 2003, date: nthMonday(time.July, 3),
		moved: map[int]calendar.Date{2020: calendar.New(2020, 7, 23), 2021: calendar.New(2021, 7, 22)},
	},
	{
		name: "山の日", kind: Fixed, from: 2016, date: fixed(time.August, 11),
		moved: map[int]calendar.Date{2020: calendar.New(2020, 8, 10), 2021: calendar.New(2021, 8, 8)},
	},
	{name: "敬老の日", kind: Fixed, from: 1966, to: 2002, date: fixed(time.September, 15)},
	{name: "敬老の日", kind: Variable, from: 2003, date: nthMonday(time.September, 3)},
	{name: "秋分の日", kind: Variable, from: firstHolidayYear, date: autumnal},
	{name: "体育の日", kind: Fixed, from: 1966, to: 1999, date: fixed(time.October, 10)},
	{name: "体育の日", kind: Variable, from: 2000, to: 2019, date: nthMonday(time.October, 2)},
	{
		name: "スポーツの日", kind: Variable, from: 2020, date: nthMonday(time.October, 2),
		moved: map[int]calendar.Date{2020: calendar.New(2020, 7, 24), 2021: calendar.New(2021, 7, 23)},
	},
	{name: "文化の日", kind: Fixed, from: firstHolidayYear, date: fixed(time.November, 3)},
	{name: "勤労感謝の日", kind: Fixed, from: firstHolidayYear, date: fixed(time.November, 23)},
	{name: "天皇誕生日", kind: Fixed, from: 1989, to: 2018, date: fixed(time.December, 23)},
}

// oneOff lists holidays enacted for a single day by special law.
var oneOff = []Holiday{
	{Date: calendar.New(1959, 4, 10), Name: "皇太子明仁親王の結婚の儀", Kind: Fixed},
	{Date: calendar.New(1989, 2, 24), Name: "昭和天皇の大喪の礼", Kind: Fixed},
	{Date: calendar.New(1990, 11, 12), Name: "即位礼正殿の儀", Kind: Fixed},
	{Date: calendar.New(1993, 6, 9), Name: "皇太子徳仁親王の結婚の儀", Kind: Fixed},
	{Date: calendar.New(2019, 5, 1), Name: "天皇の即位の日", Kind: Fixed},
	{Date: calendar.New(2019, 10, 22), Name: "即位礼正殿の儀", Kind: Fixed},
}

var (
	// substitutes apply to holidays from the day the 1973 amendment took effect.
	substituteStart = calendar.New(1973, 4, 12)

	// citizensStart is when a day sandwiched between two holidays became a holiday.
	citizensStart = calendar.New(1985, 12, 27)
)
