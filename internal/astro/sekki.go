package astro

import (
	"slices"
	"time"

	"github.com/tartampluch/go-koyomi/internal/calendar"
)

// Sekki is one of the 24 solar terms (二十四節気) placed in a given year.
type Sekki struct {
	Name        string        `json:"name"`
	Date        calendar.Date `json:"date"`
	Description string        `json:"description"`
}

type sekkiEntry struct {
	name        string
	month       time.Month
	day         int
	description string
}

// sekkiTable uses the average dates of the 2000s, in solar longitude order
// starting at 立春. The real terms drift by a day or so from year to year.
var sekkiTable = []sekkiEntry{
	{"立春", time.February, 4, "春の始まり"},
	{"雨水", time.February, 19, "雪が雨に変わる頃"},
	{"啓蟄", time.March, 6, "虫が地中から出てくる頃"},
	{"春分", time.March, 21, "昼と夜の長さがほぼ等しい"},
	{"清明", time.April, 5, "万物が清らかで生き生きとする頃"},
	{"穀雨", time.April, 20, "穀物を潤す春雨が降る頃"},
	{"立夏", time.May, 6, "夏の始まり"},
	{"小満", time.May, 21, "草木が茂り天地に満ち始める頃"},
	{"芒種", time.June, 6, "稲などの穀物の種をまく頃"},
	{"夏至", time.June, 21, "一年で最も昼が長い日"},
	{"小暑", time.July, 7, "暑さが本格的になる前"},
	{"大暑", time.July, 23, "一年で最も暑い頃"},
	{"立秋", time.August, 8, "秋の始まり"},
	{"処暑", time.August, 23, "暑さが収まる頃"},
	{"白露", time.September, 8, "朝露が白く光る頃"},
	{"秋分", time.September, 23, "昼と夜の長さがほぼ等しい"},
	{"寒露", time.October, 8, "冷たい露が降りる頃"},
	{"霜降", time.October, 23, "霜が降り始める頃"},
	{"立冬", time.November, 7, "冬の始まり"},
	{"小雪", time.November, 22, "わずかに雪が降り始める頃"},
	{"大雪", time.December, 7, "本格的に雪が降る頃"},
	{"冬至", time.December, 22, "一年で最も昼が短い日"},
	{"小寒", time.January, 6, "寒さが厳しくなる前"},
	{"大寒", time.January, 20, "一年で最も寒い頃"},
}

// SekkiForYear returns the 24 terms of a year in date order.
func SekkiForYear(year int) []Sekki {
	out := make([]Sekki, 0, len(sekkiTable))
	for _, e := range sekkiTable {
		out = append(out, Sekki{Name: e.name, Date: calendar.New(year, e.month, e.day), Description: e.description})
	}
	slices.SortFunc(out, func(a, b Sekki) int { return a.Date.Compare(b.Date) })
	return out
}

// SekkiOn returns the term falling exactly on d.
func SekkiOn(d calendar.Date) (Sekki, bool) {
	for _, s := range SekkiForYear(d.Year) {
		if s.Date == d {
			return s, true
		}
	}
	return Sekki{}, false
}

// NearestSekki returns the term closest to d, searching the neighbouring
// years too. On a tie the earlier term wins.
func NearestSekki(d calendar.Date) Sekki {
	all := slices.Concat(SekkiForYear(d.Year-1), SekkiForYear(d.Year), SekkiForYear(d.Year+1))
	best := all[0]
	bestDist := abs(d.DaysUntil(best.Date))
	for _, s := range all[1:] {
		if dist := abs(d.DaysUntil(s.Date)); dist < bestDist {
			best, bestDist = s, dist
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
