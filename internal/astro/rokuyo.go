package astro

import "github.com/tartampluch/go-koyomi/internal/calendar"

// Rokuyo is the six-day fortune label of a date.
type Rokuyo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Lucky       bool   `json:"lucky"`
}

// rokuyoCycle is indexed by (month + day) mod 6.
var rokuyoCycle = []Rokuyo{
	{"先勝", "午前は吉、午後は凶", true},
	{"友引", "朝夕は吉、正午は凶。葬儀は避けるべき", true},
	{"先負", "午前は凶、午後は吉", false},
	{"仏滅", "何事も慎むべき日、最も凶", false},
	{"大安", "何事においても吉、最良の日", true},
	{"赤口", "正午のみ吉、それ以外は凶", false},
}

// RokuyoOf approximates the rokuyo of d. The traditional label uses the
// lunisolar month and day; this uses the Gregorian ones, so it only matches
// the almanac by chance.
func RokuyoOf(d calendar.Date) Rokuyo {
	return rokuyoCycle[calendar.Mod(int(d.Month)+d.Day, len(rokuyoCycle))]
}
