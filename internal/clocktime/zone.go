// Package clocktime works on instants rather than civil dates: timezone
// conversion, time-of-day arithmetic, work-hour totals and display formats.
// Like the date engines it never reads the clock; callers pass the instant.
package clocktime

import (
	"fmt"
	"strings"
	"time"

	timezone "github.com/tkuchiki/go-timezone"
)

// Zone describes one entry of the curated zone list.
type Zone struct {
	Name         string `json:"name"`
	Identifier   string `json:"identifier"`
	Abbreviation string `json:"abbreviation"`
}

// MajorZones is the default set for the multi-zone display.
var MajorZones = []Zone{
	{"日本標準時 (JST)", "Asia/Tokyo", "JST"},
	{"ハワイ標準時 (HST)", "Pacific/Honolulu", "HST"},
	{"アラスカ標準時 (AKST)", "America/Anchorage", "AKST"},
	{"太平洋標準時 (PST)", "America/Los_Angeles", "PST"},
	{"山岳部標準時 (MST)", "America/Denver", "MST"},
	{"中部標準時 (CST)", "America/Chicago", "CST"},
	{"東部標準時 (EST)", "America/New_York", "EST"},
	{"協定世界時 (UTC)", "UTC", "UTC"},
	{"グリニッジ標準時 (GMT)", "Europe/London", "GMT"},
	{"中央ヨーロッパ時間 (CET)", "Europe/Paris", "CET"},
	{"東ヨーロッパ時間 (EET)", "Europe/Athens", "EET"},
	{"モスクワ標準時 (MSK)", "Europe/Moscow", "MSK"},
	{"ドバイ標準時 (GST)", "Asia/Dubai", "GST"},
	{"インド標準時 (IST)", "Asia/Kolkata", "IST"},
	{"中国標準時 (CST)", "Asia/Shanghai", "CST"},
	{"韓国標準時 (KST)", "Asia/Seoul", "KST"},
	{"オーストラリア東部標準時 (AEST)", "Australia/Sydney", "AEST"},
	{"ニュージーランド標準時 (NZST)", "Pacific/Auckland", "NZST"},
}

var tzdb = timezone.New()

// ResolveZone loads an IANA identifier. When that fails, name is read as an
// abbreviation (JST, PST) and mapped to the first zone that uses it.
func ResolveZone(name string) (*time.Location, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}
	if loc, err := time.LoadLocation(name); err == nil {
		return loc, true
	}
	ids, err := tzdb.GetTimezones(strings.ToUpper(name))
	if err != nil || len(ids) == 0 {
		return nil, false
	}
	loc, err := time.LoadLocation(ids[0])
	if err != nil {
		return nil, false
	}
	return loc, true
}

// ZoneName returns the Japanese display name of a curated identifier, or
// the identifier itself.
func ZoneName(identifier string) string {
	for _, z := range MajorZones {
		if z.Identifier == identifier {
			return z.Name
		}
	}
	return identifier
}

// Abbreviation returns the standard short name of identifier, e.g. JST.
func Abbreviation(identifier string) string {
	info, err := tzdb.GetTzInfo(identifier)
	if err != nil {
		return ""
	}
	return info.ShortStandard()
}

// OffsetString formats the UTC offset of t in its own location as
// UTC+09:00.
func OffsetString(t time.Time) string {
	_, secs := t.Zone()
	return "UTC" + formatOffset(secs/60)
}

func formatOffset(minutes int) string {
	sign := "+"
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%02d:%02d", sign, minutes/60, minutes%60)
}

// Difference is a signed offset split into hours and minutes. Minutes
// carries no sign.
type Difference struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// Conversion is one instant seen from two zones.
type Conversion struct {
	Source     time.Time  `json:"source"`
	Target     time.Time  `json:"target"`
	SourceText string     `json:"sourceText"`
	TargetText string     `json:"targetText"`
	SourceZone string     `json:"sourceZone"`
	TargetZone string     `json:"targetZone"`
	Difference Difference `json:"timeDifference"`
}

// DisplayLayout is the wall-clock rendering used in conversions.
const DisplayLayout = "2006/01/02 15:04:05"

// Convert shows at in from and in to. The target offset minus the source
// offset gives the difference, so Tokyo to New York in winter is -14h.
func Convert(at time.Time, from, to *time.Location) Conversion {
	src := at.In(from)
	dst := at.In(to)
	_, so := src.Zone()
	_, do := dst.Zone()
	diff := (do - so) / 60

	hours := abs(diff) / 60
	if diff < 0 {
		hours = -hours
	}
	return Conversion{
		Source:     src,
		Target:     dst,
		SourceText: src.Format(DisplayLayout),
		TargetText: dst.Format(DisplayLayout),
		SourceZone: from.String(),
		TargetZone: to.String(),
		Difference: Difference{Hours: hours, Minutes: abs(diff) % 60},
	}
}

// ZoneDisplay is one row of a multi-zone clock.
type ZoneDisplay struct {
	Zone      string    `json:"timezone"`
	Name      string    `json:"name"`
	Time      time.Time `json:"time"`
	Formatted string    `json:"formatted"`
	Offset    string    `json:"offset"`
}

// MultiZone renders at in every zone of ids. Unknown zones are kept with
// an error marker so the list keeps its order.
func MultiZone(at time.Time, ids []string) []ZoneDisplay {
	out := make([]ZoneDisplay, 0, len(ids))
	for _, id := range ids {
		loc, ok := ResolveZone(id)
		if !ok {
			out = append(out, ZoneDisplay{Zone: id, Name: id, Time: at, Formatted: invalidZoneText, Offset: invalidZoneOffset})
			continue
		}
		t := at.In(loc)
		out = append(out, ZoneDisplay{
			Zone:      id,
			Name:      ZoneName(loc.String()),
			Time:      t,
			Formatted: t.Format(DisplayLayout),
			Offset:    OffsetString(t),
		})
	}
	return out
}

const (
	invalidZoneText   = "エラー"
	invalidZoneOffset = "N/A"
)

// MajorZoneIDs lists the identifiers of MajorZones.
func MajorZoneIDs() []string {
	ids := make([]string, len(MajorZones))
	for i, z := range MajorZones {
		ids[i] = z.Identifier
	}
	return ids
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
