package calendar

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tkuchiki/parsetime"
	"golang.org/x/text/width"
)

// strictLayouts are tried in order before the free-form fallback.
var strictLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"2006-1-2",
	"2006年1月2日",
	"20060102",
}

// timestampPrefix matches the leading date and optional hour and minute of a
// timestamp such as 2025-01-02T10:00:00+09:00 or 2025/01/02 10:00 JST.
var timestampPrefix = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})(?:$|[T\s]+(\d{1,2}):(\d{2}))`)

// ParseDate reads a date from user input. Full-width digits are folded first,
// then the strict layouts are tried. Timestamps that start with a Y/M/D prefix
// go through a permissive parser and must keep the digits they were written
// with. Inputs naming a non-existent day (Feb 31) are rejected rather than
// rolled over, and anything without a Y/M/D prefix is rejected.
func ParseDate(text string) (Date, bool) {
	s := strings.TrimSpace(width.Narrow.String(text))
	if s == "" {
		return Date{}, false
	}
	if d, ok := parseStrict(s); ok {
		return d, true
	}
	_, d, ok := parseTimestamp(s, time.UTC)
	return d, ok
}

func parseStrict(s string) (Date, bool) {
	for _, layout := range strictLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return FromTime(t), true
		}
	}
	return Date{}, false
}

// instantLayouts are wall-clock forms read in the caller's location.
var instantLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/1/2 15:04",
}

// ParseInstant reads a date-time. Wall-clock input is placed in loc, an
// explicit offset wins over loc, and a bare date means midnight in loc.
// The same Y/M/D rules as ParseDate apply.
func ParseInstant(text string, loc *time.Location) (time.Time, bool) {
	s := strings.TrimSpace(width.Narrow.String(text))
	if s == "" || loc == nil {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	if d, ok := parseStrict(s); ok {
		return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc), true
	}
	t, _, ok := parseTimestamp(s, loc)
	return t, ok
}

func parseTimestamp(s string, loc *time.Location) (time.Time, Date, bool) {
	m := timestampPrefix.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, Date{}, false
	}
	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	want := New(y, time.Month(mo), day)
	if !want.IsValid() {
		return time.Time{}, Date{}, false
	}

	pt, err := parsetime.NewParseTime(loc)
	if err != nil {
		return time.Time{}, Date{}, false
	}
	t, err := pt.Parse(s)
	if err != nil {
		return time.Time{}, Date{}, false
	}
	// The parser matches loosely, so the result must carry the digits that
	// were written.
	if FromTime(t) != want {
		return time.Time{}, Date{}, false
	}
	if m[4] != "" {
		h, _ := strconv.Atoi(m[4])
		mi, _ := strconv.Atoi(m[5])
		if t.Hour() != h || t.Minute() != mi {
			return time.Time{}, Date{}, false
		}
	}
	return t, want, true
}

// MustParse is ParseDate for literals known to be valid. It panics otherwise.
func MustParse(text string) Date {
	d, ok := ParseDate(text)
	if !ok {
		panic("calendar: invalid date literal " + text)
	}
	return d
}

// ParseList splits free-form text on newlines and commas and parses each token.
// Tokens that do not parse are dropped.
func ParseList(text string) []Date {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == ',' || r == '\r' || r == '、'
	})
	var dates []Date
	for _, f := range fields {
		if d, ok := ParseDate(f); ok {
			dates = append(dates, d)
		}
	}
	return dates
}
