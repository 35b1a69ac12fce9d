package clocktime

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tartampluch/go-koyomi/internal/calendar"
)

const (
	minutesPerDay = 24 * 60

	// DefaultStandardMinutes is the statutory eight-hour day.
	DefaultStandardMinutes = 480

	noOvertime = "なし"
)

// ParseClock reads an "HH:mm" time of day into minutes after midnight.
func ParseClock(s string) (int, bool) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, false
	}
	h, err1 := strconv.Atoi(hh)
	m, err2 := strconv.Atoi(mm)
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// FormatClock renders minutes after midnight as "HH:mm", wrapping past 24h.
func FormatClock(minutes int) string {
	minutes = calendar.Mod(minutes, minutesPerDay)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// FormatMinutes renders a duration as "8時間" or "8時間30分".
func FormatMinutes(minutes int) string {
	if minutes%60 == 0 {
		return fmt.Sprintf("%d時間", minutes/60)
	}
	return fmt.Sprintf("%d時間%d分", minutes/60, minutes%60)
}

// Shift is one day's attendance.
type Shift struct {
	Date         calendar.Date `json:"date"`
	Start        string        `json:"startTime"`
	End          string        `json:"endTime"`
	BreakMinutes int           `json:"breakMinutes"`
}

// ShiftResult is the worked time of one shift.
type ShiftResult struct {
	TotalMinutes      int    `json:"totalMinutes"`
	WorkMinutes       int    `json:"workMinutes"`
	BreakMinutes      int    `json:"breakMinutes"`
	Hours             int    `json:"hours"`
	Minutes           int    `json:"minutes"`
	Formatted         string `json:"formatted"`
	OvertimeMinutes   int    `json:"overtimeMinutes"`
	OvertimeFormatted string `json:"overtimeFormatted"`
}

// WorkHours computes one shift. An end at or before the start is on the
// next day, so 22:00 to 06:00 is eight hours. Breaks longer than the shift
// leave zero worked minutes.
func WorkHours(start, end string, breakMinutes, standardMinutes int) (ShiftResult, bool) {
	s, ok1 := ParseClock(start)
	e, ok2 := ParseClock(end)
	if !ok1 || !ok2 || breakMinutes < 0 {
		return ShiftResult{}, false
	}
	if e <= s {
		e += minutesPerDay
	}

	total := e - s
	work := max(0, total-breakMinutes)
	over := max(0, work-standardMinutes)
	overText := noOvertime
	if over > 0 {
		overText = FormatMinutes(over)
	}
	return ShiftResult{
		TotalMinutes:      total,
		WorkMinutes:       work,
		BreakMinutes:      breakMinutes,
		Hours:             work / 60,
		Minutes:           work % 60,
		Formatted:         FormatMinutes(work),
		OvertimeMinutes:   over,
		OvertimeFormatted: overText,
	}, true
}

// Summary totals a set of shifts.
type Summary struct {
	Shifts            []Shift `json:"records"`
	TotalWorkMinutes  int     `json:"totalWorkMinutes"`
	TotalBreakMinutes int     `json:"totalBreakMinutes"`
	TotalDays         int     `json:"totalDays"`
	AverageMinutes    int     `json:"averageWorkMinutes"`
	TotalFormatted    string  `json:"totalFormatted"`
	AverageFormatted  string  `json:"averageFormatted"`
	OvertimeMinutes   int     `json:"overtimeMinutes"`
	OvertimeFormatted string  `json:"overtimeFormatted"`
	Invalid           int     `json:"invalidRecords"`
}

// Summarize totals shifts against standardMinutes per day. Shifts with an
// unreadable time still count as a day but add no minutes.
func Summarize(shifts []Shift, standardMinutes int) Summary {
	sum := Summary{Shifts: shifts, TotalDays: len(shifts)}
	if sum.Shifts == nil {
		sum.Shifts = []Shift{}
	}
	for _, sh := range shifts {
		res, ok := WorkHours(sh.Start, sh.End, sh.BreakMinutes, standardMinutes)
		if !ok {
			sum.Invalid++
			continue
		}
		sum.TotalWorkMinutes += res.WorkMinutes
		sum.TotalBreakMinutes += sh.BreakMinutes
	}
	if sum.TotalDays > 0 {
		sum.AverageMinutes = sum.TotalWorkMinutes / sum.TotalDays
		sum.OvertimeMinutes = max(0, sum.TotalWorkMinutes-standardMinutes*sum.TotalDays)
	}
	sum.TotalFormatted = FormatMinutes(sum.TotalWorkMinutes)
	sum.AverageFormatted = FormatMinutes(sum.AverageMinutes)
	sum.OvertimeFormatted = FormatMinutes(sum.OvertimeMinutes)
	return sum
}
