// Package stats aggregates the calendar engines into range statistics, date
// list comparison and anniversary milestones.
package stats

import (
	"fmt"
	"time"

	"github.com/tartampluch/go-koyomi/internal/calendar"
	"github.com/tartampluch/go-koyomi/internal/holiday"
)

// MonthCount is the number of days of one calendar month inside a range.
type MonthCount struct {
	Month string `json:"month"` // 2025年1月
	Days  int    `json:"days"`
}

// WeekdayCount is one bar of the weekday histogram.
type WeekdayCount struct {
	Weekday string `json:"weekday"`
	Days    int    `json:"days"`
}

// RangeStats summarizes every day of an inclusive range.
type RangeStats struct {
	Start            calendar.Date   `json:"start"`
	End              calendar.Date   `json:"end"`
	TotalDays        int             `json:"totalDays"`
	Weekdays         int             `json:"weekdays"`
	Weekends         int             `json:"weekends"`
	Holidays         int             `json:"holidays"`
	BusinessDays     int             `json:"businessDays"`
	ByWeekday        []WeekdayCount  `json:"byWeekday"` // Sunday first
	ByMonth          []MonthCount    `json:"byMonth"`
	FirstBusinessDay *calendar.Date  `json:"firstBusinessDay"`
	LastBusinessDay  *calendar.Date  `json:"lastBusinessDay"`
	MonthStarts      []calendar.Date `json:"monthStarts"`
	MonthEnds        []calendar.Date `json:"monthEnds"`
}

// MonthKey formats the per-month histogram key.
func MonthKey(year int, month time.Month) string {
	return fmt.Sprintf("%d年%d月", year, month)
}

// Range walks [start, end] once. A holiday on a weekend counts in both
// Weekends and Holidays; business days are weekdays that are not holidays.
// It returns false when start is after end or either date is invalid.
func Range(start, end calendar.Date, p holiday.Provider) (RangeStats, bool) {
	if !calendar.ValidRange(start, end) {
		return RangeStats{}, false
	}
	holidays := make(map[calendar.Date]bool)
	for _, d := range holiday.Dates(p, start, end) {
		holidays[d] = true
	}

	s := RangeStats{
		Start:       start,
		End:         end,
		MonthStarts: []calendar.Date{},
		MonthEnds:   []calendar.Date{},
	}
	var weekdays [7]int
	for d := range (calendar.Range{Start: start, End: end}).Days() {
		s.TotalDays++
		wd := d.Weekday()
		weekdays[wd]++

		weekend := calendar.IsWeekend(wd)
		if weekend {
			s.Weekends++
		} else {
			s.Weekdays++
		}
		if holidays[d] {
			s.Holidays++
		}
		if !weekend && !holidays[d] {
			s.BusinessDays++
			if s.FirstBusinessDay == nil {
				first := d
				s.FirstBusinessDay = &first
			}
			last := d
			s.LastBusinessDay = &last
		}

		if d.Day == 1 {
			s.MonthStarts = append(s.MonthStarts, d)
		}
		if d == d.LastOfMonth() {
			s.MonthEnds = append(s.MonthEnds, d)
		}
		if n := len(s.ByMonth); n == 0 || d.Day == 1 {
			s.ByMonth = append(s.ByMonth, MonthCount{Month: MonthKey(d.Year, d.Month)})
		}
		s.ByMonth[len(s.ByMonth)-1].Days++
	}

	s.ByWeekday = make([]WeekdayCount, 7)
	for i, n := range weekdays {
		s.ByWeekday[i] = WeekdayCount{Weekday: calendar.WeekdayName(i, true), Days: n}
	}
	return s, true
}
