package calendar

import (
	"slices"
	"time"
)

var (
	weekdayNames      = [7]string{"日曜日", "月曜日", "火曜日", "水曜日", "木曜日", "金曜日", "土曜日"}
	weekdayShortNames = [7]string{"日", "月", "火", "水", "木", "金", "土"}
)

// WeekdayName maps 0-6 (Sunday = 0) to its Japanese name.
// The short form is a single character. Out-of-range input yields "".
func WeekdayName(n int, short bool) string {
	if n < 0 || n > 6 {
		return ""
	}
	if short {
		return weekdayShortNames[n]
	}
	return weekdayNames[n]
}

// WeekdayOf is WeekdayName for a time.Weekday.
func WeekdayOf(w time.Weekday, short bool) string {
	return WeekdayName(int(w), short)
}

// IsWeekend reports whether w is Saturday or Sunday.
func IsWeekend(w time.Weekday) bool {
	return w == time.Saturday || w == time.Sunday
}

// SortAscending returns a sorted copy of dates. Equal dates keep their order.
func SortAscending(dates []Date) []Date {
	out := slices.Clone(dates)
	slices.SortStableFunc(out, Date.Compare)
	return out
}

// SortDescending returns a copy of dates sorted newest first.
func SortDescending(dates []Date) []Date {
	out := slices.Clone(dates)
	slices.SortStableFunc(out, func(a, b Date) int { return b.Compare(a) })
	return out
}

// NthWeekday returns the nth (1-5) occurrence of weekday in the month: the
// first one on or after the 1st, advanced n-1 weeks. It returns false when
// that day falls past the end of the month.
func NthWeekday(year int, month time.Month, weekday time.Weekday, n int) (Date, bool) {
	if n < 1 {
		return Date{}, false
	}
	first := New(year, month, 1)
	day := 1 + Mod(int(weekday)-int(first.Weekday()), 7) + (n-1)*7
	if day > DaysInMonth(year, month) {
		return Date{}, false
	}
	return New(year, month, day), true
}
