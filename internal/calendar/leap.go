package calendar

import (
	"time"

	"cloudeng.io/datetime"
)

// IsLeapYear reports whether year is a Gregorian leap year.
func IsLeapYear(year int) bool {
	return datetime.IsLeap(year)
}

// DaysInMonth returns the number of days of month in year.
func DaysInMonth(year int, month time.Month) int {
	return int(datetime.DaysInMonth(year, datetime.Month(month)))
}

// DaysInYear returns 366 for leap years and 365 otherwise.
func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// LeapInfo explains the leap-year status of a year.
type LeapInfo struct {
	Year         int    `json:"year"`
	IsLeap       bool   `json:"isLeap"`
	DaysInYear   int    `json:"daysInYear"`
	FebruaryDays int    `json:"februaryDays"`
	Reason       string `json:"reason"`
}

const (
	reasonDiv400    = "400で割り切れるため閏年"
	reasonDiv100    = "100で割り切れるが400で割り切れないため平年"
	reasonDiv4      = "4で割り切れるため閏年"
	reasonNotDiv4   = "4で割り切れないため平年"
	maxLeapYearScan = 8
)

// LeapYearInfo returns the leap-year status of year with the rule that decided it.
func LeapYearInfo(year int) LeapInfo {
	info := LeapInfo{
		Year:         year,
		IsLeap:       IsLeapYear(year),
		DaysInYear:   DaysInYear(year),
		FebruaryDays: DaysInMonth(year, time.February),
	}
	switch {
	case Mod(year, 400) == 0:
		info.Reason = reasonDiv400
	case Mod(year, 100) == 0:
		info.Reason = reasonDiv100
	case Mod(year, 4) == 0:
		info.Reason = reasonDiv4
	default:
		info.Reason = reasonNotDiv4
	}
	return info
}

// NextLeapYear returns the first leap year strictly after year.
func NextLeapYear(year int) int {
	for y := year + 1; y <= year+maxLeapYearScan; y++ {
		if IsLeapYear(y) {
			return y
		}
	}
	return year + maxLeapYearScan
}

// PrevLeapYear returns the last leap year strictly before year.
func PrevLeapYear(year int) int {
	for y := year - 1; y >= year-maxLeapYearScan; y-- {
		if IsLeapYear(y) {
			return y
		}
	}
	return year - maxLeapYearScan
}

// LeapYearsBetween lists the leap years in [from, to].
func LeapYearsBetween(from, to int) []int {
	var years []int
	for y := from; y <= to; y++ {
		if IsLeapYear(y) {
			years = append(years, y)
		}
	}
	return years
}
