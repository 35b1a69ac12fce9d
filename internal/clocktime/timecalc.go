package clocktime

import "time"

// Elapsed splits the absolute distance between two instants.
type Elapsed struct {
	TotalMilliseconds int64 `json:"totalMilliseconds"`
	TotalSeconds      int64 `json:"totalSeconds"`
	TotalMinutes      int64 `json:"totalMinutes"`
	TotalHours        int64 `json:"totalHours"`
	TotalDays         int64 `json:"totalDays"`
	Days              int64 `json:"days"`
	Hours             int64 `json:"hours"`
	Minutes           int64 `json:"minutes"`
	Seconds           int64 `json:"seconds"`
}

// Between measures |b - a|. The order of the arguments does not matter.
func Between(a, b time.Time) Elapsed {
	ms := b.Sub(a).Milliseconds()
	if ms < 0 {
		ms = -ms
	}
	secs := ms / 1000
	mins := secs / 60
	hours := mins / 60
	days := hours / 24
	return Elapsed{
		TotalMilliseconds: ms,
		TotalSeconds:      secs,
		TotalMinutes:      mins,
		TotalHours:        hours,
		TotalDays:         days,
		Days:              days,
		Hours:             hours % 24,
		Minutes:           mins % 60,
		Seconds:           secs % 60,
	}
}

// Shifted is an instant moved by a clock offset, with its common renderings.
type Shifted struct {
	Time     time.Time `json:"time"`
	Date     string    `json:"date"`
	Clock    string    `json:"clock"`
	DateTime string    `json:"dateTime"`
	ISO      string    `json:"iso"`
}

// Add moves base by the given hours, minutes and seconds. Negative values
// move backwards. The result keeps base's location.
func Add(base time.Time, hours, minutes, seconds int) Shifted {
	t := base.Add(time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second)
	return Shifted{
		Time:     t,
		Date:     t.Format(time.DateOnly),
		Clock:    t.Format(time.TimeOnly),
		DateTime: t.Format(time.DateTime),
		ISO:      t.UTC().Format(isoMillis),
	}
}

const isoMillis = "2006-01-02T15:04:05.000Z07:00"
