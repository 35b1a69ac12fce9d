package stats

import (
	"fmt"
	"slices"

	"github.com/tartampluch/go-koyomi/internal/calendar"
)

const listLimit = 10

// Anniversary is one milestone counted from a start date.
type Anniversary struct {
	Date          calendar.Date `json:"date"`
	DaysFromStart int           `json:"daysFromStart"`
	Label         string        `json:"label"`
	IsSpecial     bool          `json:"isSpecial"`
}

// Anniversaries splits the milestones around a target date.
type Anniversaries struct {
	Start          calendar.Date `json:"start"`
	Target         calendar.Date `json:"target"`
	DaysSinceStart int           `json:"daysSinceStart"`
	Upcoming       []Anniversary `json:"upcoming"` // on or after Target, soonest first
	Past           []Anniversary `json:"past"`     // most recent first
	NextMilestone  *Anniversary  `json:"nextMilestone"`
}

var dayMilestones = []struct {
	days  int
	label string
}{
	{7, "1週間"},
	{30, "1ヶ月（30日）"},
	{50, "50日"},
	{100, "100日"},
	{200, "200日"},
	{300, "300日"},
	{500, "500日"},
	{1000, "1000日"},
	{2000, "2000日"},
	{3000, "3000日"},
	{5000, "5000日"},
	{10000, "10000日"},
}

var yearLabels = map[int]string{
	25: "25周年（銀婚式）",
	30: "30周年（真珠婚式）",
	50: "50周年（金婚式）",
}

func yearLabel(year int) string {
	if l, ok := yearLabels[year]; ok {
		return l
	}
	return fmt.Sprintf("%d周年", year)
}

// Milestones lists the day-count milestones and the yearly anniversaries up
// to yearsAhead, sorted by date. Yearly dates clamp Feb 29 to Feb 28.
func Milestones(start calendar.Date, yearsAhead int) []Anniversary {
	out := make([]Anniversary, 0, len(dayMilestones)+max(yearsAhead, 0))
	for _, m := range dayMilestones {
		out = append(out, Anniversary{
			Date:          start.AddDays(m.days),
			DaysFromStart: m.days,
			Label:         m.label + "記念日",
			IsSpecial:     true,
		})
	}
	for y := 1; y <= yearsAhead; y++ {
		date := start.AddYears(y)
		out = append(out, Anniversary{
			Date:          date,
			DaysFromStart: start.DaysUntil(date),
			Label:         yearLabel(y),
			IsSpecial:     y == 1 || y%5 == 0,
		})
	}
	slices.SortStableFunc(out, func(a, b Anniversary) int { return a.Date.Compare(b.Date) })
	return out
}

// ComputeAnniversaries partitions Milestones around target. Both lists are
// capped at ten entries; the target day itself counts as upcoming.
func ComputeAnniversaries(start, target calendar.Date, yearsAhead int) (Anniversaries, bool) {
	if !start.IsValid() || !target.IsValid() {
		return Anniversaries{}, false
	}
	res := Anniversaries{
		Start:          start,
		Target:         target,
		DaysSinceStart: start.DaysUntil(target),
		Upcoming:       []Anniversary{},
		Past:           []Anniversary{},
	}

	var past []Anniversary
	for _, a := range Milestones(start, yearsAhead) {
		if a.Date.Before(target) {
			past = append(past, a)
			continue
		}
		if res.NextMilestone == nil && a.IsSpecial {
			next := a
			res.NextMilestone = &next
		}
		if len(res.Upcoming) < listLimit {
			res.Upcoming = append(res.Upcoming, a)
		}
	}
	past = past[max(len(past)-listLimit, 0):]
	for i := len(past) - 1; i >= 0; i-- {
		res.Past = append(res.Past, past[i])
	}
	return res, true
}
