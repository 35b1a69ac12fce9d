package stats

import "github.com/tartampluch/go-koyomi/internal/calendar"

// Comparison is the result of comparing a list of dates.
type Comparison struct {
	Dates      []calendar.Date `json:"dates"`
	Sorted     []calendar.Date `json:"sortedDates"`
	Earliest   *calendar.Date  `json:"earliest"`
	Latest     *calendar.Date  `json:"latest"`
	Duplicates []calendar.Date `json:"duplicates"`
	IsValid    bool            `json:"isValid"`
}

// CompareDates drops invalid dates, sorts the rest and reports each
// repeated day once. IsValid is false when nothing valid remains.
func CompareDates(dates []calendar.Date) Comparison {
	valid := make([]calendar.Date, 0, len(dates))
	for _, d := range dates {
		if d.IsValid() {
			valid = append(valid, d)
		}
	}
	res := Comparison{Dates: valid, Sorted: []calendar.Date{}, Duplicates: []calendar.Date{}}
	if len(valid) == 0 {
		return res
	}

	res.Sorted = calendar.SortAscending(valid)
	earliest, latest := res.Sorted[0], res.Sorted[len(res.Sorted)-1]
	res.Earliest, res.Latest = &earliest, &latest
	for i := 1; i < len(res.Sorted); i++ {
		cur := res.Sorted[i]
		if cur != res.Sorted[i-1] {
			continue
		}
		if n := len(res.Duplicates); n == 0 || res.Duplicates[n-1] != cur {
			res.Duplicates = append(res.Duplicates, cur)
		}
	}
	res.IsValid = true
	return res
}

// CompareDateStrings parses each entry leniently and compares the ones that
// parse.
func CompareDateStrings(texts []string) Comparison {
	dates := make([]calendar.Date, 0, len(texts))
	for _, s := range texts {
		if d, ok := calendar.ParseDate(s); ok {
			dates = append(dates, d)
		}
	}
	return CompareDates(dates)
}
