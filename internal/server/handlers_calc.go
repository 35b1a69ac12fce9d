package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/tartampluch/go-koyomi/internal/business"
	"github.com/tartampluch/go-koyomi/internal/calendar"
	"github.com/tartampluch/go-koyomi/internal/config"
	"github.com/tartampluch/go-koyomi/internal/duration"
	"github.com/tartampluch/go-koyomi/internal/holiday"
	"github.com/tartampluch/go-koyomi/internal/wareki"
)

// record stores a successful calculation in the history. Failures are only
// logged so they never fail the request.
func (s *Server) record(r *http.Request, typ, key string, data map[string]any, payload any) {
	if s.history == nil {
		return
	}
	if _, err := s.history.Add(r.Context(), typ, s.tr.MsgData(key, data), payload); err != nil {
		slog.Warn(config.MsgHistoryFail,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	start := q.date("start", calendar.Date{})
	end := q.date("end", calendar.Date{})
	opts := duration.Options{
		IncludeStart:    q.flag("includeStart", true),
		IncludeEnd:      q.flag("includeEnd", true),
		ExcludeWeekends: q.flag("excludeWeekends", false),
	}
	if q.bad != "" {
		s.badParam(w, r, q.bad)
		return
	}
	if !calendar.ValidRange(start, end) {
		s.badRange(w, r)
		return
	}

	res := duration.Diff(start, end, opts)
	s.record(r, config.HistTypeDiff, config.TKeyHistDiff,
		map[string]any{"Start": start.String(), "End": end.String()}, res)
	s.ok(w, res)
}

func (s *Server) handleAge(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	birth := q.date("birth", calendar.Date{})
	on := q.date("on", s.today())
	if q.bad != "" {
		s.badParam(w, r, q.bad)
		return
	}

	res, ok := duration.Age(birth, on)
	if !ok {
		s.badRange(w, r)
		return
	}
	s.record(r, config.HistTypeAge, config.TKeyHistAge, map[string]any{"Birth": birth.String()}, res)
	s.ok(w, res)
}

func (s *Server) handleShift(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	base := q.date("date", s.today())
	amount := q.number("amount", 0)
	from := q.date("from", s.today())
	unit := duration.UnitDay
	if q.has("unit") {
		u, ok := duration.ParseUnit(q.str("unit"))
		if !ok {
			q.fail("unit")
		}
		unit = u
	}
	if q.bad != "" {
		s.badParam(w, r, q.bad)
		return
	}
	s.ok(w, duration.Shift(base, amount, unit, from))
}

type businessRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
	// ExcludedWeekdays uses 0 for Sunday. Omitted means Saturday and Sunday.
	ExcludedWeekdays    []int  `json:"excludedWeekdays"`
	Holidays            string `json:"holidays"`
	UseNationalHolidays bool   `json:"useNationalHolidays"`
}

func (s *Server) handleBusinessDays(w http.ResponseWriter, r *http.Request) {
	var req businessRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.badParam(w, r, "body")
		return
	}
	start, ok1 := calendar.ParseDate(req.Start)
	end, ok2 := calendar.ParseDate(req.End)
	if !ok1 || !ok2 {
		s.badDate(w, r)
		return
	}
	if !calendar.ValidRange(start, end) {
		s.badRange(w, r)
		return
	}

	weekdays := []time.Weekday{time.Saturday, time.Sunday}
	if req.ExcludedWeekdays != nil {
		weekdays = weekdays[:0]
		for _, n := range req.ExcludedWeekdays {
			if n < 0 || n > 6 {
				s.badParam(w, r, "excludedWeekdays")
				return
			}
			weekdays = append(weekdays, time.Weekday(n))
		}
	}

	holidays := business.ParseHolidays(req.Holidays)
	if req.UseNationalHolidays {
		holidays.Add(holiday.Dates(s.holidays(), start, end)...)
	}

	res := business.Count(start, end, business.Options{
		ExcludedWeekdays: business.NewWeekdaySet(weekdays...),
		Holidays:         holidays,
	})
	s.record(r, config.HistTypeBusiness, config.TKeyHistBusiness,
		map[string]any{"Start": start.String(), "End": end.String()}, res)
	s.ok(w, res)
}

type holidaysResponse struct {
	Holidays []holiday.Holiday `json:"holidays"`
	Count    int               `json:"count"`
}

func (s *Server) handleHolidays(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	p := s.holidays()

	var list []holiday.Holiday
	if q.has("start") || q.has("end") {
		start := q.date("start", calendar.Date{})
		end := q.date("end", calendar.Date{})
		if q.bad != "" {
			s.badParam(w, r, q.bad)
			return
		}
		if !calendar.ValidRange(start, end) {
			s.badRange(w, r)
			return
		}
		list = holiday.InRange(p, start, end)
	} else {
		year := q.number("year", s.today().Year)
		if q.bad != "" {
			s.badParam(w, r, q.bad)
			return
		}
		list = p.ForYear(year)
	}
	if list == nil {
		list = []holiday.Holiday{}
	}
	s.ok(w, holidaysResponse{Holidays: list, Count: len(list)})
}

type holidayCheck struct {
	Date      calendar.Date    `json:"date"`
	Weekday   string           `json:"weekday"`
	IsHoliday bool             `json:"isHoliday"`
	Holiday   *holiday.Holiday `json:"holiday,omitempty"`
	Next      *holiday.Holiday `json:"nextHoliday,omitempty"`
}

func (s *Server) handleHolidayCheck(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	d := q.date("date", s.today())
	if q.bad != "" {
		s.badDate(w, r)
		return
	}

	p := s.holidays()
	res := holidayCheck{Date: d, Weekday: calendar.WeekdayOf(d.Weekday(), false)}
	if h, ok := holiday.Lookup(p, d); ok {
		res.IsHoliday = true
		res.Holiday = &h
	}
	if h, ok := holiday.Next(p, d.AddDays(1)); ok {
		res.Next = &h
	}
	s.ok(w, res)
}

func (s *Server) handleToWareki(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	d := q.date("date", s.today())
	if q.bad != "" {
		s.badDate(w, r)
		return
	}
	res, ok := wareki.ToWareki(d)
	if !ok {
		s.fail(w, r, http.StatusBadRequest, config.CodeBadRequest, config.TKeyErrInvalidEra, nil)
		return
	}
	s.record(r, config.HistTypeWareki, config.TKeyHistWareki, map[string]any{"Value": res.Formatted.Full}, res)
	s.ok(w, res)
}

type fromWarekiResponse struct {
	Date       calendar.Date     `json:"date"`
	Weekday    string            `json:"weekday"`
	Conversion wareki.Conversion `json:"wareki"`
}

func (s *Server) handleFromWareki(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)

	var (
		d  calendar.Date
		ok bool
	)
	if q.has("text") {
		d, ok = wareki.Parse(q.str("text"))
	} else {
		era := q.str("era")
		year := q.number("year", 0)
		month := q.number("month", 1)
		day := q.number("day", 1)
		if q.bad != "" {
			s.badParam(w, r, q.bad)
			return
		}
		d, ok = wareki.FromWareki(era, year, month, day)
	}
	if !ok {
		s.fail(w, r, http.StatusBadRequest, config.CodeBadRequest, config.TKeyErrInvalidEra, nil)
		return
	}

	conv, _ := wareki.ToWareki(d)
	res := fromWarekiResponse{Date: d, Weekday: calendar.WeekdayOf(d.Weekday(), false), Conversion: conv}
	s.record(r, config.HistTypeWareki, config.TKeyHistWareki, map[string]any{"Value": d.String()}, res)
	s.ok(w, res)
}

type leapResponse struct {
	calendar.LeapInfo
	NextLeapYear int   `json:"nextLeapYear"`
	PrevLeapYear int   `json:"prevLeapYear"`
	Between      []int `json:"leapYearsBetween,omitempty"`
}

func (s *Server) handleLeapYears(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	year := q.number("year", s.today().Year)
	from := q.number("from", 0)
	to := q.number("to", 0)
	if q.bad != "" {
		s.badParam(w, r, q.bad)
		return
	}

	res := leapResponse{
		LeapInfo:     calendar.LeapYearInfo(year),
		NextLeapYear: calendar.NextLeapYear(year),
		PrevLeapYear: calendar.PrevLeapYear(year),
	}
	if q.has("from") && q.has("to") {
		if from > to {
			s.badRange(w, r)
			return
		}
		// A wrapped difference is negative.
		if span := to - from; span < 0 || span > config.MaxLeapYearSpan {
			s.badParam(w, r, "to")
			return
		}
		res.Between = calendar.LeapYearsBetween(from, to)
	}
	s.ok(w, res)
}
