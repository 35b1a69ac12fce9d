package server

import (
	"net/http"
	"time"

	"github.com/tartampluch/go-koyomi/internal/astro"
	"github.com/tartampluch/go-koyomi/internal/calendar"
)

type moonResponse struct {
	astro.Sample
	Next astro.Upcoming `json:"next"`
}

func (s *Server) handleMoon(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	d := q.date("date", s.today())
	if q.bad != "" {
		s.badDate(w, r)
		return
	}
	s.ok(w, moonResponse{Sample: astro.MoonPhase(d), Next: astro.NextPhases(d)})
}

func (s *Server) handleMoonCalendar(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	today := s.today()
	year := q.number("year", today.Year)
	month := q.number("month", int(today.Month))
	if q.bad != "" {
		s.badParam(w, r, q.bad)
		return
	}
	days := astro.MonthCalendar(year, time.Month(month))
	if days == nil {
		s.badParam(w, r, "month")
		return
	}
	s.ok(w, days)
}

type moonPhasesResponse struct {
	FullMoons []calendar.Date `json:"fullMoons"`
	NewMoons  []calendar.Date `json:"newMoons"`
}

func (s *Server) handleMoonPhases(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
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
	s.ok(w, moonPhasesResponse{FullMoons: astro.FullMoons(start, end), NewMoons: astro.NewMoons(start, end)})
}

type sekkiResponse struct {
	Date    calendar.Date `json:"date"`
	On      *astro.Sekki  `json:"sekki,omitempty"`
	Nearest astro.Sekki   `json:"nearest"`
}

// handleSekki lists a year's terms, or looks up a single date when one is
// given.
func (s *Server) handleSekki(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	if q.has("date") {
		d := q.date("date", calendar.Date{})
		if q.bad != "" {
			s.badDate(w, r)
			return
		}
		res := sekkiResponse{Date: d, Nearest: astro.NearestSekki(d)}
		if t, ok := astro.SekkiOn(d); ok {
			res.On = &t
		}
		s.ok(w, res)
		return
	}

	year := q.number("year", s.today().Year)
	if q.bad != "" {
		s.badParam(w, r, q.bad)
		return
	}
	s.ok(w, astro.SekkiForYear(year))
}

type rokuyoResponse struct {
	Date calendar.Date `json:"date"`
	astro.Rokuyo
}

func (s *Server) handleRokuyo(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	d := q.date("date", s.today())
	if q.bad != "" {
		s.badDate(w, r)
		return
	}
	s.ok(w, rokuyoResponse{Date: d, Rokuyo: astro.RokuyoOf(d)})
}
