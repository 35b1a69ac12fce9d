package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/tartampluch/go-koyomi/internal/calendar"
	"github.com/tartampluch/go-koyomi/internal/clocktime"
	"github.com/tartampluch/go-koyomi/internal/config"
)

func (s *Server) handleTimezoneConvert(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	from := q.zone("from", config.DefaultTimezone)
	to := q.zone("to", "")
	at := q.instant("at", from, s.clock.Now())
	if q.bad != "" {
		s.badParam(w, r, q.bad)
		return
	}
	s.ok(w, clocktime.Convert(at, from, to))
}

type zonesResponse struct {
	Zones   []clocktime.ZoneDisplay `json:"zones"`
	Presets []clocktime.Zone        `json:"majorZones"`
}

func (s *Server) handleTimezoneZones(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	base := q.zone("zone", config.DefaultTimezone)
	at := q.instant("at", base, s.clock.Now())
	if q.bad != "" {
		s.badParam(w, r, q.bad)
		return
	}

	ids := clocktime.MajorZoneIDs()
	if q.has("zones") {
		ids = splitList(q.str("zones"))
	}
	s.ok(w, zonesResponse{Zones: clocktime.MultiZone(at, ids), Presets: clocktime.MajorZones})
}

func (s *Server) handleTimeDiff(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	loc := q.zone("zone", config.DefaultTimezone)
	start := q.instant("start", loc, time.Time{})
	end := q.instant("end", loc, time.Time{})
	if q.bad != "" {
		s.badParam(w, r, q.bad)
		return
	}

	res := clocktime.Between(start, end)
	s.record(r, config.HistTypeTimeCalc, config.TKeyHistTimeCalc, map[string]any{
		"Start": start.Format(clocktime.DisplayLayout),
		"End":   end.Format(clocktime.DisplayLayout),
	}, res)
	s.ok(w, res)
}

func (s *Server) handleTimeAdd(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	loc := q.zone("zone", config.DefaultTimezone)
	base := q.instant("base", loc, s.clock.Now())
	hours := q.number("hours", 0)
	minutes := q.number("minutes", 0)
	seconds := q.number("seconds", 0)
	if q.bad != "" {
		s.badParam(w, r, q.bad)
		return
	}
	s.ok(w, clocktime.Add(base, hours, minutes, seconds))
}

type workShift struct {
	Date         string `json:"date"`
	Start        string `json:"startTime"`
	End          string `json:"endTime"`
	BreakMinutes int    `json:"breakMinutes"`
}

type workRequest struct {
	Records         []workShift `json:"records"`
	StandardMinutes *int        `json:"standardMinutes"`
}

type workResponse struct {
	clocktime.Summary
	Results []clocktime.ShiftResult `json:"results"`
}

func (s *Server) handleWorkHours(w http.ResponseWriter, r *http.Request) {
	var req workRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.badParam(w, r, "body")
		return
	}
	if len(req.Records) == 0 || len(req.Records) > config.MaxWorkShifts {
		s.badParam(w, r, "records")
		return
	}
	standard := clocktime.DefaultStandardMinutes
	if req.StandardMinutes != nil {
		if *req.StandardMinutes < 0 {
			s.badParam(w, r, "standardMinutes")
			return
		}
		standard = *req.StandardMinutes
	}

	shifts := make([]clocktime.Shift, 0, len(req.Records))
	results := make([]clocktime.ShiftResult, 0, len(req.Records))
	for _, rec := range req.Records {
		day, ok := calendar.ParseDate(rec.Date)
		if !ok {
			s.badDate(w, r)
			return
		}
		res, ok := clocktime.WorkHours(rec.Start, rec.End, rec.BreakMinutes, standard)
		if !ok {
			s.badParam(w, r, "records")
			return
		}
		shifts = append(shifts, clocktime.Shift{Date: day, Start: rec.Start, End: rec.End, BreakMinutes: rec.BreakMinutes})
		results = append(results, res)
	}

	resp := workResponse{Summary: clocktime.Summarize(shifts, standard), Results: results}
	s.record(r, config.HistTypeWorkHours, config.TKeyHistWorkHours, map[string]any{"Count": len(shifts)}, resp)
	s.ok(w, resp)
}

type formatResponse struct {
	clocktime.Formats
	Zone    string             `json:"zone"`
	Presets []clocktime.Preset `json:"presets"`
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	loc := q.zone("zone", config.DefaultTimezone)
	at := q.instant("at", loc, s.clock.Now())
	if q.bad != "" {
		s.badParam(w, r, q.bad)
		return
	}
	s.ok(w, formatResponse{
		Formats: clocktime.Render(at.In(loc), q.str("custom")),
		Zone:    loc.String(),
		Presets: clocktime.Presets,
	})
}

func splitList(v string) []string {
	var out []string
	for _, f := range strings.Split(v, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
