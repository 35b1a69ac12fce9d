package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tartampluch/go-koyomi/internal/calendar"
	"github.com/tartampluch/go-koyomi/internal/config"
	"github.com/tartampluch/go-koyomi/internal/engine"
	"github.com/tartampluch/go-koyomi/internal/export"
	"github.com/tartampluch/go-koyomi/internal/history"
	"github.com/tartampluch/go-koyomi/internal/recurrence"
	"github.com/tartampluch/go-koyomi/internal/stats"
)

// handleRecurrence expands a pattern and renders it as JSON, ICS or CSV.
// Requests that could exceed config.MaxOccurrences are refused before any
// date is generated.
func (s *Server) handleRecurrence(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	start := q.date("start", calendar.Date{})
	end := q.date("end", calendar.Date{})
	weekday := q.number("weekday", -1)
	day := q.number("day", 0)
	nth := q.number("nth", 0)
	format := q.str("format")
	if format == "" {
		format = config.FormatJSON
	}
	switch format {
	case config.FormatJSON, config.FormatICS, config.FormatCSV:
	default:
		q.fail("format")
	}
	if q.bad != "" {
		s.badParam(w, r, q.bad)
		return
	}
	if !calendar.ValidRange(start, end) {
		s.badRange(w, r)
		return
	}

	pattern, ok := recurrence.ParsePattern(q.str("kind"), weekday, day, nth)
	if !ok {
		s.fail(w, r, http.StatusBadRequest, config.CodeBadRequest, config.TKeyErrPattern, nil)
		return
	}

	req := recurrence.Request{Start: start, End: end, Pattern: pattern}
	if n := recurrence.Estimate(req); n > config.MaxOccurrences {
		slog.Info(config.MsgTooMany,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyCount, n,
			config.LogKeyMax, config.MaxOccurrences,
		)
		s.fail(w, r, http.StatusUnprocessableEntity, config.CodeTooMany, config.TKeyErrTooMany,
			map[string]any{"Max": config.MaxOccurrences})
		return
	}

	res := recurrence.Generate(req)
	s.record(r, config.HistTypeRecurrence, config.TKeyHistRecurrence, map[string]any{"Count": res.Count}, res)

	if format == config.FormatJSON {
		s.ok(w, res)
		return
	}

	title := q.str("title")
	if title == "" {
		title = s.tr.MsgData(config.TKeyEvtRecurrence, map[string]any{"Count": res.Count})
	}
	events := export.FromDates(res.Dates, title, q.str("description"))
	s.writeExport(w, r, format, q.str("encoding"), events)
}

// writeExport streams events as an ICS or CSV attachment.
func (s *Server) writeExport(w http.ResponseWriter, r *http.Request, format, encoding string, events []export.Event) {
	if format == config.FormatICS {
		data, err := export.ICS(events, export.CalendarOptions{}, s.clock.Now())
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
		w.Header().Set(config.HeaderContentDisposition, fmt.Sprintf(config.FormatAttachment, config.ExportBaseName+config.ExtICS))
		_, _ = w.Write(data)
		return
	}

	opts := export.CSVOptions{WithTitle: true, ShiftJIS: encoding == config.EncodingSJIS}
	mime := config.MimeCSV
	if opts.ShiftJIS {
		mime = config.MimeCSVShiftJIS
	}
	w.Header().Set(config.HeaderContentType, mime)
	w.Header().Set(config.HeaderContentDisposition, fmt.Sprintf(config.FormatAttachment, config.ExportBaseName+config.ExtCSV))
	if err := export.WriteCSV(w, events, opts); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	start := q.date("start", calendar.Date{})
	end := q.date("end", calendar.Date{})
	if q.bad != "" {
		s.badParam(w, r, q.bad)
		return
	}
	res, ok := stats.Range(start, end, s.holidays())
	if !ok {
		s.badRange(w, r)
		return
	}
	s.ok(w, res)
}

type compareRequest struct {
	Dates []string `json:"dates"`
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.badParam(w, r, "body")
		return
	}
	res := stats.CompareDateStrings(req.Dates)
	if !res.IsValid {
		s.fail(w, r, http.StatusBadRequest, config.CodeBadRequest, config.TKeyErrNoDates, nil)
		return
	}
	s.ok(w, res)
}

func (s *Server) handleAnniversaries(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	start := q.date("start", calendar.Date{})
	target := q.date("target", s.today())
	years := q.number("years", config.DefaultAnniversaryYears)
	if years < 0 || years > config.MaxAnniversaryYears {
		q.fail("years")
	}
	if q.bad != "" {
		s.badParam(w, r, q.bad)
		return
	}

	res, ok := stats.ComputeAnniversaries(start, target, years)
	if !ok {
		s.badRange(w, r)
		return
	}
	s.record(r, config.HistTypeAnniversary, config.TKeyHistAnniversary, map[string]any{"Start": start.String()}, res)
	s.ok(w, res)
}

func (s *Server) historyUnavailable(w http.ResponseWriter, r *http.Request) bool {
	if s.history != nil {
		return false
	}
	s.fail(w, r, http.StatusServiceUnavailable, config.CodeUnavailable, config.TKeyErrUnavailable, nil)
	return true
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	if s.historyUnavailable(w, r) {
		return
	}
	q := newQuery(r)
	limit := q.number("limit", 0)
	if q.bad != "" {
		s.badParam(w, r, q.bad)
		return
	}
	items, err := s.history.ListByType(r.Context(), q.str("type"), limit)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.ok(w, items)
}

func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	if s.historyUnavailable(w, r) {
		return
	}
	if err := s.history.Clear(r.Context()); err != nil {
		s.internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistoryRemove(w http.ResponseWriter, r *http.Request) {
	if s.historyUnavailable(w, r) {
		return
	}
	err := s.history.Remove(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, history.ErrNotFound):
		s.fail(w, r, http.StatusNotFound, config.CodeNotFound, config.TKeyErrNotFound, nil)
	case err != nil:
		s.internalError(w, r, err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

type contactsResponse struct {
	Contacts []engine.Contact `json:"contacts"`
	Count    int              `json:"count"`
}

// handleContacts lists the synced contacts with ages relative to today.
func (s *Server) handleContacts(w http.ResponseWriter, r *http.Request) {
	loaded := s.contacts.Load()
	if loaded == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		s.fail(w, r, http.StatusServiceUnavailable, config.CodeUnavailable, config.TKeyErrUnavailable, nil)
		return
	}

	today := s.today()
	out := make([]engine.Contact, len(*loaded))
	for i, c := range *loaded {
		out[i] = c.At(today)
	}
	engine.SortByNextBirthday(out)
	s.ok(w, contactsResponse{Contacts: out, Count: len(out)})
}
