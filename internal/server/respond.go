package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tartampluch/go-koyomi/internal/calendar"
	"github.com/tartampluch/go-koyomi/internal/clocktime"
	"github.com/tartampluch/go-koyomi/internal/config"
)

type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

func (s *Server) ok(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

// fail writes the error envelope with a localized message.
func (s *Server) fail(w http.ResponseWriter, _ *http.Request, status int, code, key string, data map[string]any) {
	writeJSON(w, status, envelope{Error: &errorBody{Code: code, Message: s.tr.MsgData(key, data)}})
}

func (s *Server) badParam(w http.ResponseWriter, r *http.Request, name string) {
	s.fail(w, r, http.StatusBadRequest, config.CodeBadRequest, config.TKeyErrInvalidParam, map[string]any{"Name": name})
}

func (s *Server) badDate(w http.ResponseWriter, r *http.Request) {
	s.fail(w, r, http.StatusBadRequest, config.CodeBadRequest, config.TKeyErrInvalidDate, nil)
}

func (s *Server) badRange(w http.ResponseWriter, r *http.Request) {
	s.fail(w, r, http.StatusBadRequest, config.CodeInvalidRange, config.TKeyErrInvalidRange, nil)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error(config.ErrWriteResp,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyPath, r.URL.Path,
		config.LogKeyError, err,
	)
	s.fail(w, r, http.StatusInternalServerError, config.CodeInternal, config.TKeyErrInternal, nil)
}

// query is a small reader over the URL query that remembers the first
// parameter that failed to parse.
type query struct {
	r   *http.Request
	bad string
}

func newQuery(r *http.Request) *query { return &query{r: r} }

func (q *query) has(name string) bool {
	return strings.TrimSpace(q.r.URL.Query().Get(name)) != ""
}

func (q *query) str(name string) string {
	return strings.TrimSpace(q.r.URL.Query().Get(name))
}

func (q *query) fail(name string) {
	if q.bad == "" {
		q.bad = name
	}
}

// date parses a required date, or returns def when the parameter is absent
// and def is not zero.
func (q *query) date(name string, def calendar.Date) calendar.Date {
	v := q.str(name)
	if v == "" {
		if def.IsZero() {
			q.fail(name)
		}
		return def
	}
	d, ok := calendar.ParseDate(v)
	if !ok {
		q.fail(name)
	}
	return d
}

// zone resolves a timezone parameter, falling back to def when absent.
func (q *query) zone(name, def string) *time.Location {
	v := q.str(name)
	if v == "" {
		v = def
	}
	loc, ok := clocktime.ResolveZone(v)
	if !ok {
		q.fail(name)
		return time.UTC
	}
	return loc
}

// instant parses a date-time read in loc, or returns def when absent.
func (q *query) instant(name string, loc *time.Location, def time.Time) time.Time {
	v := q.str(name)
	if v == "" {
		if def.IsZero() {
			q.fail(name)
		}
		return def.In(loc)
	}
	t, ok := calendar.ParseInstant(v, loc)
	if !ok {
		q.fail(name)
	}
	return t
}

func (q *query) number(name string, def int) int {
	v := q.str(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		q.fail(name)
	}
	return n
}

func (q *query) flag(name string, def bool) bool {
	v := q.str(name)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		q.fail(name)
	}
	return b
}

// decodeBody reads a size-limited JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxRequestBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
