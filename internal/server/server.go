// Package server exposes the calendar engine over HTTP and serves the
// holiday iCalendar feed.
package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tartampluch/go-koyomi/internal/calendar"
	"github.com/tartampluch/go-koyomi/internal/config"
	"github.com/tartampluch/go-koyomi/internal/engine"
	"github.com/tartampluch/go-koyomi/internal/history"
	"github.com/tartampluch/go-koyomi/internal/holiday"
	"github.com/tartampluch/go-koyomi/internal/i18n"
)

// cacheItem stores the rendered feed and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// Options are the collaborators of a Server. Only Clock is required.
type Options struct {
	BindAddr   string
	Port       string
	Clock      calendar.Clock
	History    history.Store        // nil disables recording
	Translator *i18n.Translator     // nil returns raw message keys
	Registry   *prometheus.Registry // nil creates a private registry
}

// Server is the HTTP API. The feed, the holiday overlay and the contact list
// are replaced atomically by the sync worker while requests read them.
type Server struct {
	opts    Options
	clock   calendar.Clock
	history history.Store
	tr      *i18n.Translator
	metrics *metrics
	router  chi.Router

	cache    atomic.Pointer[cacheItem]
	overlay  atomic.Pointer[holiday.Overlay]
	contacts atomic.Pointer[[]engine.Contact]
}

// New creates a server and its routes.
func New(opts Options) *Server {
	if opts.Clock == nil {
		opts.Clock = calendar.RealClock{}
	}
	if opts.BindAddr == "" {
		opts.BindAddr = config.LocalhostBindAddr
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	s := &Server{
		opts:    opts,
		clock:   opts.Clock,
		history: opts.History,
		tr:      opts.Translator,
		metrics: newMetrics(reg),
	}
	s.router = s.routes(reg)
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes(reg *prometheus.Registry) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(s.recoverPanic)

	r.Get(config.RouteHealth, s.handleHealth)
	r.Handle(config.RouteMetrics, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Handle(config.RouteFeed, http.HandlerFunc(s.handleFeed))

	r.Route(config.RouteAPI, func(r chi.Router) {
		r.Get(config.RouteDiff, s.handleDiff)
		r.Get(config.RouteAge, s.handleAge)
		r.Get(config.RouteShift, s.handleShift)
		r.Post(config.RouteBusiness, s.handleBusinessDays)
		r.Get(config.RouteHolidays, s.handleHolidays)
		r.Get(config.RouteHolCheck, s.handleHolidayCheck)
		r.Get(config.RouteWaToEra, s.handleToWareki)
		r.Get(config.RouteWaFrom, s.handleFromWareki)
		r.Get(config.RouteRecur, s.handleRecurrence)
		r.Get(config.RouteMoon, s.handleMoon)
		r.Get(config.RouteMoonCal, s.handleMoonCalendar)
		r.Get(config.RouteMoonList, s.handleMoonPhases)
		r.Get(config.RouteSekki, s.handleSekki)
		r.Get(config.RouteRokuyo, s.handleRokuyo)
		r.Get(config.RouteStats, s.handleStats)
		r.Post(config.RouteCompare, s.handleCompare)
		r.Get(config.RouteAnniv, s.handleAnniversaries)
		r.Get(config.RouteLeap, s.handleLeapYears)
		r.Get(config.RouteHistory, s.handleHistoryList)
		r.Delete(config.RouteHistory, s.handleHistoryClear)
		r.Delete(config.RouteHistItem, s.handleHistoryRemove)
		r.Get(config.RouteContacts, s.handleContacts)
		r.Get(config.RouteTZConv, s.handleTimezoneConvert)
		r.Get(config.RouteTZZones, s.handleTimezoneZones)
		r.Get(config.RouteTimeDiff, s.handleTimeDiff)
		r.Get(config.RouteTimeAdd, s.handleTimeAdd)
		r.Post(config.RouteWork, s.handleWorkHours)
		r.Get(config.RouteFormat, s.handleFormat)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.fail(w, r, http.StatusNotFound, config.CodeNotFound, config.TKeyErrNotFound, nil)
	})
	return r
}

// Start runs the HTTP server and blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if err := config.ValidatePort(s.opts.Port); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         s.opts.BindAddr + config.AddrSeparator + s.opts.Port,
		Handler:      s.router,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.opts.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Apply installs the outcome of a sync: the feed, the holiday overlay and
// the contact list.
func (s *Server) Apply(res *engine.SyncResult) {
	if res == nil {
		return
	}
	s.Update(res.ICS)
	if res.Holidays != nil {
		s.overlay.Store(res.Holidays)
		slog.Debug(config.MsgOverlayLoaded,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyYears, res.Holidays.OfficialYears(),
		)
	}
	contacts := res.Contacts
	s.contacts.Store(&contacts)
	s.metrics.syncs.WithLabelValues(config.OutcomeSuccess).Inc()
}

// RecordSyncFailure counts a failed sync run.
func (s *Server) RecordSyncFailure() {
	s.metrics.syncs.WithLabelValues(config.OutcomeFailure).Inc()
}

// holidays returns the installed overlay, or the rule table before the
// first sync.
func (s *Server) holidays() holiday.Provider {
	if o := s.overlay.Load(); o != nil {
		return o
	}
	return holiday.Rules{}
}

func (s *Server) today() calendar.Date {
	return calendar.Today(s.clock)
}

// Update atomically replaces the served feed. Identical content keeps the
// previous Last-Modified so periodic syncs do not invalidate client caches.
func (s *Server) Update(data []byte) {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))
	if prev := s.cache.Load(); prev != nil && prev.etag == etag {
		return
	}

	lastMod := s.clock.Now().UTC().Format(http.TimeFormat)

	item := &cacheItem{
		data:         data,
		etag:         etag,
		lastModified: lastMod,
	}
	s.cache.Store(item)

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
}

// handleFeed serves the ICS content with HTTP caching support.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	item := s.cache.Load()
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(config.HeaderContentType, config.MimeTextPlain)
	_, _ = io.WriteString(w, config.HTTPMsgOK)
}
