package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tartampluch/go-koyomi/internal/config"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	syncs    *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.MetricsNamespace,
			Name:      config.MetricRequests,
			Help:      "HTTP requests by route, method and status.",
		}, []string{config.MetricLabelRoute, config.MetricLabelMethod, config.MetricLabelStatus}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: config.MetricsNamespace,
			Name:      config.MetricDuration,
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{config.MetricLabelRoute}),
		syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.MetricsNamespace,
			Name:      config.MetricSyncs,
			Help:      "Background sync runs by outcome.",
		}, []string{config.MetricLabelOutcome}),
	}
	reg.MustRegister(m.requests, m.duration, m.syncs)
	return m
}

// logRequests logs every request and feeds the request metrics. The route
// label is the chi pattern so ids in paths do not explode cardinality.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}

		s.metrics.requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		s.metrics.duration.WithLabelValues(route).Observe(elapsed.Seconds())

		slog.Info(config.MsgRequest,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyMethod, r.Method,
			config.LogKeyPath, r.URL.Path,
			config.LogKeyStatus, status,
			config.LogKeyDuration, elapsed.Milliseconds(),
			config.LogKeyRequestID, middleware.GetReqID(r.Context()),
		)
	})
}

// recoverPanic turns a handler panic into a 500 envelope.
func (s *Server) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil || rec == http.ErrAbortHandler {
				if rec != nil {
					panic(rec)
				}
				return
			}
			slog.Error(config.MsgPanic,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyPanic, rec,
				config.LogKeyRequestID, middleware.GetReqID(r.Context()),
			)
			s.fail(w, r, http.StatusInternalServerError, config.CodeInternal, config.TKeyErrInternal, nil)
		}()
		next.ServeHTTP(w, r)
	})
}
