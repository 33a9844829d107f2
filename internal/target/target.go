// Package target is a local stand-in for the latency API. It answers mocked
// clients straight away and delays everyone else, so a run can be tried end
// to end without the real gateway.
package target

import (
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Options configures the stand-in target.
type Options struct {
	// Prefix is the path every route lives under, e.g. /api/latency/
	Prefix string

	ClientHeader string
	MockedID     string

	// BackendDelay is added to every call not made by MockedID
	BackendDelay time.Duration

	Logger zerolog.Logger
}

// Handler serves the normal/, mockiffound/ and traces/ routes plus
// Prometheus metrics on /metrics.
type Handler struct {
	opts     Options
	router   chi.Router
	calls    atomic.Int64
	requests *prometheus.CounterVec
}

// NewHandler creates a Handler with the given options
func NewHandler(opts Options) *Handler {
	if opts.ClientHeader == "" {
		opts.ClientHeader = "X-Client-Id"
	}

	h := &Handler{
		opts: opts,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "latbench_target_requests_total",
			Help: "Requests served by the stand-in target.",
		}, []string{"route", "mocked"}),
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(h.requests)

	r := chi.NewRouter()
	r.Use(h.count)
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	routes := func(r chi.Router) {
		r.Get("/normal/{kind}", h.normal)
		r.Get("/mockiffound/{count}/{format}", h.mockIfFound)
		r.Get("/traces/{traceID}", h.trace)
	}
	if prefix := strings.TrimRight(opts.Prefix, "/"); prefix != "" {
		r.Route(prefix, routes)
	} else {
		routes(r)
	}

	h.router = r
	return h
}

// Calls returns the number of requests served
func (h *Handler) Calls() int64 {
	return h.calls.Load()
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.calls.Add(1)
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) isMocked(r *http.Request) bool {
	id := r.Header.Get(h.opts.ClientHeader)
	return id != "" && id == h.opts.MockedID
}

// normal serves normal/mock, which is always mocked, and normal/backend,
// which is mocked only for the mocked client.
func (h *Handler) normal(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "kind") {
	case "mock":
		h.respond(w, r, "normal", true)
	case "backend":
		h.respond(w, r, "normal", h.isMocked(r))
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) mockIfFound(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "mockiffound", h.isMocked(r))
}

func (h *Handler) trace(w http.ResponseWriter, r *http.Request) {
	h.requests.WithLabelValues("traces", "false").Inc()
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"traceId":%q,"client":%q}`, chi.URLParam(r, "traceID"), r.Header.Get(h.opts.ClientHeader))
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, route string, mocked bool) {
	if !mocked && h.opts.BackendDelay > 0 {
		select {
		case <-time.After(h.opts.BackendDelay):
		case <-r.Context().Done():
			return
		}
	}

	traceID := uuid.NewString()
	h.requests.WithLabelValues(route, fmt.Sprint(mocked)).Inc()
	h.opts.Logger.Debug().Str("path", r.URL.Path).Bool("mocked", mocked).Str("trace_id", traceID).Msg("served")

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Trace-Id", traceID)
	fmt.Fprintf(w, `{"traceId":%q,"mocked":%t,"path":%q}`, traceID, mocked, r.URL.Path)
}
