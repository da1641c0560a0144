// Package httpserver exposes a running simulation over HTTP: Prometheus
// metrics, health checks and the stored per-period results.
package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/baldwij5/welfareSimulation-sub000/internal/platform/metrics"
	"github.com/baldwij5/welfareSimulation-sub000/internal/platform/middleware"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/results"
	dErrors "github.com/baldwij5/welfareSimulation-sub000/pkg/domain-errors"
	audit "github.com/baldwij5/welfareSimulation-sub000/pkg/platform/audit"
	"github.com/baldwij5/welfareSimulation-sub000/pkg/platform/httputil"
	"github.com/baldwij5/welfareSimulation-sub000/pkg/platform/middleware/requesttime"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthCheck checks one dependency.
type HealthCheck func(ctx context.Context) error

type router struct {
	results  results.Store
	events   audit.Reader
	gatherer prometheus.Gatherer
	metrics  *metrics.Metrics
	checks   map[string]HealthCheck
	logger   *slog.Logger
	timeout  time.Duration
}

type Option func(*router)

// WithResults serves stored periods under /runs.
func WithResults(store results.Store) Option {
	return func(r *router) {
		r.results = store
	}
}

// WithAuditReader serves audit events under /runs/{runID}/events.
func WithAuditReader(reader audit.Reader) Option {
	return func(r *router) {
		r.events = reader
	}
}

// WithGatherer selects the registry behind /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(r *router) {
		r.gatherer = g
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *router) {
		r.metrics = m
	}
}

// WithHealthCheck adds a named dependency check to /healthz.
func WithHealthCheck(name string, check HealthCheck) Option {
	return func(r *router) {
		r.checks[name] = check
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *router) {
		r.logger = logger
	}
}

// NewRouter wires the endpoints.
func NewRouter(opts ...Option) http.Handler {
	rt := &router{
		gatherer: prometheus.DefaultGatherer,
		checks:   make(map[string]HealthCheck),
		logger:   slog.Default(),
		timeout:  2 * time.Second,
	}
	for _, opt := range opts {
		opt(rt)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Logger(rt.logger, rt.metrics))

	r.Get("/healthz", rt.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(rt.gatherer, promhttp.HandlerOpts{}))
	r.Route("/runs/{runID}", func(r chi.Router) {
		r.Get("/periods", rt.handleListPeriods)
		r.Get("/periods/{period}", rt.handleGetPeriod)
		r.Get("/summary", rt.handleSummary)
		r.Get("/events", rt.handleEvents)
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (rt *router) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	status := http.StatusOK
	if len(rt.checks) > 0 {
		resp.Checks = make(map[string]string, len(rt.checks))
		names := make([]string, 0, len(rt.checks))
		for name := range rt.checks {
			names = append(names, name)
		}
		sort.Strings(names)

		ctx, cancel := context.WithTimeout(r.Context(), rt.timeout)
		defer cancel()
		for _, name := range names {
			if err := rt.checks[name](ctx); err != nil {
				rt.logger.WarnContext(ctx, "health check failed", "check", name, "error", err)
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
	}
	httputil.WriteJSON(w, status, resp)
}

func (rt *router) handleListPeriods(w http.ResponseWriter, r *http.Request) {
	runID, ok := rt.runID(w, r)
	if !ok || !rt.requireResults(w) {
		return
	}
	periods, err := rt.results.ListPeriods(r.Context(), runID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, periods)
}

func (rt *router) handleGetPeriod(w http.ResponseWriter, r *http.Request) {
	runID, ok := rt.runID(w, r)
	if !ok || !rt.requireResults(w) {
		return
	}
	period, err := strconv.Atoi(chi.URLParam(r, "period"))
	if err != nil || period < 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "period must be a non-negative integer"))
		return
	}
	stats, err := rt.results.FindPeriod(r.Context(), runID, period)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

type summaryResponse struct {
	RunID        uuid.UUID `json:"run_id"`
	Periods      int       `json:"periods"`
	Submitted    int       `json:"applications_submitted"`
	Approved     int       `json:"applications_approved"`
	Denied       int       `json:"applications_denied"`
	ApprovalRate float64   `json:"approval_rate"`
}

func (rt *router) handleSummary(w http.ResponseWriter, r *http.Request) {
	runID, ok := rt.runID(w, r)
	if !ok || !rt.requireResults(w) {
		return
	}
	summary, err := results.Replay(r.Context(), rt.results, runID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summaryResponse{
		RunID:        runID,
		Periods:      len(summary.Periods),
		Submitted:    summary.Totals.Submitted,
		Approved:     summary.Totals.Approved,
		Denied:       summary.Totals.Denied,
		ApprovalRate: summary.ApprovalRate(),
	})
}

func (rt *router) handleEvents(w http.ResponseWriter, r *http.Request) {
	runID, ok := rt.runID(w, r)
	if !ok {
		return
	}
	if rt.events == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "audit events are not readable from this process"))
		return
	}
	events, err := rt.events.ListByRun(r.Context(), runID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, events)
}

func (rt *router) runID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "run id must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

func (rt *router) requireResults(w http.ResponseWriter) bool {
	if rt.results == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no results store configured"))
		return false
	}
	return true
}
