// Package orchestrator runs the monthly simulation loop: seekers decide,
// staff triage and review, outcomes flow back into the seekers.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/evaluator"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/mechanism"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/metrics"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/models"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/population"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/reviewer"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/seeker"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/sorter"
	dErrors "github.com/baldwij5/welfareSimulation-sub000/pkg/domain-errors"
	audit "github.com/baldwij5/welfareSimulation-sub000/pkg/platform/audit"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ApplicationIDStride separates application ids of consecutive periods.
const ApplicationIDStride = 10_000

const tracerName = "github.com/baldwij5/welfareSimulation-sub000/internal/simulation/orchestrator"

// ResultsStore receives the statistics of every completed period.
type ResultsStore interface {
	SavePeriod(ctx context.Context, runID uuid.UUID, stats models.PeriodStatistics) error
}

// AuditPublisher records run lifecycle and integrity events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Orchestrator owns one population and its staff for the length of a run.
// It is not safe for concurrent use; runs that should proceed in parallel
// each need their own Orchestrator.
type Orchestrator struct {
	runID      uuid.UUID
	seed       int64
	seekers    []*seeker.Seeker
	byID       map[int64]*seeker.Seeker
	staff      population.Staff
	programs   []models.Program
	mechanisms mechanism.Config
	policy     sorter.Policy

	results ResultsStore
	auditor AuditPublisher
	metrics *metrics.Metrics
	tracer  trace.Tracer
	logger  *slog.Logger

	strictRouting bool
	lastPeriod    int
	lastBatch     []*models.Application
}

type Option func(*Orchestrator)

// WithRunID fixes the run identifier; New generates one otherwise.
func WithRunID(id uuid.UUID) Option {
	return func(o *Orchestrator) {
		o.runID = id
	}
}

// WithSeed records the population seed in the run summary.
func WithSeed(seed int64) Option {
	return func(o *Orchestrator) {
		o.seed = seed
	}
}

// WithPrograms limits the programs seekers consider each period.
func WithPrograms(programs ...models.Program) Option {
	return func(o *Orchestrator) {
		o.programs = programs
	}
}

// WithMechanisms labels the run summary. Agents carry their own copy.
func WithMechanisms(cfg mechanism.Config) Option {
	return func(o *Orchestrator) {
		o.mechanisms = cfg
	}
}

// WithSortingPolicy reorders each period's batch before routing. Without
// it applications are processed in arrival order.
func WithSortingPolicy(p sorter.Policy) Option {
	return func(o *Orchestrator) {
		o.policy = p
	}
}

func WithResultsStore(store ResultsStore) Option {
	return func(o *Orchestrator) {
		o.results = store
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(o *Orchestrator) {
		o.auditor = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(o *Orchestrator) {
		o.tracer = tracer
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithStrictRouting fails RunPeriod on the first application that has no
// evaluator instead of counting it as an anomaly.
func WithStrictRouting() Option {
	return func(o *Orchestrator) {
		o.strictRouting = true
	}
}

// WithStartPeriod makes the next Run begin after period.
func WithStartPeriod(period int) Option {
	return func(o *Orchestrator) {
		o.lastPeriod = period
	}
}

// New wires a population to its staff.
func New(seekers []*seeker.Seeker, staff population.Staff, opts ...Option) (*Orchestrator, error) {
	if staff.Evaluators == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "evaluator map is required")
	}
	byID := make(map[int64]*seeker.Seeker, len(seekers))
	for _, s := range seekers {
		if s == nil {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "seeker cannot be nil")
		}
		if _, dup := byID[s.ID()]; dup {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("duplicate seeker id %d", s.ID()))
		}
		byID[s.ID()] = s
	}
	if staff.Reviewers == nil {
		staff.Reviewers = make(map[models.StaffKey]*reviewer.Reviewer)
	}

	o := &Orchestrator{
		runID:      uuid.New(),
		seekers:    seekers,
		byID:       byID,
		staff:      staff,
		programs:   models.AllPrograms(),
		mechanisms: mechanism.Default(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}
	for _, p := range o.programs {
		if !p.IsValid() {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown program: "+string(p))
		}
	}
	// One period can file at most one application per seeker and program.
	if len(seekers)*len(o.programs) >= ApplicationIDStride {
		return nil, dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("%d seekers across %d programs overflow the per-period application id range", len(seekers), len(o.programs)))
	}
	return o, nil
}

func (o *Orchestrator) RunID() uuid.UUID             { return o.runID }
func (o *Orchestrator) Seekers() []*seeker.Seeker    { return o.seekers }
func (o *Orchestrator) Staff() population.Staff      { return o.staff }
func (o *Orchestrator) LastPeriod() int              { return o.lastPeriod }
func (o *Orchestrator) Mechanisms() mechanism.Config { return o.mechanisms }

// LastBatch is the application batch of the most recent period, in the
// order it was processed.
func (o *Orchestrator) LastBatch() []*models.Application {
	return o.lastBatch
}

// Seeker looks a seeker up by id.
func (o *Orchestrator) Seeker(id int64) (*seeker.Seeker, bool) {
	s, ok := o.byID[id]
	return s, ok
}

// Validate reports every county and program combination in the population
// that has no evaluator.
func (o *Orchestrator) Validate() error {
	missing := make(map[models.StaffKey]struct{})
	for _, s := range o.seekers {
		for _, p := range o.programs {
			key := models.StaffKey{County: s.County(), Program: p}
			if _, ok := o.staff.Evaluators[key]; !ok {
				missing[key] = struct{}{}
			}
		}
	}
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, 0, len(missing))
	for k := range missing {
		names = append(names, k.String())
	}
	slices.Sort(names)
	return dErrors.New(dErrors.CodeInvalidConfig, "no staff for: "+strings.Join(names, ", "))
}

// RunPeriod simulates one period and returns its aggregate counts.
func (o *Orchestrator) RunPeriod(ctx context.Context, period int) (models.PeriodStatistics, error) {
	if period < 0 {
		return models.PeriodStatistics{}, dErrors.New(dErrors.CodeInvalidInput, "period cannot be negative")
	}
	ctx, span := o.tracer.Start(ctx, "orchestrator.RunPeriod",
		trace.WithAttributes(
			attribute.String("run_id", o.runID.String()),
			attribute.Int("period", period),
		),
	)
	defer span.End()

	start := time.Now()
	stats := models.NewPeriodStatistics(period)

	o.resetCapacity(period)
	batch := o.collect(period, &stats)
	if o.policy != nil {
		batch = o.policy.Sort(batch)
	}
	for _, app := range batch {
		if err := o.route(ctx, app, period, &stats); err != nil {
			span.RecordError(err)
			return stats, err
		}
	}
	o.lastBatch = batch
	o.lastPeriod = period

	o.observeUtilization()
	o.metrics.ObservePeriod(stats, time.Since(start))
	span.SetAttributes(
		attribute.Int("submitted", stats.Submitted),
		attribute.Int("approved", stats.Approved),
		attribute.Int("denied", stats.Denied),
		attribute.Int("capacity_exceeded", stats.CapacityExceeded),
	)

	if o.results != nil {
		if err := o.results.SavePeriod(ctx, o.runID, stats); err != nil {
			span.RecordError(err)
			return stats, fmt.Errorf("save period %d: %w", period, err)
		}
	}
	completed := audit.NewEvent(o.runID, audit.EventPeriodCompleted)
	completed.Period = period
	completed.Detail = fmt.Sprintf("submitted=%d approved=%d denied=%d", stats.Submitted, stats.Approved, stats.Denied)
	o.emit(ctx, completed)

	o.logger.InfoContext(ctx, "period completed",
		"run_id", o.runID,
		"period", period,
		"submitted", stats.Submitted,
		"approved", stats.Approved,
		"denied", stats.Denied,
		"escalated", stats.Escalated,
		"capacity_exceeded", stats.CapacityExceeded,
		"routing_anomalies", stats.RoutingAnomalies,
	)
	return stats, nil
}

func (o *Orchestrator) resetCapacity(period int) {
	for _, ev := range o.staff.Evaluators {
		ev.ResetCapacity(period)
	}
	for _, rv := range o.staff.Reviewers {
		rv.ResetCapacity(period)
	}
}

// collect asks every seeker about every program, in population order.
func (o *Orchestrator) collect(period int, stats *models.PeriodStatistics) []*models.Application {
	var batch []*models.Application
	nextID := int64(period) * ApplicationIDStride
	for _, s := range o.seekers {
		for _, program := range o.programs {
			app, ok := s.CreateApplication(program, period, nextID)
			if !ok {
				continue
			}
			nextID++
			batch = append(batch, app)
			stats.RecordSubmission(app)
			o.metrics.IncrementSubmission(app)
		}
	}
	return batch
}

func (o *Orchestrator) route(ctx context.Context, app *models.Application, period int, stats *models.PeriodStatistics) error {
	s, ok := o.byID[app.SeekerID]
	if !ok {
		return dErrors.New(dErrors.CodeInternal, fmt.Sprintf("application %d has unknown seeker %d", app.ID, app.SeekerID))
	}
	key := models.StaffKey{County: s.County(), Program: app.Program}
	ev, ok := o.staff.Evaluators[key]
	if !ok {
		return o.routingAnomaly(ctx, app, key, stats)
	}
	rv := o.staff.Reviewers[key]

	outcome := ev.ProcessApplication(app, s, rv != nil)
	escalated := false
	if outcome == models.OutcomeEscalated {
		escalated = true
		outcome = rv.ReviewApplication(app, s)
		o.recordReview(ctx, app, key, outcome)
	}
	if outcome == models.OutcomeCapacityExceeded {
		app.Outcome = models.OutcomeCapacityExceeded
	}

	stats.RecordOutcome(app.Program, outcome, escalated)
	s.RecordOutcome(app.Program, outcome, period, app.DenialReason)
	return nil
}

func (o *Orchestrator) routingAnomaly(ctx context.Context, app *models.Application, key models.StaffKey, stats *models.PeriodStatistics) error {
	if o.strictRouting {
		return dErrors.New(dErrors.CodeInvalidConfig, "no evaluator for "+key.String())
	}
	stats.RoutingAnomalies++
	o.logger.WarnContext(ctx, "no evaluator for application",
		"run_id", o.runID,
		"application_id", app.ID,
		"seeker_id", app.SeekerID,
		"county", key.County,
		"program", key.Program,
	)
	event := audit.NewEvent(o.runID, audit.EventRoutingAnomaly)
	event.Period = app.Period
	event.SeekerID = app.SeekerID
	event.Program = string(key.Program)
	event.County = key.County
	o.emit(ctx, event)
	return nil
}

// recordReview reports review denials: detected fraud and denied honest
// mistakes. Denials of applications with no misreporting emit nothing.
func (o *Orchestrator) recordReview(ctx context.Context, app *models.Application, key models.StaffKey, outcome models.Outcome) {
	if outcome != models.OutcomeDenied {
		return
	}
	var action audit.AuditEvent
	switch {
	case app.IsFraud:
		action = audit.EventFraudDetected
		o.metrics.IncrementFraudDetection()
	case app.IsError:
		action = audit.EventFalsePositive
	default:
		return
	}
	event := audit.NewEvent(o.runID, action)
	event.Period = app.Period
	event.SeekerID = app.SeekerID
	event.Program = string(key.Program)
	event.County = key.County
	event.Detail = app.DenialReason
	o.emit(ctx, event)
}

func (o *Orchestrator) observeUtilization() {
	if o.metrics == nil {
		return
	}
	for _, ev := range o.staff.Evaluators {
		o.metrics.ObserveUtilization(metrics.RoleEvaluator, ev.CapacityUsed(), ev.MonthlyCapacity())
	}
	for _, rv := range o.staff.Reviewers {
		o.metrics.ObserveUtilization(metrics.RoleReviewer, rv.CapacityUsed(), rv.MonthlyCapacity())
	}
}

// emit publishes best effort; audit failures never stop a run.
func (o *Orchestrator) emit(ctx context.Context, event audit.Event) {
	if o.auditor == nil {
		return
	}
	if err := o.auditor.Emit(ctx, event); err != nil {
		o.logger.WarnContext(ctx, "audit emit failed",
			"run_id", o.runID,
			"action", event.Action,
			"error", err,
		)
	}
}

// IncomeLookup indexes seekers' true annual incomes for need-based sorting.
func IncomeLookup(seekers []*seeker.Seeker) sorter.IncomeLookup {
	incomes := make(map[int64]float64, len(seekers))
	for _, s := range seekers {
		incomes[s.ID()] = s.Income()
	}
	return func(id int64) (float64, bool) {
		v, ok := incomes[id]
		return v, ok
	}
}

var (
	_ evaluator.Applicant = (*seeker.Seeker)(nil)
	_ reviewer.Subject    = (*seeker.Seeker)(nil)
)
