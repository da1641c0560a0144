// Package evaluator implements front-line triage for one (county, program)
// queue: capacity accounting, a reported-figures eligibility check, suspicion
// scoring and the escalate/deny/approve decision.
package evaluator

import (
	"log/slog"
	"math"

	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/models"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/random"
	dErrors "github.com/baldwij5/welfareSimulation-sub000/pkg/domain-errors"
)

const (
	DefaultMonthlyCapacity = 20.0
	DefaultStrictness      = 0.5

	// EscalationThreshold is the suspicion above which a case goes to review.
	EscalationThreshold = 0.8

	suspicionNoiseSD = 0.1
)

// Applicant is the view of the seeker the evaluator needs.
type Applicant interface {
	HasInvestigationHistory() bool
}

// Counters are cumulative processing totals.
type Counters struct {
	Processed        int `json:"processed"`
	Approved         int `json:"approved"`
	Denied           int `json:"denied"`
	Escalated        int `json:"escalated"`
	CapacityExceeded int `json:"capacity_exceeded"`
}

// Evaluator is a front-line staff unit. Capacity is measured in complexity
// units and resets every period.
type Evaluator struct {
	id         int64
	key        models.StaffKey
	strictness float64
	src        random.Source
	logger     *slog.Logger
	specialist map[models.Program]bool

	monthlyCapacity float64
	capacityUsed    float64
	currentPeriod   int
	exhaustedLogged bool

	counters Counters
}

type Option func(*Evaluator)

func WithStrictness(strictness float64) Option {
	return func(e *Evaluator) {
		e.strictness = strictness
	}
}

func WithMonthlyCapacity(capacity float64) Option {
	return func(e *Evaluator) {
		e.monthlyCapacity = capacity
	}
}

// WithSource replaces the generator used for suspicion noise.
func WithSource(src random.Source) Option {
	return func(e *Evaluator) {
		if src != nil {
			e.src = src
		}
	}
}

// WithSpecialistPrograms sets the programs that always go to review when a
// reviewer is available. The default is SSI. Passing none disables the rule.
func WithSpecialistPrograms(programs ...models.Program) Option {
	return func(e *Evaluator) {
		e.specialist = make(map[models.Program]bool, len(programs))
		for _, p := range programs {
			e.specialist[p] = true
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

// New creates an Evaluator serving key.
func New(id int64, key models.StaffKey, opts ...Option) (*Evaluator, error) {
	if key.County == "" || !key.Program.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "evaluator requires a county and a known program")
	}
	e := &Evaluator{
		id:              id,
		key:             key,
		strictness:      DefaultStrictness,
		monthlyCapacity: DefaultMonthlyCapacity,
		logger:          slog.Default(),
		specialist:      map[models.Program]bool{models.ProgramSSI: true},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.src == nil {
		e.src = random.New(id)
	}
	if e.strictness < 0 || e.strictness > 1 || math.IsNaN(e.strictness) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "strictness must be within [0,1]")
	}
	if e.monthlyCapacity <= 0 || math.IsNaN(e.monthlyCapacity) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "monthly capacity must be positive")
	}
	return e, nil
}

func (e *Evaluator) ID() int64                { return e.id }
func (e *Evaluator) Key() models.StaffKey     { return e.key }
func (e *Evaluator) County() string           { return e.key.County }
func (e *Evaluator) Program() models.Program  { return e.key.Program }
func (e *Evaluator) Strictness() float64      { return e.strictness }
func (e *Evaluator) MonthlyCapacity() float64 { return e.monthlyCapacity }
func (e *Evaluator) CapacityUsed() float64    { return e.capacityUsed }
func (e *Evaluator) CurrentPeriod() int       { return e.currentPeriod }
func (e *Evaluator) Counters() Counters       { return e.counters }

// IsSpecialist reports whether program always goes to review.
func (e *Evaluator) IsSpecialist(program models.Program) bool { return e.specialist[program] }

// RemainingCapacity is the unspent budget for the current period.
func (e *Evaluator) RemainingCapacity() float64 {
	return e.monthlyCapacity - e.capacityUsed
}

// SetMonthlyCapacity resizes the budget, for staffing derived after construction.
func (e *Evaluator) SetMonthlyCapacity(capacity float64) error {
	if capacity <= 0 || math.IsNaN(capacity) {
		return dErrors.New(dErrors.CodeInvariantViolation, "monthly capacity must be positive")
	}
	e.monthlyCapacity = capacity
	return nil
}

// ResetCapacity starts a new period with the full budget.
func (e *Evaluator) ResetCapacity(period int) {
	e.currentPeriod = period
	e.capacityUsed = 0
	e.exhaustedLogged = false
}

// HasCapacity reports whether app fits in what is left of the budget.
func (e *Evaluator) HasCapacity(app *models.Application) bool {
	return e.capacityUsed+app.Complexity <= e.monthlyCapacity
}

// ApprovalRate is approvals over processed applications.
func (e *Evaluator) ApprovalRate() float64 {
	if e.counters.Processed == 0 {
		return 0
	}
	return float64(e.counters.Approved) / float64(e.counters.Processed)
}

// ProcessApplication triages app. canEscalate is false when no reviewer is
// paired with this queue; escalation-worthy cases are then decided here.
func (e *Evaluator) ProcessApplication(app *models.Application, applicant Applicant, canEscalate bool) models.Outcome {
	if !e.HasCapacity(app) {
		e.counters.CapacityExceeded++
		if !e.exhaustedLogged {
			e.exhaustedLogged = true
			e.logger.Debug("evaluator capacity exhausted",
				"staff", e.key.String(),
				"period", e.currentPeriod,
				"capacity_used", e.capacityUsed,
				"monthly_capacity", e.monthlyCapacity,
			)
		}
		return models.OutcomeCapacityExceeded
	}

	e.capacityUsed += app.Complexity
	e.counters.Processed++

	if !ReportedEligible(app) {
		app.Deny(models.ReasonIncomeTooHigh)
		e.counters.Denied++
		return models.OutcomeDenied
	}

	history := applicant != nil && applicant.HasInvestigationHistory()
	suspicion := e.Suspicion(app, history)
	app.SuspicionScore = suspicion

	if e.shouldEscalate(app, suspicion) && canEscalate {
		app.Escalated = true
		app.Outcome = models.OutcomeEscalated
		e.counters.Escalated++
		return models.OutcomeEscalated
	}

	if suspicion > e.strictness {
		app.Investigated = true
		if app.IsFraud || app.IsError {
			app.Deny(models.ReasonFailedVerification)
			e.counters.Denied++
			return models.OutcomeDenied
		}
	}

	app.Approve()
	e.counters.Approved++
	return models.OutcomeApproved
}

// Suspicion scores red flags on the reported figures plus noise from the
// evaluator's own generator, clamped to [0,1].
func (e *Evaluator) Suspicion(app *models.Application, investigationHistory bool) float64 {
	score := BaseSuspicion(app, investigationHistory)
	score += random.Normal(e.src, 0, suspicionNoiseSD)
	return math.Max(0, math.Min(1, score))
}

func (e *Evaluator) shouldEscalate(app *models.Application, suspicion float64) bool {
	return suspicion > EscalationThreshold || e.specialist[app.Program]
}
