// Package reviewer implements specialist review of escalated applications:
// points-based investigation, credibility-adjusted contact costs and the
// final approve/deny decision.
package reviewer

import (
	"log/slog"
	"math"

	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/credibility"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/mechanism"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/models"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/random"
	dErrors "github.com/baldwij5/welfareSimulation-sub000/pkg/domain-errors"
)

const (
	DefaultMonthlyCapacity = 10.0
	DefaultAccuracy        = 0.85
)

// Subject is the view of the seeker under review.
type Subject interface {
	County() string
	NavigationPoints() (points float64, ok bool)
	RecordInvestigation(period int)
	RecordFraudDetection(period int)
}

type Counters struct {
	Reviewed         int `json:"reviewed"`
	Approved         int `json:"approved"`
	Denied           int `json:"denied"`
	FraudDetected    int `json:"fraud_detected"`
	CapacityExceeded int `json:"capacity_exceeded"`

	// FalsePositives are denied honest mistakes; HonestDenials are denied
	// applications with no misreporting at all.
	FalsePositives int `json:"false_positives"`
	HonestDenials  int `json:"honest_denials"`
}

// Reviewer is a specialist staff unit paired with one evaluator queue.
type Reviewer struct {
	id         int64
	key        models.StaffKey
	accuracy   float64
	mechanisms mechanism.Config
	scorer     credibility.Scorer
	src        random.Source
	logger     *slog.Logger

	monthlyCapacity float64
	capacityUsed    float64
	currentPeriod   int
	exhaustedLogged bool

	counters Counters
}

type Option func(*Reviewer)

func WithMechanisms(cfg mechanism.Config) Option {
	return func(r *Reviewer) {
		r.mechanisms = cfg
	}
}

// WithAccuracy sets the detection probability used when no navigation
// budget applies.
func WithAccuracy(accuracy float64) Option {
	return func(r *Reviewer) {
		r.accuracy = accuracy
	}
}

func WithMonthlyCapacity(capacity float64) Option {
	return func(r *Reviewer) {
		r.monthlyCapacity = capacity
	}
}

// WithScorer supplies the credibility model lookup.
func WithScorer(s credibility.Scorer) Option {
	return func(r *Reviewer) {
		r.scorer = s
	}
}

func WithSource(src random.Source) Option {
	return func(r *Reviewer) {
		if src != nil {
			r.src = src
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Reviewer) {
		r.logger = logger
	}
}

// New creates a Reviewer for key. Without a scorer the credibility
// multiplier is always neutral.
func New(id int64, key models.StaffKey, opts ...Option) (*Reviewer, error) {
	if key.County == "" || !key.Program.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "reviewer requires a county and a known program")
	}
	r := &Reviewer{
		id:              id,
		key:             key,
		accuracy:        DefaultAccuracy,
		mechanisms:      mechanism.Default(),
		monthlyCapacity: DefaultMonthlyCapacity,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.src == nil {
		r.src = random.New(id)
	}
	if r.accuracy < 0 || r.accuracy > 1 || math.IsNaN(r.accuracy) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "accuracy must be within [0,1]")
	}
	if r.monthlyCapacity <= 0 || math.IsNaN(r.monthlyCapacity) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "monthly capacity must be positive")
	}
	return r, nil
}

func (r *Reviewer) ID() int64                { return r.id }
func (r *Reviewer) Key() models.StaffKey     { return r.key }
func (r *Reviewer) County() string           { return r.key.County }
func (r *Reviewer) State() string            { return credibility.StateOf(r.key.County) }
func (r *Reviewer) Program() models.Program  { return r.key.Program }
func (r *Reviewer) Accuracy() float64        { return r.accuracy }
func (r *Reviewer) MonthlyCapacity() float64 { return r.monthlyCapacity }
func (r *Reviewer) CapacityUsed() float64    { return r.capacityUsed }
func (r *Reviewer) CurrentPeriod() int       { return r.currentPeriod }
func (r *Reviewer) Counters() Counters       { return r.counters }

func (r *Reviewer) RemainingCapacity() float64 {
	return r.monthlyCapacity - r.capacityUsed
}

func (r *Reviewer) SetMonthlyCapacity(capacity float64) error {
	if capacity <= 0 || math.IsNaN(capacity) {
		return dErrors.New(dErrors.CodeInvariantViolation, "monthly capacity must be positive")
	}
	r.monthlyCapacity = capacity
	return nil
}

func (r *Reviewer) ResetCapacity(period int) {
	r.currentPeriod = period
	r.capacityUsed = 0
	r.exhaustedLogged = false
}

func (r *Reviewer) HasCapacity(app *models.Application) bool {
	return r.capacityUsed+app.Complexity <= r.monthlyCapacity
}

// ReviewApplication investigates an escalated application and decides it.
// subject may be nil, in which case detection is probabilistic.
func (r *Reviewer) ReviewApplication(app *models.Application, subject Subject) models.Outcome {
	if !r.HasCapacity(app) {
		r.counters.CapacityExceeded++
		if !r.exhaustedLogged {
			r.exhaustedLogged = true
			r.logger.Debug("reviewer capacity exhausted",
				"staff", r.key.String(),
				"period", r.currentPeriod,
				"capacity_used", r.capacityUsed,
			)
		}
		return models.OutcomeCapacityExceeded
	}

	r.capacityUsed += app.Complexity
	r.counters.Reviewed++
	app.Investigated = true

	var detected bool
	if subject != nil {
		subject.RecordInvestigation(r.currentPeriod)
	}
	if points, ok := navigationBudget(subject); ok {
		detected = r.investigate(app, points, subject.County())
	} else {
		detected = r.probabilisticDetection(app)
	}

	if !detected {
		app.Approve()
		r.counters.Approved++
		return models.OutcomeApproved
	}

	app.Deny(models.ReasonDetectedInReview)
	r.counters.Denied++
	if app.IsFraud || app.IsError {
		r.counters.FraudDetected++
	}
	switch {
	case app.IsError && !app.IsFraud:
		r.counters.FalsePositives++
	case !app.IsError && !app.IsFraud:
		r.counters.HonestDenials++
	}
	// The seeker's ban policy decides what a detection means.
	if app.IsFraud && subject != nil {
		subject.RecordFraudDetection(r.currentPeriod)
	}
	return models.OutcomeDenied
}

func navigationBudget(subject Subject) (float64, bool) {
	if subject == nil {
		return 0, false
	}
	return subject.NavigationPoints()
}

// investigate spends the seeker's navigation budget on the selected actions
// and reports detection once the balance goes negative.
func (r *Reviewer) investigate(app *models.Application, points float64, county string) bool {
	remaining := points
	for _, cost := range r.actionCosts(app, county) {
		remaining -= cost
		if remaining < 0 {
			return true
		}
	}
	return false
}

// InvestigationCost is the total the selected actions would charge for app
// in county if the investigation ran to the end.
func (r *Reviewer) InvestigationCost(app *models.Application, county string) float64 {
	var total float64
	for _, cost := range r.actionCosts(app, county) {
		total += cost
	}
	return total
}

// actionCosts prices each selected action. Lies double every cost; contact
// actions after the first one are scaled by the county credibility multiplier.
func (r *Reviewer) actionCosts(app *models.Application, county string) []float64 {
	multiplier := r.CredibilityMultiplier(county)
	contacted := false
	actions := SelectActions(app)
	costs := make([]float64, 0, len(actions))
	for _, action := range actions {
		cost := action.Cost
		if app.IsFraud {
			cost *= FraudCostMultiplier
		}
		if action.Contact {
			if contacted {
				cost *= multiplier
			}
			contacted = true
		}
		costs = append(costs, cost)
	}
	return costs
}

func (r *Reviewer) probabilisticDetection(app *models.Application) bool {
	if !app.IsFraud && !app.IsError {
		return false
	}
	return r.src.Float64() < r.accuracy
}

// CredibilityMultiplier is exactly 1.0 unless the state-discrimination
// mechanism is on and a model covers county.
func (r *Reviewer) CredibilityMultiplier(county string) float64 {
	if !r.mechanisms.StateDiscriminationEnabled || r.scorer == nil {
		return credibility.Neutral
	}
	return r.scorer.Multiplier(county)
}

func (r *Reviewer) ApprovalRate() float64      { return r.rate(r.counters.Approved) }
func (r *Reviewer) FraudDetectionRate() float64 { return r.rate(r.counters.FraudDetected) }
func (r *Reviewer) FalsePositiveRate() float64  { return r.rate(r.counters.FalsePositives) }

func (r *Reviewer) rate(n int) float64 {
	if r.counters.Reviewed == 0 {
		return 0
	}
	return float64(n) / float64(r.counters.Reviewed)
}
