// Package seeker models an individual who may apply for benefits: whether to
// apply, whether to misreport, and how outcomes feed back into later choices.
package seeker

import (
	"log/slog"
	"math"
	"strings"

	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/mechanism"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/models"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/random"
	dErrors "github.com/baldwij5/welfareSimulation-sub000/pkg/domain-errors"
)

// Profile is the fixed identity and economic situation of a seeker.
type Profile struct {
	ID            int64
	Race          models.Race
	County        string
	Income        float64 // annual
	HasChildren   bool
	HasDisability bool
	Demographics  models.Demographics
}

// Traits are behavioral parameters drawn once at creation.
type Traits struct {
	FraudPropensity float64 // [0,2]
	LyingMagnitude  float64 // [0,100] percent under-reported when lying
	ErrorPropensity float64 // [0,2]
	ErrorMagnitude  float64 // [0,20] percent off when mistaken
}

// Denial is one entry of the denial history.
type Denial struct {
	Period  int
	Program models.Program
	Reason  string
}

// Seeker is a benefit-seeking agent. It is not safe for concurrent use; a
// run mutates each seeker from a single goroutine.
type Seeker struct {
	profile Profile
	traits  Traits

	src         random.Source
	mechanisms  mechanism.Config
	sensitivity mechanism.Sensitivity
	calibration Calibration
	navigation  NavigationPolicy
	learner     Learner
	bans        BanPolicy
	logger      *slog.Logger

	beliefs       map[models.Program]float64
	history       map[models.Program][]models.Outcome
	enrolledSince map[models.Program]int
	recertifying  map[models.Program]bool
	fraud         FraudRecord

	investigations []int
	denials        []Denial

	numApplications int
	numApprovals    int
	numDenials      int
}

type Option func(*Seeker)

// WithMechanisms selects the navigation, learning and ban strategies.
func WithMechanisms(cfg mechanism.Config) Option {
	return func(s *Seeker) {
		s.mechanisms = cfg
	}
}

func WithSensitivity(sens mechanism.Sensitivity) Option {
	return func(s *Seeker) {
		s.sensitivity = sens
	}
}

func WithCalibration(c Calibration) Option {
	return func(s *Seeker) {
		s.calibration = c
	}
}

// WithSource replaces the agent generator, which otherwise is seeded from the id.
func WithSource(src random.Source) Option {
	return func(s *Seeker) {
		if src != nil {
			s.src = src
		}
	}
}

// WithEnrollment marks the seeker enrolled in program since period, for
// populations loaded with historical participation.
func WithEnrollment(program models.Program, period int) Option {
	return func(s *Seeker) {
		s.enrolledSince[program] = period
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Seeker) {
		s.logger = logger
	}
}

// New creates a Seeker, draws its traits and selects its mechanism strategies.
// Without options it runs the full model at baseline sensitivity.
func New(p Profile, opts ...Option) (*Seeker, error) {
	p.County = strings.TrimSpace(p.County)
	if p.County == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "county cannot be empty")
	}
	if p.Income < 0 || math.IsNaN(p.Income) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "income cannot be negative")
	}
	if !p.Demographics.Education.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown education tier: "+string(p.Demographics.Education))
	}
	if !p.Demographics.Employment.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown employment status: "+string(p.Demographics.Employment))
	}

	s := &Seeker{
		profile:       p,
		mechanisms:    mechanism.Default(),
		sensitivity:   mechanism.BaselineSensitivity(),
		calibration:   DefaultCalibration(),
		logger:        slog.Default(),
		beliefs:       make(map[models.Program]float64),
		history:       make(map[models.Program][]models.Outcome),
		enrolledSince: make(map[models.Program]int),
		recertifying:  make(map[models.Program]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.src == nil {
		s.src = random.New(p.ID)
	}
	if err := s.sensitivity.Validate(); err != nil {
		return nil, err
	}

	s.traits = Traits{
		FraudPropensity: random.Uniform(s.src, 0, 2),
		LyingMagnitude:  random.Uniform(s.src, 0, 100),
		ErrorPropensity: random.Uniform(s.src, 0, 2),
		ErrorMagnitude:  random.Uniform(s.src, 0, 20),
	}
	s.navigation = newNavigationPolicy(s.mechanisms, p, s.sensitivity.BureaucracyPointsMult, s.src)
	s.learner = newLearner(s.mechanisms, s.sensitivity.LearningRate)
	s.bans = newBanPolicy(s.mechanisms)

	for _, prog := range models.AllPrograms() {
		s.beliefs[prog] = s.sensitivity.ApprovalRate
	}
	return s, nil
}

func (s *Seeker) ID() int64                         { return s.profile.ID }
func (s *Seeker) Race() models.Race                 { return s.profile.Race }
func (s *Seeker) County() string                    { return s.profile.County }
func (s *Seeker) Income() float64                   { return s.profile.Income }
func (s *Seeker) HasChildren() bool                 { return s.profile.HasChildren }
func (s *Seeker) HasDisability() bool               { return s.profile.HasDisability }
func (s *Seeker) Demographics() models.Demographics { return s.profile.Demographics }
func (s *Seeker) Profile() Profile                  { return s.profile }
func (s *Seeker) Mechanisms() mechanism.Config      { return s.mechanisms }

// MonthlyIncome is annual income spread over twelve periods.
func (s *Seeker) MonthlyIncome() float64 {
	return s.profile.Income / 12
}

func (s *Seeker) Traits() Traits {
	return s.traits
}

// SetTraits overrides the drawn behavioral parameters, clamped to their ranges.
func (s *Seeker) SetTraits(t Traits) {
	s.traits = Traits{
		FraudPropensity: clamp(t.FraudPropensity, 0, 2),
		LyingMagnitude:  clamp(t.LyingMagnitude, 0, 100),
		ErrorPropensity: clamp(t.ErrorPropensity, 0, 2),
		ErrorMagnitude:  clamp(t.ErrorMagnitude, 0, 20),
	}
}

// NavigationPoints is the investigation budget. ok is false when the budget
// is unlimited.
func (s *Seeker) NavigationPoints() (points float64, ok bool) {
	return s.navigation.Points()
}

// IsEnrolled reports an open enrollment episode for program.
func (s *Seeker) IsEnrolled(program models.Program) bool {
	_, ok := s.enrolledSince[program]
	return ok
}

// EnrolledSince returns the period the current episode started.
func (s *Seeker) EnrolledSince(program models.Program) (int, bool) {
	p, ok := s.enrolledSince[program]
	return p, ok
}

// Enroll opens an enrollment episode starting at period.
func (s *Seeker) Enroll(program models.Program, period int) {
	s.enrolledSince[program] = period
	delete(s.recertifying, program)
}

func (s *Seeker) ApplicationCount() int   { return s.numApplications }
func (s *Seeker) ApprovalCount() int      { return s.numApprovals }
func (s *Seeker) DenialCount() int        { return s.numDenials }
func (s *Seeker) InvestigationCount() int { return len(s.investigations) }

// History returns decided outcomes for program, oldest first.
func (s *Seeker) History(program models.Program) []models.Outcome {
	return append([]models.Outcome(nil), s.history[program]...)
}

func (s *Seeker) DenialHistory() []Denial {
	return append([]Denial(nil), s.denials...)
}

func (s *Seeker) InvestigationHistory() []int {
	return append([]int(nil), s.investigations...)
}

func (s *Seeker) HasInvestigationHistory() bool {
	return len(s.investigations) > 0
}

// RecordInvestigation notes that staff investigated the seeker in period.
func (s *Seeker) RecordInvestigation(period int) {
	s.investigations = append(s.investigations, period)
}

// SuccessRate is approvals over decided applications for program; ok is
// false when nothing has been decided yet.
func (s *Seeker) SuccessRate(program models.Program) (rate float64, ok bool) {
	h := s.history[program]
	if len(h) == 0 {
		return 0, false
	}
	approved := 0
	for _, o := range h {
		if o == models.OutcomeApproved {
			approved++
		}
	}
	return float64(approved) / float64(len(h)), true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
