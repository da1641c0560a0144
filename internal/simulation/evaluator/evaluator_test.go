package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/models"
	dErrors "github.com/baldwij5/welfareSimulation-sub000/pkg/domain-errors"
)

// fixedNoise returns the same normal deviate on every call.
type fixedNoise struct {
	z float64
}

func (f fixedNoise) Float64() float64     { return 0.5 }
func (f fixedNoise) NormFloat64() float64 { return f.z }

type applicant struct {
	history bool
}

func (a applicant) HasInvestigationHistory() bool { return a.history }

// =============================================================================
// Evaluator Test Suite
// =============================================================================
// Justification for unit tests: capacity accounting and the escalation rule
// decide which applications ever reach a reviewer; they must be pinned down
// without the noise of a full population run.

type EvaluatorSuite struct {
	suite.Suite
	key models.StaffKey
}

func TestEvaluatorSuite(t *testing.T) {
	suite.Run(t, new(EvaluatorSuite))
}

func (s *EvaluatorSuite) SetupTest() {
	s.key = models.MustStaffKey("Hampden County, MA", models.ProgramSNAP)
}

func (s *EvaluatorSuite) newEvaluator(opts ...Option) *Evaluator {
	opts = append([]Option{WithSource(fixedNoise{})}, opts...)
	e, err := New(1, s.key, opts...)
	s.Require().NoError(err)
	return e
}

func app(program models.Program, income float64, household int, complexity float64) *models.Application {
	return &models.Application{
		ID:                    1,
		SeekerID:              1,
		Program:               program,
		ReportedIncome:        income,
		ReportedHouseholdSize: household,
		TrueIncome:            income,
		TrueHouseholdSize:     household,
		Complexity:            complexity,
	}
}

func (s *EvaluatorSuite) TestNew() {
	s.Run("rejects empty key", func() {
		_, err := New(1, models.StaffKey{})
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("rejects strictness out of range", func() {
		_, err := New(1, s.key, WithStrictness(1.5))
		s.Error(err)
	})

	s.Run("rejects non-positive capacity", func() {
		_, err := New(1, s.key, WithMonthlyCapacity(0))
		s.Error(err)
	})

	s.Run("defaults", func() {
		e, err := New(1, s.key)
		s.Require().NoError(err)
		s.Equal(DefaultStrictness, e.Strictness())
		s.Equal(DefaultMonthlyCapacity, e.MonthlyCapacity())
		s.Equal("Hampden County, MA", e.County())
		s.Equal(models.ProgramSNAP, e.Program())
	})
}

// =============================================================================
// Capacity Tests
// =============================================================================

func (s *EvaluatorSuite) TestCapacityExceededLeavesUsageUntouched() {
	e := s.newEvaluator(WithMonthlyCapacity(1.0))
	e.capacityUsed = 0.8

	a := app(models.ProgramSNAP, 12000, 2, 1.0)
	outcome := e.ProcessApplication(a, applicant{}, true)

	s.Equal(models.OutcomeCapacityExceeded, outcome)
	s.Equal(0.8, e.CapacityUsed())
	s.Equal(0, e.Counters().Processed)
	s.Equal(1, e.Counters().CapacityExceeded)
	s.False(a.Approved)
	s.Empty(a.DenialReason)
}

func (s *EvaluatorSuite) TestCapacityNeverOverspent() {
	e := s.newEvaluator(WithMonthlyCapacity(2.0))
	e.ResetCapacity(3)

	outcomes := make([]models.Outcome, 0, 4)
	for i := 0; i < 4; i++ {
		outcomes = append(outcomes, e.ProcessApplication(app(models.ProgramSNAP, 24000, 2, 0.7), applicant{}, true))
		s.LessOrEqual(e.CapacityUsed(), e.MonthlyCapacity())
	}
	s.NotEqual(models.OutcomeCapacityExceeded, outcomes[0])
	s.NotEqual(models.OutcomeCapacityExceeded, outcomes[1])
	s.Equal(models.OutcomeCapacityExceeded, outcomes[2])
	s.Equal(models.OutcomeCapacityExceeded, outcomes[3])
	s.InDelta(1.4, e.CapacityUsed(), 1e-9)
	s.InDelta(0.6, e.RemainingCapacity(), 1e-9)

	e.ResetCapacity(4)
	s.Equal(0.0, e.CapacityUsed())
	s.Equal(4, e.CurrentPeriod())
	s.NotEqual(models.OutcomeCapacityExceeded, e.ProcessApplication(app(models.ProgramSNAP, 24000, 2, 0.7), applicant{}, true))
}

func (s *EvaluatorSuite) TestSetMonthlyCapacity() {
	e := s.newEvaluator()
	s.Require().NoError(e.SetMonthlyCapacity(42))
	s.Equal(42.0, e.MonthlyCapacity())
	s.Error(e.SetMonthlyCapacity(-1))
}

// =============================================================================
// Decision Tests
// =============================================================================

func (s *EvaluatorSuite) TestIneligibleReportDenied() {
	e := s.newEvaluator()
	a := app(models.ProgramSNAP, 36000, 2, 0.5)

	s.Equal(models.OutcomeDenied, e.ProcessApplication(a, applicant{}, true))
	s.Equal(models.ReasonIncomeTooHigh, a.DenialReason)
	s.Equal(1, e.Counters().Denied)
	s.Equal(1, e.Counters().Processed)
	s.InDelta(0.5, e.CapacityUsed(), 1e-9)
}

func (s *EvaluatorSuite) TestSpecialistProgramEscalates() {
	s.key = models.MustStaffKey("Hampden County, MA", models.ProgramSSI)

	s.Run("escalated when a reviewer is available", func() {
		e := s.newEvaluator()
		a := app(models.ProgramSSI, 9000, 1, 0.9)
		a.ReportedHasDisability = true
		s.Equal(models.OutcomeEscalated, e.ProcessApplication(a, applicant{}, true))
		s.True(a.Escalated)
		s.Equal(1, e.Counters().Escalated)
	})

	s.Run("decided locally without a reviewer", func() {
		e := s.newEvaluator()
		a := app(models.ProgramSSI, 9000, 1, 0.9)
		a.ReportedHasDisability = true
		s.Equal(models.OutcomeApproved, e.ProcessApplication(a, applicant{}, false))
		s.False(a.Escalated)
		s.True(a.Investigated)
	})

	s.Run("rule can be switched off", func() {
		e := s.newEvaluator(WithSpecialistPrograms())
		a := app(models.ProgramSSI, 20000, 1, 0.9)
		a.ReportedHasDisability = true
		s.Equal(models.OutcomeApproved, e.ProcessApplication(a, applicant{}, true))
	})
}

func (s *EvaluatorSuite) TestHighSuspicionEscalates() {
	e := s.newEvaluator(WithSource(fixedNoise{z: 2}))
	a := app(models.ProgramSNAP, 6000, 5, 0.6)

	s.Equal(models.OutcomeEscalated, e.ProcessApplication(a, applicant{history: true}, true))
	s.InDelta(0.9, a.SuspicionScore, 1e-9)
}

func (s *EvaluatorSuite) TestStrictnessInvestigation() {
	s.Run("fraud above strictness is denied", func() {
		e := s.newEvaluator(WithStrictness(0.4))
		a := app(models.ProgramSNAP, 6000, 5, 0.5)
		a.IsFraud = true
		s.Equal(models.OutcomeDenied, e.ProcessApplication(a, applicant{}, true))
		s.True(a.Investigated)
		s.Equal(models.ReasonFailedVerification, a.DenialReason)
	})

	s.Run("honest error above strictness is denied", func() {
		e := s.newEvaluator(WithStrictness(0.4))
		a := app(models.ProgramSNAP, 6000, 5, 0.5)
		a.IsError = true
		s.Equal(models.OutcomeDenied, e.ProcessApplication(a, applicant{}, true))
	})

	s.Run("honest report above strictness is approved", func() {
		e := s.newEvaluator(WithStrictness(0.4))
		a := app(models.ProgramSNAP, 6000, 5, 0.5)
		s.Equal(models.OutcomeApproved, e.ProcessApplication(a, applicant{}, true))
		s.True(a.Investigated)
		s.True(a.Approved)
	})

	s.Run("fraud below strictness slips through", func() {
		e := s.newEvaluator()
		a := app(models.ProgramSNAP, 6000, 2, 0.5)
		a.IsFraud = true
		s.Equal(models.OutcomeApproved, e.ProcessApplication(a, applicant{}, true))
		s.False(a.Investigated)
	})
}

func (s *EvaluatorSuite) TestSuspicionClampedAndNoisy() {
	high := s.newEvaluator(WithSource(fixedNoise{z: 50}))
	low := s.newEvaluator(WithSource(fixedNoise{z: -50}))
	a := app(models.ProgramSNAP, 6000, 2, 0.5)
	s.Equal(1.0, high.Suspicion(a, false))
	s.Equal(0.0, low.Suspicion(a, false))

	seeded, err := New(7, s.key)
	s.Require().NoError(err)
	twin, err := New(7, s.key)
	s.Require().NoError(err)
	for i := 0; i < 10; i++ {
		s.Equal(seeded.Suspicion(a, false), twin.Suspicion(a, false))
	}
}

func (s *EvaluatorSuite) TestApprovalRate() {
	e := s.newEvaluator()
	s.Zero(e.ApprovalRate())
	e.ProcessApplication(app(models.ProgramSNAP, 24000, 2, 0.3), applicant{}, true)
	e.ProcessApplication(app(models.ProgramSNAP, 60000, 2, 0.3), applicant{}, true)
	s.InDelta(0.5, e.ApprovalRate(), 1e-9)
}

// =============================================================================
// Rule Tables
// =============================================================================

func TestReportedEligible(t *testing.T) {
	tests := []struct {
		name       string
		program    models.Program
		income     float64
		household  int
		disability bool
		want       bool
	}{
		{"snap two person under", models.ProgramSNAP, 29000, 2, false, true},
		{"snap two person over", models.ProgramSNAP, 31000, 2, false, false},
		{"snap larger household", models.ProgramSNAP, 31000, 3, false, true},
		{"tanf under", models.ProgramTANF, 11000, 2, false, true},
		{"tanf over", models.ProgramTANF, 13000, 2, false, false},
		{"ssi requires reported disability", models.ProgramSSI, 12000, 1, false, false},
		{"ssi under", models.ProgramSSI, 12000, 1, true, true},
		{"ssi over", models.ProgramSSI, 24000, 1, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := app(tt.program, tt.income, tt.household, 0.5)
			a.ReportedHasDisability = tt.disability
			assert.Equal(t, tt.want, ReportedEligible(a))
		})
	}
}

func TestBaseSuspicion(t *testing.T) {
	tests := []struct {
		name      string
		program   models.Program
		income    float64
		household int
		history   bool
		want      float64
	}{
		{"comfortable income", models.ProgramSNAP, 30000, 2, false, 0},
		{"low income", models.ProgramSNAP, 18000, 2, false, 0.1},
		{"very low income", models.ProgramSNAP, 6000, 2, false, 0.3},
		{"large household", models.ProgramSNAP, 30000, 5, false, 0.2},
		{"ssi baseline", models.ProgramSSI, 30000, 1, false, 0.3},
		{"prior investigation", models.ProgramSNAP, 30000, 2, true, 0.2},
		{"everything", models.ProgramSSI, 6000, 6, true, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BaseSuspicion(app(tt.program, tt.income, tt.household, 0.5), tt.history)
			require.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
