package reviewer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/credibility"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/mechanism"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/models"
	dErrors "github.com/baldwij5/welfareSimulation-sub000/pkg/domain-errors"
)

type fakeSubject struct {
	county         string
	points         float64
	bounded        bool
	investigations []int
	detections     []int
}

func (f *fakeSubject) County() string { return f.county }

func (f *fakeSubject) NavigationPoints() (float64, bool) {
	if !f.bounded {
		return math.Inf(1), false
	}
	return f.points, true
}

func (f *fakeSubject) RecordInvestigation(period int) {
	f.investigations = append(f.investigations, period)
}

func (f *fakeSubject) RecordFraudDetection(period int) {
	f.detections = append(f.detections, period)
}

type fixedScorer float64

func (s fixedScorer) Multiplier(string) float64 { return float64(s) }

// =============================================================================
// Reviewer Test Suite
// =============================================================================
// Justification for unit tests: detection depends on the exact order and
// pricing of investigation actions, which full runs only show in aggregate.

type ReviewerSuite struct {
	suite.Suite
	key models.StaffKey
}

func TestReviewerSuite(t *testing.T) {
	suite.Run(t, new(ReviewerSuite))
}

func (s *ReviewerSuite) SetupTest() {
	s.key = models.MustStaffKey("Suffolk County, MA", models.ProgramSNAP)
}

func (s *ReviewerSuite) newReviewer(opts ...Option) *Reviewer {
	r, err := New(1, s.key, opts...)
	s.Require().NoError(err)
	r.ResetCapacity(4)
	return r
}

func escalated(suspicion, complexity float64) *models.Application {
	return &models.Application{
		ID:                    1,
		SeekerID:              1,
		Program:               models.ProgramSNAP,
		ReportedIncome:        12000,
		ReportedHouseholdSize: 2,
		TrueIncome:            12000,
		TrueHouseholdSize:     2,
		Complexity:            complexity,
		SuspicionScore:        suspicion,
		Escalated:             true,
	}
}

func bounded(points float64) *fakeSubject {
	return &fakeSubject{county: "Suffolk County, MA", points: points, bounded: true}
}

func (s *ReviewerSuite) TestNew() {
	s.Run("rejects empty key", func() {
		_, err := New(1, models.StaffKey{})
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("rejects accuracy out of range", func() {
		_, err := New(1, s.key, WithAccuracy(-0.1))
		s.Error(err)
	})

	s.Run("defaults", func() {
		r, err := New(1, s.key)
		s.Require().NoError(err)
		s.Equal(DefaultAccuracy, r.Accuracy())
		s.Equal(DefaultMonthlyCapacity, r.MonthlyCapacity())
		s.Equal("MA", r.State())
	})
}

func (s *ReviewerSuite) TestCapacity() {
	r := s.newReviewer(WithMonthlyCapacity(1.0))
	r.capacityUsed = 0.8

	subject := bounded(100)
	s.Equal(models.OutcomeCapacityExceeded, r.ReviewApplication(escalated(0.6, 0.5), subject))
	s.Equal(0.8, r.CapacityUsed())
	s.Empty(subject.investigations)
	s.Equal(1, r.Counters().CapacityExceeded)
	s.Zero(r.Counters().Reviewed)

	r.ResetCapacity(5)
	s.Zero(r.CapacityUsed())
	s.Equal(models.OutcomeApproved, r.ReviewApplication(escalated(0.6, 0.5), subject))
	s.InDelta(0.5, r.CapacityUsed(), 1e-9)
	s.Equal([]int{5}, subject.investigations)
}

// =============================================================================
// Points Investigation Tests
// =============================================================================

func (s *ReviewerSuite) TestPointsInvestigation() {
	s.Run("honest applicant with enough points is approved", func() {
		r := s.newReviewer()
		a := escalated(0.6, 0.5)
		s.Equal(models.OutcomeApproved, r.ReviewApplication(a, bounded(10)))
		s.True(a.Approved)
		s.True(a.Investigated)
	})

	s.Run("honest applicant without enough points is denied but not a false positive", func() {
		r := s.newReviewer()
		a := escalated(0.6, 0.5)
		subject := bounded(7)
		s.Equal(models.OutcomeDenied, r.ReviewApplication(a, subject))
		s.Equal(models.ReasonDetectedInReview, a.DenialReason)
		s.Zero(r.Counters().FalsePositives)
		s.Equal(1, r.Counters().HonestDenials)
		s.Zero(r.Counters().FraudDetected)
		s.Zero(r.FalsePositiveRate())
		s.Empty(subject.detections)
	})

	s.Run("denied honest mistake is a false positive", func() {
		r := s.newReviewer()
		a := escalated(0.6, 0.5)
		a.IsError = true
		subject := bounded(1)
		s.Equal(models.OutcomeDenied, r.ReviewApplication(a, subject))
		s.Equal(1, r.Counters().FalsePositives)
		s.Zero(r.Counters().HonestDenials)
		s.Equal(1, r.Counters().FraudDetected)
		s.InDelta(1.0, r.FalsePositiveRate(), 1e-9)
		s.Empty(subject.detections)
	})

	s.Run("fraud pays double and is reported back", func() {
		r := s.newReviewer()
		a := escalated(0.6, 0.5)
		a.IsFraud = true
		subject := bounded(10)
		s.Equal(models.OutcomeDenied, r.ReviewApplication(a, subject))
		s.Equal([]int{4}, subject.detections)
		s.Equal(1, r.Counters().FraudDetected)
		s.Zero(r.Counters().FalsePositives)
	})

	s.Run("fraud with a large budget survives", func() {
		r := s.newReviewer()
		a := escalated(0.6, 0.5)
		a.IsFraud = true
		s.Equal(models.OutcomeApproved, r.ReviewApplication(a, bounded(16)))
	})

	s.Run("detections are reported without fraud history", func() {
		r := s.newReviewer(WithMechanisms(mechanism.OnlyBureaucracy()))
		a := escalated(0.6, 0.5)
		a.IsFraud = true
		subject := bounded(1)
		s.Equal(models.OutcomeDenied, r.ReviewApplication(a, subject))
		s.Equal([]int{4}, subject.detections)
	})

	s.Run("zero points fail the first action", func() {
		r := s.newReviewer()
		s.Equal(models.OutcomeDenied, r.ReviewApplication(escalated(0.1, 0.3), bounded(0)))
	})
}

// =============================================================================
// Credibility Adjustment Tests
// =============================================================================

func (s *ReviewerSuite) TestCredibilityMultiplier() {
	s.Run("neutral when mechanism disabled", func() {
		r := s.newReviewer(WithMechanisms(mechanism.Baseline()), WithScorer(fixedScorer(1.3)))
		s.Equal(credibility.Neutral, r.CredibilityMultiplier("Suffolk County, MA"))
	})

	s.Run("neutral without a model", func() {
		r := s.newReviewer()
		s.Equal(credibility.Neutral, r.CredibilityMultiplier("Suffolk County, MA"))
		r = s.newReviewer(WithScorer(credibility.NewRegistry()))
		s.Equal(credibility.Neutral, r.CredibilityMultiplier("Suffolk County, MA"))
	})

	s.Run("scorer used when enabled", func() {
		r := s.newReviewer(WithScorer(fixedScorer(0.8)))
		s.Equal(0.8, r.CredibilityMultiplier("Suffolk County, MA"))
	})
}

func (s *ReviewerSuite) TestMultiplierScalesLaterContactActions() {
	a := escalated(0.6, 0.5) // basic (passive), pay stubs (first contact), household (contact)

	neutral := s.newReviewer()
	s.InDelta(2+3+3, neutral.InvestigationCost(a, "Suffolk County, MA"), 1e-9)

	harsh := s.newReviewer(WithScorer(fixedScorer(1.3)))
	s.InDelta(2+3+3*1.3, harsh.InvestigationCost(a, "Suffolk County, MA"), 1e-9)

	lenient := s.newReviewer(WithScorer(fixedScorer(0.7)))
	s.InDelta(2+3+3*0.7, lenient.InvestigationCost(a, "Suffolk County, MA"), 1e-9)

	s.Run("decides borderline cases", func() {
		s.Equal(models.OutcomeDenied, harsh.ReviewApplication(escalated(0.6, 0.5), bounded(8.5)))
		s.Equal(models.OutcomeApproved, lenient.ReviewApplication(escalated(0.6, 0.5), bounded(8.5)))
	})

	s.Run("single contact action is never scaled", func() {
		low := escalated(0.1, 0.9) // basic, home visit
		s.InDelta(2+5, harsh.InvestigationCost(low, "Suffolk County, MA"), 1e-9)
	})
}

// =============================================================================
// Probabilistic Fallback Tests
// =============================================================================

func (s *ReviewerSuite) TestProbabilisticFallback() {
	s.Run("honest applications always pass", func() {
		r := s.newReviewer(WithAccuracy(1))
		subject := &fakeSubject{county: "Suffolk County, MA"}
		s.Equal(models.OutcomeApproved, r.ReviewApplication(escalated(0.9, 0.9), subject))
		s.Equal([]int{4}, subject.investigations)
	})

	s.Run("certain detection", func() {
		r := s.newReviewer(WithAccuracy(1))
		a := escalated(0.9, 0.5)
		a.IsError = true
		s.Equal(models.OutcomeDenied, r.ReviewApplication(a, nil))
		s.Equal(1, r.Counters().FraudDetected)
		s.Equal(1, r.Counters().FalsePositives)
	})

	s.Run("no detection at zero accuracy", func() {
		r := s.newReviewer(WithAccuracy(0))
		a := escalated(0.9, 0.5)
		a.IsFraud = true
		s.Equal(models.OutcomeApproved, r.ReviewApplication(a, &fakeSubject{county: "Suffolk County, MA"}))
	})

	s.Run("detection rate tracks accuracy", func() {
		r := s.newReviewer(WithAccuracy(0.85), WithMonthlyCapacity(10000))
		for i := 0; i < 1000; i++ {
			a := escalated(0.9, 0.5)
			a.IsFraud = true
			r.ReviewApplication(a, nil)
		}
		s.InDelta(0.85, r.FraudDetectionRate(), 0.05)
		s.InDelta(0.15, r.ApprovalRate(), 0.05)
		s.Zero(r.FalsePositiveRate())
	})
}

// =============================================================================
// Action Selection
// =============================================================================

func names(actions []Action) []ActionName {
	out := make([]ActionName, 0, len(actions))
	for _, a := range actions {
		out = append(out, a.Name)
	}
	return out
}

func TestSelectActions(t *testing.T) {
	tests := []struct {
		name string
		app  *models.Application
		want []ActionName
	}{
		{
			name: "low suspicion",
			app:  &models.Application{Program: models.ProgramSNAP, SuspicionScore: 0.2, Complexity: 0.4},
			want: []ActionName{ActionBasicIncomeCheck},
		},
		{
			name: "moderate suspicion",
			app:  &models.Application{Program: models.ProgramSNAP, SuspicionScore: 0.6, Complexity: 0.4},
			want: []ActionName{ActionBasicIncomeCheck, ActionRequestPayStubs, ActionHouseholdVerification},
		},
		{
			name: "tanf household check is not repeated",
			app:  &models.Application{Program: models.ProgramTANF, SuspicionScore: 0.9, Complexity: 0.9},
			want: []ActionName{
				ActionBasicIncomeCheck, ActionRequestPayStubs, ActionHouseholdVerification,
				ActionBankStatements, ActionInterview, ActionEmployerVerification, ActionHomeVisit,
			},
		},
		{
			name: "ssi disability claim adds medical verification",
			app:  &models.Application{Program: models.ProgramSSI, SuspicionScore: 0.3, Complexity: 0.7, ReportedHasDisability: true},
			want: []ActionName{ActionBasicIncomeCheck, ActionMedicalVerification},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(SelectActions(tt.app)))
		})
	}
}

func TestCatalogue(t *testing.T) {
	a, ok := LookupAction(ActionInterview)
	assert.True(t, ok)
	assert.True(t, a.Contact)
	assert.Equal(t, 4.0, a.Cost)

	a, ok = LookupAction(ActionBasicIncomeCheck)
	assert.True(t, ok)
	assert.False(t, a.Contact)

	_, ok = LookupAction("polygraph")
	assert.False(t, ok)
}
