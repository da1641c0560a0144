package seeker

import (
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/mechanism"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/models"
)

// Learner revises a perceived approval probability after an outcome.
type Learner interface {
	Update(belief float64, outcome models.Outcome) float64
}

// SmoothingLearner applies belief ← (1−α)·belief + α·signal, with signal 1 on
// approval and 0 on denial. Other outcomes leave the belief untouched.
type SmoothingLearner struct {
	Alpha float64
}

func (l SmoothingLearner) Update(belief float64, outcome models.Outcome) float64 {
	var signal float64
	switch outcome {
	case models.OutcomeApproved:
		signal = 1
	case models.OutcomeDenied:
		signal = 0
	default:
		return belief
	}
	return clamp((1-l.Alpha)*belief+l.Alpha*signal, 0, 1)
}

// FrozenLearner never moves the belief.
type FrozenLearner struct{}

func (FrozenLearner) Update(belief float64, _ models.Outcome) float64 {
	return belief
}

func newLearner(cfg mechanism.Config, alpha float64) Learner {
	if !cfg.LearningEnabled {
		return FrozenLearner{}
	}
	return SmoothingLearner{Alpha: alpha}
}

// Belief is the perceived approval probability for program.
func (s *Seeker) Belief(program models.Program) float64 {
	return s.beliefs[program]
}

// SetBelief overrides the perceived approval probability, clamped to [0,1].
func (s *Seeker) SetBelief(program models.Program, belief float64) {
	s.beliefs[program] = clamp(belief, 0, 1)
}

// Beliefs returns a copy of all per-program beliefs.
func (s *Seeker) Beliefs() map[models.Program]float64 {
	out := make(map[models.Program]float64, len(s.beliefs))
	for k, v := range s.beliefs {
		out[k] = v
	}
	return out
}

// UpdateBelief feeds one realized outcome into the learner.
func (s *Seeker) UpdateBelief(program models.Program, outcome models.Outcome) {
	s.beliefs[program] = s.learner.Update(s.beliefs[program], outcome)
}

// RecordOutcome folds a terminal outcome into the seeker. Approval opens an
// enrollment episode at period; denial is counted with its reason; capacity
// exhaustion changes nothing.
func (s *Seeker) RecordOutcome(program models.Program, outcome models.Outcome, period int, reason string) {
	switch outcome {
	case models.OutcomeApproved:
		s.numApprovals++
		s.Enroll(program, period)
	case models.OutcomeDenied:
		s.numDenials++
		s.denials = append(s.denials, Denial{Period: period, Program: program, Reason: reason})
		delete(s.recertifying, program)
	default:
		return
	}
	s.history[program] = append(s.history[program], outcome)
	s.UpdateBelief(program, outcome)
}
