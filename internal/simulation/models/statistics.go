package models

import (
	"maps"

	"github.com/google/uuid"
)

// ProgramCounts is the per-program slice of a period's outcomes.
type ProgramCounts struct {
	Submitted        int `json:"submitted"`
	Approved         int `json:"approved"`
	Denied           int `json:"denied"`
	CapacityExceeded int `json:"capacity_exceeded"`
}

// PeriodStatistics aggregates one period of the simulation.
type PeriodStatistics struct {
	Period           int `json:"period"`
	Submitted        int `json:"applications_submitted"`
	Approved         int `json:"applications_approved"`
	Denied           int `json:"applications_denied"`
	Escalated        int `json:"applications_escalated"`
	CapacityExceeded int `json:"applications_capacity_exceeded"`
	FraudAttempted   int `json:"fraud_attempted"`
	ErrorsMade       int `json:"errors_made"`
	Honest           int `json:"honest_applications"`

	// RoutingAnomalies counts applications with no staff for their county and program.
	RoutingAnomalies int                       `json:"routing_anomalies"`
	ByProgram        map[Program]ProgramCounts `json:"by_program,omitempty"`
}

// NewPeriodStatistics returns zeroed statistics for period.
func NewPeriodStatistics(period int) PeriodStatistics {
	return PeriodStatistics{Period: period, ByProgram: make(map[Program]ProgramCounts)}
}

// RecordSubmission counts a new application by ground-truth status.
func (s *PeriodStatistics) RecordSubmission(app *Application) {
	s.Submitted++
	switch {
	case app.IsFraud:
		s.FraudAttempted++
	case app.IsError:
		s.ErrorsMade++
	default:
		s.Honest++
	}
	pc := s.ByProgram[app.Program]
	pc.Submitted++
	s.ByProgram[app.Program] = pc
}

// RecordOutcome counts a terminal outcome. escalated marks applications that
// passed through review.
func (s *PeriodStatistics) RecordOutcome(program Program, outcome Outcome, escalated bool) {
	if escalated {
		s.Escalated++
	}
	pc := s.ByProgram[program]
	switch outcome {
	case OutcomeApproved:
		s.Approved++
		pc.Approved++
	case OutcomeDenied:
		s.Denied++
		pc.Denied++
	case OutcomeCapacityExceeded:
		s.CapacityExceeded++
		pc.CapacityExceeded++
	}
	s.ByProgram[program] = pc
}

// Clone returns a copy that shares no map with s.
func (s PeriodStatistics) Clone() PeriodStatistics {
	s.ByProgram = maps.Clone(s.ByProgram)
	return s
}

// Decided is the number of approvals plus denials.
func (s PeriodStatistics) Decided() int {
	return s.Approved + s.Denied
}

// GroupOutcomes counts lifetime results for a demographic group.
type GroupOutcomes struct {
	Seekers      int `json:"seekers"`
	Applications int `json:"applications"`
	Approvals    int `json:"approvals"`
	Denials      int `json:"denials"`
	Enrolled     int `json:"enrolled"`
}

// ApprovalRate is approvals over decided applications, 0 when none were decided.
func (g GroupOutcomes) ApprovalRate() float64 {
	decided := g.Approvals + g.Denials
	if decided == 0 {
		return 0
	}
	return float64(g.Approvals) / float64(decided)
}

// RunSummary aggregates a multi-period run.
type RunSummary struct {
	RunID      uuid.UUID              `json:"run_id"`
	Seed       int64                  `json:"seed"`
	Mechanisms string                 `json:"mechanisms"`
	Sorter     string                 `json:"sorter,omitempty"`
	Periods    []PeriodStatistics     `json:"periods"`
	Totals     PeriodStatistics       `json:"totals"`
	ByRace     map[Race]GroupOutcomes `json:"by_race"`
}

// ApprovalRate is total approvals over total decided applications.
func (r RunSummary) ApprovalRate() float64 {
	decided := r.Totals.Decided()
	if decided == 0 {
		return 0
	}
	return float64(r.Totals.Approved) / float64(decided)
}

// Accumulate folds one period into the run totals.
func (r *RunSummary) Accumulate(p PeriodStatistics) {
	r.Periods = append(r.Periods, p)
	t := &r.Totals
	t.Submitted += p.Submitted
	t.Approved += p.Approved
	t.Denied += p.Denied
	t.Escalated += p.Escalated
	t.CapacityExceeded += p.CapacityExceeded
	t.FraudAttempted += p.FraudAttempted
	t.ErrorsMade += p.ErrorsMade
	t.Honest += p.Honest
	t.RoutingAnomalies += p.RoutingAnomalies
	if t.ByProgram == nil {
		t.ByProgram = make(map[Program]ProgramCounts)
	}
	for prog, pc := range p.ByProgram {
		tc := t.ByProgram[prog]
		tc.Submitted += pc.Submitted
		tc.Approved += pc.Approved
		tc.Denied += pc.Denied
		tc.CapacityExceeded += pc.CapacityExceeded
		t.ByProgram[prog] = tc
	}
}
