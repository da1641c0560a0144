package models

import (
	dErrors "github.com/baldwij5/welfareSimulation-sub000/pkg/domain-errors"
)

// Application is one benefit request. Reported fields are what the seeker
// claims; True fields are ground truth visible only to the simulation.
type Application struct {
	ID       int64   `json:"id"`
	SeekerID int64   `json:"seeker_id"`
	Program  Program `json:"program"`
	Period   int     `json:"period"`

	ReportedIncome        float64 `json:"reported_income"`
	ReportedHouseholdSize int     `json:"reported_household_size"`
	ReportedHasDisability bool    `json:"reported_has_disability"`

	TrueIncome        float64 `json:"true_income"`
	TrueHouseholdSize int     `json:"true_household_size"`
	TrueHasDisability bool    `json:"true_has_disability"`

	IsFraud bool `json:"is_fraud"`
	IsError bool `json:"is_error"`

	// Complexity is the capacity cost in complexity units, in [0,1].
	Complexity           float64  `json:"complexity"`
	DocumentationQuality *float64 `json:"documentation_quality,omitempty"`

	SuspicionScore float64 `json:"suspicion_score"`
	Escalated      bool    `json:"escalated"`
	Investigated   bool    `json:"investigated"`
	Approved       bool    `json:"approved"`
	DenialReason   string  `json:"denial_reason,omitempty"`
	Outcome        Outcome `json:"outcome,omitempty"`
}

// ApplicationInput carries the fields needed to build an Application.
type ApplicationInput struct {
	ID                    int64
	SeekerID              int64
	Program               Program
	Period                int
	ReportedIncome        float64
	ReportedHouseholdSize int
	ReportedHasDisability bool
	TrueIncome            float64
	TrueHouseholdSize     int
	TrueHasDisability     bool
	IsFraud               bool
	IsError               bool
}

// NewApplication creates an Application with domain invariant validation.
func NewApplication(in ApplicationInput) (*Application, error) {
	if !in.Program.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown program: "+string(in.Program))
	}
	if in.Period < 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "period cannot be negative")
	}
	if in.ReportedIncome < 0 || in.TrueIncome < 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "income cannot be negative")
	}
	if in.ReportedHouseholdSize < 1 || in.TrueHouseholdSize < 1 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "household size must be at least 1")
	}
	if in.IsFraud && in.IsError {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "application cannot be both fraud and error")
	}
	return &Application{
		ID:                    in.ID,
		SeekerID:              in.SeekerID,
		Program:               in.Program,
		Period:                in.Period,
		ReportedIncome:        in.ReportedIncome,
		ReportedHouseholdSize: in.ReportedHouseholdSize,
		ReportedHasDisability: in.ReportedHasDisability,
		TrueIncome:            in.TrueIncome,
		TrueHouseholdSize:     in.TrueHouseholdSize,
		TrueHasDisability:     in.TrueHasDisability,
		IsFraud:               in.IsFraud,
		IsError:               in.IsError,
	}, nil
}

// ReportedMonthlyIncome is the claimed annual income divided over twelve periods.
func (a *Application) ReportedMonthlyIncome() float64 {
	return a.ReportedIncome / 12
}

// IncomeDiscrepancy is how far the report falls short of the truth.
// Positive means under-reported.
func (a *Application) IncomeDiscrepancy() float64 {
	return a.TrueIncome - a.ReportedIncome
}

// IncomeDiscrepancyPct is IncomeDiscrepancy relative to true income; 0 when
// true income is 0.
func (a *Application) IncomeDiscrepancyPct() float64 {
	if a.TrueIncome == 0 {
		return 0
	}
	return (a.TrueIncome - a.ReportedIncome) / a.TrueIncome
}

// Status labels the ground truth of the report.
func (a *Application) Status() string {
	switch {
	case a.IsFraud:
		return "fraud"
	case a.IsError:
		return "error"
	}
	return "honest"
}

// QualityCategory buckets DocumentationQuality.
func (a *Application) QualityCategory() string {
	if a.DocumentationQuality == nil {
		return "Unknown"
	}
	q := *a.DocumentationQuality
	switch {
	case q >= 0.80:
		return "Excellent"
	case q >= 0.65:
		return "Good"
	case q >= 0.50:
		return "Fair"
	case q >= 0.35:
		return "Poor"
	}
	return "Very Poor"
}

// Approve records a final approval.
func (a *Application) Approve() {
	a.Approved = true
	a.DenialReason = ""
	a.Outcome = OutcomeApproved
}

// Deny records a final denial with reason.
func (a *Application) Deny(reason string) {
	a.Approved = false
	a.DenialReason = reason
	a.Outcome = OutcomeDenied
}
