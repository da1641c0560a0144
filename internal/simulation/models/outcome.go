package models

// Outcome is the result of one processing stage for an application.
type Outcome string

const (
	OutcomeApproved  Outcome = "APPROVED"
	OutcomeDenied    Outcome = "DENIED"
	OutcomeEscalated Outcome = "ESCALATED"

	// OutcomeCapacityExceeded means staff ran out of complexity units this
	// period. It says nothing about eligibility.
	OutcomeCapacityExceeded Outcome = "CAPACITY_EXCEEDED"
)

// IsValid checks if the outcome is one of the supported enum values.
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeApproved, OutcomeDenied, OutcomeEscalated, OutcomeCapacityExceeded:
		return true
	}
	return false
}

// IsDecision reports whether the outcome is an eligibility decision.
func (o Outcome) IsDecision() bool {
	return o == OutcomeApproved || o == OutcomeDenied
}

// IsTerminal reports whether the outcome ends processing for the period.
func (o Outcome) IsTerminal() bool {
	return o.IsValid() && o != OutcomeEscalated
}

func (o Outcome) String() string {
	return string(o)
}

// Denial reasons written to Application.DenialReason.
const (
	ReasonIncomeTooHigh      = "income too high"
	ReasonFailedVerification = "failed verification"
	ReasonDetectedInReview   = "detected fraud/error in review"
)
