package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventCategory classifies audit events so stores can route or retain them
// differently.
type EventCategory string

const (
	// CategoryLifecycle covers run and period boundaries.
	CategoryLifecycle EventCategory = "lifecycle"

	// CategoryIntegrity covers program-integrity findings: detected fraud,
	// wrongly flagged applicants.
	CategoryIntegrity EventCategory = "integrity"

	// CategoryOperations covers configuration problems surfaced while running.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from the simulation loop to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID     `json:"id"`
	RunID     uuid.UUID     `json:"run_id"`
	Category  EventCategory `json:"category"`
	Action    string        `json:"action"`
	Timestamp time.Time     `json:"timestamp"`

	// Period is 0 for run-level events.
	Period   int    `json:"period,omitempty"`
	SeekerID int64  `json:"seeker_id,omitempty"`
	Program  string `json:"program,omitempty"`
	County   string `json:"county,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

type AuditEvent string

const (
	EventRunStarted      AuditEvent = "run_started"
	EventRunCompleted    AuditEvent = "run_completed"
	EventPeriodCompleted AuditEvent = "period_completed"

	EventFraudDetected AuditEvent = "fraud_detected"
	EventFalsePositive AuditEvent = "false_positive"

	EventRoutingAnomaly AuditEvent = "routing_anomaly"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventRunStarted:      CategoryLifecycle,
	EventRunCompleted:    CategoryLifecycle,
	EventPeriodCompleted: CategoryLifecycle,

	EventFraudDetected: CategoryIntegrity,
	EventFalsePositive: CategoryIntegrity,

	EventRoutingAnomaly: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if c, ok := eventCategories[e]; ok {
		return c
	}
	return CategoryOperations
}

func (e AuditEvent) String() string {
	return string(e)
}

// NewEvent builds an event for action with its category filled in.
func NewEvent(runID uuid.UUID, action AuditEvent) Event {
	return Event{
		RunID:    runID,
		Category: action.Category(),
		Action:   string(action),
	}
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Reader lists the events recorded for one run, oldest first.
type Reader interface {
	ListByRun(ctx context.Context, runID uuid.UUID) ([]Event, error)
}
