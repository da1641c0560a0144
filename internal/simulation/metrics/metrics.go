package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/models"
)

// Staff roles used as the utilization label.
const (
	RoleEvaluator = "evaluator"
	RoleReviewer  = "reviewer"
)

// Metrics provides observability for simulation runs.
type Metrics struct {
	// Terminal outcomes by program and outcome
	Outcomes *prometheus.CounterVec

	// Submissions by program and ground-truth status (honest, fraud, error)
	Submissions *prometheus.CounterVec

	RoutingAnomalies prometheus.Counter
	FraudDetections  prometheus.Counter
	PeriodsCompleted prometheus.Counter

	// End-of-period share of capacity spent, per staff unit
	CapacityUtilization *prometheus.HistogramVec

	PeriodDuration prometheus.Histogram
}

// New registers all simulation metrics with reg, or with the default
// registerer when reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "welfaresim_application_outcomes_total",
			Help: "Terminal application outcomes by program and outcome",
		}, []string{"program", "outcome"}),

		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "welfaresim_applications_submitted_total",
			Help: "Applications submitted by program and ground-truth status",
		}, []string{"program", "status"}),

		RoutingAnomalies: f.NewCounter(prometheus.CounterOpts{
			Name: "welfaresim_routing_anomalies_total",
			Help: "Applications with no staff for their county and program",
		}),

		FraudDetections: f.NewCounter(prometheus.CounterOpts{
			Name: "welfaresim_fraud_detections_total",
			Help: "Fraudulent applications detected in review",
		}),

		PeriodsCompleted: f.NewCounter(prometheus.CounterOpts{
			Name: "welfaresim_periods_completed_total",
			Help: "Simulated periods completed",
		}),

		CapacityUtilization: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "welfaresim_capacity_utilization_ratio",
			Help:    "Share of monthly capacity used by each staff unit at period end",
			Buckets: []float64{0.1, 0.25, 0.5, 0.75, 0.9, 0.95, 1},
		}, []string{"role"}),

		PeriodDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "welfaresim_period_duration_seconds",
			Help:    "Wall time to simulate one period",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}
}

// ObservePeriod records a completed period's aggregate counts.
func (m *Metrics) ObservePeriod(stats models.PeriodStatistics, d time.Duration) {
	if m == nil {
		return
	}
	for program, pc := range stats.ByProgram {
		p := string(program)
		m.Outcomes.WithLabelValues(p, string(models.OutcomeApproved)).Add(float64(pc.Approved))
		m.Outcomes.WithLabelValues(p, string(models.OutcomeDenied)).Add(float64(pc.Denied))
		m.Outcomes.WithLabelValues(p, string(models.OutcomeCapacityExceeded)).Add(float64(pc.CapacityExceeded))
	}
	m.RoutingAnomalies.Add(float64(stats.RoutingAnomalies))
	m.PeriodsCompleted.Inc()
	m.PeriodDuration.Observe(d.Seconds())
}

// IncrementSubmission records one submitted application.
func (m *Metrics) IncrementSubmission(app *models.Application) {
	if m != nil {
		m.Submissions.WithLabelValues(string(app.Program), app.Status()).Inc()
	}
}

func (m *Metrics) IncrementFraudDetection() {
	if m != nil {
		m.FraudDetections.Inc()
	}
}

// ObserveUtilization records used/capacity for one staff unit.
func (m *Metrics) ObserveUtilization(role string, used, capacity float64) {
	if m == nil || capacity <= 0 {
		return
	}
	m.CapacityUtilization.WithLabelValues(role).Observe(used / capacity)
}
