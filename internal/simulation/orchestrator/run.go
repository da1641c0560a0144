package orchestrator

import (
	"context"
	"fmt"

	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/models"
	dErrors "github.com/baldwij5/welfareSimulation-sub000/pkg/domain-errors"
	audit "github.com/baldwij5/welfareSimulation-sub000/pkg/platform/audit"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Run simulates periods consecutive periods starting after the last one
// completed, then summarizes the population's lifetime outcomes.
// Cancellation is checked between periods.
func (o *Orchestrator) Run(ctx context.Context, periods int) (models.RunSummary, error) {
	if periods <= 0 {
		return models.RunSummary{}, dErrors.New(dErrors.CodeInvalidInput, "periods must be positive")
	}
	if err := o.Validate(); err != nil {
		if o.strictRouting {
			return models.RunSummary{}, err
		}
		o.logger.WarnContext(ctx, "staffing gaps will be counted as routing anomalies", "error", err)
	}

	ctx, span := o.tracer.Start(ctx, "orchestrator.Run",
		trace.WithAttributes(
			attribute.String("run_id", o.runID.String()),
			attribute.Int64("seed", o.seed),
			attribute.Int("periods", periods),
			attribute.String("mechanisms", o.mechanisms.String()),
		),
	)
	defer span.End()

	summary := o.newSummary()
	started := audit.NewEvent(o.runID, audit.EventRunStarted)
	started.Detail = fmt.Sprintf("seed=%d seekers=%d periods=%d mechanisms=%s", o.seed, len(o.seekers), periods, o.mechanisms)
	o.emit(ctx, started)
	o.logger.InfoContext(ctx, "run started",
		"run_id", o.runID,
		"seed", o.seed,
		"seekers", len(o.seekers),
		"periods", periods,
		"mechanisms", o.mechanisms.String(),
	)

	first := o.lastPeriod + 1
	for period := first; period < first+periods; period++ {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			return summary, err
		}
		stats, err := o.RunPeriod(ctx, period)
		if err != nil {
			return summary, err
		}
		summary.Accumulate(stats)
	}
	summary.ByRace = o.outcomesByRace()

	completed := audit.NewEvent(o.runID, audit.EventRunCompleted)
	completed.Detail = fmt.Sprintf("approval_rate=%.4f submitted=%d", summary.ApprovalRate(), summary.Totals.Submitted)
	o.emit(ctx, completed)
	o.logger.InfoContext(ctx, "run completed",
		"run_id", o.runID,
		"submitted", summary.Totals.Submitted,
		"approved", summary.Totals.Approved,
		"denied", summary.Totals.Denied,
		"approval_rate", summary.ApprovalRate(),
	)
	return summary, nil
}

func (o *Orchestrator) newSummary() models.RunSummary {
	summary := models.RunSummary{
		RunID:      o.runID,
		Seed:       o.seed,
		Mechanisms: o.mechanisms.String(),
		Totals:     models.NewPeriodStatistics(0),
	}
	if o.policy != nil {
		summary.Sorter = o.policy.Name()
	}
	return summary
}

// outcomesByRace folds every seeker's lifetime counters into its group.
func (o *Orchestrator) outcomesByRace() map[models.Race]models.GroupOutcomes {
	groups := make(map[models.Race]models.GroupOutcomes)
	for _, s := range o.seekers {
		g := groups[s.Race()]
		g.Seekers++
		g.Applications += s.ApplicationCount()
		g.Approvals += s.ApprovalCount()
		g.Denials += s.DenialCount()
		for _, p := range o.programs {
			if s.IsEnrolled(p) {
				g.Enrolled++
				break
			}
		}
		groups[s.Race()] = g
	}
	return groups
}
