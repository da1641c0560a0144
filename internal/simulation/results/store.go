// Package results persists per-period statistics so long runs can be
// inspected while they progress and compared after they finish.
package results

import (
	"context"
	"fmt"

	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/models"

	"github.com/google/uuid"
)

// Store persists the statistics of each completed period, keyed by run and
// period. Saving a period twice replaces the earlier record.
type Store interface {
	SavePeriod(ctx context.Context, runID uuid.UUID, stats models.PeriodStatistics) error
	FindPeriod(ctx context.Context, runID uuid.UUID, period int) (models.PeriodStatistics, error)
	ListPeriods(ctx context.Context, runID uuid.UUID) ([]models.PeriodStatistics, error)
}

// Backend names a Store implementation in configuration.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendPostgres Backend = "postgres"
	BackendRedis    Backend = "redis"
)

// IsValid checks if the backend is one of the supported enum values.
func (b Backend) IsValid() bool {
	switch b {
	case BackendMemory, BackendPostgres, BackendRedis:
		return true
	}
	return false
}

// Replay folds stored periods back into a run summary.
func Replay(ctx context.Context, store Store, runID uuid.UUID) (models.RunSummary, error) {
	periods, err := store.ListPeriods(ctx, runID)
	if err != nil {
		return models.RunSummary{}, fmt.Errorf("replay run %s: %w", runID, err)
	}
	summary := models.RunSummary{RunID: runID}
	for _, p := range periods {
		summary.Accumulate(p)
	}
	return summary, nil
}
