package results

import (
	"bytes"
	"context"
	"slices"
	"sync"

	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/models"
	"github.com/baldwij5/welfareSimulation-sub000/pkg/platform/sentinel"

	"github.com/google/uuid"
)

// InMemoryStore keeps period statistics in process memory.
type InMemoryStore struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]map[int]models.PeriodStatistics
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{runs: make(map[uuid.UUID]map[int]models.PeriodStatistics)}
}

func (s *InMemoryStore) SavePeriod(_ context.Context, runID uuid.UUID, stats models.PeriodStatistics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	periods, ok := s.runs[runID]
	if !ok {
		periods = make(map[int]models.PeriodStatistics)
		s.runs[runID] = periods
	}
	periods[stats.Period] = stats.Clone()
	return nil
}

func (s *InMemoryStore) FindPeriod(_ context.Context, runID uuid.UUID, period int) (models.PeriodStatistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats, ok := s.runs[runID][period]
	if !ok {
		return models.PeriodStatistics{}, sentinel.ErrNotFound
	}
	return stats.Clone(), nil
}

// ListPeriods returns the run's periods in ascending order.
func (s *InMemoryStore) ListPeriods(_ context.Context, runID uuid.UUID) ([]models.PeriodStatistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	periods, ok := s.runs[runID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := make([]models.PeriodStatistics, 0, len(periods))
	for _, p := range periods {
		out = append(out, p.Clone())
	}
	slices.SortFunc(out, func(a, b models.PeriodStatistics) int { return a.Period - b.Period })
	return out, nil
}

// Runs lists the run ids with at least one stored period.
func (s *InMemoryStore) Runs() []uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(s.runs))
	for id := range s.runs {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })
	return ids
}
