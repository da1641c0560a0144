package results

import (
	"context"
	"testing"

	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/models"
	"github.com/baldwij5/welfareSimulation-sub000/pkg/platform/sentinel"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func samplePeriod(period, approved, denied int) models.PeriodStatistics {
	stats := models.NewPeriodStatistics(period)
	stats.Submitted = approved + denied
	stats.Approved = approved
	stats.Denied = denied
	stats.Honest = approved + denied
	stats.ByProgram[models.ProgramSNAP] = models.ProgramCounts{
		Submitted: approved + denied,
		Approved:  approved,
		Denied:    denied,
	}
	return stats
}

// InMemoryStoreSuite tests the in-process results store.
//
// Justification for unit tests: the memory store backs every default run and
// the orchestrator tests, so ordering, replacement and copy semantics must
// match the database-backed stores exercised by the integration tests.
type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

// =============================================================================
// Save and Find
// =============================================================================

func (s *InMemoryStoreSuite) TestSaveAndFind() {
	runID := uuid.New()
	s.Require().NoError(s.store.SavePeriod(s.ctx, runID, samplePeriod(1, 3, 2)))

	got, err := s.store.FindPeriod(s.ctx, runID, 1)
	s.Require().NoError(err)
	s.Equal(3, got.Approved)
	s.Equal(5, got.ByProgram[models.ProgramSNAP].Submitted)

	s.Run("missing period is not found", func() {
		_, err := s.store.FindPeriod(s.ctx, runID, 2)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("missing run is not found", func() {
		_, err := s.store.ListPeriods(s.ctx, uuid.New())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestSaveReplacesPeriod() {
	runID := uuid.New()
	s.Require().NoError(s.store.SavePeriod(s.ctx, runID, samplePeriod(1, 3, 2)))
	s.Require().NoError(s.store.SavePeriod(s.ctx, runID, samplePeriod(1, 4, 0)))

	periods, err := s.store.ListPeriods(s.ctx, runID)
	s.Require().NoError(err)
	s.Require().Len(periods, 1)
	s.Equal(4, periods[0].Approved)
}

func (s *InMemoryStoreSuite) TestStoredStatisticsAreCopies() {
	runID := uuid.New()
	stats := samplePeriod(1, 3, 2)
	s.Require().NoError(s.store.SavePeriod(s.ctx, runID, stats))

	stats.ByProgram[models.ProgramSNAP] = models.ProgramCounts{Submitted: 99}
	got, err := s.store.FindPeriod(s.ctx, runID, 1)
	s.Require().NoError(err)
	s.Equal(5, got.ByProgram[models.ProgramSNAP].Submitted)
}

// =============================================================================
// Listing and Replay
// =============================================================================

func (s *InMemoryStoreSuite) TestListPeriodsInOrder() {
	runID := uuid.New()
	for _, p := range []int{3, 1, 2} {
		s.Require().NoError(s.store.SavePeriod(s.ctx, runID, samplePeriod(p, p, 1)))
	}

	periods, err := s.store.ListPeriods(s.ctx, runID)
	s.Require().NoError(err)
	s.Require().Len(periods, 3)
	for i, p := range periods {
		s.Equal(i+1, p.Period)
	}
	s.Len(s.store.Runs(), 1)
}

func (s *InMemoryStoreSuite) TestReplay() {
	runID := uuid.New()
	s.Require().NoError(s.store.SavePeriod(s.ctx, runID, samplePeriod(1, 3, 1)))
	s.Require().NoError(s.store.SavePeriod(s.ctx, runID, samplePeriod(2, 1, 3)))

	summary, err := Replay(s.ctx, s.store, runID)
	s.Require().NoError(err)
	s.Equal(runID, summary.RunID)
	s.Len(summary.Periods, 2)
	s.Equal(4, summary.Totals.Approved)
	s.Equal(4, summary.Totals.Denied)
	s.InDelta(0.5, summary.ApprovalRate(), 1e-9)
	s.Equal(8, summary.Totals.ByProgram[models.ProgramSNAP].Submitted)

	_, err = Replay(s.ctx, s.store, uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func TestBackendIsValid(t *testing.T) {
	assert.True(t, BackendMemory.IsValid())
	assert.True(t, BackendPostgres.IsValid())
	assert.True(t, BackendRedis.IsValid())
	assert.False(t, Backend("sqlite").IsValid())
}

func TestDecodePeriodFillsProgramMap(t *testing.T) {
	stats, err := decodePeriod([]byte(`{"period":4,"applications_approved":2}`))
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Period)
	assert.Equal(t, 2, stats.Approved)
	assert.NotNil(t, stats.ByProgram)

	_, err = decodePeriod([]byte("{"))
	assert.Error(t, err)
}
