package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	audit "github.com/baldwij5/welfareSimulation-sub000/pkg/platform/audit"
	"github.com/baldwij5/welfareSimulation-sub000/pkg/platform/audit/store/memory"
	"github.com/baldwij5/welfareSimulation-sub000/pkg/platform/sentinel"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	mu    sync.Mutex
	calls int
}

func (f *failingStore) Append(context.Context, audit.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return errors.New("broker down")
}

func (f *failingStore) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	runID := uuid.New()
	err := pub.Emit(context.Background(), audit.NewEvent(runID, audit.EventRunStarted))
	require.NoError(t, err)

	events, err := pub.List(context.Background(), runID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventRunStarted), events[0].Action)
	assert.Equal(t, audit.CategoryLifecycle, events[0].Category)
	assert.NotEqual(t, uuid.Nil, events[0].ID, "missing ID should be assigned")
}

func TestPublisher_AsyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))
	defer pub.Close()

	runID := uuid.New()
	err := pub.Emit(context.Background(), audit.NewEvent(runID, audit.EventFraudDetected))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		events, _ := pub.List(context.Background(), runID)
		return len(events) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	runID := uuid.New()
	for period := range 10 {
		event := audit.NewEvent(runID, audit.EventPeriodCompleted)
		event.Period = period + 1
		require.NoError(t, pub.Emit(context.Background(), event))
	}

	pub.Close()

	events, err := store.ListByRun(context.Background(), runID)
	require.NoError(t, err)
	require.Len(t, events, 10, "all events should be drained on close")
	for i, e := range events {
		assert.Equal(t, i+1, e.Period, "events keep emission order")
	}
}

func TestPublisher_BufferFull_DropsEvent(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))
	defer pub.Close()

	runID := uuid.New()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pub.Emit(context.Background(), audit.NewEvent(runID, audit.EventRoutingAnomaly))
			if err != nil {
				assert.ErrorIs(t, err, ErrBufferFull)
			}
		}()
	}
	wg.Wait()
	pub.Close()

	events, err := store.ListByRun(context.Background(), runID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), int64(len(events))+pub.Dropped(), "every event is stored or counted as dropped")
}

func TestPublisher_EmitAfterClose(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(4))
	pub.Close()
	pub.Close()

	err := pub.Emit(context.Background(), audit.NewEvent(uuid.New(), audit.EventRunCompleted))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPublisher_SetsTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	runID := uuid.New()
	before := time.Now()
	require.NoError(t, pub.Emit(context.Background(), audit.NewEvent(runID, audit.EventRunStarted)))
	after := time.Now()

	events, err := pub.List(context.Background(), runID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.False(t, events[0].Timestamp.Before(before), "timestamp should be >= before")
	assert.False(t, events[0].Timestamp.After(after), "timestamp should be <= after")
}

func TestPublisher_PreservesExistingFields(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	runID := uuid.New()
	eventID := uuid.New()
	customTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	event := audit.NewEvent(runID, audit.EventFraudDetected)
	event.ID = eventID
	event.Timestamp = customTime
	event.SeekerID = 42
	event.Program = "SNAP"

	require.NoError(t, pub.Emit(context.Background(), event))

	events, err := pub.List(context.Background(), runID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, customTime, events[0].Timestamp)
	assert.Equal(t, eventID, events[0].ID)
	assert.Equal(t, int64(42), events[0].SeekerID)
	assert.Equal(t, audit.CategoryIntegrity, events[0].Category)
}

func TestPublisher_SeparateRuns(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	run1, run2 := uuid.New(), uuid.New()
	require.NoError(t, pub.Emit(context.Background(), audit.NewEvent(run1, audit.EventRunStarted)))
	require.NoError(t, pub.Emit(context.Background(), audit.NewEvent(run2, audit.EventRoutingAnomaly)))
	require.NoError(t, pub.Emit(context.Background(), audit.NewEvent(run1, audit.EventRunCompleted)))

	events1, err := pub.List(context.Background(), run1)
	require.NoError(t, err)
	require.Len(t, events1, 2)
	assert.Equal(t, string(audit.EventRunStarted), events1[0].Action)
	assert.Equal(t, string(audit.EventRunCompleted), events1[1].Action)

	events2, err := pub.List(context.Background(), run2)
	require.NoError(t, err)
	require.Len(t, events2, 1)
	assert.Equal(t, audit.CategoryOperations, events2[0].Category)
}

func TestPublisher_WriteOnlyStore(t *testing.T) {
	pub := NewPublisher(&failingStore{})
	defer pub.Close()

	_, err := pub.List(context.Background(), uuid.New())
	assert.ErrorIs(t, err, sentinel.ErrInvalidState)
}

func TestPublisher_CircuitBreaker(t *testing.T) {
	store := &failingStore{}
	pub := NewPublisher(store, WithCircuitBreaker(2, time.Hour))
	defer pub.Close()

	runID := uuid.New()
	for range 2 {
		err := pub.Emit(context.Background(), audit.NewEvent(runID, audit.EventPeriodCompleted))
		require.Error(t, err)
	}
	assert.True(t, pub.CircuitOpen())

	err := pub.Emit(context.Background(), audit.NewEvent(runID, audit.EventPeriodCompleted))
	require.ErrorIs(t, err, sentinel.ErrUnavailable)
	assert.Equal(t, 2, store.Calls(), "open circuit should skip the store")
	assert.Equal(t, int64(3), pub.Failed())
}

func TestBreaker_HalfOpensAfterCooldown(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := newBreaker(1, time.Minute)
	b.now = func() time.Time { return now }

	b.recordFailure()
	assert.False(t, b.allow())

	now = now.Add(2 * time.Minute)
	assert.True(t, b.allow(), "cooldown elapsed")
	assert.False(t, b.open())
}
