package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "github.com/baldwij5/welfareSimulation-sub000/pkg/platform/audit"
	"github.com/baldwij5/welfareSimulation-sub000/pkg/platform/audit/store/memory"
)

type rejectingStore struct{}

func (rejectingStore) Append(context.Context, audit.Event) error {
	return errors.New("unavailable")
}

func TestWorkerDrainsInbox(t *testing.T) {
	store := memory.NewInMemoryStore()
	inbox := make(chan audit.Event, 3)
	runID := uuid.New()
	inbox <- audit.NewEvent(runID, audit.EventRunStarted)
	inbox <- audit.NewEvent(runID, audit.EventPeriodCompleted)
	inbox <- audit.NewEvent(runID, audit.EventRunCompleted)
	close(inbox)

	require.NoError(t, NewWorker(store, inbox).Run(context.Background()))

	events, err := store.ListByRun(context.Background(), runID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, string(audit.EventRunStarted), events[0].Action)
	assert.Equal(t, string(audit.EventRunCompleted), events[2].Action)
}

func TestWorkerReportsFailures(t *testing.T) {
	inbox := make(chan audit.Event, 2)
	inbox <- audit.NewEvent(uuid.New(), audit.EventFraudDetected)
	inbox <- audit.NewEvent(uuid.New(), audit.EventFalsePositive)
	close(inbox)

	var failed []string
	w := NewWorker(rejectingStore{}, inbox, WithErrorHandler(func(e audit.Event, _ error) {
		failed = append(failed, e.Action)
	}))
	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, []string{string(audit.EventFraudDetected), string(audit.EventFalsePositive)}, failed)
}

func TestWorkerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewWorker(memory.NewInMemoryStore(), make(chan audit.Event)).Run(ctx)
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
