//go:build integration

package kafka

import (
	"context"
	"testing"
	"time"

	audit "github.com/baldwij5/welfareSimulation-sub000/pkg/platform/audit"
	"github.com/baldwij5/welfareSimulation-sub000/pkg/testutil/containers"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

func TestStore_ProducesKeyedEvents(t *testing.T) {
	broker := containers.NewRedpandaContainer(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	topic := "audit-" + uuid.NewString()
	store, err := New([]string{broker.SeedBroker}, WithTopic(topic))
	require.NoError(t, err)
	require.NoError(t, store.EnsureTopic(ctx))
	require.NoError(t, store.EnsureTopic(ctx), "existing topic is not an error")

	runID := uuid.New()
	for _, action := range []audit.AuditEvent{audit.EventRunStarted, audit.EventFraudDetected, audit.EventRunCompleted} {
		event := audit.NewEvent(runID, action)
		event.ID = uuid.New()
		event.Timestamp = time.Now().UTC()
		require.NoError(t, store.Append(ctx, event))
	}
	require.NoError(t, store.Close(ctx))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.SeedBroker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	var got []audit.Event
	for len(got) < 3 {
		fetches := consumer.PollFetches(ctx)
		require.NoError(t, ctx.Err())
		fetches.EachRecord(func(r *kgo.Record) {
			assert.Equal(t, runID.String(), string(r.Key))
			event, err := Decode(r.Value)
			require.NoError(t, err)
			got = append(got, event)
		})
	}

	assert.Equal(t, string(audit.EventRunStarted), got[0].Action)
	assert.Equal(t, audit.CategoryIntegrity, got[1].Category)
	assert.Equal(t, string(audit.EventRunCompleted), got[2].Action)
}
