// Package kafka streams audit events to a Kafka topic. Records are keyed by
// run id so one run's events stay ordered within a partition.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	audit "github.com/baldwij5/welfareSimulation-sub000/pkg/platform/audit"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

const DefaultTopic = "welfaresim.audit"

// Store implements audit.Store by producing JSON records.
type Store struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger

	partitions  int32
	replication int16
}

type Option func(*Store)

func WithTopic(topic string) Option {
	return func(s *Store) {
		if topic != "" {
			s.topic = topic
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithTopicLayout sets the partition count and replication factor used when
// EnsureTopic creates the topic.
func WithTopicLayout(partitions int32, replication int16) Option {
	return func(s *Store) {
		s.partitions = partitions
		s.replication = replication
	}
}

// New connects a producer to brokers.
func New(brokers []string, opts ...Option) (*Store, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka audit store requires at least one broker")
	}
	s := &Store{
		topic:       DefaultTopic,
		logger:      slog.Default(),
		partitions:  1,
		replication: 1,
	}
	for _, opt := range opts {
		opt(s)
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(s.topic),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	s.client = client
	return s, nil
}

// Topic is the topic events are produced to.
func (s *Store) Topic() string {
	return s.topic
}

// EnsureTopic creates the audit topic if it does not exist yet.
func (s *Store) EnsureTopic(ctx context.Context) error {
	adm := kadm.NewClient(s.client)
	resp, err := adm.CreateTopics(ctx, s.partitions, s.replication, nil, s.topic)
	if err != nil {
		return fmt.Errorf("create audit topic: %w", err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create audit topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

// Append produces event synchronously.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	headers := []kgo.RecordHeader{
		{Key: "action", Value: []byte(event.Action)},
		{Key: "category", Value: []byte(event.Category)},
	}
	record := &kgo.Record{Key: []byte(event.RunID.String()), Value: payload, Headers: headers}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes buffered records and closes the client.
func (s *Store) Close(ctx context.Context) error {
	err := s.client.Flush(ctx)
	s.client.Close()
	if err != nil {
		s.logger.WarnContext(ctx, "flush audit producer", "error", err)
		return fmt.Errorf("flush audit producer: %w", err)
	}
	return nil
}

// Decode parses a record value produced by Append.
func Decode(value []byte) (audit.Event, error) {
	var event audit.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return audit.Event{}, fmt.Errorf("decode audit event: %w", err)
	}
	return event, nil
}
