package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/models"
	"github.com/baldwij5/welfareSimulation-sub000/pkg/platform/sentinel"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DefaultKeyPrefix = "welfaresim"

// RedisStore keeps each period as a JSON string under
// <prefix>:run:<id>:period:<n> and indexes the run's periods in a sorted set.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

type RedisOption func(*RedisStore)

// WithKeyPrefix namespaces every key.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithTTL expires a run's keys after ttl. Zero keeps them.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: DefaultKeyPrefix}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *RedisStore) periodKey(runID uuid.UUID, period int) string {
	return fmt.Sprintf("%s:run:%s:period:%d", s.prefix, runID, period)
}

func (s *RedisStore) indexKey(runID uuid.UUID) string {
	return fmt.Sprintf("%s:run:%s:periods", s.prefix, runID)
}

func (s *RedisStore) SavePeriod(ctx context.Context, runID uuid.UUID, stats models.PeriodStatistics) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal period statistics: %w", err)
	}
	key := s.periodKey(runID, stats.Period)
	index := s.indexKey(runID)

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, payload, s.ttl)
		pipe.ZAdd(ctx, index, redis.Z{Score: float64(stats.Period), Member: strconv.Itoa(stats.Period)})
		if s.ttl > 0 {
			pipe.Expire(ctx, index, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save period statistics: %w", err)
	}
	return nil
}

func (s *RedisStore) FindPeriod(ctx context.Context, runID uuid.UUID, period int) (models.PeriodStatistics, error) {
	raw, err := s.client.Get(ctx, s.periodKey(runID, period)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.PeriodStatistics{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.PeriodStatistics{}, fmt.Errorf("find period statistics: %w", err)
	}
	return decodePeriod(raw)
}

// ListPeriods reads the index in period order and fetches every period in
// one round trip. Periods whose key has expired are skipped.
func (s *RedisStore) ListPeriods(ctx context.Context, runID uuid.UUID) ([]models.PeriodStatistics, error) {
	members, err := s.client.ZRange(ctx, s.indexKey(runID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read period index: %w", err)
	}
	if len(members) == 0 {
		return nil, sentinel.ErrNotFound
	}

	keys := make([]string, 0, len(members))
	for _, m := range members {
		period, err := strconv.Atoi(m)
		if err != nil {
			return nil, fmt.Errorf("corrupt period index entry %q: %w", m, err)
		}
		keys = append(keys, s.periodKey(runID, period))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch period statistics: %w", err)
	}
	out := make([]models.PeriodStatistics, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		stats, err := decodePeriod([]byte(str))
		if err != nil {
			return nil, err
		}
		out = append(out, stats)
	}
	if len(out) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return out, nil
}

// DeleteRun removes every stored period of a run.
func (s *RedisStore) DeleteRun(ctx context.Context, runID uuid.UUID) error {
	members, err := s.client.ZRange(ctx, s.indexKey(runID), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("read period index: %w", err)
	}
	keys := []string{s.indexKey(runID)}
	for _, m := range members {
		if period, err := strconv.Atoi(m); err == nil {
			keys = append(keys, s.periodKey(runID, period))
		}
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}

func decodePeriod(raw []byte) (models.PeriodStatistics, error) {
	var stats models.PeriodStatistics
	if err := json.Unmarshal(raw, &stats); err != nil {
		return models.PeriodStatistics{}, fmt.Errorf("decode period statistics: %w", err)
	}
	if stats.ByProgram == nil {
		stats.ByProgram = make(map[models.Program]models.ProgramCounts)
	}
	return stats, nil
}
