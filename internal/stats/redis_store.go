package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/elbara99/ai-counter-cafeteria/internal/domain"
)

const defaultKey = "counter:stats"

// RedisStore keeps the JSON-serialized record under one key in the local
// Redis instance.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore returns a store over the given client using the default key.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		key:    defaultKey,
	}
}

func (s *RedisStore) Load(ctx context.Context) (domain.StatsRecord, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.StatsRecord{}, ErrNotFound
	}
	if err != nil {
		return domain.StatsRecord{}, fmt.Errorf("redis get failed: %w", err)
	}

	var rec domain.StatsRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.StatsRecord{}, fmt.Errorf("unmarshal stats failed: %w", err)
	}
	return rec, nil
}

func (s *RedisStore) Save(ctx context.Context, rec domain.StatsRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal stats failed: %w", err)
	}
	// No TTL: the record survives process restarts.
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}
