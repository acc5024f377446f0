package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rustyeddy/tfcandle/market"
)

// RedisStore keeps each candle as a JSON value under <namespace>:<id>.
// A zero TTL keeps candles until they are deleted.
type RedisStore struct {
	rdb       *redis.Client
	namespace string
	ttl       time.Duration
}

// NewRedis wraps rdb. An empty namespace defaults to "candles".
func NewRedis(rdb *redis.Client, namespace string, ttl time.Duration) *RedisStore {
	if namespace == "" {
		namespace = "candles"
	}
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{rdb: rdb, namespace: namespace, ttl: ttl}
}

func (s *RedisStore) key(aid string) string {
	return s.namespace + ":" + aid
}

func (s *RedisStore) Save(ctx context.Context, c market.AggregatedCandle) (string, error) {
	if err := checkID(c.ID); err != nil {
		return "", err
	}

	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal candle: %w", err)
	}

	key := s.key(c.ID)
	if err := s.rdb.Set(ctx, key, b, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("redis set %s: %w", key, err)
	}
	return key, nil
}

func (s *RedisStore) Get(ctx context.Context, aid string) (market.AggregatedCandle, error) {
	if err := checkID(aid); err != nil {
		return market.AggregatedCandle{}, err
	}

	key := s.key(aid)
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return market.AggregatedCandle{}, fmt.Errorf("%w: %s", ErrNotFound, aid)
	}
	if err != nil {
		return market.AggregatedCandle{}, fmt.Errorf("redis get %s: %w", key, err)
	}

	var c market.AggregatedCandle
	if err := json.Unmarshal(b, &c); err != nil {
		return market.AggregatedCandle{}, fmt.Errorf("decode %s: %w", key, err)
	}
	return c, nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
