package nonce

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"invitegate/pkg/platform/sentinel"
)

// DefaultRedisKey is the sorted set holding consumed nonces scored by used-at.
const DefaultRedisKey = "invitegate:nonces:used"

// RedisStore records consumed nonces in a Redis sorted set, shared across
// instances.
type RedisStore struct {
	client *redis.Client
	key    string
	clock  Clock
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisClock overrides time.Now.
func WithRedisClock(clock Clock) RedisOption {
	return func(s *RedisStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithRedisKey overrides DefaultRedisKey.
func WithRedisKey(key string) RedisOption {
	return func(s *RedisStore) {
		if key != "" {
			s.key = key
		}
	}
}

func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, key: DefaultRedisKey, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *RedisStore) Issue(_ context.Context) (string, error) {
	return NewToken(), nil
}

// Consume uses ZADD NX, which adds the member only if it is absent.
func (s *RedisStore) Consume(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	added, err := s.client.ZAddNX(ctx, s.key, redis.Z{
		Score:  float64(s.clock().Unix()),
		Member: token,
	}).Result()
	if err != nil {
		return fmt.Errorf("consume nonce: %w", err)
	}
	if added == 0 {
		return fmt.Errorf("consume nonce: %w", sentinel.ErrAlreadyUsed)
	}
	return nil
}

func (s *RedisStore) Sweep(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := s.clock().Add(-maxAge).Unix()
	removed, err := s.client.ZRemRangeByScore(ctx, s.key, "-inf", "("+strconv.FormatInt(cutoff, 10)).Result()
	if err != nil {
		return 0, fmt.Errorf("sweep nonces: %w", err)
	}
	if removed > 0 {
		sweptTotal.WithLabelValues("redis").Add(float64(removed))
	}
	return int(removed), nil
}
