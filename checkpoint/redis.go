package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "chatfield:thread:"

// RedisStore keeps checkpoints in Redis under chatfield:thread:{id}.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, threadID string) ([]byte, error) {
	state, err := s.client.Get(ctx, redisKeyPrefix+threadID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get checkpoint: %w", err)
	}
	return state, nil
}

func (s *RedisStore) Put(ctx context.Context, threadID string, state []byte) error {
	if err := s.client.Set(ctx, redisKeyPrefix+threadID, state, s.ttl).Err(); err != nil {
		return fmt.Errorf("put checkpoint: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, threadID string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+threadID).Err(); err != nil {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	return nil
}

var _ Store = &RedisStore{}
