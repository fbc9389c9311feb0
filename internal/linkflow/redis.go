package linkflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Store shared across instances, for deployments where the
// initiate and callback legs may land on different processes.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a RedisStore. Pass 0 for the default TTL.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) redisKey(flowID string) string {
	return fmt.Sprintf("%s:linkflow:%s", s.prefix, flowID)
}

func (s *RedisStore) Put(ctx context.Context, flowID string, link *PendingLink) error {
	payload, err := json.Marshal(link)
	if err != nil {
		return fmt.Errorf("failed to marshal pending link: %w", err)
	}
	if err := s.client.Set(ctx, s.redisKey(flowID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store pending link in redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Take(ctx context.Context, flowID string) (*PendingLink, error) {
	payload, err := s.client.GetDel(ctx, s.redisKey(flowID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrFlowNotFound
		}
		return nil, fmt.Errorf("failed to fetch pending link from redis: %w", err)
	}

	var link PendingLink
	if err := json.Unmarshal([]byte(payload), &link); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending link: %w", err)
	}
	return &link, nil
}

var _ Store = (*RedisStore)(nil)
