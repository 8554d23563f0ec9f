package callstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/couchcryptid/evac-response/internal/domain"
)

// contextTTL bounds how long an orphaned call context can linger when a
// terminal status callback never arrives. Comfortably above any
// conversation duration budget.
const contextTTL = 2 * time.Hour

// RedisStore keeps call contexts in Redis so any instance can serve an
// IVR webhook for any call.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis at addr and verifies the connection.
func NewRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Put(ctx context.Context, call domain.CallContext) error {
	data, err := json.Marshal(call)
	if err != nil {
		return fmt.Errorf("marshal call context: %w", err)
	}
	return s.client.Set(ctx, key(call.CallID), data, contextTTL).Err()
}

func (s *RedisStore) Get(ctx context.Context, callID string) (domain.CallContext, error) {
	data, err := s.client.Get(ctx, key(callID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.CallContext{}, domain.ErrCallNotFound
	}
	if err != nil {
		return domain.CallContext{}, fmt.Errorf("get call context: %w", err)
	}

	var call domain.CallContext
	if err := json.Unmarshal(data, &call); err != nil {
		return domain.CallContext{}, fmt.Errorf("unmarshal call context: %w", err)
	}
	return call, nil
}

func (s *RedisStore) Delete(ctx context.Context, callID string) error {
	return s.client.Del(ctx, key(callID)).Err()
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func key(callID string) string {
	return "call:" + callID
}
