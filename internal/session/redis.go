package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/desertthunder/spotweb/internal/shared"
	"github.com/redis/go-redis/v9"
)

// RedisKeyPrefix namespaces session keys.
const RedisKeyPrefix = "spotweb:session:"

// RedisStore keeps sessions in Redis with a TTL matching their expiry, so they survive restarts
// and can be shared between instances.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection with PING.
func NewRedisStore(ctx context.Context, cfg shared.SessionConfig) (*RedisStore, error) {
	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:        net.JoinHostPort(cfg.RedisHost, port),
		Username:    cfg.RedisUsername,
		Password:    cfg.RedisPassword,
		DialTimeout: 2 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (st *RedisStore) Save(ctx context.Context, s *Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return shared.ErrSessionExpired
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := st.client.Set(ctx, RedisKeyPrefix+s.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (st *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := st.client.Get(ctx, RedisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, shared.ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if s.IsExpired() {
		st.client.Del(ctx, RedisKeyPrefix+id)
		return nil, shared.ErrSessionExpired
	}
	return &s, nil
}

func (st *RedisStore) Delete(ctx context.Context, id string) error {
	if err := st.client.Del(ctx, RedisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (st *RedisStore) Close() error {
	return st.client.Close()
}
