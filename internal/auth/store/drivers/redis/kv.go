// Package redis implements the store.KV abstraction on a Redis instance.
// Values are JSON-encoded; expiry is delegated to Redis TTLs so revocation
// and refresh state clean themselves up.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/oakmarket/storefront/internal/auth/store"
)

// KV is a store.KV backed by a single Redis client. Key namespacing is the
// caller's concern; the repositories own their keyspaces.
type KV struct {
	client *goredis.Client
	prefix string
}

// NewKV wraps an existing Redis client. prefix, when non-empty, is
// prepended to every key (e.g. "auth:") so the subsystem can share an
// instance with the rest of the backend.
func NewKV(client *goredis.Client, prefix string) *KV {
	return &KV{client: client, prefix: prefix}
}

func (s *KV) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redis: encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, s.prefix+key, encoded, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}

func (s *KV) Get(ctx context.Context, key string, dest any) error {
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("redis: get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("redis: decode %s: %w", key, err)
	}
	return nil
}

func (s *KV) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis: delete %s: %w", key, err)
	}
	return nil
}
