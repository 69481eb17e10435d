package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Aside implements the cache-aside pattern. On a hit the cached JSON is
// unmarshalled into dest; on a miss fetch must populate dest, and the result
// is written back with the given TTL. When no Redis client is configured the
// fetch runs directly.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if client == nil {
		return fetch()
	}

	data, err := client.Get(ctx, key).Bytes()
	if err == nil {
		if unmarshalErr := json.Unmarshal(data, dest); unmarshalErr == nil {
			return nil
		}
		// Corrupt entry: drop it and fall through to the fetch.
		client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		// Redis unavailable mid-flight; serve from the store.
		return fetch()
	}

	if err := fetch(); err != nil {
		return err
	}

	if data, err := json.Marshal(dest); err == nil {
		client.Set(ctx, key, data, ttl)
	}
	return nil
}
