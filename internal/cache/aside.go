package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Aside implements the cache-aside pattern for JSON-serializable values.
// On a hit, dest is populated from the cached entry. On a miss (or when Redis
// is unavailable) load is called to fill dest, then the result is best-effort
// stored under key with the given TTL.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, load func() error) error {
	if client != nil {
		raw, err := client.Get(ctx, key).Bytes()
		if err == nil {
			if unmarshalErr := json.Unmarshal(raw, dest); unmarshalErr == nil {
				return nil
			}
			// Corrupt entry, drop it and fall through to load
			client.Del(ctx, key)
		} else if !errors.Is(err, redis.Nil) {
			// Redis unavailable, serve from source
			return load()
		}
	}

	if err := load(); err != nil {
		return err
	}

	if client != nil {
		if raw, marshalErr := json.Marshal(dest); marshalErr == nil {
			client.Set(ctx, key, raw, ttl)
		}
	}

	return nil
}
