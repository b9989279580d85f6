package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/vegatran/GaraManager-sub003/pkg/logger"
)

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Redis is a Locker shared by every replica. Each key is a SET NX PX entry
// owned by a random token.
type Redis struct {
	client     redis.UniversalClient
	attempts   int
	retryDelay time.Duration
}

func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client, attempts: 3, retryDelay: 100 * time.Millisecond}
}

func (r *Redis) Acquire(ctx context.Context, keys []string, ttl time.Duration) (Release, error) {
	token := uuid.New().String()

	var held []string
	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		for _, key := range held {
			if err := releaseScript.Run(releaseCtx, r.client, []string{key}, token).Err(); err != nil {
				logger.Logger.Error().Err(err).Str("key", key).Msg("Failed to release lock")
			}
		}
	}

	for _, key := range normalize(keys) {
		if err := r.lockOne(ctx, key, token, ttl); err != nil {
			release()
			return nil, err
		}
		held = append(held, key)
	}
	return release, nil
}

func (r *Redis) lockOne(ctx context.Context, key, token string, ttl time.Duration) error {
	for i := 0; i < r.attempts; i++ {
		ok, err := r.client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			logger.Warn(ctx).Err(err).Str("key", key).Msg("Failed to acquire lock, redis error")
		}
		if ok {
			return nil
		}
		select {
		case <-time.After(r.retryDelay):
		case <-ctx.Done():
			return fmt.Errorf("%w: %s: %v", ErrNotAcquired, key, ctx.Err())
		}
	}
	return fmt.Errorf("%w: %s", ErrNotAcquired, key)
}
