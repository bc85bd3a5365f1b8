// Package redis holds the engine's redis client and the distributed lock
// that serialises clusterization runs across instances.
package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openagora/opinion-engine/internal/platform/envutil"
	"github.com/openagora/opinion-engine/internal/platform/logger"
)

type Locker interface {
	Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key, token string) error
	Close() error
}

type locker struct {
	log *logger.Logger
	rdb *redis.Client
}

// releaseScript deletes the lock only when the caller still owns it, so a
// run that outlived its TTL cannot release a lock re-acquired by another.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func NewLocker(log *logger.Logger) (Locker, error) {
	addr := strings.TrimSpace(envutil.String("REDIS_ADDR", ""))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    envutil.String("REDIS_PASSWORD", ""),
		DB:          envutil.Int("REDIS_DB", 0),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &locker{
		log: log.With("client", "RedisLocker"),
		rdb: rdb,
	}, nil
}

func (l *locker) Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

func (l *locker) Release(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Err(); err != nil {
		return fmt.Errorf("redis release: %w", err)
	}
	return nil
}

func (l *locker) Close() error {
	return l.rdb.Close()
}
