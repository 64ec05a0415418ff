package jobqueue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/CandidateLens/internal/pkg/env"
)

const isolatedJobQueueTestRedisDB = 14

// redisCandidates lists the endpoints tried in order: the configured cache,
// the compose service and a local instance
func redisCandidates() []redis.Options {
	port := env.GetEnv("CACHE_PORT", "6379")
	password := env.GetEnv("CACHE_PASSWORD", "")

	var opts []redis.Options
	seen := map[string]bool{}
	for _, host := range []string{env.GetEnv("CACHE_HOST", ""), "cache", "localhost"} {
		addr := fmt.Sprintf("%s:%s", host, port)
		if host == "" || seen[addr] {
			continue
		}
		seen[addr] = true
		opts = append(opts, redis.Options{Addr: addr, Password: password})
	}
	return opts
}

// newIsolatedRedisClient connects to a flushed scratch database or skips the
// test when no Redis is reachable
func newIsolatedRedisClient(t *testing.T, db int) *redis.Client {
	t.Helper()

	var lastErr error
	for _, opt := range redisCandidates() {
		opt.DB = db
		opt.DialTimeout = time.Second
		client := redis.NewClient(&opt)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		lastErr = client.Ping(ctx).Err()
		cancel()
		if lastErr != nil {
			_ = client.Close()
			continue
		}

		if err := client.FlushDB(context.Background()).Err(); err != nil {
			_ = client.Close()
			t.Fatalf("failed to flush redis db %d: %v", db, err)
		}
		t.Cleanup(func() {
			_ = client.FlushDB(context.Background()).Err()
			_ = client.Close()
		})
		return client
	}

	t.Skipf("Skipping Redis-dependent test: no reachable Redis endpoint (%v)", lastErr)
	return nil
}
