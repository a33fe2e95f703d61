package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coursemedia/uploads-ms-go/internal/port"
	"github.com/redis/go-redis/v9"
)

// RedisLimiter implements sliding-window rate limiting on top of Redis.
// Each owner gets a counter per window bucket; the effective count weighs
// the previous bucket by how much of it still overlaps the sliding window,
// so a bucket rollover never hands out a fresh budget. INCR, EXPIRE and the
// previous-bucket read run in one pipeline so the count-and-check is atomic
// across service instances.
type RedisLimiter struct {
	client *redis.Client
	window time.Duration
	max    int64
	now    func() time.Time
}

// compile-time check: *RedisLimiter must satisfy port.RateLimiter
var _ port.RateLimiter = (*RedisLimiter)(nil)

func NewRedisLimiter(addr, password string, window time.Duration, max int) *RedisLimiter {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	return &RedisLimiter{client: rdb, window: window, max: int64(max), now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, ownerKey string) (bool, error) {
	now := l.now()
	bucket := now.UnixNano() / int64(l.window)
	elapsed := time.Duration(now.UnixNano() % int64(l.window))

	currKey := fmt.Sprintf("ratelimit:%s:%d", ownerKey, bucket)
	prevKey := fmt.Sprintf("ratelimit:%s:%d", ownerKey, bucket-1)

	pipe := l.client.TxPipeline()
	curr := pipe.Incr(ctx, currKey)
	// a bucket must survive one extra window to weigh into the next one
	pipe.Expire(ctx, currKey, 2*l.window+time.Second)
	prev := pipe.Get(ctx, prevKey)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("redis incr failed: %w", err)
	}

	// redis.Nil on a missing previous bucket leaves the count at zero
	prevCount, _ := prev.Int64()
	weight := float64(l.window-elapsed) / float64(l.window)
	estimate := float64(prevCount)*weight + float64(curr.Val())

	return estimate <= float64(l.max), nil
}

// NoopLimiter never rejects. It stands in when no Redis address is
// configured, e.g. in local development.
type NoopLimiter struct{}

var _ port.RateLimiter = (*NoopLimiter)(nil)

func NewNoop() *NoopLimiter {
	return &NoopLimiter{}
}

func (n *NoopLimiter) Allow(ctx context.Context, ownerKey string) (bool, error) {
	return true, nil
}
