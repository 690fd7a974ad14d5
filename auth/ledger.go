package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResetLedger remembers redeemed reset tokens.
type ResetLedger interface {
	// Consume marks jti as used until the given time. It returns false when
	// jti had already been consumed.
	Consume(ctx context.Context, jti string, until time.Time) (bool, error)
}

// NoopLedger accepts every token, leaving reset tokens reusable until expiry.
type NoopLedger struct{}

func (NoopLedger) Consume(context.Context, string, time.Time) (bool, error) {
	return true, nil
}

const resetKeyPrefix = "reset:consumed:"

// RedisLedger stores consumed token ids in Redis with a TTL matching the
// token's remaining lifetime.
type RedisLedger struct {
	rdb redis.Cmdable
	now func() time.Time
}

func NewRedisLedger(rdb redis.Cmdable) *RedisLedger {
	return &RedisLedger{rdb: rdb, now: time.Now}
}

func (l *RedisLedger) Consume(ctx context.Context, jti string, until time.Time) (bool, error) {
	if jti == "" {
		return false, nil
	}
	ttl := until.Sub(l.now())
	if ttl < time.Second {
		ttl = time.Second
	}

	ok, err := l.rdb.SetNX(ctx, resetKeyPrefix+jti, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("consume reset token: %w", err)
	}
	return ok, nil
}

// NewRedisClient connects to addr and pings it before returning.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}
