package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// failureScript increments the failure counter inside its window and swaps it
// for a block key once the threshold is reached.
var failureScript = redis.NewScript(`
local fails = redis.call('INCR', KEYS[1])
if fails == 1 then
    redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
if fails >= tonumber(ARGV[2]) then
    redis.call('SET', KEYS[2], '1', 'PX', ARGV[3])
    redis.call('DEL', KEYS[1])
    return 1
end
return 0
`)

// Redis keeps limiter state in Redis keys that expire on their own.
type Redis struct {
	rdb    redis.UniversalClient
	prefix string
	policy Policy
}

// NewRedis constructs a Redis-backed limiter. Keys are namespaced by prefix.
func NewRedis(rdb redis.UniversalClient, prefix string, p Policy) *Redis {
	if prefix == "" {
		prefix = "inkwell:login"
	}
	return &Redis{rdb: rdb, prefix: prefix, policy: p.normalized()}
}

func (l *Redis) keys(username string, ipHash []byte) (fail, block string) {
	s := subject(username, ipHash)
	return l.prefix + ":fail:" + s, l.prefix + ":block:" + s
}

// Allow reports whether a block key is live for (username, ip).
func (l *Redis) Allow(ctx context.Context, username string, ipHash []byte) (bool, time.Duration, error) {
	_, block := l.keys(username, ipHash)
	ttl, err := l.rdb.PTTL(ctx, block).Result()
	if err != nil {
		return false, 0, fmt.Errorf("redis pttl: %w", err)
	}
	if ttl > 0 {
		return false, ttl, nil
	}
	return true, 0, nil
}

// Success drops both the failure counter and any block.
func (l *Redis) Success(ctx context.Context, username string, ipHash []byte) error {
	fail, block := l.keys(username, ipHash)
	return l.rdb.Del(ctx, fail, block).Err()
}

// Failure records a failed attempt.
func (l *Redis) Failure(ctx context.Context, username string, ipHash []byte) (bool, time.Duration, error) {
	fail, block := l.keys(username, ipHash)
	blocked, err := failureScript.Run(ctx, l.rdb, []string{fail, block},
		l.policy.Window.Milliseconds(), l.policy.MaxFails, l.policy.BlockFor.Milliseconds()).Int()
	if err != nil {
		return false, 0, fmt.Errorf("redis failure script: %w", err)
	}
	if blocked == 1 {
		return true, l.policy.BlockFor, nil
	}
	return false, 0, nil
}

// NewRedisClient dials addr and verifies it with a short ping.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}
