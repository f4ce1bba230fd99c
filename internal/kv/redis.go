package kv

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisCmds is the subset of the go-redis client used by Redis.
// It is implemented by *redis.Client and by test fakes.
type redisCmds interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// Redis is a Store backed by a Redis server.
type Redis struct{ c redisCmds }

var _ Store = (*Redis)(nil)

// RedisOptions selects the Redis server.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedis connects to Redis and verifies the connection with PING.
func NewRedis(ctx context.Context, o RedisOptions) (*Redis, *redis.Client, error) {
	c := redis.NewClient(&redis.Options{Addr: o.Addr, Password: o.Password, DB: o.DB})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, nil, err
	}
	return &Redis{c: c}, c, nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(c redisCmds) *Redis { return &Redis{c: c} }

// Get returns the value stored under key.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.c.Get(ctx, key).Result()
	switch {
	case err == nil:
		return v, true, nil
	case errors.Is(err, redis.Nil):
		return "", false, nil
	default:
		return "", false, err
	}
}

// Set stores value with SET key value [EX ttl].
func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.c.Set(ctx, key, value, ttl).Err()
}

// SetNX stores value with SET key value NX [EX ttl].
func (r *Redis) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return r.c.SetNX(ctx, key, value, ttl).Result()
}

// Delete removes key with DEL.
func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.c.Del(ctx, key).Err()
}

// Ping checks server availability.
func (r *Redis) Ping(ctx context.Context) error {
	return r.c.Ping(ctx).Err()
}
