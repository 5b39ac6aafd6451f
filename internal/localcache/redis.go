package localcache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/alfredjeanlab/sitekeep/internal/logging"
)

// DefaultRedisPrefix namespaces cache keys inside a shared Redis database.
const DefaultRedisPrefix = "sitekeep:localcache:"

// Redis is a Cache shared by every process pointed at the same Redis
// database. It supports atomic SetIfAbsent through SET NX.
type Redis struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
	log     *zap.Logger
}

var (
	_ Cache  = (*Redis)(nil)
	_ Locker = (*Redis)(nil)
)

// NewRedis connects to redisURL (redis://...) and pings it.
func NewRedis(redisURL string, logger *zap.Logger) (*Redis, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	r := NewRedisWithClient(redis.NewClient(opt), logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.client.Ping(ctx).Err(); err != nil {
		r.client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return r, nil
}

// NewRedisWithClient wraps an existing client without pinging it.
func NewRedisWithClient(client *redis.Client, logger *zap.Logger) *Redis {
	return &Redis{
		client:  client,
		prefix:  DefaultRedisPrefix,
		timeout: 3 * time.Second,
		log:     logging.OrNop(logger),
	}
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.timeout)
}

func (r *Redis) GetItem(key string) (string, bool) {
	ctx, cancel := r.ctx()
	defer cancel()
	val, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		r.log.Warn("localcache: redis get failed", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return val, true
}

func (r *Redis) SetItem(key, value string) error {
	ctx, cancel := r.ctx()
	defer cancel()
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) RemoveItem(key string) error {
	ctx, cancel := r.ctx()
	defer cancel()
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Keys lists every key under the prefix using SCAN.
func (r *Redis) Keys() ([]string, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	var keys []string
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), r.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (r *Redis) SetIfAbsent(key, value string, ttl time.Duration) (bool, error) {
	ctx, cancel := r.ctx()
	defer cancel()
	ok, err := r.client.SetNX(ctx, r.prefix+key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	return ok, nil
}
