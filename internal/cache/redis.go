package cache

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var (
	newRedisClient = func(opts *redis.Options) *redis.Client {
		return redis.NewClient(opts)
	}
	pingRedis = func(ctx context.Context, client *redis.Client) error {
		return client.Ping(ctx).Err()
	}
	parseRedisURL = redis.ParseURL
)

// Redis is an optional shared store for deployments running more than one
// converter instance. Backend errors degrade to cache misses; the engine
// never depends on Redis being reachable once connected.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to addr ("host:port" or a redis:// URL).
func NewRedis(ctx context.Context, addr string) (*Redis, error) {
	opts := &redis.Options{Addr: addr}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := parseRedisURL(addr)
		if err != nil {
			return nil, err
		}
		opts = parsed
	}

	client := newRedisClient(opts)
	if err := pingRedis(ctx, client); err != nil {
		return nil, err
	}
	logrus.Info("connected to Redis response cache")
	return &Redis{client: client, prefix: "httpcache:"}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logrus.Warnf("redis cache read error: %v", err)
		return nil, false
	}
	return data, true
}

func (r *Redis) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) {
	if err := r.client.Set(ctx, r.prefix+key, payload, ttl).Err(); err != nil {
		logrus.Warnf("redis cache write error: %v", err)
	}
}
