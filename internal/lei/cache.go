package lei

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"bond-registry/internal/metrics"
)

// ErrCacheMiss is returned by a Cache that holds no entry for the identifier.
var ErrCacheMiss = errors.New("lei cache miss")

// Cache stores resolved legal names keyed by LEI.
type Cache interface {
	Get(ctx context.Context, lei string) (string, error)
	Set(ctx context.Context, lei, legalName string, ttl time.Duration) error
}

// CachingResolver consults a Cache before delegating to another Resolver.
// Only successful resolutions are stored. Cache errors never fail a lookup.
type CachingResolver struct {
	next    Resolver
	cache   Cache
	ttl     time.Duration
	logger  *logrus.Logger
	metrics *metrics.Metrics
}

func NewCachingResolver(next Resolver, cache Cache, ttl time.Duration, logger *logrus.Logger, m *metrics.Metrics) *CachingResolver {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CachingResolver{
		next:    next,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
		metrics: m,
	}
}

func (r *CachingResolver) Resolve(ctx context.Context, lei string) (string, error) {
	name, err := r.cache.Get(ctx, lei)
	switch {
	case err == nil:
		r.metrics.ObserveLEILookup(metrics.LookupCacheHit)
		return name, nil
	case !errors.Is(err, ErrCacheMiss):
		r.logger.WithError(err).WithField("lei", lei).Warn("lei cache read failed")
	}

	name, err = r.next.Resolve(ctx, lei)
	if err != nil {
		return "", err
	}

	if err := r.cache.Set(ctx, lei, name, r.ttl); err != nil {
		r.logger.WithError(err).WithField("lei", lei).Warn("lei cache write failed")
	}
	return name, nil
}

var _ Resolver = (*CachingResolver)(nil)

const redisKeyPrefix = "lei:legal-name:"

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	client redis.UniversalClient
}

func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

// NewRedisClient parses url and verifies the server answers.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func (c *RedisCache) Get(ctx context.Context, lei string) (string, error) {
	name, err := c.client.Get(ctx, redisKeyPrefix+lei).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", fmt.Errorf("redis get: %w", err)
	}
	return name, nil
}

func (c *RedisCache) Set(ctx context.Context, lei, legalName string, ttl time.Duration) error {
	if err := c.client.Set(ctx, redisKeyPrefix+lei, legalName, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

var _ Cache = (*RedisCache)(nil)
