//go:build integration

package lei

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

type RedisCacheSuite struct {
	suite.Suite
	container *tcredis.RedisContainer
	client    *redis.Client
	cache     *RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	s.Require().NoError(err)
	s.container = container

	url, err := container.ConnectionString(ctx)
	s.Require().NoError(err)

	client, err := NewRedisClient(ctx, url)
	s.Require().NoError(err)
	s.client = client
	s.cache = NewRedisCache(client)
}

func (s *RedisCacheSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Close()
	}
	if s.container != nil {
		_ = testcontainers.TerminateContainer(s.container)
	}
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.client.FlushAll(context.Background()).Err())
}

func (s *RedisCacheSuite) TestMissThenHit() {
	ctx := context.Background()

	_, err := s.cache.Get(ctx, testLEI)
	s.Require().ErrorIs(err, ErrCacheMiss)

	s.Require().NoError(s.cache.Set(ctx, testLEI, "MOCKBANK", time.Minute))

	name, err := s.cache.Get(ctx, testLEI)
	s.Require().NoError(err)
	s.Equal("MOCKBANK", name)
}

func (s *RedisCacheSuite) TestEntriesExpire() {
	ctx := context.Background()

	s.Require().NoError(s.cache.Set(ctx, testLEI, "MOCKBANK", time.Minute))

	ttl, err := s.client.TTL(ctx, redisKeyPrefix+testLEI).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, time.Minute)
}
