//go:build integration

package cache_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Shivanand-hulikatti/attendee-registration/internal/cache"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/model"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/testutil/containers"
)

type RuleCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *cache.RuleCache
}

func TestRuleCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RuleCacheSuite))
}

func (s *RuleCacheSuite) SetupSuite() {
	s.redis = containers.NewRedis(s.T())
	s.cache = cache.NewRuleCache(s.redis.Client, cache.WithTTL(time.Minute))
}

func (s *RuleCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RuleCacheSuite) TestRoundTrip() {
	ctx := context.Background()
	rule := &model.AgeCategoryRule{
		ID:       4,
		Name:     "youth",
		CalcMode: model.CalcModeByAge,
		Rule:     json.RawMessage(`{"bins":[{"min":0,"max":17,"age_category":"U18"}]}`),
		Version:  1,
		IsActive: true,
	}

	_, ok, err := s.cache.Get(ctx, rule.ID)
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.cache.Set(ctx, rule.ID, rule))

	got, ok, err := s.cache.Get(ctx, rule.ID)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(rule.ID, got.ID)
	s.JSONEq(string(rule.Rule), string(got.Rule))

	ttl, err := s.redis.Client.TTL(ctx, "agerule:rule:4").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
}

func (s *RuleCacheSuite) TestCorruptEntry() {
	ctx := context.Background()
	s.Require().NoError(s.redis.Client.Set(ctx, "agerule:rule:5", "not-json", time.Minute).Err())

	_, ok, err := s.cache.Get(ctx, 5)
	s.Error(err)
	s.False(ok)
}
