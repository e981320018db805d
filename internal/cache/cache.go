// Package cache keeps age category rule rows in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Shivanand-hulikatti/attendee-registration/internal/model"
)

const (
	// Redis key prefix for rule rows
	ruleKeyPrefix = "agerule:rule:"

	defaultTTL = 5 * time.Minute
)

// RuleCache is a Redis-backed cache of rule rows keyed by rule id. Rule rows
// are immutable, so entries never go stale and are only evicted by TTL.
// Ticket assignments are not cached.
type RuleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// RuleCacheOption configures a RuleCache.
type RuleCacheOption func(*RuleCache)

// WithTTL sets how long an entry lives.
func WithTTL(ttl time.Duration) RuleCacheOption {
	return func(c *RuleCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// NewRuleCache constructs a RuleCache.
func NewRuleCache(client *redis.Client, opts ...RuleCacheOption) *RuleCache {
	c := &RuleCache{client: client, ttl: defaultTTL}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func ruleKey(ruleID int64) string {
	return ruleKeyPrefix + strconv.FormatInt(ruleID, 10)
}

// Get returns the cached rule. ok is false on a miss.
func (c *RuleCache) Get(ctx context.Context, ruleID int64) (*model.AgeCategoryRule, bool, error) {
	data, err := c.client.Get(ctx, ruleKey(ruleID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached rule: %w", err)
	}
	var rule model.AgeCategoryRule
	if err := json.Unmarshal(data, &rule); err != nil {
		return nil, false, fmt.Errorf("decode cached rule: %w", err)
	}
	return &rule, true, nil
}

// Set stores the rule under ruleID.
func (c *RuleCache) Set(ctx context.Context, ruleID int64, rule *model.AgeCategoryRule) error {
	data, err := json.Marshal(rule)
	if err != nil {
		return fmt.Errorf("encode rule: %w", err)
	}
	if err := c.client.Set(ctx, ruleKey(ruleID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached rule: %w", err)
	}
	return nil
}
