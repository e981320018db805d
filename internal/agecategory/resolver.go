package agecategory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/attendee-registration/internal/metrics"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/model"
)

// RuleLookup reads ticket assignments and rules. FindAssignment returns
// model.ErrNotFound when the ticket has no assignment.
type RuleLookup interface {
	FindAssignment(ctx context.Context, ticketID int64) (*model.Assignment, error)
	FindRule(ctx context.Context, id int64) (*model.AgeCategoryRule, error)
}

// RuleCache keeps rule rows keyed by rule id. Rule rows never change, so
// entries need no invalidation.
type RuleCache interface {
	Get(ctx context.Context, ruleID int64) (*model.AgeCategoryRule, bool, error)
	Set(ctx context.Context, ruleID int64, rule *model.AgeCategoryRule) error
}

// Resolver maps a ticket, birth date and gender to an age category.
type Resolver struct {
	rules   RuleLookup
	cache   RuleCache
	now     func() time.Time
	metrics *metrics.Metrics
	log     *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCache reads rule bodies through cache. Assignments are always read
// from the lookup.
func WithCache(cache RuleCache) Option {
	return func(r *Resolver) { r.cache = cache }
}

// WithClock sets the evaluation time source.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// WithMetrics records resolution results.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// WithLogger sets the logger used for cache failures.
func WithLogger(log *zap.Logger) Option {
	return func(r *Resolver) { r.log = log }
}

// NewResolver constructs a Resolver.
func NewResolver(rules RuleLookup, opts ...Option) *Resolver {
	r := &Resolver{
		rules: rules,
		now:   time.Now,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the category for an attendee of the ticket. ok is false,
// with a nil error, when there is no birth date, no active BY_AGE rule
// assigned, the stored document is unusable or no bin matches.
func (r *Resolver) Resolve(ctx context.Context, ticketID int64, birthDate *time.Time, gender string) (string, bool, error) {
	if birthDate == nil {
		r.metrics.IncrementResolution("no_birth_date")
		return "", false, nil
	}

	rule, err := r.assignedRule(ctx, ticketID)
	if errors.Is(err, model.ErrNotFound) {
		r.metrics.IncrementResolution("unassigned")
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("find assigned rule: %w", err)
	}

	if !rule.IsActive {
		r.metrics.IncrementResolution("inactive")
		return "", false, nil
	}
	if rule.CalcMode != model.CalcModeByAge {
		r.metrics.IncrementResolution("unsupported_mode")
		return "", false, nil
	}

	bins, err := ParseDocument(rule.Rule)
	if err != nil {
		r.log.Warn("assigned age rule is malformed",
			zap.Int64("ticket_id", ticketID),
			zap.Int64("rule_id", rule.ID),
			zap.Error(err),
		)
		r.metrics.IncrementResolution("invalid_rule")
		return "", false, nil
	}

	g := NormalizeGender(gender)
	label, ok := Match(bins, Age(*birthDate, r.now()), g)
	if !ok {
		r.metrics.IncrementResolution("no_match")
		return "", false, nil
	}
	r.metrics.IncrementResolution("resolved")
	return FoldGender(label, g), true, nil
}

// assignedRule reads the ticket's assignment from storage on every call so a
// reassignment takes effect immediately.
func (r *Resolver) assignedRule(ctx context.Context, ticketID int64) (*model.AgeCategoryRule, error) {
	assignment, err := r.rules.FindAssignment(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	ruleID := assignment.RuleID

	if r.cache != nil {
		rule, ok, err := r.cache.Get(ctx, ruleID)
		switch {
		case err != nil:
			r.metrics.IncrementCacheLookup("error")
			r.log.Warn("age rule cache read failed", zap.Int64("rule_id", ruleID), zap.Error(err))
		case ok:
			r.metrics.IncrementCacheLookup("hit")
			return rule, nil
		default:
			r.metrics.IncrementCacheLookup("miss")
		}
	}

	rule, err := r.rules.FindRule(ctx, ruleID)
	if err != nil {
		return nil, fmt.Errorf("find rule %d: %w", ruleID, err)
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, ruleID, rule); err != nil {
			r.log.Warn("age rule cache write failed", zap.Int64("rule_id", ruleID), zap.Error(err))
		}
	}
	return rule, nil
}
