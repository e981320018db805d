package agecategory

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"github.com/Shivanand-hulikatti/attendee-registration/internal/metrics"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/model"
)

type stubLookup struct {
	assignments map[int64]int64
	rules       map[int64]*model.AgeCategoryRule
	err         error

	assignmentReads int
	ruleReads       int

	// afterRuleRead runs once, after the next rule read returns.
	afterRuleRead func()
}

func (s *stubLookup) assign(ticketID int64, rule *model.AgeCategoryRule) {
	s.assignments[ticketID] = rule.ID
	s.rules[rule.ID] = rule
}

func (s *stubLookup) FindAssignment(_ context.Context, ticketID int64) (*model.Assignment, error) {
	s.assignmentReads++
	if s.err != nil {
		return nil, s.err
	}
	ruleID, ok := s.assignments[ticketID]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &model.Assignment{TicketID: ticketID, RuleID: ruleID}, nil
}

func (s *stubLookup) FindRule(_ context.Context, id int64) (*model.AgeCategoryRule, error) {
	s.ruleReads++
	rule, ok := s.rules[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	if hook := s.afterRuleRead; hook != nil {
		s.afterRuleRead = nil
		hook()
	}
	return rule, nil
}

type memoryCache struct {
	rules  map[int64]*model.AgeCategoryRule
	getErr error
}

func (c *memoryCache) Get(_ context.Context, ruleID int64) (*model.AgeCategoryRule, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	rule, ok := c.rules[ruleID]
	return rule, ok, nil
}

func (c *memoryCache) Set(_ context.Context, ruleID int64, rule *model.AgeCategoryRule) error {
	c.rules[ruleID] = rule
	return nil
}

type ResolverSuite struct {
	suite.Suite
	lookup  *stubLookup
	metrics *metrics.Metrics
	now     time.Time
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

const youthBins = `{"bins":[{"min":0,"max":17,"age_category":"U18"},{"min":18,"max":23,"age_category":"U23"}]}`

func (s *ResolverSuite) SetupTest() {
	s.now = date(2026, 10, 17)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.lookup = &stubLookup{
		assignments: map[int64]int64{},
		rules:       map[int64]*model.AgeCategoryRule{},
	}
	s.lookup.assign(1, &model.AgeCategoryRule{ID: 10, Name: "youth", CalcMode: model.CalcModeByAge, Rule: json.RawMessage(youthBins), Version: 1, IsActive: true})
}

func (s *ResolverSuite) resolver(opts ...Option) *Resolver {
	opts = append([]Option{WithClock(func() time.Time { return s.now }), WithMetrics(s.metrics)}, opts...)
	return NewResolver(s.lookup, opts...)
}

func (s *ResolverSuite) resolutions(result string) float64 {
	return testutil.ToFloat64(s.metrics.AgeCategoryResolutions.WithLabelValues(result))
}

func (s *ResolverSuite) TestResolve() {
	ctx := context.Background()
	sixteen := date(2010, 1, 5)

	s.Run("age 16 without gender resolves to U18", func() {
		got, ok, err := s.resolver().Resolve(ctx, 1, &sixteen, "")
		s.Require().NoError(err)
		s.True(ok)
		s.Equal("U18", got)
	})

	s.Run("age 16 with gender F resolves to FU18", func() {
		got, ok, err := s.resolver().Resolve(ctx, 1, &sixteen, "F")
		s.Require().NoError(err)
		s.True(ok)
		s.Equal("FU18", got)
	})

	s.Run("lowercase gender is normalized", func() {
		got, ok, err := s.resolver().Resolve(ctx, 1, &sixteen, "m")
		s.Require().NoError(err)
		s.True(ok)
		s.Equal("MU18", got)
	})

	s.Run("label already carrying gender is kept", func() {
		s.lookup.assign(2, &model.AgeCategoryRule{
			ID: 11, CalcMode: model.CalcModeByAge, IsActive: true,
			Rule: json.RawMessage(`{"bins":[{"min":0,"max":17,"age_category":"MU18"}]}`),
		})
		got, ok, err := s.resolver().Resolve(ctx, 2, &sixteen, "F")
		s.Require().NoError(err)
		s.True(ok)
		s.Equal("MU18", got)
	})

	s.Run("no age match", func() {
		old := date(1960, 1, 1)
		_, ok, err := s.resolver().Resolve(ctx, 1, &old, "")
		s.Require().NoError(err)
		s.False(ok)
		s.Equal(1.0, s.resolutions("no_match"))
	})
}

func (s *ResolverSuite) TestUnresolvable() {
	ctx := context.Background()
	birth := date(2010, 1, 5)

	s.Run("no birth date", func() {
		_, ok, err := s.resolver().Resolve(ctx, 1, nil, "F")
		s.Require().NoError(err)
		s.False(ok)
		s.Equal(0, s.lookup.assignmentReads)
		s.Equal(1.0, s.resolutions("no_birth_date"))
	})

	s.Run("no assignment", func() {
		_, ok, err := s.resolver().Resolve(ctx, 99, &birth, "")
		s.Require().NoError(err)
		s.False(ok)
		s.Equal(1.0, s.resolutions("unassigned"))
	})

	s.Run("inactive rule", func() {
		s.lookup.assign(3, &model.AgeCategoryRule{ID: 12, CalcMode: model.CalcModeByAge, Rule: json.RawMessage(youthBins)})
		_, ok, err := s.resolver().Resolve(ctx, 3, &birth, "")
		s.Require().NoError(err)
		s.False(ok)
		s.Equal(1.0, s.resolutions("inactive"))
	})

	s.Run("unsupported calc mode", func() {
		s.lookup.assign(4, &model.AgeCategoryRule{ID: 13, CalcMode: "BY_YEAR", IsActive: true, Rule: json.RawMessage(youthBins)})
		_, ok, err := s.resolver().Resolve(ctx, 4, &birth, "")
		s.Require().NoError(err)
		s.False(ok)
		s.Equal(1.0, s.resolutions("unsupported_mode"))
	})

	s.Run("bins not an array", func() {
		s.lookup.assign(5, &model.AgeCategoryRule{ID: 14, CalcMode: model.CalcModeByAge, IsActive: true, Rule: json.RawMessage(`{"bins":"U18"}`)})
		_, ok, err := s.resolver().Resolve(ctx, 5, &birth, "")
		s.Require().NoError(err)
		s.False(ok)
		s.Equal(1.0, s.resolutions("invalid_rule"))
	})

	s.Run("storage error propagates", func() {
		s.lookup.err = errors.New("connection reset")
		_, ok, err := s.resolver().Resolve(ctx, 1, &birth, "")
		s.Error(err)
		s.False(ok)
		s.lookup.err = nil
	})
}

func (s *ResolverSuite) TestCache() {
	ctx := context.Background()
	birth := date(2010, 1, 5)

	s.Run("miss populates cache then hit skips rule read", func() {
		cache := &memoryCache{rules: map[int64]*model.AgeCategoryRule{}}
		r := s.resolver(WithCache(cache))

		got, ok, err := r.Resolve(ctx, 1, &birth, "")
		s.Require().NoError(err)
		s.True(ok)
		s.Equal("U18", got)
		s.Equal(1, s.lookup.ruleReads)
		s.Contains(cache.rules, int64(10))

		got, ok, err = r.Resolve(ctx, 1, &birth, "")
		s.Require().NoError(err)
		s.True(ok)
		s.Equal("U18", got)
		s.Equal(1, s.lookup.ruleReads)
		s.Equal(2, s.lookup.assignmentReads)
	})

	s.Run("cache failure falls back to storage", func() {
		cache := &memoryCache{rules: map[int64]*model.AgeCategoryRule{}, getErr: errors.New("redis down")}
		got, ok, err := s.resolver(WithCache(cache)).Resolve(ctx, 1, &birth, "F")
		s.Require().NoError(err)
		s.True(ok)
		s.Equal("FU18", got)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.RuleCacheLookups.WithLabelValues("error")))
	})

	s.Run("reassignment during a read is seen by the next resolve", func() {
		cache := &memoryCache{rules: map[int64]*model.AgeCategoryRule{}}
		r := s.resolver(WithCache(cache))
		s.lookup.assign(6, &model.AgeCategoryRule{ID: 20, CalcMode: model.CalcModeByAge, IsActive: true,
			Rule: json.RawMessage(`{"bins":[{"min":0,"max":99,"age_category":"OLD"}]}`)})
		s.lookup.afterRuleRead = func() {
			s.lookup.assign(6, &model.AgeCategoryRule{ID: 21, CalcMode: model.CalcModeByAge, IsActive: true,
				Rule: json.RawMessage(`{"bins":[{"min":0,"max":99,"age_category":"NEW"}]}`)})
			delete(cache.rules, 20)
		}

		first, ok, err := r.Resolve(ctx, 6, &birth, "")
		s.Require().NoError(err)
		s.True(ok)
		s.Equal("OLD", first)

		second, ok, err := r.Resolve(ctx, 6, &birth, "")
		s.Require().NoError(err)
		s.True(ok)
		s.Equal("NEW", second)
	})
}
