package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/attendee-registration/internal/metrics"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/model"
)

type memoryStore struct {
	mu        sync.Mutex
	entries   []model.OutboxEntry
	published map[uuid.UUID]time.Time
}

func (s *memoryStore) FetchUnpublished(_ context.Context, limit int) ([]model.OutboxEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.OutboxEntry
	for _, e := range s.entries {
		if _, done := s.published[e.ID]; done {
			continue
		}
		out = append(out, e)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *memoryStore) MarkPublished(_ context.Context, ids []uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.published[id] = at
	}
	return nil
}

type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordingPublisher struct {
	mu      sync.Mutex
	batches [][]model.OutboxEntry
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, entries []model.OutboxEntry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.batches = append(p.batches, entries)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, b := range p.batches {
		n += len(b)
	}
	return n
}

type RelaySuite struct {
	suite.Suite
	store     *memoryStore
	publisher *recordingPublisher
	metrics   *metrics.Metrics
	relay     *Relay
}

func TestRelaySuite(t *testing.T) {
	suite.Run(t, new(RelaySuite))
}

func (s *RelaySuite) SetupTest() {
	s.store = &memoryStore{published: map[uuid.UUID]time.Time{}}
	for i := 0; i < 5; i++ {
		s.store.entries = append(s.store.entries, model.OutboxEntry{
			ID: uuid.New(), AggregateType: AggregateOrder, AggregateID: "1",
			EventType: EventOrderCreated, Payload: []byte(`{}`),
		})
	}
	s.publisher = &recordingPublisher{}
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.relay = NewRelay(s.store, passthroughTx{}, s.publisher,
		RelayConfig{Interval: 10 * time.Millisecond, BatchSize: 2}, zap.NewNop(), s.metrics)
}

func (s *RelaySuite) TestRelayOnceHonoursBatchSize() {
	n, err := s.relay.RelayOnce(context.Background())
	s.Require().NoError(err)
	s.Equal(2, n)
	s.Len(s.store.published, 2)
	s.Equal(2.0, testutil.ToFloat64(s.metrics.OutboxPublished.WithLabelValues("ok")))
}

func (s *RelaySuite) TestPublishFailureLeavesEntries() {
	s.publisher.err = errors.New("broker unavailable")

	n, err := s.relay.RelayOnce(context.Background())
	s.Error(err)
	s.Zero(n)
	s.Empty(s.store.published)
	s.Equal(2.0, testutil.ToFloat64(s.metrics.OutboxPublished.WithLabelValues("error")))
}

func (s *RelaySuite) TestRunDrainsAndStops() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.relay.Run(ctx) }()

	s.Eventually(func() bool { return s.publisher.count() == 5 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(time.Second):
		s.Fail("relay did not stop")
	}
}
