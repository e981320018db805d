package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/attendee-registration/internal/metrics"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/model"
)

// OutboxStore reads and acknowledges outbox entries.
type OutboxStore interface {
	FetchUnpublished(ctx context.Context, limit int) ([]model.OutboxEntry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// Transactor runs fn in one database transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Publisher hands entries to the broker. It returns only once every entry
// is acknowledged.
type Publisher interface {
	Publish(ctx context.Context, entries []model.OutboxEntry) error
}

// Relay moves outbox entries to the broker. Fetch, publish and acknowledge
// share one transaction, so a failed publish leaves the batch for the next
// poll. Delivery is at least once.
type Relay struct {
	store     OutboxStore
	tx        Transactor
	publisher Publisher
	interval  time.Duration
	batch     int
	log       *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// RelayConfig tunes polling.
type RelayConfig struct {
	Interval  time.Duration
	BatchSize int
}

// NewRelay constructs a Relay.
func NewRelay(store OutboxStore, tx Transactor, publisher Publisher, cfg RelayConfig, log *zap.Logger, m *metrics.Metrics) *Relay {
	if cfg.Interval <= 0 {
		cfg.Interval = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &Relay{
		store:     store,
		tx:        tx,
		publisher: publisher,
		interval:  cfg.Interval,
		batch:     cfg.BatchSize,
		log:       log,
		metrics:   m,
		now:       time.Now,
	}
}

// Run polls until ctx is cancelled. A full batch triggers an immediate
// follow-up poll.
func (r *Relay) Run(ctx context.Context) error {
	r.log.Info("outbox relay started", zap.Duration("interval", r.interval), zap.Int("batch_size", r.batch))
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		n, err := r.RelayOnce(ctx)
		switch {
		case errors.Is(err, context.Canceled) && ctx.Err() != nil:
			return nil
		case err != nil:
			r.log.Error("outbox relay failed", zap.Error(err))
		case n == r.batch:
			continue
		}

		select {
		case <-ctx.Done():
			r.log.Info("outbox relay stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// RelayOnce publishes one batch and returns how many entries it relayed.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	var relayed int
	err := r.tx.WithinTx(ctx, func(ctx context.Context) error {
		entries, err := r.store.FetchUnpublished(ctx, r.batch)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		if err := r.publisher.Publish(ctx, entries); err != nil {
			r.metrics.AddOutboxPublished("error", len(entries))
			return fmt.Errorf("publish outbox batch: %w", err)
		}

		ids := make([]uuid.UUID, len(entries))
		for i, e := range entries {
			ids[i] = e.ID
		}
		if err := r.store.MarkPublished(ctx, ids, r.now().UTC()); err != nil {
			return err
		}
		relayed = len(entries)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if relayed > 0 {
		r.metrics.AddOutboxPublished("ok", relayed)
		r.log.Debug("outbox batch relayed", zap.Int("count", relayed))
	}
	return relayed, nil
}
