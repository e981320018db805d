package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/Shivanand-hulikatti/attendee-registration/internal/model"
)

// Record header names.
const (
	HeaderEventType = "event_type"
	HeaderOutboxID  = "outbox_id"
)

// KafkaPublisher produces outbox entries to a single topic. Entries of the
// same aggregate share a key and therefore a partition, which keeps them in
// order.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
}

// NewKafkaPublisher constructs a KafkaPublisher.
func NewKafkaPublisher(client *kgo.Client, topic string) *KafkaPublisher {
	return &KafkaPublisher{client: client, topic: topic}
}

// NewKafkaClient builds a producer client for the given brokers.
func NewKafkaClient(brokers []string) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(0),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return client, nil
}

// Publish produces every entry and waits for all acknowledgements.
func (p *KafkaPublisher) Publish(ctx context.Context, entries []model.OutboxEntry) error {
	records := make([]*kgo.Record, len(entries))
	for i, e := range entries {
		records[i] = toRecord(p.topic, e)
	}
	if err := p.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", p.topic, err)
	}
	return nil
}

func toRecord(topic string, e model.OutboxEntry) *kgo.Record {
	return &kgo.Record{
		Topic: topic,
		Key:   []byte(e.AggregateType + ":" + e.AggregateID),
		Value: e.Payload,
		Headers: []kgo.RecordHeader{
			{Key: HeaderEventType, Value: []byte(e.EventType)},
			{Key: HeaderOutboxID, Value: []byte(e.ID.String())},
		},
		Timestamp: e.CreatedAt,
	}
}

// EnsureTopic creates the topic when it does not exist yet.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string, partitions int32, replicationFactor int16) error {
	resp, err := kadm.NewClient(client).CreateTopic(ctx, partitions, replicationFactor, nil, topic)
	if err == nil {
		err = resp.Err
	}
	if err != nil && !errors.Is(err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	return nil
}
