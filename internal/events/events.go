// Package events records order domain events in the transactional outbox and
// relays them to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/Shivanand-hulikatti/attendee-registration/internal/model"
)

const (
	AggregateOrder = "order"

	// EventOrderStatusChanged drives confirmation emails downstream.
	EventOrderStatusChanged = "order.status_changed"
	// EventOrderCreated drives outgoing webhooks downstream.
	EventOrderCreated = "ORDER_CREATED"
)

// Outbox appends entries for the relay to pick up.
type Outbox interface {
	Append(ctx context.Context, e *model.OutboxEntry) error
}

// statusChangedPayload is the JSON body of an order.status_changed entry.
type statusChangedPayload struct {
	OrderID       int64  `json:"order_id"`
	ShortID       string `json:"short_id"`
	PublicID      string `json:"public_id"`
	EventID       int64  `json:"event_id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	Email         string `json:"email"`
	Locale        string `json:"locale"`
	SendEmails    bool   `json:"send_emails"`
}

// Notifier announces order status changes.
type Notifier struct {
	outbox Outbox
}

// NewNotifier constructs a Notifier.
func NewNotifier(outbox Outbox) *Notifier {
	return &Notifier{outbox: outbox}
}

// OrderStatusChanged records that the order reached its current status.
// sendEmails tells the mail consumer whether to send a confirmation.
func (n *Notifier) OrderStatusChanged(ctx context.Context, order *model.Order, sendEmails bool) error {
	payload, err := json.Marshal(statusChangedPayload{
		OrderID:       order.ID,
		ShortID:       order.ShortID,
		PublicID:      order.PublicID,
		EventID:       order.EventID,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		Email:         order.Email,
		Locale:        order.Locale,
		SendEmails:    sendEmails,
	})
	if err != nil {
		return fmt.Errorf("encode status change: %w", err)
	}
	return record(ctx, n.outbox, order.ID, EventOrderStatusChanged, payload)
}

// DomainEvent is an order lifecycle event for webhook delivery.
type DomainEvent struct {
	Type    string
	OrderID int64
}

type domainEventPayload struct {
	EventType  string    `json:"event_type"`
	OrderID    int64     `json:"order_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Dispatcher queues domain events for webhook delivery.
type Dispatcher struct {
	outbox Outbox
	now    func() time.Time
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(outbox Outbox) *Dispatcher {
	return &Dispatcher{outbox: outbox, now: time.Now}
}

// Dispatch records the event.
func (d *Dispatcher) Dispatch(ctx context.Context, ev DomainEvent) error {
	payload, err := json.Marshal(domainEventPayload{
		EventType:  ev.Type,
		OrderID:    ev.OrderID,
		OccurredAt: d.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode domain event: %w", err)
	}
	return record(ctx, d.outbox, ev.OrderID, ev.Type, payload)
}

func record(ctx context.Context, outbox Outbox, orderID int64, eventType string, payload []byte) error {
	err := outbox.Append(ctx, &model.OutboxEntry{
		AggregateType: AggregateOrder,
		AggregateID:   strconv.FormatInt(orderID, 10),
		EventType:     eventType,
		Payload:       payload,
	})
	if err != nil {
		return fmt.Errorf("append %s: %w", eventType, err)
	}
	return nil
}
