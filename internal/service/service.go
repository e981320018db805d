// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

//go:generate mockgen -destination=mocks/mock_ports.go -package=mocks github.com/Shivanand-hulikatti/attendee-registration/internal/service Notifier,Dispatcher

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/Shivanand-hulikatti/attendee-registration/internal/events"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/model"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/pricing"
)

var tracer = otel.Tracer("github.com/Shivanand-hulikatti/attendee-registration/internal/service")

// Transactor runs fn in one database transaction carried by its context.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventStore reads events.
type EventStore interface {
	FindByID(ctx context.Context, id int64) (*model.Event, error)
}

// UserStore reads user profiles.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

// ProductStore reads products.
type ProductStore interface {
	FindTicket(ctx context.Context, eventID, productID int64) (*model.Product, error)
	ExistsForEvent(ctx context.Context, eventID, productID int64) (bool, error)
}

// OrderStore persists orders and their items.
type OrderStore interface {
	Create(ctx context.Context, o *model.Order) error
	AddItem(ctx context.Context, item *model.OrderItem) error
	Items(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	UpdateTotals(ctx context.Context, o *model.Order) error
}

// AttendeeStore persists attendees.
type AttendeeStore interface {
	Create(ctx context.Context, a *model.Attendee) error
	ListPublic(ctx context.Context, eventID int64) ([]model.PublicAttendee, error)
}

// TaxCalculator rolls requested taxes and fees up.
type TaxCalculator interface {
	Calculate(ctx context.Context, reqs []model.TaxAndFeeRequest) (pricing.Rollup, error)
}

// Inventory checks and reserves ticket quantity.
type Inventory interface {
	QuantityRemaining(ctx context.Context, productID, priceID int64) (int, error)
	Reserve(ctx context.Context, priceID int64) error
}

// CategoryResolver resolves an attendee's age category from the ticket's rule.
type CategoryResolver interface {
	Resolve(ctx context.Context, ticketID int64, birthDate *time.Time, gender string) (string, bool, error)
}

// Notifier announces order status changes.
type Notifier interface {
	OrderStatusChanged(ctx context.Context, order *model.Order, sendEmails bool) error
}

// Dispatcher queues domain events for webhook delivery.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev events.DomainEvent) error
}

// RuleStore persists age category rules and ticket assignments.
type RuleStore interface {
	GetOrCreate(ctx context.Context, req model.AssignRuleRequest) (int64, error)
	Assign(ctx context.Context, ticketID, ruleID int64, at time.Time) (*model.Assignment, error)
	FindRule(ctx context.Context, id int64) (*model.AgeCategoryRule, error)
	FindAssignment(ctx context.Context, ticketID int64) (*model.Assignment, error)
}
