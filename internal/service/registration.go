package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/attendee-registration/internal/agecategory"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/events"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/ids"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/inventory"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/metrics"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/model"
)

// RegistrationDeps groups the collaborators of RegistrationService.
type RegistrationDeps struct {
	Tx         Transactor
	Events     EventStore
	Users      UserStore
	Products   ProductStore
	Orders     OrderStore
	Attendees  AttendeeStore
	Taxes      TaxCalculator
	Inventory  Inventory
	Categories CategoryResolver
	Notifier   Notifier
	Dispatcher Dispatcher
	Log        *zap.Logger
	Metrics    *metrics.Metrics
}

// RegistrationService registers attendees against ticket inventory.
type RegistrationService struct {
	RegistrationDeps
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(deps RegistrationDeps) *RegistrationService {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return &RegistrationService{RegistrationDeps: deps}
}

// postCommitHook runs once the registration transaction has committed.
type postCommitHook struct {
	name string
	run  func(ctx context.Context) error
}

// Register creates the order, its single item and the attendee in one
// transaction, reserving one unit of the ticket's price. Any failure leaves
// no trace in storage. Notifications are queued only after commit and their
// failures never fail the registration.
func (s *RegistrationService) Register(ctx context.Context, eventID int64, req model.RegisterAttendeeRequest) (attendee *model.Attendee, err error) {
	ctx, span := tracer.Start(ctx, "RegistrationService.Register", trace.WithAttributes(
		attribute.Int64("event.id", eventID),
		attribute.Int64("product.id", req.ProductID),
	))
	start := time.Now()
	defer func() {
		s.Metrics.ObserveRegistrationLatency(time.Since(start))
		s.Metrics.IncrementRegistration(outcome(err))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	req.Normalize()
	if req.UserID != nil {
		user, err := s.Users.FindByID(ctx, *req.UserID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return nil, model.ErrUserNotFound
			}
			return nil, fmt.Errorf("load user: %w", err)
		}
		req.Prefill(*user)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	birthDate, err := req.ParsedBirthDate()
	if err != nil {
		return nil, validation.Errors{"birth_date": err}
	}

	var (
		order *model.Order
		hooks []postCommitHook
	)
	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		rollup, err := s.Taxes.Calculate(ctx, req.TaxesAndFees)
		if err != nil {
			return err
		}

		order, err = s.createOrder(ctx, eventID, req)
		if err != nil {
			return err
		}

		product, err := s.Products.FindTicket(ctx, eventID, req.ProductID)
		if errors.Is(err, model.ErrNotFound) {
			return fmt.Errorf("ticket %d is invalid: %w", req.ProductID, model.ErrNoTicketsAvailable)
		}
		if err != nil {
			return err
		}
		priceID, err := inventory.ResolvePrice(*product, req.ProductPriceID)
		if err != nil {
			return err
		}

		remaining, err := s.Inventory.QuantityRemaining(ctx, product.ID, priceID)
		if err != nil {
			return err
		}
		if remaining <= 0 {
			return fmt.Errorf("price %d is sold out: %w", priceID, model.ErrNoTicketsAvailable)
		}

		item := &model.OrderItem{
			OrderID:              order.ID,
			ProductID:            product.ID,
			ProductPriceID:       priceID,
			ItemName:             product.Title,
			Quantity:             1,
			Price:                req.AmountPaid,
			TotalBeforeAdditions: req.AmountPaid,
			TotalTax:             rollup.TotalTaxes,
			TotalServiceFee:      rollup.TotalFees,
			TotalGross:           req.AmountPaid.Add(rollup.Total()),
			TaxesAndFeesRollup:   rollup.Snapshot,
		}
		if err := s.Orders.AddItem(ctx, item); err != nil {
			return err
		}

		category, err := s.ageCategory(ctx, product.ID, birthDate, req)
		if err != nil {
			return err
		}

		attendee = &model.Attendee{
			ShortID:        ids.ShortID(ids.AttendeePrefix),
			PublicID:       ids.PublicID(ids.AttendeePrefix),
			EventID:        order.EventID,
			ProductID:      product.ID,
			ProductPriceID: priceID,
			OrderID:        order.ID,
			UserID:         req.UserID,
			Status:         model.AttendeeStatusActive,
			Email:          req.Email,
			FirstName:      req.FirstName,
			LastName:       req.LastName,
			ClubName:       req.ClubName,
			BirthDate:      birthDate,
			AgeCategory:    category,
			Locale:         req.Locale,
		}
		if err := s.Attendees.Create(ctx, attendee); err != nil {
			return err
		}

		items, err := s.Orders.Items(ctx, order.ID)
		if err != nil {
			return err
		}
		applyTotals(order, items)
		if err := s.Orders.UpdateTotals(ctx, order); err != nil {
			return err
		}

		if err := s.Inventory.Reserve(ctx, priceID); err != nil {
			return err
		}

		sendEmails := req.SendConfirmationEmail != nil && *req.SendConfirmationEmail
		committed := *order
		hooks = append(hooks,
			postCommitHook{name: "order_status_changed", run: func(ctx context.Context) error {
				return s.Notifier.OrderStatusChanged(ctx, &committed, sendEmails)
			}},
			postCommitHook{name: "order_created", run: func(ctx context.Context) error {
				return s.Dispatcher.Dispatch(ctx, events.DomainEvent{Type: events.EventOrderCreated, OrderID: committed.ID})
			}},
		)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("register attendee: %w", err)
	}

	s.runPostCommit(ctx, hooks)
	span.SetAttributes(attribute.Int64("order.id", order.ID), attribute.Int64("attendee.id", attendee.ID))
	return attendee, nil
}

func (s *RegistrationService) createOrder(ctx context.Context, eventID int64, req model.RegisterAttendeeRequest) (*model.Order, error) {
	event, err := s.Events.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	paymentStatus := model.PaymentStatusPaymentReceived
	if req.AmountPaid.IsZero() {
		paymentStatus = model.PaymentStatusNoPaymentRequired
	}
	order := &model.Order{
		ShortID:              ids.ShortID(ids.OrderPrefix),
		PublicID:             ids.PublicID(ids.OrderPrefix),
		EventID:              event.ID,
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		ClubName:             req.ClubName,
		Email:                req.Email,
		Currency:             event.Currency,
		Status:               model.OrderStatusCompleted,
		PaymentStatus:        paymentStatus,
		Locale:               req.Locale,
		IsManuallyCreated:    true,
		TotalBeforeAdditions: decimal.Zero,
		TotalTax:             decimal.Zero,
		TotalFee:             decimal.Zero,
		TotalGross:           req.AmountPaid,
	}
	if err := s.Orders.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// ageCategory prefers the rule's category over the client's and folds the
// gender into whichever is kept.
func (s *RegistrationService) ageCategory(ctx context.Context, ticketID int64, birthDate *time.Time, req model.RegisterAttendeeRequest) (*string, error) {
	category, ok, err := s.Categories.Resolve(ctx, ticketID, birthDate, req.Gender)
	if err != nil {
		return nil, err
	}
	if !ok {
		category = req.AgeCategory
	}
	category = agecategory.FoldGender(category, req.Gender)
	if category == "" {
		return nil, nil
	}
	return &category, nil
}

// applyTotals sets the order's totals to the sums over its items.
func applyTotals(order *model.Order, items []model.OrderItem) {
	order.TotalBeforeAdditions = decimal.Zero
	order.TotalTax = decimal.Zero
	order.TotalFee = decimal.Zero
	order.TotalGross = decimal.Zero
	for _, it := range items {
		order.TotalBeforeAdditions = order.TotalBeforeAdditions.Add(it.TotalBeforeAdditions)
		order.TotalTax = order.TotalTax.Add(it.TotalTax)
		order.TotalFee = order.TotalFee.Add(it.TotalServiceFee)
		order.TotalGross = order.TotalGross.Add(it.TotalGross)
	}
}

func (s *RegistrationService) runPostCommit(ctx context.Context, hooks []postCommitHook) {
	ctx = context.WithoutCancel(ctx)
	for _, h := range hooks {
		if err := h.run(ctx); err != nil {
			s.Metrics.IncrementPostCommitFailure(h.name)
			s.Log.Error("post-commit hook failed",
				zap.String("hook", h.name),
				zap.Error(err),
			)
		}
	}
}

// ListPublicAttendees returns the public view of an event's attendees.
func (s *RegistrationService) ListPublicAttendees(ctx context.Context, eventID int64) ([]model.PublicAttendee, error) {
	if _, err := s.Events.FindByID(ctx, eventID); err != nil {
		return nil, err
	}
	attendees, err := s.Attendees.ListPublic(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list public attendees: %w", err)
	}
	return attendees, nil
}

func outcome(err error) string {
	var verr validation.Errors
	switch {
	case err == nil:
		return "created"
	case errors.Is(err, model.ErrNoTicketsAvailable):
		return "no_tickets"
	case errors.Is(err, model.ErrInvalidProductPriceID):
		return "invalid_price"
	case errors.As(err, &verr), errors.Is(err, model.ErrTaxOrFeeNotFound):
		return "invalid"
	default:
		return "error"
	}
}
