package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/attendee-registration/internal/model"
)

// RuleService manages the age category rules assigned to tickets.
type RuleService struct {
	tx       Transactor
	rules    RuleStore
	products ProductStore
	log      *zap.Logger
	now      func() time.Time
}

// NewRuleService constructs a RuleService.
func NewRuleService(tx Transactor, rules RuleStore, products ProductStore, log *zap.Logger) *RuleService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RuleService{tx: tx, rules: rules, products: products, log: log, now: time.Now}
}

// AssignTicketRule finds or creates the described rule and points the
// ticket at it, replacing any previous assignment.
func (s *RuleService) AssignTicketRule(ctx context.Context, eventID, ticketID int64, req model.AssignRuleRequest) (result *model.AssignmentResult, err error) {
	ctx, span := tracer.Start(ctx, "RuleService.AssignTicketRule", trace.WithAttributes(
		attribute.Int64("event.id", eventID),
		attribute.Int64("ticket.id", ticketID),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureTicket(ctx, eventID, ticketID); err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ruleID, err := s.rules.GetOrCreate(ctx, req)
		if err != nil {
			return err
		}
		assignment, err := s.rules.Assign(ctx, ticketID, ruleID, s.now().UTC())
		if err != nil {
			return err
		}
		rule, err := s.rules.FindRule(ctx, ruleID)
		if err != nil {
			return fmt.Errorf("read back rule %d: %w", ruleID, err)
		}
		result = &model.AssignmentResult{
			TicketID:   assignment.TicketID,
			RuleID:     assignment.RuleID,
			AssignedAt: assignment.AssignedAt,
			Rule:       rule,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("assign ticket rule: %w", err)
	}
	s.log.Info("age rule assigned",
		zap.Int64("ticket_id", ticketID),
		zap.Int64("rule_id", result.RuleID),
	)
	return result, nil
}

// GetTicketRule returns the ticket's current assignment with its rule.
func (s *RuleService) GetTicketRule(ctx context.Context, eventID, ticketID int64) (*model.AssignmentResult, error) {
	if err := s.ensureTicket(ctx, eventID, ticketID); err != nil {
		return nil, err
	}
	assignment, err := s.rules.FindAssignment(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	rule, err := s.rules.FindRule(ctx, assignment.RuleID)
	if err != nil {
		return nil, fmt.Errorf("get rule %d: %w", assignment.RuleID, err)
	}
	return &model.AssignmentResult{
		TicketID:   assignment.TicketID,
		RuleID:     assignment.RuleID,
		AssignedAt: assignment.AssignedAt,
		Rule:       rule,
	}, nil
}

func (s *RuleService) ensureTicket(ctx context.Context, eventID, ticketID int64) error {
	ok, err := s.products.ExistsForEvent(ctx, eventID, ticketID)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrTicketNotFound
	}
	return nil
}

