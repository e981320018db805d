package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/attendee-registration/internal/database"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/model"
)

const ruleColumns = `id, name, calc_mode, rule, version, is_active, created_at, updated_at`

// RuleRepository handles age category rules and their ticket assignments.
type RuleRepository struct {
	db *pgxpool.Pool
	tx *database.Transactor
}

// NewRuleRepository constructs a RuleRepository.
func NewRuleRepository(db *pgxpool.Pool) *RuleRepository {
	return &RuleRepository{db: db, tx: database.NewTransactor(db)}
}

// ruleHash fingerprints the serialized document. Together with name,
// calc_mode and version it identifies a rule row.
func ruleHash(doc []byte) string {
	sum := sha256.Sum256(doc)
	return hex.EncodeToString(sum[:])
}

func ruleVersion(req model.AssignRuleRequest) int {
	if req.Version == nil {
		return 1
	}
	return *req.Version
}

// GetOrCreate returns the id of the rule with the same name, calc_mode,
// version and document, inserting it when absent. Existing rows are never
// modified.
//
// Two callers racing on the same content both miss the first read; the
// unique index lets one insert win and the other fails with a unique
// violation, after which it re-reads the winner's row. The insert runs under
// a savepoint so the violation does not abort the caller's transaction.
func (r *RuleRepository) GetOrCreate(ctx context.Context, req model.AssignRuleRequest) (int64, error) {
	doc, err := json.Marshal(req.Rule)
	if err != nil {
		return 0, fmt.Errorf("encode rule document: %w", err)
	}
	hash := ruleHash(doc)

	id, err := r.findID(ctx, req, hash)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return 0, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	err = r.tx.WithinTx(ctx, func(ctx context.Context) error {
		return database.Executor(ctx, r.db).QueryRow(ctx,
			`INSERT INTO age_category_rules (name, calc_mode, rule, rule_hash, version, is_active)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id`,
			req.Name, req.CalcMode, json.RawMessage(doc), hash, ruleVersion(req), isActive,
		).Scan(&id)
	})
	if isUniqueViolation(err) {
		return r.findID(ctx, req, hash)
	}
	if err != nil {
		return 0, fmt.Errorf("insert age rule: %w", err)
	}
	return id, nil
}

func (r *RuleRepository) findID(ctx context.Context, req model.AssignRuleRequest, hash string) (int64, error) {
	var id int64
	err := database.Executor(ctx, r.db).QueryRow(ctx,
		`SELECT id FROM age_category_rules
		 WHERE name = $1 AND calc_mode = $2 AND version = $3 AND rule_hash = $4`,
		req.Name, req.CalcMode, ruleVersion(req), hash,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, model.ErrNotFound
		}
		return 0, fmt.Errorf("find age rule: %w", err)
	}
	return id, nil
}

// Assign points the ticket at the rule, replacing any earlier assignment.
func (r *RuleRepository) Assign(ctx context.Context, ticketID, ruleID int64, at time.Time) (*model.Assignment, error) {
	var a model.Assignment
	err := database.Executor(ctx, r.db).QueryRow(ctx,
		`INSERT INTO ticket_age_rule_assignment (ticket_id, rule_id, assigned_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (ticket_id) DO UPDATE
		 SET rule_id = EXCLUDED.rule_id, assigned_at = EXCLUDED.assigned_at
		 RETURNING ticket_id, rule_id, assigned_at`,
		ticketID, ruleID, at,
	).Scan(&a.TicketID, &a.RuleID, &a.AssignedAt)
	if err != nil {
		return nil, fmt.Errorf("assign age rule: %w", err)
	}
	return &a, nil
}

// FindRule returns a rule by id or model.ErrNotFound.
func (r *RuleRepository) FindRule(ctx context.Context, id int64) (*model.AgeCategoryRule, error) {
	row := database.Executor(ctx, r.db).QueryRow(ctx,
		`SELECT `+ruleColumns+` FROM age_category_rules WHERE id = $1`,
		id,
	)
	return scanRule(row)
}

// FindAssignment returns the ticket's assignment or model.ErrNotFound.
func (r *RuleRepository) FindAssignment(ctx context.Context, ticketID int64) (*model.Assignment, error) {
	var a model.Assignment
	err := database.Executor(ctx, r.db).QueryRow(ctx,
		`SELECT ticket_id, rule_id, assigned_at
		 FROM ticket_age_rule_assignment WHERE ticket_id = $1`,
		ticketID,
	).Scan(&a.TicketID, &a.RuleID, &a.AssignedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return &a, nil
}

func scanRule(row pgx.Row) (*model.AgeCategoryRule, error) {
	var (
		rule model.AgeCategoryRule
		doc  []byte
	)
	err := row.Scan(&rule.ID, &rule.Name, &rule.CalcMode, &doc, &rule.Version, &rule.IsActive, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("scan age rule: %w", err)
	}
	rule.Rule = json.RawMessage(doc)
	return &rule, nil
}
