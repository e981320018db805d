// Package repository implements all database queries for attendee registration.
// It uses pgx directly (no ORM). Every query runs on the transaction carried
// by the context when there is one, and on the pool otherwise.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/attendee-registration/internal/database"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/model"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// EventRepository reads events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// FindByID returns a single event or model.ErrEventNotFound.
func (r *EventRepository) FindByID(ctx context.Context, id int64) (*model.Event, error) {
	var e model.Event
	err := database.Executor(ctx, r.db).QueryRow(ctx,
		`SELECT id, title, currency FROM events WHERE id = $1`,
		id,
	).Scan(&e.ID, &e.Title, &e.Currency)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

// UserRepository reads user profiles.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID returns a single user or model.ErrNotFound.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	var (
		u      model.User
		gender *string
	)
	err := database.Executor(ctx, r.db).QueryRow(ctx,
		`SELECT id, email, first_name, last_name, locale, birth_date, gender
		 FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Locale, &u.BirthDate, &gender)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if gender != nil {
		u.Gender = *gender
	}
	return &u, nil
}

// TaxRepository reads configured taxes and fees.
type TaxRepository struct {
	db *pgxpool.Pool
}

// NewTaxRepository constructs a TaxRepository.
func NewTaxRepository(db *pgxpool.Pool) *TaxRepository {
	return &TaxRepository{db: db}
}

// FindTaxesAndFees returns the entries among ids that exist.
func (r *TaxRepository) FindTaxesAndFees(ctx context.Context, ids []int64) ([]model.TaxOrFee, error) {
	rows, err := database.Executor(ctx, r.db).Query(ctx,
		`SELECT id, name, type, calculation_type, rate
		 FROM taxes_and_fees
		 WHERE id = ANY($1)
		 ORDER BY id`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("list taxes and fees: %w", err)
	}
	defer rows.Close()

	var out []model.TaxOrFee
	for rows.Next() {
		var t model.TaxOrFee
		if err := rows.Scan(&t.ID, &t.Name, &t.Type, &t.CalculationType, &t.Rate); err != nil {
			return nil, fmt.Errorf("scan tax or fee: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
