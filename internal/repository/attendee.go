package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/attendee-registration/internal/database"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/model"
)

// AttendeeRepository handles persistence for attendees.
type AttendeeRepository struct {
	db *pgxpool.Pool
}

// NewAttendeeRepository constructs an AttendeeRepository.
func NewAttendeeRepository(db *pgxpool.Pool) *AttendeeRepository {
	return &AttendeeRepository{db: db}
}

// Create inserts the attendee and fills its id and timestamps.
func (r *AttendeeRepository) Create(ctx context.Context, a *model.Attendee) error {
	err := database.Executor(ctx, r.db).QueryRow(ctx,
		`INSERT INTO attendees (
			short_id, public_id, event_id, product_id, product_price_id, order_id, user_id,
			status, email, first_name, last_name, club_name, birth_date, age_category, locale
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 RETURNING id, created_at, updated_at`,
		a.ShortID, a.PublicID, a.EventID, a.ProductID, a.ProductPriceID, a.OrderID, a.UserID,
		a.Status, a.Email, a.FirstName, a.LastName, a.ClubName, a.BirthDate, a.AgeCategory, a.Locale,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert attendee: %w", err)
	}
	return nil
}

// ListPublic returns the publicly listable fields of an event's active
// attendees in registration order.
func (r *AttendeeRepository) ListPublic(ctx context.Context, eventID int64) ([]model.PublicAttendee, error) {
	rows, err := database.Executor(ctx, r.db).Query(ctx,
		`SELECT first_name, last_name, club_name, age_category
		 FROM attendees
		 WHERE event_id = $1 AND status = $2
		 ORDER BY created_at ASC, id ASC`,
		eventID, model.AttendeeStatusActive,
	)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	defer rows.Close()

	attendees := []model.PublicAttendee{}
	for rows.Next() {
		var a model.PublicAttendee
		if err := rows.Scan(&a.FirstName, &a.LastName, &a.ClubName, &a.AgeCategory); err != nil {
			return nil, fmt.Errorf("scan attendee: %w", err)
		}
		attendees = append(attendees, a)
	}
	return attendees, rows.Err()
}
