package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/attendee-registration/internal/database"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/model"
)

// OrderRepository handles orders and their items.
type OrderRepository struct {
	db *pgxpool.Pool
}

// NewOrderRepository constructs an OrderRepository.
func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts the order and fills its id and timestamps.
func (r *OrderRepository) Create(ctx context.Context, o *model.Order) error {
	err := database.Executor(ctx, r.db).QueryRow(ctx,
		`INSERT INTO orders (
			short_id, public_id, event_id, first_name, last_name, club_name, email,
			currency, status, payment_status, locale, is_manually_created,
			total_before_additions, total_tax, total_fee, total_gross
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING id, created_at, updated_at`,
		o.ShortID, o.PublicID, o.EventID, o.FirstName, o.LastName, o.ClubName, o.Email,
		o.Currency, o.Status, o.PaymentStatus, o.Locale, o.IsManuallyCreated,
		o.TotalBeforeAdditions, o.TotalTax, o.TotalFee, o.TotalGross,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// AddItem inserts an order item and fills its id.
func (r *OrderRepository) AddItem(ctx context.Context, item *model.OrderItem) error {
	rollup, err := json.Marshal(item.TaxesAndFeesRollup)
	if err != nil {
		return fmt.Errorf("encode taxes and fees rollup: %w", err)
	}
	err = database.Executor(ctx, r.db).QueryRow(ctx,
		`INSERT INTO order_items (
			order_id, product_id, product_price_id, item_name, quantity, price,
			total_before_additions, total_tax, total_service_fee, total_gross, taxes_and_fees_rollup
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id`,
		item.OrderID, item.ProductID, item.ProductPriceID, item.ItemName, item.Quantity, item.Price,
		item.TotalBeforeAdditions, item.TotalTax, item.TotalServiceFee, item.TotalGross, json.RawMessage(rollup),
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

// Items returns the items of an order.
func (r *OrderRepository) Items(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	rows, err := database.Executor(ctx, r.db).Query(ctx,
		`SELECT id, order_id, product_id, product_price_id, item_name, quantity, price,
		        total_before_additions, total_tax, total_service_fee, total_gross, taxes_and_fees_rollup
		 FROM order_items
		 WHERE order_id = $1
		 ORDER BY id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var (
			it     model.OrderItem
			rollup []byte
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductPriceID, &it.ItemName, &it.Quantity, &it.Price,
			&it.TotalBeforeAdditions, &it.TotalTax, &it.TotalServiceFee, &it.TotalGross, &rollup); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if err := json.Unmarshal(rollup, &it.TaxesAndFeesRollup); err != nil {
			return nil, fmt.Errorf("decode taxes and fees rollup: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpdateTotals persists the order's totals.
func (r *OrderRepository) UpdateTotals(ctx context.Context, o *model.Order) error {
	err := database.Executor(ctx, r.db).QueryRow(ctx,
		`UPDATE orders
		 SET total_before_additions = $2, total_tax = $3, total_fee = $4, total_gross = $5, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`,
		o.ID, o.TotalBeforeAdditions, o.TotalTax, o.TotalFee, o.TotalGross,
	).Scan(&o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrNotFound
		}
		return fmt.Errorf("update order totals: %w", err)
	}
	return nil
}
