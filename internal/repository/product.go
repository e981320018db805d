package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/attendee-registration/internal/database"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/model"
)

// ProductRepository handles products, their prices and sale counters.
type ProductRepository struct {
	db *pgxpool.Pool
}

// NewProductRepository constructs a ProductRepository.
func NewProductRepository(db *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{db: db}
}

// ExistsForEvent reports whether the product belongs to the event.
func (r *ProductRepository) ExistsForEvent(ctx context.Context, eventID, productID int64) (bool, error) {
	var exists bool
	err := database.Executor(ctx, r.db).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1 AND event_id = $2)`,
		productID, eventID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check product: %w", err)
	}
	return exists, nil
}

// FindTicket returns a TICKET product of the event with its prices ordered
// by id, or model.ErrNotFound.
func (r *ProductRepository) FindTicket(ctx context.Context, eventID, productID int64) (*model.Product, error) {
	db := database.Executor(ctx, r.db)

	var p model.Product
	err := db.QueryRow(ctx,
		`SELECT id, event_id, title, product_type
		 FROM products
		 WHERE id = $1 AND event_id = $2 AND product_type = $3`,
		productID, eventID, model.ProductTypeTicket,
	).Scan(&p.ID, &p.EventID, &p.Title, &p.ProductType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	rows, err := db.Query(ctx,
		`SELECT id, product_id, label, price, initial_quantity_available, quantity_sold
		 FROM product_prices
		 WHERE product_id = $1
		 ORDER BY id`,
		p.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("list product prices: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pp model.ProductPrice
		if err := rows.Scan(&pp.ID, &pp.ProductID, &pp.Label, &pp.Price, &pp.InitialQuantityAvailable, &pp.QuantitySold); err != nil {
			return nil, fmt.Errorf("scan product price: %w", err)
		}
		p.Prices = append(p.Prices, pp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list product prices: %w", err)
	}
	return &p, nil
}

// LockQuantityRemaining takes a row lock on the price with SELECT … FOR UPDATE
// and returns what is left to sell. Concurrent registrations for the same
// price queue on this lock until the holder commits or rolls back, so the
// check and the later increment cannot interleave with another buyer's.
func (r *ProductRepository) LockQuantityRemaining(ctx context.Context, productID, priceID int64) (int, error) {
	var (
		initial *int
		sold    int
	)
	err := database.Executor(ctx, r.db).QueryRow(ctx,
		`SELECT initial_quantity_available, quantity_sold
		 FROM product_prices
		 WHERE id = $1 AND product_id = $2
		 FOR UPDATE`,
		priceID, productID,
	).Scan(&initial, &sold)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, model.ErrInvalidProductPriceID
		}
		return 0, fmt.Errorf("lock product price: %w", err)
	}
	return model.ProductPrice{InitialQuantityAvailable: initial, QuantitySold: sold}.Remaining(), nil
}

// IncreaseQuantitySold adds one sale when the price still has capacity.
func (r *ProductRepository) IncreaseQuantitySold(ctx context.Context, priceID int64) (bool, error) {
	tag, err := database.Executor(ctx, r.db).Exec(ctx,
		`UPDATE product_prices
		 SET quantity_sold = quantity_sold + 1
		 WHERE id = $1
		   AND (initial_quantity_available IS NULL OR quantity_sold < initial_quantity_available)`,
		priceID,
	)
	if err != nil {
		return false, fmt.Errorf("increment quantity_sold: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
