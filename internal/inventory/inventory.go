// Package inventory resolves ticket prices and guards their remaining quantity.
package inventory

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/attendee-registration/internal/model"
)

// Store reads and updates price counters. Both calls must run inside the
// caller's transaction.
type Store interface {
	// LockQuantityRemaining locks the price row until the transaction ends and
	// returns its remaining quantity, model.UnlimitedQuantity when uncapped.
	LockQuantityRemaining(ctx context.Context, productID, priceID int64) (int, error)
	// IncreaseQuantitySold adds one sale unless the price is sold out, and
	// reports whether the row was updated.
	IncreaseQuantitySold(ctx context.Context, priceID int64) (bool, error)
}

// ResolvePrice picks the price to sell. A requested id must belong to the
// product; without one the product's first price is used.
func ResolvePrice(product model.Product, requested *int64) (int64, error) {
	if requested != nil {
		for _, p := range product.Prices {
			if p.ID == *requested {
				return p.ID, nil
			}
		}
		return 0, fmt.Errorf("price %d for product %d: %w", *requested, product.ID, model.ErrInvalidProductPriceID)
	}

	if len(product.Prices) == 0 {
		return 0, fmt.Errorf("product %d has no prices: %w", product.ID, model.ErrInvalidProductPriceID)
	}
	first := product.Prices[0]
	for _, p := range product.Prices[1:] {
		if p.ID < first.ID {
			first = p
		}
	}
	return first.ID, nil
}

// Resolver checks and reserves ticket inventory.
type Resolver struct {
	store Store
}

// NewResolver constructs a Resolver.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// QuantityRemaining returns the units left for the price and keeps the price
// row locked for the rest of the transaction.
func (r *Resolver) QuantityRemaining(ctx context.Context, productID, priceID int64) (int, error) {
	n, err := r.store.LockQuantityRemaining(ctx, productID, priceID)
	if err != nil {
		return 0, fmt.Errorf("quantity remaining: %w", err)
	}
	return n, nil
}

// Reserve records one sale. It fails with model.ErrNoTicketsAvailable when
// the price is already sold out.
func (r *Resolver) Reserve(ctx context.Context, priceID int64) error {
	ok, err := r.store.IncreaseQuantitySold(ctx, priceID)
	if err != nil {
		return fmt.Errorf("reserve price %d: %w", priceID, err)
	}
	if !ok {
		return fmt.Errorf("reserve price %d: %w", priceID, model.ErrNoTicketsAvailable)
	}
	return nil
}
