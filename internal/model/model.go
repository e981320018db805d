// Package model defines the core domain types for attendee registration.
package model

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ProductTypeTicket = "TICKET"

	OrderStatusCompleted = "COMPLETED"

	PaymentStatusNoPaymentRequired = "NO_PAYMENT_REQUIRED"
	PaymentStatusPaymentReceived   = "PAYMENT_RECEIVED"

	AttendeeStatusActive = "ACTIVE"

	TaxTypeTax = "TAX"
	TaxTypeFee = "FEE"

	CalculationTypePercentage = "PERCENTAGE"
	CalculationTypeFixed      = "FIXED"
)

// UnlimitedQuantity is reported as the remaining quantity of a price that has
// no initial quantity configured.
const UnlimitedQuantity = math.MaxInt32

// Event is the read-only slice of an event needed during registration.
type Event struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Currency string `json:"currency"`
}

// User is an account whose profile can prefill a registration.
type User struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Locale    string     `json:"locale"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Gender    string     `json:"gender,omitempty"`
}

// Product is a purchasable catalog item. Only TICKET products can be registered for.
type Product struct {
	ID          int64          `json:"id"`
	EventID     int64          `json:"event_id"`
	Title       string         `json:"title"`
	ProductType string         `json:"product_type"`
	Prices      []ProductPrice `json:"prices"`
}

// ProductPrice is one price variant of a product together with its inventory counter.
type ProductPrice struct {
	ID                       int64           `json:"id"`
	ProductID                int64           `json:"product_id"`
	Label                    string          `json:"label"`
	Price                    decimal.Decimal `json:"price"`
	InitialQuantityAvailable *int            `json:"initial_quantity_available"`
	QuantitySold             int             `json:"quantity_sold"`
}

// Remaining returns the number of units left, or UnlimitedQuantity.
func (p ProductPrice) Remaining() int {
	if p.InitialQuantityAvailable == nil {
		return UnlimitedQuantity
	}
	return *p.InitialQuantityAvailable - p.QuantitySold
}

// TaxOrFee is a configured tax or service fee.
type TaxOrFee struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Type            string          `json:"type"`
	CalculationType string          `json:"calculation_type"`
	Rate            decimal.Decimal `json:"rate"`
}

// IsTax reports whether the entry accumulates into the tax total.
func (t TaxOrFee) IsTax() bool {
	return t.Type == TaxTypeTax
}

// RollupEntry is one applied tax or fee in an order item's snapshot.
type RollupEntry struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Type            string          `json:"type"`
	CalculationType string          `json:"calculation_type"`
	Rate            decimal.Decimal `json:"rate"`
	Value           decimal.Decimal `json:"value"`
}

// TaxAndFeeRollup is the serialized breakdown stored on an order item.
type TaxAndFeeRollup struct {
	Taxes []RollupEntry `json:"taxes"`
	Fees  []RollupEntry `json:"fees"`
}

// Order groups the items bought in one registration.
type Order struct {
	ID                   int64           `json:"id"`
	ShortID              string          `json:"short_id"`
	PublicID             string          `json:"public_id"`
	EventID              int64           `json:"event_id"`
	FirstName            string          `json:"first_name"`
	LastName             string          `json:"last_name"`
	ClubName             string          `json:"club_name"`
	Email                string          `json:"email"`
	Currency             string          `json:"currency"`
	Status               string          `json:"status"`
	PaymentStatus        string          `json:"payment_status"`
	Locale               string          `json:"locale"`
	IsManuallyCreated    bool            `json:"is_manually_created"`
	TotalBeforeAdditions decimal.Decimal `json:"total_before_additions"`
	TotalTax             decimal.Decimal `json:"total_tax"`
	TotalFee             decimal.Decimal `json:"total_fee"`
	TotalGross           decimal.Decimal `json:"total_gross"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// OrderItem is one line of an order. Registration always creates quantity 1.
type OrderItem struct {
	ID                   int64           `json:"id"`
	OrderID              int64           `json:"order_id"`
	ProductID            int64           `json:"product_id"`
	ProductPriceID       int64           `json:"product_price_id"`
	ItemName             string          `json:"item_name"`
	Quantity             int             `json:"quantity"`
	Price                decimal.Decimal `json:"price"`
	TotalBeforeAdditions decimal.Decimal `json:"total_before_additions"`
	TotalTax             decimal.Decimal `json:"total_tax"`
	TotalServiceFee      decimal.Decimal `json:"total_service_fee"`
	TotalGross           decimal.Decimal `json:"total_gross"`
	TaxesAndFeesRollup   TaxAndFeeRollup `json:"taxes_and_fees_rollup"`
}

// Attendee is a registered participant. It never exists without its order.
type Attendee struct {
	ID             int64      `json:"id"`
	ShortID        string     `json:"short_id"`
	PublicID       string     `json:"public_id"`
	EventID        int64      `json:"event_id"`
	ProductID      int64      `json:"product_id"`
	ProductPriceID int64      `json:"product_price_id"`
	OrderID        int64      `json:"order_id"`
	UserID         *int64     `json:"user_id,omitempty"`
	Status         string     `json:"status"`
	Email          string     `json:"email"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	ClubName       string     `json:"club_name"`
	BirthDate      *time.Time `json:"birth_date,omitempty"`
	AgeCategory    *string    `json:"age_category"`
	Locale         string     `json:"locale"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// PublicAttendee is the publicly listable view of an attendee.
type PublicAttendee struct {
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	ClubName    string  `json:"club_name"`
	AgeCategory *string `json:"age_category"`
}

// OutboxEntry is a domain event waiting to be relayed to the message broker.
type OutboxEntry struct {
	ID            uuid.UUID       `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationErrorResponse attributes failures to request fields.
type ValidationErrorResponse struct {
	Errors map[string]string `json:"errors"`
}
