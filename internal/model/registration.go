package model

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of birth dates.
const DateLayout = "2006-01-02"

// SupportedLocales lists the locales an order or attendee can be created with.
var SupportedLocales = []string{"en", "de", "es", "fr", "it", "nl", "pl", "pt", "pt-br", "zh-cn"}

// TaxAndFeeRequest selects a configured tax or fee and the amount charged for it.
type TaxAndFeeRequest struct {
	TaxOrFeeID int64           `json:"tax_or_fee_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// Validate checks one requested tax or fee.
func (t TaxAndFeeRequest) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.TaxOrFeeID, validation.Required),
		validation.Field(&t.Amount, validation.By(nonNegative)),
	)
}

// RegisterAttendeeRequest is the payload for registering an attendee against a ticket.
type RegisterAttendeeRequest struct {
	ProductID             int64              `json:"product_id"`
	ProductPriceID        *int64             `json:"product_price_id"`
	Email                 string             `json:"email"`
	FirstName             string             `json:"first_name"`
	LastName              string             `json:"last_name"`
	ClubName              string             `json:"club_name"`
	BirthDate             string             `json:"birth_date"`
	Gender                string             `json:"gender"`
	AgeCategory           string             `json:"age_category"`
	AmountPaid            decimal.Decimal    `json:"amount_paid"`
	Locale                string             `json:"locale"`
	SendConfirmationEmail *bool              `json:"send_confirmation_email"`
	TaxesAndFees          []TaxAndFeeRequest `json:"taxes_and_fees"`

	// UserID is set from the authenticated session, never from the body.
	UserID *int64 `json:"-"`
}

// Normalize trims contact fields and canonicalizes case-insensitive values.
func (r *RegisterAttendeeRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.ClubName = strings.TrimSpace(r.ClubName)
	r.BirthDate = strings.TrimSpace(r.BirthDate)
	r.Gender = strings.ToUpper(strings.TrimSpace(r.Gender))
	r.AgeCategory = strings.TrimSpace(r.AgeCategory)
	r.Locale = strings.ToLower(strings.TrimSpace(r.Locale))
}

// Prefill copies profile data into every blank contact field.
func (r *RegisterAttendeeRequest) Prefill(u User) {
	if r.Email == "" {
		r.Email = u.Email
	}
	if r.FirstName == "" {
		r.FirstName = u.FirstName
	}
	if r.LastName == "" {
		r.LastName = u.LastName
	}
	if r.Locale == "" {
		r.Locale = u.Locale
	}
	if r.BirthDate == "" && u.BirthDate != nil {
		r.BirthDate = u.BirthDate.Format(DateLayout)
	}
	if r.Gender == "" {
		r.Gender = strings.ToUpper(u.Gender)
	}
}

// Validate checks the request. Anonymous registrations must carry their own
// email, first name, gender and locale; authenticated ones may rely on the profile.
func (r *RegisterAttendeeRequest) Validate() error {
	anonymous := r.UserID == nil
	locales := make([]interface{}, len(SupportedLocales))
	for i, l := range SupportedLocales {
		locales[i] = l
	}

	return validation.ValidateStruct(r,
		validation.Field(&r.ProductID, validation.Required),
		validation.Field(&r.ProductPriceID, validation.NilOrNotEmpty),
		validation.Field(&r.Email, requiredIf(anonymous, is.Email)...),
		validation.Field(&r.FirstName, requiredIf(anonymous, validation.Length(1, 40))...),
		validation.Field(&r.LastName, validation.Length(0, 40)),
		validation.Field(&r.ClubName, validation.Required, validation.Length(1, 150)),
		validation.Field(&r.BirthDate, validation.By(isDate)),
		validation.Field(&r.Gender, requiredIf(anonymous, validation.In("M", "F"))...),
		validation.Field(&r.AgeCategory, validation.Length(0, 10)),
		validation.Field(&r.AmountPaid, validation.By(nonNegative)),
		validation.Field(&r.Locale, requiredIf(anonymous, validation.In(locales...))...),
		validation.Field(&r.SendConfirmationEmail, validation.NotNil),
		validation.Field(&r.TaxesAndFees),
	)
}

// ParsedBirthDate returns the birth date, or nil when none was supplied.
func (r *RegisterAttendeeRequest) ParsedBirthDate() (*time.Time, error) {
	if r.BirthDate == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, r.BirthDate)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func requiredIf(required bool, rules ...validation.Rule) []validation.Rule {
	if !required {
		return rules
	}
	return append([]validation.Rule{validation.Required}, rules...)
}

func isDate(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return errors.New("must be a date in YYYY-MM-DD format")
	}
	return nil
}

func nonNegative(value interface{}) error {
	d, ok := value.(decimal.Decimal)
	if !ok {
		return errors.New("must be a decimal amount")
	}
	if d.IsNegative() {
		return errors.New("must not be negative")
	}
	return nil
}
