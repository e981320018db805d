package model

import (
	"encoding/json"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// CalcModeByAge is the only supported rule evaluation strategy.
const CalcModeByAge = "BY_AGE"

// Bin maps an inclusive age interval, and optionally a gender, to a category label.
type Bin struct {
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	AgeCategory string  `json:"age_category"`
	Gender      string  `json:"gender,omitempty"`
}

// Validate checks a bin before it is written.
func (b Bin) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.AgeCategory, validation.Required, validation.Length(1, 10)),
		validation.Field(&b.Gender, validation.In("M", "F")),
		validation.Field(&b.Max, validation.By(func(interface{}) error {
			if b.Max < b.Min {
				return errors.New("must be greater than or equal to min")
			}
			return nil
		})),
	)
}

// Document is the rule body. Bins are evaluated in this order; the first match wins.
type Document struct {
	Bins []Bin `json:"bins"`
}

// Validate checks a document before it is written.
func (d Document) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Bins, validation.Required),
	)
}

// AgeCategoryRule is a named, versioned rule definition. Rows are never
// updated: new content produces a new row.
type AgeCategoryRule struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	CalcMode  string          `json:"calc_mode"`
	Rule      json.RawMessage `json:"rule"`
	Version   int             `json:"version"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Assignment links a ticket to the rule used to categorize its attendees.
type Assignment struct {
	TicketID   int64     `json:"ticket_id"`
	RuleID     int64     `json:"rule_id"`
	AssignedAt time.Time `json:"assigned_at"`
}

// AssignmentResult is returned by the rule assignment flow.
type AssignmentResult struct {
	TicketID   int64            `json:"ticket_id"`
	RuleID     int64            `json:"rule_id"`
	AssignedAt time.Time        `json:"assigned_at"`
	Rule       *AgeCategoryRule `json:"rule"`
}

// AssignRuleRequest is the payload for assigning an age category rule to a ticket.
type AssignRuleRequest struct {
	Name     string   `json:"name"`
	Rule     Document `json:"rule"`
	CalcMode string   `json:"calc_mode"`
	Version  *int     `json:"version"`
	IsActive *bool    `json:"is_active"`
}

// ApplyDefaults fills the optional fields the way the admin UI expects.
func (r *AssignRuleRequest) ApplyDefaults() {
	if r.CalcMode == "" {
		r.CalcMode = CalcModeByAge
	}
	if r.Version == nil {
		version := 1
		r.Version = &version
	}
	if r.IsActive == nil {
		active := true
		r.IsActive = &active
	}
}

// Validate checks the request after defaults have been applied.
func (r *AssignRuleRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.CalcMode, validation.Required, validation.In(CalcModeByAge)),
		// Min skips zero values, so Required rejects an explicit 0.
		validation.Field(&r.Version, validation.Required.Error("must be no less than 1"), validation.Min(1)),
		validation.Field(&r.IsActive, validation.NotNil),
		validation.Field(&r.Rule),
	)
}
