package model

import "errors"

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrEventNotFound is returned when the event a request is scoped to does not exist.
var ErrEventNotFound = errors.New("event not found")

// ErrTicketNotFound is returned when a ticket does not belong to the caller's event.
var ErrTicketNotFound = errors.New("ticket not found for event")

// ErrTaxOrFeeNotFound is returned when a requested tax or fee id is not in the catalog.
var ErrTaxOrFeeNotFound = errors.New("tax or fee not found")

// ErrNoTicketsAvailable is returned when the ticket is invalid for registration
// or its selected price has no remaining quantity.
var ErrNoTicketsAvailable = errors.New("there are no tickets available")

// ErrInvalidProductPriceID is returned when the selected price does not belong
// to the ticket, or the ticket has no price at all.
var ErrInvalidProductPriceID = errors.New("the product price id is invalid")

// ErrUserNotFound is returned when an authenticated caller has no user record.
var ErrUserNotFound = errors.New("user not found")
