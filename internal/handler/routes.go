package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// EventRoutes returns the router mounted under /events. auth runs before
// every route; rule administration additionally requires a user.
func EventRoutes(attendees *AttendeeHandler, rules *RuleHandler, auth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth)

	r.Route("/{eventID}", func(r chi.Router) {
		r.Post("/attendees", attendees.Register)
		r.Get("/attendees/public", attendees.ListPublic)

		r.With(RequireUser).Post("/products/{ticketID}/age-category-rule", rules.Assign)
		r.With(RequireUser).Get("/products/{ticketID}/age-category-rule", rules.Get)
	})
	return r
}
