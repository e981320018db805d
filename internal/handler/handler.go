// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

//go:generate mockgen -destination=mocks/mock_services.go -package=mocks github.com/Shivanand-hulikatti/attendee-registration/internal/handler RegistrationService,RuleService

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/attendee-registration/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func writeFieldError(w http.ResponseWriter, field, msg string) {
	writeJSON(w, http.StatusUnprocessableEntity, model.ValidationErrorResponse{
		Errors: map[string]string{field: msg},
	})
}

func writeValidationErrors(w http.ResponseWriter, errs validation.Errors) {
	out := make(map[string]string, len(errs))
	for field, err := range errs {
		out[field] = err.Error()
	}
	writeJSON(w, http.StatusUnprocessableEntity, model.ValidationErrorResponse{Errors: out})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// idParam reads a positive int64 path parameter.
func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// writeServiceError maps domain errors to HTTP responses. Unknown errors are
// logged and reported as 500 without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var verr validation.Errors
	switch {
	case errors.As(err, &verr):
		writeValidationErrors(w, verr)
	case errors.Is(err, model.ErrNoTicketsAvailable):
		writeFieldError(w, "product_id", model.ErrNoTicketsAvailable.Error())
	case errors.Is(err, model.ErrInvalidProductPriceID):
		writeFieldError(w, "product_price_id", model.ErrInvalidProductPriceID.Error())
	case errors.Is(err, model.ErrTaxOrFeeNotFound):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, model.ErrTicketNotFound):
		writeError(w, http.StatusNotFound, model.ErrTicketNotFound.Error())
	case errors.Is(err, model.ErrEventNotFound):
		writeError(w, http.StatusNotFound, model.ErrEventNotFound.Error())
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, model.ErrNotFound.Error())
	case errors.Is(err, model.ErrUserNotFound):
		writeError(w, http.StatusUnauthorized, model.ErrUserNotFound.Error())
	default:
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
