package handler

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/attendee-registration/internal/model"
)

// RegistrationService is the part of service.RegistrationService used over HTTP.
type RegistrationService interface {
	Register(ctx context.Context, eventID int64, req model.RegisterAttendeeRequest) (*model.Attendee, error)
	ListPublicAttendees(ctx context.Context, eventID int64) ([]model.PublicAttendee, error)
}

// AttendeeHandler serves attendee registration.
type AttendeeHandler struct {
	svc RegistrationService
	log *zap.Logger
}

// NewAttendeeHandler constructs an AttendeeHandler.
func NewAttendeeHandler(svc RegistrationService, log *zap.Logger) *AttendeeHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AttendeeHandler{svc: svc, log: log}
}

// Register handles POST /events/{eventID}/attendees
// Registers one attendee against a ticket. The caller's user id, when
// authenticated, prefills blank contact fields.
func (h *AttendeeHandler) Register(w http.ResponseWriter, r *http.Request) {
	eventID, ok := idParam(r, "eventID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	var req model.RegisterAttendeeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if userID, ok := UserIDFrom(r.Context()); ok {
		req.UserID = &userID
	}

	attendee, err := h.svc.Register(r.Context(), eventID, req)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, attendee)
}

// ListPublic handles GET /events/{eventID}/attendees/public
func (h *AttendeeHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	eventID, ok := idParam(r, "eventID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	attendees, err := h.svc.ListPublicAttendees(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	// Return an empty array rather than null for better client compatibility.
	if attendees == nil {
		attendees = []model.PublicAttendee{}
	}

	writeJSON(w, http.StatusOK, attendees)
}
