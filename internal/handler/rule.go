package handler

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/attendee-registration/internal/model"
)

// RuleService is the part of service.RuleService used over HTTP.
type RuleService interface {
	AssignTicketRule(ctx context.Context, eventID, ticketID int64, req model.AssignRuleRequest) (*model.AssignmentResult, error)
	GetTicketRule(ctx context.Context, eventID, ticketID int64) (*model.AssignmentResult, error)
}

// RuleHandler serves the age category rule of a ticket.
type RuleHandler struct {
	svc RuleService
	log *zap.Logger
}

// NewRuleHandler constructs a RuleHandler.
func NewRuleHandler(svc RuleService, log *zap.Logger) *RuleHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &RuleHandler{svc: svc, log: log}
}

// Assign handles POST /events/{eventID}/products/{ticketID}/age-category-rule
// Finds or creates the rule and assigns it to the ticket.
func (h *RuleHandler) Assign(w http.ResponseWriter, r *http.Request) {
	eventID, ticketID, ok := ticketParams(w, r)
	if !ok {
		return
	}

	var req model.AssignRuleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	res, err := h.svc.AssignTicketRule(r.Context(), eventID, ticketID, req)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

// Get handles GET /events/{eventID}/products/{ticketID}/age-category-rule
func (h *RuleHandler) Get(w http.ResponseWriter, r *http.Request) {
	eventID, ticketID, ok := ticketParams(w, r)
	if !ok {
		return
	}

	res, err := h.svc.GetTicketRule(r.Context(), eventID, ticketID)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func ticketParams(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	eventID, ok := idParam(r, "eventID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return 0, 0, false
	}
	ticketID, ok := idParam(r, "ticketID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid ticket id")
		return 0, 0, false
	}
	return eventID, ticketID, true
}
