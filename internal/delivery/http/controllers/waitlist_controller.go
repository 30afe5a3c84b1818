package controllers

import (
	"log/slog"
	"net/http"

	"stagecrew/internal/delivery/http/helpers"
	"stagecrew/internal/domain"
)

type WaitlistController struct {
	Logger  *slog.Logger
	Service domain.WaitlistService
}

func NewWaitlistController(logger *slog.Logger, svc domain.WaitlistService) *WaitlistController {
	return &WaitlistController{
		Logger:  logger,
		Service: svc,
	}
}

// EnqueueRequest is the request body for POST /slots/{slotID}/waitlist.
type EnqueueRequest struct {
	Candidate CandidateRequest `json:"candidate"`
}

// Validate implements helpers.Validator.
func (r *EnqueueRequest) Validate() []string {
	return r.Candidate.Validate()
}

// Enqueue godoc
// @Summary Join the waitlist of a full shift slot
// @Description Appends the candidate at the FIFO tail. Only valid when the slot has no effective free capacity; otherwise the caller should register directly.
// @Tags waitlist
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slotID path string true "Shift slot ID (UUID)"
// @Param body body controllers.EnqueueRequest true "Candidate"
// @Success 201 {object} helpers.APIResponse "data contains the waitlist entry"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (slot has free capacity)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: duplicate"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /slots/{slotID}/waitlist [post]
func (c *WaitlistController) Enqueue(w http.ResponseWriter, r *http.Request) {
	slotID, ok := pathUUID(w, r, "slotID")
	if !ok {
		return
	}
	var req EnqueueRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	entry, err := c.Service.Enqueue(r.Context(), slotID, req.Candidate.toDomain())
	if err != nil {
		writeError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, entry)
}

// RespondRequest is the request body for POST /waitlist/{entryID}/respond.
type RespondRequest struct {
	Accept bool `json:"accept"`
}

// Respond godoc
// @Summary Respond to an outstanding offer (staff assisted)
// @Description Accepts or declines an outstanding offer on behalf of the candidate, e.g. when they reply by phone. Responses to already-settled entries are idempotent no-ops reporting the final state. Helpers normally respond through their emailed links.
// @Tags waitlist
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param entryID path string true "Waitlist entry ID (UUID)"
// @Param body body controllers.RespondRequest true "accept true/false"
// @Success 200 {object} helpers.APIResponse "data contains the entry and, on accept, the created assignment"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (entry not offered)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: capacity_exceeded"
// @Failure 422 {object} helpers.APIResponse "error.code: policy_window (deadline passed)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /waitlist/{entryID}/respond [post]
func (c *WaitlistController) Respond(w http.ResponseWriter, r *http.Request) {
	entryID, ok := pathUUID(w, r, "entryID")
	if !ok {
		return
	}
	var req RespondRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	outcome, err := c.Service.RespondToOffer(r.Context(), entryID, req.Accept)
	if err != nil {
		writeError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, outcome)
}
