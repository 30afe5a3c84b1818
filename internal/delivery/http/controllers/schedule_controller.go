package controllers

import (
	"log/slog"
	"net/http"

	"stagecrew/internal/delivery/http/helpers"
	"stagecrew/internal/delivery/http/middleware"
	"stagecrew/internal/domain"
)

type ScheduleController struct {
	Logger  *slog.Logger
	Service domain.ExpansionService
}

func NewScheduleController(logger *slog.Logger, svc domain.ExpansionService) *ScheduleController {
	return &ScheduleController{
		Logger:  logger,
		Service: svc,
	}
}

// ExpandRequest is the request body for POST /events/{eventID}/schedule.
type ExpandRequest struct {
	TemplateID string `json:"template_id"`
}

// Validate implements helpers.Validator.
func (r *ExpandRequest) Validate() []string {
	if r.TemplateID == "" {
		return []string{"template_id is required"}
	}
	if !uuidRegex.MatchString(r.TemplateID) {
		return []string{"template_id must be a UUID"}
	}
	return nil
}

// Expand godoc
// @Summary Generate a schedule from a template
// @Description Expands the template against the event's anchor time, creating concrete time blocks and shift slots in one transaction. An event holds at most one schedule; a second expansion fails with invariant_violation.
// @Tags schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.ExpandRequest true "Template to expand"
// @Success 201 {object} helpers.APIResponse "data contains counts of created blocks and slots"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invariant_violation (schedule already generated)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/schedule [post]
func (c *ScheduleController) Expand(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	var req ExpandRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	result, err := c.Service.ExpandTemplate(r.Context(), req.TemplateID, eventID)
	if err != nil {
		writeError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, result)
}

// Reset godoc
// @Summary Reset a generated schedule
// @Description Deletes the event's generated blocks, slots, assignments, and waitlist entries in one transaction and allows a fresh expansion. Organizer only; intended for setup mistakes, not live events.
// @Tags schedule
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains status reset"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/schedule [delete]
func (c *ScheduleController) Reset(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.ResetSchedule(r.Context(), eventID, actor); err != nil {
		writeError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "reset"})
}

// Get godoc
// @Summary Get the generated schedule of an event
// @Description Returns the event with its time blocks and shift slots, including live filled counts.
// @Tags schedule
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains event, blocks, and slots"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/schedule [get]
func (c *ScheduleController) Get(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	schedule, err := c.Service.GetSchedule(r.Context(), eventID)
	if err != nil {
		writeError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, schedule)
}
