package controllers

import (
	"log/slog"
	"net/http"

	"stagecrew/internal/delivery/http/helpers"
	"stagecrew/internal/delivery/http/middleware"
	"stagecrew/internal/domain"
)

type AssignmentController struct {
	Logger  *slog.Logger
	Service domain.AssignmentService
}

func NewAssignmentController(logger *slog.Logger, svc domain.AssignmentService) *AssignmentController {
	return &AssignmentController{
		Logger:  logger,
		Service: svc,
	}
}

// CandidateRequest names the person or external registrant an action is for.
// Exactly one of person_id or registrant_id must be set, matching kind.
type CandidateRequest struct {
	Kind         string `json:"kind"`
	PersonID     string `json:"person_id,omitempty"`
	RegistrantID string `json:"registrant_id,omitempty"`
}

func (cr CandidateRequest) toDomain() domain.Candidate {
	return domain.Candidate{
		Kind:         domain.CandidateKind(cr.Kind),
		PersonID:     cr.PersonID,
		RegistrantID: cr.RegistrantID,
	}
}

// Validate implements helpers.Validator.
func (cr *CandidateRequest) Validate() []string {
	if err := cr.toDomain().Validate(); err != nil {
		return []string{"candidate must set exactly one of person_id or registrant_id, matching kind"}
	}
	return nil
}

// CreateAssignmentRequest is the request body for POST /slots/{slotID}/assignments.
type CreateAssignmentRequest struct {
	Candidate CandidateRequest `json:"candidate"`
}

// Validate implements helpers.Validator.
func (r *CreateAssignmentRequest) Validate() []string {
	return r.Candidate.Validate()
}

// Create godoc
// @Summary Register a candidate for a shift slot
// @Description Commits the candidate to the slot. Capacity is enforced atomically; seats held by outstanding waitlist offers count as taken. The response carries advisory schedule-conflict warnings for club members, which never block the registration.
// @Tags assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slotID path string true "Shift slot ID (UUID)"
// @Param body body controllers.CreateAssignmentRequest true "Candidate"
// @Success 201 {object} helpers.APIResponse "data contains the assignment and warnings"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: capacity_exceeded or duplicate"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /slots/{slotID}/assignments [post]
func (c *AssignmentController) Create(w http.ResponseWriter, r *http.Request) {
	slotID, ok := pathUUID(w, r, "slotID")
	if !ok {
		return
	}
	var req CreateAssignmentRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	receipt, err := c.Service.CreateAssignment(r.Context(), slotID, req.Candidate.toDomain())
	if err != nil {
		writeError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, receipt)
}

// Cancel godoc
// @Summary Cancel an assignment (staff)
// @Description Cancels the assignment and promotes the waitlist head for the freed seat. Cancelling an already-cancelled assignment is an idempotent no-op. Staff path; helpers use their emailed cancel link instead.
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param assignmentID path string true "Assignment ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the cancelled assignment"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invariant_violation (attended or no_show)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /assignments/{assignmentID}/cancel [post]
func (c *AssignmentController) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "assignmentID")
	if !ok {
		return
	}
	assignment, err := c.Service.CancelAssignment(r.Context(), id)
	if err != nil {
		writeError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, assignment)
}

// MarkAttendanceRequest is the request body for POST /assignments/{assignmentID}/attendance.
type MarkAttendanceRequest struct {
	Status string `json:"status"`
}

// Validate implements helpers.Validator.
func (r *MarkAttendanceRequest) Validate() []string {
	s := domain.AssignmentStatus(r.Status)
	if s != domain.AssignmentAttended && s != domain.AssignmentNoShow {
		return []string{"status must be attended or no_show"}
	}
	return nil
}

// MarkAttendance godoc
// @Summary Mark attendance on an assignment
// @Description Transitions a committed assignment to attended or no_show after the shift window opens. Organizer only; idempotent when re-marking the same status.
// @Tags assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param assignmentID path string true "Assignment ID (UUID)"
// @Param body body controllers.MarkAttendanceRequest true "attended or no_show"
// @Success 200 {object} helpers.APIResponse "data contains the updated assignment"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invariant_violation"
// @Failure 422 {object} helpers.APIResponse "error.code: policy_window (shift has not started)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /assignments/{assignmentID}/attendance [post]
func (c *AssignmentController) MarkAttendance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "assignmentID")
	if !ok {
		return
	}
	var req MarkAttendanceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	assignment, err := c.Service.MarkAttendance(r.Context(), id, domain.AssignmentStatus(req.Status), actor)
	if err != nil {
		writeError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, assignment)
}
