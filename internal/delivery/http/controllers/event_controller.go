package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"stagecrew/internal/delivery/http/helpers"
	"stagecrew/internal/delivery/http/middleware"
	"stagecrew/internal/domain"
)

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventInstanceService
}

func NewEventController(logger *slog.Logger, svc domain.EventInstanceService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	AnchorStart time.Time `json:"anchor_start"`
	NominalEnd  time.Time `json:"nominal_end"`
}

// Validate implements helpers.Validator.
func (r *CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, "name is required")
	}
	if r.AnchorStart.IsZero() {
		errs = append(errs, "anchor_start is required")
	}
	if r.NominalEnd.IsZero() {
		errs = append(errs, "nominal_end is required")
	}
	if !r.AnchorStart.IsZero() && !r.NominalEnd.IsZero() && !r.NominalEnd.After(r.AnchorStart) {
		errs = append(errs, "nominal_end must be after anchor_start")
	}
	return errs
}

// Create godoc
// @Summary Create an event instance
// @Description Creates one concrete event occurrence with its anchor start and nominal end. Organizer only.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.CreateEventRequest true "Event instance data"
// @Success 201 {object} helpers.APIResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	event := &domain.EventInstance{
		Name:        strings.TrimSpace(req.Name),
		Location:    strings.TrimSpace(req.Location),
		AnchorStart: req.AnchorStart,
		NominalEnd:  req.NominalEnd,
	}
	created, err := c.Service.CreateEventInstance(r.Context(), event, actor)
	if err != nil {
		writeError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, created)
}

// List godoc
// @Summary List event instances
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is an array of events ordered by anchor start"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) List(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.ListEventInstances(r.Context())
	if err != nil {
		writeError(w, r, c.Logger, err)
		return
	}
	if events == nil {
		events = []*domain.EventInstance{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// Get godoc
// @Summary Get an event instance
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	event, err := c.Service.GetEventInstance(r.Context(), id)
	if err != nil {
		writeError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}
