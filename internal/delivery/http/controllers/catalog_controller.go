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

// CatalogController administers shared rooms and countable resources and
// books them for event instances.
type CatalogController struct {
	Logger  *slog.Logger
	Service domain.ReservationService
}

func NewCatalogController(logger *slog.Logger, svc domain.ReservationService) *CatalogController {
	return &CatalogController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateRoomRequest is the request body for POST /rooms.
type CreateRoomRequest struct {
	Name string `json:"name"`
}

// Validate implements helpers.Validator.
func (r *CreateRoomRequest) Validate() []string {
	if strings.TrimSpace(r.Name) == "" {
		return []string{"name is required"}
	}
	return nil
}

// CreateRoom godoc
// @Summary Add a room to the catalog
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.CreateRoomRequest true "Room name"
// @Success 201 {object} helpers.APIResponse "data contains the created room"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /rooms [post]
func (c *CatalogController) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	room, err := c.Service.CreateRoom(r.Context(), strings.TrimSpace(req.Name), actor)
	if err != nil {
		writeError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, room)
}

// ListRooms godoc
// @Summary List the room catalog
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is an array of rooms"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /rooms [get]
func (c *CatalogController) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := c.Service.ListRooms(r.Context())
	if err != nil {
		writeError(w, r, c.Logger, err)
		return
	}
	if rooms == nil {
		rooms = []*domain.Room{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rooms)
}

// CreateResourceRequest is the request body for POST /resources.
type CreateResourceRequest struct {
	Name          string `json:"name"`
	TotalQuantity int    `json:"total_quantity"`
}

// Validate implements helpers.Validator.
func (r *CreateResourceRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, "name is required")
	}
	if r.TotalQuantity <= 0 {
		errs = append(errs, "total_quantity must be positive")
	}
	return errs
}

// CreateResource godoc
// @Summary Add a countable resource to the catalog
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.CreateResourceRequest true "Resource name and quantity"
// @Success 201 {object} helpers.APIResponse "data contains the created resource"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /resources [post]
func (c *CatalogController) CreateResource(w http.ResponseWriter, r *http.Request) {
	var req CreateResourceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	res, err := c.Service.CreateResource(r.Context(), strings.TrimSpace(req.Name), req.TotalQuantity, actor)
	if err != nil {
		writeError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, res)
}

// ListResources godoc
// @Summary List the resource catalog
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is an array of resources"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /resources [get]
func (c *CatalogController) ListResources(w http.ResponseWriter, r *http.Request) {
	resources, err := c.Service.ListResources(r.Context())
	if err != nil {
		writeError(w, r, c.Logger, err)
		return
	}
	if resources == nil {
		resources = []*domain.Resource{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, resources)
}

// ReserveRoomRequest is the request body for POST /events/{eventID}/room-reservations.
type ReserveRoomRequest struct {
	RoomID string    `json:"room_id"`
	Day    time.Time `json:"day"`
}

// Validate implements helpers.Validator.
func (r *ReserveRoomRequest) Validate() []string {
	var errs []string
	if !uuidRegex.MatchString(r.RoomID) {
		errs = append(errs, "room_id must be a UUID")
	}
	if r.Day.IsZero() {
		errs = append(errs, "day is required")
	}
	return errs
}

// ReserveRoom godoc
// @Summary Reserve a room for an event's day
// @Description Rooms are whole-day exclusive; the reservation fails with room_unavailable if another event already holds the room that day.
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.ReserveRoomRequest true "Room and day"
// @Success 201 {object} helpers.APIResponse "data contains the reservation"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: room_unavailable"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/room-reservations [post]
func (c *CatalogController) ReserveRoom(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	var req ReserveRoomRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	reservation, err := c.Service.ReserveRoom(r.Context(), eventID, req.RoomID, req.Day)
	if err != nil {
		writeError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, reservation)
}

// ReserveResourceRequest is the request body for POST /events/{eventID}/resource-reservations.
type ReserveResourceRequest struct {
	ResourceID string    `json:"resource_id"`
	Day        time.Time `json:"day"`
	Quantity   int       `json:"quantity"`
}

// Validate implements helpers.Validator.
func (r *ReserveResourceRequest) Validate() []string {
	var errs []string
	if !uuidRegex.MatchString(r.ResourceID) {
		errs = append(errs, "resource_id must be a UUID")
	}
	if r.Day.IsZero() {
		errs = append(errs, "day is required")
	}
	if r.Quantity <= 0 {
		errs = append(errs, "quantity must be positive")
	}
	return errs
}

// ReserveResource godoc
// @Summary Reserve a quantity of a resource for an event's day
// @Description Fails with resource_oversubscribed if the day's reserved total plus the request exceeds the resource quantity.
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.ReserveResourceRequest true "Resource, day, and quantity"
// @Success 201 {object} helpers.APIResponse "data contains the reservation"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: resource_oversubscribed"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/resource-reservations [post]
func (c *CatalogController) ReserveResource(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	var req ReserveResourceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	reservation, err := c.Service.ReserveResource(r.Context(), eventID, req.ResourceID, req.Day, req.Quantity)
	if err != nil {
		writeError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, reservation)
}
