package controllers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"stagecrew/internal/delivery/http/helpers"
	"stagecrew/internal/domain"
)

type ConflictController struct {
	Logger  *slog.Logger
	Service domain.ConflictService
}

func NewConflictController(logger *slog.Logger, svc domain.ConflictService) *ConflictController {
	return &ConflictController{
		Logger:  logger,
		Service: svc,
	}
}

// PersonConflicts godoc
// @Summary Check a person's schedule conflicts
// @Description Returns the person's committed shifts that overlap the proposed interval. Intervals are half-open; back-to-back shifts do not conflict. Advisory only.
// @Tags conflicts
// @Produce json
// @Security BearerAuth
// @Param personID path string true "Person ID (UUID)"
// @Param start query string true "Proposed start (RFC3339)"
// @Param end query string true "Proposed end (RFC3339)"
// @Success 200 {object} helpers.APIResponse "data is an array of conflicting commitments"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /people/{personID}/conflicts [get]
func (c *ConflictController) PersonConflicts(w http.ResponseWriter, r *http.Request) {
	personID, ok := pathUUID(w, r, "personID")
	if !ok {
		return
	}
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "start must be RFC3339")
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "end must be RFC3339")
		return
	}

	conflicts, err := c.Service.CheckPersonConflicts(r.Context(), personID, domain.Interval{Start: start, End: end})
	if err != nil {
		writeError(w, r, c.Logger, err)
		return
	}
	if conflicts == nil {
		conflicts = []*domain.PersonConflict{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, conflicts)
}

// RoomConflict godoc
// @Summary Check room availability for a day
// @Description Returns the active reservations holding the room on that day, optionally excluding one event instance. Empty data means the room is free.
// @Tags conflicts
// @Produce json
// @Security BearerAuth
// @Param roomID path string true "Room ID (UUID)"
// @Param day query string true "Day (RFC3339, time part ignored)"
// @Param exclude_event query string false "Event instance ID to exclude"
// @Success 200 {object} helpers.APIResponse "data is an array of blocking reservations"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /rooms/{roomID}/conflicts [get]
func (c *ConflictController) RoomConflict(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathUUID(w, r, "roomID")
	if !ok {
		return
	}
	day, err := time.Parse(time.RFC3339, r.URL.Query().Get("day"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "day must be RFC3339")
		return
	}

	reservations, err := c.Service.CheckRoomConflict(r.Context(), roomID, day, r.URL.Query().Get("exclude_event"))
	if err != nil {
		writeError(w, r, c.Logger, err)
		return
	}
	if reservations == nil {
		reservations = []*domain.RoomReservation{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reservations)
}

// ResourceAvailability godoc
// @Summary Check resource availability for a day
// @Description Reports the day's reserved total for the resource and whether a requested quantity would exceed it.
// @Tags conflicts
// @Produce json
// @Security BearerAuth
// @Param resourceID path string true "Resource ID (UUID)"
// @Param day query string true "Day (RFC3339, time part ignored)"
// @Param requested query int false "Quantity being considered"
// @Success 200 {object} helpers.APIResponse "data contains reserved, requested, and exceeds"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /resources/{resourceID}/availability [get]
func (c *ConflictController) ResourceAvailability(w http.ResponseWriter, r *http.Request) {
	resourceID, ok := pathUUID(w, r, "resourceID")
	if !ok {
		return
	}
	day, err := time.Parse(time.RFC3339, r.URL.Query().Get("day"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "day must be RFC3339")
		return
	}
	requested := 0
	if s := r.URL.Query().Get("requested"); s != "" {
		requested, err = strconv.Atoi(s)
		if err != nil || requested < 0 {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "requested must be a non-negative integer")
			return
		}
	}

	availability, err := c.Service.CheckResourceAvailability(r.Context(), resourceID, day, requested)
	if err != nil {
		writeError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, availability)
}
