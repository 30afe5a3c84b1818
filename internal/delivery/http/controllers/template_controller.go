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

type TemplateController struct {
	Logger  *slog.Logger
	Service domain.TemplateService
}

func NewTemplateController(logger *slog.Logger, svc domain.TemplateService) *TemplateController {
	return &TemplateController{
		Logger:  logger,
		Service: svc,
	}
}

// TemplateBlockRequest is one time block definition in CreateTemplateRequest.
// Offsets are minutes relative to the event anchor; negative offsets place the
// block before the anchor.
type TemplateBlockRequest struct {
	Ref                string `json:"ref"`
	Label              string `json:"label"`
	Kind               string `json:"kind"`
	StartOffsetMinutes int    `json:"start_offset_minutes"`
	EndOffsetMinutes   int    `json:"end_offset_minutes"`
}

// TemplateShiftRequest is one shift definition in CreateTemplateRequest.
// BlockRef names the block the shift is bound to; empty means the shift spans
// the whole event.
type TemplateShiftRequest struct {
	Role          string `json:"role"`
	RequiredCount int    `json:"required_count"`
	BlockRef      string `json:"block_ref,omitempty"`
}

// CreateTemplateRequest is the request body for POST /templates.
type CreateTemplateRequest struct {
	Name   string                 `json:"name"`
	Blocks []TemplateBlockRequest `json:"blocks"`
	Shifts []TemplateShiftRequest `json:"shifts"`
}

// Validate implements helpers.Validator. Structural checks only; semantic
// validation (offsets, kinds, headcounts) lives in the service.
func (r *CreateTemplateRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, "name is required")
	}
	if len(r.Shifts) == 0 {
		errs = append(errs, "at least one shift is required")
	}
	return errs
}

func (r *CreateTemplateRequest) toDomain() *domain.Template {
	tmpl := &domain.Template{Name: strings.TrimSpace(r.Name)}
	for i, b := range r.Blocks {
		ref := b.Ref
		if ref == "" {
			ref = b.Label
		}
		tmpl.Blocks = append(tmpl.Blocks, domain.TemplateTimeBlockDef{
			ID:          ref,
			Label:       b.Label,
			Kind:        domain.BlockKind(b.Kind),
			StartOffset: time.Duration(b.StartOffsetMinutes) * time.Minute,
			EndOffset:   time.Duration(b.EndOffsetMinutes) * time.Minute,
			Position:    i,
		})
	}
	for _, s := range r.Shifts {
		def := domain.TemplateShiftDef{Role: s.Role, RequiredCount: s.RequiredCount}
		if s.BlockRef != "" {
			ref := s.BlockRef
			def.BlockDefID = &ref
		}
		tmpl.Shifts = append(tmpl.Shifts, def)
	}
	return tmpl
}

// Create godoc
// @Summary Create a schedule template
// @Description Creates a reusable schedule template of anchor-relative time blocks and shift definitions. Organizer only. Templates are immutable once created.
// @Tags templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.CreateTemplateRequest true "Template definition"
// @Success 201 {object} helpers.APIResponse "data contains the created template"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /templates [post]
func (c *TemplateController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTemplateRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	tmpl, err := c.Service.CreateTemplate(r.Context(), req.toDomain(), actor)
	if err != nil {
		writeError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, tmpl)
}

// List godoc
// @Summary List schedule templates
// @Description Lists templates. Archived templates are hidden unless include_archived=true.
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Param include_archived query bool false "Include archived templates"
// @Success 200 {object} helpers.APIResponse "data is an array of templates"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /templates [get]
func (c *TemplateController) List(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("include_archived") == "true"
	templates, err := c.Service.ListTemplates(r.Context(), includeArchived)
	if err != nil {
		writeError(w, r, c.Logger, err)
		return
	}
	if templates == nil {
		templates = []*domain.Template{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, templates)
}

// Get godoc
// @Summary Get a template with its definitions
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Param templateID path string true "Template ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the template"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /templates/{templateID} [get]
func (c *TemplateController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "templateID")
	if !ok {
		return
	}
	tmpl, err := c.Service.GetTemplate(r.Context(), id)
	if err != nil {
		writeError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, tmpl)
}

// Archive godoc
// @Summary Archive a template
// @Description Hides the template from selection. Schedules already expanded from it are unaffected. Organizer only.
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Param templateID path string true "Template ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains status archived"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /templates/{templateID} [delete]
func (c *TemplateController) Archive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "templateID")
	if !ok {
		return
	}
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.ArchiveTemplate(r.Context(), id, actor); err != nil {
		writeError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "archived"})
}
