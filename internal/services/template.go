package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stagecrew/internal/domain"
)

type templateService struct {
	templateRepo domain.TemplateRepository
}

// NewTemplateService creates the template administration service.
func NewTemplateService(templateRepo domain.TemplateRepository) domain.TemplateService {
	return &templateService{templateRepo: templateRepo}
}

func (s *templateService) CreateTemplate(ctx context.Context, tmpl *domain.Template, actor domain.Actor) (*domain.Template, error) {
	if !actor.HasRole(domain.RoleOrganizer) {
		return nil, fmt.Errorf("template creation requires organizer role: %w", domain.ErrForbidden)
	}
	if err := validateTemplate(tmpl); err != nil {
		return nil, err
	}
	if err := s.templateRepo.Create(ctx, tmpl); err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return tmpl, nil
}

func validateTemplate(tmpl *domain.Template) error {
	if strings.TrimSpace(tmpl.Name) == "" {
		return fmt.Errorf("template name is required: %w", domain.ErrInvalidInput)
	}
	blockPositions := make(map[int]struct{}, len(tmpl.Blocks))
	for i := range tmpl.Blocks {
		def := &tmpl.Blocks[i]
		if strings.TrimSpace(def.Label) == "" {
			return fmt.Errorf("block %d needs a label: %w", i, domain.ErrInvalidInput)
		}
		if !def.Kind.Valid() {
			return fmt.Errorf("block %q has unknown kind %q: %w", def.Label, def.Kind, domain.ErrInvalidInput)
		}
		if def.EndOffset <= def.StartOffset {
			return fmt.Errorf("block %q must end after it starts: %w", def.Label, domain.ErrInvalidInput)
		}
		if _, dup := blockPositions[def.Position]; dup {
			return fmt.Errorf("duplicate block position %d: %w", def.Position, domain.ErrInvalidInput)
		}
		blockPositions[def.Position] = struct{}{}
	}
	for i := range tmpl.Shifts {
		def := &tmpl.Shifts[i]
		if strings.TrimSpace(def.Role) == "" {
			return fmt.Errorf("shift %d needs a role label: %w", i, domain.ErrInvalidInput)
		}
		if def.RequiredCount <= 0 {
			return fmt.Errorf("shift %q requires a positive headcount: %w", def.Role, domain.ErrInvalidInput)
		}
	}
	return nil
}

func (s *templateService) GetTemplate(ctx context.Context, id string) (*domain.Template, error) {
	tmpl, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	return tmpl, nil
}

func (s *templateService) ListTemplates(ctx context.Context, includeArchived bool) ([]*domain.Template, error) {
	templates, err := s.templateRepo.List(ctx, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	if templates == nil {
		templates = []*domain.Template{}
	}
	return templates, nil
}

func (s *templateService) ArchiveTemplate(ctx context.Context, id string, actor domain.Actor) error {
	if !actor.HasRole(domain.RoleOrganizer) {
		return fmt.Errorf("template archiving requires organizer role: %w", domain.ErrForbidden)
	}
	if err := s.templateRepo.Archive(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("archive template: %w", err)
	}
	return nil
}
