package services

import (
	"context"
	"errors"
	"fmt"

	"stagecrew/internal/domain"
)

type expansionService struct {
	templateRepo domain.TemplateRepository
	eventRepo    domain.EventInstanceRepository
	scheduleRepo domain.ScheduleRepository
}

// NewExpansionService creates the template expansion engine.
func NewExpansionService(
	templateRepo domain.TemplateRepository,
	eventRepo domain.EventInstanceRepository,
	scheduleRepo domain.ScheduleRepository,
) domain.ExpansionService {
	return &expansionService{
		templateRepo: templateRepo,
		eventRepo:    eventRepo,
		scheduleRepo: scheduleRepo,
	}
}

func (s *expansionService) ExpandTemplate(ctx context.Context, templateID, instanceID string) (*domain.ExpansionResult, error) {
	tmpl, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("template %s: %w", templateID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	if tmpl.Archived {
		return nil, fmt.Errorf("template %s is archived: %w", templateID, domain.ErrInvalidInput)
	}

	event, err := s.eventRepo.GetByID(ctx, instanceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("event instance %s: %w", instanceID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get event instance: %w", err)
	}
	if event.AnchorStart.IsZero() {
		return nil, fmt.Errorf("event instance has no anchor start time: %w", domain.ErrInvalidInput)
	}
	// Cheap pre-check; the schedule repository re-verifies inside the
	// expansion transaction, which is the authoritative guard.
	if event.HasSchedule {
		return nil, fmt.Errorf("schedule already generated for instance %s: %w", instanceID, domain.ErrInvariantViolation)
	}

	plan, result, err := buildExpansionPlan(tmpl, event)
	if err != nil {
		return nil, err
	}

	if err := s.scheduleRepo.CreateSchedule(ctx, instanceID, plan); err != nil {
		return nil, fmt.Errorf("create schedule: %w", err)
	}
	return result, nil
}

// buildExpansionPlan computes the concrete rows for one expansion: absolute
// block times from anchor + offset in definition order, and slot seeds bound
// to their block by index.
func buildExpansionPlan(tmpl *domain.Template, event *domain.EventInstance) (*domain.ExpansionPlan, *domain.ExpansionResult, error) {
	blockIndexByDefID := make(map[string]int, len(tmpl.Blocks))
	blocks := make([]*domain.TimeBlock, 0, len(tmpl.Blocks))
	for i, def := range tmpl.Blocks {
		start := event.AnchorStart.Add(def.StartOffset)
		end := event.AnchorStart.Add(def.EndOffset)
		if !end.After(start) {
			return nil, nil, fmt.Errorf("block %q has a non-positive duration: %w", def.Label, domain.ErrInvalidInput)
		}
		blocks = append(blocks, &domain.TimeBlock{
			EventInstanceID: event.ID,
			Label:           def.Label,
			Kind:            def.Kind,
			StartTime:       start,
			EndTime:         end,
			Position:        def.Position,
		})
		blockIndexByDefID[def.ID] = i
	}

	slots := make([]domain.ShiftSlotSeed, 0, len(tmpl.Shifts))
	headcount := 0
	for _, def := range tmpl.Shifts {
		if def.RequiredCount <= 0 {
			return nil, nil, fmt.Errorf("shift %q requires a positive headcount: %w", def.Role, domain.ErrInvalidInput)
		}
		seed := domain.ShiftSlotSeed{Role: def.Role, RequiredCount: def.RequiredCount}
		if def.BlockDefID != nil {
			idx, ok := blockIndexByDefID[*def.BlockDefID]
			if !ok {
				return nil, nil, fmt.Errorf("shift %q references unknown block definition: %w", def.Role, domain.ErrInvalidInput)
			}
			seed.BlockIndex = &idx
		}
		slots = append(slots, seed)
		headcount += def.RequiredCount
	}

	plan := &domain.ExpansionPlan{Blocks: blocks, Slots: slots}
	result := &domain.ExpansionResult{
		BlocksCreated:     len(blocks),
		SlotsCreated:      len(slots),
		RequiredHeadcount: headcount,
	}
	return plan, result, nil
}

func (s *expansionService) ResetSchedule(ctx context.Context, instanceID string, actor domain.Actor) error {
	if !actor.HasRole(domain.RoleOrganizer) {
		return fmt.Errorf("schedule reset requires organizer role: %w", domain.ErrForbidden)
	}
	event, err := s.eventRepo.GetByID(ctx, instanceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("event instance %s: %w", instanceID, domain.ErrNotFound)
		}
		return fmt.Errorf("get event instance: %w", err)
	}
	if !event.HasSchedule {
		return fmt.Errorf("event instance %s has no generated schedule: %w", instanceID, domain.ErrInvalidInput)
	}
	if err := s.scheduleRepo.ResetSchedule(ctx, instanceID); err != nil {
		return fmt.Errorf("reset schedule: %w", err)
	}
	return nil
}

func (s *expansionService) GetSchedule(ctx context.Context, instanceID string) (*domain.EventSchedule, error) {
	event, err := s.eventRepo.GetByID(ctx, instanceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event instance: %w", err)
	}
	blocks, err := s.scheduleRepo.ListBlocksByInstance(ctx, instanceID)
	if err != nil {
		return nil, fmt.Errorf("list time blocks: %w", err)
	}
	slots, err := s.scheduleRepo.ListSlotsByInstance(ctx, instanceID)
	if err != nil {
		return nil, fmt.Errorf("list shift slots: %w", err)
	}
	if blocks == nil {
		blocks = []*domain.TimeBlock{}
	}
	if slots == nil {
		slots = []*domain.ShiftSlot{}
	}
	return &domain.EventSchedule{Event: event, Blocks: blocks, Slots: slots}, nil
}
