package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stagecrew/internal/domain"
)

type eventInstanceService struct {
	eventRepo domain.EventInstanceRepository
}

// NewEventInstanceService creates the event instance administration service.
func NewEventInstanceService(eventRepo domain.EventInstanceRepository) domain.EventInstanceService {
	return &eventInstanceService{eventRepo: eventRepo}
}

func (s *eventInstanceService) CreateEventInstance(ctx context.Context, event *domain.EventInstance, actor domain.Actor) (*domain.EventInstance, error) {
	if !actor.HasRole(domain.RoleOrganizer) {
		return nil, fmt.Errorf("event creation requires organizer role: %w", domain.ErrForbidden)
	}
	if strings.TrimSpace(event.Name) == "" {
		return nil, fmt.Errorf("event name is required: %w", domain.ErrInvalidInput)
	}
	if event.AnchorStart.IsZero() || event.NominalEnd.IsZero() {
		return nil, fmt.Errorf("anchor start and nominal end are required: %w", domain.ErrInvalidInput)
	}
	if !event.NominalEnd.After(event.AnchorStart) {
		return nil, fmt.Errorf("event must end after it starts: %w", domain.ErrInvalidInput)
	}
	event.Date = domain.DayOf(event.AnchorStart)
	event.HasSchedule = false
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event instance: %w", err)
	}
	return event, nil
}

func (s *eventInstanceService) GetEventInstance(ctx context.Context, id string) (*domain.EventInstance, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event instance: %w", err)
	}
	return event, nil
}

func (s *eventInstanceService) ListEventInstances(ctx context.Context) ([]*domain.EventInstance, error) {
	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list event instances: %w", err)
	}
	if events == nil {
		events = []*domain.EventInstance{}
	}
	return events, nil
}
