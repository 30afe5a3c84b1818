package services

import (
	"context"
	"fmt"

	"stagecrew/internal/domain"
)

// slotWindow resolves a slot to its effective absolute interval: the bound
// time block when there is one, otherwise the parent event's nominal range.
// Cutoff and deadline policy is computed against this interval.
func slotWindow(ctx context.Context, scheduleRepo domain.ScheduleRepository, eventRepo domain.EventInstanceRepository, slot *domain.ShiftSlot) (domain.Interval, error) {
	if slot.TimeBlockID != nil {
		block, err := scheduleRepo.GetBlockByID(ctx, *slot.TimeBlockID)
		if err != nil {
			return domain.Interval{}, fmt.Errorf("get time block: %w", err)
		}
		return block.Interval(), nil
	}
	event, err := eventRepo.GetByID(ctx, slot.EventInstanceID)
	if err != nil {
		return domain.Interval{}, fmt.Errorf("get event: %w", err)
	}
	return event.NominalInterval(), nil
}
