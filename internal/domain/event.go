package domain

import (
	"context"
	"time"
)

// EventInstance is one concrete occurrence of a club event (a performance
// night, an open rehearsal). It owns at most one generated schedule.
type EventInstance struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
	AnchorStart time.Time `json:"anchor_start"`
	NominalEnd  time.Time `json:"nominal_end"`
	HasSchedule bool      `json:"has_schedule"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NominalInterval returns the event's own time range, used as the fallback
// interval for shift slots that are not bound to a time block.
func (e *EventInstance) NominalInterval() Interval {
	return Interval{Start: e.AnchorStart, End: e.NominalEnd}
}

// EventInstanceRepository defines storage for event instances. The
// has_schedule flag is flipped inside the schedule repository's expansion
// and reset transactions, never directly.
type EventInstanceRepository interface {
	Create(ctx context.Context, event *EventInstance) error
	GetByID(ctx context.Context, id string) (*EventInstance, error)
	List(ctx context.Context) ([]*EventInstance, error)
}

// EventInstanceService defines event instance administration.
type EventInstanceService interface {
	CreateEventInstance(ctx context.Context, event *EventInstance, actor Actor) (*EventInstance, error)
	GetEventInstance(ctx context.Context, id string) (*EventInstance, error)
	ListEventInstances(ctx context.Context) ([]*EventInstance, error)
}
