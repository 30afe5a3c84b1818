package domain

import (
	"context"
	"time"
)

// TimeBlock is a concrete, absolute-time segment of one event, generated from
// a TemplateTimeBlockDef by the expansion engine.
type TimeBlock struct {
	ID              string    `json:"id"`
	EventInstanceID string    `json:"event_instance_id"`
	Label           string    `json:"label"`
	Kind            BlockKind `json:"kind"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Position        int       `json:"position"`
}

// Interval returns the block's half-open time range.
func (b *TimeBlock) Interval() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}

// ShiftSlot is a staffing need within an event. FilledCount is derived: the
// number of non-cancelled assignments on the slot.
type ShiftSlot struct {
	ID              string  `json:"id"`
	EventInstanceID string  `json:"event_instance_id"`
	TimeBlockID     *string `json:"time_block_id,omitempty"`
	Role            string  `json:"role"`
	RequiredCount   int     `json:"required_count"`
	FilledCount     int     `json:"filled_count"`
}

// ShiftSlotSeed describes one slot to create during expansion. BlockIndex
// points into the expansion's block slice; nil means a block-less slot.
type ShiftSlotSeed struct {
	Role          string
	RequiredCount int
	BlockIndex    *int
}

// ExpansionPlan is the full set of rows one expansion creates, wired
// together by index because ids do not exist until insert.
type ExpansionPlan struct {
	Blocks []*TimeBlock
	Slots  []ShiftSlotSeed
}

// ExpansionResult summarizes what an expansion created, for confirmation UI.
type ExpansionResult struct {
	BlocksCreated     int `json:"blocks_created"`
	SlotsCreated      int `json:"slots_created"`
	RequiredHeadcount int `json:"required_headcount"`
}

// EventSchedule is the generated schedule of one event instance.
type EventSchedule struct {
	Event  *EventInstance `json:"event"`
	Blocks []*TimeBlock   `json:"blocks"`
	Slots  []*ShiftSlot   `json:"slots"`
}

// ScheduleRepository defines storage for generated time blocks and shift
// slots. CreateSchedule and ResetSchedule are each one atomic unit.
type ScheduleRepository interface {
	// CreateSchedule inserts all blocks and slots of the plan and sets the
	// instance's has_schedule flag, all in one transaction. It returns
	// ErrInvariantViolation if the instance already has a schedule.
	CreateSchedule(ctx context.Context, instanceID string, plan *ExpansionPlan) error
	// ResetSchedule deletes the instance's waitlist entries, assignments,
	// shift slots, and time blocks and clears has_schedule, all in one
	// transaction.
	ResetSchedule(ctx context.Context, instanceID string) error
	GetSlotByID(ctx context.Context, id string) (*ShiftSlot, error)
	GetBlockByID(ctx context.Context, id string) (*TimeBlock, error)
	ListBlocksByInstance(ctx context.Context, instanceID string) ([]*TimeBlock, error)
	ListSlotsByInstance(ctx context.Context, instanceID string) ([]*ShiftSlot, error)
}

// ExpansionService turns a template plus an event anchor into concrete
// schedule rows, and tears a generated schedule down again.
type ExpansionService interface {
	ExpandTemplate(ctx context.Context, templateID, instanceID string) (*ExpansionResult, error)
	ResetSchedule(ctx context.Context, instanceID string, actor Actor) error
	GetSchedule(ctx context.Context, instanceID string) (*EventSchedule, error)
}
