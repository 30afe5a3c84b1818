package domain

import (
	"context"
	"time"
)

// AssignmentStatus is the lifecycle state of an assignment. committed is the
// only non-terminal state; there are no reverse transitions.
type AssignmentStatus string

const (
	AssignmentCommitted AssignmentStatus = "committed"
	AssignmentCancelled AssignmentStatus = "cancelled"
	AssignmentAttended  AssignmentStatus = "attended"
	AssignmentNoShow    AssignmentStatus = "no_show"
)

// Valid reports whether s is a known assignment status.
func (s AssignmentStatus) Valid() bool {
	switch s {
	case AssignmentCommitted, AssignmentCancelled, AssignmentAttended, AssignmentNoShow:
		return true
	}
	return false
}

// Terminal reports whether s permits no further transitions.
func (s AssignmentStatus) Terminal() bool {
	return s != AssignmentCommitted
}

// CandidateKind distinguishes club members from external helpers.
type CandidateKind string

const (
	CandidateInternal CandidateKind = "internal"
	CandidateExternal CandidateKind = "external"
)

// Candidate is a tagged sum: exactly one of PersonID or RegistrantID is set,
// matching Kind. An assignment or waitlist entry belongs to exactly one
// candidate.
type Candidate struct {
	Kind         CandidateKind `json:"kind"`
	PersonID     string        `json:"person_id,omitempty"`
	RegistrantID string        `json:"registrant_id,omitempty"`
}

// NewInternalCandidate returns a Candidate for a club member.
func NewInternalCandidate(personID string) Candidate {
	return Candidate{Kind: CandidateInternal, PersonID: personID}
}

// NewExternalCandidate returns a Candidate for an external registrant.
func NewExternalCandidate(registrantID string) Candidate {
	return Candidate{Kind: CandidateExternal, RegistrantID: registrantID}
}

// Validate checks the tag and that exactly the matching id is set.
func (c Candidate) Validate() error {
	switch c.Kind {
	case CandidateInternal:
		if c.PersonID == "" || c.RegistrantID != "" {
			return ErrInvalidInput
		}
	case CandidateExternal:
		if c.RegistrantID == "" || c.PersonID != "" {
			return ErrInvalidInput
		}
	default:
		return ErrInvalidInput
	}
	return nil
}

// Assignment is one candidate's claim on one shift slot. Rows are never
// deleted outside a schedule reset; cancellation is a status transition so
// history stays intact for reporting.
type Assignment struct {
	ID              string           `json:"id"`
	SlotID          string           `json:"slot_id"`
	Candidate       Candidate        `json:"candidate"`
	Status          AssignmentStatus `json:"status"`
	CancelToken     string           `json:"-"`
	FeedbackToken   string           `json:"-"`
	FeedbackRating  *int             `json:"feedback_rating,omitempty"`
	FeedbackComment string           `json:"feedback_comment,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// PersonCommitment is one committed calendar item of a person, resolved to an
// absolute interval (the slot's time block, or the event's nominal range for
// block-less slots).
type PersonCommitment struct {
	AssignmentID string   `json:"assignment_id"`
	SlotID       string   `json:"slot_id"`
	Role         string   `json:"role"`
	EventID      string   `json:"event_id"`
	EventName    string   `json:"event_name"`
	Interval     Interval `json:"interval"`
}

// AssignmentReceipt is the result of creating an assignment: the row plus
// advisory conflict warnings that never block the write.
type AssignmentReceipt struct {
	Assignment *Assignment       `json:"assignment"`
	Warnings   []*PersonConflict `json:"warnings"`
}

// AssignmentRepository defines storage for assignments.
type AssignmentRepository interface {
	// CreateInSlot inserts the assignment after an in-transaction capacity
	// check on its slot. Effective capacity subtracts outstanding waitlist
	// offers so a direct registrant cannot take a seat held by an offer.
	// Returns ErrCapacityExceeded, ErrDuplicateAssignment, or ErrNotFound.
	CreateInSlot(ctx context.Context, a *Assignment) error
	GetByID(ctx context.Context, id string) (*Assignment, error)
	GetByCancelToken(ctx context.Context, token string) (*Assignment, error)
	GetByFeedbackToken(ctx context.Context, token string) (*Assignment, error)
	// UpdateStatus transitions from -> to, guarded on the current status.
	// Returns ErrInvariantViolation if the row is no longer in from.
	UpdateStatus(ctx context.Context, id string, from, to AssignmentStatus) error
	SaveFeedback(ctx context.Context, id string, rating int, comment string) error
	// ListCommittedIntervalsByPerson returns all committed assignments of a
	// person resolved to absolute intervals, for conflict detection.
	ListCommittedIntervalsByPerson(ctx context.Context, personID string) ([]*PersonCommitment, error)
}

// AssignmentService is the assignment lifecycle: create, cancel, and
// post-event attendance marking.
type AssignmentService interface {
	CreateAssignment(ctx context.Context, slotID string, candidate Candidate) (*AssignmentReceipt, error)
	// CancelAssignment transitions to cancelled and triggers waitlist
	// promotion for the freed seat. Cancelling an already-cancelled
	// assignment is a no-op that returns the row.
	CancelAssignment(ctx context.Context, assignmentID string) (*Assignment, error)
	// MarkAttendance sets attended or no_show. Organizer-only, post-event.
	MarkAttendance(ctx context.Context, assignmentID string, status AssignmentStatus, actor Actor) (*Assignment, error)
}
