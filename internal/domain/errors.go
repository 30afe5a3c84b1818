package domain

import "errors"

// Sentinel errors shared across the engine. Services return these (possibly
// wrapped with %w); the delivery layer maps them to API error codes.
var (
	ErrNotFound               = errors.New("not found")
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidInput           = errors.New("invalid input")
	ErrCapacityExceeded       = errors.New("shift slot is full")
	ErrDuplicateAssignment    = errors.New("candidate already assigned to this slot")
	ErrDuplicateWaitlist      = errors.New("candidate already waitlisted for this slot")
	ErrPolicyWindowViolation  = errors.New("action not permitted in the current time window")
	ErrInvariantViolation     = errors.New("invariant violation")
	ErrRoomUnavailable        = errors.New("room already reserved for that day")
	ErrResourceOversubscribed = errors.New("resource quantity oversubscribed for that day")
)
