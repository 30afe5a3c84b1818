package domain

import (
	"context"
	"time"
)

// WaitlistStatus is the lifecycle state of a waitlist entry.
// queued -> offered -> {confirmed | declined | expired}. confirmed and
// declined are terminal; expired is terminal for the entry but re-triggers
// promotion of the next queued entry.
type WaitlistStatus string

const (
	WaitlistQueued    WaitlistStatus = "queued"
	WaitlistOffered   WaitlistStatus = "offered"
	WaitlistConfirmed WaitlistStatus = "confirmed"
	WaitlistDeclined  WaitlistStatus = "declined"
	WaitlistExpired   WaitlistStatus = "expired"
)

// Valid reports whether s is a known waitlist status.
func (s WaitlistStatus) Valid() bool {
	switch s {
	case WaitlistQueued, WaitlistOffered, WaitlistConfirmed, WaitlistDeclined, WaitlistExpired:
		return true
	}
	return false
}

// Terminal reports whether the entry can transition no further.
func (s WaitlistStatus) Terminal() bool {
	return s == WaitlistConfirmed || s == WaitlistDeclined || s == WaitlistExpired
}

// WaitlistEntry is a queued candidate waiting for a seat on a full slot.
// FIFO order is enqueue time, ties broken by insertion sequence.
type WaitlistEntry struct {
	ID            string         `json:"id"`
	SlotID        string         `json:"slot_id"`
	Candidate     Candidate      `json:"candidate"`
	Status        WaitlistStatus `json:"status"`
	OfferDeadline *time.Time     `json:"offer_deadline,omitempty"`
	ConfirmToken  string         `json:"-"`
	EnqueuedAt    time.Time      `json:"enqueued_at"`
	Sequence      int64          `json:"-"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// OfferOutcome reports the result of responding to an offer. For replays
// against a terminal entry, Entry carries the final state and Assignment is
// nil unless the earlier accept created one.
type OfferOutcome struct {
	Entry      *WaitlistEntry `json:"entry"`
	Assignment *Assignment    `json:"assignment,omitempty"`
}

// WaitlistRepository defines storage for waitlist entries.
type WaitlistRepository interface {
	// Enqueue appends the entry at the FIFO tail. Returns
	// ErrDuplicateWaitlist if the candidate already has a queued or offered
	// entry on the slot.
	Enqueue(ctx context.Context, e *WaitlistEntry) error
	GetByID(ctx context.Context, id string) (*WaitlistEntry, error)
	GetByConfirmToken(ctx context.Context, token string) (*WaitlistEntry, error)
	// OfferNext atomically picks the FIFO head of the slot's queued entries
	// and transitions it to offered with the given deadline and token. It
	// returns (nil, nil) when the queue is empty, when an offer is already
	// outstanding on the slot, or when no committed seat is free anymore.
	OfferNext(ctx context.Context, slotID string, deadline time.Time, token string) (*WaitlistEntry, error)
	// ConfirmOffer transitions the offered entry to confirmed and inserts
	// the assignment in one transaction, rechecking slot capacity against
	// committed assignments only (the offer itself holds the seat).
	ConfirmOffer(ctx context.Context, entryID string, a *Assignment) error
	// MarkTerminal transitions from -> to, guarded on the current status.
	// Returns ErrInvariantViolation if the row is no longer in from.
	MarkTerminal(ctx context.Context, id string, from, to WaitlistStatus) error
	ListExpiredOffers(ctx context.Context, now time.Time) ([]*WaitlistEntry, error)
	// ListStalledSlots returns slots with queued entries, no outstanding
	// offer, and a free committed seat: queues whose promotion was lost
	// between a terminal transition and the follow-on offer.
	ListStalledSlots(ctx context.Context) ([]string, error)
	CountOutstandingOffers(ctx context.Context, slotID string) (int, error)
}

// WaitlistService is the waitlist promotion protocol.
type WaitlistService interface {
	// Enqueue joins the FIFO tail. Only valid against a slot with no
	// effective free capacity.
	Enqueue(ctx context.Context, slotID string, candidate Candidate) (*WaitlistEntry, error)
	// PromoteFreedSeat offers the freed seat to the FIFO head, if any.
	// Returns (nil, nil) when there is nothing to promote.
	PromoteFreedSeat(ctx context.Context, slotID string) (*WaitlistEntry, error)
	// RespondToOffer accepts or declines an outstanding offer. Responses to
	// terminal entries are idempotent no-ops reporting the final state.
	RespondToOffer(ctx context.Context, entryID string, accept bool) (*OfferOutcome, error)
	// SweepExpiredOffers expires overdue offers and cascades promotion. It
	// also re-drives promotion for stalled queues, so a promotion lost to a
	// crash or transient failure heals on the next sweep. Idempotent and
	// retry-safe; returns the number of entries expired.
	SweepExpiredOffers(ctx context.Context) (int, error)
}
