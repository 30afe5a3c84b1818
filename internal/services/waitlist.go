package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"stagecrew/internal/domain"
)

type waitlistService struct {
	scheduleRepo   domain.ScheduleRepository
	eventRepo      domain.EventInstanceRepository
	waitlistRepo   domain.WaitlistRepository
	notifier       domain.Notifier
	clock          domain.Clock
	responseWindow time.Duration
	logger         *slog.Logger
}

// NewWaitlistService creates the waitlist promotion protocol. responseWindow
// bounds how long an offered candidate may hold a freed seat.
func NewWaitlistService(
	scheduleRepo domain.ScheduleRepository,
	eventRepo domain.EventInstanceRepository,
	waitlistRepo domain.WaitlistRepository,
	notifier domain.Notifier,
	clock domain.Clock,
	responseWindow time.Duration,
	logger *slog.Logger,
) domain.WaitlistService {
	return &waitlistService{
		scheduleRepo:   scheduleRepo,
		eventRepo:      eventRepo,
		waitlistRepo:   waitlistRepo,
		notifier:       notifier,
		clock:          clock,
		responseWindow: responseWindow,
		logger:         logger,
	}
}

func (s *waitlistService) Enqueue(ctx context.Context, slotID string, candidate domain.Candidate) (*domain.WaitlistEntry, error) {
	if err := candidate.Validate(); err != nil {
		return nil, fmt.Errorf("candidate: %w", err)
	}
	slot, err := s.scheduleRepo.GetSlotByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("shift slot %s: %w", slotID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get shift slot: %w", err)
	}

	offers, err := s.waitlistRepo.CountOutstandingOffers(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("count outstanding offers: %w", err)
	}
	// The waitlist is only for slots with no effective free capacity. Seats
	// held by outstanding offers count as taken.
	if slot.FilledCount+offers < slot.RequiredCount {
		return nil, fmt.Errorf("slot has open seats, register directly: %w", domain.ErrInvalidInput)
	}

	e := &domain.WaitlistEntry{
		SlotID:     slot.ID,
		Candidate:  candidate,
		Status:     domain.WaitlistQueued,
		EnqueuedAt: s.clock.Now(),
	}
	if err := s.waitlistRepo.Enqueue(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *waitlistService) PromoteFreedSeat(ctx context.Context, slotID string) (*domain.WaitlistEntry, error) {
	slot, err := s.scheduleRepo.GetSlotByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("shift slot %s: %w", slotID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get shift slot: %w", err)
	}
	window, err := slotWindow(ctx, s.scheduleRepo, s.eventRepo, slot)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	// A seat freed after the shift started has nobody left to promote to.
	if !now.Before(window.Start) {
		return nil, nil
	}
	// The offer must never outlive the shift start.
	deadline := now.Add(s.responseWindow)
	if deadline.After(window.Start) {
		deadline = window.Start
	}

	token, err := newOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("generate confirm token: %w", err)
	}
	entry, err := s.waitlistRepo.OfferNext(ctx, slotID, deadline, token)
	if err != nil {
		return nil, fmt.Errorf("offer next: %w", err)
	}
	if entry == nil {
		// Queue empty, or an offer is already outstanding.
		return nil, nil
	}

	event, err := s.eventRepo.GetByID(ctx, slot.EventInstanceID)
	eventName := ""
	if err == nil {
		eventName = event.Name
	}
	if err := s.notifier.SendOffer(ctx, &domain.OfferNotification{
		Candidate:    entry.Candidate,
		Role:         slot.Role,
		EventName:    eventName,
		ShiftStart:   window.Start,
		Deadline:     deadline,
		ConfirmToken: token,
	}); err != nil {
		s.logger.WarnContext(ctx, "offer notification failed", "entry_id", entry.ID, "err", err)
	}
	return entry, nil
}

func (s *waitlistService) RespondToOffer(ctx context.Context, entryID string, accept bool) (*domain.OfferOutcome, error) {
	entry, err := s.waitlistRepo.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("waitlist entry %s: %w", entryID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get waitlist entry: %w", err)
	}
	// Double-click or duplicate webhook: report the final state, do not error.
	if entry.Status.Terminal() {
		return &domain.OfferOutcome{Entry: entry}, nil
	}
	if entry.Status != domain.WaitlistOffered {
		return nil, fmt.Errorf("entry has no outstanding offer: %w", domain.ErrInvalidInput)
	}

	if accept {
		return s.acceptOffer(ctx, entry)
	}
	return s.declineOffer(ctx, entry)
}

func (s *waitlistService) acceptOffer(ctx context.Context, entry *domain.WaitlistEntry) (*domain.OfferOutcome, error) {
	// The deadline itself is out of bounds: clamped offers expire exactly at
	// the shift start, and an accept at that instant must not slip through.
	if entry.OfferDeadline != nil && !s.clock.Now().Before(*entry.OfferDeadline) {
		return nil, fmt.Errorf("offer deadline has passed: %w", domain.ErrPolicyWindowViolation)
	}

	cancelToken, err := newOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("generate cancel token: %w", err)
	}
	feedbackToken, err := newOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("generate feedback token: %w", err)
	}
	a := &domain.Assignment{
		SlotID:        entry.SlotID,
		Candidate:     entry.Candidate,
		Status:        domain.AssignmentCommitted,
		CancelToken:   cancelToken,
		FeedbackToken: feedbackToken,
	}
	// Confirmation and assignment creation are one transaction, rechecking
	// capacity against committed seats (the offer held this one).
	if err := s.waitlistRepo.ConfirmOffer(ctx, entry.ID, a); err != nil {
		return nil, err
	}
	entry.Status = domain.WaitlistConfirmed
	entry.OfferDeadline = nil
	return &domain.OfferOutcome{Entry: entry, Assignment: a}, nil
}

func (s *waitlistService) declineOffer(ctx context.Context, entry *domain.WaitlistEntry) (*domain.OfferOutcome, error) {
	if err := s.waitlistRepo.MarkTerminal(ctx, entry.ID, domain.WaitlistOffered, domain.WaitlistDeclined); err != nil {
		return nil, fmt.Errorf("decline offer: %w", err)
	}
	entry.Status = domain.WaitlistDeclined
	entry.OfferDeadline = nil

	// The seat is free again; cascade to the next queued entry.
	if _, err := s.PromoteFreedSeat(ctx, entry.SlotID); err != nil {
		s.logger.ErrorContext(ctx, "cascade after decline failed", "slot_id", entry.SlotID, "err", err)
	}
	return &domain.OfferOutcome{Entry: entry}, nil
}

func (s *waitlistService) SweepExpiredOffers(ctx context.Context) (int, error) {
	overdue, err := s.waitlistRepo.ListExpiredOffers(ctx, s.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("list expired offers: %w", err)
	}

	expired := 0
	for _, entry := range overdue {
		// Guarded transition: if the entry was confirmed or declined between
		// the list and this update, the sweep skips it. Re-running a sweep
		// over already-processed entries is a no-op.
		if err := s.waitlistRepo.MarkTerminal(ctx, entry.ID, domain.WaitlistOffered, domain.WaitlistExpired); err != nil {
			if errors.Is(err, domain.ErrInvariantViolation) {
				continue
			}
			return expired, fmt.Errorf("expire entry %s: %w", entry.ID, err)
		}
		expired++

		s.notifyExpiry(ctx, entry)
		if _, err := s.PromoteFreedSeat(ctx, entry.SlotID); err != nil {
			s.logger.ErrorContext(ctx, "cascade after expiry failed", "slot_id", entry.SlotID, "err", err)
		}
	}

	// A promotion lost between a terminal transition and its offer (crash,
	// transient failure) leaves a freed seat unoffered with a non-empty
	// queue. Promotion is idempotent, so re-driving every stalled slot here
	// makes the sweep self-healing.
	stalled, err := s.waitlistRepo.ListStalledSlots(ctx)
	if err != nil {
		return expired, fmt.Errorf("list stalled slots: %w", err)
	}
	for _, slotID := range stalled {
		if _, err := s.PromoteFreedSeat(ctx, slotID); err != nil {
			s.logger.ErrorContext(ctx, "stalled promotion failed", "slot_id", slotID, "err", err)
		}
	}
	return expired, nil
}

func (s *waitlistService) notifyExpiry(ctx context.Context, entry *domain.WaitlistEntry) {
	slot, err := s.scheduleRepo.GetSlotByID(ctx, entry.SlotID)
	if err != nil {
		s.logger.WarnContext(ctx, "expiry notification skipped", "entry_id", entry.ID, "err", err)
		return
	}
	eventName := ""
	if event, err := s.eventRepo.GetByID(ctx, slot.EventInstanceID); err == nil {
		eventName = event.Name
	}
	if err := s.notifier.SendOfferExpired(ctx, &domain.OfferExpiredNotification{
		Candidate: entry.Candidate,
		Role:      slot.Role,
		EventName: eventName,
	}); err != nil {
		s.logger.WarnContext(ctx, "expiry notification failed", "entry_id", entry.ID, "err", err)
	}
}
