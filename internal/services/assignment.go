package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"stagecrew/internal/domain"
)

type assignmentService struct {
	scheduleRepo   domain.ScheduleRepository
	eventRepo      domain.EventInstanceRepository
	assignmentRepo domain.AssignmentRepository
	conflicts      domain.ConflictService
	waitlist       domain.WaitlistService
	notifier       domain.Notifier
	clock          domain.Clock
	logger         *slog.Logger
}

// NewAssignmentService creates the assignment lifecycle service.
func NewAssignmentService(
	scheduleRepo domain.ScheduleRepository,
	eventRepo domain.EventInstanceRepository,
	assignmentRepo domain.AssignmentRepository,
	conflicts domain.ConflictService,
	waitlist domain.WaitlistService,
	notifier domain.Notifier,
	clock domain.Clock,
	logger *slog.Logger,
) domain.AssignmentService {
	return &assignmentService{
		scheduleRepo:   scheduleRepo,
		eventRepo:      eventRepo,
		assignmentRepo: assignmentRepo,
		conflicts:      conflicts,
		waitlist:       waitlist,
		notifier:       notifier,
		clock:          clock,
		logger:         logger,
	}
}

func (s *assignmentService) CreateAssignment(ctx context.Context, slotID string, candidate domain.Candidate) (*domain.AssignmentReceipt, error) {
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

	cancelToken, err := newOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("generate cancel token: %w", err)
	}
	feedbackToken, err := newOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("generate feedback token: %w", err)
	}

	a := &domain.Assignment{
		SlotID:        slot.ID,
		Candidate:     candidate,
		Status:        domain.AssignmentCommitted,
		CancelToken:   cancelToken,
		FeedbackToken: feedbackToken,
	}
	// The capacity and uniqueness checks live inside this call's
	// transaction; whoever loses the last-seat race gets a clean
	// ErrCapacityExceeded, never a partial write.
	if err := s.assignmentRepo.CreateInSlot(ctx, a); err != nil {
		return nil, err
	}

	receipt := &domain.AssignmentReceipt{Assignment: a, Warnings: []*domain.PersonConflict{}}

	// Advisory only. A failed conflict check never unwinds the write.
	if candidate.Kind == domain.CandidateInternal {
		window, err := slotWindow(ctx, s.scheduleRepo, s.eventRepo, slot)
		if err != nil {
			s.logger.WarnContext(ctx, "conflict window lookup failed", "slot_id", slot.ID, "err", err)
			return receipt, nil
		}
		warnings, err := s.conflicts.CheckPersonConflicts(ctx, candidate.PersonID, window)
		if err != nil {
			s.logger.WarnContext(ctx, "person conflict check failed", "person_id", candidate.PersonID, "err", err)
			return receipt, nil
		}
		// The freshly created assignment shows up in its own conflict scan.
		for _, w := range warnings {
			if w.Commitment.AssignmentID != a.ID {
				receipt.Warnings = append(receipt.Warnings, w)
			}
		}
	}
	return receipt, nil
}

func (s *assignmentService) CancelAssignment(ctx context.Context, assignmentID string) (*domain.Assignment, error) {
	a, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("assignment %s: %w", assignmentID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	// Replay: already cancelled reports success-with-status, not an error.
	if a.Status == domain.AssignmentCancelled {
		return a, nil
	}
	if a.Status.Terminal() {
		return nil, fmt.Errorf("assignment is %s and cannot be cancelled: %w", a.Status, domain.ErrInvariantViolation)
	}

	if err := s.assignmentRepo.UpdateStatus(ctx, a.ID, domain.AssignmentCommitted, domain.AssignmentCancelled); err != nil {
		return nil, fmt.Errorf("cancel assignment: %w", err)
	}
	a.Status = domain.AssignmentCancelled

	// The seat is free; hand it to the waitlist. Promotion failures are
	// logged, not surfaced: the cancellation has already committed.
	if _, err := s.waitlist.PromoteFreedSeat(ctx, a.SlotID); err != nil {
		s.logger.ErrorContext(ctx, "waitlist promotion after cancel failed", "slot_id", a.SlotID, "err", err)
	}

	s.notifyCancellation(ctx, a)
	return a, nil
}

func (s *assignmentService) notifyCancellation(ctx context.Context, a *domain.Assignment) {
	slot, err := s.scheduleRepo.GetSlotByID(ctx, a.SlotID)
	if err != nil {
		s.logger.WarnContext(ctx, "cancel notification skipped", "assignment_id", a.ID, "err", err)
		return
	}
	event, err := s.eventRepo.GetByID(ctx, slot.EventInstanceID)
	if err != nil {
		s.logger.WarnContext(ctx, "cancel notification skipped", "assignment_id", a.ID, "err", err)
		return
	}
	window, err := slotWindow(ctx, s.scheduleRepo, s.eventRepo, slot)
	if err != nil {
		window = event.NominalInterval()
	}
	if err := s.notifier.SendCancellationConfirmed(ctx, &domain.CancellationNotification{
		Candidate:  a.Candidate,
		Role:       slot.Role,
		EventName:  event.Name,
		ShiftStart: window.Start,
	}); err != nil {
		s.logger.WarnContext(ctx, "cancel notification failed", "assignment_id", a.ID, "err", err)
	}
}

func (s *assignmentService) MarkAttendance(ctx context.Context, assignmentID string, status domain.AssignmentStatus, actor domain.Actor) (*domain.Assignment, error) {
	if !actor.HasRole(domain.RoleOrganizer) {
		return nil, fmt.Errorf("attendance marking requires organizer role: %w", domain.ErrForbidden)
	}
	if status != domain.AssignmentAttended && status != domain.AssignmentNoShow {
		return nil, fmt.Errorf("attendance status must be attended or no_show: %w", domain.ErrInvalidInput)
	}
	a, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("assignment %s: %w", assignmentID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	if a.Status == status {
		return a, nil
	}
	if a.Status.Terminal() {
		return nil, fmt.Errorf("assignment is %s: %w", a.Status, domain.ErrInvariantViolation)
	}

	slot, err := s.scheduleRepo.GetSlotByID(ctx, a.SlotID)
	if err != nil {
		return nil, fmt.Errorf("get shift slot: %w", err)
	}
	window, err := slotWindow(ctx, s.scheduleRepo, s.eventRepo, slot)
	if err != nil {
		return nil, err
	}
	if s.clock.Now().Before(window.End) {
		return nil, fmt.Errorf("attendance can only be marked after the shift has ended: %w", domain.ErrPolicyWindowViolation)
	}

	if err := s.assignmentRepo.UpdateStatus(ctx, a.ID, domain.AssignmentCommitted, status); err != nil {
		return nil, fmt.Errorf("mark attendance: %w", err)
	}
	a.Status = status
	return a, nil
}
