package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stagecrew/internal/domain"
)

type tokenService struct {
	assignmentRepo domain.AssignmentRepository
	waitlistRepo   domain.WaitlistRepository
	scheduleRepo   domain.ScheduleRepository
	eventRepo      domain.EventInstanceRepository
	assignments    domain.AssignmentService
	waitlist       domain.WaitlistService
	clock          domain.Clock
	cancelCutoff   time.Duration
	feedbackGrace  time.Duration
}

// NewTokenService creates the token gateway. cancelCutoff is the window
// before a shift's effective start inside which self-service cancellation is
// refused; feedbackGrace is how long after the shift feedback stays open.
func NewTokenService(
	assignmentRepo domain.AssignmentRepository,
	waitlistRepo domain.WaitlistRepository,
	scheduleRepo domain.ScheduleRepository,
	eventRepo domain.EventInstanceRepository,
	assignments domain.AssignmentService,
	waitlist domain.WaitlistService,
	clock domain.Clock,
	cancelCutoff time.Duration,
	feedbackGrace time.Duration,
) domain.TokenService {
	return &tokenService{
		assignmentRepo: assignmentRepo,
		waitlistRepo:   waitlistRepo,
		scheduleRepo:   scheduleRepo,
		eventRepo:      eventRepo,
		assignments:    assignments,
		waitlist:       waitlist,
		clock:          clock,
		cancelCutoff:   cancelCutoff,
		feedbackGrace:  feedbackGrace,
	}
}

func (s *tokenService) ResolveToken(ctx context.Context, kind domain.TokenKind, token string) (*domain.TokenResolution, error) {
	if !kind.Valid() || token == "" {
		return nil, domain.ErrInvalidInput
	}
	switch kind {
	case domain.TokenKindCancel:
		return s.resolveCancel(ctx, token)
	case domain.TokenKindConfirm:
		return s.resolveConfirm(ctx, token)
	default:
		return s.resolveFeedback(ctx, token)
	}
}

// resolveCancel separates existence from permission: an unknown token is
// ErrNotFound, a known token whose window has closed resolves with a reason.
func (s *tokenService) resolveCancel(ctx context.Context, token string) (*domain.TokenResolution, error) {
	a, err := s.assignmentRepo.GetByCancelToken(ctx, token)
	if err != nil {
		return nil, err
	}
	res := &domain.TokenResolution{Kind: domain.TokenKindCancel, Assignment: a}
	if a.Status == domain.AssignmentCancelled {
		res.Reason = "already cancelled"
		return res, nil
	}
	if a.Status.Terminal() {
		res.Reason = fmt.Sprintf("assignment is %s", a.Status)
		return res, nil
	}
	if err := s.checkCancelWindow(ctx, a); err != nil {
		if errors.Is(err, domain.ErrPolicyWindowViolation) {
			res.Reason = "cancellation window has closed, please contact the organizer"
			return res, nil
		}
		return nil, err
	}
	res.Allowed = true
	return res, nil
}

func (s *tokenService) resolveConfirm(ctx context.Context, token string) (*domain.TokenResolution, error) {
	e, err := s.waitlistRepo.GetByConfirmToken(ctx, token)
	if err != nil {
		return nil, err
	}
	res := &domain.TokenResolution{Kind: domain.TokenKindConfirm, WaitlistEntry: e}
	if e.Status.Terminal() {
		res.Reason = fmt.Sprintf("offer already %s", e.Status)
		return res, nil
	}
	if e.Status != domain.WaitlistOffered {
		res.Reason = "no outstanding offer"
		return res, nil
	}
	if e.OfferDeadline != nil && !s.clock.Now().Before(*e.OfferDeadline) {
		res.Reason = "offer deadline has passed"
		return res, nil
	}
	res.Allowed = true
	return res, nil
}

func (s *tokenService) resolveFeedback(ctx context.Context, token string) (*domain.TokenResolution, error) {
	a, err := s.assignmentRepo.GetByFeedbackToken(ctx, token)
	if err != nil {
		return nil, err
	}
	res := &domain.TokenResolution{Kind: domain.TokenKindFeedback, Assignment: a}
	if a.Status == domain.AssignmentCancelled {
		res.Reason = "assignment was cancelled"
		return res, nil
	}
	if a.FeedbackRating != nil {
		res.Reason = "feedback already submitted"
		return res, nil
	}
	if err := s.checkFeedbackWindow(ctx, a); err != nil {
		if errors.Is(err, domain.ErrPolicyWindowViolation) {
			res.Reason = "feedback is not open"
			return res, nil
		}
		return nil, err
	}
	res.Allowed = true
	return res, nil
}

// checkCancelWindow enforces the cutoff against the slot's effective start:
// the bound block's start when there is one, the event anchor otherwise.
func (s *tokenService) checkCancelWindow(ctx context.Context, a *domain.Assignment) error {
	window, err := s.assignmentWindow(ctx, a)
	if err != nil {
		return err
	}
	if !s.clock.Now().Before(window.Start.Add(-s.cancelCutoff)) {
		return fmt.Errorf("within %s of shift start: %w", s.cancelCutoff, domain.ErrPolicyWindowViolation)
	}
	return nil
}

func (s *tokenService) checkFeedbackWindow(ctx context.Context, a *domain.Assignment) error {
	window, err := s.assignmentWindow(ctx, a)
	if err != nil {
		return err
	}
	now := s.clock.Now()
	if now.Before(window.End) {
		return fmt.Errorf("feedback opens after the shift: %w", domain.ErrPolicyWindowViolation)
	}
	if now.After(window.End.Add(s.feedbackGrace)) {
		return fmt.Errorf("feedback period has closed: %w", domain.ErrPolicyWindowViolation)
	}
	return nil
}

func (s *tokenService) assignmentWindow(ctx context.Context, a *domain.Assignment) (domain.Interval, error) {
	slot, err := s.scheduleRepo.GetSlotByID(ctx, a.SlotID)
	if err != nil {
		return domain.Interval{}, fmt.Errorf("get shift slot: %w", err)
	}
	return slotWindow(ctx, s.scheduleRepo, s.eventRepo, slot)
}

func (s *tokenService) CancelByToken(ctx context.Context, token string) (*domain.Assignment, error) {
	a, err := s.assignmentRepo.GetByCancelToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if a.Status == domain.AssignmentCancelled {
		return a, nil
	}
	if a.Status.Terminal() {
		return nil, fmt.Errorf("assignment is %s: %w", a.Status, domain.ErrInvariantViolation)
	}
	if err := s.checkCancelWindow(ctx, a); err != nil {
		return nil, err
	}
	return s.assignments.CancelAssignment(ctx, a.ID)
}

func (s *tokenService) ConfirmOfferByToken(ctx context.Context, token string) (*domain.OfferOutcome, error) {
	e, err := s.waitlistRepo.GetByConfirmToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if e.Status.Terminal() {
		return &domain.OfferOutcome{Entry: e}, nil
	}
	// A stale offer is rejected here even if the background expiry has not
	// caught it yet. The deadline instant itself is already too late.
	if e.OfferDeadline != nil && !s.clock.Now().Before(*e.OfferDeadline) {
		return nil, fmt.Errorf("offer deadline has passed: %w", domain.ErrPolicyWindowViolation)
	}
	return s.waitlist.RespondToOffer(ctx, e.ID, true)
}

func (s *tokenService) DeclineOfferByToken(ctx context.Context, token string) (*domain.OfferOutcome, error) {
	e, err := s.waitlistRepo.GetByConfirmToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if e.Status.Terminal() {
		return &domain.OfferOutcome{Entry: e}, nil
	}
	return s.waitlist.RespondToOffer(ctx, e.ID, false)
}

func (s *tokenService) SubmitFeedbackByToken(ctx context.Context, token string, rating int, comment string) (*domain.Assignment, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5: %w", domain.ErrInvalidInput)
	}
	a, err := s.assignmentRepo.GetByFeedbackToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if a.Status == domain.AssignmentCancelled {
		return nil, fmt.Errorf("assignment was cancelled: %w", domain.ErrInvalidInput)
	}
	if a.FeedbackRating != nil {
		// Replay: report the stored feedback rather than erroring.
		return a, nil
	}
	if err := s.checkFeedbackWindow(ctx, a); err != nil {
		return nil, err
	}
	if err := s.assignmentRepo.SaveFeedback(ctx, a.ID, rating, comment); err != nil {
		return nil, fmt.Errorf("save feedback: %w", err)
	}
	a.FeedbackRating = &rating
	a.FeedbackComment = comment
	return a, nil
}
