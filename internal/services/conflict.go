package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stagecrew/internal/domain"
)

type conflictService struct {
	assignmentRepo  domain.AssignmentRepository
	reservationRepo domain.ReservationRepository
}

// NewConflictService creates the advisory conflict detector.
func NewConflictService(
	assignmentRepo domain.AssignmentRepository,
	reservationRepo domain.ReservationRepository,
) domain.ConflictService {
	return &conflictService{
		assignmentRepo:  assignmentRepo,
		reservationRepo: reservationRepo,
	}
}

func (s *conflictService) CheckPersonConflicts(ctx context.Context, personID string, interval domain.Interval) ([]*domain.PersonConflict, error) {
	if personID == "" || !interval.Valid() {
		return nil, domain.ErrInvalidInput
	}
	commitments, err := s.assignmentRepo.ListCommittedIntervalsByPerson(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("list commitments: %w", err)
	}
	conflicts := []*domain.PersonConflict{}
	for _, c := range commitments {
		if c.Interval.Overlaps(interval) {
			conflicts = append(conflicts, &domain.PersonConflict{Commitment: c, Proposed: interval})
		}
	}
	return conflicts, nil
}

func (s *conflictService) CheckRoomConflict(ctx context.Context, roomID string, day time.Time, excludeInstanceID string) ([]*domain.RoomReservation, error) {
	if _, err := s.reservationRepo.GetRoomByID(ctx, roomID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("room %s: %w", roomID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get room: %w", err)
	}
	existing, err := s.reservationRepo.ListActiveRoomReservations(ctx, roomID, domain.DayOf(day), excludeInstanceID)
	if err != nil {
		return nil, fmt.Errorf("list room reservations: %w", err)
	}
	if existing == nil {
		existing = []*domain.RoomReservation{}
	}
	return existing, nil
}

func (s *conflictService) CheckResourceAvailability(ctx context.Context, resourceID string, day time.Time, requested int) (*domain.ResourceAvailability, error) {
	if requested <= 0 {
		return nil, fmt.Errorf("requested quantity must be positive: %w", domain.ErrInvalidInput)
	}
	res, err := s.reservationRepo.GetResourceByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("resource %s: %w", resourceID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get resource: %w", err)
	}
	reserved, err := s.reservationRepo.SumActiveResourceReservations(ctx, resourceID, domain.DayOf(day))
	if err != nil {
		return nil, fmt.Errorf("sum resource reservations: %w", err)
	}
	return &domain.ResourceAvailability{
		Resource:  res,
		Day:       domain.DayOf(day),
		Reserved:  reserved,
		Requested: requested,
		Exceeds:   reserved+requested > res.TotalQuantity,
	}, nil
}
