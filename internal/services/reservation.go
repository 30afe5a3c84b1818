package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stagecrew/internal/domain"
)

type reservationService struct {
	eventRepo       domain.EventInstanceRepository
	reservationRepo domain.ReservationRepository
}

// NewReservationService creates the room/resource reservation service.
func NewReservationService(
	eventRepo domain.EventInstanceRepository,
	reservationRepo domain.ReservationRepository,
) domain.ReservationService {
	return &reservationService{
		eventRepo:       eventRepo,
		reservationRepo: reservationRepo,
	}
}

func (s *reservationService) CreateRoom(ctx context.Context, name string, actor domain.Actor) (*domain.Room, error) {
	if !actor.HasRole(domain.RoleOrganizer) {
		return nil, domain.ErrForbidden
	}
	if name == "" {
		return nil, fmt.Errorf("room name is required: %w", domain.ErrInvalidInput)
	}
	room := &domain.Room{Name: name}
	if err := s.reservationRepo.CreateRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	return room, nil
}

func (s *reservationService) ListRooms(ctx context.Context) ([]*domain.Room, error) {
	return s.reservationRepo.ListRooms(ctx)
}

func (s *reservationService) CreateResource(ctx context.Context, name string, totalQuantity int, actor domain.Actor) (*domain.Resource, error) {
	if !actor.HasRole(domain.RoleOrganizer) {
		return nil, domain.ErrForbidden
	}
	if name == "" {
		return nil, fmt.Errorf("resource name is required: %w", domain.ErrInvalidInput)
	}
	if totalQuantity <= 0 {
		return nil, fmt.Errorf("total quantity must be positive: %w", domain.ErrInvalidInput)
	}
	res := &domain.Resource{Name: name, TotalQuantity: totalQuantity}
	if err := s.reservationRepo.CreateResource(ctx, res); err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}
	return res, nil
}

func (s *reservationService) ListResources(ctx context.Context) ([]*domain.Resource, error) {
	return s.reservationRepo.ListResources(ctx)
}

func (s *reservationService) ReserveRoom(ctx context.Context, instanceID, roomID string, day time.Time) (*domain.RoomReservation, error) {
	if _, err := s.eventRepo.GetByID(ctx, instanceID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("event instance %s: %w", instanceID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get event instance: %w", err)
	}
	r := &domain.RoomReservation{
		EventInstanceID: instanceID,
		RoomID:          roomID,
		Day:             domain.DayOf(day),
	}
	// Exclusivity is rechecked inside the repository transaction; the
	// read-side conflict check is only advisory.
	if err := s.reservationRepo.CreateRoomReservation(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *reservationService) ReserveResource(ctx context.Context, instanceID, resourceID string, day time.Time, quantity int) (*domain.ResourceReservation, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", domain.ErrInvalidInput)
	}
	if _, err := s.eventRepo.GetByID(ctx, instanceID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("event instance %s: %w", instanceID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get event instance: %w", err)
	}
	r := &domain.ResourceReservation{
		EventInstanceID: instanceID,
		ResourceID:      resourceID,
		Day:             domain.DayOf(day),
		Quantity:        quantity,
	}
	if err := s.reservationRepo.CreateResourceReservation(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}
