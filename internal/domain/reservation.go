package domain

import (
	"context"
	"time"
)

// Room is a shared physical room. Rooms are whole-day exclusive per event.
type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Resource is a shared countable resource (chairs, radios, a van). Its
// reserved quantity across all reservations on one day must not exceed
// TotalQuantity.
type Resource struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	TotalQuantity int       `json:"total_quantity"`
	CreatedAt     time.Time `json:"created_at"`
}

// RoomReservation reserves a room for an event instance for one whole day.
type RoomReservation struct {
	ID              string     `json:"id"`
	EventInstanceID string     `json:"event_instance_id"`
	RoomID          string     `json:"room_id"`
	Day             time.Time  `json:"day"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ResourceReservation reserves a quantity of a resource for one day.
type ResourceReservation struct {
	ID              string     `json:"id"`
	EventInstanceID string     `json:"event_instance_id"`
	ResourceID      string     `json:"resource_id"`
	Day             time.Time  `json:"day"`
	Quantity        int        `json:"quantity"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ResourceAvailability reports current resource usage for one day.
type ResourceAvailability struct {
	Resource  *Resource `json:"resource"`
	Day       time.Time `json:"day"`
	Reserved  int       `json:"reserved"`
	Requested int       `json:"requested"`
	Exceeds   bool      `json:"exceeds"`
}

// ReservationRepository defines storage for rooms, resources, and their
// reservations. Creates recheck availability inside their transaction; the
// read-side checks in ConflictService are advisory only.
type ReservationRepository interface {
	CreateRoom(ctx context.Context, room *Room) error
	GetRoomByID(ctx context.Context, id string) (*Room, error)
	ListRooms(ctx context.Context) ([]*Room, error)
	CreateResource(ctx context.Context, res *Resource) error
	GetResourceByID(ctx context.Context, id string) (*Resource, error)
	ListResources(ctx context.Context) ([]*Resource, error)
	// CreateRoomReservation fails with ErrRoomUnavailable if another active
	// reservation holds the room on that day.
	CreateRoomReservation(ctx context.Context, r *RoomReservation) error
	// CreateResourceReservation fails with ErrResourceOversubscribed if the
	// day's reserved total plus the request exceeds the resource quantity.
	CreateResourceReservation(ctx context.Context, r *ResourceReservation) error
	ListActiveRoomReservations(ctx context.Context, roomID string, day time.Time, excludeInstanceID string) ([]*RoomReservation, error)
	SumActiveResourceReservations(ctx context.Context, resourceID string, day time.Time) (int, error)
}

// ReservationService administers the room/resource catalog and creates
// reservations for an event instance.
type ReservationService interface {
	CreateRoom(ctx context.Context, name string, actor Actor) (*Room, error)
	ListRooms(ctx context.Context) ([]*Room, error)
	CreateResource(ctx context.Context, name string, totalQuantity int, actor Actor) (*Resource, error)
	ListResources(ctx context.Context) ([]*Resource, error)
	ReserveRoom(ctx context.Context, instanceID, roomID string, day time.Time) (*RoomReservation, error)
	ReserveResource(ctx context.Context, instanceID, resourceID string, day time.Time, quantity int) (*ResourceReservation, error)
}

// PersonConflict is one advisory warning: an existing commitment of the
// person that overlaps a proposed interval.
type PersonConflict struct {
	Commitment *PersonCommitment `json:"commitment"`
	Proposed   Interval          `json:"proposed"`
}

// ConflictService runs the advisory read-side checks. All checks reflect
// committed state only; cancelled rows are excluded.
type ConflictService interface {
	CheckPersonConflicts(ctx context.Context, personID string, interval Interval) ([]*PersonConflict, error)
	CheckRoomConflict(ctx context.Context, roomID string, day time.Time, excludeInstanceID string) ([]*RoomReservation, error)
	CheckResourceAvailability(ctx context.Context, resourceID string, day time.Time, requested int) (*ResourceAvailability, error)
}
