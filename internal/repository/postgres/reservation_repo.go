package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"stagecrew/internal/domain"
)

type reservationRepository struct {
	DB *sql.DB
}

// NewReservationRepository returns a domain.ReservationRepository implemented with Postgres.
func NewReservationRepository(db *sql.DB) domain.ReservationRepository {
	return &reservationRepository{DB: db}
}

func (r *reservationRepository) CreateRoom(ctx context.Context, room *domain.Room) error {
	return r.DB.QueryRowContext(ctx,
		`INSERT INTO rooms (name) VALUES ($1) RETURNING id, created_at`,
		room.Name,
	).Scan(&room.ID, &room.CreatedAt)
}

func (r *reservationRepository) GetRoomByID(ctx context.Context, id string) (*domain.Room, error) {
	room := &domain.Room{}
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM rooms WHERE id = $1`, id,
	).Scan(&room.ID, &room.Name, &room.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return room, nil
}

func (r *reservationRepository) ListRooms(ctx context.Context) ([]*domain.Room, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, name, created_at FROM rooms ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []*domain.Room
	for rows.Next() {
		room := &domain.Room{}
		if err := rows.Scan(&room.ID, &room.Name, &room.CreatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func (r *reservationRepository) CreateResource(ctx context.Context, res *domain.Resource) error {
	return r.DB.QueryRowContext(ctx,
		`INSERT INTO resources (name, total_quantity) VALUES ($1, $2) RETURNING id, created_at`,
		res.Name, res.TotalQuantity,
	).Scan(&res.ID, &res.CreatedAt)
}

func (r *reservationRepository) GetResourceByID(ctx context.Context, id string) (*domain.Resource, error) {
	res := &domain.Resource{}
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, total_quantity, created_at FROM resources WHERE id = $1`, id,
	).Scan(&res.ID, &res.Name, &res.TotalQuantity, &res.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return res, nil
}

func (r *reservationRepository) ListResources(ctx context.Context) ([]*domain.Resource, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, name, total_quantity, created_at FROM resources ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resources []*domain.Resource
	for rows.Next() {
		res := &domain.Resource{}
		if err := rows.Scan(&res.ID, &res.Name, &res.TotalQuantity, &res.CreatedAt); err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	return resources, rows.Err()
}

// CreateRoomReservation locks the room row, then verifies whole-day
// exclusivity under that lock before inserting.
func (r *reservationRepository) CreateRoomReservation(ctx context.Context, res *domain.RoomReservation) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var roomID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM rooms WHERE id = $1 FOR UPDATE`, res.RoomID,
	).Scan(&roomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}

	var existing int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM room_reservations
		WHERE room_id = $1 AND day = $2 AND cancelled_at IS NULL
	`, res.RoomID, res.Day).Scan(&existing)
	if err != nil {
		return err
	}
	if existing > 0 {
		return domain.ErrRoomUnavailable
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO room_reservations (event_instance_id, room_id, day)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, res.EventInstanceID, res.RoomID, res.Day).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// CreateResourceReservation locks the resource row, then verifies the day's
// reserved total plus the request stays within the resource quantity.
func (r *reservationRepository) CreateResourceReservation(ctx context.Context, res *domain.ResourceReservation) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var total int
	err = tx.QueryRowContext(ctx,
		`SELECT total_quantity FROM resources WHERE id = $1 FOR UPDATE`, res.ResourceID,
	).Scan(&total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}

	var reserved int
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(quantity), 0) FROM resource_reservations
		WHERE resource_id = $1 AND day = $2 AND cancelled_at IS NULL
	`, res.ResourceID, res.Day).Scan(&reserved)
	if err != nil {
		return err
	}
	if reserved+res.Quantity > total {
		return domain.ErrResourceOversubscribed
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO resource_reservations (event_instance_id, resource_id, day, quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, res.EventInstanceID, res.ResourceID, res.Day, res.Quantity).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (r *reservationRepository) ListActiveRoomReservations(ctx context.Context, roomID string, day time.Time, excludeInstanceID string) ([]*domain.RoomReservation, error) {
	query := `
		SELECT id, event_instance_id, room_id, day, cancelled_at, created_at
		FROM room_reservations
		WHERE room_id = $1 AND day = $2 AND cancelled_at IS NULL
		  AND ($3::text = '' OR event_instance_id::text <> $3::text)
		ORDER BY created_at
	`
	rows, err := r.DB.QueryContext(ctx, query, roomID, day, excludeInstanceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []*domain.RoomReservation
	for rows.Next() {
		res := &domain.RoomReservation{}
		var cancelled sql.NullTime
		if err := rows.Scan(&res.ID, &res.EventInstanceID, &res.RoomID, &res.Day, &cancelled, &res.CreatedAt); err != nil {
			return nil, err
		}
		if cancelled.Valid {
			res.CancelledAt = &cancelled.Time
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

func (r *reservationRepository) SumActiveResourceReservations(ctx context.Context, resourceID string, day time.Time) (int, error) {
	var sum int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(quantity), 0) FROM resource_reservations
		WHERE resource_id = $1 AND day = $2 AND cancelled_at IS NULL
	`, resourceID, day).Scan(&sum)
	return sum, err
}
