package postgres

import (
	"context"
	"database/sql"
	"errors"

	"stagecrew/internal/domain"
)

type eventInstanceRepository struct {
	DB *sql.DB
}

// NewEventInstanceRepository returns a domain.EventInstanceRepository implemented with Postgres.
func NewEventInstanceRepository(db *sql.DB) domain.EventInstanceRepository {
	return &eventInstanceRepository{DB: db}
}

func (r *eventInstanceRepository) Create(ctx context.Context, event *domain.EventInstance) error {
	query := `
		INSERT INTO event_instances (name, location, date, anchor_start, nominal_end, has_schedule)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	return r.DB.QueryRowContext(ctx, query,
		event.Name, event.Location, event.Date, event.AnchorStart, event.NominalEnd, event.HasSchedule).
		Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
}

const eventInstanceColumns = `id, name, location, date, anchor_start, nominal_end, has_schedule, created_at, updated_at`

func (r *eventInstanceRepository) GetByID(ctx context.Context, id string) (*domain.EventInstance, error) {
	query := `SELECT ` + eventInstanceColumns + ` FROM event_instances WHERE id = $1`
	e := &domain.EventInstance{}
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&e.ID, &e.Name, &e.Location, &e.Date, &e.AnchorStart, &e.NominalEnd, &e.HasSchedule, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventInstanceRepository) List(ctx context.Context) ([]*domain.EventInstance, error) {
	query := `SELECT ` + eventInstanceColumns + ` FROM event_instances ORDER BY anchor_start`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.EventInstance
	for rows.Next() {
		e := &domain.EventInstance{}
		if err := rows.Scan(&e.ID, &e.Name, &e.Location, &e.Date, &e.AnchorStart, &e.NominalEnd, &e.HasSchedule, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
