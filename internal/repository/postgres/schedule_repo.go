package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"stagecrew/internal/domain"
)

type scheduleRepository struct {
	DB *sql.DB
}

// NewScheduleRepository returns a domain.ScheduleRepository implemented with Postgres.
func NewScheduleRepository(db *sql.DB) domain.ScheduleRepository {
	return &scheduleRepository{DB: db}
}

// CreateSchedule inserts the whole expansion in one transaction. The event
// row is the lock anchor: holding it FOR UPDATE makes two concurrent
// expansions serialize, and the has_schedule check turns the loser into a
// clean invariant error with nothing written.
func (r *scheduleRepository) CreateSchedule(ctx context.Context, instanceID string, plan *domain.ExpansionPlan) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var hasSchedule bool
	err = tx.QueryRowContext(ctx,
		`SELECT has_schedule FROM event_instances WHERE id = $1 FOR UPDATE`,
		instanceID,
	).Scan(&hasSchedule)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	if hasSchedule {
		return fmt.Errorf("schedule already generated: %w", domain.ErrInvariantViolation)
	}

	blockIDs := make([]string, len(plan.Blocks))
	for i, b := range plan.Blocks {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO time_blocks (event_instance_id, label, kind, start_time, end_time, position)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, instanceID, b.Label, string(b.Kind), b.StartTime, b.EndTime, b.Position).Scan(&blockIDs[i])
		if err != nil {
			return err
		}
		b.ID = blockIDs[i]
		b.EventInstanceID = instanceID
	}

	for _, seed := range plan.Slots {
		var blockID sql.NullString
		if seed.BlockIndex != nil {
			blockID = sql.NullString{String: blockIDs[*seed.BlockIndex], Valid: true}
		}
		var slotID string
		err = tx.QueryRowContext(ctx, `
			INSERT INTO shift_slots (event_instance_id, time_block_id, role, required_count)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, instanceID, blockID, seed.Role, seed.RequiredCount).Scan(&slotID)
		if err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE event_instances SET has_schedule = TRUE, updated_at = NOW() WHERE id = $1`,
		instanceID,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// ResetSchedule removes every generated row of the instance in one
// transaction, in dependency order, then clears the has_schedule flag.
func (r *scheduleRepository) ResetSchedule(ctx context.Context, instanceID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM event_instances WHERE id = $1 FOR UPDATE`,
		instanceID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}

	deletes := []string{
		`DELETE FROM waitlist_entries WHERE slot_id IN (SELECT id FROM shift_slots WHERE event_instance_id = $1)`,
		`DELETE FROM assignments WHERE slot_id IN (SELECT id FROM shift_slots WHERE event_instance_id = $1)`,
		`DELETE FROM shift_slots WHERE event_instance_id = $1`,
		`DELETE FROM time_blocks WHERE event_instance_id = $1`,
	}
	for _, q := range deletes {
		if _, err := tx.ExecContext(ctx, q, instanceID); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE event_instances SET has_schedule = FALSE, updated_at = NOW() WHERE id = $1`,
		instanceID,
	); err != nil {
		return err
	}
	return tx.Commit()
}

const slotColumns = `
	s.id, s.event_instance_id, s.time_block_id, s.role, s.required_count,
	(SELECT COUNT(*) FROM assignments a WHERE a.slot_id = s.id AND a.status <> 'cancelled') AS filled_count
`

func scanSlot(row interface{ Scan(...any) error }) (*domain.ShiftSlot, error) {
	s := &domain.ShiftSlot{}
	var blockID sql.NullString
	if err := row.Scan(&s.ID, &s.EventInstanceID, &blockID, &s.Role, &s.RequiredCount, &s.FilledCount); err != nil {
		return nil, err
	}
	if blockID.Valid {
		s.TimeBlockID = &blockID.String
	}
	return s, nil
}

func (r *scheduleRepository) GetSlotByID(ctx context.Context, id string) (*domain.ShiftSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM shift_slots s WHERE s.id = $1`
	slot, err := scanSlot(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return slot, nil
}

func (r *scheduleRepository) GetBlockByID(ctx context.Context, id string) (*domain.TimeBlock, error) {
	query := `
		SELECT id, event_instance_id, label, kind, start_time, end_time, position
		FROM time_blocks
		WHERE id = $1
	`
	b := &domain.TimeBlock{}
	var kind string
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&b.ID, &b.EventInstanceID, &b.Label, &kind, &b.StartTime, &b.EndTime, &b.Position)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	b.Kind = domain.BlockKind(kind)
	return b, nil
}

func (r *scheduleRepository) ListBlocksByInstance(ctx context.Context, instanceID string) ([]*domain.TimeBlock, error) {
	query := `
		SELECT id, event_instance_id, label, kind, start_time, end_time, position
		FROM time_blocks
		WHERE event_instance_id = $1
		ORDER BY position
	`
	rows, err := r.DB.QueryContext(ctx, query, instanceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []*domain.TimeBlock
	for rows.Next() {
		b := &domain.TimeBlock{}
		var kind string
		if err := rows.Scan(&b.ID, &b.EventInstanceID, &b.Label, &kind, &b.StartTime, &b.EndTime, &b.Position); err != nil {
			return nil, err
		}
		b.Kind = domain.BlockKind(kind)
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

func (r *scheduleRepository) ListSlotsByInstance(ctx context.Context, instanceID string) ([]*domain.ShiftSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM shift_slots s WHERE s.event_instance_id = $1 ORDER BY s.id`
	rows, err := r.DB.QueryContext(ctx, query, instanceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []*domain.ShiftSlot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}
