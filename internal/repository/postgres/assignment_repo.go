package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"stagecrew/internal/domain"
)

type assignmentRepository struct {
	DB *sql.DB
}

// NewAssignmentRepository returns a domain.AssignmentRepository implemented with Postgres.
func NewAssignmentRepository(db *sql.DB) domain.AssignmentRepository {
	return &assignmentRepository{DB: db}
}

func candidateColumns(c domain.Candidate) (personID, registrantID sql.NullString) {
	if c.PersonID != "" {
		personID = sql.NullString{String: c.PersonID, Valid: true}
	}
	if c.RegistrantID != "" {
		registrantID = sql.NullString{String: c.RegistrantID, Valid: true}
	}
	return personID, registrantID
}

func candidateFromColumns(personID, registrantID sql.NullString) domain.Candidate {
	if personID.Valid {
		return domain.NewInternalCandidate(personID.String)
	}
	return domain.NewExternalCandidate(registrantID.String)
}

// CreateInSlot is the last-seat race guard. The slot row is locked FOR
// UPDATE, then non-cancelled assignments and outstanding offers are counted
// under that lock; two concurrent claims on the final seat serialize here
// and exactly one insert succeeds.
func (r *assignmentRepository) CreateInSlot(ctx context.Context, a *domain.Assignment) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var required int
	err = tx.QueryRowContext(ctx,
		`SELECT required_count FROM shift_slots WHERE id = $1 FOR UPDATE`,
		a.SlotID,
	).Scan(&required)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}

	var taken int
	err = tx.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM assignments WHERE slot_id = $1 AND status <> 'cancelled')
			+ (SELECT COUNT(*) FROM waitlist_entries WHERE slot_id = $1 AND status = 'offered')
	`, a.SlotID).Scan(&taken)
	if err != nil {
		return err
	}
	if taken >= required {
		return domain.ErrCapacityExceeded
	}

	personID, registrantID := candidateColumns(a.Candidate)
	err = tx.QueryRowContext(ctx, `
		INSERT INTO assignments (slot_id, person_id, registrant_id, status, cancel_token, feedback_token)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, a.SlotID, personID, registrantID, string(a.Status), a.CancelToken, a.FeedbackToken).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var perr *pq.Error
		if errors.As(err, &perr) && perr.Code == "23505" {
			return domain.ErrDuplicateAssignment
		}
		return err
	}
	return tx.Commit()
}

const assignmentColumns = `
	id, slot_id, person_id, registrant_id, status, cancel_token, feedback_token,
	feedback_rating, feedback_comment, created_at, updated_at
`

func scanAssignment(row interface{ Scan(...any) error }) (*domain.Assignment, error) {
	a := &domain.Assignment{}
	var personID, registrantID, comment sql.NullString
	var rating sql.NullInt64
	var status string
	err := row.Scan(&a.ID, &a.SlotID, &personID, &registrantID, &status,
		&a.CancelToken, &a.FeedbackToken, &rating, &comment, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Candidate = candidateFromColumns(personID, registrantID)
	a.Status = domain.AssignmentStatus(status)
	if rating.Valid {
		v := int(rating.Int64)
		a.FeedbackRating = &v
	}
	a.FeedbackComment = comment.String
	return a, nil
}

func (r *assignmentRepository) getBy(ctx context.Context, where string, arg any) (*domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE ` + where
	a, err := scanAssignment(r.DB.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, id string) (*domain.Assignment, error) {
	return r.getBy(ctx, `id = $1`, id)
}

func (r *assignmentRepository) GetByCancelToken(ctx context.Context, token string) (*domain.Assignment, error) {
	return r.getBy(ctx, `cancel_token = $1`, token)
}

func (r *assignmentRepository) GetByFeedbackToken(ctx context.Context, token string) (*domain.Assignment, error) {
	return r.getBy(ctx, `feedback_token = $1`, token)
}

// UpdateStatus is a guarded transition: the WHERE clause pins the current
// status, so a concurrent transition makes this a no-op reported as an
// invariant violation instead of a silent overwrite.
func (r *assignmentRepository) UpdateStatus(ctx context.Context, id string, from, to domain.AssignmentStatus) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE assignments SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
		id, string(from), string(to),
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		var current string
		err := r.DB.QueryRowContext(ctx, `SELECT status FROM assignments WHERE id = $1`, id).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		return fmt.Errorf("assignment is %s, not %s: %w", current, from, domain.ErrInvariantViolation)
	}
	return nil
}

func (r *assignmentRepository) SaveFeedback(ctx context.Context, id string, rating int, comment string) error {
	result, err := r.DB.ExecContext(ctx, `
		UPDATE assignments
		SET feedback_rating = $2, feedback_comment = $3, updated_at = NOW()
		WHERE id = $1 AND feedback_rating IS NULL
	`, id, rating, comment)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListCommittedIntervalsByPerson resolves each committed assignment of the
// person to an absolute interval: the slot's time block when bound, the
// event's nominal range otherwise.
func (r *assignmentRepository) ListCommittedIntervalsByPerson(ctx context.Context, personID string) ([]*domain.PersonCommitment, error) {
	query := `
		SELECT a.id, a.slot_id, s.role, e.id, e.name,
		       COALESCE(b.start_time, e.anchor_start) AS start_time,
		       COALESCE(b.end_time, e.nominal_end) AS end_time
		FROM assignments a
		JOIN shift_slots s ON s.id = a.slot_id
		JOIN event_instances e ON e.id = s.event_instance_id
		LEFT JOIN time_blocks b ON b.id = s.time_block_id
		WHERE a.person_id = $1 AND a.status = 'committed'
		ORDER BY start_time
	`
	rows, err := r.DB.QueryContext(ctx, query, personID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var commitments []*domain.PersonCommitment
	for rows.Next() {
		c := &domain.PersonCommitment{}
		if err := rows.Scan(&c.AssignmentID, &c.SlotID, &c.Role, &c.EventID, &c.EventName,
			&c.Interval.Start, &c.Interval.End); err != nil {
			return nil, err
		}
		commitments = append(commitments, c)
	}
	return commitments, rows.Err()
}
