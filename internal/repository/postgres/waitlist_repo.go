package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"stagecrew/internal/domain"
)

type waitlistRepository struct {
	DB *sql.DB
}

// NewWaitlistRepository returns a domain.WaitlistRepository implemented with Postgres.
func NewWaitlistRepository(db *sql.DB) domain.WaitlistRepository {
	return &waitlistRepository{DB: db}
}

func (r *waitlistRepository) Enqueue(ctx context.Context, e *domain.WaitlistEntry) error {
	personID, registrantID := candidateColumns(e.Candidate)
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO waitlist_entries (slot_id, person_id, registrant_id, status, enqueued_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, sequence, updated_at
	`, e.SlotID, personID, registrantID, string(e.Status), e.EnqueuedAt).
		Scan(&e.ID, &e.Sequence, &e.UpdatedAt)
	if err != nil {
		var perr *pq.Error
		if errors.As(err, &perr) {
			switch perr.Code {
			case "23505":
				return domain.ErrDuplicateWaitlist
			case "23503":
				return domain.ErrNotFound
			}
		}
		return err
	}
	return nil
}

const waitlistColumns = `
	id, slot_id, person_id, registrant_id, status, offer_deadline, confirm_token,
	enqueued_at, sequence, updated_at
`

func scanWaitlistEntry(row interface{ Scan(...any) error }) (*domain.WaitlistEntry, error) {
	e := &domain.WaitlistEntry{}
	var personID, registrantID, token sql.NullString
	var deadline sql.NullTime
	var status string
	err := row.Scan(&e.ID, &e.SlotID, &personID, &registrantID, &status,
		&deadline, &token, &e.EnqueuedAt, &e.Sequence, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.Candidate = candidateFromColumns(personID, registrantID)
	e.Status = domain.WaitlistStatus(status)
	if deadline.Valid {
		e.OfferDeadline = &deadline.Time
	}
	e.ConfirmToken = token.String
	return e, nil
}

func (r *waitlistRepository) GetByID(ctx context.Context, id string) (*domain.WaitlistEntry, error) {
	query := `SELECT ` + waitlistColumns + ` FROM waitlist_entries WHERE id = $1`
	e, err := scanWaitlistEntry(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *waitlistRepository) GetByConfirmToken(ctx context.Context, token string) (*domain.WaitlistEntry, error) {
	query := `SELECT ` + waitlistColumns + ` FROM waitlist_entries WHERE confirm_token = $1`
	e, err := scanWaitlistEntry(r.DB.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// OfferNext serializes on the slot row. Under that lock it enforces the
// at-most-one-outstanding-offer invariant, rechecks that a committed seat is
// actually free (a direct registrant may have taken it between the freeing
// transition and this call), and picks the FIFO head (earliest enqueue, ties
// broken by insertion sequence).
func (r *waitlistRepository) OfferNext(ctx context.Context, slotID string, deadline time.Time, token string) (*domain.WaitlistEntry, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var required int
	err = tx.QueryRowContext(ctx,
		`SELECT required_count FROM shift_slots WHERE id = $1 FOR UPDATE`,
		slotID,
	).Scan(&required)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var outstanding int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM waitlist_entries WHERE slot_id = $1 AND status = 'offered'`,
		slotID,
	).Scan(&outstanding)
	if err != nil {
		return nil, err
	}
	if outstanding > 0 {
		return nil, tx.Commit()
	}

	var filled int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM assignments WHERE slot_id = $1 AND status <> 'cancelled'`,
		slotID,
	).Scan(&filled)
	if err != nil {
		return nil, err
	}
	if filled >= required {
		// The seat is gone; an offer now would be unfulfillable. The queue
		// keeps its order and waits for the next freed seat.
		return nil, tx.Commit()
	}

	var headID string
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM waitlist_entries
		WHERE slot_id = $1 AND status = 'queued'
		ORDER BY enqueued_at, sequence
		LIMIT 1
	`, slotID).Scan(&headID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, tx.Commit()
		}
		return nil, err
	}

	query := `
		UPDATE waitlist_entries
		SET status = 'offered', offer_deadline = $2, confirm_token = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + waitlistColumns
	entry, err := scanWaitlistEntry(tx.QueryRowContext(ctx, query, headID, deadline, token))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return entry, nil
}

// ConfirmOffer turns the offer into a committed assignment in one
// transaction. Capacity is rechecked against non-cancelled assignments only:
// the offer held this seat, so outstanding offers are not double-counted.
func (r *waitlistRepository) ConfirmOffer(ctx context.Context, entryID string, a *domain.Assignment) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var required int
	err = tx.QueryRowContext(ctx, `
		SELECT s.required_count FROM shift_slots s
		JOIN waitlist_entries w ON w.slot_id = s.id
		WHERE w.id = $1
		FOR UPDATE OF s
	`, entryID).Scan(&required)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE waitlist_entries
		SET status = 'confirmed', offer_deadline = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'offered'
	`, entryID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("waitlist entry is no longer offered: %w", domain.ErrInvariantViolation)
	}

	var filled int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM assignments WHERE slot_id = $1 AND status <> 'cancelled'`,
		a.SlotID,
	).Scan(&filled)
	if err != nil {
		return err
	}
	if filled >= required {
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

func (r *waitlistRepository) MarkTerminal(ctx context.Context, id string, from, to domain.WaitlistStatus) error {
	result, err := r.DB.ExecContext(ctx, `
		UPDATE waitlist_entries
		SET status = $3, offer_deadline = NULL, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, id, string(from), string(to))
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		var current string
		err := r.DB.QueryRowContext(ctx, `SELECT status FROM waitlist_entries WHERE id = $1`, id).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		return fmt.Errorf("waitlist entry is %s, not %s: %w", current, from, domain.ErrInvariantViolation)
	}
	return nil
}

func (r *waitlistRepository) ListExpiredOffers(ctx context.Context, now time.Time) ([]*domain.WaitlistEntry, error) {
	query := `SELECT ` + waitlistColumns + `
		FROM waitlist_entries
		WHERE status = 'offered' AND offer_deadline < $1
		ORDER BY offer_deadline
	`
	rows, err := r.DB.QueryContext(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.WaitlistEntry
	for rows.Next() {
		e, err := scanWaitlistEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListStalledSlots finds slots whose waitlist should be moving but is not:
// at least one queued entry, no outstanding offer, and a committed seat free.
// This happens when a process dies between a terminal transition and its
// follow-on promotion; the sweep re-drives these.
func (r *waitlistRepository) ListStalledSlots(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT s.id
		FROM shift_slots s
		WHERE EXISTS (
			SELECT 1 FROM waitlist_entries q
			WHERE q.slot_id = s.id AND q.status = 'queued'
		)
		AND NOT EXISTS (
			SELECT 1 FROM waitlist_entries o
			WHERE o.slot_id = s.id AND o.status = 'offered'
		)
		AND (
			SELECT COUNT(*) FROM assignments a
			WHERE a.slot_id = s.id AND a.status <> 'cancelled'
		) < s.required_count
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slotIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		slotIDs = append(slotIDs, id)
	}
	return slotIDs, rows.Err()
}

func (r *waitlistRepository) CountOutstandingOffers(ctx context.Context, slotID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM waitlist_entries WHERE slot_id = $1 AND status = 'offered'`,
		slotID,
	).Scan(&count)
	return count, err
}
