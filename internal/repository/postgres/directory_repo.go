package postgres

import (
	"context"
	"database/sql"
	"errors"

	"stagecrew/internal/domain"
)

type directoryRepository struct {
	DB *sql.DB
}

// NewDirectoryRepository returns a domain.RecipientDirectory backed by the
// club's member and external registrant records.
func NewDirectoryRepository(db *sql.DB) domain.RecipientDirectory {
	return &directoryRepository{DB: db}
}

func (r *directoryRepository) Lookup(ctx context.Context, c domain.Candidate) (string, string, error) {
	if err := c.Validate(); err != nil {
		return "", "", err
	}
	var query, id string
	if c.Kind == domain.CandidateInternal {
		query = `SELECT email, name FROM persons WHERE id = $1`
		id = c.PersonID
	} else {
		query = `SELECT email, name FROM external_registrants WHERE id = $1`
		id = c.RegistrantID
	}
	var email, name string
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&email, &name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", domain.ErrNotFound
		}
		return "", "", err
	}
	return email, name, nil
}
