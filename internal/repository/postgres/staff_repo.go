package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"stagecrew/internal/domain"
)

type staffRepository struct {
	DB *sql.DB
}

// NewStaffRepository returns a domain.StaffRepository implemented with Postgres.
func NewStaffRepository(db *sql.DB) domain.StaffRepository {
	return &staffRepository{DB: db}
}

const staffColumns = `id, email, name, password_hash, password_salt, roles, created_at`

func (r *staffRepository) getBy(ctx context.Context, where string, arg any) (*domain.StaffAccount, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_accounts WHERE ` + where
	account := &domain.StaffAccount{}
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&account.ID, &account.Email, &account.Name,
		&account.PasswordHash, &account.PasswordSalt,
		pq.Array(&account.Roles), &account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return account, nil
}

func (r *staffRepository) GetByEmail(ctx context.Context, email string) (*domain.StaffAccount, error) {
	return r.getBy(ctx, `email = $1`, email)
}

func (r *staffRepository) GetByID(ctx context.Context, id string) (*domain.StaffAccount, error) {
	return r.getBy(ctx, `id = $1`, id)
}
