package domain

import (
	"context"
	"time"
)

// Privilege tiers. Organizer gates schedule reset, attendance marking, and
// template/catalog administration.
const (
	RoleOrganizer = "organizer"
	RoleMember    = "member"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID    string
	Roles []string
}

// HasRole reports whether the actor carries the given role.
func (a Actor) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// StaffAccount is an organizer or member account able to call the
// authenticated API.
type StaffAccount struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	PasswordSalt string    `json:"-"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
}

// PasswordHasher handles salt generation, hashing, and verification.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues API tokens (e.g. JWT) for an authenticated account.
type TokenIssuer interface {
	Issue(userID, email string, roles []string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies an API token and returns the account id and roles.
type TokenVerifier interface {
	Verify(token string) (userID string, roles []string, err error)
}

// StaffRepository defines storage for staff accounts.
type StaffRepository interface {
	GetByEmail(ctx context.Context, email string) (*StaffAccount, error)
	GetByID(ctx context.Context, id string) (*StaffAccount, error)
}

// IdentityService authenticates staff and issues API tokens.
type IdentityService interface {
	Login(ctx context.Context, email, password string) (token string, account *StaffAccount, err error)
}
