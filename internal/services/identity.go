package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stagecrew/internal/domain"
)

const apiTokenExpiry = 24 * time.Hour

type identityService struct {
	staffRepo domain.StaffRepository
	hasher    domain.PasswordHasher
	issuer    domain.TokenIssuer
}

// NewIdentityService creates the staff login service.
func NewIdentityService(
	staffRepo domain.StaffRepository,
	hasher domain.PasswordHasher,
	issuer domain.TokenIssuer,
) domain.IdentityService {
	return &identityService{
		staffRepo: staffRepo,
		hasher:    hasher,
		issuer:    issuer,
	}
}

func (s *identityService) Login(ctx context.Context, email, password string) (string, *domain.StaffAccount, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("email and password are required: %w", domain.ErrInvalidInput)
	}
	account, err := s.staffRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Same failure as a bad password so login probing learns nothing.
			return "", nil, domain.ErrForbidden
		}
		return "", nil, fmt.Errorf("get staff account: %w", err)
	}
	if err := s.hasher.Compare(account.PasswordHash, account.PasswordSalt, password); err != nil {
		return "", nil, domain.ErrForbidden
	}
	token, err := s.issuer.Issue(account.ID, account.Email, account.Roles, apiTokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, account, nil
}
