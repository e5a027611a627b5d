package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/baechuer/kanjo/services/account-service/internal/domain"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates an unverified user and starts email verification.
// A failed verification publish does not undo the registration; the user
// can request another link.
func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)

	switch {
	case name == "":
		return domain.User{}, domain.ErrMissingField("name")
	case email == "":
		return domain.User{}, domain.ErrMissingField("email")
	case in.Password == "":
		return domain.User{}, domain.ErrMissingField("password")
	case len(in.Password) < MinPasswordLength:
		return domain.User{}, domain.ErrWeakPassword("min length 6")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	} else if !domain.Is(err, "user_not_found") {
		return domain.User{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, domain.ErrHashFailed(err)
	}

	raw, pv, err := s.newVerification()
	if err != nil {
		return domain.User{}, err
	}

	now := s.now()
	u := domain.User{
		ID:              uuid.NewString(),
		Name:            name,
		Email:           email,
		PasswordHash:    hash,
		Role:            string(domain.RoleUser),
		EmailVerified:   false,
		VerifyTokenHash: &pv.TokenHash,
		VerifyExpiresAt: &pv.ExpiresAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	created, err := s.users.Create(ctx, u)
	if err != nil {
		return domain.User{}, err
	}

	s.audit("auth.register", map[string]string{"user_id": created.ID})
	s.dispatchVerification(ctx, created, raw)

	return created.Sanitized(), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
