package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/baechuer/kanjo/services/account-service/internal/domain"
	"github.com/baechuer/kanjo/services/account-service/internal/logger"
)

type SeederHasher interface {
	Hash(password string) (string, error)
}

type SeederRepo interface {
	Create(ctx context.Context, u domain.User) (domain.User, error)
}

// SeedUsers inserts verified dev accounts. Existing emails are skipped.
func SeedUsers(ctx context.Context, repo SeederRepo, hasher SeederHasher) int {
	type seedUser struct {
		Name  string
		Email string
		Role  domain.Role
		Pass  string
	}

	seeds := []seedUser{
		{Name: "admin", Email: "admin@example.com", Role: domain.RoleAdmin, Pass: "AdminPassword123!"},
		{Name: "user", Email: "user@example.com", Role: domain.RoleUser, Pass: "UserPassword123!"},
	}

	created := 0
	for _, s := range seeds {
		hash, err := hasher.Hash(s.Pass)
		if err != nil {
			logger.Logger.Warn().Err(err).Str("email", s.Email).Msg("seed: hash failed")
			continue
		}

		_, err = repo.Create(ctx, domain.User{
			ID:            uuid.NewString(),
			Name:          s.Name,
			Email:         s.Email,
			PasswordHash:  hash,
			Role:          string(s.Role),
			EmailVerified: true,
		})
		if err != nil {
			// duplicates are expected on restart
			continue
		}
		created++
	}

	logger.Logger.Info().Int("created", created).Msg("seed: users seeded")
	return created
}
