package postgres

import (
	"database/sql"
	"time"

	"github.com/baechuer/kanjo/services/account-service/internal/domain"
)

const userColumns = `id, name, email, password_hash, role, email_verified,
       verify_token_hash, verify_expires_at, password_changed_at, created_at, updated_at`

type userRow struct {
	ID                string
	Name              string
	Email             string
	PasswordHash      string
	Role              string
	EmailVerified     bool
	VerifyTokenHash   sql.NullString
	VerifyExpiresAt   sql.NullTime
	PasswordChangedAt sql.NullTime
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func scanUserRow(row *sql.Row) (userRow, error) {
	var ur userRow
	err := row.Scan(
		&ur.ID,
		&ur.Name,
		&ur.Email,
		&ur.PasswordHash,
		&ur.Role,
		&ur.EmailVerified,
		&ur.VerifyTokenHash,
		&ur.VerifyExpiresAt,
		&ur.PasswordChangedAt,
		&ur.CreatedAt,
		&ur.UpdatedAt,
	)
	return ur, err
}

func (ur userRow) toDomain() domain.User {
	u := domain.User{
		ID:            ur.ID,
		Name:          ur.Name,
		Email:         ur.Email,
		PasswordHash:  ur.PasswordHash,
		Role:          ur.Role,
		EmailVerified: ur.EmailVerified,
		CreatedAt:     ur.CreatedAt,
		UpdatedAt:     ur.UpdatedAt,
	}
	if ur.VerifyTokenHash.Valid {
		v := ur.VerifyTokenHash.String
		u.VerifyTokenHash = &v
	}
	if ur.VerifyExpiresAt.Valid {
		v := ur.VerifyExpiresAt.Time
		u.VerifyExpiresAt = &v
	}
	if ur.PasswordChangedAt.Valid {
		v := ur.PasswordChangedAt.Time
		u.PasswordChangedAt = &v
	}
	return u
}
