package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/baechuer/kanjo/services/account-service/internal/application/auth"
	"github.com/baechuer/kanjo/services/account-service/internal/domain"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// ---------- helpers ----------

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func userResult(ur userRow, err error) (domain.User, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		if isUniqueViolation(err) {
			return domain.User{}, domain.ErrEmailAlreadyExists()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return ur.toDomain(), nil
}

func execOne(res sql.Result, err error) error {
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	if n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

// ---------- auth.UserRepo ----------

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}

	const q = `SELECT ` + userColumns + `
FROM users
WHERE email = $1
LIMIT 1;
`
	return userResult(scanUserRow(r.db.QueryRowContext(ctx, q, email)))
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}

	const q = `SELECT ` + userColumns + `
FROM users
WHERE id = $1
LIMIT 1;
`
	return userResult(scanUserRow(r.db.QueryRowContext(ctx, q, id)))
}

func (r *UserRepo) GetPasswordHash(ctx context.Context, userID string) (string, error) {
	const q = `SELECT password_hash FROM users WHERE id = $1 LIMIT 1;`

	var hash string
	if err := r.db.QueryRowContext(ctx, q, userID).Scan(&hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrUserNotFound()
		}
		return "", domain.ErrDBUnavailable(err)
	}
	return hash, nil
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	u.Email = normalizeEmail(u.Email)
	if u.ID == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	if u.Email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if u.PasswordHash == "" {
		return domain.User{}, domain.ErrMissingField("password_hash")
	}
	if u.Role == "" {
		u.Role = string(domain.RoleUser)
	}

	const q = `
INSERT INTO users (id, name, email, password_hash, role, email_verified, verify_token_hash, verify_expires_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING ` + userColumns + `;
`
	return userResult(scanUserRow(r.db.QueryRowContext(ctx, q,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.EmailVerified,
		u.VerifyTokenHash, u.VerifyExpiresAt,
	)))
}

func (r *UserRepo) UpdateProfile(ctx context.Context, userID string, change auth.ProfileChange) (domain.User, error) {
	email := normalizeEmail(change.Email)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}

	if pv := change.Verification; pv != nil {
		const q = `
UPDATE users
SET name = $2, email = $3, email_verified = FALSE,
    verify_token_hash = $4, verify_expires_at = $5, updated_at = NOW()
WHERE id = $1
RETURNING ` + userColumns + `;
`
		return userResult(scanUserRow(r.db.QueryRowContext(ctx, q, userID, change.Name, email, pv.TokenHash, pv.ExpiresAt)))
	}

	const q = `
UPDATE users
SET name = $2, email = $3, updated_at = NOW()
WHERE id = $1
RETURNING ` + userColumns + `;
`
	return userResult(scanUserRow(r.db.QueryRowContext(ctx, q, userID, change.Name, email)))
}

func (r *UserRepo) SetVerification(ctx context.Context, userID string, pv auth.PendingVerification) error {
	const q = `
UPDATE users
SET verify_token_hash = $2, verify_expires_at = $3, updated_at = NOW()
WHERE id = $1;
`
	return execOne(r.db.ExecContext(ctx, q, userID, pv.TokenHash, pv.ExpiresAt))
}

// RedeemVerification consumes the token in one statement, so a second
// redemption of the same token finds no row.
func (r *UserRepo) RedeemVerification(ctx context.Context, tokenHash string, now time.Time) (domain.User, error) {
	if tokenHash == "" {
		return domain.User{}, domain.ErrUserNotFound()
	}

	const q = `
UPDATE users
SET email_verified = TRUE, verify_token_hash = NULL, verify_expires_at = NULL, updated_at = NOW()
WHERE verify_token_hash = $1 AND verify_expires_at > $2
RETURNING ` + userColumns + `;
`
	return userResult(scanUserRow(r.db.QueryRowContext(ctx, q, tokenHash, now)))
}

func (r *UserRepo) UpdatePassword(ctx context.Context, userID, newHash string, changedAt time.Time) error {
	const q = `
UPDATE users
SET password_hash = $2, password_changed_at = $3, updated_at = NOW()
WHERE id = $1;
`
	return execOne(r.db.ExecContext(ctx, q, userID, newHash, changedAt))
}

func (r *UserRepo) Delete(ctx context.Context, userID string) error {
	const q = `DELETE FROM users WHERE id = $1;`
	return execOne(r.db.ExecContext(ctx, q, userID))
}
