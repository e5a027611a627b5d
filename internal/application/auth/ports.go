package auth

import (
	"context"
	"time"

	"github.com/baechuer/kanjo/services/account-service/internal/domain"
)

/*
UserRepo
--------
Persistence port for users (the credential store).
Only describes WHAT the service needs, not HOW it's stored.
Lookups that find nothing return domain.ErrUserNotFound.
*/
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	// GetByID may be served from a cache and need not carry credentials.
	GetByID(ctx context.Context, id string) (domain.User, error)
	// GetPasswordHash always reads the store of record.
	GetPasswordHash(ctx context.Context, userID string) (string, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)

	UpdateProfile(ctx context.Context, userID string, change ProfileChange) (domain.User, error)
	SetVerification(ctx context.Context, userID string, pv PendingVerification) error
	// RedeemVerification marks the owner of tokenHash verified and clears the
	// token in a single statement, provided the token has not expired at now.
	RedeemVerification(ctx context.Context, tokenHash string, now time.Time) (domain.User, error)
	UpdatePassword(ctx context.Context, userID, newHash string, changedAt time.Time) error
	Delete(ctx context.Context, userID string) error
}

// PendingVerification is the stored half of an outstanding verification token.
type PendingVerification struct {
	TokenHash string
	ExpiresAt time.Time
}

// ProfileChange is applied atomically. A non-nil Verification marks the
// email unverified and replaces any outstanding token.
type ProfileChange struct {
	Name         string
	Email        string
	Verification *PendingVerification
}

/*
PasswordHasher
--------------
Abstracts bcrypt.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error // nil if match
}

/*
TokenIssuer
-----------
Issues and verifies session tokens (JWT).
Used by service + auth middleware.
*/
type SessionClaims struct {
	UserID    string
	Email     string
	Name      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type TokenIssuer interface {
	Issue(u domain.User) (string, error)
	Verify(token string) (SessionClaims, error)
}

/*
EventPublisher
--------------
Publishes events to RabbitMQ.
Email-service consumes these and sends emails;
this service never sends mail directly.
*/
type EventPublisher interface {
	PublishVerifyEmail(ctx context.Context, evt VerifyEmailEvent) error
}

type VerifyEmailEvent struct {
	UserID string
	Email  string
	Name   string
	URL    string
}
