package auth

import (
	"context"
	"errors"

	"github.com/baechuer/kanjo/services/account-service/internal/domain"
)

// AuthResult is either authenticated (Reason == nil, User set) or
// unauthenticated with the reason the credential was refused. A token that
// was superseded by a password change still carries the account it names.
type AuthResult struct {
	User   domain.User
	Claims SessionClaims
	Reason *domain.Error
}

func (r AuthResult) Authenticated() bool { return r.Reason == nil }

func refused(err error) AuthResult {
	var de *domain.Error
	if errors.As(err, &de) {
		return AuthResult{Reason: de}
	}
	return AuthResult{Reason: domain.ErrInternal(err)}
}

// Authenticate validates a raw session token against the credential store.
// It never fails open: every error becomes an unauthenticated result.
// Email verification is a policy of the caller and is not checked here.
func (s *Service) Authenticate(ctx context.Context, token string) AuthResult {
	if token == "" {
		return refused(domain.ErrTokenMissing())
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		if domain.Is(err, "token_expired") {
			return refused(err)
		}
		return refused(domain.ErrTokenInvalid())
	}
	if claims.UserID == "" {
		return refused(domain.ErrTokenInvalid())
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			return refused(domain.ErrUserNoLongerExists())
		}
		return refused(err)
	}

	if u.ChangedPasswordAfter(claims.IssuedAt) {
		return AuthResult{User: u.Sanitized(), Claims: claims, Reason: domain.ErrCredentialsRotated()}
	}

	return AuthResult{User: u.Sanitized(), Claims: claims}
}
