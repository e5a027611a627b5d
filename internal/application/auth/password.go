package auth

import (
	"context"

	"github.com/baechuer/kanjo/services/account-service/internal/domain"
)

// ChangePassword rotates the password and returns a fresh session.
// Every token issued before the rotation is refused by Authenticate.
func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) (Session, error) {
	if userID == "" {
		return Session{}, domain.ErrTokenMissing()
	}
	if currentPassword == "" {
		return Session{}, domain.ErrMissingField("currentPassword")
	}
	if newPassword == "" {
		return Session{}, domain.ErrMissingField("newPassword")
	}
	if len(newPassword) < MinPasswordLength {
		return Session{}, domain.ErrWeakPassword("min length 6")
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return Session{}, err
	}

	hash, err := s.users.GetPasswordHash(ctx, userID)
	if err != nil {
		return Session{}, err
	}
	if err := s.hasher.Compare(hash, currentPassword); err != nil {
		s.audit("auth.password_change", map[string]string{"user_id": userID, "result": "bad_password"})
		return Session{}, domain.ErrCurrentPasswordIncorrect()
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return Session{}, domain.ErrHashFailed(err)
	}

	changedAt := s.now().Add(-PasswordChangeSkew)
	if err := s.users.UpdatePassword(ctx, userID, newHash, changedAt); err != nil {
		return Session{}, err
	}
	u.PasswordHash = newHash
	u.PasswordChangedAt = &changedAt

	s.audit("auth.password_change", map[string]string{"user_id": userID, "result": "success"})
	return s.issueSession(u)
}
