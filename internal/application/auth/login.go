package auth

import (
	"context"

	"github.com/baechuer/kanjo/services/account-service/internal/domain"
)

// Login authenticates a user and issues a session token.
// Unknown emails and wrong passwords share one error. An unverified account
// is rejected before the password is checked.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)

	if email == "" {
		return Session{}, domain.ErrMissingField("email")
	}
	if password == "" {
		return Session{}, domain.ErrMissingField("password")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			s.audit("auth.login", map[string]string{"email": email, "result": "unknown_email"})
			return Session{}, domain.ErrInvalidCredentials()
		}
		return Session{}, err
	}

	if !u.EmailVerified {
		s.audit("auth.login", map[string]string{"user_id": u.ID, "result": "unverified"})
		return Session{}, domain.ErrEmailNotVerified()
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		s.audit("auth.login", map[string]string{"user_id": u.ID, "result": "bad_password"})
		return Session{}, domain.ErrInvalidCredentials()
	}

	sess, err := s.issueSession(u)
	if err != nil {
		return Session{}, err
	}
	s.audit("auth.login", map[string]string{"user_id": u.ID, "result": "success"})
	return sess, nil
}
