package auth

import (
	"context"
	"strings"

	"github.com/baechuer/kanjo/services/account-service/internal/domain"
)

func (s *Service) Profile(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	return u.Sanitized(), nil
}

type ProfileInput struct {
	Name string
	// nil keeps the current email
	Email *string
}

// UpdateProfile edits name and email. A new email resets verification and
// sends a fresh link. The returned session reflects the new claims.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (Session, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Session{}, domain.ErrMissingField("name")
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return Session{}, err
	}

	change := ProfileChange{Name: name, Email: u.Email}
	var raw string

	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email == "" {
			return Session{}, domain.ErrMissingField("email")
		}
		if email != u.Email {
			if _, err := s.users.GetByEmail(ctx, email); err == nil {
				return Session{}, domain.ErrEmailAlreadyExists()
			} else if !domain.Is(err, "user_not_found") {
				return Session{}, err
			}

			var pv PendingVerification
			raw, pv, err = s.newVerification()
			if err != nil {
				return Session{}, err
			}
			change.Email = email
			change.Verification = &pv
		}
	}

	updated, err := s.users.UpdateProfile(ctx, userID, change)
	if err != nil {
		return Session{}, err
	}

	fields := map[string]string{"user_id": userID, "email_changed": "false"}
	if change.Verification != nil {
		fields["email_changed"] = "true"
		s.dispatchVerification(ctx, updated, raw)
	}
	s.audit("auth.profile_update", fields)

	return s.issueSession(updated)
}
