package auth

import (
	"context"
	"strings"

	"github.com/baechuer/kanjo/services/account-service/internal/domain"
)

// VerifyEmail redeems a verification token and issues a fresh session.
// Unknown, expired and already used tokens all yield ErrVerifyTokenInvalid.
func (s *Service) VerifyEmail(ctx context.Context, token string) (Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, domain.ErrVerifyTokenInvalid()
	}

	u, err := s.users.RedeemVerification(ctx, hashToken(token), s.now())
	if err != nil {
		if domain.Is(err, "user_not_found") {
			return Session{}, domain.ErrVerifyTokenInvalid()
		}
		return Session{}, err
	}

	s.audit("auth.verify_email", map[string]string{"user_id": u.ID})
	return s.issueSession(u)
}

// ResendVerification replaces the outstanding token of an unverified
// account and publishes a new link.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return domain.ErrMissingField("email")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u.EmailVerified {
		return domain.ErrEmailAlreadyVerified()
	}

	raw, pv, err := s.newVerification()
	if err != nil {
		return err
	}
	if err := s.users.SetVerification(ctx, u.ID, pv); err != nil {
		return err
	}

	if err := s.pub.PublishVerifyEmail(ctx, s.verifyEvent(u, raw)); err != nil {
		return err
	}
	s.audit("auth.verify_email.resend", map[string]string{"user_id": u.ID})
	return nil
}

// dispatchVerification publishes the link for flows whose state change has
// already been committed. Failures are audited, not returned.
func (s *Service) dispatchVerification(ctx context.Context, u domain.User, raw string) {
	if err := s.pub.PublishVerifyEmail(ctx, s.verifyEvent(u, raw)); err != nil {
		s.audit("auth.verify_email.publish_failed", map[string]string{
			"user_id":    u.ID,
			"error_code": domainCode(err),
		})
	}
}

func (s *Service) verifyEvent(u domain.User, raw string) VerifyEmailEvent {
	return VerifyEmailEvent{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
		URL:    s.verifyEmailBaseURL + raw,
	}
}
