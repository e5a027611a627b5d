package auth

import "context"

// DeleteAccount removes the user. Outstanding tokens are then refused with
// user_no_longer_exists.
func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.audit("auth.account_delete", map[string]string{"user_id": userID})
	return nil
}

// Logout is stateless: the cookie is cleared by the transport. Only the
// audit trail is recorded here.
func (s *Service) Logout(_ context.Context, userID string) {
	s.audit("auth.logout", map[string]string{"user_id": userID})
}
