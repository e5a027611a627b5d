package domain

import "time"

// User is the persisted account record. PasswordHash and the verification
// fields never leave the service; transport maps users through dto.UserView.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string

	EmailVerified bool
	// VerifyTokenHash and VerifyExpiresAt are both set or both nil.
	VerifyTokenHash *string
	VerifyExpiresAt *time.Time

	// nil means the password was never rotated.
	PasswordChangedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPendingVerification reports whether a verification token is outstanding at now.
func (u User) HasPendingVerification(now time.Time) bool {
	return u.VerifyTokenHash != nil && u.VerifyExpiresAt != nil && now.Before(*u.VerifyExpiresAt)
}

// ChangedPasswordAfter reports whether the password was rotated strictly
// after a token issued at issuedAt. Both sides are compared at whole-second
// granularity, matching the resolution of JWT "iat".
func (u User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Unix() > issuedAt.Unix()
}

// Sanitized returns a copy without credentials or verification secrets.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	u.VerifyTokenHash = nil
	u.VerifyExpiresAt = nil
	return u
}
