package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/baechuer/kanjo/services/account-service/internal/domain"
)

const (
	// PasswordChangeSkew backdates password_changed_at so that the token
	// minted in the same request (iat truncated to the second) stays valid.
	PasswordChangeSkew = time.Second

	// MinPasswordLength applies to registration and password changes.
	MinPasswordLength = 6

	verifyTokenBytes = 20
)

type Service struct {
	users  UserRepo
	hasher PasswordHasher
	tokens TokenIssuer
	pub    EventPublisher

	audit func(action string, fields map[string]string)
	now   func() time.Time

	// e.g. https://app.example.com/verify-email/
	verifyEmailBaseURL string
	verifyEmailTTL     time.Duration
}

type Config struct {
	VerifyEmailBaseURL  string
	VerifyEmailTokenTTL time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

func NewService(
	users UserRepo,
	hasher PasswordHasher,
	tokens TokenIssuer,
	pub EventPublisher,
	cfg Config,
) *Service {
	verifyTTL := cfg.VerifyEmailTokenTTL
	if verifyTTL <= 0 {
		verifyTTL = 24 * time.Hour
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		pub:    pub,
		audit:  func(string, map[string]string) {},
		now:    now,

		verifyEmailBaseURL: cfg.VerifyEmailBaseURL,
		verifyEmailTTL:     verifyTTL,
	}
}

// Session is the output of every flow that (re)issues a session token.
type Session struct {
	User  domain.User
	Token string
}

func (s *Service) WithAudit(fn func(action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

func (s *Service) issueSession(u domain.User) (Session, error) {
	tok, err := s.tokens.Issue(u)
	if err != nil {
		var de *domain.Error
		if errors.As(err, &de) {
			return Session{}, err
		}
		return Session{}, domain.ErrTokenSignFailed(err)
	}
	return Session{User: u.Sanitized(), Token: tok}, nil
}

// newVerification returns the raw token for the email link and the hashed
// half that is persisted.
func (s *Service) newVerification() (string, PendingVerification, error) {
	raw, err := newOpaqueToken(verifyTokenBytes)
	if err != nil {
		return "", PendingVerification{}, domain.ErrRandomFailed(err)
	}
	return raw, PendingVerification{
		TokenHash: hashToken(raw),
		ExpiresAt: s.now().Add(s.verifyEmailTTL),
	}, nil
}

// newOpaqueToken returns a hex encoded random token.
func newOpaqueToken(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		return "", errors.New("invalid token length")
	}
	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
