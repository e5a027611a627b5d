package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/baechuer/kanjo/services/account-service/internal/domain"
)

/*
Shared audit capture
*/

type auditEntry struct {
	action string
	fields map[string]string
}

/*
Clock
*/

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

/*
Fakes for ports
*/

type fakeUserRepo struct {
	mu sync.Mutex

	byID map[string]domain.User

	// injected errors (if set, method returns error)
	getByIDErr    error
	getByEmailErr error
	getHashErr    error
	createErr     error
	updatePwdErr  error
	setVerifyErr  error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]domain.User{}}
}

func (f *fakeUserRepo) put(u domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
}

func (f *fakeUserRepo) get(id string) domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id]
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByEmailErr != nil {
		return domain.User{}, f.getByEmailErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound()
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByIDErr != nil {
		return domain.User{}, f.getByIDErr
	}
	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) GetPasswordHash(ctx context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getHashErr != nil {
		return "", f.getHashErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return "", domain.ErrUserNotFound()
	}
	return u.PasswordHash, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return domain.User{}, f.createErr
	}
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, userID string, change ProfileChange) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.byID[userID]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	u.Name = change.Name
	u.Email = change.Email
	if change.Verification != nil {
		pv := *change.Verification
		u.EmailVerified = false
		u.VerifyTokenHash = &pv.TokenHash
		u.VerifyExpiresAt = &pv.ExpiresAt
	}
	f.byID[userID] = u
	return u, nil
}

func (f *fakeUserRepo) SetVerification(ctx context.Context, userID string, pv PendingVerification) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.setVerifyErr != nil {
		return f.setVerifyErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.VerifyTokenHash = &pv.TokenHash
	u.VerifyExpiresAt = &pv.ExpiresAt
	f.byID[userID] = u
	return nil
}

func (f *fakeUserRepo) RedeemVerification(ctx context.Context, tokenHash string, now time.Time) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, u := range f.byID {
		if u.VerifyTokenHash == nil || *u.VerifyTokenHash != tokenHash {
			continue
		}
		if !now.Before(*u.VerifyExpiresAt) {
			break
		}
		u.EmailVerified = true
		u.VerifyTokenHash = nil
		u.VerifyExpiresAt = nil
		f.byID[id] = u
		return u, nil
	}
	return domain.User{}, domain.ErrUserNotFound()
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, userID, newHash string, changedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updatePwdErr != nil {
		return f.updatePwdErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.PasswordHash = newHash
	u.PasswordChangedAt = &changedAt
	f.byID[userID] = u
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.byID[userID]; !ok {
		return domain.ErrUserNotFound()
	}
	delete(f.byID, userID)
	return nil
}

type fakeHasher struct {
	hashFn    func(pw string) (string, error)
	compareFn func(hash, pw string) error
}

func (h *fakeHasher) Hash(password string) (string, error) {
	if h.hashFn != nil {
		return h.hashFn(password)
	}
	return "hash:" + password, nil
}

func (h *fakeHasher) Compare(hash string, password string) error {
	if h.compareFn != nil {
		return h.compareFn(hash, password)
	}
	if hash == "hash:"+password {
		return nil
	}
	return errors.New("mismatch")
}

// fakeTokens mimics the JWT issuer: iat is truncated to the second.
type fakeTokens struct {
	mu     sync.Mutex
	clock  *fakeClock
	ttl    time.Duration
	seq    int
	issued map[string]SessionClaims

	issueErr error
}

func newFakeTokens(clock *fakeClock) *fakeTokens {
	return &fakeTokens{clock: clock, ttl: 90 * 24 * time.Hour, issued: map[string]SessionClaims{}}
}

func (f *fakeTokens) Issue(u domain.User) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.issueErr != nil {
		return "", f.issueErr
	}
	f.seq++
	iat := f.clock.Now().Truncate(time.Second)
	tok := fmt.Sprintf("jwt-%d(%s)", f.seq, u.ID)
	f.issued[tok] = SessionClaims{
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.Name,
		IssuedAt:  iat,
		ExpiresAt: iat.Add(f.ttl),
	}
	return tok, nil
}

func (f *fakeTokens) Verify(token string) (SessionClaims, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.issued[token]
	if !ok {
		return SessionClaims{}, domain.ErrTokenInvalid()
	}
	if !f.clock.Now().Before(c.ExpiresAt) {
		return SessionClaims{}, domain.ErrTokenExpired()
	}
	return c, nil
}

type fakePublisher struct {
	mu        sync.Mutex
	verifyErr error
	events    []VerifyEmailEvent
}

func (p *fakePublisher) PublishVerifyEmail(ctx context.Context, evt VerifyEmailEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.verifyErr != nil {
		return p.verifyErr
	}
	p.events = append(p.events, evt)
	return nil
}

func (p *fakePublisher) last(t *testing.T) VerifyEmailEvent {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	require.NotEmpty(t, p.events, "expected a published verification event")
	return p.events[len(p.events)-1]
}

const testVerifyBaseURL = "https://fe/verify-email/"

// rawTokenFrom extracts the verification token from the link.
func rawTokenFrom(t *testing.T, evt VerifyEmailEvent) string {
	t.Helper()
	raw := strings.TrimPrefix(evt.URL, testVerifyBaseURL)
	require.True(t, raw != "" && raw != evt.URL, "unexpected verification url %q", evt.URL)
	return raw
}

/*
Service factory for tests
*/

type testEnv struct {
	svc    *Service
	users  *fakeUserRepo
	hasher *fakeHasher
	tokens *fakeTokens
	pub    *fakePublisher
	clock  *fakeClock
	audits *[]auditEntry
}

func newSvcForTest(t *testing.T) testEnv {
	t.Helper()

	clock := newFakeClock()
	env := testEnv{
		users:  newFakeUserRepo(),
		hasher: &fakeHasher{},
		tokens: newFakeTokens(clock),
		pub:    &fakePublisher{},
		clock:  clock,
		audits: &[]auditEntry{},
	}

	var mu sync.Mutex
	env.svc = NewService(env.users, env.hasher, env.tokens, env.pub, Config{
		VerifyEmailBaseURL:  testVerifyBaseURL,
		VerifyEmailTokenTTL: 24 * time.Hour,
		Now:                 clock.Now,
	}).WithAudit(func(action string, fields map[string]string) {
		cp := map[string]string{}
		for k, v := range fields {
			cp[k] = v
		}
		mu.Lock()
		*env.audits = append(*env.audits, auditEntry{action: action, fields: cp})
		mu.Unlock()
	})

	return env
}

// seedVerified stores a verified user whose password is pw.
func (e testEnv) seedVerified(id, email, pw string) domain.User {
	u := domain.User{
		ID:            id,
		Name:          "user " + id,
		Email:         email,
		PasswordHash:  "hash:" + pw,
		Role:          string(domain.RoleUser),
		EmailVerified: true,
	}
	e.users.put(u)
	return u
}

/*
Small assertions
*/

func requireDomainCode(t *testing.T, err error, wantCode string) {
	t.Helper()
	require.Equal(t, wantCode, domainCode(err), "err=%v", err)
}

func requireAuditAction(t *testing.T, audits *[]auditEntry, wantAction string) auditEntry {
	t.Helper()
	for i := len(*audits) - 1; i >= 0; i-- {
		if (*audits)[i].action == wantAction {
			return (*audits)[i]
		}
	}
	require.Failf(t, "missing audit action", "want %q, got %+v", wantAction, *audits)
	return auditEntry{}
}
