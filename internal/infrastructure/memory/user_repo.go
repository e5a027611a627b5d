package memory

import (
	"context"
	"sync"
	"time"

	"github.com/baechuer/kanjo/services/account-service/internal/application/auth"
	"github.com/baechuer/kanjo/services/account-service/internal/domain"
)

// UserRepo is an in-process credential store for tests and local runs.
type UserRepo struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string // email -> userID
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return r.byID[id], nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (r *UserRepo) GetPasswordHash(ctx context.Context, userID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[userID]
	if !ok {
		return "", domain.ErrUserNotFound()
	}
	return u.PasswordHash, nil
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[u.Email]; exists {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	}
	if u.ID == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	if u.Role == "" {
		u.Role = string(domain.RoleUser)
	}

	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	return u, nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, userID string, change auth.ProfileChange) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	if change.Email != u.Email {
		if _, taken := r.byEmail[change.Email]; taken {
			return domain.User{}, domain.ErrEmailAlreadyExists()
		}
		delete(r.byEmail, u.Email)
		r.byEmail[change.Email] = userID
	}

	u.Name = change.Name
	u.Email = change.Email
	if pv := change.Verification; pv != nil {
		hash, exp := pv.TokenHash, pv.ExpiresAt
		u.EmailVerified = false
		u.VerifyTokenHash = &hash
		u.VerifyExpiresAt = &exp
	}
	u.UpdatedAt = time.Now()
	r.byID[userID] = u
	return u, nil
}

func (r *UserRepo) SetVerification(ctx context.Context, userID string, pv auth.PendingVerification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	hash, exp := pv.TokenHash, pv.ExpiresAt
	u.VerifyTokenHash = &hash
	u.VerifyExpiresAt = &exp
	r.byID[userID] = u
	return nil
}

func (r *UserRepo) RedeemVerification(ctx context.Context, tokenHash string, now time.Time) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, u := range r.byID {
		if u.VerifyTokenHash == nil || *u.VerifyTokenHash != tokenHash {
			continue
		}
		if !u.HasPendingVerification(now) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		u.EmailVerified = true
		u.VerifyTokenHash = nil
		u.VerifyExpiresAt = nil
		u.UpdatedAt = now
		r.byID[id] = u
		return u, nil
	}
	return domain.User{}, domain.ErrUserNotFound()
}

func (r *UserRepo) UpdatePassword(ctx context.Context, userID, newHash string, changedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.PasswordHash = newHash
	u.PasswordChangedAt = &changedAt
	r.byID[userID] = u
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	delete(r.byEmail, u.Email)
	delete(r.byID, userID)
	return nil
}
