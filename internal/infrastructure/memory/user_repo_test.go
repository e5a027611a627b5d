package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/kanjo/services/account-service/internal/application/auth"
	"github.com/baechuer/kanjo/services/account-service/internal/domain"
)

func newUser(id, email string) domain.User {
	return domain.User{ID: id, Name: "n-" + id, Email: email, PasswordHash: "h"}
}

func TestUserRepo_CreateAndLookup(t *testing.T) {
	r := NewUserRepo()
	ctx := context.Background()

	u, err := r.Create(ctx, newUser("u1", "a@b.com"))
	require.NoError(t, err)
	assert.Equal(t, string(domain.RoleUser), u.Role)

	_, err = r.GetByEmail(ctx, "a@b.com")
	assert.NoError(t, err)
	_, err = r.GetByID(ctx, "u1")
	assert.NoError(t, err)
	_, err = r.GetByID(ctx, "nope")
	assert.Equal(t, "user_not_found", domain.CodeOf(err))

	hash, err := r.GetPasswordHash(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "h", hash)
	_, err = r.GetPasswordHash(ctx, "nope")
	assert.Equal(t, "user_not_found", domain.CodeOf(err))
}

func TestUserRepo_Create_DuplicateEmail(t *testing.T) {
	r := NewUserRepo()
	ctx := context.Background()

	_, _ = r.Create(ctx, newUser("u1", "a@b.com"))
	_, err := r.Create(ctx, newUser("u2", "a@b.com"))
	assert.Equal(t, "email_already_exists", domain.CodeOf(err))
}

func TestUserRepo_UpdateProfile_EmailChangeResetsVerification(t *testing.T) {
	r := NewUserRepo()
	ctx := context.Background()

	u := newUser("u1", "a@b.com")
	u.EmailVerified = true
	_, _ = r.Create(ctx, u)
	_, _ = r.Create(ctx, newUser("u2", "taken@b.com"))

	exp := time.Now().Add(time.Hour)
	_, err := r.UpdateProfile(ctx, "u1", auth.ProfileChange{Name: "x", Email: "taken@b.com"})
	assert.Equal(t, "email_already_exists", domain.CodeOf(err))

	got, err := r.UpdateProfile(ctx, "u1", auth.ProfileChange{
		Name:         "x",
		Email:        "new@b.com",
		Verification: &auth.PendingVerification{TokenHash: "th", ExpiresAt: exp},
	})
	require.NoError(t, err)
	assert.False(t, got.EmailVerified)
	require.NotNil(t, got.VerifyTokenHash)
	assert.Equal(t, "th", *got.VerifyTokenHash)

	_, err = r.GetByEmail(ctx, "a@b.com")
	assert.Equal(t, "user_not_found", domain.CodeOf(err), "old email index should be gone")
	_, err = r.GetByEmail(ctx, "new@b.com")
	assert.NoError(t, err)
}

func TestUserRepo_RedeemVerification_SingleUseAndExpiry(t *testing.T) {
	r := NewUserRepo()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	_, _ = r.Create(ctx, newUser("u1", "a@b.com"))
	require.NoError(t, r.SetVerification(ctx, "u1", auth.PendingVerification{TokenHash: "th", ExpiresAt: now.Add(time.Hour)}))

	_, err := r.RedeemVerification(ctx, "th", now.Add(2*time.Hour))
	assert.Equal(t, "user_not_found", domain.CodeOf(err), "expired token must not redeem")

	u, err := r.RedeemVerification(ctx, "th", now)
	require.NoError(t, err)
	assert.True(t, u.EmailVerified)
	assert.Nil(t, u.VerifyTokenHash)
	assert.Nil(t, u.VerifyExpiresAt)

	_, err = r.RedeemVerification(ctx, "th", now)
	assert.Equal(t, "user_not_found", domain.CodeOf(err), "second redeem must fail")
}

func TestUserRepo_UpdatePasswordAndDelete(t *testing.T) {
	r := NewUserRepo()
	ctx := context.Background()
	_, _ = r.Create(ctx, newUser("u1", "a@b.com"))

	at := time.Now().Add(-time.Second)
	require.NoError(t, r.UpdatePassword(ctx, "u1", "h2", at))

	u, err := r.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "h2", u.PasswordHash)
	require.NotNil(t, u.PasswordChangedAt)
	assert.True(t, u.PasswordChangedAt.Equal(at))

	require.NoError(t, r.Delete(ctx, "u1"))
	assert.Equal(t, "user_not_found", domain.CodeOf(r.Delete(ctx, "u1")))
	_, err = r.GetByEmail(ctx, "a@b.com")
	assert.Equal(t, "user_not_found", domain.CodeOf(err), "email index should be gone")
	assert.Equal(t, "user_not_found", domain.CodeOf(r.UpdatePassword(ctx, "u1", "h3", at)))
}
