package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestProfile_ReturnsSanitizedUser(t *testing.T) {
	t.Parallel()

	env := newSvcForTest(t)
	env.seedVerified("u1", "e@x.com", "secret1")

	u, err := env.svc.Profile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "e@x.com", u.Email)
	assert.Empty(t, u.PasswordHash)

	_, err = env.svc.Profile(context.Background(), "ghost")
	requireDomainCode(t, err, "user_not_found")
}

func TestUpdateProfile_NameOnly_KeepsVerification(t *testing.T) {
	t.Parallel()

	env := newSvcForTest(t)
	env.seedVerified("u1", "e@x.com", "secret1")

	sess, err := env.svc.UpdateProfile(context.Background(), "u1", ProfileInput{Name: "renamed"})
	require.NoError(t, err)
	assert.Equal(t, "renamed", sess.User.Name)
	assert.True(t, sess.User.EmailVerified)
	assert.NotEmpty(t, sess.Token)
	assert.Empty(t, env.pub.events, "no verification expected for a name change")
}

func TestUpdateProfile_SameEmail_NoReset(t *testing.T) {
	t.Parallel()

	env := newSvcForTest(t)
	env.seedVerified("u1", "e@x.com", "secret1")

	sess, err := env.svc.UpdateProfile(context.Background(), "u1", ProfileInput{Name: "n", Email: strPtr(" E@X.com ")})
	require.NoError(t, err)
	assert.True(t, sess.User.EmailVerified, "unchanged email must stay verified")
}

func TestUpdateProfile_NewEmail_ResetsVerificationAndSendsLink(t *testing.T) {
	t.Parallel()

	env := newSvcForTest(t)
	env.seedVerified("u1", "e@x.com", "secret1")

	sess, err := env.svc.UpdateProfile(context.Background(), "u1", ProfileInput{Name: "n", Email: strPtr("new@x.com")})
	require.NoError(t, err)
	assert.Equal(t, "new@x.com", sess.User.Email)
	assert.False(t, sess.User.EmailVerified)

	evt := env.pub.last(t)
	assert.Equal(t, "new@x.com", evt.Email)
	_, err = env.svc.VerifyEmail(context.Background(), rawTokenFrom(t, evt))
	require.NoError(t, err, "new link should verify")

	e := requireAuditAction(t, env.audits, "auth.profile_update")
	assert.Equal(t, "true", e.fields["email_changed"])
}

func TestUpdateProfile_EmailTaken_Conflict(t *testing.T) {
	t.Parallel()

	env := newSvcForTest(t)
	env.seedVerified("u1", "e@x.com", "secret1")
	env.seedVerified("u2", "taken@x.com", "secret1")

	_, err := env.svc.UpdateProfile(context.Background(), "u1", ProfileInput{Name: "n", Email: strPtr("taken@x.com")})
	requireDomainCode(t, err, "email_already_exists")
	assert.Equal(t, "e@x.com", env.users.get("u1").Email)
}

func TestUpdateProfile_MissingName(t *testing.T) {
	t.Parallel()

	env := newSvcForTest(t)
	_, err := env.svc.UpdateProfile(context.Background(), "u1", ProfileInput{Name: " "})
	requireDomainCode(t, err, "missing_field")
}

func TestLogout_Audited(t *testing.T) {
	t.Parallel()

	env := newSvcForTest(t)
	env.svc.Logout(context.Background(), "u1")

	e := requireAuditAction(t, env.audits, "auth.logout")
	assert.Equal(t, "u1", e.fields["user_id"])
}
