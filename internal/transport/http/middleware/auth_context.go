package middleware

import (
	"context"

	"github.com/baechuer/kanjo/services/account-service/internal/domain"
)

type ctxKey string

const ctxUser ctxKey = "user"

// WithUser stores the authenticated user. Credentials are stripped first.
func WithUser(ctx context.Context, u domain.User) context.Context {
	return context.WithValue(ctx, ctxUser, u.Sanitized())
}

func UserFromContext(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(ctxUser).(domain.User)
	return u, ok && u.ID != ""
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	u, ok := UserFromContext(ctx)
	return u.ID, ok
}

func RoleFromContext(ctx context.Context) (string, bool) {
	u, ok := UserFromContext(ctx)
	return u.Role, ok && u.Role != ""
}
