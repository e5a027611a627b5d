package middleware

import (
	"context"
	"net/http"

	"github.com/baechuer/kanjo/services/account-service/internal/application/auth"
	"github.com/baechuer/kanjo/services/account-service/internal/domain"
	"github.com/baechuer/kanjo/services/account-service/internal/infrastructure/security"
	"github.com/baechuer/kanjo/services/account-service/internal/logger"
)

// Authenticator is satisfied by *auth.Service.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) auth.AuthResult
}

type WriteErrFunc func(http.ResponseWriter, *http.Request, error)

// Auth is the strict session check. It reads the "token" cookie (or an
// Authorization: Bearer header), requires a verified email and injects the
// user into the request context. Every refusal is written through writeErr.
func Auth(authn Authenticator, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := authn.Authenticate(r.Context(), security.ReadSessionToken(r))
			// an identified account must verify its email before any other refusal
			if res.User.ID != "" && !res.User.EmailVerified {
				authDenialsTotal.WithLabelValues("email_not_verified").Inc()
				writeErr(w, r, domain.ErrEmailNotVerified())
				return
			}
			if !res.Authenticated() {
				authDenialsTotal.WithLabelValues(res.Reason.Code).Inc()
				writeErr(w, r, res.Reason)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), res.User)))
		})
	}
}

// SoftAuth attaches the user when the session is valid and otherwise lets
// the request through anonymously. Unverified accounts are attached too.
func SoftAuth(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := security.ReadSessionToken(r)
			if tok == "" {
				next.ServeHTTP(w, r)
				return
			}

			res := authn.Authenticate(r.Context(), tok)
			if !res.Authenticated() {
				logger.WithCtx(r.Context()).Debug().
					Str("reason", res.Reason.Code).
					Msg("soft auth: continuing anonymously")
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), res.User)))
		})
	}
}
