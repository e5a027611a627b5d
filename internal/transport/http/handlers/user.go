package http_handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/kanjo/services/account-service/internal/application/auth"
	"github.com/baechuer/kanjo/services/account-service/internal/domain"
	"github.com/baechuer/kanjo/services/account-service/internal/infrastructure/security"
	"github.com/baechuer/kanjo/services/account-service/internal/logger"
	"github.com/baechuer/kanjo/services/account-service/internal/transport/http/dto"
	"github.com/baechuer/kanjo/services/account-service/internal/transport/http/middleware"
	"github.com/baechuer/kanjo/services/account-service/internal/transport/http/response"
)

type UserHandler struct {
	svc           *auth.Service
	sessionTTL    time.Duration
	secureCookies bool
}

// NewUserHandler: sessionTTL must match the JWT lifetime so the cookie and
// the token expire together.
func NewUserHandler(svc *auth.Service, sessionTTL time.Duration, secureCookies bool) *UserHandler {
	return &UserHandler{
		svc:           svc,
		sessionTTL:    sessionTTL,
		secureCookies: secureCookies,
	}
}

func (h *UserHandler) setSession(w http.ResponseWriter, sess auth.Session) {
	security.SetSessionCookie(w, sess.Token, h.sessionTTL, h.secureCookies)
}

func currentUser(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenMissing())
		return domain.User{}, false
	}
	return u, true
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	u, err := h.svc.Register(r.Context(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", u.ID).
		Msg("user_registered")

	response.Created(w, dto.UserData{User: dto.NewUserView(u)})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	sess, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		middleware.LoginAttemptsTotal.WithLabelValues(loginStatus(err)).Inc()
		response.WriteError(w, r, err)
		return
	}
	middleware.LoginAttemptsTotal.WithLabelValues("success").Inc()

	logger.WithCtx(r.Context()).Info().
		Str("user_id", sess.User.ID).
		Msg("user_logged_in")

	h.setSession(w, sess)
	response.OK(w, dto.UserData{User: dto.NewUserView(sess.User)})
}

func loginStatus(err error) string {
	switch code := domain.CodeOf(err); code {
	case "invalid_credentials", "email_not_verified", "missing_field":
		return code
	default:
		return "error"
	}
}

func (h *UserHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.VerifyEmail(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", sess.User.ID).
		Msg("email_verified")

	h.setSession(w, sess)
	response.OK(w, dto.UserData{User: dto.NewUserView(sess.User)})
}

// ResendVerification runs behind SoftAuth: when the body carries no email
// the signed-in (possibly unverified) account is used.
func (h *UserHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req dto.ResendVerificationRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if req.Email == "" {
		if u, ok := middleware.UserFromContext(r.Context()); ok {
			req.Email = u.Email
		}
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.ResendVerification(r.Context(), req.Email); err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.MessageData{Message: "verification email sent"})
}

func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	cur, ok := currentUser(w, r)
	if !ok {
		return
	}

	u, err := h.svc.Profile(r.Context(), cur.ID)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.UserData{User: dto.NewUserView(u)})
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	cur, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	sess, err := h.svc.UpdateProfile(r.Context(), cur.ID, auth.ProfileInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	h.setSession(w, sess)
	response.OK(w, dto.UserData{User: dto.NewUserView(sess.User)})
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	cur, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	sess, err := h.svc.ChangePassword(r.Context(), cur.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", cur.ID).
		Msg("password_changed")

	h.setSession(w, sess)
	response.OK(w, dto.MessageData{Message: "password updated"})
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if u, ok := middleware.UserFromContext(r.Context()); ok {
		h.svc.Logout(r.Context(), u.ID)
	}
	security.ClearSessionCookie(w, h.secureCookies)
	response.OK(w, dto.MessageData{Message: "logged out"})
}

func (h *UserHandler) CheckAuth(w http.ResponseWriter, r *http.Request) {
	cur, ok := currentUser(w, r)
	if !ok {
		return
	}
	response.OK(w, dto.UserData{User: dto.NewUserView(cur)})
}

func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	cur, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteAccount(r.Context(), cur.ID); err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", cur.ID).
		Msg("account_deleted")

	security.ClearSessionCookie(w, h.secureCookies)
	response.NoContent(w)
}
