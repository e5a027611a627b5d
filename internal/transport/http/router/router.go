package router

import (
	"fmt"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/baechuer/kanjo/services/account-service/internal/domain"
	"github.com/baechuer/kanjo/services/account-service/internal/transport/http/middleware"
	"github.com/baechuer/kanjo/services/account-service/internal/transport/http/response"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
}

type UserHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	VerifyEmail(w http.ResponseWriter, r *http.Request)
	ResendVerification(w http.ResponseWriter, r *http.Request)

	Profile(w http.ResponseWriter, r *http.Request)
	UpdateProfile(w http.ResponseWriter, r *http.Request)
	ChangePassword(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	CheckAuth(w http.ResponseWriter, r *http.Request)
	DeleteAccount(w http.ResponseWriter, r *http.Request)
}

type CatalogHandler interface {
	CreateRole(w http.ResponseWriter, r *http.Request)
	ListRoles(w http.ResponseWriter, r *http.Request)
	RolesWithSkillCount(w http.ResponseWriter, r *http.Request)
	GetRole(w http.ResponseWriter, r *http.Request)
	UpdateRole(w http.ResponseWriter, r *http.Request)
	DeleteRole(w http.ResponseWriter, r *http.Request)
	AddSkillToRole(w http.ResponseWriter, r *http.Request)
	RemoveSkillFromRole(w http.ResponseWriter, r *http.Request)

	CreateSkill(w http.ResponseWriter, r *http.Request)
	ListSkills(w http.ResponseWriter, r *http.Request)
	UnassignedSkills(w http.ResponseWriter, r *http.Request)
	SkillsByRole(w http.ResponseWriter, r *http.Request)
	GetSkill(w http.ResponseWriter, r *http.Request)
	UpdateSkill(w http.ResponseWriter, r *http.Request)
	DeleteSkill(w http.ResponseWriter, r *http.Request)
	AssignSkill(w http.ResponseWriter, r *http.Request)
	UnassignSkill(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Health  HealthHandler
	User    UserHandler
	Catalog CatalogHandler

	AuthMW     func(http.Handler) http.Handler
	SoftAuthMW func(http.Handler) http.Handler
	AdminMW    func(http.Handler) http.Handler

	// Limiter backs the per-route limits. When nil an in-process per-IP
	// limiter is used instead.
	Limiter    middleware.RateLimiter
	RateLimit  int
	RateWindow time.Duration

	// TrustedProxies may set X-Forwarded-For / X-Real-IP. Empty means the
	// client IP is always the TCP peer.
	TrustedProxies []netip.Prefix

	// CSRFMW guards every API route when set.
	CSRFMW func(http.Handler) http.Handler

	// Metrics defaults to promhttp.Handler().
	Metrics http.Handler
}

const APIPrefix = "/api/v1"

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.User == nil {
		return nil, fmt.Errorf("nil User handler")
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("nil Catalog handler")
	}
	if deps.AuthMW == nil {
		return nil, fmt.Errorf("nil Auth middleware")
	}
	if deps.SoftAuthMW == nil {
		return nil, fmt.Errorf("nil SoftAuth middleware")
	}
	if deps.AdminMW == nil {
		return nil, fmt.Errorf("nil Admin middleware")
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	limit := rateLimiter(deps)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RealIP(deps.TrustedProxies))
	r.Use(chimw.Recoverer)
	r.Use(middleware.AccessLog)
	r.Use(middleware.Metrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.WriteError(w, r, domain.ErrRouteNotFound())
	})

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	r.Method(http.MethodGet, "/metrics", metrics)

	r.Route(APIPrefix, func(r chi.Router) {
		if deps.CSRFMW != nil {
			r.Use(deps.CSRFMW)
		}

		r.Route("/user", func(r chi.Router) {
			// --- Public ---
			r.With(limit("register")).Post("/register", deps.User.Register)
			r.With(limit("login")).Post("/login", deps.User.Login)
			r.Get("/verify-email/{token}", deps.User.VerifyEmail)

			// --- Works for not-yet-verified accounts ---
			r.With(deps.SoftAuthMW, limit("resend_verification")).Post("/resend-verification", deps.User.ResendVerification)

			// --- Signed in, verified ---
			r.Group(func(r chi.Router) {
				r.Use(deps.AuthMW)
				r.Get("/profile", deps.User.Profile)
				r.Put("/profile", deps.User.UpdateProfile)
				r.With(limit("change_password")).Put("/change-password", deps.User.ChangePassword)
				r.Get("/logout", deps.User.Logout)
				r.Get("/check-auth", deps.User.CheckAuth)
				r.Delete("/account", deps.User.DeleteAccount)
			})
		})

		// --- Catalog roles (admin) ---
		r.Route("/roles", func(r chi.Router) {
			r.Use(deps.AuthMW)
			r.Use(deps.AdminMW)

			r.Post("/", deps.Catalog.CreateRole)
			r.Get("/", deps.Catalog.ListRoles)
			r.Get("/stats/count", deps.Catalog.RolesWithSkillCount)
			r.Get("/{id}", deps.Catalog.GetRole)
			r.Patch("/{id}", deps.Catalog.UpdateRole)
			r.Delete("/{id}", deps.Catalog.DeleteRole)
			r.Post("/{id}/skills", deps.Catalog.AddSkillToRole)
			r.Delete("/{id}/skills/{skillId}", deps.Catalog.RemoveSkillFromRole)
		})

		// --- Catalog skills (public reads, admin writes) ---
		r.Route("/skills", func(r chi.Router) {
			r.Get("/", deps.Catalog.ListSkills)
			r.Get("/unassigned", deps.Catalog.UnassignedSkills)
			r.Get("/role/{roleId}", deps.Catalog.SkillsByRole)
			r.Get("/{id}", deps.Catalog.GetSkill)

			r.Group(func(r chi.Router) {
				r.Use(deps.AuthMW)
				r.Use(deps.AdminMW)
				r.Post("/", deps.Catalog.CreateSkill)
				r.Patch("/{id}", deps.Catalog.UpdateSkill)
				r.Delete("/{id}", deps.Catalog.DeleteSkill)
				r.Patch("/{id}/assign", deps.Catalog.AssignSkill)
				r.Patch("/{id}/remove-role", deps.Catalog.UnassignSkill)
			})
		})
	})

	return r, nil
}

// rateLimiter returns a constructor of per-route limits. Redis-backed
// fixed windows are shared across replicas; the httprate fallback counts
// per process.
func rateLimiter(deps Deps) func(routeKey string) func(http.Handler) http.Handler {
	window := deps.RateWindow
	if window <= 0 {
		window = time.Minute
	}

	return func(routeKey string) func(http.Handler) http.Handler {
		if deps.RateLimit <= 0 {
			return passthrough
		}
		if deps.Limiter != nil {
			return middleware.RateLimitFixedWindow(deps.Limiter, middleware.FixedWindowConfig{
				RouteKey: routeKey,
				Limit:    deps.RateLimit,
				Window:   window,
			}, response.WriteError)
		}
		return httprate.Limit(
			deps.RateLimit,
			window,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				response.WriteError(w, r, domain.ErrRateLimited(routeKey))
			}),
		)
	}
}

func passthrough(next http.Handler) http.Handler { return next }
