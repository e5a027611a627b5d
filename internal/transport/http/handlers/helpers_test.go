package http_handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/kanjo/services/account-service/internal/application/auth"
	"github.com/baechuer/kanjo/services/account-service/internal/application/catalog"
	"github.com/baechuer/kanjo/services/account-service/internal/domain"
	"github.com/baechuer/kanjo/services/account-service/internal/infrastructure/memory"
	"github.com/baechuer/kanjo/services/account-service/internal/infrastructure/security"
	"github.com/baechuer/kanjo/services/account-service/internal/transport/http/middleware"
)

const verifyBaseURL = "http://app.test/verify-email/"

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type capturePublisher struct {
	mu     sync.Mutex
	events []auth.VerifyEmailEvent
}

func (p *capturePublisher) PublishVerifyEmail(_ context.Context, evt auth.VerifyEmailEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

// lastToken returns the raw verification token of the latest link sent to email.
func (p *capturePublisher) lastToken(t *testing.T, email string) string {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.events) - 1; i >= 0; i-- {
		if p.events[i].Email == email {
			return strings.TrimPrefix(p.events[i].URL, verifyBaseURL)
		}
	}
	require.Failf(t, "missing verification event", "no link sent to %s", email)
	return ""
}

type testEnv struct {
	clock   *testClock
	users   *memory.UserRepo
	pub     *capturePublisher
	svc     *auth.Service
	tokens  *security.JWTIssuer
	user    *UserHandler
	catalog *CatalogHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clock := &testClock{t: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
	users := memory.NewUserRepo()
	pub := &capturePublisher{}

	tokens, err := security.NewJWTIssuer(security.JWTConfig{
		Secret: "handler-test-secret",
		Issuer: "account-service",
		Now:    clock.Now,
	})
	require.NoError(t, err)

	svc := auth.NewService(users, security.NewBcryptHasher(security.MinCost), tokens, pub, auth.Config{
		VerifyEmailBaseURL: verifyBaseURL,
		Now:                clock.Now,
	})

	cat := memory.NewCatalog()
	catSvc := catalog.NewService(cat.Roles(), cat.Skills()).WithClock(clock.Now)

	return &testEnv{
		clock:   clock,
		users:   users,
		pub:     pub,
		svc:     svc,
		tokens:  tokens,
		user:    NewUserHandler(svc, tokens.TTL(), false),
		catalog: NewCatalogHandler(catSvc),
	}
}

// verifiedUser registers and verifies an account directly through the service.
func (e *testEnv) verifiedUser(t *testing.T, name, email, password string) domain.User {
	t.Helper()
	_, err := e.svc.Register(context.Background(), auth.RegisterInput{Name: name, Email: email, Password: password})
	require.NoError(t, err)
	sess, err := e.svc.VerifyEmail(context.Background(), e.pub.lastToken(t, email))
	require.NoError(t, err)
	return sess.User
}

func mustJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()

	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

// mustReadData decodes the {"data": ...} envelope into out.
func mustReadData(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), "body=%s", rr.Body.String())
	require.NotEmpty(t, env.Data, "body=%s", rr.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out), "body=%s", rr.Body.String())
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), "body=%s", rr.Body.String())
	return body.Error.Code
}

func readCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func withUserCtx(req *http.Request, u domain.User) *http.Request {
	return req.WithContext(middleware.WithUser(req.Context(), u))
}

// withURLParams injects chi URL params (e.g. /roles/{id}) into request context.
func withURLParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
