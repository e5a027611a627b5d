package http_handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestHealthz_OK(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHealthHandler(nil).Healthz(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestReadyz_AllHealthy(t *testing.T) {
	h := NewHealthHandler(map[string]Pinger{"postgres": fakePinger{}, "redis": nil})
	rr := httptest.NewRecorder()
	h.Readyz(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var body healthStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Checks["postgres"])
	assert.NotContains(t, body.Checks, "redis", "nil pinger should be skipped")
}

func TestReadyz_DependencyDown_503(t *testing.T) {
	h := NewHealthHandler(map[string]Pinger{"postgres": fakePinger{err: errors.New("conn refused")}})
	rr := httptest.NewRecorder()
	h.Readyz(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	var body healthStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "unavailable", body.Status)
	assert.Equal(t, "unavailable", body.Checks["postgres"])
}
