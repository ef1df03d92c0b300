package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error { return nil }

func serveHealth(t *testing.T, required, optional map[string]Check) (int, Health) {
	t.Helper()
	rec := httptest.NewRecorder()
	HealthHandler(required, optional, time.Second, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	var body Health
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHealthAllPassing(t *testing.T) {
	code, body := serveHealth(t, map[string]Check{"redis": ok}, map[string]Check{"postgres": ok})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, map[string]string{"redis": "ok", "postgres": "ok"}, body.Checks)
}

func TestHealthRequiredFailure(t *testing.T) {
	down := func(context.Context) error { return errors.New("connection refused") }
	code, body := serveHealth(t, map[string]Check{"redis": down}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unavailable", body.Status)
	assert.Equal(t, "connection refused", body.Checks["redis"])
}

func TestHealthOptionalFailureDegrades(t *testing.T) {
	down := func(context.Context) error { return errors.New("timeout") }
	code, body := serveHealth(t, map[string]Check{"redis": ok}, map[string]Check{"gotenberg": down})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "degraded", body.Status)
}

func TestFailWritesProblem(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, http.StatusBadGateway, "queue down")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"detail":"queue down"`)
	assert.Contains(t, rec.Body.String(), `"title":"Bad Gateway"`)
}
