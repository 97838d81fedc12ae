// AngelaMos | 2026
// handler_test.go

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func get(h *Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestReadiness_AllHealthy(t *testing.T) {
	h := NewHandler(
		Dependency{Name: "database", Checker: pinger{}},
		Dependency{Name: "redis", Checker: pinger{}},
	)

	rec := get(h, "/readyz")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Checks, 2)
	assert.Equal(t, "database", resp.Checks[0].Name)
	assert.Equal(t, "redis", resp.Checks[1].Name)
}

func TestReadiness_Degraded(t *testing.T) {
	h := NewHandler(
		Dependency{Name: "database", Checker: pinger{err: errors.New("down")}},
		Dependency{Name: "redis"},
	)

	rec := get(h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.False(t, resp.Checks[0].Healthy)
	assert.Equal(t, "ping failed", resp.Checks[0].Message)
	assert.False(t, resp.Checks[1].Healthy)
}

func TestShutdownFailsProbes(t *testing.T) {
	h := NewHandler()

	assert.Equal(t, http.StatusOK, get(h, "/healthz").Code)
	assert.Equal(t, http.StatusOK, get(h, "/readyz").Code)

	h.SetReady(false)
	assert.Equal(t, http.StatusServiceUnavailable, get(h, "/readyz").Code)
	assert.Equal(t, http.StatusOK, get(h, "/livez").Code)

	h.SetShutdown(true)
	assert.Equal(t, http.StatusServiceUnavailable, get(h, "/healthz").Code)
}
