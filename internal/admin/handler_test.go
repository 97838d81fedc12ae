// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/leadcap/internal/middleware"
)

type staticCounter struct {
	counts map[string]int
	err    error
}

func (c staticCounter) CountByStatus(context.Context) (map[string]int, error) {
	return c.counts, c.err
}

func statsRouter(cfg HandlerConfig, p *middleware.Principal) http.Handler {
	inject := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p != nil {
				r = r.WithContext(middleware.WithPrincipal(r.Context(), p))
			}
			next.ServeHTTP(w, r)
		})
	}

	r := chi.NewRouter()
	NewHandler(cfg).RegisterRoutes(r, inject, middleware.RequireAdmin)
	return r
}

var adminPrincipal = &middleware.Principal{UserID: 1, Role: "admin", Status: "active"}

func TestGetSystemStats(t *testing.T) {
	h := statsRouter(HandlerConfig{
		Users:   staticCounter{counts: map[string]int{"active": 3, "flagged": 1, "blocked": 0}},
		Entries: staticCounter{counts: map[string]int{"pending": 2, "queued": 1, "enriched": 4}},
		DBStats: func() sql.DBStats { return sql.DBStats{MaxOpenConnections: 1, OpenConnections: 1} },
		DBPing:  func(context.Context) error { return nil },
	}, adminPrincipal)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SystemStatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Users["active"])
	assert.Equal(t, 4, resp.Entries["enriched"])
	assert.True(t, resp.Database.Healthy)
	require.NotNil(t, resp.Database.Stats)
	assert.Equal(t, 1, resp.Database.Stats.MaxOpenConnections)
	assert.Nil(t, resp.Redis, "redis is omitted when not configured")
	assert.NotEmpty(t, resp.Runtime.GoVersion)
}

func TestGetSystemStats_Errors(t *testing.T) {
	h := statsRouter(HandlerConfig{
		Users:   staticCounter{err: errors.New("db down")},
		Entries: staticCounter{},
	}, adminPrincipal)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	h = statsRouter(HandlerConfig{}, &middleware.Principal{UserID: 2, Role: "user", Status: "active"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
