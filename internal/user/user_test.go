// AngelaMos | 2026
// user_test.go

package user_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/leadcap/internal/core"
	"github.com/carterperez-dev/leadcap/internal/middleware"
	"github.com/carterperez-dev/leadcap/internal/testutil"
	"github.com/carterperez-dev/leadcap/internal/user"
)

func newService(t *testing.T) *user.Service {
	t.Helper()

	db := testutil.NewDatabase(t)
	return user.NewService(user.NewRepository(db.DB), testutil.NewIDs(t))
}

func TestCreateUser(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, " Ada ", "ADA@x.com", user.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)
	assert.Equal(t, "ada@x.com", u.Email)
	assert.True(t, u.IsAdmin())
	assert.Equal(t, user.StatusActive, u.Status)

	_, err = svc.CreateUser(ctx, "Ada", "ada@x.com", user.RoleUser)
	assert.ErrorIs(t, err, core.ErrDuplicateKey)

	_, err = svc.CreateUser(ctx, "Ada", "other@x.com", "root")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	got, err := svc.GetUserByEmail(ctx, "Ada@X.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.GetUser(ctx, 42)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestUpdateUserStatus(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	admin, err := svc.CreateUser(ctx, "Admin", "admin@x.com", user.RoleAdmin)
	require.NoError(t, err)
	target, err := svc.CreateUser(ctx, "Target", "t@x.com", user.RoleUser)
	require.NoError(t, err)

	updated, err := svc.UpdateUserStatus(ctx, admin.ID, target.ID, user.StatusBlocked)
	require.NoError(t, err)
	assert.True(t, updated.IsBlocked())

	_, err = svc.UpdateUserStatus(ctx, admin.ID, admin.ID, user.StatusFlagged)
	assert.ErrorIs(t, err, user.ErrSelfStatusChange)

	_, err = svc.UpdateUserStatus(ctx, admin.ID, target.ID, "banished")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.UpdateUserStatus(ctx, admin.ID, 999, user.StatusActive)
	assert.ErrorIs(t, err, core.ErrNotFound)

	counts, err := svc.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"active": 1, "flagged": 0, "blocked": 1}, counts)
}

func TestUpdateUserRole(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, "Ada", "ada@x.com", user.RoleUser)
	require.NoError(t, err)

	u, err = svc.UpdateUserRole(ctx, u.ID, user.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, u.Role)

	_, err = svc.UpdateUserRole(ctx, u.ID, "owner")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestStoreAccountEnrichment_Upserts(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, "Ada", "ada@x.com", user.RoleUser)
	require.NoError(t, err)

	stored, err := svc.StoreAccountEnrichment(ctx, "nobody@x.com", core.JSONDocument(`{}`))
	require.NoError(t, err)
	assert.False(t, stored)

	stored, err = svc.StoreAccountEnrichment(ctx, "ADA@x.com", core.JSONDocument(`{"v":1}`))
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = svc.StoreAccountEnrichment(ctx, "ada@x.com", core.JSONDocument(`{"v":2}`))
	require.NoError(t, err)
	assert.True(t, stored)

	users, total, err := svc.ListUsers(ctx, user.ListUsersParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, u.ID, users[0].ID)
	assert.JSONEq(t, `{"v":2}`, string(users[0].Enrichment))
}

func TestListUsers_FiltersAndPaging(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.CreateUser(ctx, "User "+strconv.Itoa(i), "u"+strconv.Itoa(i)+"@x.com", user.RoleUser)
		require.NoError(t, err)
	}
	_, err := svc.CreateUser(ctx, "Boss", "boss@corp.com", user.RoleAdmin)
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, "Percent", "50%off@x.com", user.RoleUser)
	require.NoError(t, err)

	users, total, err := svc.ListUsers(ctx, user.ListUsersParams{Search: "CORP"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "boss@corp.com", users[0].Email)

	_, total, err = svc.ListUsers(ctx, user.ListUsersParams{Search: "%"})
	require.NoError(t, err)
	assert.Equal(t, 1, total, "wildcards in search are literal")

	_, total, err = svc.ListUsers(ctx, user.ListUsersParams{Role: user.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	users, total, err = svc.ListUsers(ctx, user.ListUsersParams{Page: 2, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	assert.Len(t, users, 3)
}

func TestListUsersParams_Normalize(t *testing.T) {
	p := user.ListUsersParams{Page: 0, PageSize: 1000}
	p.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 200, p.PageSize)
	assert.Equal(t, 0, p.Offset())

	p = user.ListUsersParams{Page: 3, PageSize: -1}
	p.Normalize()
	assert.Equal(t, 50, p.PageSize)
	assert.Equal(t, 100, p.Offset())
}

func adminRouter(svc *user.Service, p *middleware.Principal) http.Handler {
	inject := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p != nil {
				r = r.WithContext(middleware.WithPrincipal(r.Context(), p))
			}
			next.ServeHTTP(w, r)
		})
	}

	r := chi.NewRouter()
	user.NewHandler(svc).RegisterAdminRoutes(r, inject, middleware.RequireAdmin)
	return r
}

func TestHandler_AdminUsers(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	admin, err := svc.CreateUser(ctx, "Admin", "admin@x.com", user.RoleAdmin)
	require.NoError(t, err)
	target, err := svc.CreateUser(ctx, "Target", "t@x.com", user.RoleUser)
	require.NoError(t, err)

	h := adminRouter(svc, &middleware.Principal{UserID: admin.ID, Role: "admin", Status: "active"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/users?page_size=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Users      []map[string]any `json:"users"`
		Pagination core.Pagination  `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Users, 1)
	assert.Equal(t, 2, list.Pagination.Total)
	assert.Equal(t, 2, list.Pagination.TotalPages)
	assert.Contains(t, list.Users[0], "enrichment")

	patch := func(id int64, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPatch,
			"/admin/users/"+strconv.FormatInt(id, 10), strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec = patch(target.ID, `{"status":"flagged"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"flagged"`)

	rec = patch(target.ID, `{"status":"gone"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Valid status is required (active, flagged, or blocked)")

	rec = patch(admin.ID, `{"status":"blocked"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "You cannot change your own status")

	rec = patch(999, `{"status":"active"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not found")
}

func TestHandler_NonAdminForbidden(t *testing.T) {
	svc := newService(t)

	for _, p := range []*middleware.Principal{
		nil,
		{UserID: 1, Role: "user", Status: "active"},
	} {
		rec := httptest.NewRecorder()
		adminRouter(svc, p).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/users", nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	}
}
