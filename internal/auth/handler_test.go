// AngelaMos | 2026
// handler_test.go

package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/leadcap/internal/auth"
)

func newRouter(f *fixture) http.Handler {
	r := chi.NewRouter()
	auth.NewHandler(f.auth, "session", false).RegisterRoutes(r)
	return r
}

func post(t *testing.T, h http.Handler, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	b, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	return nil
}

func TestHandler_SignupLoginVerifyLogout(t *testing.T) {
	f := newFixture(t)
	h := newRouter(f)

	rec := post(t, h, "/auth/signup", map[string]string{"name": "Ada", "email": "a@x.com"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var signup struct {
		Message string `json:"message"`
		User    struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signup))
	assert.Equal(t, "User created successfully", signup.Message)
	assert.Equal(t, "a@x.com", signup.User.Email)
	assert.NotEmpty(t, signup.User.ID)

	rec = post(t, h, "/auth/login", map[string]string{"email": "a@x.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"OTP code sent to your email"}`, rec.Body.String())

	rec = post(t, h, "/auth/verify", map[string]string{
		"email": "a@x.com",
		"code":  f.notifier.last("a@x.com"),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	var verify struct {
		Message string `json:"message"`
		User    struct {
			Name string `json:"name"`
			Role string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verify))
	assert.Equal(t, "Login successful", verify.Message)
	assert.Equal(t, "Ada", verify.User.Name)
	assert.Equal(t, "user", verify.User.Role)

	rec = post(t, h, "/auth/logout", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := sessionCookie(rec)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	f.auth.Wait()
}

func TestHandler_SignupRejections(t *testing.T) {
	f := newFixture(t)
	h := newRouter(f)

	rec := post(t, h, "/auth/signup", map[string]string{
		"name":    "Bot",
		"email":   "bot@x.com",
		"website": "http://spam.example",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request", errorMessage(t, rec))

	rec = post(t, h, "/auth/signup", map[string]string{"name": "", "email": "a@x.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, h, "/auth/signup", map[string]string{"name": "Ada", "email": "a@x.com"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = post(t, h, "/auth/signup", map[string]string{"name": "Ada", "email": "A@x.com"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	f.auth.Wait()
}

func TestHandler_LoginAndVerifyErrors(t *testing.T) {
	f := newFixture(t)
	h := newRouter(f)

	rec := post(t, h, "/auth/login", map[string]string{"email": "nobody@x.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User not found. Please sign up first.", errorMessage(t, rec))

	rec = post(t, h, "/auth/verify", map[string]string{"email": "nobody@x.com", "code": "123456"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid or expired code", errorMessage(t, rec))

	rec = post(t, h, "/auth/verify", map[string]string{"email": "a@x.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email and code are required", errorMessage(t, rec))
}

func TestHandler_LogoutWithoutSession(t *testing.T) {
	f := newFixture(t)

	rec := post(t, newRouter(f), "/auth/logout", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Logged out successfully"}`, rec.Body.String())
}
