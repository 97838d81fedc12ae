// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/carterperez-dev/leadcap/internal/core"
)

const (
	PrincipalKey    contextKey = "principal"
	SessionErrorKey contextKey = "session_error"
)

const (
	roleAdmin     = "admin"
	statusBlocked = "blocked"
)

// Principal is the acting user resolved from the session cookie.
type Principal struct {
	UserID           int64
	Email            string
	Name             string
	Role             string
	Status           string
	SessionID        string
	SessionExpiresAt time.Time
}

type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*Principal, error)
}

// CheckAuth passes any present, non-blocked user.
func CheckAuth(p *Principal) error {
	if p == nil || p.Status == statusBlocked {
		return core.ErrUnauthorized
	}
	return nil
}

// CheckAdmin passes a present, non-blocked admin.
func CheckAdmin(p *Principal) error {
	if p == nil || p.Status == statusBlocked || p.Role != roleAdmin {
		return core.ErrAdminRequired
	}
	return nil
}

// Authenticator loads the Principal behind the session cookie, if any.
// A missing or unusable session leaves the request anonymous; RequireAuth
// and RequireAdmin decide what an anonymous caller gets.
func Authenticator(
	resolver SessionResolver,
	cookieName string,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractSessionToken(r, cookieName)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := resolver.ResolveSession(r.Context(), token)
			if err != nil {
				if !isSessionError(err) {
					core.InternalServerError(w, err)
					return
				}
				slog.DebugContext(r.Context(), "session rejected",
					"error", err,
					"request_id", GetRequestID(r.Context()),
				)
				ctx := context.WithValue(r.Context(), SessionErrorKey, err)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := GetPrincipal(r.Context())
		if p == nil {
			core.JSONError(w, sessionRejection(r.Context()))
			return
		}
		if err := CheckAuth(p); err != nil {
			core.JSONError(w, core.UnauthorizedError(""))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := CheckAdmin(GetPrincipal(r.Context())); err != nil {
			core.JSONError(w, core.AdminRequiredError())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// sessionRejection explains why an anonymous request has no principal.
func sessionRejection(ctx context.Context) *core.AppError {
	err, _ := ctx.Value(SessionErrorKey).(error)
	switch {
	case err == nil:
		return core.UnauthorizedError("")
	case errors.Is(err, core.ErrTokenExpired):
		return core.TokenExpiredError()
	case errors.Is(err, core.ErrTokenRevoked):
		return core.TokenRevokedError()
	default:
		return core.TokenInvalidError()
	}
}

func ExtractSessionToken(r *http.Request, cookieName string) string {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func isSessionError(err error) bool {
	return errors.Is(err, core.ErrTokenExpired) ||
		errors.Is(err, core.ErrTokenRevoked) ||
		errors.Is(err, core.ErrTokenInvalid) ||
		errors.Is(err, core.ErrNotFound)
}

func GetPrincipal(ctx context.Context) *Principal {
	if p, ok := ctx.Value(PrincipalKey).(*Principal); ok {
		return p
	}
	return nil
}

func GetUserID(ctx context.Context) int64 {
	if p := GetPrincipal(ctx); p != nil {
		return p.UserID
	}
	return 0
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}
