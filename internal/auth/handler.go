// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/leadcap/internal/core"
	"github.com/carterperez-dev/leadcap/internal/middleware"
)

const (
	msgUserNotFound   = "User not found. Please sign up first."
	msgAccountBlocked = "Your account has been blocked. Please contact support."
	msgInvalidCode    = "Invalid or expired code"
)

type Handler struct {
	service      *Service
	validator    *validator.Validate
	cookieName   string
	secureCookie bool
}

func NewHandler(service *Service, cookieName string, secureCookie bool) *Handler {
	return &Handler{
		service:      service,
		validator:    validator.New(validator.WithRequiredStructEnabled()),
		cookieName:   cookieName,
		secureCookie: secureCookie,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)
		r.Post("/verify", h.Verify)
		r.Post("/logout", h.Logout)
	})
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Invalid request body")
		return
	}

	// honeypot
	if strings.TrimSpace(req.Website) != "" {
		core.BadRequest(w, "Invalid request")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.Signup(r.Context(), req.Name, req.Email)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			core.JSONError(w, core.DuplicateError("email"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, SignupResponse{
		Message: "User created successfully",
		User:    SignupUser{ID: user.ID, Email: user.Email},
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if err := h.service.RequestOTP(r.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			core.BadRequest(w, msgUserNotFound)
		case errors.Is(err, ErrAccountBlocked):
			core.BadRequest(w, msgAccountBlocked)
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.Message(w, "OTP code sent to your email")
}

func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Code = strings.TrimSpace(req.Code)

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, "Email and code are required")
		return
	}

	result, err := h.service.VerifyOTP(r.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCode):
			core.BadRequest(w, msgInvalidCode)
		case errors.Is(err, ErrAccountBlocked):
			core.BadRequest(w, msgAccountBlocked)
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	h.setSessionCookie(w, result.Session.Token, result.Session.ExpiresAt)

	core.OK(w, VerifyResponse{
		Message: "Login successful",
		User: UserResponse{
			ID:    result.User.ID,
			Name:  result.User.Name,
			Email: result.User.Email,
			Role:  result.User.Role,
		},
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.ExtractSessionToken(r, h.cookieName)

	if err := h.service.Logout(r.Context(), token); err != nil {
		slog.ErrorContext(r.Context(), "logout revocation failed",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
	}

	h.clearSessionCookie(w)
	core.Message(w, "Logged out successfully")
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
