// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/leadcap/internal/core"
	"github.com/carterperez-dev/leadcap/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterAdminRoutes registers admin-only user moderation endpoints.
func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.ListUsers)
		r.Patch("/{userID}", h.UpdateUserStatus)
	})
}

// ListUsers returns a page of users, each with its account enrichment.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := ListUsersParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 50),
		Search:   r.URL.Query().Get("search"),
		Role:     r.URL.Query().Get("role"),
		Status:   r.URL.Query().Get("status"),
	}
	params.Normalize()

	users, total, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, UserListResponse{
		Users:      ToAdminUserResponseList(users),
		Pagination: core.NewPagination(params.Page, params.PageSize, total),
	})
}

func (h *Handler) UpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	targetID, err := core.ParseID(chi.URLParam(r, "userID"))
	if err != nil {
		core.BadRequest(w, "Invalid user ID")
		return
	}

	var req UpdateUserStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, "Valid status is required (active, flagged, or blocked)")
		return
	}

	actorID := middleware.GetUserID(r.Context())

	user, err := h.service.UpdateUserStatus(r.Context(), actorID, targetID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrSelfStatusChange):
			core.Forbidden(w, "You cannot change your own status")
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, "Valid status is required (active, flagged, or blocked)")
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "user")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, UserEnvelope{User: ToUserResponse(user)})
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
