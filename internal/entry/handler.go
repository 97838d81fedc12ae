// AngelaMos | 2026
// handler.go

package entry

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

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

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, requireAuth func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)
		r.Use(requireAuth)

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Patch("/{entryID}", h.Update)
			r.Delete("/{entryID}", h.Delete)
			r.Post("/{entryID}/enrich", h.Enrich)
			r.Post("/{entryID}/clear-enrichment", h.ClearEnrichment)
		})

		r.Post("/enrich", h.BulkEnrich)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, EntryListResponse{Entries: ToEntryResponseList(entries)})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	entry, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), CreateInput{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		JobTitle:    req.JobTitle,
		CompanySize: req.CompanySize,
		Budget:      req.Budget,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Created(w, EntryEnvelope{Entry: ToEntryResponse(entry)})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	var req UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Invalid request body")
		return
	}

	entry, err := h.service.Update(r.Context(), middleware.GetUserID(r.Context()), id, UpdateInput{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		JobTitle:    req.JobTitle,
		CompanySize: req.CompanySize,
		Budget:      req.Budget,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, EntryEnvelope{Entry: ToEntryResponse(entry)})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		h.writeError(w, err)
		return
	}

	core.Message(w, "Entry deleted successfully")
}

func (h *Handler) Enrich(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	if err := h.service.Enrich(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		h.writeError(w, err)
		return
	}

	core.Message(w,
		"Entry queued for enrichment successfully. Enriched data will be received via webhook callback.")
}

func (h *Handler) ClearEnrichment(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	if err := h.service.ClearEnrichment(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		h.writeError(w, err)
		return
	}

	core.Message(w, "Enrichment data cleared successfully. Entry is now pending enrichment.")
}

func (h *Handler) BulkEnrich(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	if principal == nil {
		core.Unauthorized(w, "")
		return
	}

	result, err := h.service.BulkEnrich(r.Context(), principal.UserID, Account{
		Name:  principal.Name,
		Email: principal.Email,
	})
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	if result.Pending == 0 {
		core.OK(w, BulkEnrichResponse{
			Message: "All entries have already been queued or enriched",
		})
		return
	}

	if result.Queued == 0 && len(result.Errors) > 0 {
		core.JSON(w, http.StatusInternalServerError, BulkEnrichFailure{
			Error:  "Failed to enrich entries",
			Errors: result.Errors,
		})
		return
	}

	noun := "entries"
	if result.Queued == 1 {
		noun = "entry"
	}

	core.OK(w, BulkEnrichResponse{
		Message:     fmt.Sprintf("Successfully queued %d %s for enrichment", result.Queued, noun),
		QueuedCount: result.Queued,
		Errors:      result.Errors,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "entry")
	case errors.Is(err, ErrEmptyName):
		core.BadRequest(w, "Name cannot be empty")
	case errors.Is(err, ErrEmptyEmail):
		core.BadRequest(w, "Email cannot be empty")
	case errors.Is(err, ErrNoFieldsToSet):
		core.BadRequest(w, "No fields to update")
	case errors.As(err, new(validator.ValidationErrors)):
		core.BadRequest(w, core.FormatValidationError(err))
	case errors.Is(err, ErrAlreadyQueued):
		core.BadRequest(w, "Entry has already been queued for enrichment")
	case errors.Is(err, ErrAlreadyEnriched):
		core.BadRequest(w, "Entry has already been enriched")
	case errors.Is(err, ErrRelayFailed):
		core.JSONError(w, core.NewAppError(
			err,
			"Failed to queue entry for enrichment. Please try again later.",
			http.StatusInternalServerError,
			"ENRICHMENT_FAILED",
		))
	default:
		core.InternalServerError(w, err)
	}
}

func entryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := core.ParseID(chi.URLParam(r, "entryID"))
	if err != nil {
		core.BadRequest(w, "Invalid entry ID")
		return 0, false
	}
	return id, true
}
