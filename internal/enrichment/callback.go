// AngelaMos | 2026
// callback.go

package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/leadcap/internal/core"
)

const (
	SecretHeader    = "X-Webhook-Secret"
	maxCallbackBody = 1 << 20
)

// EntryMatcher applies a result to the newest queued entry with the email.
type EntryMatcher interface {
	ApplyCallback(ctx context.Context, email string, data core.JSONDocument) (int64, error)
}

// AccountStore keeps account-level results for callbacks that match no
// queued entry.
type AccountStore interface {
	StoreAccountEnrichment(ctx context.Context, email string, data core.JSONDocument) (bool, error)
}

type CallbackHandler struct {
	entries  EntryMatcher
	accounts AccountStore
	secret   string
	logger   *slog.Logger
}

func NewCallbackHandler(
	entries EntryMatcher,
	accounts AccountStore,
	secret string,
	logger *slog.Logger,
) *CallbackHandler {
	return &CallbackHandler{
		entries:  entries,
		accounts: accounts,
		secret:   secret,
		logger:   logger,
	}
}

func (h *CallbackHandler) RegisterRoutes(r chi.Router) {
	r.Post("/webhooks/enrichment-callback", h.Receive)
}

// Receive correlates a result with its entry by email. The match is a
// heuristic: two queued entries sharing an email resolve to the newest.
func (h *CallbackHandler) Receive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.secret != "" && !core.SecretsEqual(r.Header.Get(SecretHeader), h.secret) {
		core.Unauthorized(w, "Invalid webhook secret")
		return
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCallbackBody)).Decode(&body); err != nil || body == nil {
		core.BadRequest(w, "Invalid request body")
		return
	}

	var email string
	if raw, ok := body["email"]; ok {
		//nolint:errcheck // a non-string email is treated as missing
		_ = json.Unmarshal(raw, &email)
	}
	email = strings.TrimSpace(email)
	if email == "" {
		core.BadRequest(w, "Email is required to identify the entry")
		return
	}
	delete(body, "email")

	data, err := core.NewJSONDocument(body)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	entryID, err := h.entries.ApplyCallback(ctx, email, data)
	if err == nil {
		h.logger.InfoContext(ctx, "entry enriched",
			"entry_id", entryID,
			"email", email,
		)
		core.Message(w, "Enrichment data received and stored successfully")
		return
	}
	if !errors.Is(err, core.ErrNotFound) {
		core.InternalServerError(w, err)
		return
	}

	stored, err := h.accounts.StoreAccountEnrichment(ctx, email, data)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}
	if stored {
		h.logger.InfoContext(ctx, "account enriched", "email", email)
		core.Message(w, "Account enrichment data stored successfully")
		return
	}

	h.logger.InfoContext(ctx, "enrichment callback discarded, no queued entry",
		"email", email,
	)
	core.Message(w, "Entry not found or not queued")
}
