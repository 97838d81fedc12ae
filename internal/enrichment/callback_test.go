// AngelaMos | 2026
// callback_test.go

package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/leadcap/internal/core"
)

type stubEntries struct {
	queued map[string]int64
	err    error
	got    core.JSONDocument
}

func (s *stubEntries) ApplyCallback(_ context.Context, email string, data core.JSONDocument) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	id, ok := s.queued[email]
	if !ok {
		return 0, core.ErrNotFound
	}
	s.got = data
	return id, nil
}

type stubAccounts struct {
	emails map[string]bool
	stored []string
}

func (s *stubAccounts) StoreAccountEnrichment(_ context.Context, email string, _ core.JSONDocument) (bool, error) {
	if !s.emails[email] {
		return false, nil
	}
	s.stored = append(s.stored, email)
	return true, nil
}

func callback(t *testing.T, h *CallbackHandler, body string, secret string) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	h.RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/enrichment-callback", strings.NewReader(body))
	if secret != "" {
		req.Header.Set(SecretHeader, secret)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	if msg, ok := body["message"]; ok {
		return msg
	}
	return body["error"]
}

func TestCallback_EnrichesQueuedEntry(t *testing.T) {
	entries := &stubEntries{queued: map[string]int64{"b@x.com": 7}}
	h := NewCallbackHandler(entries, &stubAccounts{}, "", discardLogger())

	rec := callback(t, h, `{"email":"b@x.com","company":"Acme","employees":40}`, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Enrichment data received and stored successfully", messageOf(t, rec))
	assert.JSONEq(t, `{"company":"Acme","employees":40}`, string(entries.got))
}

func TestCallback_FallsBackToAccount(t *testing.T) {
	accounts := &stubAccounts{emails: map[string]bool{"owner@x.com": true}}
	h := NewCallbackHandler(&stubEntries{}, accounts, "", discardLogger())

	rec := callback(t, h, `{"email":"owner@x.com","company":"Acme"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Account enrichment data stored successfully", messageOf(t, rec))
	assert.Equal(t, []string{"owner@x.com"}, accounts.stored)

	rec = callback(t, h, `{"email":"nobody@x.com"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Entry not found or not queued", messageOf(t, rec))
}

func TestCallback_BadRequests(t *testing.T) {
	h := NewCallbackHandler(&stubEntries{}, &stubAccounts{}, "", discardLogger())

	for _, body := range []string{`{}`, `{"email":""}`, `{"email":42}`} {
		rec := callback(t, h, body, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "Email is required to identify the entry", messageOf(t, rec), body)
	}

	for _, body := range []string{`not json`, `null`, `[1,2]`} {
		rec := callback(t, h, body, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestCallback_Secret(t *testing.T) {
	entries := &stubEntries{queued: map[string]int64{"b@x.com": 1}}
	h := NewCallbackHandler(entries, &stubAccounts{}, "shh", discardLogger())

	rec := callback(t, h, `{"email":"b@x.com"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid webhook secret", messageOf(t, rec))

	rec = callback(t, h, `{"email":"b@x.com"}`, "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = callback(t, h, `{"email":"b@x.com"}`, "shh")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCallback_StoreFailureIs500(t *testing.T) {
	h := NewCallbackHandler(&stubEntries{err: errors.New("db down")}, &stubAccounts{}, "", discardLogger())

	rec := callback(t, h, `{"email":"b@x.com"}`, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
