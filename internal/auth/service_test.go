// AngelaMos | 2026
// service_test.go

package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/leadcap/internal/auth"
	"github.com/carterperez-dev/leadcap/internal/core"
	"github.com/carterperez-dev/leadcap/internal/enrichment"
	"github.com/carterperez-dev/leadcap/internal/testutil"
	"github.com/carterperez-dev/leadcap/internal/user"
)

type captureNotifier struct {
	mu    sync.Mutex
	codes map[string]string
}

func (n *captureNotifier) SendOTP(_ context.Context, email, code string, _ time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.codes == nil {
		n.codes = map[string]string{}
	}
	n.codes[email] = code
	return nil
}

func (n *captureNotifier) last(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.codes[email]
}

type recordingRelay struct {
	mu       sync.Mutex
	contacts []enrichment.Contact
}

func (r *recordingRelay) Send(_ context.Context, c enrichment.Contact) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contacts = append(r.contacts, c)
	return true
}

type memoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (m *memoryRevoker) Revoke(_ context.Context, id string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.revoked == nil {
		m.revoked = map[string]bool{}
	}
	m.revoked[id] = true
	return nil
}

func (m *memoryRevoker) IsRevoked(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revoked[id], nil
}

type fixture struct {
	auth     *auth.Service
	users    *user.Service
	notifier *captureNotifier
	relay    *recordingRelay
	sessions *auth.SessionManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDatabase(t)
	ids := testutil.NewIDs(t)

	sessions, err := auth.NewSessionManager(testutil.SessionConfig(t))
	require.NoError(t, err)

	users := user.NewService(user.NewRepository(db.DB), ids)
	notifier := &captureNotifier{}
	relay := &recordingRelay{}

	svc := auth.NewService(auth.ServiceConfig{
		Repo:         auth.NewRepository(db.DB),
		Sessions:     sessions,
		Revoker:      &memoryRevoker{},
		UserProvider: users,
		Notifier:     notifier,
		Relay:        relay,
		IDs:          ids,
		OTPTTL:       10 * time.Minute,
		Logger:       testutil.DiscardLogger(),
	})

	return &fixture{
		auth:     svc,
		users:    users,
		notifier: notifier,
		relay:    relay,
		sessions: sessions,
	}
}

func TestSignup_CreatesUserAndRelaysContact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.auth.Signup(ctx, "  Ada  ", "A@X.com ")
	require.NoError(t, err)
	f.auth.Wait()

	assert.Equal(t, "Ada", u.Name)
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, "user", u.Role)
	assert.Equal(t, "active", u.Status)

	require.Len(t, f.relay.contacts, 1)
	assert.Equal(t, enrichment.Contact{Email: "a@x.com", Name: "Ada"}, f.relay.contacts[0])

	_, err = f.auth.Signup(ctx, "Other", "a@x.com")
	assert.ErrorIs(t, err, auth.ErrEmailExists)
}

func TestLoginFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Signup(ctx, "Ada", "a@x.com")
	require.NoError(t, err)

	require.NoError(t, f.auth.RequestOTP(ctx, "a@x.com"))
	code := f.notifier.last("a@x.com")
	require.Len(t, code, 6)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	_, err = f.auth.VerifyOTP(ctx, "a@x.com", wrong)
	assert.ErrorIs(t, err, auth.ErrInvalidCode)

	result, err := f.auth.VerifyOTP(ctx, "A@x.com", code)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", result.User.Email)
	assert.NotEmpty(t, result.Session.Token)

	_, err = f.auth.VerifyOTP(ctx, "a@x.com", code)
	assert.ErrorIs(t, err, auth.ErrInvalidCode, "a code is single use")

	principal, err := f.auth.ResolveSession(ctx, result.Session.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, principal.UserID)
	assert.Equal(t, "a@x.com", principal.Email)
}

func TestRequestOTP_NewCodeRetiresOld(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Signup(ctx, "Ada", "a@x.com")
	require.NoError(t, err)

	require.NoError(t, f.auth.RequestOTP(ctx, "a@x.com"))
	first := f.notifier.last("a@x.com")

	require.NoError(t, f.auth.RequestOTP(ctx, "a@x.com"))
	second := f.notifier.last("a@x.com")

	if first != second {
		_, err = f.auth.VerifyOTP(ctx, "a@x.com", first)
		assert.ErrorIs(t, err, auth.ErrInvalidCode)
	}

	_, err = f.auth.VerifyOTP(ctx, "a@x.com", second)
	assert.NoError(t, err)
}

func TestRequestOTP_UnknownAndBlocked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.auth.RequestOTP(ctx, "nobody@x.com"), auth.ErrUserNotFound)

	u, err := f.auth.Signup(ctx, "Bad", "bad@x.com")
	require.NoError(t, err)
	_, err = f.users.SetStatus(ctx, u.ID, user.StatusBlocked)
	require.NoError(t, err)

	assert.ErrorIs(t, f.auth.RequestOTP(ctx, "bad@x.com"), auth.ErrAccountBlocked)
}

func TestVerifyOTP_UnknownUserIsInvalidCode(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.VerifyOTP(context.Background(), "ghost@x.com", "123456")
	assert.ErrorIs(t, err, auth.ErrInvalidCode)
}

func TestVerifyOTP_BlockedAfterCodeIssued(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.auth.Signup(ctx, "Ada", "a@x.com")
	require.NoError(t, err)
	require.NoError(t, f.auth.RequestOTP(ctx, "a@x.com"))

	_, err = f.users.SetStatus(ctx, u.ID, user.StatusBlocked)
	require.NoError(t, err)

	_, err = f.auth.VerifyOTP(ctx, "a@x.com", f.notifier.last("a@x.com"))
	assert.ErrorIs(t, err, auth.ErrAccountBlocked)
}

func TestLogout_RevokesSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.auth.Signup(ctx, "Ada", "a@x.com")
	require.NoError(t, err)

	session, err := f.sessions.CreateSession(u.ID)
	require.NoError(t, err)

	_, err = f.auth.ResolveSession(ctx, session.Token)
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(ctx, session.Token))

	_, err = f.auth.ResolveSession(ctx, session.Token)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)

	assert.NoError(t, f.auth.Logout(ctx, ""))
	assert.NoError(t, f.auth.Logout(ctx, "not-a-jwt"))
}

func TestResolveSession_DeletedUserIsInvalid(t *testing.T) {
	f := newFixture(t)

	session, err := f.sessions.CreateSession(987654321)
	require.NoError(t, err)

	_, err = f.auth.ResolveSession(context.Background(), session.Token)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestPruneExpiredCodes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Signup(ctx, "Ada", "a@x.com")
	require.NoError(t, err)
	require.NoError(t, f.auth.RequestOTP(ctx, "a@x.com"))

	n, err := f.auth.PruneExpiredCodes(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n, "a fresh code is not pruned")
}
