// AngelaMos | 2026
// testutil.go

package testutil

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/leadcap/internal/config"
	"github.com/carterperez-dev/leadcap/internal/core"
)

// NewDatabase opens a migrated SQLite database in a temp dir that is
// closed when the test ends.
func NewDatabase(t testing.TB) *core.Database {
	t.Helper()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "leadcap.db")

	db, err := core.NewDatabase(ctx, config.DatabaseConfig{
		Driver: config.DriverSQLite,
		URL:    path,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(ctx))

	return db
}

func NewIDs(t testing.TB) *core.IDGenerator {
	t.Helper()

	ids, err := core.NewIDGenerator(1)
	require.NoError(t, err)
	return ids
}

// SessionConfig points at a fresh key pair generated on first use.
func SessionConfig(t testing.TB) config.SessionConfig {
	t.Helper()

	dir := t.TempDir()
	return config.SessionConfig{
		PrivateKeyPath: filepath.Join(dir, "session.pem"),
		PublicKeyPath:  filepath.Join(dir, "session.pub.pem"),
		CookieName:     "session",
		TTL:            time.Hour,
		Issuer:         "leadcap-test",
		Audience:       "leadcap-test",
		GenerateKeys:   true,
	}
}

func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
