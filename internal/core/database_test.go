// AngelaMos | 2026
// database_test.go

package core

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/leadcap/internal/config"
)

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"plain path",
			"/tmp/leadcap.db",
			"/tmp/leadcap.db?_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL",
		},
		{
			"keeps caller settings",
			"file:leadcap.db?_busy_timeout=100&cache=shared",
			"file:leadcap.db?_busy_timeout=100&_foreign_keys=on&_journal_mode=WAL&cache=shared",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sqliteDSN(tt.in))
		})
	}
}

func TestNewDatabase_SQLitePragmasSurviveRedial(t *testing.T) {
	ctx := context.Background()

	db, err := NewDatabase(ctx, config.DatabaseConfig{
		Driver: config.DriverSQLite,
		URL:    filepath.Join(t.TempDir(), "pragmas.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// No idle connections: every query dials a fresh one.
	db.DB.SetMaxIdleConns(0)

	for i := 0; i < 2; i++ {
		var fk, timeout int
		require.NoError(t, db.DB.GetContext(ctx, &fk, "PRAGMA foreign_keys"))
		require.NoError(t, db.DB.GetContext(ctx, &timeout, "PRAGMA busy_timeout"))
		assert.Equal(t, 1, fk)
		assert.Equal(t, 5000, timeout)

		var mode string
		require.NoError(t, db.DB.GetContext(ctx, &mode, "PRAGMA journal_mode"))
		assert.Equal(t, "wal", mode)
	}
}
