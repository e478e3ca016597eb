package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"media2text/internal/app/repository/pg"
	"media2text/internal/app/repository/sqlite"
)

// SetupTestSQLite opens a fresh SQLite database in a temp dir with the
// schema applied. It is closed when the test ends.
func SetupTestSQLite(t *testing.T) *sqlite.SQLiteDB {
	t.Helper()

	db, err := sqlite.NewSQLiteDB(filepath.Join(t.TempDir(), "media2text.db"))
	require.NoError(t, err)
	require.NoError(t, db.EnsureSchema(context.Background()))

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("close test database: %v", err)
		}
	})
	return db
}

// SetupTestPostgres connects to POSTGRES_TEST_URL and skips the test when
// it is unset.
func SetupTestPostgres(t *testing.T) *pg.PostgresDB {
	t.Helper()

	dsn := os.Getenv("POSTGRES_TEST_URL")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_URL not set")
	}

	db, err := pg.NewPostgresDB(dsn)
	require.NoError(t, err)
	require.NoError(t, db.EnsureSchema(context.Background()))

	t.Cleanup(func() {
		_, _ = db.DB().Exec("TRUNCATE projects, media_files, transcriptions, transcription_chunks CASCADE")
		_ = db.Close()
	})
	return db
}
