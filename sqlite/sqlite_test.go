package sqlite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/docgap/sqlite"
	"github.com/stretchr/testify/require"
)

// MustOpenDB returns an open in-memory database that is closed with the test.
func MustOpenDB(tb testing.TB) *sqlite.DB {
	tb.Helper()

	db := sqlite.NewDB(":memory:")
	require.NoError(tb, db.Open())
	tb.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDB_Open(t *testing.T) {
	t.Parallel()

	t.Run("creates schema on first open", func(t *testing.T) {
		t.Parallel()

		db := MustOpenDB(t)

		var n int
		err := db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM blobs").Scan(&n)
		require.NoError(t, err)
		require.Zero(t, n)
	})

	t.Run("records the applied schema version", func(t *testing.T) {
		t.Parallel()

		db := MustOpenDB(t)

		var version int
		err := db.QueryRowContext(context.Background(), "PRAGMA user_version").Scan(&version)
		require.NoError(t, err)
		require.Equal(t, 2, version)
	})

	t.Run("returns error for invalid path", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB("/nonexistent/path/db.sqlite")
		require.Error(t, db.Open())
	})

	t.Run("enables WAL mode for file-based databases", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(t.TempDir() + "/docgap.db")
		require.NoError(t, db.Open())
		defer db.Close()

		var journalMode string
		err := db.QueryRowContext(context.Background(), "PRAGMA journal_mode").Scan(&journalMode)
		require.NoError(t, err)
		require.Equal(t, "wal", journalMode)
	})

	t.Run("reopening keeps existing data", func(t *testing.T) {
		t.Parallel()

		path := t.TempDir() + "/docgap.db"
		ctx := context.Background()

		db := sqlite.NewDB(path)
		require.NoError(t, db.Open())
		require.NoError(t, sqlite.NewObjectStore(db).Put(ctx, "k", []byte("v")))
		require.NoError(t, db.Close())

		db = sqlite.NewDB(path)
		require.NoError(t, db.Open())
		defer db.Close()

		data, err := sqlite.NewObjectStore(db).Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, "v", string(data))
	})
}
