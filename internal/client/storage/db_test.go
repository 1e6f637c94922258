package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/evently-client/internal/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesSchemaAndPersistsDurableScope(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "session.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)

	require.NoError(t, s.Apply(ctx,
		Set(Durable, "accessToken", []byte("tok")),
		Set(Volatile, "accessToken", []byte("session-only")),
	))
	require.NoError(t, s.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	d, err := reopened.Get(ctx, Durable, "accessToken")
	require.NoError(t, err)
	assert.Equal(t, []byte("tok"), d)

	v, err := reopened.Get(ctx, Volatile, "accessToken")
	require.NoError(t, err)
	assert.Nil(t, v, "volatile scope must not survive a restart")
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	ctx := context.Background()

	db, err := dbx.OpenSQLite(ctx, filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(ctx, db))
	require.NoError(t, RunMigrations(ctx, db))

	var n int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='metadata'`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestSQLiteStore_FailedDurableBatchLeavesVolatileUntouched(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)

	require.NoError(t, s.Apply(ctx, Set(Volatile, "userData", []byte("before"))))
	require.NoError(t, s.Close())

	err = s.Apply(ctx,
		Set(Durable, "accessToken", []byte("tok")),
		Set(Volatile, "userData", []byte("after")),
	)
	require.Error(t, err)

	v, err := s.Get(ctx, Volatile, "userData")
	require.NoError(t, err)
	assert.Equal(t, []byte("before"), v)
}
