package metadata

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/shoplist/internal/client/client"
	"github.com/dmitrijs2005/shoplist/internal/dbx"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, client.RunMigrations(context.Background(), db))
	return db
}

func TestGet_Missing(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), "token")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestSet_ThenGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "token", "abc"))
	v, err := r.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)
}

func TestSet_Overwrites(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "username", "alice"))
	require.NoError(t, r.Set(ctx, "username", "bob"))

	v, err := r.Get(ctx, "username")
	require.NoError(t, err)
	assert.Equal(t, "bob", v)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM metadata`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestDelete(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "token", "abc"))
	require.NoError(t, r.Set(ctx, "username", "alice"))
	require.NoError(t, r.Delete(ctx, "token"))
	require.NoError(t, r.Delete(ctx, "token"), "deleting twice is fine")

	v, err := r.Get(ctx, "token")
	require.NoError(t, err)
	assert.Empty(t, v)

	v, err = r.Get(ctx, "username")
	require.NoError(t, err)
	assert.Equal(t, "alice", v, "other keys survive")
}

func TestRepository_InsideTransaction(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return NewSQLiteRepository(tx).Set(ctx, "token", "in-tx")
	})
	require.NoError(t, err)

	v, err := NewSQLiteRepository(db).Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "in-tx", v)
}

func TestRepository_ClosedDB(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	require.NoError(t, db.Close())
	ctx := context.Background()

	_, err := r.Get(ctx, "token")
	assert.ErrorContains(t, err, `read "token"`)
	assert.ErrorContains(t, r.Set(ctx, "token", "x"), `write "token"`)
	assert.ErrorContains(t, r.Delete(ctx, "token"), `delete "token"`)
}
