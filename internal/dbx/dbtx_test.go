package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value TEXT NOT NULL)`)
	require.NoError(t, err)
	return db
}

func put(ctx context.Context, q DBTX, key, value string) error {
	_, err := q.ExecContext(ctx, `INSERT INTO metadata(key, value) VALUES (?, ?)`, key, value)
	return err
}

func keys(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query(`SELECT key FROM metadata ORDER BY key`)
	require.NoError(t, err)
	defer rows.Close()

	var out []string
	for rows.Next() {
		var k string
		require.NoError(t, rows.Scan(&k))
		out = append(out, k)
	}
	require.NoError(t, rows.Err())
	return out
}

func TestWithTx_CommitsBothWrites(t *testing.T) {
	db := openDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		if err := put(ctx, tx, "token", "t-1"); err != nil {
			return err
		}
		return put(ctx, tx, "username", "alice")
	})
	require.NoError(t, err)
	require.Equal(t, []string{"token", "username"}, keys(t, db))
}

func TestWithTx_SecondWriteFails(t *testing.T) {
	db := openDB(t)
	require.NoError(t, put(context.Background(), db, "username", "bob"))

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		require.NoError(t, put(ctx, tx, "token", "t-2"))
		return put(ctx, tx, "username", "alice") // duplicate key
	})
	require.Error(t, err)
	require.Equal(t, []string{"username"}, keys(t, db), "token write must be rolled back")
}

func TestWithTx_CallbackError(t *testing.T) {
	db := openDB(t)
	boom := errors.New("boom")

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		require.NoError(t, put(ctx, tx, "token", "t-3"))
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Empty(t, keys(t, db))
}

func TestWithTx_Panic(t *testing.T) {
	db := openDB(t)

	require.PanicsWithValue(t, "kaput", func() {
		_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
			require.NoError(t, put(ctx, tx, "token", "t-4"))
			panic("kaput")
		})
	})
	require.Empty(t, keys(t, db))
}

func TestWithTx_ClosedDB(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	called := false
	err = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		called = true
		return nil
	})
	require.Error(t, err)
	require.False(t, called)
}
