package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/vouch/internal/shared/infrastructure/database"
)

func openMemory(t *testing.T) database.Connection {
	t.Helper()
	conn, err := NewConnection(context.Background(), database.Config{SQLitePath: MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, err = conn.Exec(context.Background(), `CREATE TABLE people (id TEXT PRIMARY KEY, name TEXT NOT NULL)`)
	require.NoError(t, err)
	return conn
}

func TestNewConnection_File(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "vouch.db")

	conn, err := NewConnection(ctx, database.Config{SQLitePath: path})
	require.NoError(t, err)
	defer conn.Close()

	assert.NoError(t, conn.Ping(ctx))
	assert.Equal(t, database.DriverSQLite, conn.Driver())
	assert.FileExists(t, path)
}

func TestConnection_ExecAndQuery(t *testing.T) {
	ctx := context.Background()
	conn := openMemory(t)

	res, err := conn.Exec(ctx, `INSERT INTO people (id, name) VALUES (?, ?), (?, ?)`, "1", "Alice", "2", "Bob")
	require.NoError(t, err)
	affected, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	var name string
	require.NoError(t, conn.QueryRow(ctx, `SELECT name FROM people WHERE id = ?`, "2").Scan(&name))
	assert.Equal(t, "Bob", name)

	rows, err := conn.Query(ctx, `SELECT name FROM people ORDER BY id`)
	require.NoError(t, err)
	names, err := database.CollectRows(rows, func(r database.Row) (string, error) {
		var n string
		return n, r.Scan(&n)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Bob"}, names)

	err = conn.QueryRow(ctx, `SELECT name FROM people WHERE id = ?`, "missing").Scan(&name)
	assert.True(t, database.IsNoRows(err))
}

func TestUnitOfWork(t *testing.T) {
	ctx := context.Background()
	conn := openMemory(t)
	uow := database.NewUnitOfWork(conn)

	count := func() int {
		var n int
		require.NoError(t, conn.QueryRow(ctx, `SELECT COUNT(*) FROM people`).Scan(&n))
		return n
	}

	t.Run("commit persists writes made through the context executor", func(t *testing.T) {
		txCtx, err := uow.Begin(ctx)
		require.NoError(t, err)

		_, err = database.ExecutorFromContext(txCtx, conn).Exec(txCtx, `INSERT INTO people (id, name) VALUES ('a', 'Ann')`)
		require.NoError(t, err)
		require.NoError(t, uow.Commit(txCtx))

		assert.Equal(t, 1, count())
	})

	t.Run("nested begin joins and only the owner commits", func(t *testing.T) {
		outer, err := uow.Begin(ctx)
		require.NoError(t, err)
		inner, err := uow.Begin(outer)
		require.NoError(t, err)

		_, err = database.ExecutorFromContext(inner, conn).Exec(inner, `INSERT INTO people (id, name) VALUES ('b', 'Ben')`)
		require.NoError(t, err)
		require.NoError(t, uow.Commit(inner))

		require.NoError(t, uow.Rollback(outer))
		assert.Equal(t, 1, count())
	})

	t.Run("commit without transaction fails", func(t *testing.T) {
		assert.Error(t, uow.Commit(ctx))
	})
}
