package migrations

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/migrate"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })
	return db
}

func tableExists(t *testing.T, db *bun.DB, name string) bool {
	t.Helper()
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE name = ?", name).Scan(&count)
	require.NoError(t, err)
	return count > 0
}

func TestBringUpToDate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)

	group, err := BringUpToDate(ctx, db)
	require.NoError(t, err)
	assert.NotZero(t, group.ID)
	assert.True(t, tableExists(t, db, "books"))
	assert.True(t, tableExists(t, db, "books_fts"))
	assert.True(t, tableExists(t, db, "ux_books_isbn"))

	// Running again is a no-op.
	group, err = BringUpToDate(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, group.ID)
}

func TestSearchTriggers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	_, err := BringUpToDate(ctx, db)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO books (id, title, author, price, published_date) VALUES ('b1', 'Dune', 'Frank herbert', 9.99, '1965-08-01 00:00:00+00:00')`)
	require.NoError(t, err)

	matches := func(q string) int {
		var n int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM books_fts WHERE books_fts MATCH ?", q).Scan(&n))
		return n
	}
	assert.Equal(t, 1, matches(`"herb"*`))

	_, err = db.Exec(`UPDATE books SET author = 'Someone else' WHERE id = 'b1'`)
	require.NoError(t, err)
	assert.Equal(t, 0, matches(`"herb"*`))
	assert.Equal(t, 1, matches(`"someone"*`))

	_, err = db.Exec(`DELETE FROM books WHERE id = 'b1'`)
	require.NoError(t, err)
	assert.Equal(t, 0, matches(`"someone"*`))
}

func TestRollback(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	_, err := BringUpToDate(ctx, db)
	require.NoError(t, err)

	migrator := migrate.NewMigrator(db, Migrations)
	_, err = migrator.Rollback(ctx)
	require.NoError(t, err)
	assert.False(t, tableExists(t, db, "books"))
	assert.False(t, tableExists(t, db, "books_fts"))
}
