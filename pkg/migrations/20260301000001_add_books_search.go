package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

// Title and author search. SQLite keeps an FTS5 table in sync
// through triggers; PostgreSQL uses an expression GIN index that the list
// query's to_tsvector expression matches exactly.
func init() {
	up := func(ctx context.Context, db *bun.DB) error {
		if isPostgres(db) {
			return execAll(ctx, db,
				`CREATE INDEX ix_books_search ON books USING GIN (to_tsvector('simple', title || ' ' || author))`,
			)
		}
		return execAll(ctx, db,
			`CREATE VIRTUAL TABLE books_fts USING fts5(book_id UNINDEXED, title, author)`,
			`
			CREATE TRIGGER books_fts_insert AFTER INSERT ON books BEGIN
				INSERT INTO books_fts (book_id, title, author) VALUES (new.id, new.title, new.author);
			END
`,
			`
			CREATE TRIGGER books_fts_update AFTER UPDATE OF title, author ON books BEGIN
				UPDATE books_fts SET title = new.title, author = new.author WHERE book_id = old.id;
			END
`,
			`
			CREATE TRIGGER books_fts_delete AFTER DELETE ON books BEGIN
				DELETE FROM books_fts WHERE book_id = old.id;
			END
`,
			`INSERT INTO books_fts (book_id, title, author) SELECT id, title, author FROM books`,
		)
	}

	down := func(ctx context.Context, db *bun.DB) error {
		if isPostgres(db) {
			return execAll(ctx, db, `DROP INDEX IF EXISTS ix_books_search`)
		}
		return execAll(ctx, db,
			`DROP TRIGGER IF EXISTS books_fts_delete`,
			`DROP TRIGGER IF EXISTS books_fts_update`,
			`DROP TRIGGER IF EXISTS books_fts_insert`,
			`DROP TABLE IF EXISTS books_fts`,
		)
	}

	Migrations.MustRegister(up, down)
}
