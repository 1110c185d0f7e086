package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

func init() {
	up := func(ctx context.Context, db *bun.DB) error {
		priceType := "REAL"
		if isPostgres(db) {
			priceType = "NUMERIC"
		}
		return execAll(ctx, db,
			`
			CREATE TABLE books (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				title TEXT NOT NULL,
				author TEXT NOT NULL,
				price `+priceType+` NOT NULL CHECK (price >= 0 AND price <= 10000),
				published_date TIMESTAMPTZ NOT NULL,
				isbn TEXT,
				genre TEXT NOT NULL DEFAULT 'Other',
				description TEXT,
				cover_image TEXT,
				stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0)
			)
`,
			`CREATE UNIQUE INDEX ux_books_isbn ON books (isbn) WHERE isbn IS NOT NULL`,
			`CREATE INDEX ix_books_genre ON books (genre)`,
			`CREATE INDEX ix_books_published_date ON books (published_date DESC)`,
			`CREATE INDEX ix_books_created_at ON books (created_at DESC)`,
		)
	}

	down := func(ctx context.Context, db *bun.DB) error {
		return execAll(ctx, db, `DROP TABLE IF EXISTS books`)
	}

	Migrations.MustRegister(up, down)
}
