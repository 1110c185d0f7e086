package books

import (
	"context"

	"github.com/inkwell/bookstore/pkg/models"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const yearStatsLimit = 10

// Overview aggregates the whole collection. The price aggregates are null
// when there are no books.
type Overview struct {
	TotalBooks   int                 `bun:"total_books" json:"totalBooks"`
	TotalValue   decimal.Decimal     `bun:"total_value" json:"totalValue"`
	AveragePrice decimal.NullDecimal `bun:"average_price" json:"averagePrice"`
	MinPrice     decimal.NullDecimal `bun:"min_price" json:"minPrice"`
	MaxPrice     decimal.NullDecimal `bun:"max_price" json:"maxPrice"`
}

type GenreStat struct {
	Genre        models.Genre    `bun:"genre" json:"genre"`
	Count        int             `bun:"count" json:"count"`
	AveragePrice decimal.Decimal `bun:"average_price" json:"averagePrice"`
}

type YearStat struct {
	Year  int `bun:"year" json:"year"`
	Count int `bun:"count" json:"count"`
}

type Stats struct {
	Overview Overview    `json:"overview"`
	ByGenre  []GenreStat `json:"byGenre"`
	ByYear   []YearStat  `json:"byYear"`
}

// Stats computes the three aggregates over every book.
func (svc *Service) Stats(ctx context.Context) (*Stats, error) {
	overview, err := svc.overview(ctx)
	if err != nil {
		return nil, err
	}
	byGenre, err := svc.byGenre(ctx)
	if err != nil {
		return nil, err
	}
	byYear, err := svc.byYear(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		Overview: *overview,
		ByGenre:  byGenre,
		ByYear:   byYear,
	}, nil
}

func (svc *Service) overview(ctx context.Context) (*Overview, error) {
	overview := &Overview{}
	err := svc.db.
		NewSelect().
		Model((*models.Book)(nil)).
		ColumnExpr("COUNT(*) AS total_books").
		ColumnExpr("COALESCE(SUM(b.price), 0) AS total_value").
		ColumnExpr("AVG(b.price) AS average_price").
		ColumnExpr("MIN(b.price) AS min_price").
		ColumnExpr("MAX(b.price) AS max_price").
		Scan(ctx, overview)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return overview, nil
}

func (svc *Service) byGenre(ctx context.Context) ([]GenreStat, error) {
	stats := []GenreStat{}
	err := svc.db.
		NewSelect().
		Model((*models.Book)(nil)).
		ColumnExpr("b.genre AS genre").
		ColumnExpr("COUNT(*) AS count").
		ColumnExpr("AVG(b.price) AS average_price").
		Group("b.genre").
		OrderExpr("count DESC").
		OrderExpr("b.genre ASC").
		Scan(ctx, &stats)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return stats, nil
}

func (svc *Service) byYear(ctx context.Context) ([]YearStat, error) {
	year := "CAST(substr(b.published_date, 1, 4) AS INTEGER)"
	if svc.isPostgres() {
		year = "CAST(EXTRACT(YEAR FROM b.published_date) AS INTEGER)"
	}

	stats := []YearStat{}
	err := svc.db.
		NewSelect().
		Model((*models.Book)(nil)).
		ColumnExpr(year+" AS year").
		ColumnExpr("COUNT(*) AS count").
		GroupExpr(year).
		OrderExpr("year DESC").
		Limit(yearStatsLimit).
		Scan(ctx, &stats)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return stats, nil
}
