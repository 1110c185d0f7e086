package models

import (
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID            string          `bun:",pk" json:"id"`
	CreatedAt     time.Time       `bun:",notnull" json:"createdAt"`
	UpdatedAt     time.Time       `bun:",notnull" json:"updatedAt"`
	Title         string          `bun:",notnull" json:"title"`
	Author        string          `bun:",notnull" json:"author"`
	Price         decimal.Decimal `bun:",notnull" json:"price"`
	PublishedDate time.Time       `bun:",notnull" json:"publishedDate"`
	ISBN          *string         `json:"isbn,omitempty"`
	Genre         Genre           `bun:",notnull" json:"genre"`
	Description   *string         `json:"description,omitempty"`
	CoverImage    *string         `json:"coverImage,omitempty"`
	Stock         int             `bun:",notnull" json:"stock"`
}

// FormattedPrice renders the price with a currency prefix and exactly two
// decimal places, e.g. "$15.00".
func (b Book) FormattedPrice() string {
	return "$" + b.Price.StringFixed(2)
}

// Age is the calendar year of now minus the calendar year of publication. It
// doesn't account for month or day, so a book published in December is one
// year old the following January.
func (b Book) Age(now time.Time) int {
	return now.UTC().Year() - b.PublishedDate.UTC().Year()
}

type bookJSON Book

func (b Book) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		bookJSON
		FormattedPrice string `json:"formattedPrice"`
		Age            int    `json:"age"`
	}{
		bookJSON:       bookJSON(b),
		FormattedPrice: b.FormattedPrice(),
		Age:            b.Age(time.Now()),
	})
}
