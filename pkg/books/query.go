package books

import (
	"math"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps (page-1)*MaxLimit well inside a 32-bit int.
	MaxPage      = 10_000_000
)

// ListBooksQuery is the query string of GET /api/books.
type ListBooksQuery struct {
	Page     *int     `query:"page" json:"page,omitempty" validate:"omitempty,min=1,max=10000000"`
	Limit    *int     `query:"limit" json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
	Sort     string   `query:"sort" json:"sort,omitempty" default:"createdAt" validate:"oneof=title author price publishedDate createdAt updatedAt"`
	Order    string   `query:"order" json:"order,omitempty" default:"desc" validate:"oneof=asc desc"`
	Genre    string   `query:"genre" json:"genre,omitempty" mod:"trim" validate:"omitempty,genre"`
	Search   string   `query:"search" json:"search,omitempty" mod:"trim" validate:"omitempty,max=100"`
	MinPrice *float64 `query:"minPrice" json:"minPrice,omitempty" validate:"omitempty,gte=0"`
	MaxPrice *float64 `query:"maxPrice" json:"maxPrice,omitempty" validate:"omitempty,gte=0"`
}

// sortColumns whitelists the sortable fields.
var sortColumns = map[string]string{
	"title":         "b.title",
	"author":        "b.author",
	"price":         "b.price",
	"publishedDate": "b.published_date",
	"createdAt":     "b.created_at",
	"updatedAt":     "b.updated_at",
}

// Filter is the predicate shared by a page query and its count.
type Filter struct {
	Genre    *string
	Search   *string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

type ListBooksOptions struct {
	Filter     Filter
	SortColumn string
	SortDesc   bool
	Page       int
	Limit      int
	Offset     int
}

// BuildListOptions turns a bound query into a deterministic query descriptor.
// Unset page and limit take their defaults.
func BuildListOptions(q ListBooksQuery) ListBooksOptions {
	page := DefaultPage
	if q.Page != nil {
		page = *q.Page
	}
	limit := DefaultLimit
	if q.Limit != nil {
		limit = *q.Limit
	}

	column, ok := sortColumns[q.Sort]
	if !ok {
		column = sortColumns["createdAt"]
	}

	opts := ListBooksOptions{
		SortColumn: column,
		SortDesc:   q.Order != "asc",
		Page:       page,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	}
	if q.Genre != "" {
		opts.Filter.Genre = &q.Genre
	}
	if q.Search != "" {
		opts.Filter.Search = &q.Search
	}
	if q.MinPrice != nil {
		d := decimal.NewFromFloat(*q.MinPrice)
		opts.Filter.MinPrice = &d
	}
	if q.MaxPrice != nil {
		d := decimal.NewFromFloat(*q.MaxPrice)
		opts.Filter.MaxPrice = &d
	}
	return opts
}

// Apply adds the filter's predicates to q. pg selects PostgreSQL full-text
// search; otherwise the SQLite FTS5 index is used.
func (f Filter) Apply(q *bun.SelectQuery, pg bool) *bun.SelectQuery {
	if f.Genre != nil {
		q = q.Where("b.genre = ?", *f.Genre)
	}
	if f.MinPrice != nil {
		q = q.Where("b.price >= ?", f.MinPrice.InexactFloat64())
	}
	if f.MaxPrice != nil {
		q = q.Where("b.price <= ?", f.MaxPrice.InexactFloat64())
	}
	if f.Search != nil {
		terms := searchTerms(*f.Search)
		switch {
		case len(terms) == 0:
			q = q.Where("1 = 0")
		case pg:
			q = q.Where("to_tsvector('simple', b.title || ' ' || b.author) @@ to_tsquery('simple', ?)", pgTSQuery(terms))
		default:
			q = q.Where("b.id IN (SELECT book_id FROM books_fts WHERE books_fts MATCH ?)", fts5Query(terms))
		}
	}
	return q
}

// apply adds ordering and paging. id breaks ties so that pages never overlap.
func (opts ListBooksOptions) apply(q *bun.SelectQuery, pg bool) *bun.SelectQuery {
	q = opts.Filter.Apply(q, pg)
	direction := "ASC"
	if opts.SortDesc {
		direction = "DESC"
	}
	return q.
		OrderExpr(opts.SortColumn+" "+direction).
		OrderExpr("b.id ASC").
		Limit(opts.Limit).
		Offset(opts.Offset)
}

// searchTerms splits s into words of letters and digits. Everything else is a
// separator, so no user input reaches the match syntax unescaped.
func searchTerms(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func fts5Query(terms []string) string {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + t + `"*`
	}
	return strings.Join(quoted, " OR ")
}

func pgTSQuery(terms []string) string {
	prefixed := make([]string, len(terms))
	for i, t := range terms {
		prefixed[i] = t + ":*"
	}
	return strings.Join(prefixed, " | ")
}

// Pagination is the page metadata returned alongside a list.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalBooks  int  `json:"totalBooks"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

func NewPagination(total, page, limit int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalBooks:  total,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}
