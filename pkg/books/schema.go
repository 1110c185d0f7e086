package books

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/inkwell/bookstore/pkg/models"
	"github.com/inkwell/bookstore/pkg/validation"
	"github.com/shopspring/decimal"
)

// Fields holds every client-writable Book field. Its tags are the one table
// of field constraints: request binding and the store write path both
// validate against them.
type Fields struct {
	Title         *string          `json:"title,omitempty" mod:"trim" validate:"required,min=1,max=200"`
	Author        *string          `json:"author,omitempty" mod:"trim" validate:"required,min=1,max=100"`
	Price         *decimal.Decimal `json:"price,omitempty" validate:"required,gte=0,lte=10000"`
	PublishedDate *models.Date     `json:"publishedDate,omitempty" validate:"required,notfuture"`
	ISBN          *string          `json:"isbn,omitempty" mod:"trim" validate:"omitempty,isbn"`
	Genre         *models.Genre    `json:"genre,omitempty" mod:"trim" validate:"omitempty,genre"`
	Description   *string          `json:"description,omitempty" mod:"trim" validate:"omitempty,max=1000"`
	CoverImage    *string          `json:"coverImage,omitempty" mod:"trim" validate:"omitempty,httpurl"`
	Stock         *int             `json:"stock,omitempty" validate:"omitempty,gte=0"`
}

// CreateBookPayload requires title, author, price and publishedDate.
type CreateBookPayload Fields

// UpdateBookPayload is a patch: only the fields present are validated and
// applied.
type UpdateBookPayload Fields

// ValidationFields lists the fields present in the patch.
func (p *UpdateBookPayload) ValidationFields() []string {
	return (*Fields)(p).present()
}

func (f *Fields) present() []string {
	fields := []string{}
	if f.Title != nil {
		fields = append(fields, "Title")
	}
	if f.Author != nil {
		fields = append(fields, "Author")
	}
	if f.Price != nil {
		fields = append(fields, "Price")
	}
	if f.PublishedDate != nil {
		fields = append(fields, "PublishedDate")
	}
	if f.ISBN != nil {
		fields = append(fields, "ISBN")
	}
	if f.Genre != nil {
		fields = append(fields, "Genre")
	}
	if f.Description != nil {
		fields = append(fields, "Description")
	}
	if f.CoverImage != nil {
		fields = append(fields, "CoverImage")
	}
	if f.Stock != nil {
		fields = append(fields, "Stock")
	}
	return fields
}

// Validate checks a complete record against the constraint table, returning
// every failure at once.
func Validate(v *validation.Validator, f *Fields) error {
	return v.Struct(f)
}

// Normalize returns the persisted form of validated fields: title and author
// are sentence-cased, empty optional strings become absent, and genre and
// stock take their defaults.
func Normalize(f Fields) Fields {
	out := f
	if f.Title != nil {
		out.Title = ptr(sentenceCase(*f.Title))
	}
	if f.Author != nil {
		out.Author = ptr(sentenceCase(*f.Author))
	}
	out.ISBN = nonEmpty(f.ISBN)
	out.Description = nonEmpty(f.Description)
	out.CoverImage = nonEmpty(f.CoverImage)
	if f.Genre == nil || *f.Genre == "" {
		out.Genre = ptr(models.GenreOther)
	}
	if f.Stock == nil {
		out.Stock = ptr(0)
	}
	return out
}

// Merge overlays the fields present in patch onto base.
func Merge(base, patch Fields) Fields {
	out := base
	if patch.Title != nil {
		out.Title = patch.Title
	}
	if patch.Author != nil {
		out.Author = patch.Author
	}
	if patch.Price != nil {
		out.Price = patch.Price
	}
	if patch.PublishedDate != nil {
		out.PublishedDate = patch.PublishedDate
	}
	if patch.ISBN != nil {
		out.ISBN = patch.ISBN
	}
	if patch.Genre != nil {
		out.Genre = patch.Genre
	}
	if patch.Description != nil {
		out.Description = patch.Description
	}
	if patch.CoverImage != nil {
		out.CoverImage = patch.CoverImage
	}
	if patch.Stock != nil {
		out.Stock = patch.Stock
	}
	return out
}

// FieldsFromBook is the inverse of apply for a stored record.
func FieldsFromBook(b *models.Book) Fields {
	published := models.NewDate(b.PublishedDate)
	return Fields{
		Title:         ptr(b.Title),
		Author:        ptr(b.Author),
		Price:         ptr(b.Price),
		PublishedDate: &published,
		ISBN:          b.ISBN,
		Genre:         ptr(b.Genre),
		Description:   b.Description,
		CoverImage:    b.CoverImage,
		Stock:         ptr(b.Stock),
	}
}

// apply copies normalized fields onto b.
func (f Fields) apply(b *models.Book) {
	b.Title = deref(f.Title)
	b.Author = deref(f.Author)
	b.Price = deref(f.Price)
	b.PublishedDate = deref(f.PublishedDate).Time.UTC()
	b.ISBN = f.ISBN
	b.Genre = deref(f.Genre)
	b.Description = f.Description
	b.CoverImage = f.CoverImage
	b.Stock = deref(f.Stock)
}

// sentenceCase uppercases the first character and lowercases the rest.
func sentenceCase(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func ptr[T any](v T) *T {
	return &v
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
