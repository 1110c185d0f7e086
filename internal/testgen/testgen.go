// Package testgen provides deterministic book fixtures for testing the store,
// the HTTP layer and the API client.
package testgen

import (
	"fmt"
	"testing"

	"github.com/inkwell/bookstore/pkg/models"
	"github.com/segmentio/encoding/json"
)

// BookOptions configures a generated book payload. Zero-valued optional fields
// are left out of the payload.
type BookOptions struct {
	Title         string
	Author        string
	Price         float64
	PublishedDate string // YYYY-MM-DD
	ISBN          string
	Genre         models.Genre
	Description   string
	CoverImage    string
	Stock         *int
}

var (
	titles  = []string{"the silent harbor", "a field of stars", "winter ledger", "the glass orchard", "northern lights", "paper kingdoms", "salt and iron"}
	authors = []string{"ada north", "ben okafor", "clara voss", "dev patel", "elena ruiz"}
)

// Book returns the i-th fixture. Fixtures cycle through every genre, vary in
// price and publication year, and carry a unique 13-digit isbn.
func Book(i int) BookOptions {
	stock := i % 7
	return BookOptions{
		Title:         fmt.Sprintf("%s %d", titles[i%len(titles)], i),
		Author:        authors[i%len(authors)],
		Price:         float64(5 + (i*37)%95),
		PublishedDate: fmt.Sprintf("%d-%02d-%02d", 1990+(i*3)%30, 1+i%12, 1+i%28),
		ISBN:          fmt.Sprintf("978%010d", i),
		Genre:         models.Genres[i%len(models.Genres)],
		Stock:         &stock,
	}
}

// Books returns the first n fixtures.
func Books(n int) []BookOptions {
	out := make([]BookOptions, n)
	for i := range out {
		out[i] = Book(i)
	}
	return out
}

// Payload is the JSON object a client would send to create the book.
func (o BookOptions) Payload() map[string]interface{} {
	p := map[string]interface{}{
		"title":         o.Title,
		"author":        o.Author,
		"price":         o.Price,
		"publishedDate": o.PublishedDate,
	}
	if o.ISBN != "" {
		p["isbn"] = o.ISBN
	}
	if o.Genre != "" {
		p["genre"] = string(o.Genre)
	}
	if o.Description != "" {
		p["description"] = o.Description
	}
	if o.CoverImage != "" {
		p["coverImage"] = o.CoverImage
	}
	if o.Stock != nil {
		p["stock"] = *o.Stock
	}
	return p
}

// JSON encodes Payload.
func (o BookOptions) JSON(t *testing.T) []byte {
	t.Helper()
	b, err := json.Marshal(o.Payload())
	if err != nil {
		t.Fatalf("failed to marshal book payload: %v", err)
	}
	return b
}

// Decode unmarshals Payload into v, typically a create payload struct.
func (o BookOptions) Decode(t *testing.T, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(o.JSON(t), v); err != nil {
		t.Fatalf("failed to decode book payload: %v", err)
	}
}
