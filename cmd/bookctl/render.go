package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/inkwell/bookstore/pkg/books"
	"github.com/inkwell/bookstore/pkg/client"
	"github.com/inkwell/bookstore/pkg/models"
	"github.com/pkg/errors"
)

const barWidth = 40

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func renderList(w io.Writer, list *client.BookList) error {
	if len(list.Books) == 0 {
		_, err := fmt.Fprintln(w, "No books found.")
		return errors.WithStack(err)
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tGENRE\tPRICE\tSTOCK\tYEAR")
	for _, b := range list.Books {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
			b.ID, truncate(b.Title, 40), truncate(b.Author, 24), b.Genre, b.FormattedPrice(), b.Stock, b.PublishedDate.UTC().Year())
	}
	if err := tw.Flush(); err != nil {
		return errors.WithStack(err)
	}

	p := list.Pagination
	_, err := fmt.Fprintf(w, "\nPage %d of %d (%d books)\n", p.CurrentPage, p.TotalPages, p.TotalBooks)
	return errors.WithStack(err)
}

func renderBook(w io.Writer, b *models.Book) error {
	tw := newTable(w)
	row := func(k, v string) {
		fmt.Fprintf(tw, "%s:\t%s\n", k, v)
	}
	row("ID", b.ID)
	row("Title", b.Title)
	row("Author", b.Author)
	row("Price", b.FormattedPrice())
	row("Published", models.NewDate(b.PublishedDate).String())
	row("Age", fmt.Sprintf("%d years", b.Age(time.Now())))
	row("Genre", string(b.Genre))
	row("Stock", fmt.Sprintf("%d", b.Stock))
	if b.ISBN != nil {
		row("ISBN", *b.ISBN)
	}
	if b.CoverImage != nil {
		row("Cover", *b.CoverImage)
	}
	if b.Description != nil {
		row("Description", *b.Description)
	}
	row("Created", b.CreatedAt.Local().Format(time.RFC1123))
	row("Updated", b.UpdatedAt.Local().Format(time.RFC1123))
	return errors.WithStack(tw.Flush())
}

func renderStats(w io.Writer, s *books.Stats) error {
	o := s.Overview
	fmt.Fprintf(w, "Total books:    %d\n", o.TotalBooks)
	fmt.Fprintf(w, "Total value:    $%s\n", o.TotalValue.StringFixed(2))
	fmt.Fprintf(w, "Average price:  %s\n", nullMoney(o.AveragePrice.Valid, o.AveragePrice.Decimal.StringFixed(2)))
	fmt.Fprintf(w, "Price range:    %s - %s\n",
		nullMoney(o.MinPrice.Valid, o.MinPrice.Decimal.StringFixed(2)),
		nullMoney(o.MaxPrice.Valid, o.MaxPrice.Decimal.StringFixed(2)))

	genreMax := 0
	for _, g := range s.ByGenre {
		genreMax = max(genreMax, g.Count)
	}
	fmt.Fprintln(w, "\nBooks by genre")
	tw := newTable(w)
	for _, g := range s.ByGenre {
		fmt.Fprintf(tw, "%s\t%s\t%d\tavg $%s\n", g.Genre, bar(g.Count, genreMax), g.Count, g.AveragePrice.StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return errors.WithStack(err)
	}

	yearMax := 0
	for _, y := range s.ByYear {
		yearMax = max(yearMax, y.Count)
	}
	fmt.Fprintln(w, "\nBooks by publication year")
	tw = newTable(w)
	for _, y := range s.ByYear {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", y.Year, bar(y.Count, yearMax), y.Count)
	}
	return errors.WithStack(tw.Flush())
}

// bar scales n against total to at most barWidth blocks. Any non-zero count
// gets at least one block.
func bar(n, total int) string {
	if n <= 0 || total <= 0 {
		return ""
	}
	width := n * barWidth / total
	if width == 0 {
		width = 1
	}
	return strings.Repeat("█", width)
}

func nullMoney(valid bool, s string) string {
	if !valid {
		return "n/a"
	}
	return "$" + s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
