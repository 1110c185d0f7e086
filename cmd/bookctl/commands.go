package main

import (
	"fmt"
	"strings"

	"github.com/inkwell/bookstore/pkg/books"
	"github.com/inkwell/bookstore/pkg/client"
	"github.com/inkwell/bookstore/pkg/errcodes"
	"github.com/inkwell/bookstore/pkg/models"
	"github.com/inkwell/bookstore/pkg/validation"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "list books",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "page", Usage: "page number, starting at 1"},
			&cli.IntFlag{Name: "limit", Usage: "books per page (1-100)"},
			&cli.StringFlag{Name: "sort", Usage: "title, author, price, publishedDate, createdAt or updatedAt"},
			&cli.StringFlag{Name: "order", Usage: "asc or desc"},
			&cli.StringFlag{Name: "genre", Usage: "only books of this genre"},
			&cli.StringFlag{Name: "search", Aliases: []string{"q"}, Usage: "match title and author"},
			&cli.Float64Flag{Name: "min-price"},
			&cli.Float64Flag{Name: "max-price"},
		},
		Action: func(c *cli.Context) error {
			params := client.ListParams{
				Page:   c.Int("page"),
				Limit:  c.Int("limit"),
				Sort:   c.String("sort"),
				Order:  c.String("order"),
				Genre:  c.String("genre"),
				Search: c.String("search"),
			}
			if c.IsSet("min-price") {
				v := c.Float64("min-price")
				params.MinPrice = &v
			}
			if c.IsSet("max-price") {
				v := c.Float64("max-price")
				params.MaxPrice = &v
			}

			list, err := newClient(c).ListBooks(c.Context, params)
			if err != nil {
				return failure(err)
			}
			return renderList(c.App.Writer, list)
		},
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "show one book",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := idArg(c)
			if err != nil {
				return err
			}
			book, err := newClient(c).GetBook(c.Context, id)
			if err != nil {
				return failure(err)
			}
			return renderBook(c.App.Writer, book)
		},
	}
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "add a book",
		Flags: bookFlags(),
		Action: func(c *cli.Context) error {
			fields, err := fieldsFromFlags(c)
			if err != nil {
				return failure(err)
			}
			if err := validation.New().Struct(&fields); err != nil {
				return failure(err)
			}

			book, err := newClient(c).CreateBook(c.Context, fields)
			if err != nil {
				return failure(err)
			}
			fmt.Fprintln(c.App.Writer, "Book created successfully")
			return renderBook(c.App.Writer, book)
		},
	}
}

func editCommand() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "change fields of a book",
		ArgsUsage: "<id>",
		Flags:     bookFlags(),
		Action: func(c *cli.Context) error {
			id, err := idArg(c)
			if err != nil {
				return err
			}
			fields, err := fieldsFromFlags(c)
			if err != nil {
				return failure(err)
			}
			patch := books.UpdateBookPayload(fields)
			if err := validation.New().StructPartial(&patch, patch.ValidationFields()...); err != nil {
				return failure(err)
			}

			book, err := newClient(c).UpdateBook(c.Context, id, fields)
			if err != nil {
				return failure(err)
			}
			fmt.Fprintln(c.App.Writer, "Book updated successfully")
			return renderBook(c.App.Writer, book)
		},
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "delete a book",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := idArg(c)
			if err != nil {
				return err
			}
			deleted, err := newClient(c).DeleteBook(c.Context, id)
			if err != nil {
				return failure(err)
			}
			fmt.Fprintf(c.App.Writer, "Book deleted successfully: %s\n", deleted)
			return nil
		},
	}
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "show collection statistics",
		Action: func(c *cli.Context) error {
			stats, err := newClient(c).Stats(c.Context)
			if err != nil {
				return failure(err)
			}
			return renderStats(c.App.Writer, stats)
		},
	}
}

func bookFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title"},
		&cli.StringFlag{Name: "author"},
		&cli.StringFlag{Name: "price", Usage: "0 to 10000"},
		&cli.StringFlag{Name: "published", Usage: "publication date, YYYY-MM-DD"},
		&cli.StringFlag{Name: "isbn", Usage: "10 or 13 digits; empty to clear"},
		&cli.StringFlag{Name: "genre", Usage: genreUsage()},
		&cli.StringFlag{Name: "description"},
		&cli.StringFlag{Name: "cover", Usage: "cover image URL"},
		&cli.IntFlag{Name: "stock"},
	}
}

// fieldsFromFlags maps only the flags given on the command line, so an edit
// leaves every other field untouched.
func fieldsFromFlags(c *cli.Context) (books.Fields, error) {
	fields := books.Fields{}
	var details []errcodes.FieldError

	if c.IsSet("title") {
		v := c.String("title")
		fields.Title = &v
	}
	if c.IsSet("author") {
		v := c.String("author")
		fields.Author = &v
	}
	if c.IsSet("price") {
		d, err := decimal.NewFromString(strings.TrimSpace(c.String("price")))
		if err != nil {
			details = append(details, errcodes.FieldError{Field: "price", Message: `"price" should be of type number`})
		} else {
			fields.Price = &d
		}
	}
	if c.IsSet("published") {
		d, err := models.ParseDate(c.String("published"))
		if err != nil {
			details = append(details, errcodes.FieldError{Field: "publishedDate", Message: `"publishedDate" should be in the format of YYYY-MM-DD`})
		} else {
			fields.PublishedDate = &d
		}
	}
	if c.IsSet("isbn") {
		v := c.String("isbn")
		fields.ISBN = &v
	}
	if c.IsSet("genre") {
		v := models.Genre(c.String("genre"))
		fields.Genre = &v
	}
	if c.IsSet("description") {
		v := c.String("description")
		fields.Description = &v
	}
	if c.IsSet("cover") {
		v := c.String("cover")
		fields.CoverImage = &v
	}
	if c.IsSet("stock") {
		v := c.Int("stock")
		fields.Stock = &v
	}

	if len(details) > 0 {
		return fields, errcodes.ValidationFailed(details)
	}
	return fields, nil
}

func idArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", cli.Exit(fmt.Sprintf("usage: bookctl %s <id>", c.Command.Name), 1)
	}
	return c.Args().First(), nil
}

// failure turns any error into a non-zero exit carrying the server's (or the
// local validator's) message and field details.
func failure(err error) error {
	var msg strings.Builder

	var clientErr *client.Error
	var codeErr *errcodes.Error
	switch {
	case errors.As(err, &clientErr):
		msg.WriteString(clientErr.Message)
		writeDetails(&msg, clientErr.Details)
	case errors.As(err, &codeErr):
		msg.WriteString(codeErr.Message)
		writeDetails(&msg, codeErr.Details)
	default:
		msg.WriteString(err.Error())
	}

	return cli.Exit(msg.String(), 1)
}

func writeDetails(msg *strings.Builder, details []errcodes.FieldError) {
	if len(details) < 2 {
		return
	}
	for _, d := range details {
		msg.WriteString("\n  - ")
		msg.WriteString(d.Message)
	}
}

func genreUsage() string {
	names := make([]string, len(models.Genres))
	for i, g := range models.Genres {
		names[i] = string(g)
	}
	return "one of: " + strings.Join(names, ", ")
}
