package testutils

import (
	"net/http"

	"github.com/inkwell/bookstore/pkg/books"
	"github.com/inkwell/bookstore/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	bookService *books.Service
}

// createBooksRequest is the request body for seeding books.
type createBooksRequest struct {
	Books []books.CreateBookPayload `json:"books" validate:"required,min=1,max=500"`
}

// createBooksResponse is the response body for seeding books.
type createBooksResponse struct {
	Created []*models.Book `json:"created"`
}

// createBooks seeds books through the regular write path, so every book is
// validated and normalized.
// POST /test/books.
func (h *handler) createBooks(c echo.Context) error {
	ctx := c.Request().Context()

	var req createBooksRequest
	if err := c.Bind(&req); err != nil {
		return errors.WithStack(err)
	}

	created := make([]*models.Book, 0, len(req.Books))
	for _, payload := range req.Books {
		book, err := h.bookService.CreateBook(ctx, books.Fields(payload))
		if err != nil {
			return errors.Wrap(err, "failed to seed book")
		}
		created = append(created, book)
	}

	return c.JSON(http.StatusCreated, createBooksResponse{Created: created})
}

// deleteAllBooksResponse is the response body for deleting all books.
type deleteAllBooksResponse struct {
	Deleted int `json:"deleted"`
}

// deleteAllBooks deletes every book.
// DELETE /test/books.
func (h *handler) deleteAllBooks(c echo.Context) error {
	ctx := c.Request().Context()

	deleted, err := h.bookService.DeleteAllBooks(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to delete books")
	}

	return c.JSON(http.StatusOK, deleteAllBooksResponse{Deleted: deleted})
}
