package books

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

type handler struct {
	bookService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	opts := BuildListOptions(params)
	books, total, err := h.bookService.ListBooks(ctx, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	count := len(books)
	pagination := NewPagination(total, opts.Page, opts.Limit)
	resp := ok(books)
	resp.Count = &count
	resp.Pagination = &pagination

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) stats(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.bookService.Stats(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, ok(stats)))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := ParseID(c.Param("id"))
	if err != nil {
		return err
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{ID: id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, ok(book)))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)

	params := CreateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book, err := h.bookService.CreateBook(ctx, Fields(params))
	if err != nil {
		return errors.WithStack(err)
	}

	log.Info("book created", logger.Data{"book_id": book.ID})

	return errors.WithStack(c.JSON(http.StatusCreated, okWithMessage("Book created successfully", book)))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := ParseID(c.Param("id"))
	if err != nil {
		return err
	}

	params := UpdateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book, err := h.bookService.UpdateBook(ctx, id, Fields(params))
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, okWithMessage("Book updated successfully", book)))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)
	id, err := ParseID(c.Param("id"))
	if err != nil {
		return err
	}

	deleted, err := h.bookService.DeleteBook(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	log.Info("book deleted", logger.Data{"book_id": deleted})

	return errors.WithStack(c.JSON(http.StatusOK, okWithMessage("Book deleted successfully", DeletedBook{ID: deleted})))
}
