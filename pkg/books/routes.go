package books

import (
	"github.com/inkwell/bookstore/pkg/validation"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers book routes on a pre-configured group.
// /stats is registered before /:id so it is never taken for an id.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, v *validation.Validator) {
	bookService := NewService(db, v)

	h := &handler{
		bookService: bookService,
	}

	g.GET("", h.list)
	g.GET("/stats", h.stats)
	g.GET("/:id", h.retrieve)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}
