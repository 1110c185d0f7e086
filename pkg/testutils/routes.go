// Package testutils provides test-only API endpoints.
// These routes are only registered when ENVIRONMENT=test.
package testutils

import (
	"github.com/inkwell/bookstore/pkg/books"
	"github.com/inkwell/bookstore/pkg/validation"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers test-only routes.
// These endpoints should ONLY be registered in test environments.
func RegisterRoutes(e *echo.Echo, db *bun.DB, v *validation.Validator) {
	h := &handler{bookService: books.NewService(db, v)}

	test := e.Group("/test")
	test.POST("/books", h.createBooks)
	test.DELETE("/books", h.deleteAllBooks)
}
