package server

import (
	"net/http"
	"time"

	"github.com/inkwell/bookstore/pkg/config"
	"github.com/inkwell/bookstore/pkg/version"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	cfg     *config.Config
	started time.Time
}

type healthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Uptime      float64   `json:"uptime"`
	Environment string    `json:"environment"`
}

func (h *handler) welcome(c echo.Context) error {
	return errors.WithStack(c.JSON(http.StatusOK, map[string]interface{}{
		"message":       "Welcome to the Book Store API!",
		"version":       version.Version,
		"documentation": "Visit /api for endpoint details.",
		"healthCheck":   "/health",
	}))
}

func (h *handler) index(c echo.Context) error {
	return errors.WithStack(c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Book Store API",
		"version": version.Version,
		"endpoints": map[string]string{
			"GET /api/books":        "Get all books",
			"GET /api/books/stats":  "Get book statistics",
			"GET /api/books/:id":    "Get a single book",
			"POST /api/books":       "Create a new book",
			"PUT /api/books/:id":    "Update a book",
			"DELETE /api/books/:id": "Delete a book",
		},
	}))
}

func (h *handler) health(c echo.Context) error {
	return errors.WithStack(c.JSON(http.StatusOK, healthResponse{
		Status:      "OK",
		Timestamp:   time.Now().UTC(),
		Uptime:      time.Since(h.started).Seconds(),
		Environment: h.cfg.Environment,
	}))
}
