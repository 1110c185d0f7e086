package server

import (
	"net/http"

	"github.com/inkwell/bookstore/pkg/config"
	"github.com/inkwell/bookstore/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// rateLimitMiddleware allows each client IP RateLimitMaxRequests per
// RateLimitWindow. The bucket refills continuously rather than resetting at
// window boundaries.
func rateLimitMiddleware(cfg *config.Config) echo.MiddlewareFunc {
	limit := rate.Inf
	if cfg.RateLimitWindow > 0 {
		limit = rate.Limit(float64(cfg.RateLimitMaxRequests) / cfg.RateLimitWindow.Seconds())
	}

	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     cfg.RateLimitMaxRequests,
		ExpiresIn: cfg.RateLimitWindow,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "Unable to identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return errcodes.RateLimited()
		},
	})
}
