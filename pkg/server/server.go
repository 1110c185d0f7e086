package server

import (
	"net/http"
	"time"

	"github.com/inkwell/bookstore/pkg/binder"
	"github.com/inkwell/bookstore/pkg/books"
	"github.com/inkwell/bookstore/pkg/config"
	"github.com/inkwell/bookstore/pkg/errcodes"
	"github.com/inkwell/bookstore/pkg/testutils"
	"github.com/inkwell/bookstore/pkg/validation"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB) (*http.Server, error) {
	e, err := NewEcho(cfg, db)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

// NewEcho builds the router with every middleware and route registered.
func NewEcho(cfg *config.Config, db *bun.DB) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = &jsonSerializer{}

	v := validation.New()
	b, err := binder.New(v)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(corsMiddleware(cfg))
	e.Use(middleware.Secure())
	e.Use(middleware.Gzip())
	e.Use(rateLimitMiddleware(cfg))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))

	h := &handler{cfg: cfg, started: time.Now()}
	e.GET("/", h.welcome)
	e.GET("/api", h.index)
	e.GET("/health", h.health)

	books.RegisterRoutesWithGroup(e.Group("/api/books"), db, v)

	if cfg.IsTest() {
		testutils.RegisterRoutes(e, db, v)
	}

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler(!cfg.IsProduction()).Handle

	return e, nil
}

func corsMiddleware(cfg *config.Config) echo.MiddlewareFunc {
	corsConfig := middleware.CORSConfig{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}
	if len(cfg.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORSOrigins
		corsConfig.AllowCredentials = true
	}
	return middleware.CORSWithConfig(corsConfig)
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.RouteNotFound(c.Request().Method, c.Request().URL.RequestURI())
}
