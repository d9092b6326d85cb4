package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"

	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/assets"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/auth"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/authors"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/binder"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/books"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/config"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/errcodes"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/genres"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/publishers"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/users"
)

func New(cfg *config.Config, db *bun.DB) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	if cfg.FrontendURL != "" {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     []string{cfg.FrontendURL},
			AllowCredentials: true,
		}))
	} else {
		e.Use(middleware.CORS())
	}

	health.RegisterRoutes(e)

	assetStore, err := assets.NewStore(cfg.MediaDir)
	if err != nil {
		return nil, err
	}

	api := e.Group("/api/v1")

	// Register auth routes and get the auth service
	authService := auth.RegisterRoutes(api, db, cfg.JWTSecret, assetStore)
	authMiddleware := auth.NewMiddleware(authService)

	// Public catalog reads; admin group carries all catalog writes.
	admin := api.Group("/admin", authMiddleware.Authenticate, authMiddleware.RequireAdmin)
	authors.RegisterRoutes(api, admin, db, assetStore)
	publishers.RegisterRoutes(api, admin, db, assetStore)
	genres.RegisterRoutes(api, admin, db)
	books.RegisterRoutes(api, admin, db, assetStore)

	// Self-service user routes
	user := api.Group("/user", authMiddleware.Authenticate)
	users.RegisterRoutes(user, db, assetStore)

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
