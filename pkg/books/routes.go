package books

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/assets"
)

// RegisterRoutes registers the public read routes and the admin write routes
// for books.
func RegisterRoutes(public *echo.Group, admin *echo.Group, db *bun.DB, assetStore *assets.Store) *Service {
	bookService := NewService(db)

	h := &handler{
		bookService: bookService,
		assetStore:  assetStore,
	}

	publicGroup := public.Group("/book")
	publicGroup.GET("", h.list)
	publicGroup.GET("/:id", h.retrieve)

	adminGroup := admin.Group("/book")
	adminGroup.POST("", h.create)
	adminGroup.PATCH("/:id", h.update)
	adminGroup.DELETE("/:id", h.delete)
	adminGroup.POST("/:id/cover", h.uploadCover)
	adminGroup.DELETE("/:id/cover", h.deleteCover)

	return bookService
}
