package authors

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/assets"
)

// RegisterRoutes registers the public read routes and the admin write routes
// for authors.
func RegisterRoutes(public *echo.Group, admin *echo.Group, db *bun.DB, assetStore *assets.Store) *Service {
	authorService := NewService(db)

	h := &handler{
		authorService: authorService,
		assetStore:    assetStore,
	}

	publicGroup := public.Group("/author")
	publicGroup.GET("", h.list)
	publicGroup.GET("/:id", h.retrieve)

	adminGroup := admin.Group("/author")
	adminGroup.POST("", h.create)
	adminGroup.PATCH("/:id", h.update)
	adminGroup.DELETE("/:id", h.delete)
	adminGroup.POST("/:id/avatar", h.uploadAvatar)
	adminGroup.DELETE("/:id/avatar", h.deleteAvatar)

	return authorService
}
