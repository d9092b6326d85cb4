package publishers

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/assets"
)

// RegisterRoutes registers the public read routes and the admin write routes
// for publishers.
func RegisterRoutes(public *echo.Group, admin *echo.Group, db *bun.DB, assetStore *assets.Store) *Service {
	publisherService := NewService(db)

	h := &handler{
		publisherService: publisherService,
		assetStore:       assetStore,
	}

	publicGroup := public.Group("/publisher")
	publicGroup.GET("", h.list)
	publicGroup.GET("/:id", h.retrieve)

	adminGroup := admin.Group("/publisher")
	adminGroup.POST("", h.create)
	adminGroup.PATCH("/:id", h.update)
	adminGroup.DELETE("/:id", h.delete)
	adminGroup.POST("/:id/logo", h.uploadLogo)
	adminGroup.DELETE("/:id/logo", h.deleteLogo)

	return publisherService
}
