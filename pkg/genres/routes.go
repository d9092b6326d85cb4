package genres

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers the public read routes and the admin write routes
// for genres.
func RegisterRoutes(public *echo.Group, admin *echo.Group, db *bun.DB) *Service {
	genreService := NewService(db)

	h := &handler{
		genreService: genreService,
	}

	publicGroup := public.Group("/genre")
	publicGroup.GET("", h.list)
	publicGroup.GET("/:id", h.retrieve)

	adminGroup := admin.Group("/genre")
	adminGroup.POST("", h.create)
	adminGroup.PATCH("/:id", h.update)
	adminGroup.DELETE("/:id", h.delete)

	return genreService
}
