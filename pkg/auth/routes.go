package auth

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/assets"
)

// RegisterRoutes registers all auth routes on the API group and returns the
// auth service for middleware construction.
func RegisterRoutes(g *echo.Group, db *bun.DB, jwtSecret string, assetStore *assets.Store) *Service {
	authService := NewService(db, jwtSecret)
	authMiddleware := NewMiddleware(authService)

	h := &handler{
		authService: authService,
		assetStore:  assetStore,
	}

	authGroup := g.Group("/auth")
	authGroup.POST("/register", h.register)
	authGroup.POST("/login", h.login)
	authGroup.POST("/logout", h.logout, authMiddleware.Authenticate)
	authGroup.POST("/refresh", h.refresh)
	authGroup.POST("/verify", h.verify)
	authGroup.POST("/password/change", h.changePassword, authMiddleware.Authenticate)

	return authService
}
