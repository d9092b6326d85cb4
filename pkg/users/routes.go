package users

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/assets"
)

// RegisterRoutes registers the self-service user routes. The group must
// already require authentication.
func RegisterRoutes(user *echo.Group, db *bun.DB, assetStore *assets.Store) *Service {
	userService := NewService(db)

	h := &handler{
		userService: userService,
		assetStore:  assetStore,
	}

	user.GET("/me", h.me)
	user.PATCH("/me", h.updateMe)
	user.DELETE("/me", h.deleteMe)
	user.POST("/me/avatar", h.uploadAvatar)
	user.DELETE("/me/avatar", h.deleteAvatar)

	user.GET("/:id", h.retrieve)

	user.GET("/books", h.listBooks)
	user.POST("/books/:book_id", h.createBook)
	user.PATCH("/books/:book_id", h.updateBook)
	user.DELETE("/books/:book_id", h.deleteBook)

	user.POST("/genres/:id", h.addGenre)
	user.DELETE("/genres/:id", h.removeGenre)
	user.POST("/authors/:id", h.addAuthor)
	user.DELETE("/authors/:id", h.removeAuthor)
	user.POST("/publishers/:id", h.addPublisher)
	user.DELETE("/publishers/:id", h.removePublisher)

	return userService
}
