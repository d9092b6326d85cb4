package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/errcodes"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/models"
)

// Context keys under which the authenticated user is stored.
const (
	ContextKeyUserID = "user_id"
	ContextKeyUser   = "user"
)

// Middleware provides authentication middleware.
type Middleware struct {
	authService *Service
}

// NewMiddleware creates a new auth middleware.
func NewMiddleware(authService *Service) *Middleware {
	return &Middleware{
		authService: authService,
	}
}

// Authenticate extracts and validates the bearer access token from the
// Authorization header. If valid, it verifies the user still exists and adds
// the user to the context. If not authenticated, it returns 401 before any
// handler runs.
func (m *Middleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		token := bearerToken(c)
		if token == "" {
			return errcodes.Unauthorized("Authentication required")
		}

		claims, err := m.authService.ValidateToken(token, TokenTypeAccess)
		if err != nil {
			return errcodes.Unauthorized("Invalid or expired token")
		}

		// Verify the account still exists
		user, err := m.authService.GetUserByID(ctx, claims.UserID)
		if err != nil {
			return errcodes.Unauthorized("User not found")
		}

		c.Set(ContextKeyUserID, user.ID)
		c.Set(ContextKeyUser, user)

		return next(c)
	}
}

// RequireAdmin rejects non-admin callers with 403. Must be used after
// Authenticate.
func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := c.Get(ContextKeyUser).(*models.User)
		if !ok {
			return errcodes.Unauthorized("Authentication required")
		}
		if !user.IsAdmin {
			return errcodes.Forbidden("Administering the catalog")
		}
		return next(c)
	}
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}

// UserFromContext retrieves the authenticated user from the Echo context.
func UserFromContext(c echo.Context) (*models.User, bool) {
	user, ok := c.Get(ContextKeyUser).(*models.User)
	return user, ok
}

// UserIDFromContext retrieves the authenticated user ID from the Echo context.
func UserIDFromContext(c echo.Context) (int, bool) {
	userID, ok := c.Get(ContextKeyUserID).(int)
	return userID, ok
}
