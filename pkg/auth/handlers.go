package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/assets"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/errcodes"
)

const (
	// RefreshCookieName is the name of the http-only refresh token cookie.
	RefreshCookieName = "refresh"
)

type handler struct {
	authService *Service
	assetStore  *assets.Store
}

func (h *handler) setRefreshCookie(c echo.Context, token string, maxAge int) {
	cookie := &http.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Request().TLS != nil || c.Request().Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteLaxMode,
	}
	c.SetCookie(cookie)
}

// register creates a new user account, optionally with an avatar image.
func (h *handler) register(c echo.Context) error {
	ctx := c.Request().Context()

	params := RegisterPayload{}
	if err := c.Bind(&params); err != nil {
		return err
	}

	var avatarPath *string
	if fh, ok := params.FormFiles["avatar"]; ok {
		path, err := h.assetStore.Save(assets.KindAvatar, fh)
		if err != nil {
			return err
		}
		avatarPath = &path
	}

	user, err := h.authService.Register(ctx, RegisterOptions{
		Email:      params.Email,
		Username:   params.Username,
		Password:   params.Password,
		BirthDate:  params.BirthDate,
		Gender:     params.Gender,
		Summary:    params.Summary,
		AvatarPath: avatarPath,
	})
	if err != nil {
		// Don't orphan the freshly stored avatar.
		if avatarPath != nil {
			_ = h.assetStore.Remove(*avatarPath)
		}
		return err
	}

	return errors.WithStack(c.JSON(http.StatusCreated, user))
}

// login authenticates a user and issues an access/refresh token pair. The
// refresh token is also set as an http-only cookie.
func (h *handler) login(c echo.Context) error {
	ctx := c.Request().Context()

	params := LoginPayload{}
	if err := c.Bind(&params); err != nil {
		return err
	}

	user, err := h.authService.Authenticate(ctx, params.Email, params.Password)
	if err != nil {
		return err
	}

	access, err := h.authService.GenerateToken(user, TokenTypeAccess)
	if err != nil {
		return err
	}
	refresh, err := h.authService.GenerateToken(user, TokenTypeRefresh)
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, refresh, int(RefreshTokenExpiry.Seconds()))

	return errors.WithStack(c.JSON(http.StatusOK, TokenPairResponse{
		Access:  access,
		Refresh: refresh,
		User:    user,
	}))
}

// logout clears the refresh cookie.
func (h *handler) logout(c echo.Context) error {
	h.setRefreshCookie(c, "", -1)
	return errors.WithStack(c.JSON(http.StatusOK, map[string]string{"message": "Logged out successfully"}))
}

// refresh exchanges a refresh token, from the body or the cookie, for a new
// access token.
func (h *handler) refresh(c echo.Context) error {
	ctx := c.Request().Context()

	params := RefreshPayload{}
	c.Set("disallow_empty_body", false)
	if err := c.Bind(&params); err != nil {
		return err
	}

	token := params.Refresh
	if token == "" {
		cookie, err := c.Cookie(RefreshCookieName)
		if err != nil || cookie.Value == "" {
			return errcodes.Unauthorized("Refresh token is missing")
		}
		token = cookie.Value
	}

	claims, err := h.authService.ValidateToken(token, TokenTypeRefresh)
	if err != nil {
		return errcodes.Unauthorized("Invalid or expired refresh token")
	}

	user, err := h.authService.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return errcodes.Unauthorized("User not found")
	}

	access, err := h.authService.GenerateToken(user, TokenTypeAccess)
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, AccessTokenResponse{Access: access}))
}

// verify checks whether a token (access or refresh) is valid.
func (h *handler) verify(c echo.Context) error {
	params := VerifyPayload{}
	if err := c.Bind(&params); err != nil {
		return err
	}

	if _, err := h.authService.ValidateToken(params.Token, ""); err != nil {
		return errcodes.Unauthorized("Invalid or expired token")
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]string{"message": "Token is valid."}))
}

// changePassword lets an authenticated user rotate their own password.
func (h *handler) changePassword(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	params := ChangePasswordPayload{}
	if err := c.Bind(&params); err != nil {
		return err
	}

	if err := h.authService.ChangePassword(ctx, userID, params.OldPassword, params.NewPassword); err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]string{"message": "Password changed successfully"}))
}
