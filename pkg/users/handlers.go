package users

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/assets"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/auth"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/errcodes"
)

type handler struct {
	userService *Service
	assetStore  *assets.Store
}

func (h *handler) me(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	user, err := h.userService.RetrieveUser(ctx, RetrieveUserOptions{
		ID:            &userID,
		WithRelations: true,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, user))
}

func (h *handler) updateMe(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	params := UpdateMePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.userService.RetrieveUser(ctx, RetrieveUserOptions{ID: &userID})
	if err != nil {
		return errors.WithStack(err)
	}

	// Keep track of what's been changed
	opts := UpdateUserOptions{Columns: []string{}}

	if params.Email != nil && *params.Email != user.Email {
		user.Email = *params.Email
		opts.Columns = append(opts.Columns, "email")
	}
	if params.Username != nil && *params.Username != user.Username {
		user.Username = *params.Username
		opts.Columns = append(opts.Columns, "username")
	}
	if params.BirthDate != nil && *params.BirthDate != user.BirthDate {
		user.BirthDate = *params.BirthDate
		opts.Columns = append(opts.Columns, "birth_date")
	}
	if params.Gender != nil && *params.Gender != user.Gender {
		user.Gender = *params.Gender
		opts.Columns = append(opts.Columns, "gender")
	}
	if params.Summary != nil && *params.Summary != user.Summary {
		user.Summary = *params.Summary
		opts.Columns = append(opts.Columns, "summary")
	}

	if err := h.userService.UpdateUser(ctx, user, opts); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, user))
}

func (h *handler) deleteMe(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	user, err := h.userService.RetrieveUser(ctx, RetrieveUserOptions{ID: &userID})
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.userService.DeleteUser(ctx, user.ID); err != nil {
		return errors.WithStack(err)
	}

	// Only clean up the file once the row is gone.
	if err := h.assetStore.RemoveRef(user.AvatarPath); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

func (h *handler) uploadAvatar(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	params := UploadAvatarPayload{}
	c.Set("disallow_empty_body", false)
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	fh, ok := params.FormFiles["avatar"]
	if !ok {
		return errcodes.ValidationError("An avatar file is required")
	}

	user, err := h.userService.RetrieveUser(ctx, RetrieveUserOptions{ID: &userID})
	if err != nil {
		return errors.WithStack(err)
	}

	path, err := h.assetStore.Save(assets.KindAvatar, fh)
	if err != nil {
		return errors.WithStack(err)
	}

	oldPath := user.AvatarPath
	user.AvatarPath = &path
	err = h.userService.UpdateUser(ctx, user, UpdateUserOptions{Columns: []string{"avatar_path"}})
	if err != nil {
		_ = h.assetStore.Remove(path)
		return errors.WithStack(err)
	}

	// Remove the replaced file only after the new reference is persisted.
	if err := h.assetStore.RemoveRef(oldPath); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, user))
}

func (h *handler) deleteAvatar(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	user, err := h.userService.RetrieveUser(ctx, RetrieveUserOptions{ID: &userID})
	if err != nil {
		return errors.WithStack(err)
	}

	oldPath := user.AvatarPath
	user.AvatarPath = nil
	err = h.userService.UpdateUser(ctx, user, UpdateUserOptions{Columns: []string{"avatar_path"}})
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.assetStore.RemoveRef(oldPath); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("User")
	}

	user, err := h.userService.RetrieveUser(ctx, RetrieveUserOptions{
		ID:            &id,
		WithRelations: true,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, user))
}

func (h *handler) listBooks(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	userBooks, err := h.userService.ListUserBooks(ctx, userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, userBooks))
}

func (h *handler) createBook(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	bookID, err := strconv.Atoi(c.Param("book_id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	params := CreateUserBookPayload{}
	c.Set("disallow_empty_body", false)
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	userBook, err := h.userService.CreateUserBook(ctx, userID, bookID, CreateUserBookOptions{
		Situation: params.Situation,
		Rating:    params.Rating,
		Review:    params.Review,
		DateAdded: params.DateAdded,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, userBook))
}

func (h *handler) updateBook(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	bookID, err := strconv.Atoi(c.Param("book_id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	params := UpdateUserBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	userBook, err := h.userService.RetrieveUserBook(ctx, userID, bookID)
	if err != nil {
		return errors.WithStack(err)
	}

	opts := UpdateUserBookOptions{Columns: []string{}}

	if params.Situation != nil && *params.Situation != userBook.Situation {
		userBook.Situation = *params.Situation
		opts.Columns = append(opts.Columns, "situation")
	}
	if params.Rating != nil {
		userBook.Rating = params.Rating
		opts.Columns = append(opts.Columns, "rating")
	}
	if params.Review != nil {
		userBook.Review = params.Review
		opts.Columns = append(opts.Columns, "review")
	}

	if err := h.userService.UpdateUserBook(ctx, userBook, opts); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, userBook))
}

func (h *handler) deleteBook(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	bookID, err := strconv.Atoi(c.Param("book_id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	if err := h.userService.DeleteUserBook(ctx, userID, bookID); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

// refreshedUser returns the caller's profile after a membership toggle.
func (h *handler) refreshedUser(c echo.Context, userID int) error {
	ctx := c.Request().Context()

	user, err := h.userService.RetrieveUser(ctx, RetrieveUserOptions{
		ID:            &userID,
		WithRelations: true,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, user))
}

func (h *handler) addGenre(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	genreID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Genre")
	}

	if err := h.userService.AddFavoriteGenre(ctx, userID, genreID); err != nil {
		return errors.WithStack(err)
	}

	return h.refreshedUser(c, userID)
}

func (h *handler) removeGenre(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	genreID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Genre")
	}

	if err := h.userService.RemoveFavoriteGenre(ctx, userID, genreID); err != nil {
		return errors.WithStack(err)
	}

	return h.refreshedUser(c, userID)
}

func (h *handler) addAuthor(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	authorID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Author")
	}

	if err := h.userService.FollowAuthor(ctx, userID, authorID); err != nil {
		return errors.WithStack(err)
	}

	return h.refreshedUser(c, userID)
}

func (h *handler) removeAuthor(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	authorID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Author")
	}

	if err := h.userService.UnfollowAuthor(ctx, userID, authorID); err != nil {
		return errors.WithStack(err)
	}

	return h.refreshedUser(c, userID)
}

func (h *handler) addPublisher(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	publisherID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Publisher")
	}

	if err := h.userService.FollowPublisher(ctx, userID, publisherID); err != nil {
		return errors.WithStack(err)
	}

	return h.refreshedUser(c, userID)
}

func (h *handler) removePublisher(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	publisherID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Publisher")
	}

	if err := h.userService.UnfollowPublisher(ctx, userID, publisherID); err != nil {
		return errors.WithStack(err)
	}

	return h.refreshedUser(c, userID)
}
