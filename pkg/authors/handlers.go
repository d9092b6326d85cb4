package authors

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/assets"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/errcodes"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/models"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/pagination"
)

type handler struct {
	authorService *Service
	assetStore    *assets.Store
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListAuthorsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	authors, total, err := h.authorService.ListAuthorsWithTotal(ctx, ListAuthorsOptions{
		Query: params.Query,
		Name:  params.Name,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, pagination.NewPage(authors, total, params.Query)))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Author")
	}

	author, err := h.authorService.RetrieveAuthor(ctx, RetrieveAuthorOptions{
		ID:        &id,
		WithBooks: true,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, author))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateAuthorPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	author := &models.Author{
		Name:      params.Name,
		BirthDate: params.BirthDate,
	}

	if fh, ok := params.FormFiles["avatar"]; ok {
		path, err := h.assetStore.Save(assets.KindAvatar, fh)
		if err != nil {
			return errors.WithStack(err)
		}
		author.AvatarPath = &path
	}

	if err := h.authorService.CreateAuthor(ctx, author); err != nil {
		// Don't orphan the freshly stored avatar.
		if author.AvatarPath != nil {
			_ = h.assetStore.Remove(*author.AvatarPath)
		}
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, author))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Author")
	}

	params := UpdateAuthorPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	author, err := h.authorService.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	// Keep track of what's been changed
	opts := UpdateAuthorOptions{Columns: []string{}}

	if params.Name != nil && *params.Name != author.Name {
		author.Name = *params.Name
		opts.Columns = append(opts.Columns, "name")
	}
	if params.BirthDate != nil && *params.BirthDate != author.BirthDate {
		author.BirthDate = *params.BirthDate
		opts.Columns = append(opts.Columns, "birth_date")
	}

	if err := h.authorService.UpdateAuthor(ctx, author, opts); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, author))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Author")
	}

	author, err := h.authorService.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.authorService.DeleteAuthor(ctx, author.ID); err != nil {
		return errors.WithStack(err)
	}

	// Only clean up the file once the row is gone.
	if err := h.assetStore.RemoveRef(author.AvatarPath); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

func (h *handler) uploadAvatar(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Author")
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

	author, err := h.authorService.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	path, err := h.assetStore.Save(assets.KindAvatar, fh)
	if err != nil {
		return errors.WithStack(err)
	}

	oldPath := author.AvatarPath
	author.AvatarPath = &path
	err = h.authorService.UpdateAuthor(ctx, author, UpdateAuthorOptions{Columns: []string{"avatar_path"}})
	if err != nil {
		_ = h.assetStore.Remove(path)
		return errors.WithStack(err)
	}

	// Remove the replaced file only after the new reference is persisted.
	if err := h.assetStore.RemoveRef(oldPath); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, author))
}

func (h *handler) deleteAvatar(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Author")
	}

	author, err := h.authorService.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	oldPath := author.AvatarPath
	author.AvatarPath = nil
	err = h.authorService.UpdateAuthor(ctx, author, UpdateAuthorOptions{Columns: []string{"avatar_path"}})
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.assetStore.RemoveRef(oldPath); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}
