package genres

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/errcodes"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/models"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/pagination"
)

type handler struct {
	genreService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListGenresQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	genres, total, err := h.genreService.ListGenresWithTotal(ctx, ListGenresOptions{
		Query: params.Query,
		Name:  params.Name,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, pagination.NewPage(genres, total, params.Query)))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Genre")
	}

	genre, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{
		ID:        &id,
		WithBooks: true,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, genre))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateGenrePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	genre := &models.Genre{
		Name: params.Name,
	}

	if err := h.genreService.CreateGenre(ctx, genre); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, genre))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Genre")
	}

	params := UpdateGenrePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	genre, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	opts := UpdateGenreOptions{Columns: []string{}}

	if params.Name != nil && *params.Name != genre.Name {
		genre.Name = *params.Name
		opts.Columns = append(opts.Columns, "name")
	}

	if err := h.genreService.UpdateGenre(ctx, genre, opts); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, genre))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Genre")
	}

	genre, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.genreService.DeleteGenre(ctx, genre.ID); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}
