package books

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/assets"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/errcodes"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/pagination"
)

type handler struct {
	bookService *Service
	assetStore  *assets.Store
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	books, total, err := h.bookService.ListBooksWithTotal(ctx, ListBooksOptions{
		Query:           params.Query,
		Ordering:        params.Ordering,
		Title:           params.Title,
		PublicationDate: params.PublicationDate,
		AgeRating:       params.AgeRating,
		Score:           params.Score,
		Publisher:       params.Publisher,
		Author:          params.Author,
		Genre:           params.Genre,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, pagination.NewPage(books, total, params.Query)))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID:            &id,
		WithRelations: true,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	var coverPath *string
	if fh, ok := params.FormFiles["cover"]; ok {
		path, err := h.assetStore.Save(assets.KindCover, fh)
		if err != nil {
			return errors.WithStack(err)
		}
		coverPath = &path
	}

	book, err := h.bookService.CreateBook(ctx, CreateBookOptions{
		Title:           params.Title,
		PublicationDate: params.PublicationDate,
		Synopsis:        params.Synopsis,
		AgeRating:       params.AgeRating,
		PublisherID:     params.PublisherID,
		AuthorIDs:       params.AuthorIDs,
		GenreIDs:        params.GenreIDs,
		CoverPath:       coverPath,
	})
	if err != nil {
		// Don't orphan the freshly stored cover.
		if coverPath != nil {
			_ = h.assetStore.Remove(*coverPath)
		}
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, book))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	params := UpdateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	// Keep track of what's been changed
	opts := UpdateBookOptions{Columns: []string{}}

	if params.Title != nil && *params.Title != book.Title {
		book.Title = *params.Title
		opts.Columns = append(opts.Columns, "title")
	}
	if params.PublicationDate != nil && *params.PublicationDate != book.PublicationDate {
		book.PublicationDate = *params.PublicationDate
		opts.Columns = append(opts.Columns, "publication_date")
	}
	if params.Synopsis != nil && *params.Synopsis != book.Synopsis {
		book.Synopsis = *params.Synopsis
		opts.Columns = append(opts.Columns, "synopsis")
	}
	if params.AgeRating != nil && *params.AgeRating != book.AgeRating {
		book.AgeRating = *params.AgeRating
		opts.Columns = append(opts.Columns, "age_rating")
	}
	if params.PublisherID != nil {
		// Zero clears the publisher.
		if *params.PublisherID == 0 {
			book.PublisherID = nil
		} else {
			book.PublisherID = params.PublisherID
		}
		opts.Columns = append(opts.Columns, "publisher_id")
	}
	opts.AuthorIDs = params.AuthorIDs
	opts.GenreIDs = params.GenreIDs

	if err := h.bookService.UpdateBook(ctx, book, opts); err != nil {
		return errors.WithStack(err)
	}

	book, err = h.bookService.RetrieveBook(ctx, RetrieveBookOptions{ID: &id, WithRelations: true})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.bookService.DeleteBook(ctx, book.ID); err != nil {
		return errors.WithStack(err)
	}

	// Only clean up the file once the row is gone.
	if err := h.assetStore.RemoveRef(book.CoverPath); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

func (h *handler) uploadCover(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	params := UploadCoverPayload{}
	c.Set("disallow_empty_body", false)
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	fh, ok := params.FormFiles["cover"]
	if !ok {
		return errcodes.ValidationError("A cover file is required")
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	path, err := h.assetStore.Save(assets.KindCover, fh)
	if err != nil {
		return errors.WithStack(err)
	}

	oldPath := book.CoverPath
	book.CoverPath = &path
	err = h.bookService.UpdateBook(ctx, book, UpdateBookOptions{Columns: []string{"cover_path"}})
	if err != nil {
		_ = h.assetStore.Remove(path)
		return errors.WithStack(err)
	}

	// Remove the replaced file only after the new reference is persisted.
	if err := h.assetStore.RemoveRef(oldPath); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) deleteCover(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	oldPath := book.CoverPath
	book.CoverPath = nil
	err = h.bookService.UpdateBook(ctx, book, UpdateBookOptions{Columns: []string{"cover_path"}})
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.assetStore.RemoveRef(oldPath); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}
