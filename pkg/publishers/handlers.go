package publishers

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
	publisherService *Service
	assetStore       *assets.Store
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListPublishersQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	publishers, total, err := h.publisherService.ListPublishersWithTotal(ctx, ListPublishersOptions{
		Query: params.Query,
		Name:  params.Name,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, pagination.NewPage(publishers, total, params.Query)))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Publisher")
	}

	publisher, err := h.publisherService.RetrievePublisher(ctx, RetrievePublisherOptions{
		ID:        &id,
		WithBooks: true,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, publisher))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreatePublisherPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	publisher := &models.Publisher{
		Name: params.Name,
	}

	if fh, ok := params.FormFiles["logo"]; ok {
		path, err := h.assetStore.Save(assets.KindLogo, fh)
		if err != nil {
			return errors.WithStack(err)
		}
		publisher.LogoPath = &path
	}

	if err := h.publisherService.CreatePublisher(ctx, publisher); err != nil {
		// Don't orphan the freshly stored logo.
		if publisher.LogoPath != nil {
			_ = h.assetStore.Remove(*publisher.LogoPath)
		}
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, publisher))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Publisher")
	}

	params := UpdatePublisherPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	publisher, err := h.publisherService.RetrievePublisher(ctx, RetrievePublisherOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	opts := UpdatePublisherOptions{Columns: []string{}}

	if params.Name != nil && *params.Name != publisher.Name {
		publisher.Name = *params.Name
		opts.Columns = append(opts.Columns, "name")
	}

	if err := h.publisherService.UpdatePublisher(ctx, publisher, opts); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, publisher))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Publisher")
	}

	publisher, err := h.publisherService.RetrievePublisher(ctx, RetrievePublisherOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.publisherService.DeletePublisher(ctx, publisher.ID); err != nil {
		return errors.WithStack(err)
	}

	// Only clean up the file once the row is gone.
	if err := h.assetStore.RemoveRef(publisher.LogoPath); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

func (h *handler) uploadLogo(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Publisher")
	}

	params := UploadLogoPayload{}
	c.Set("disallow_empty_body", false)
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	fh, ok := params.FormFiles["logo"]
	if !ok {
		return errcodes.ValidationError("A logo file is required")
	}

	publisher, err := h.publisherService.RetrievePublisher(ctx, RetrievePublisherOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	path, err := h.assetStore.Save(assets.KindLogo, fh)
	if err != nil {
		return errors.WithStack(err)
	}

	oldPath := publisher.LogoPath
	publisher.LogoPath = &path
	err = h.publisherService.UpdatePublisher(ctx, publisher, UpdatePublisherOptions{Columns: []string{"logo_path"}})
	if err != nil {
		_ = h.assetStore.Remove(path)
		return errors.WithStack(err)
	}

	// Remove the replaced file only after the new reference is persisted.
	if err := h.assetStore.RemoveRef(oldPath); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, publisher))
}

func (h *handler) deleteLogo(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Publisher")
	}

	publisher, err := h.publisherService.RetrievePublisher(ctx, RetrievePublisherOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	oldPath := publisher.LogoPath
	publisher.LogoPath = nil
	err = h.publisherService.UpdatePublisher(ctx, publisher, UpdatePublisherOptions{Columns: []string{"logo_path"}})
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.assetStore.RemoveRef(oldPath); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}
