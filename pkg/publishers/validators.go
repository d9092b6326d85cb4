package publishers

import (
	"mime/multipart"

	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/pagination"
)

// ListPublishersQuery represents the query params for listing publishers.
type ListPublishersQuery struct {
	pagination.Query
	Name *string `query:"name" json:"name,omitempty" validate:"omitempty,max=250"`
}

// CreatePublisherPayload represents the create request body. It accepts plain
// JSON or a multipart form with a JSON "payload" field plus a "logo" file.
type CreatePublisherPayload struct {
	Name string `json:"name" validate:"required,min=1,max=250"`

	FormFiles map[string]*multipart.FileHeader `json:"-"`
}

// UpdatePublisherPayload represents the partial update request body.
type UpdatePublisherPayload struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=250"`
}

// UploadLogoPayload represents the logo upload form. The image arrives as the
// "logo" file field.
type UploadLogoPayload struct {
	FormFiles map[string]*multipart.FileHeader `json:"-"`
}
