package authors

import (
	"mime/multipart"

	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/pagination"
)

// ListAuthorsQuery represents the query params for listing authors.
type ListAuthorsQuery struct {
	pagination.Query
	Name *string `query:"name" json:"name,omitempty" validate:"omitempty,max=250"`
}

// CreateAuthorPayload represents the create request body. It accepts plain
// JSON or a multipart form with a JSON "payload" field plus an "avatar" file.
type CreateAuthorPayload struct {
	Name      string `json:"name" validate:"required,min=1,max=250"`
	BirthDate string `json:"birth_date" validate:"omitempty,date"`

	FormFiles map[string]*multipart.FileHeader `json:"-"`
}

// UpdateAuthorPayload represents the partial update request body. Absent
// fields are left untouched.
type UpdateAuthorPayload struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=250"`
	BirthDate *string `json:"birth_date" validate:"omitempty,date"`
}

// UploadAvatarPayload represents the avatar upload form. The image arrives as
// the "avatar" file field.
type UploadAvatarPayload struct {
	FormFiles map[string]*multipart.FileHeader `json:"-"`
}
