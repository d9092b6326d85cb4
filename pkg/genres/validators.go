package genres

import (
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/pagination"
)

// ListGenresQuery represents the query params for listing genres.
type ListGenresQuery struct {
	pagination.Query
	Name *string `query:"name" json:"name,omitempty" validate:"omitempty,max=250"`
}

// CreateGenrePayload represents the create request body.
type CreateGenrePayload struct {
	Name string `json:"name" validate:"required,min=1,max=250"`
}

// UpdateGenrePayload represents the partial update request body.
type UpdateGenrePayload struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=250"`
}
