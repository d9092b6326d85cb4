package books

import (
	"mime/multipart"

	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/pagination"
)

// ListBooksQuery represents the query params for listing books.
type ListBooksQuery struct {
	pagination.Query
	Ordering        string   `query:"ordering" json:"ordering,omitempty" default:"id" validate:"oneof=id -id title -title score -score publication_date -publication_date"`
	Title           *string  `query:"title" json:"title,omitempty" validate:"omitempty,max=250"`
	PublicationDate *string  `query:"publication_date" json:"publication_date,omitempty" validate:"omitempty,date"`
	AgeRating       *string  `query:"age_rating" json:"age_rating,omitempty" validate:"omitempty,oneof=everyone teen mature adult"`
	Score           *float64 `query:"score" json:"score,omitempty" validate:"omitempty,gte=0,lte=5"`
	Publisher       *string  `query:"publisher" json:"publisher,omitempty" validate:"omitempty,max=250"`
	Author          *string  `query:"author" json:"author,omitempty" validate:"omitempty,max=250"`
	Genre           *string  `query:"genre" json:"genre,omitempty" validate:"omitempty,max=250"`
}

// CreateBookPayload represents the create request body. It accepts plain JSON
// or a multipart form with a JSON "payload" field plus a "cover" file.
type CreateBookPayload struct {
	Title           string `json:"title" validate:"required,min=1,max=250"`
	PublicationDate string `json:"publication_date" validate:"omitempty,date"`
	Synopsis        string `json:"synopsis" validate:"omitempty,max=5000"`
	AgeRating       string `json:"age_rating" default:"everyone" validate:"oneof=everyone teen mature adult"`
	PublisherID     *int   `json:"publisher_id" validate:"omitempty,min=1"`
	AuthorIDs       []int  `json:"author_ids" validate:"omitempty,dive,min=1"`
	GenreIDs        []int  `json:"genre_ids" validate:"omitempty,dive,min=1"`

	FormFiles map[string]*multipart.FileHeader `json:"-"`
}

// UpdateBookPayload represents the partial update request body. Absent fields
// are left untouched; author_ids and genre_ids, when present, replace the
// whole set.
type UpdateBookPayload struct {
	Title           *string `json:"title" validate:"omitempty,min=1,max=250"`
	PublicationDate *string `json:"publication_date" validate:"omitempty,date"`
	Synopsis        *string `json:"synopsis" validate:"omitempty,max=5000"`
	AgeRating       *string `json:"age_rating" validate:"omitempty,oneof=everyone teen mature adult"`
	PublisherID     *int    `json:"publisher_id" validate:"omitempty,min=0"`
	AuthorIDs       *[]int  `json:"author_ids" validate:"omitempty,dive,min=1"`
	GenreIDs        *[]int  `json:"genre_ids" validate:"omitempty,dive,min=1"`
}

// UploadCoverPayload represents the cover upload form. The image arrives as
// the "cover" file field.
type UploadCoverPayload struct {
	FormFiles map[string]*multipart.FileHeader `json:"-"`
}
