package users

import (
	"mime/multipart"
)

// UpdateMePayload represents the partial profile update request body.
type UpdateMePayload struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	Username  *string `json:"username" validate:"omitempty,min=3,max=250"`
	BirthDate *string `json:"birth_date" validate:"omitempty,date,ne="`
	Gender    *string `json:"gender" validate:"omitempty,oneof=not_specified male_cis female_cis male_trans female_trans non_binary other"`
	Summary   *string `json:"summary" validate:"omitempty,max=2000"`
}

// CreateUserBookPayload represents the body for adding a book to the user's
// list.
type CreateUserBookPayload struct {
	Situation string   `json:"situation" default:"pending" validate:"oneof=reading stopped completed pending abandoned"`
	Rating    *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
	Review    *string  `json:"review" validate:"omitempty,max=5000"`
	DateAdded string   `json:"date_added" validate:"omitempty,date"`
}

// UpdateUserBookPayload represents the partial update body for a rating
// record. Absent fields are left untouched; delete the record to drop a
// rating entirely.
type UpdateUserBookPayload struct {
	Situation *string  `json:"situation" validate:"omitempty,oneof=reading stopped completed pending abandoned"`
	Rating    *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
	Review    *string  `json:"review" validate:"omitempty,max=5000"`
}

// UploadAvatarPayload represents the avatar upload form. The image arrives as
// the "avatar" file field.
type UploadAvatarPayload struct {
	FormFiles map[string]*multipart.FileHeader `json:"-"`
}
