package auth

import (
	"mime/multipart"

	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/models"
)

// RegisterPayload represents the registration request body. It accepts plain
// JSON or a multipart form with a JSON "payload" field plus an "avatar" file.
type RegisterPayload struct {
	Email     string `json:"email" validate:"required,email"`
	Username  string `json:"username" validate:"required,min=3,max=250"`
	Password  string `json:"password" validate:"required,min=8"`
	BirthDate string `json:"birth_date" validate:"required,date,ne="`
	Gender    string `json:"gender" validate:"omitempty,oneof=not_specified male_cis female_cis male_trans female_trans non_binary other"`
	Summary   string `json:"summary" validate:"omitempty,max=2000"`

	FormFiles map[string]*multipart.FileHeader `json:"-"`
}

// LoginPayload represents the login request body.
type LoginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshPayload represents the refresh request body. The token may instead
// arrive on the refresh cookie.
type RefreshPayload struct {
	Refresh string `json:"refresh" validate:"omitempty"`
}

// VerifyPayload represents the token verification request body.
type VerifyPayload struct {
	Token string `json:"token" validate:"required"`
}

// ChangePasswordPayload represents the password change request body.
type ChangePasswordPayload struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// TokenPairResponse is returned by login.
type TokenPairResponse struct {
	Access  string       `json:"access"`
	Refresh string       `json:"refresh"`
	User    *models.User `json:"user"`
}

// AccessTokenResponse is returned by refresh.
type AccessTokenResponse struct {
	Access string `json:"access"`
}
