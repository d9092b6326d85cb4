package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Gender choices mirror what the clients present at registration.
const (
	GenderNotSpecified = "not_specified"
	GenderMaleCis      = "male_cis"
	GenderFemaleCis    = "female_cis"
	GenderMaleTrans    = "male_trans"
	GenderFemaleTrans  = "female_trans"
	GenderNonBinary    = "non_binary"
	GenderOther        = "other"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int       `bun:",pk,nullzero" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Email        string    `bun:",nullzero" json:"email"`
	Username     string    `bun:",nullzero" json:"username"`
	PasswordHash string    `json:"-"` // Never expose password hash
	BirthDate    string    `bun:",nullzero" json:"birth_date"`
	Gender       string    `bun:",nullzero" json:"gender"`
	Summary      string    `json:"summary"`
	AvatarPath   *string   `json:"avatar"`
	IsAdmin      bool      `json:"is_admin"`

	// Relations
	ReviewedBooks      []*UserBook  `bun:"rel:has-many,join:id=user_id" json:"reviewed_books,omitempty"`
	FollowedAuthors    []*Author    `bun:"m2m:user_followed_authors,join:User=Author" json:"followed_authors,omitempty"`
	FollowedPublishers []*Publisher `bun:"m2m:user_followed_publishers,join:User=Publisher" json:"followed_publishers,omitempty"`
	FavoriteGenres     []*Genre     `bun:"m2m:user_favorite_genres,join:User=Genre" json:"favorite_genres,omitempty"`
}

type UserFollowedAuthor struct {
	bun.BaseModel `bun:"table:user_followed_authors,alias:ufa"`

	ID       int     `bun:",pk,nullzero" json:"id"`
	UserID   int     `bun:",nullzero" json:"user_id"`
	User     *User   `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	AuthorID int     `bun:",nullzero" json:"author_id"`
	Author   *Author `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
}

type UserFollowedPublisher struct {
	bun.BaseModel `bun:"table:user_followed_publishers,alias:ufp"`

	ID          int        `bun:",pk,nullzero" json:"id"`
	UserID      int        `bun:",nullzero" json:"user_id"`
	User        *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	PublisherID int        `bun:",nullzero" json:"publisher_id"`
	Publisher   *Publisher `bun:"rel:belongs-to,join:publisher_id=id" json:"publisher,omitempty"`
}

type UserFavoriteGenre struct {
	bun.BaseModel `bun:"table:user_favorite_genres,alias:ufg"`

	ID      int    `bun:",pk,nullzero" json:"id"`
	UserID  int    `bun:",nullzero" json:"user_id"`
	User    *User  `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	GenreID int    `bun:",nullzero" json:"genre_id"`
	Genre   *Genre `bun:"rel:belongs-to,join:genre_id=id" json:"genre,omitempty"`
}
