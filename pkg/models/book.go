package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Age rating classification for a book's audience.
const (
	AgeRatingEveryone = "everyone"
	AgeRatingTeen     = "teen"
	AgeRatingMature   = "mature"
	AgeRatingAdult    = "adult"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID              int       `bun:",pk,nullzero" json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Title           string    `bun:",nullzero" json:"title"`
	PublicationDate string    `bun:",nullzero" json:"publication_date"`
	Synopsis        string    `json:"synopsis"`
	// Score is derived from ratings and never written by clients.
	Score       float64 `json:"score"`
	AgeRating   string  `bun:",nullzero" json:"age_rating"`
	CoverPath   *string `json:"cover"`
	PublisherID *int    `json:"publisher_id"`

	// Relations
	Publisher *Publisher  `bun:"rel:belongs-to,join:publisher_id=id" json:"publisher,omitempty"`
	Authors   []*Author   `bun:"m2m:book_authors,join:Book=Author" json:"authors,omitempty"`
	Genres    []*Genre    `bun:"m2m:book_genres,join:Book=Genre" json:"genres,omitempty"`
	Reviews   []*UserBook `bun:"rel:has-many,join:id=book_id" json:"reviews,omitempty"`
}
