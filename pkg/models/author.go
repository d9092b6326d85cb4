package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Author struct {
	bun.BaseModel `bun:"table:authors,alias:a"`

	ID         int       `bun:",pk,nullzero" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Name       string    `bun:",nullzero" json:"name"`
	BirthDate  string    `bun:",nullzero" json:"birth_date"`
	AvatarPath *string   `json:"avatar"`

	// Relations
	Books     []*Book `bun:"m2m:book_authors,join:Author=Book" json:"books,omitempty"`
	Followers []*User `bun:"m2m:user_followed_authors,join:Author=User" json:"followers,omitempty"`
}

type BookAuthor struct {
	bun.BaseModel `bun:"table:book_authors,alias:ba"`

	ID       int     `bun:",pk,nullzero" json:"id"`
	BookID   int     `bun:",nullzero" json:"book_id"`
	Book     *Book   `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
	AuthorID int     `bun:",nullzero" json:"author_id"`
	Author   *Author `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
}
