package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Genre struct {
	bun.BaseModel `bun:"table:genres,alias:g"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `bun:",nullzero" json:"name"`

	// Relations
	Books []*Book `bun:"m2m:book_genres,join:Genre=Book" json:"books,omitempty"`
	Users []*User `bun:"m2m:user_favorite_genres,join:Genre=User" json:"users,omitempty"`
}

type BookGenre struct {
	bun.BaseModel `bun:"table:book_genres,alias:bg"`

	ID      int    `bun:",pk,nullzero" json:"id"`
	BookID  int    `bun:",nullzero" json:"book_id"`
	Book    *Book  `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
	GenreID int    `bun:",nullzero" json:"genre_id"`
	Genre   *Genre `bun:"rel:belongs-to,join:genre_id=id" json:"genre,omitempty"`
}
