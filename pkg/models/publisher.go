package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Publisher struct {
	bun.BaseModel `bun:"table:publishers,alias:pub"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `bun:",nullzero" json:"name"`
	LogoPath  *string   `json:"logo"`

	// Relations
	Books     []*Book `bun:"rel:has-many,join:id=publisher_id" json:"books,omitempty"`
	Followers []*User `bun:"m2m:user_followed_publishers,join:Publisher=User" json:"followers,omitempty"`
}
