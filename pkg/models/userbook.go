package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Reading situation of a user's book record.
const (
	SituationReading   = "reading"
	SituationStopped   = "stopped"
	SituationCompleted = "completed"
	SituationPending   = "pending"
	SituationAbandoned = "abandoned"
)

// UserBook is the rating/review join record. A user has at most one per book.
type UserBook struct {
	bun.BaseModel `bun:"table:user_books,alias:ub"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    int       `bun:",nullzero" json:"user_id"`
	BookID    int       `bun:",nullzero" json:"book_id"`
	Situation string    `bun:",nullzero" json:"situation"`
	Rating    *float64  `json:"rating"`
	Review    *string   `json:"review"`
	DateAdded string    `bun:",nullzero" json:"date_added"`

	// Relations
	User *User `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Book *Book `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
}
