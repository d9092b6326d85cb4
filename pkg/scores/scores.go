// Package scores keeps books.score consistent with the current rating set.
package scores

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/models"
)

// Recalculate re-derives a book's score as the mean of all non-null ratings on
// its user_books rows, or 0 when none remain. It must run at the end of every
// user_books create/update/delete, on the same transaction as that mutation,
// so the read always observes post-mutation state. The write touches only the
// score column. If the book was deleted concurrently the update matches zero
// rows, which is not an error.
func Recalculate(ctx context.Context, db bun.IDB, bookID int) error {
	_, err := db.NewUpdate().
		Model((*models.Book)(nil)).
		Set("score = (SELECT COALESCE(AVG(rating), 0) FROM user_books WHERE book_id = ? AND rating IS NOT NULL)", bookID).
		Where("id = ?", bookID).
		Exec(ctx)
	return errors.WithStack(err)
}
