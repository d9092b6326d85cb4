package users

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/errcodes"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/models"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/scores"
)

type RetrieveUserOptions struct {
	ID            *int
	WithRelations bool
}

type UpdateUserOptions struct {
	Columns []string
}

type CreateUserBookOptions struct {
	Situation string
	Rating    *float64
	Review    *string
	DateAdded string
}

type UpdateUserBookOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) RetrieveUser(ctx context.Context, opts RetrieveUserOptions) (*models.User, error) {
	user := &models.User{}

	q := svc.db.
		NewSelect().
		Model(user)

	if opts.WithRelations {
		q = q.
			Relation("ReviewedBooks").
			Relation("ReviewedBooks.Book").
			Relation("FollowedAuthors").
			Relation("FollowedPublishers").
			Relation("FavoriteGenres")
	}
	if opts.ID != nil {
		q = q.Where("u.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("User")
		}
		return nil, errors.WithStack(err)
	}

	return user, nil
}

// UpdateUser persists the given columns. When the email column changes, the
// uniqueness check runs in the same transaction as the update and excludes the
// user itself.
func (svc *Service) UpdateUser(ctx context.Context, user *models.User, opts UpdateUserOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	user.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, col := range opts.Columns {
			if col != "email" {
				continue
			}
			exists, err := tx.NewSelect().
				Model((*models.User)(nil)).
				Where("email = ? COLLATE NOCASE", user.Email).
				Where("id != ?", user.ID).
				Exists(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
			if exists {
				return errcodes.Conflict("Email already exists in the system.")
			}
		}

		_, err := tx.NewUpdate().
			Model(user).
			Column(columns...).
			WherePK().
			Exec(ctx)
		return errors.WithStack(err)
	})
}

// DeleteUser removes a user account. Rating records and follow edges cascade
// with the row, so the scores of every book the user had rated are recomputed
// before the transaction commits.
func (svc *Service) DeleteUser(ctx context.Context, userID int) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var bookIDs []int
		err := tx.NewSelect().
			Model((*models.UserBook)(nil)).
			Column("book_id").
			Where("user_id = ?", userID).
			Where("rating IS NOT NULL").
			Scan(ctx, &bookIDs)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.NewDelete().
			Model((*models.User)(nil)).
			Where("id = ?", userID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		for _, bookID := range bookIDs {
			if err := scores.Recalculate(ctx, tx, bookID); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListUserBooks returns the user's rating records with their book summaries.
func (svc *Service) ListUserBooks(ctx context.Context, userID int) ([]*models.UserBook, error) {
	userBooks := []*models.UserBook{}

	err := svc.db.
		NewSelect().
		Model(&userBooks).
		Relation("Book").
		Where("ub.user_id = ?", userID).
		Order("ub.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return userBooks, nil
}

func (svc *Service) RetrieveUserBook(ctx context.Context, userID, bookID int) (*models.UserBook, error) {
	userBook := &models.UserBook{}

	err := svc.db.
		NewSelect().
		Model(userBook).
		Relation("Book").
		Where("ub.user_id = ?", userID).
		Where("ub.book_id = ?", bookID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book record")
		}
		return nil, errors.WithStack(err)
	}

	return userBook, nil
}

// CreateUserBook adds a book to the user's list. A user has at most one record
// per book, so a second create for the same pair conflicts. The book's score
// is recomputed before the transaction commits.
func (svc *Service) CreateUserBook(ctx context.Context, userID, bookID int, opts CreateUserBookOptions) (*models.UserBook, error) {
	userBook := &models.UserBook{
		UserID:    userID,
		BookID:    bookID,
		Situation: opts.Situation,
		Rating:    opts.Rating,
		Review:    opts.Review,
		DateAdded: opts.DateAdded,
	}
	if userBook.Situation == "" {
		userBook.Situation = models.SituationPending
	}
	if userBook.DateAdded == "" {
		userBook.DateAdded = time.Now().Format("2006-01-02")
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		bookExists, err := tx.NewSelect().
			Model((*models.Book)(nil)).
			Where("id = ?", bookID).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if !bookExists {
			return errcodes.NotFound("Book")
		}

		exists, err := tx.NewSelect().
			Model((*models.UserBook)(nil)).
			Where("user_id = ?", userID).
			Where("book_id = ?", bookID).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if exists {
			return errcodes.Conflict("This book is already in your list.")
		}

		now := time.Now()
		userBook.CreatedAt = now
		userBook.UpdatedAt = now

		_, err = tx.NewInsert().Model(userBook).Returning("*").Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		return scores.Recalculate(ctx, tx, bookID)
	})
	if err != nil {
		return nil, err
	}

	return userBook, nil
}

// UpdateUserBook persists the given columns of a rating record and recomputes
// the book's score in the same transaction.
func (svc *Service) UpdateUserBook(ctx context.Context, userBook *models.UserBook, opts UpdateUserBookOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	userBook.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewUpdate().
			Model(userBook).
			Column(columns...).
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		return scores.Recalculate(ctx, tx, userBook.BookID)
	})
}

// DeleteUserBook removes a rating record and recomputes the book's score in
// the same transaction.
func (svc *Service) DeleteUserBook(ctx context.Context, userID, bookID int) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*models.UserBook)(nil)).
			Where("user_id = ?", userID).
			Where("book_id = ?", bookID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return errors.WithStack(err)
		}
		if n == 0 {
			return errcodes.NotFound("Book record")
		}

		return scores.Recalculate(ctx, tx, bookID)
	})
}

// AddFavoriteGenre links a genre to the user's favorites. Adding an already
// favorite genre is a no-op.
func (svc *Service) AddFavoriteGenre(ctx context.Context, userID, genreID int) error {
	exists, err := svc.db.NewSelect().
		Model((*models.Genre)(nil)).
		Where("id = ?", genreID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if !exists {
		return errcodes.NotFound("Genre")
	}

	_, err = svc.db.NewInsert().
		Model(&models.UserFavoriteGenre{UserID: userID, GenreID: genreID}).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	return errors.WithStack(err)
}

// RemoveFavoriteGenre unlinks a genre from the user's favorites. Removing an
// absent link is a no-op.
func (svc *Service) RemoveFavoriteGenre(ctx context.Context, userID, genreID int) error {
	_, err := svc.db.NewDelete().
		Model((*models.UserFavoriteGenre)(nil)).
		Where("user_id = ?", userID).
		Where("genre_id = ?", genreID).
		Exec(ctx)
	return errors.WithStack(err)
}

// FollowAuthor links an author to the user's follows. Following an already
// followed author is a no-op.
func (svc *Service) FollowAuthor(ctx context.Context, userID, authorID int) error {
	exists, err := svc.db.NewSelect().
		Model((*models.Author)(nil)).
		Where("id = ?", authorID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if !exists {
		return errcodes.NotFound("Author")
	}

	_, err = svc.db.NewInsert().
		Model(&models.UserFollowedAuthor{UserID: userID, AuthorID: authorID}).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	return errors.WithStack(err)
}

// UnfollowAuthor unlinks an author from the user's follows. Unfollowing an
// absent link is a no-op.
func (svc *Service) UnfollowAuthor(ctx context.Context, userID, authorID int) error {
	_, err := svc.db.NewDelete().
		Model((*models.UserFollowedAuthor)(nil)).
		Where("user_id = ?", userID).
		Where("author_id = ?", authorID).
		Exec(ctx)
	return errors.WithStack(err)
}

// FollowPublisher links a publisher to the user's follows. Following an
// already followed publisher is a no-op.
func (svc *Service) FollowPublisher(ctx context.Context, userID, publisherID int) error {
	exists, err := svc.db.NewSelect().
		Model((*models.Publisher)(nil)).
		Where("id = ?", publisherID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if !exists {
		return errcodes.NotFound("Publisher")
	}

	_, err = svc.db.NewInsert().
		Model(&models.UserFollowedPublisher{UserID: userID, PublisherID: publisherID}).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	return errors.WithStack(err)
}

// UnfollowPublisher unlinks a publisher from the user's follows. Unfollowing
// an absent link is a no-op.
func (svc *Service) UnfollowPublisher(ctx context.Context, userID, publisherID int) error {
	_, err := svc.db.NewDelete().
		Model((*models.UserFollowedPublisher)(nil)).
		Where("user_id = ?", userID).
		Where("publisher_id = ?", publisherID).
		Exec(ctx)
	return errors.WithStack(err)
}
