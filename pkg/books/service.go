package books

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/errcodes"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/models"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/pagination"
)

// orderings maps the accepted ordering values to their SQL expressions.
var orderings = map[string]string{
	"id":                "b.id ASC",
	"-id":               "b.id DESC",
	"title":             "b.title ASC",
	"-title":            "b.title DESC",
	"score":             "b.score ASC",
	"-score":            "b.score DESC",
	"publication_date":  "b.publication_date ASC",
	"-publication_date": "b.publication_date DESC",
}

type ListBooksOptions struct {
	pagination.Query
	Ordering        string
	Title           *string
	PublicationDate *string
	AgeRating       *string
	Score           *float64
	Publisher       *string
	Author          *string
	Genre           *string
}

type RetrieveBookOptions struct {
	ID            *int
	WithRelations bool
}

type CreateBookOptions struct {
	Title           string
	PublicationDate string
	Synopsis        string
	AgeRating       string
	PublisherID     *int
	AuthorIDs       []int
	GenreIDs        []int
	CoverPath       *string
}

type UpdateBookOptions struct {
	Columns   []string
	AuthorIDs *[]int
	GenreIDs  *[]int
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreateBook inserts a book along with its author and genre links. Referenced
// entities must exist; a dangling ID fails the whole transaction.
func (svc *Service) CreateBook(ctx context.Context, opts CreateBookOptions) (*models.Book, error) {
	book := &models.Book{
		Title:           opts.Title,
		PublicationDate: opts.PublicationDate,
		Synopsis:        opts.Synopsis,
		AgeRating:       opts.AgeRating,
		PublisherID:     opts.PublisherID,
		CoverPath:       opts.CoverPath,
	}
	if book.AgeRating == "" {
		book.AgeRating = models.AgeRatingEveryone
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := svc.checkReferences(ctx, tx, opts.PublisherID, opts.AuthorIDs, opts.GenreIDs); err != nil {
			return err
		}

		now := time.Now()
		book.CreatedAt = now
		book.UpdatedAt = now

		_, err := tx.NewInsert().Model(book).Returning("*").Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		if err := syncAuthors(ctx, tx, book.ID, opts.AuthorIDs); err != nil {
			return err
		}
		return syncGenres(ctx, tx, book.ID, opts.GenreIDs)
	})
	if err != nil {
		return nil, err
	}

	return svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID, WithRelations: true})
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := svc.db.
		NewSelect().
		Model(book)

	if opts.WithRelations {
		q = q.
			Relation("Publisher").
			Relation("Authors").
			Relation("Genres").
			Relation("Reviews").
			Relation("Reviews.User")
	}
	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

func (svc *Service) ListBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	books := []*models.Book{}

	order, ok := orderings[opts.Ordering]
	if !ok {
		order = orderings["id"]
	}

	q := svc.db.
		NewSelect().
		Model(&books).
		Relation("Publisher").
		Relation("Authors").
		Relation("Genres").
		OrderExpr(order).
		OrderExpr("b.id ASC").
		Limit(opts.Limit()).
		Offset(opts.Offset())

	if opts.Title != nil && *opts.Title != "" {
		q = q.Where("b.title LIKE ? COLLATE NOCASE", "%"+*opts.Title+"%")
	}
	if opts.PublicationDate != nil && *opts.PublicationDate != "" {
		q = q.Where("b.publication_date = ?", *opts.PublicationDate)
	}
	if opts.AgeRating != nil && *opts.AgeRating != "" {
		q = q.Where("b.age_rating = ?", *opts.AgeRating)
	}
	if opts.Score != nil {
		q = q.Where("b.score >= ?", *opts.Score)
	}
	if opts.Publisher != nil && *opts.Publisher != "" {
		q = q.Where("EXISTS (SELECT 1 FROM publishers p WHERE p.id = b.publisher_id AND p.name LIKE ? COLLATE NOCASE)", "%"+*opts.Publisher+"%")
	}
	if opts.Author != nil && *opts.Author != "" {
		q = q.Where("EXISTS (SELECT 1 FROM book_authors ba JOIN authors a ON a.id = ba.author_id WHERE ba.book_id = b.id AND a.name LIKE ? COLLATE NOCASE)", "%"+*opts.Author+"%")
	}
	if opts.Genre != nil && *opts.Genre != "" {
		q = q.Where("EXISTS (SELECT 1 FROM book_genres bg JOIN genres g ON g.id = bg.genre_id WHERE bg.book_id = b.id AND g.name LIKE ? COLLATE NOCASE)", "%"+*opts.Genre+"%")
	}

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return books, total, nil
}

// UpdateBook persists the given columns and reconciles the author/genre link
// sets when provided. Set reconciliation is a diff: links that survive the
// update are never deleted and reinserted.
func (svc *Service) UpdateBook(ctx context.Context, book *models.Book, opts UpdateBookOptions) error {
	if len(opts.Columns) == 0 && opts.AuthorIDs == nil && opts.GenreIDs == nil {
		return nil
	}

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var authorIDs, genreIDs []int
		if opts.AuthorIDs != nil {
			authorIDs = *opts.AuthorIDs
		}
		if opts.GenreIDs != nil {
			genreIDs = *opts.GenreIDs
		}
		var publisherID *int
		for _, col := range opts.Columns {
			if col == "publisher_id" {
				publisherID = book.PublisherID
			}
		}
		if err := svc.checkReferences(ctx, tx, publisherID, authorIDs, genreIDs); err != nil {
			return err
		}

		if len(opts.Columns) > 0 {
			book.UpdatedAt = time.Now()
			columns := append(opts.Columns, "updated_at")
			_, err := tx.NewUpdate().
				Model(book).
				Column(columns...).
				WherePK().
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		if opts.AuthorIDs != nil {
			if err := syncAuthors(ctx, tx, book.ID, authorIDs); err != nil {
				return err
			}
		}
		if opts.GenreIDs != nil {
			if err := syncGenres(ctx, tx, book.ID, genreIDs); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteBook removes a book. Its rating records and link rows cascade with it,
// so no score recomputation is needed.
func (svc *Service) DeleteBook(ctx context.Context, bookID int) error {
	_, err := svc.db.
		NewDelete().
		Model((*models.Book)(nil)).
		Where("id = ?", bookID).
		Exec(ctx)
	return errors.WithStack(err)
}

// checkReferences verifies that the publisher, author and genre IDs about to
// be linked all exist.
func (svc *Service) checkReferences(ctx context.Context, tx bun.Tx, publisherID *int, authorIDs, genreIDs []int) error {
	if publisherID != nil {
		exists, err := tx.NewSelect().
			Model((*models.Publisher)(nil)).
			Where("id = ?", *publisherID).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if !exists {
			return errcodes.NotFound("Publisher")
		}
	}

	if ids := dedupe(authorIDs); len(ids) > 0 {
		count, err := tx.NewSelect().
			Model((*models.Author)(nil)).
			Where("id IN (?)", bun.In(ids)).
			Count(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if count != len(ids) {
			return errcodes.NotFound("Author")
		}
	}

	if ids := dedupe(genreIDs); len(ids) > 0 {
		count, err := tx.NewSelect().
			Model((*models.Genre)(nil)).
			Where("id IN (?)", bun.In(ids)).
			Count(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if count != len(ids) {
			return errcodes.NotFound("Genre")
		}
	}

	return nil
}

func syncAuthors(ctx context.Context, tx bun.Tx, bookID int, want []int) error {
	var current []int
	err := tx.NewSelect().
		Model((*models.BookAuthor)(nil)).
		Column("author_id").
		Where("book_id = ?", bookID).
		Scan(ctx, &current)
	if err != nil {
		return errors.WithStack(err)
	}

	toAdd, toRemove := diffIDs(current, want)

	if len(toRemove) > 0 {
		_, err = tx.NewDelete().
			Model((*models.BookAuthor)(nil)).
			Where("book_id = ?", bookID).
			Where("author_id IN (?)", bun.In(toRemove)).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
	}
	if len(toAdd) > 0 {
		links := make([]*models.BookAuthor, 0, len(toAdd))
		for _, id := range toAdd {
			links = append(links, &models.BookAuthor{BookID: bookID, AuthorID: id})
		}
		_, err = tx.NewInsert().Model(&links).Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

func syncGenres(ctx context.Context, tx bun.Tx, bookID int, want []int) error {
	var current []int
	err := tx.NewSelect().
		Model((*models.BookGenre)(nil)).
		Column("genre_id").
		Where("book_id = ?", bookID).
		Scan(ctx, &current)
	if err != nil {
		return errors.WithStack(err)
	}

	toAdd, toRemove := diffIDs(current, want)

	if len(toRemove) > 0 {
		_, err = tx.NewDelete().
			Model((*models.BookGenre)(nil)).
			Where("book_id = ?", bookID).
			Where("genre_id IN (?)", bun.In(toRemove)).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
	}
	if len(toAdd) > 0 {
		links := make([]*models.BookGenre, 0, len(toAdd))
		for _, id := range toAdd {
			links = append(links, &models.BookGenre{BookID: bookID, GenreID: id})
		}
		_, err = tx.NewInsert().Model(&links).Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

// diffIDs returns the IDs to add (in want but not current) and to remove (in
// current but not want).
func diffIDs(current, want []int) (toAdd, toRemove []int) {
	currentSet := make(map[int]bool, len(current))
	for _, id := range current {
		currentSet[id] = true
	}
	wantSet := make(map[int]bool, len(want))
	for _, id := range want {
		wantSet[id] = true
		if !currentSet[id] {
			toAdd = append(toAdd, id)
		}
	}
	for _, id := range current {
		if !wantSet[id] {
			toRemove = append(toRemove, id)
		}
	}
	return toAdd, toRemove
}

func dedupe(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
