package authors

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

type ListAuthorsOptions struct {
	pagination.Query
	Name *string
}

type RetrieveAuthorOptions struct {
	ID        *int
	Name      *string
	WithBooks bool
}

type UpdateAuthorOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreateAuthor inserts a new author. The name uniqueness check runs inside the
// insert transaction so concurrent creates can't both pass it.
func (svc *Service) CreateAuthor(ctx context.Context, author *models.Author) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*models.Author)(nil)).
			Where("name = ? COLLATE NOCASE", author.Name).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if exists {
			return errcodes.Conflict("An author with this name already exists.")
		}

		now := time.Now()
		author.CreatedAt = now
		author.UpdatedAt = now

		_, err = tx.NewInsert().Model(author).Returning("*").Exec(ctx)
		return errors.WithStack(err)
	})
}

func (svc *Service) RetrieveAuthor(ctx context.Context, opts RetrieveAuthorOptions) (*models.Author, error) {
	author := &models.Author{}

	q := svc.db.
		NewSelect().
		Model(author)

	if opts.WithBooks {
		q = q.Relation("Books")
	}
	if opts.ID != nil {
		q = q.Where("a.id = ?", *opts.ID)
	}
	if opts.Name != nil {
		q = q.Where("a.name = ? COLLATE NOCASE", *opts.Name)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Author")
		}
		return nil, errors.WithStack(err)
	}

	return author, nil
}

func (svc *Service) ListAuthorsWithTotal(ctx context.Context, opts ListAuthorsOptions) ([]*models.Author, int, error) {
	authors := []*models.Author{}

	q := svc.db.
		NewSelect().
		Model(&authors).
		Order("a.id ASC").
		Limit(opts.Limit()).
		Offset(opts.Offset())

	if opts.Name != nil && *opts.Name != "" {
		q = q.Where("a.name LIKE ? COLLATE NOCASE", "%"+*opts.Name+"%")
	}

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return authors, total, nil
}

// UpdateAuthor persists the given columns. When the name column changes, the
// uniqueness check runs in the same transaction as the update.
func (svc *Service) UpdateAuthor(ctx context.Context, author *models.Author, opts UpdateAuthorOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	author.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, col := range opts.Columns {
			if col != "name" {
				continue
			}
			exists, err := tx.NewSelect().
				Model((*models.Author)(nil)).
				Where("name = ? COLLATE NOCASE", author.Name).
				Where("id != ?", author.ID).
				Exists(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
			if exists {
				return errcodes.Conflict("An author with this name already exists.")
			}
		}

		_, err := tx.NewUpdate().
			Model(author).
			Column(columns...).
			WherePK().
			Exec(ctx)
		return errors.WithStack(err)
	})
}

// DeleteAuthor removes an author. Follow edges and book links go away with it
// via foreign key cascades.
func (svc *Service) DeleteAuthor(ctx context.Context, authorID int) error {
	_, err := svc.db.
		NewDelete().
		Model((*models.Author)(nil)).
		Where("id = ?", authorID).
		Exec(ctx)
	return errors.WithStack(err)
}
