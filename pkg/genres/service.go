package genres

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

type ListGenresOptions struct {
	pagination.Query
	Name *string
}

type RetrieveGenreOptions struct {
	ID        *int
	Name      *string
	WithBooks bool
}

type UpdateGenreOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreateGenre inserts a new genre. The name uniqueness check runs inside the
// insert transaction so concurrent creates can't both pass it.
func (svc *Service) CreateGenre(ctx context.Context, genre *models.Genre) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*models.Genre)(nil)).
			Where("name = ? COLLATE NOCASE", genre.Name).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if exists {
			return errcodes.Conflict("A genre with this name already exists.")
		}

		now := time.Now()
		genre.CreatedAt = now
		genre.UpdatedAt = now

		_, err = tx.NewInsert().Model(genre).Returning("*").Exec(ctx)
		return errors.WithStack(err)
	})
}

func (svc *Service) RetrieveGenre(ctx context.Context, opts RetrieveGenreOptions) (*models.Genre, error) {
	genre := &models.Genre{}

	q := svc.db.
		NewSelect().
		Model(genre)

	if opts.WithBooks {
		q = q.Relation("Books")
	}
	if opts.ID != nil {
		q = q.Where("g.id = ?", *opts.ID)
	}
	if opts.Name != nil {
		q = q.Where("g.name = ? COLLATE NOCASE", *opts.Name)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Genre")
		}
		return nil, errors.WithStack(err)
	}

	return genre, nil
}

func (svc *Service) ListGenresWithTotal(ctx context.Context, opts ListGenresOptions) ([]*models.Genre, int, error) {
	genres := []*models.Genre{}

	q := svc.db.
		NewSelect().
		Model(&genres).
		Order("g.id ASC").
		Limit(opts.Limit()).
		Offset(opts.Offset())

	if opts.Name != nil && *opts.Name != "" {
		q = q.Where("g.name LIKE ? COLLATE NOCASE", "%"+*opts.Name+"%")
	}

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return genres, total, nil
}

// UpdateGenre persists the given columns. When the name column changes, the
// uniqueness check runs in the same transaction as the update.
func (svc *Service) UpdateGenre(ctx context.Context, genre *models.Genre, opts UpdateGenreOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	genre.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, col := range opts.Columns {
			if col != "name" {
				continue
			}
			exists, err := tx.NewSelect().
				Model((*models.Genre)(nil)).
				Where("name = ? COLLATE NOCASE", genre.Name).
				Where("id != ?", genre.ID).
				Exists(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
			if exists {
				return errcodes.Conflict("A genre with this name already exists.")
			}
		}

		_, err := tx.NewUpdate().
			Model(genre).
			Column(columns...).
			WherePK().
			Exec(ctx)
		return errors.WithStack(err)
	})
}

// DeleteGenre removes a genre. Book links and favorite edges go away with it
// via foreign key cascades.
func (svc *Service) DeleteGenre(ctx context.Context, genreID int) error {
	_, err := svc.db.
		NewDelete().
		Model((*models.Genre)(nil)).
		Where("id = ?", genreID).
		Exec(ctx)
	return errors.WithStack(err)
}
