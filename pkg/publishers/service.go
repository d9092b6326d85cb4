package publishers

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

type ListPublishersOptions struct {
	pagination.Query
	Name *string
}

type RetrievePublisherOptions struct {
	ID        *int
	Name      *string
	WithBooks bool
}

type UpdatePublisherOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreatePublisher inserts a new publisher. The name uniqueness check runs
// inside the insert transaction so concurrent creates can't both pass it.
func (svc *Service) CreatePublisher(ctx context.Context, publisher *models.Publisher) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*models.Publisher)(nil)).
			Where("name = ? COLLATE NOCASE", publisher.Name).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if exists {
			return errcodes.Conflict("A publisher with this name already exists.")
		}

		now := time.Now()
		publisher.CreatedAt = now
		publisher.UpdatedAt = now

		_, err = tx.NewInsert().Model(publisher).Returning("*").Exec(ctx)
		return errors.WithStack(err)
	})
}

func (svc *Service) RetrievePublisher(ctx context.Context, opts RetrievePublisherOptions) (*models.Publisher, error) {
	publisher := &models.Publisher{}

	q := svc.db.
		NewSelect().
		Model(publisher)

	if opts.WithBooks {
		q = q.Relation("Books")
	}
	if opts.ID != nil {
		q = q.Where("pub.id = ?", *opts.ID)
	}
	if opts.Name != nil {
		q = q.Where("pub.name = ? COLLATE NOCASE", *opts.Name)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Publisher")
		}
		return nil, errors.WithStack(err)
	}

	return publisher, nil
}

func (svc *Service) ListPublishersWithTotal(ctx context.Context, opts ListPublishersOptions) ([]*models.Publisher, int, error) {
	publishers := []*models.Publisher{}

	q := svc.db.
		NewSelect().
		Model(&publishers).
		Order("pub.id ASC").
		Limit(opts.Limit()).
		Offset(opts.Offset())

	if opts.Name != nil && *opts.Name != "" {
		q = q.Where("pub.name LIKE ? COLLATE NOCASE", "%"+*opts.Name+"%")
	}

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return publishers, total, nil
}

// UpdatePublisher persists the given columns. When the name column changes,
// the uniqueness check runs in the same transaction as the update.
func (svc *Service) UpdatePublisher(ctx context.Context, publisher *models.Publisher, opts UpdatePublisherOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	publisher.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, col := range opts.Columns {
			if col != "name" {
				continue
			}
			exists, err := tx.NewSelect().
				Model((*models.Publisher)(nil)).
				Where("name = ? COLLATE NOCASE", publisher.Name).
				Where("id != ?", publisher.ID).
				Exists(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
			if exists {
				return errcodes.Conflict("A publisher with this name already exists.")
			}
		}

		_, err := tx.NewUpdate().
			Model(publisher).
			Column(columns...).
			WherePK().
			Exec(ctx)
		return errors.WithStack(err)
	})
}

// DeletePublisher removes a publisher. Books that referenced it keep existing
// with a null publisher, per the foreign key's ON DELETE SET NULL.
func (svc *Service) DeletePublisher(ctx context.Context, publisherID int) error {
	_, err := svc.db.
		NewDelete().
		Model((*models.Publisher)(nil)).
		Where("id = ?", publisherID).
		Exec(ctx)
	return errors.WithStack(err)
}
