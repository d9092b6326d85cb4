package genres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/database"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/errcodes"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/migrations"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/models"
)

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	database.RegisterModels(db)

	_, err = db.Exec("PRAGMA foreign_keys=ON")
	require.NoError(t, err)

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestCreateGenre_DuplicateNameConflicts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	err := svc.CreateGenre(ctx, &models.Genre{Name: "Thriller"})
	require.NoError(t, err)

	err = svc.CreateGenre(ctx, &models.Genre{Name: "thriller"})
	require.Error(t, err)

	ec := &errcodes.Error{}
	require.ErrorAs(t, err, &ec)
	assert.Equal(t, 409, ec.HTTPCode)
	assert.Equal(t, "conflict", ec.Code)
}

func TestDeleteGenre_CascadesLinks(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	genre := &models.Genre{Name: "Short Lived"}
	require.NoError(t, svc.CreateGenre(ctx, genre))

	book := &models.Book{Title: "Linked Book"}
	_, err := db.NewInsert().Model(book).Exec(ctx)
	require.NoError(t, err)
	_, err = db.NewInsert().Model(&models.BookGenre{BookID: book.ID, GenreID: genre.ID}).Exec(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteGenre(ctx, genre.ID))

	count, err := db.NewSelect().
		Model((*models.BookGenre)(nil)).
		Where("genre_id = ?", genre.ID).
		Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
