package books

import (
	"context"
	"database/sql"
	"fmt"
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
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/pagination"
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

func createTestAuthor(t *testing.T, db *bun.DB, name string) *models.Author {
	t.Helper()

	author := &models.Author{Name: name, BirthDate: "1970-01-01"}
	_, err := db.NewInsert().Model(author).Exec(context.Background())
	require.NoError(t, err)
	return author
}

func createTestGenre(t *testing.T, db *bun.DB, name string) *models.Genre {
	t.Helper()

	genre := &models.Genre{Name: name}
	_, err := db.NewInsert().Model(genre).Exec(context.Background())
	require.NoError(t, err)
	return genre
}

func createTestPublisher(t *testing.T, db *bun.DB, name string) *models.Publisher {
	t.Helper()

	publisher := &models.Publisher{Name: name}
	_, err := db.NewInsert().Model(publisher).Exec(context.Background())
	require.NoError(t, err)
	return publisher
}

func TestCreateBook_WithRelations(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	author := createTestAuthor(t, db, "Iris Monteiro")
	genre := createTestGenre(t, db, "Mystery")
	publisher := createTestPublisher(t, db, "Moonlit Press")

	book, err := svc.CreateBook(ctx, CreateBookOptions{
		Title:           "The Harbor Case",
		PublicationDate: "2020-05-01",
		AgeRating:       models.AgeRatingTeen,
		PublisherID:     &publisher.ID,
		AuthorIDs:       []int{author.ID},
		GenreIDs:        []int{genre.ID},
	})
	require.NoError(t, err)

	require.NotNil(t, book.Publisher)
	assert.Equal(t, "Moonlit Press", book.Publisher.Name)
	require.Len(t, book.Authors, 1)
	assert.Equal(t, "Iris Monteiro", book.Authors[0].Name)
	require.Len(t, book.Genres, 1)
	assert.Equal(t, "Mystery", book.Genres[0].Name)
	assert.Zero(t, book.Score)
}

func TestCreateBook_MissingReferences(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	missing := 9999
	_, err := svc.CreateBook(ctx, CreateBookOptions{Title: "Dangling", PublisherID: &missing})
	require.Error(t, err)

	ec := &errcodes.Error{}
	require.ErrorAs(t, err, &ec)
	assert.Equal(t, 404, ec.HTTPCode)

	_, err = svc.CreateBook(ctx, CreateBookOptions{Title: "Dangling", AuthorIDs: []int{9999}})
	require.Error(t, err)
	require.ErrorAs(t, err, &ec)
	assert.Equal(t, 404, ec.HTTPCode)

	// The failed creates must not leave book rows behind.
	count, err := db.NewSelect().Model((*models.Book)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUpdateBook_ReplacesRelationSets(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	a1 := createTestAuthor(t, db, "First Author")
	a2 := createTestAuthor(t, db, "Second Author")
	a3 := createTestAuthor(t, db, "Third Author")
	g1 := createTestGenre(t, db, "Horror")
	g2 := createTestGenre(t, db, "Romance")

	book, err := svc.CreateBook(ctx, CreateBookOptions{
		Title:     "Shifting Credits",
		AuthorIDs: []int{a1.ID, a2.ID},
		GenreIDs:  []int{g1.ID},
	})
	require.NoError(t, err)

	// Replace {a1, a2} with {a2, a3} and {g1} with {g2}.
	authorIDs := []int{a2.ID, a3.ID}
	genreIDs := []int{g2.ID}
	err = svc.UpdateBook(ctx, book, UpdateBookOptions{
		AuthorIDs: &authorIDs,
		GenreIDs:  &genreIDs,
	})
	require.NoError(t, err)

	var linkedAuthors []int
	err = db.NewSelect().
		Model((*models.BookAuthor)(nil)).
		Column("author_id").
		Where("book_id = ?", book.ID).
		Order("author_id ASC").
		Scan(ctx, &linkedAuthors)
	require.NoError(t, err)
	assert.Equal(t, []int{a2.ID, a3.ID}, linkedAuthors)

	var linkedGenres []int
	err = db.NewSelect().
		Model((*models.BookGenre)(nil)).
		Column("genre_id").
		Where("book_id = ?", book.ID).
		Scan(ctx, &linkedGenres)
	require.NoError(t, err)
	assert.Equal(t, []int{g2.ID}, linkedGenres)
}

func TestListBooks_FiltersAndOrdering(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	author := createTestAuthor(t, db, "Clara Vane")
	genre := createTestGenre(t, db, "Science Fiction")

	_, err := svc.CreateBook(ctx, CreateBookOptions{
		Title:           "Beneath the Ice",
		PublicationDate: "2018-03-01",
		AgeRating:       models.AgeRatingMature,
		AuthorIDs:       []int{author.ID},
	})
	require.NoError(t, err)
	_, err = svc.CreateBook(ctx, CreateBookOptions{
		Title:           "Above the Clouds",
		PublicationDate: "2021-07-15",
		AgeRating:       models.AgeRatingEveryone,
		GenreIDs:        []int{genre.ID},
	})
	require.NoError(t, err)

	// Substring title filter, case-insensitive.
	title := "the"
	books, total, err := svc.ListBooksWithTotal(ctx, ListBooksOptions{
		Query: pagination.Query{Page: 1, PageSize: 10},
		Title: &title,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, books, 2)

	// Author name filter.
	authorName := "vane"
	books, total, err = svc.ListBooksWithTotal(ctx, ListBooksOptions{
		Query:  pagination.Query{Page: 1, PageSize: 10},
		Author: &authorName,
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, "Beneath the Ice", books[0].Title)

	// Genre name filter.
	genreName := "science"
	books, total, err = svc.ListBooksWithTotal(ctx, ListBooksOptions{
		Query: pagination.Query{Page: 1, PageSize: 10},
		Genre: &genreName,
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, "Above the Clouds", books[0].Title)

	// Descending title ordering.
	books, _, err = svc.ListBooksWithTotal(ctx, ListBooksOptions{
		Query:    pagination.Query{Page: 1, PageSize: 10},
		Ordering: "-title",
	})
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Beneath the Ice", books[0].Title)
	assert.Equal(t, "Above the Clouds", books[1].Title)
}

func TestDeleteBook_CascadesRatingRecords(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	book, err := svc.CreateBook(ctx, CreateBookOptions{Title: "Short Lived"})
	require.NoError(t, err)

	user := &models.User{
		Email:        "reader@example.com",
		Username:     "reader",
		PasswordHash: "x",
		BirthDate:    "1990-01-01",
		Gender:       models.GenderNotSpecified,
	}
	_, err = db.NewInsert().Model(user).Exec(ctx)
	require.NoError(t, err)

	rating := 4.0
	ub := &models.UserBook{UserID: user.ID, BookID: book.ID, Situation: models.SituationCompleted, Rating: &rating, DateAdded: "2024-01-01"}
	_, err = db.NewInsert().Model(ub).Exec(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBook(ctx, book.ID))

	count, err := db.NewSelect().
		Model((*models.UserBook)(nil)).
		Where("book_id = ?", book.ID).
		Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestListBooks_PaginationWindow(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	for i := 1; i <= 5; i++ {
		_, err := svc.CreateBook(ctx, CreateBookOptions{Title: fmt.Sprintf("Volume %d", i)})
		require.NoError(t, err)
	}

	books, total, err := svc.ListBooksWithTotal(ctx, ListBooksOptions{
		Query: pagination.Query{Page: 2, PageSize: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, books, 2)
	assert.Equal(t, "Volume 3", books[0].Title)
	assert.Equal(t, "Volume 4", books[1].Title)
}
