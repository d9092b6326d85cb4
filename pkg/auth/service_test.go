package auth

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

func registerTestUser(t *testing.T, svc *Service, email string) *models.User {
	t.Helper()

	user, err := svc.Register(context.Background(), RegisterOptions{
		Email:     email,
		Username:  "tester",
		Password:  "password123",
		BirthDate: "1992-04-15",
	})
	require.NoError(t, err)
	return user
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, "test-secret")
	ctx := context.Background()

	first := registerTestUser(t, svc, "dup@example.com")

	// Same address with different casing still conflicts.
	_, err := svc.Register(ctx, RegisterOptions{
		Email:     "DUP@example.com",
		Username:  "other",
		Password:  "password456",
		BirthDate: "1995-08-01",
	})
	require.Error(t, err)

	ec := &errcodes.Error{}
	require.ErrorAs(t, err, &ec)
	assert.Equal(t, 409, ec.HTTPCode)
	assert.Equal(t, "conflict", ec.Code)

	// The first account is untouched.
	fresh, err := svc.GetUserByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "dup@example.com", fresh.Email)
}

func TestRegister_HashesPassword(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, "test-secret")

	user := registerTestUser(t, svc, "hash@example.com")

	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.True(t, CheckPassword("password123", user.PasswordHash))
	assert.Equal(t, models.GenderNotSpecified, user.Gender)
}

func TestAuthenticate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, "test-secret")
	ctx := context.Background()

	registerTestUser(t, svc, "login@example.com")

	user, err := svc.Authenticate(ctx, "login@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "login@example.com", user.Email)

	// Wrong password and unknown email both come back as the same 401.
	_, err = svc.Authenticate(ctx, "login@example.com", "wrong")
	require.Error(t, err)
	ec := &errcodes.Error{}
	require.ErrorAs(t, err, &ec)
	assert.Equal(t, 401, ec.HTTPCode)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "password123")
	require.Error(t, err)
	require.ErrorAs(t, err, &ec)
	assert.Equal(t, 401, ec.HTTPCode)
}

func TestTokenRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, "test-secret")

	user := registerTestUser(t, svc, "token@example.com")

	access, err := svc.GenerateToken(user, TokenTypeAccess)
	require.NoError(t, err)
	refresh, err := svc.GenerateToken(user, TokenTypeRefresh)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(access, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)

	// A refresh token can't stand in for an access token.
	_, err = svc.ValidateToken(refresh, TokenTypeAccess)
	assert.Error(t, err)

	// Tokens signed with another secret are rejected.
	other := NewService(db, "other-secret")
	_, err = other.ValidateToken(access, TokenTypeAccess)
	assert.Error(t, err)
}

func TestChangePassword(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, "test-secret")
	ctx := context.Background()

	user := registerTestUser(t, svc, "rotate@example.com")

	err := svc.ChangePassword(ctx, user.ID, "nope", "newpassword1")
	require.Error(t, err)
	ec := &errcodes.Error{}
	require.ErrorAs(t, err, &ec)
	assert.Equal(t, 422, ec.HTTPCode)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "password123", "newpassword1"))

	_, err = svc.Authenticate(ctx, "rotate@example.com", "newpassword1")
	assert.NoError(t, err)
}
