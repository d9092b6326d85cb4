package books

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/assets"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/auth"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/binder"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/errcodes"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/models"
)

func setupTestServer(t *testing.T) (*echo.Echo, *bun.DB) {
	t.Helper()

	db := setupTestDB(t)

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	assetStore, err := assets.NewStore(t.TempDir())
	require.NoError(t, err)

	authService := auth.NewService(db, "test-secret")
	authMiddleware := auth.NewMiddleware(authService)

	api := e.Group("/api/v1")
	admin := api.Group("/admin", authMiddleware.Authenticate, authMiddleware.RequireAdmin)
	RegisterRoutes(api, admin, db, assetStore)

	return e, db
}

func TestListEndpoint_RejectsUnknownOrdering(t *testing.T) {
	e, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/book?ordering=synopsis", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation_error", body["error"]["code"])
}

func TestListEndpoint_PaginationEnvelope(t *testing.T) {
	e, db := setupTestServer(t)
	svc := NewService(db)

	for _, title := range []string{"One", "Two", "Three"} {
		_, err := svc.CreateBook(context.Background(), CreateBookOptions{Title: title})
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/book?page=1&page_size=2", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Items    []map[string]interface{} `json:"items"`
		NbItems  int                      `json:"nb_items"`
		NbPages  int                      `json:"nb_pages"`
		PageSize int                      `json:"page_size"`
		Page     int                      `json:"page"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Items, 2)
	assert.Equal(t, 3, body.NbItems)
	assert.Equal(t, 2, body.NbPages)
	assert.Equal(t, 2, body.PageSize)
	assert.Equal(t, 1, body.Page)
}

func TestRetrieveEndpoint_NotFound(t *testing.T) {
	e, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/book/42", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminCreate_RequiresAuthentication(t *testing.T) {
	e, db := setupTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/book", strings.NewReader(`{"title":"Intruder"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// The rejected request must not have created anything.
	count, err := db.NewSelect().Model((*models.Book)(nil)).Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAdminCreate_ForbiddenForNonAdmin(t *testing.T) {
	e, db := setupTestServer(t)

	authService := auth.NewService(db, "test-secret")
	user, err := authService.Register(context.Background(), auth.RegisterOptions{
		Email:     "plain@example.com",
		Username:  "plain",
		Password:  "password123",
		BirthDate: "1990-01-01",
	})
	require.NoError(t, err)

	token, err := authService.GenerateToken(user, auth.TokenTypeAccess)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/book", strings.NewReader(`{"title":"Intruder"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminCreate_AsAdmin(t *testing.T) {
	e, db := setupTestServer(t)

	authService := auth.NewService(db, "test-secret")
	user, err := authService.Register(context.Background(), auth.RegisterOptions{
		Email:     "admin@example.com",
		Username:  "admin",
		Password:  "password123",
		BirthDate: "1990-01-01",
		IsAdmin:   true,
	})
	require.NoError(t, err)

	token, err := authService.GenerateToken(user, auth.TokenTypeAccess)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/book", strings.NewReader(`{"title":"Sanctioned","age_rating":"teen"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Book
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Sanctioned", created.Title)
	assert.Equal(t, models.AgeRatingTeen, created.AgeRating)
}
