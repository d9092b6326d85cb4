package auth

import (
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
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/binder"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/errcodes"
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

	api := e.Group("/api/v1")
	RegisterRoutes(api, db, "test-secret", assetStore)

	return e, db
}

func TestRegisterEndpoint(t *testing.T) {
	e, _ := setupTestServer(t)

	payload := `{"email":"new@example.com","username":"newbie","password":"password123","birth_date":"1994-02-20"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "new@example.com", body["email"])
	// The hash must never leak into responses.
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestRegisterEndpoint_RejectsBadDate(t *testing.T) {
	e, _ := setupTestServer(t)

	payload := `{"email":"new@example.com","username":"newbie","password":"password123","birth_date":"20-02-1994"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestLoginEndpoint_SetsRefreshCookie(t *testing.T) {
	e, db := setupTestServer(t)

	svc := NewService(db, "test-secret")
	registerTestUser(t, svc, "login@example.com")

	payload := `{"email":"login@example.com","password":"password123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body TokenPairResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Access)
	assert.NotEmpty(t, body.Refresh)
	require.NotNil(t, body.User)

	var refreshCookie *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == RefreshCookieName {
			refreshCookie = cookie
		}
	}
	require.NotNil(t, refreshCookie)
	assert.True(t, refreshCookie.HttpOnly)
	assert.Equal(t, body.Refresh, refreshCookie.Value)
}

func TestRefreshEndpoint_FromCookie(t *testing.T) {
	e, db := setupTestServer(t)

	svc := NewService(db, "test-secret")
	user := registerTestUser(t, svc, "refresh@example.com")
	refresh, err := svc.GenerateToken(user, TokenTypeRefresh)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: RefreshCookieName, Value: refresh})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body AccessTokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	claims, err := svc.ValidateToken(body.Access, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestRefreshEndpoint_MissingToken(t *testing.T) {
	e, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyEndpoint(t *testing.T) {
	e, db := setupTestServer(t)

	svc := NewService(db, "test-secret")
	user := registerTestUser(t, svc, "verify@example.com")
	access, err := svc.GenerateToken(user, TokenTypeAccess)
	require.NoError(t, err)

	payload, err := json.Marshal(map[string]string{"token": access})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/verify", strings.NewReader(string(payload)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/verify", strings.NewReader(`{"token":"garbage"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
