package binder

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/errcodes"
)

type testPayload struct {
	Name      string `json:"name" validate:"required,min=1"`
	BirthDate string `json:"birth_date" validate:"omitempty,date"`
	Count     int    `json:"count" default:"7" validate:"min=1"`
}

type testQuery struct {
	Page int     `query:"page" default:"1" validate:"min=1"`
	Name *string `query:"name" validate:"omitempty,max=10"`
}

func bindJSON(t *testing.T, body string, i interface{}) error {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	b, err := New()
	require.NoError(t, err)
	return b.Bind(i, c)
}

func bindQuery(t *testing.T, rawQuery string, i interface{}) error {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+rawQuery, nil)
	c := e.NewContext(req, httptest.NewRecorder())

	b, err := New()
	require.NoError(t, err)
	return b.Bind(i, c)
}

func TestBind_AppliesDefaults(t *testing.T) {
	p := testPayload{}
	err := bindJSON(t, `{"name":"ok"}`, &p)
	require.NoError(t, err)
	assert.Equal(t, 7, p.Count)
}

func TestBind_RejectsUnknownFields(t *testing.T) {
	p := testPayload{}
	err := bindJSON(t, `{"name":"ok","bogus":true}`, &p)
	require.Error(t, err)

	ec := &errcodes.Error{}
	require.ErrorAs(t, err, &ec)
	assert.Equal(t, "unknown_parameter", ec.Code)
	assert.Contains(t, ec.Message, "bogus")
}

func TestBind_RequiredFieldMessage(t *testing.T) {
	p := testPayload{}
	err := bindJSON(t, `{}`, &p)
	require.Error(t, err)

	ec := &errcodes.Error{}
	require.ErrorAs(t, err, &ec)
	assert.Equal(t, 422, ec.HTTPCode)
	assert.Contains(t, ec.Message, "name")
}

func TestBind_DateFormat(t *testing.T) {
	p := testPayload{}
	err := bindJSON(t, `{"name":"ok","birth_date":"2001-12-31"}`, &p)
	assert.NoError(t, err)

	p = testPayload{}
	err = bindJSON(t, `{"name":"ok","birth_date":"31/12/2001"}`, &p)
	require.Error(t, err)

	ec := &errcodes.Error{}
	require.ErrorAs(t, err, &ec)
	assert.Equal(t, 422, ec.HTTPCode)
}

func TestBind_EmptyBodyRejectedForPost(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	b, err := New()
	require.NoError(t, err)

	p := testPayload{}
	err = b.Bind(&p, c)
	require.Error(t, err)

	ec := &errcodes.Error{}
	require.ErrorAs(t, err, &ec)
	assert.Equal(t, http.StatusBadRequest, ec.HTTPCode)
}

func TestBind_QueryParams(t *testing.T) {
	q := testQuery{}
	err := bindQuery(t, "page=2&name=abc", &q)
	require.NoError(t, err)
	assert.Equal(t, 2, q.Page)
	require.NotNil(t, q.Name)
	assert.Equal(t, "abc", *q.Name)

	// Defaults fill what the query string leaves out.
	q = testQuery{}
	err = bindQuery(t, "", &q)
	require.NoError(t, err)
	assert.Equal(t, 1, q.Page)

	q = testQuery{}
	err = bindQuery(t, "page=zero", &q)
	require.Error(t, err)

	ec := &errcodes.Error{}
	require.ErrorAs(t, err, &ec)
	assert.Equal(t, "validation_type_error", ec.Code)
}
