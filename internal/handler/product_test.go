package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/dkarpov/manufacturer-api/internal/handler"
	"github.com/dkarpov/manufacturer-api/internal/repository"
)

const (
	selectManufacturerSQL = "SELECT id,name,buyer,currency,products,version,created_at,updated_at FROM manufacturers WHERE id=? LIMIT 1"
	saveProductsSQL       = "UPDATE manufacturers SET products=?, version=version+1, updated_at=? WHERE id=? AND version=?"

	testManufacturerID = "7b8a1f3e-9c2d-4e5f-8a61-0d9c2b3a4e5f"
)

func newProductHandler(t *testing.T) (*handler.ProductHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return handler.NewProductHandler(repository.NewManufacturerRepo(db)), mock
}

func productRequest(t *testing.T, h echo.HandlerFunc, method, body string, params ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	names := []string{"id"}
	if len(params) > 1 {
		names = append(names, "productId")
	}
	c.SetParamNames(names...)
	c.SetParamValues(params...)
	require.NoError(t, h(c))
	return rec
}

func emptyManufacturerRow() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "name", "buyer", "currency", "products", "version", "created_at", "updated_at"}).
		AddRow(testManufacturerID, "Acme", "Bob", "USD", []byte("[]"), int64(1), now, now)
}

// Zero is a valid price: presence, not truthiness, decides whether a
// required numeric field was supplied.
func TestAddProduct_ZeroPriceIsPresent(t *testing.T) {
	h, mock := newProductHandler(t)

	mock.ExpectQuery(selectManufacturerSQL).
		WithArgs(testManufacturerID).
		WillReturnRows(emptyManufacturerRow())
	mock.ExpectExec(saveProductsSQL).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), testManufacturerID, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := productRequest(t, h.Add, http.MethodPost,
		`{"name":"Widget","totalPrice":0,"billPrice":0}`, testManufacturerID)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddProduct_MissingTotalPrice(t *testing.T) {
	h, mock := newProductHandler(t)

	rec := productRequest(t, h.Add, http.MethodPost,
		`{"name":"Widget","billPrice":8}`, testManufacturerID)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	// Validation fails before any store call.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddProduct_NegativePrice(t *testing.T) {
	h, mock := newProductHandler(t)

	rec := productRequest(t, h.Add, http.MethodPost,
		`{"name":"Widget","totalPrice":-1,"billPrice":8}`, testManufacturerID)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddProduct_MalformedManufacturerID(t *testing.T) {
	h, mock := newProductHandler(t)

	rec := productRequest(t, h.Add, http.MethodPost,
		`{"name":"Widget","totalPrice":10,"billPrice":8}`, "not-a-uuid")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddProduct_ManufacturerNotFound(t *testing.T) {
	h, mock := newProductHandler(t)

	mock.ExpectQuery(selectManufacturerSQL).
		WithArgs(testManufacturerID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "buyer", "currency", "products", "version", "created_at", "updated_at"}))

	rec := productRequest(t, h.Add, http.MethodPost,
		`{"name":"Widget","totalPrice":10,"billPrice":8}`, testManufacturerID)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProduct_NotFound(t *testing.T) {
	h, mock := newProductHandler(t)

	mock.ExpectQuery(selectManufacturerSQL).
		WithArgs(testManufacturerID).
		WillReturnRows(emptyManufacturerRow())

	rec := productRequest(t, h.Get, http.MethodGet, "",
		testManufacturerID, "1c9e6b2a-3f4d-4a5b-9c8d-7e6f5a4b3c2d")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "product not found")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListProducts_CaseInsensitiveFilter(t *testing.T) {
	h, mock := newProductHandler(t)
	now := time.Now().UTC()
	products := []byte(`[{"id":"p-1","name":"Widget","totalPrice":10,"billPrice":8,"foc":false,"plan":0,"fact":0},` +
		`{"id":"p-2","name":"Gadget","totalPrice":5,"billPrice":4,"foc":false,"plan":0,"fact":0}]`)

	mock.ExpectQuery(selectManufacturerSQL).
		WithArgs(testManufacturerID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "buyer", "currency", "products", "version", "created_at", "updated_at"}).
			AddRow(testManufacturerID, "Acme", "Bob", "USD", products, int64(1), now, now))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?name=wid", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(testManufacturerID)
	require.NoError(t, h.List(c))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Widget")
	require.NotContains(t, rec.Body.String(), "Gadget")
	require.NoError(t, mock.ExpectationsWereMet())
}
