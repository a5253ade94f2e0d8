package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/dkarpov/manufacturer-api/internal/handler"
	"github.com/dkarpov/manufacturer-api/internal/repository"
)

const insertManufacturerSQL = "INSERT INTO manufacturers (id, name, buyer, currency, products, version, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?)"

func newManufacturerHandler(t *testing.T) (*handler.ManufacturerHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return handler.NewManufacturerHandler(repository.NewManufacturerRepo(db)), mock
}

func manufacturerRequest(t *testing.T, h echo.HandlerFunc, method, body, id string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if id != "" {
		c.SetParamNames("id")
		c.SetParamValues(id)
	}
	require.NoError(t, h(c))
	return rec
}

func TestCreateManufacturer_MissingBuyer(t *testing.T) {
	h, mock := newManufacturerHandler(t)

	rec := manufacturerRequest(t, h.Create, http.MethodPost, `{"name":"Acme"}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateManufacturer_Created(t *testing.T) {
	h, mock := newManufacturerHandler(t)

	mock.ExpectExec(insertManufacturerSQL).
		WithArgs(sqlmock.AnyArg(), "Acme", "Bob", "", []byte("[]"), int64(1), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := manufacturerRequest(t, h.Create, http.MethodPost, `{"name":"Acme","buyer":"Bob"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), `"id"`)
	require.Contains(t, rec.Body.String(), "Acme")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateManufacturer_DuplicateName(t *testing.T) {
	h, mock := newManufacturerHandler(t)

	mock.ExpectExec(insertManufacturerSQL).
		WillReturnError(errDuplicateUser) // any 1062 duplicate-key error

	rec := manufacturerRequest(t, h.Create, http.MethodPost, `{"name":"Acme","buyer":"Bob"}`, "")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetManufacturer_MalformedID(t *testing.T) {
	h, mock := newManufacturerHandler(t)

	rec := manufacturerRequest(t, h.Get, http.MethodGet, "", "not-a-uuid")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid manufacturer id")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetManufacturer_NotFound(t *testing.T) {
	h, mock := newManufacturerHandler(t)

	mock.ExpectQuery(selectManufacturerSQL).
		WithArgs(testManufacturerID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "buyer", "currency", "products", "version", "created_at", "updated_at"}))

	rec := manufacturerRequest(t, h.Get, http.MethodGet, "", testManufacturerID)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateManufacturer_EmptyFieldsUntouched(t *testing.T) {
	h, mock := newManufacturerHandler(t)

	mock.ExpectQuery(selectManufacturerSQL).
		WithArgs(testManufacturerID).
		WillReturnRows(emptyManufacturerRow())
	// Name stays "Acme": the empty string in the body counts as not provided.
	mock.ExpectExec("UPDATE manufacturers SET name=?, buyer=?, currency=?, version=version+1, updated_at=? WHERE id=? AND version=?").
		WithArgs("Acme", "Bob", "EUR", sqlmock.AnyArg(), testManufacturerID, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := manufacturerRequest(t, h.Update, http.MethodPut, `{"name":"","currency":"EUR"}`, testManufacturerID)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "EUR")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteManufacturer_NotFound(t *testing.T) {
	h, mock := newManufacturerHandler(t)

	mock.ExpectExec("DELETE FROM manufacturers WHERE id=?").
		WithArgs(testManufacturerID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec := manufacturerRequest(t, h.Delete, http.MethodDelete, "", testManufacturerID)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
