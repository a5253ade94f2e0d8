package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/dkarpov/manufacturer-api/internal/middleware"
	"github.com/dkarpov/manufacturer-api/internal/utils"
)

const jwtTestSecret = "jwt-test-secret"

// echoThrough runs a request through JWTAuth wrapping a handler that
// echoes the user id the middleware stored in the context.
func echoThrough(t *testing.T, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/manufacturers", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := middleware.JWTAuth(jwtTestSecret)(func(c echo.Context) error {
		uid, _ := c.Get("user_id").(string)
		return c.String(http.StatusOK, uid)
	})
	require.NoError(t, h(c))
	return rec
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	rec := echoThrough(t, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_EmptyBearer(t *testing.T) {
	rec := echoThrough(t, "Bearer ")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_InvalidToken(t *testing.T) {
	rec := echoThrough(t, "Bearer not.a.token")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	tok, err := utils.NewAccessToken(jwtTestSecret, "user-1", -1)
	require.NoError(t, err)

	rec := echoThrough(t, "Bearer "+tok.Token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_ValidTokenPropagatesSubject(t *testing.T) {
	tok, err := utils.NewAccessToken(jwtTestSecret, "user-1", 60)
	require.NoError(t, err)

	rec := echoThrough(t, "Bearer "+tok.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "user-1", rec.Body.String())
}
