package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Root is the plain-text liveness endpoint at GET /.
func Root(c echo.Context) error {
	return c.String(http.StatusOK, "API is running")
}

// Health is used by load balancers and monitoring to verify that the
// service is up.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
