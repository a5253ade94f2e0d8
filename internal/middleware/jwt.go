// Package middleware contains reusable HTTP middleware: the JWT gate for
// protected routes, the Redis token-bucket rate limiter and the Redis
// response cache.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dkarpov/manufacturer-api/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the token's subject into the request context.  The provided
// secret must match the one used when issuing tokens.  Handlers behind this
// middleware read the authenticated user id via `c.Get("user_id")`.
//
// The gate rejects with 401 when the Authorization header is absent, when
// it carries no token after the Bearer prefix, and when verification fails
// for any reason (bad signature, malformed payload, expired).  It performs
// no other work: verification is delegated to utils.ParseAccessToken and
// nothing is mutated beyond the request context.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if auth == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "no token, authorization denied"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if raw == "" || raw == auth {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid token format"})
			}
			sub, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "token is not valid"})
			}
			c.Set("user_id", sub)
			return next(c)
		}
	}
}
