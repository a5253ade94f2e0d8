package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dkarpov/manufacturer-api/internal/config"
	"github.com/dkarpov/manufacturer-api/internal/repository"
	"github.com/dkarpov/manufacturer-api/internal/utils"
)

// AuthHandler bundles dependencies for the signup and signin endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u}
}

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Signup handles POST /api/auth/signup: create a user with a hashed
// password.  The response carries no user fields, only a message.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "username and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.Create(ctx, req.Username, req.Password, h.Cfg.BcryptCost); err != nil {
		if err == repository.ErrUsernameExists {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "user with this username already exists"})
		}
		c.Logger().Errorf("signup: create user: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "server error"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "user registered successfully"})
}

// Signin handles POST /api/auth/signin: verify credentials and issue an
// access token.  Unknown username and wrong password produce the same
// response so callers cannot enumerate accounts.
func (h *AuthHandler) Signin(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "username and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid credentials"})
		}
		c.Logger().Errorf("signin: query user: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "server error"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, h.Cfg.AccessTTLMin)
	if err != nil {
		c.Logger().Errorf("signin: issue token: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{"token": access.Token})
}
