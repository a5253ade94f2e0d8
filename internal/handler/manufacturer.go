package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dkarpov/manufacturer-api/internal/repository"
)

// ManufacturerHandler serves the manufacturer CRUD endpoints.  All routes
// sit behind the JWT middleware.
type ManufacturerHandler struct {
	Manufacturers *repository.ManufacturerRepo
}

func NewManufacturerHandler(m *repository.ManufacturerRepo) *ManufacturerHandler {
	if m == nil {
		panic("nil repository passed to NewManufacturerHandler")
	}
	return &ManufacturerHandler{Manufacturers: m}
}

type manufacturerReq struct {
	Name     string `json:"name"`
	Buyer    string `json:"buyer"`
	Currency string `json:"currency"`
}

// manufacturerID parses the :id path param, rejecting malformed ids before
// any store call.
func manufacturerID(c echo.Context) (string, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// Create handles POST /api/manufacturers.
func (h *ManufacturerHandler) Create(c echo.Context) error {
	var req manufacturerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Buyer = strings.TrimSpace(req.Buyer)
	if req.Name == "" || req.Buyer == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "manufacturer name and buyer are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m := &repository.Manufacturer{
		Name:     req.Name,
		Buyer:    req.Buyer,
		Currency: strings.TrimSpace(req.Currency),
	}
	if err := h.Manufacturers.Create(ctx, m); err != nil {
		if err == repository.ErrManufacturerExists {
			return c.JSON(http.StatusConflict, echo.Map{"message": "manufacturer with this name already exists"})
		}
		c.Logger().Errorf("manufacturer create: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "server error"})
	}
	return c.JSON(http.StatusCreated, m)
}

// List handles GET /api/manufacturers with an optional ?name= filter
// matching case-insensitive substrings.
func (h *ManufacturerHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Manufacturers.List(ctx, c.QueryParam("name"))
	if err != nil {
		c.Logger().Errorf("manufacturer list: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "server error"})
	}
	return c.JSON(http.StatusOK, items)
}

// Get handles GET /api/manufacturers/:id.
func (h *ManufacturerHandler) Get(c echo.Context) error {
	id, ok := manufacturerID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid manufacturer id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Manufacturers.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrManufacturerNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "manufacturer not found"})
		}
		c.Logger().Errorf("manufacturer get: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "server error"})
	}
	return c.JSON(http.StatusOK, m)
}

// Update handles PUT /api/manufacturers/:id.  Only supplied fields are
// applied; empty strings count as not supplied, so a PUT cannot blank a
// required field.
func (h *ManufacturerHandler) Update(c echo.Context) error {
	id, ok := manufacturerID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid manufacturer id"})
	}
	var req manufacturerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Manufacturers.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrManufacturerNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "manufacturer not found"})
		}
		c.Logger().Errorf("manufacturer update: load: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "server error"})
	}

	if v := strings.TrimSpace(req.Name); v != "" {
		m.Name = v
	}
	if v := strings.TrimSpace(req.Buyer); v != "" {
		m.Buyer = v
	}
	if v := strings.TrimSpace(req.Currency); v != "" {
		m.Currency = v
	}

	if err := h.Manufacturers.Update(ctx, &m); err != nil {
		switch err {
		case repository.ErrManufacturerNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "manufacturer not found"})
		case repository.ErrManufacturerExists:
			return c.JSON(http.StatusConflict, echo.Map{"message": "manufacturer with this name already exists"})
		case repository.ErrVersionConflict:
			return c.JSON(http.StatusConflict, echo.Map{"message": "manufacturer was modified concurrently, retry"})
		}
		c.Logger().Errorf("manufacturer update: save: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "server error"})
	}
	return c.JSON(http.StatusOK, m)
}

// Delete handles DELETE /api/manufacturers/:id.  The products owned by the
// manufacturer disappear with it.
func (h *ManufacturerHandler) Delete(c echo.Context) error {
	id, ok := manufacturerID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid manufacturer id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Manufacturers.Delete(ctx, id); err != nil {
		if err == repository.ErrManufacturerNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "manufacturer not found"})
		}
		c.Logger().Errorf("manufacturer delete: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "manufacturer deleted successfully"})
}
