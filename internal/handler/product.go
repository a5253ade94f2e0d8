package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dkarpov/manufacturer-api/internal/queue"
	"github.com/dkarpov/manufacturer-api/internal/repository"
	publisher "github.com/dkarpov/manufacturer-api/internal/service"
)

// ProductHandler serves the nested product endpoints under a manufacturer.
// Products live inside their manufacturer's document, so every operation
// goes through the manufacturer repository.
type ProductHandler struct {
	Manufacturers *repository.ManufacturerRepo
}

func NewProductHandler(m *repository.ManufacturerRepo) *ProductHandler {
	if m == nil {
		panic("nil repository passed to NewProductHandler")
	}
	return &ProductHandler{Manufacturers: m}
}

// addProductReq uses pointers for the numeric required fields: zero is a
// valid price, so presence has to be checked explicitly rather than
// against the zero value.
type addProductReq struct {
	Name       string   `json:"name"`
	TotalPrice *float64 `json:"totalPrice"`
	BillPrice  *float64 `json:"billPrice"`
	Foc        *bool    `json:"foc"`
	Plan       *float64 `json:"plan"`
	Fact       *float64 `json:"fact"`
}

// productIDs parses both path params, rejecting malformed ids before any
// store call.
func productIDs(c echo.Context) (manufacturerID, productID string, ok bool) {
	mid, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return "", "", false
	}
	pid, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		return "", "", false
	}
	return mid.String(), pid.String(), true
}

// Add handles POST /api/manufacturers/:id/products.  The product is
// appended to the end of the manufacturer's list and returned with its
// generated id.
func (h *ProductHandler) Add(c echo.Context) error {
	mid, ok := manufacturerID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid manufacturer id"})
	}
	var req addProductReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.TotalPrice == nil || req.BillPrice == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "product name, total price and bill price are required"})
	}

	p := repository.Product{
		Name:       req.Name,
		TotalPrice: *req.TotalPrice,
		BillPrice:  *req.BillPrice,
	}
	if req.Foc != nil {
		p.Foc = *req.Foc
	}
	if req.Plan != nil {
		p.Plan = *req.Plan
	}
	if req.Fact != nil {
		p.Fact = *req.Fact
	}
	if p.TotalPrice < 0 || p.BillPrice < 0 || p.Plan < 0 || p.Fact < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "prices, plan and fact must be non-negative"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	created, err := h.Manufacturers.AddProduct(ctx, mid, p)
	if err != nil {
		switch err {
		case repository.ErrManufacturerNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "manufacturer not found"})
		case repository.ErrVersionConflict:
			return c.JSON(http.StatusConflict, echo.Map{"message": "manufacturer was modified concurrently, retry"})
		}
		c.Logger().Errorf("product add: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "server error"})
	}

	// Fire-and-forget: a failed publish is logged inside the publisher and
	// never fails the request.
	_ = publisher.PublishProductAdded(ctx, queue.ProductAddedEvent{
		ManufacturerID: mid,
		ProductID:      created.ID,
		ProductName:    created.Name,
		TotalPrice:     created.TotalPrice,
		BillPrice:      created.BillPrice,
		Foc:            created.Foc,
		AddedAt:        time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, created)
}

// List handles GET /api/manufacturers/:id/products with an optional
// ?name= filter applied in memory over the loaded document.
func (h *ProductHandler) List(c echo.Context) error {
	mid, ok := manufacturerID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid manufacturer id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Manufacturers.GetByID(ctx, mid)
	if err != nil {
		if err == repository.ErrManufacturerNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "manufacturer not found"})
		}
		c.Logger().Errorf("product list: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "server error"})
	}
	return c.JSON(http.StatusOK, repository.FilterProductsByName(m.Products, c.QueryParam("name")))
}

// Get handles GET /api/manufacturers/:id/products/:productId.
func (h *ProductHandler) Get(c echo.Context) error {
	mid, pid, ok := productIDs(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid manufacturer or product id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Manufacturers.GetByID(ctx, mid)
	if err != nil {
		if err == repository.ErrManufacturerNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "manufacturer not found"})
		}
		c.Logger().Errorf("product get: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "server error"})
	}
	for _, p := range m.Products {
		if p.ID == pid {
			return c.JSON(http.StatusOK, p)
		}
	}
	return c.JSON(http.StatusNotFound, echo.Map{"message": "product not found"})
}

// Update handles PUT /api/manufacturers/:id/products/:productId.  Provided
// fields overwrite the stored values; omitted fields stay as they are.
func (h *ProductHandler) Update(c echo.Context) error {
	mid, pid, ok := productIDs(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid manufacturer or product id"})
	}
	var upd repository.ProductUpdate
	if err := c.Bind(&upd); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "product name is required"})
	}
	if (upd.TotalPrice != nil && *upd.TotalPrice < 0) ||
		(upd.BillPrice != nil && *upd.BillPrice < 0) ||
		(upd.Plan != nil && *upd.Plan < 0) ||
		(upd.Fact != nil && *upd.Fact < 0) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "prices, plan and fact must be non-negative"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Manufacturers.UpdateProduct(ctx, mid, pid, upd)
	if err != nil {
		switch err {
		case repository.ErrManufacturerNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "manufacturer not found"})
		case repository.ErrProductNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "product not found"})
		case repository.ErrVersionConflict:
			return c.JSON(http.StatusConflict, echo.Map{"message": "manufacturer was modified concurrently, retry"})
		}
		c.Logger().Errorf("product update: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "server error"})
	}
	return c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /api/manufacturers/:id/products/:productId.
func (h *ProductHandler) Delete(c echo.Context) error {
	mid, pid, ok := productIDs(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid manufacturer or product id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Manufacturers.DeleteProduct(ctx, mid, pid); err != nil {
		switch err {
		case repository.ErrManufacturerNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "manufacturer not found"})
		case repository.ErrProductNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "product not found"})
		case repository.ErrVersionConflict:
			return c.JSON(http.StatusConflict, echo.Map{"message": "manufacturer was modified concurrently, retry"})
		}
		c.Logger().Errorf("product delete: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted successfully"})
}
