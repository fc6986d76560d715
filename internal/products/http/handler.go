package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"product-inventory/internal/products"

	"github.com/gin-gonic/gin"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

const (
	msgInvalidData      = "Invalid data"
	msgDuplicateArticle = "Article already exists"
	msgNotFound         = "Product not found"
	msgServerError      = "Server error"
)

type ProductService interface {
	CreateProduct(ctx context.Context, in products.Input) (products.Product, error)
	GetProduct(ctx context.Context, id int64) (products.Product, error)
	UpdateProduct(ctx context.Context, id int64, in products.Input) (products.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListProducts(ctx context.Context, page, limit int) ([]products.Product, int64, error)
}

type Handler struct {
	service ProductService
	logger  *slog.Logger
}

func NewHandler(svc ProductService, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

type errorResponse struct {
	Message string `json:"message" example:"Product not found"`
}

type listProductsResponse struct {
	Data  []products.Product `json:"data"`
	Total int64              `json:"total" example:"42"`
}

// ListProducts godoc
// @Summary      List products with pagination
// @Tags         products
// @Produce      json
// @Param        page   query     int  false  "Page number"   default(1)
// @Param        limit  query     int  false  "Items per page" default(10)
// @Success      200    {object}  listProductsResponse
// @Failure      500    {object}  errorResponse
// @Router       /products [get]
func (h *Handler) ListProducts(c *gin.Context) {
	page := parseQueryInt(c.Query("page"), defaultPage)
	limit := parseQueryInt(c.Query("limit"), defaultLimit)

	items, total, err := h.service.ListProducts(c.Request.Context(), page, limit)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, listProductsResponse{
		Data:  items,
		Total: total,
	})
}

// GetProduct godoc
// @Summary      Get a product by ID
// @Tags         products
// @Produce      json
// @Param        id   path      int  true  "Product ID"
// @Success      200  {object}  products.Product
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /products/{id} [get]
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	product, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// CreateProduct godoc
// @Summary      Create a new product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body  body      products.Input  true  "Product data"
// @Success      201   {object}  products.Product
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /products [post]
func (h *Handler) CreateProduct(c *gin.Context) {
	var req products.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Message: msgInvalidData})
		return
	}

	product, err := h.service.CreateProduct(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// UpdateProduct godoc
// @Summary      Update a product by ID
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path      int             true  "Product ID"
// @Param        body  body      products.Input  true  "Product data"
// @Success      200   {object}  products.Product
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /products/{id} [put]
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req products.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		// A missing product outranks a bad body.
		if _, getErr := h.service.GetProduct(c.Request.Context(), id); getErr != nil {
			h.writeError(c, getErr)
			return
		}
		c.JSON(http.StatusBadRequest, errorResponse{Message: msgInvalidData})
		return
	}

	product, err := h.service.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct godoc
// @Summary      Delete a product by ID
// @Tags         products
// @Produce      json
// @Param        id   path      int  true  "Product ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /products/{id} [delete]
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// writeError maps domain errors to responses. Anything unrecognised is
// logged and hidden behind a generic 500.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, products.ErrInvalidData):
		c.JSON(http.StatusBadRequest, errorResponse{Message: msgInvalidData})
	case errors.Is(err, products.ErrDuplicateArticle):
		c.JSON(http.StatusBadRequest, errorResponse{Message: msgDuplicateArticle})
	case errors.Is(err, products.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Message: msgNotFound})
	default:
		requestID, _ := c.Get(requestIDHeader)
		h.logger.Error("request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"request_id", requestID,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, errorResponse{Message: msgServerError})
	}
}

// parseID writes a 404 for ids that cannot name a row.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, errorResponse{Message: msgNotFound})
		return 0, false
	}
	return id, true
}

func parseQueryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
