package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	inventoryapp "github.com/storefront/console/internal/application/inventory"
	"github.com/storefront/console/internal/domain/shared"
	"github.com/storefront/console/internal/interfaces/http/dto"
	"github.com/storefront/console/internal/interfaces/http/middleware"
)

// InventoryHandler handles stock API endpoints
type InventoryHandler struct {
	BaseHandler
	stock *inventoryapp.StockService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(stock *inventoryapp.StockService) *InventoryHandler {
	return &InventoryHandler{stock: stock}
}

// ListLowStock godoc
// @ID           listLowStock
// @Summary      List low-stock products
// @Description  Products the store reports as low on stock, each with its recomputed status
// @Tags         inventory
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Page size" default(10) maximum(100)
// @Success      200 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Router       /inventory/low-stock [get]
func (h *InventoryHandler) ListLowStock(c *gin.Context) {
	h.list(c, h.stock.ListLowStock)
}

// ListOutOfStock godoc
// @ID           listOutOfStock
// @Summary      List out-of-stock products
// @Tags         inventory
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Page size" default(10) maximum(100)
// @Success      200 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Router       /inventory/out-of-stock [get]
func (h *InventoryHandler) ListOutOfStock(c *gin.Context) {
	h.list(c, h.stock.ListOutOfStock)
}

func (h *InventoryHandler) list(c *gin.Context, fetch func(context.Context, shared.PageRequest) (*inventoryapp.Listing, error)) {
	var query dto.PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	listing, err := fetch(c.Request.Context(), shared.PageRequest{Page: query.Page, Limit: query.Limit})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, ListingResponse{
		Products:   listing.Products,
		Mismatched: listing.Mismatched,
	}, listing.TotalItems, listing.Page, listing.Limit, listing.TotalPages)
}

// UpdateStock godoc
// @ID           updateStock
// @Summary      Set product stock quantity
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body UpdateStockRequest true "New quantity"
// @Success      204
// @Failure      400 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Router       /inventory/{id}/stock [put]
func (h *InventoryHandler) UpdateStock(c *gin.Context) {
	var req UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	if err := h.stock.UpdateStock(c.Request.Context(), c.Param("id"), *req.Quantity, req.Reason); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UpdateThreshold godoc
// @ID           updateThreshold
// @Summary      Set product low-stock threshold
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body UpdateThresholdRequest true "New threshold"
// @Success      204
// @Failure      400 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Router       /inventory/{id}/threshold [put]
func (h *InventoryHandler) UpdateThreshold(c *gin.Context) {
	var req UpdateThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	if err := h.stock.UpdateThreshold(c.Request.Context(), c.Param("id"), *req.Threshold); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Classify godoc
// @ID           classifyStock
// @Summary      Classify stock records
// @Description  Recomputes the stock status of each submitted record without calling the store
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body ClassifyRequest true "Records"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Router       /inventory/classify [post]
func (h *InventoryHandler) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	records, err := req.StockRecords()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inventoryapp.ClassifyRecords(records))
}

// CreateProduct godoc
// @ID           createProduct
// @Summary      Create a product with stock settings
// @Description  Creates the product, then sets stock and threshold as separate calls.
// @Description  201 when every step succeeded, 207 when some did, 502 when the product was not created.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body CreateProductRequest true "Product"
// @Success      201 {object} dto.Response
// @Success      207 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Router       /inventory/products [post]
func (h *InventoryHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.stock.Provision(c.Request.Context(), req.ProvisionRequest())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	switch {
	case result.Complete():
		h.Created(c, result)
	case result.Committed():
		c.JSON(http.StatusMultiStatus, dto.NewSuccessResponse(result))
	default:
		resp := dto.NewErrorResponseWithRequestID(dto.ErrCodeRemote, "Product could not be created", getRequestID(c))
		resp.Data = result
		c.JSON(http.StatusBadGateway, resp)
	}
}
