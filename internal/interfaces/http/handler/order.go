package handler

import (
	"github.com/gin-gonic/gin"
	orderapp "github.com/storefront/console/internal/application/order"
	"github.com/storefront/console/internal/domain/order"
	"github.com/storefront/console/internal/interfaces/http/middleware"
)

// OrderHandler handles order API endpoints
type OrderHandler struct {
	BaseHandler
	queries    *orderapp.QueryService
	controller *orderapp.StatusController
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(queries *orderapp.QueryService, controller *orderapp.StatusController) *OrderHandler {
	return &OrderHandler{
		queries:    queries,
		controller: controller,
	}
}

// List godoc
// @ID           listOrders
// @Summary      List orders
// @Description  Retrieve one page of orders from the store, optionally filtered
// @Tags         orders
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Page size" default(10) maximum(100)
// @Param        status query string false "Order status"
// @Param        startDate query string false "Placed on or after (YYYY-MM-DD)"
// @Param        endDate query string false "Placed on or before (YYYY-MM-DD)"
// @Param        search query string false "Search term"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var query OrderListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	filter := query.Filter()
	page, err := h.queries.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, newOrderResponses(page.Orders), page.TotalItems, page.Page, page.Limit, page.TotalPages)
}

// Get godoc
// @ID           getOrder
// @Summary      Get order by ID
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.queries.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, newOrderResponse(o))
}

// Statuses godoc
// @ID           listOrderStatuses
// @Summary      List order statuses
// @Description  Every order status in lifecycle order with its label and allowed next statuses
// @Tags         orders
// @Produce      json
// @Success      200 {object} dto.Response
// @Router       /orders/statuses [get]
func (h *OrderHandler) Statuses(c *gin.Context) {
	h.Success(c, statusOptions())
}

// Transitions godoc
// @ID           getOrderTransitions
// @Summary      List allowed status changes
// @Description  Reads the order fresh from the store and returns the statuses it may move to
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /orders/{id}/transitions [get]
func (h *OrderHandler) Transitions(c *gin.Context) {
	t, err := h.queries.AvailableTransitions(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := OrderTransitionsResponse{
		OrderID:  t.OrderID,
		Current:  optionOf(t.Current),
		Allowed:  make([]TransitionOption, 0, len(t.Allowed)),
		Terminal: t.Current.IsTerminal(),
	}
	for _, s := range t.Allowed {
		resp.Allowed = append(resp.Allowed, optionOf(s))
	}
	h.Success(c, resp)
}

// UpdateStatus godoc
// @ID           updateOrderStatus
// @Summary      Change order status
// @Description  Validates the transition locally, then issues one status update to the store
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        request body UpdateOrderStatusRequest true "Target status"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Router       /orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	status, _ := order.ParseStatus(req.Status)
	updated, err := h.controller.ChangeStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, newOrderResponse(updated))
}
