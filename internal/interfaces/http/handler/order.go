package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apporder "github.com/vertinimas/portal/internal/application/order"
	"github.com/vertinimas/portal/internal/interfaces/http/dto"
)

// OrderHandler serves the client's own valuation orders
type OrderHandler struct {
	BaseHandler
	orderService *apporder.Service
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *apporder.Service) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Create godoc
// @Summary      Order a valuation
// @Description  Creates a new order for the signed-in client. The address is geocoded when possible.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body apporder.CreateOrderInput true "Order"
// @Success      201 {object} APIResponse[apporder.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     CookieAuth
// @Security     BearerAuth
// @Router       /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	var req apporder.CreateOrderInput
	if !h.bindJSON(c, &req) {
		return
	}

	o, err := h.orderService.CreateOrder(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, o)
}

// List godoc
// @Summary      List own orders
// @Tags         orders
// @Produce      json
// @Param        statusas   query string false "Status" Enums(nauja, vykdoma, atlikta, atsaukta)
// @Param        paslauga   query string false "Service"
// @Param        q          query string false "Search"
// @Param        from       query string false "Created from (YYYY-MM-DD)"
// @Param        to         query string false "Created to (YYYY-MM-DD)"
// @Param        page       query int    false "Page" default(1)
// @Param        page_size  query int    false "Page size" default(20)
// @Param        sort_by    query string false "Sort field"
// @Param        sort_order query string false "asc or desc"
// @Success      200 {object} ListResponse[apporder.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     CookieAuth
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	var q apporder.ListOrdersQuery
	if !h.bindQuery(c, &q) {
		return
	}

	page, err := h.orderService.ListMyOrders(c.Request.Context(), userID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(page))
}

// Get godoc
// @Summary      Get own order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[apporder.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     CookieAuth
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	o, err := h.orderService.GetMyOrder(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// ReportLink godoc
// @Summary      Download link for the valuation report
// @Description  Returns a short-lived presigned link to the uploaded PDF report
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[apporder.ReportLink]
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     CookieAuth
// @Security     BearerAuth
// @Router       /orders/{id}/report [get]
func (h *OrderHandler) ReportLink(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	link, err := h.orderService.GetReportLink(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, link)
}
