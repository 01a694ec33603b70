package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apporder "github.com/vertinimas/portal/internal/application/order"
	"github.com/vertinimas/portal/internal/interfaces/http/dto"
	"github.com/vertinimas/portal/internal/interfaces/http/middleware"
)

// ReportFormField is the multipart field carrying the report PDF
const ReportFormField = "file"

// AdminOrderHandler serves order management for administrators
type AdminOrderHandler struct {
	BaseHandler
	orderService *apporder.Service
}

// NewAdminOrderHandler creates a new admin order handler
func NewAdminOrderHandler(orderService *apporder.Service) *AdminOrderHandler {
	return &AdminOrderHandler{orderService: orderService}
}

// List godoc
// @Summary      List all orders
// @Tags         admin-orders
// @Produce      json
// @Param        statusas   query string false "Status" Enums(nauja, vykdoma, atlikta, atsaukta)
// @Param        paslauga   query string false "Service"
// @Param        priskirta  query string false "Assigned valuator code"
// @Param        q          query string false "Search in number, name, email, address"
// @Param        from       query string false "Created from (YYYY-MM-DD)"
// @Param        to         query string false "Created to (YYYY-MM-DD)"
// @Param        page       query int    false "Page" default(1)
// @Param        page_size  query int    false "Page size" default(20)
// @Param        sort_by    query string false "Sort field"
// @Param        sort_order query string false "asc or desc"
// @Success      200 {object} ListResponse[apporder.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     CookieAuth
// @Security     BearerAuth
// @Router       /admin/orders [get]
func (h *AdminOrderHandler) List(c *gin.Context) {
	var q apporder.ListOrdersQuery
	if !h.bindQuery(c, &q) {
		return
	}

	page, err := h.orderService.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(page))
}

// Get godoc
// @Summary      Get an order
// @Tags         admin-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[apporder.OrderResponse]
// @Failure      404 {object} ErrorResponse
// @Security     CookieAuth
// @Security     BearerAuth
// @Router       /admin/orders/{id} [get]
func (h *AdminOrderHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	o, err := h.orderService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// Update godoc
// @Summary      Update an order
// @Description  Partially updates status, price, assignee, notes or address. Status transitions are validated.
// @Tags         admin-orders
// @Accept       json
// @Produce      json
// @Param        id      path string true "Order ID" format(uuid)
// @Param        request body apporder.UpdateOrderInput true "Changes"
// @Success      200 {object} APIResponse[apporder.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     CookieAuth
// @Security     BearerAuth
// @Router       /admin/orders/{id} [patch]
func (h *AdminOrderHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req apporder.UpdateOrderInput
	if !h.bindJSON(c, &req) {
		return
	}

	o, err := h.orderService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// Delete godoc
// @Summary      Delete an order
// @Description  Removes the order and its report file
// @Tags         admin-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[dto.DeletedResponse]
// @Failure      404 {object} ErrorResponse
// @Security     CookieAuth
// @Security     BearerAuth
// @Router       /admin/orders/{id} [delete]
func (h *AdminOrderHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.orderService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Deleted(c, id)
}

// UploadReport godoc
// @Summary      Upload the valuation report
// @Description  Attaches a PDF report to the order, replacing any previous file
// @Tags         admin-orders
// @Accept       multipart/form-data
// @Produce      json
// @Param        id   path     string true "Order ID" format(uuid)
// @Param        file formData file   true "Report PDF"
// @Success      200 {object} APIResponse[apporder.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Security     CookieAuth
// @Security     BearerAuth
// @Router       /admin/orders/{id}/report [post]
func (h *AdminOrderHandler) UploadReport(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	fh, err := c.FormFile(ReportFormField)
	if err != nil {
		if details := uploadErrorDetails(c, err); details != nil {
			h.ValidationError(c, details)
			return
		}
		h.HandleError(c, err)
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer f.Close()

	o, err := h.orderService.UploadReport(c.Request.Context(), id, apporder.UploadReportInput{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	}, f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// uploadErrorDetails reports a missing file field. Oversized bodies are left
// to HandleError.
func uploadErrorDetails(c *gin.Context, err error) []dto.ValidationDetail {
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		msg := middleware.Message(c, "validation.required", dto.ErrCodeValidation, "This field is required")
		return []dto.ValidationDetail{{Field: ReportFormField, Message: msg}}
	}
	return nil
}
