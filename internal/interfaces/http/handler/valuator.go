package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appvaluator "github.com/vertinimas/portal/internal/application/valuator"
	"github.com/vertinimas/portal/internal/interfaces/http/dto"
)

// ValuatorHandler manages the valuator directory
type ValuatorHandler struct {
	BaseHandler
	valuatorService *appvaluator.Service
}

// NewValuatorHandler creates a new valuator handler
func NewValuatorHandler(valuatorService *appvaluator.Service) *ValuatorHandler {
	return &ValuatorHandler{valuatorService: valuatorService}
}

// List godoc
// @Summary      List valuators
// @Tags         admin-valuators
// @Produce      json
// @Param        q         query string false "Search in code, name, email"
// @Param        active    query bool   false "Only active or inactive"
// @Param        page      query int    false "Page" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} ListResponse[appvaluator.ValuatorResponse]
// @Failure      400 {object} ErrorResponse
// @Security     CookieAuth
// @Security     BearerAuth
// @Router       /admin/valuators [get]
func (h *ValuatorHandler) List(c *gin.Context) {
	var q appvaluator.ListValuatorsQuery
	if !h.bindQuery(c, &q) {
		return
	}

	page, err := h.valuatorService.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(page))
}

// Create godoc
// @Summary      Add a valuator
// @Tags         admin-valuators
// @Accept       json
// @Produce      json
// @Param        request body appvaluator.CreateValuatorInput true "Valuator"
// @Success      201 {object} APIResponse[appvaluator.ValuatorResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     CookieAuth
// @Security     BearerAuth
// @Router       /admin/valuators [post]
func (h *ValuatorHandler) Create(c *gin.Context) {
	var req appvaluator.CreateValuatorInput
	if !h.bindJSON(c, &req) {
		return
	}

	v, err := h.valuatorService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, v)
}

// Get godoc
// @Summary      Get a valuator
// @Tags         admin-valuators
// @Produce      json
// @Param        id path string true "Valuator ID" format(uuid)
// @Success      200 {object} APIResponse[appvaluator.ValuatorResponse]
// @Failure      404 {object} ErrorResponse
// @Security     CookieAuth
// @Security     BearerAuth
// @Router       /admin/valuators/{id} [get]
func (h *ValuatorHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	v, err := h.valuatorService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, v)
}

// Update godoc
// @Summary      Update a valuator
// @Tags         admin-valuators
// @Accept       json
// @Produce      json
// @Param        id      path string true "Valuator ID" format(uuid)
// @Param        request body appvaluator.UpdateValuatorInput true "Changes"
// @Success      200 {object} APIResponse[appvaluator.ValuatorResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     CookieAuth
// @Security     BearerAuth
// @Router       /admin/valuators/{id} [patch]
func (h *ValuatorHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req appvaluator.UpdateValuatorInput
	if !h.bindJSON(c, &req) {
		return
	}

	v, err := h.valuatorService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, v)
}

// Delete godoc
// @Summary      Delete a valuator
// @Description  Only valuators without assigned orders can be deleted
// @Tags         admin-valuators
// @Produce      json
// @Param        id path string true "Valuator ID" format(uuid)
// @Success      200 {object} APIResponse[dto.DeletedResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     CookieAuth
// @Security     BearerAuth
// @Router       /admin/valuators/{id} [delete]
func (h *ValuatorHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.valuatorService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Deleted(c, id)
}
