package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appclient "github.com/vertinimas/portal/internal/application/client"
	"github.com/vertinimas/portal/internal/interfaces/http/dto"
)

// ClientHandler lets administrators manage client accounts
type ClientHandler struct {
	BaseHandler
	clientService *appclient.Service
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService *appclient.Service) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// List godoc
// @Summary      List clients
// @Tags         admin-clients
// @Produce      json
// @Param        q          query string false "Search in email, name, company"
// @Param        status     query string false "Account status" Enums(active, disabled)
// @Param        page       query int    false "Page" default(1)
// @Param        page_size  query int    false "Page size" default(20)
// @Param        sort_by    query string false "Sort field"
// @Param        sort_order query string false "asc or desc"
// @Success      200 {object} ListResponse[appclient.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Security     CookieAuth
// @Security     BearerAuth
// @Router       /admin/clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	var q appclient.ListClientsQuery
	if !h.bindQuery(c, &q) {
		return
	}

	page, err := h.clientService.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(page))
}

// Get godoc
// @Summary      Get a client
// @Tags         admin-clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} APIResponse[appclient.ClientResponse]
// @Failure      404 {object} ErrorResponse
// @Security     CookieAuth
// @Security     BearerAuth
// @Router       /admin/clients/{id} [get]
func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	cl, err := h.clientService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cl)
}

// Update godoc
// @Summary      Update a client
// @Description  Edits profile fields or disables the account. Disabling ends its sessions.
// @Tags         admin-clients
// @Accept       json
// @Produce      json
// @Param        id      path string true "Client ID" format(uuid)
// @Param        request body appclient.UpdateClientInput true "Changes"
// @Success      200 {object} APIResponse[appclient.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     CookieAuth
// @Security     BearerAuth
// @Router       /admin/clients/{id} [patch]
func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req appclient.UpdateClientInput
	if !h.bindJSON(c, &req) {
		return
	}

	cl, err := h.clientService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cl)
}

// Delete godoc
// @Summary      Delete a client
// @Description  Only clients without orders can be deleted
// @Tags         admin-clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} APIResponse[dto.DeletedResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     CookieAuth
// @Security     BearerAuth
// @Router       /admin/clients/{id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.clientService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Deleted(c, id)
}
