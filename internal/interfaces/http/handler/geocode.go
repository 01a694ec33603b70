package handler

import (
	"github.com/gin-gonic/gin"

	appgeocode "github.com/vertinimas/portal/internal/application/geocode"
	"github.com/vertinimas/portal/internal/domain/geo"
)

// GeocodeQuery is the address lookup request
type GeocodeQuery struct {
	Address string `form:"address" binding:"required,max=300"`
}

// GeocodeHandler resolves addresses typed into the order form
type GeocodeHandler struct {
	BaseHandler
	geocodeService *appgeocode.Service
}

// NewGeocodeHandler creates a new geocode handler
func NewGeocodeHandler(geocodeService *appgeocode.Service) *GeocodeHandler {
	return &GeocodeHandler{geocodeService: geocodeService}
}

// Geocode godoc
// @Summary      Look up an address
// @Tags         geocode
// @Produce      json
// @Param        address query string true "Free-text address"
// @Success      200 {object} APIResponse[geo.Location]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     CookieAuth
// @Security     BearerAuth
// @Router       /geocode [get]
func (h *GeocodeHandler) Geocode(c *gin.Context) {
	var q GeocodeQuery
	if !h.bindQuery(c, &q) {
		return
	}

	var (
		loc *geo.Location
		err error
	)
	loc, err = h.geocodeService.Geocode(c.Request.Context(), q.Address)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, loc)
}
