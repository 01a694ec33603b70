package handler

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	appreport "github.com/vertinimas/portal/internal/application/report"
)

// ReportHandler serves the admin statistics and their exports
type ReportHandler struct {
	BaseHandler
	reportService *appreport.Service
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *appreport.Service) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Overview godoc
// @Summary      Order overview
// @Description  Order counts by status, completion rate, new clients and a time series
// @Tags         admin-reports
// @Produce      json
// @Param        preset query string false "Date range" Enums(today, week, month, year, custom) default(month)
// @Param        from   query string false "Custom range start (YYYY-MM-DD)"
// @Param        to     query string false "Custom range end (YYYY-MM-DD)"
// @Param        granularity query string false "Series bucket width" Enums(day, week, month)
// @Success      200 {object} APIResponse[appreport.Overview]
// @Failure      400 {object} ErrorResponse
// @Security     CookieAuth
// @Security     BearerAuth
// @Router       /admin/reports/overview [get]
func (h *ReportHandler) Overview(c *gin.Context) {
	var q appreport.Query
	if !h.bindQuery(c, &q) {
		return
	}

	out, err := h.reportService.Overview(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, out)
}

// Revenue godoc
// @Summary      Revenue
// @Description  Income from completed orders with a price, per bucket and per service
// @Tags         admin-reports
// @Produce      json
// @Param        preset query string false "Date range" Enums(today, week, month, year, custom) default(month)
// @Param        from   query string false "Custom range start (YYYY-MM-DD)"
// @Param        to     query string false "Custom range end (YYYY-MM-DD)"
// @Param        granularity query string false "Series bucket width" Enums(day, week, month)
// @Success      200 {object} APIResponse[appreport.Revenue]
// @Failure      400 {object} ErrorResponse
// @Security     CookieAuth
// @Security     BearerAuth
// @Router       /admin/reports/revenue [get]
func (h *ReportHandler) Revenue(c *gin.Context) {
	var q appreport.Query
	if !h.bindQuery(c, &q) {
		return
	}

	out, err := h.reportService.Revenue(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, out)
}

// Valuators godoc
// @Summary      Valuator workload
// @Tags         admin-reports
// @Produce      json
// @Param        preset query string false "Date range" Enums(today, week, month, year, custom) default(month)
// @Param        from   query string false "Custom range start (YYYY-MM-DD)"
// @Param        to     query string false "Custom range end (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[appreport.Valuators]
// @Failure      400 {object} ErrorResponse
// @Security     CookieAuth
// @Security     BearerAuth
// @Router       /admin/reports/valuators [get]
func (h *ReportHandler) Valuators(c *gin.Context) {
	var q appreport.Query
	if !h.bindQuery(c, &q) {
		return
	}

	out, err := h.reportService.Valuators(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, out)
}

// Services godoc
// @Summary      Service demand
// @Tags         admin-reports
// @Produce      json
// @Param        preset query string false "Date range" Enums(today, week, month, year, custom) default(month)
// @Param        from   query string false "Custom range start (YYYY-MM-DD)"
// @Param        to     query string false "Custom range end (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[appreport.Services]
// @Failure      400 {object} ErrorResponse
// @Security     CookieAuth
// @Security     BearerAuth
// @Router       /admin/reports/services [get]
func (h *ReportHandler) Services(c *gin.Context) {
	var q appreport.Query
	if !h.bindQuery(c, &q) {
		return
	}

	out, err := h.reportService.Services(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, out)
}

// Export godoc
// @Summary      Export a report
// @Description  Downloads one report as CSV or PDF
// @Tags         admin-reports
// @Produce      text/csv
// @Produce      application/pdf
// @Param        report query string true  "Report" Enums(overview, revenue, valuators, services)
// @Param        format query string false "File format" Enums(csv, pdf) default(csv)
// @Param        preset query string false "Date range" Enums(today, week, month, year, custom) default(month)
// @Param        from   query string false "Custom range start (YYYY-MM-DD)"
// @Param        to     query string false "Custom range end (YYYY-MM-DD)"
// @Success      200 {file} file
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     CookieAuth
// @Security     BearerAuth
// @Router       /admin/reports/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	var q appreport.ExportQuery
	if !h.bindQuery(c, &q) {
		return
	}

	out, err := h.reportService.Export(c.Request.Context(), q.Report, q.Format, q.Query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": out.Filename}))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, out.ContentType, out.Data)
}
