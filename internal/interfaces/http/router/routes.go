package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/vertinimas/portal/internal/interfaces/http/handler"
)

// ReportUploadPath is the full path of the report upload route. The server
// gives it a larger body limit than the rest of the API.
const ReportUploadPath = "/api/admin/orders/:id/report"

// Handlers are the HTTP handlers mounted under /api
type Handlers struct {
	Auth       *handler.AuthHandler
	Order      *handler.OrderHandler
	AdminOrder *handler.AdminOrderHandler
	Valuator   *handler.ValuatorHandler
	Client     *handler.ClientHandler
	Report     *handler.ReportHandler
	Geocode    *handler.GeocodeHandler
}

// Guards are the access-control middleware of the route tree
type Guards struct {
	// Authenticated rejects requests without a valid session
	Authenticated gin.HandlerFunc
	// Admin rejects non-administrators; it runs after Authenticated
	Admin gin.HandlerFunc
	// AuthRateLimit throttles register and login; nil disables it
	AuthRateLimit gin.HandlerFunc
}

// APIGroups builds the route groups of the portal API
func APIGroups(h Handlers, g Guards) []RouteRegistrar {
	auth := NewDomainGroup("auth", "/auth")
	auth.Group("auth-public", "").
		Use(g.AuthRateLimit).
		POST("/register", h.Auth.Register).
		POST("/login", h.Auth.Login)
	auth.Group("auth-session", "").
		Use(g.Authenticated).
		POST("/logout", h.Auth.Logout).
		GET("/me", h.Auth.Me).
		PATCH("/me", h.Auth.UpdateMe).
		PUT("/password", h.Auth.ChangePassword)

	orders := NewDomainGroup("orders", "/orders").
		Use(g.Authenticated).
		POST("", h.Order.Create).
		GET("", h.Order.List).
		GET("/:id", h.Order.Get).
		GET("/:id/report", h.Order.ReportLink)

	geocode := NewDomainGroup("geocode", "/geocode").
		Use(g.Authenticated).
		GET("", h.Geocode.Geocode)

	admin := NewDomainGroup("admin", "/admin").Use(g.Authenticated, g.Admin)
	admin.Group("admin-orders", "/orders").
		GET("", h.AdminOrder.List).
		GET("/:id", h.AdminOrder.Get).
		PATCH("/:id", h.AdminOrder.Update).
		DELETE("/:id", h.AdminOrder.Delete).
		POST("/:id/report", h.AdminOrder.UploadReport)
	admin.Group("admin-valuators", "/valuators").
		GET("", h.Valuator.List).
		POST("", h.Valuator.Create).
		GET("/:id", h.Valuator.Get).
		PATCH("/:id", h.Valuator.Update).
		DELETE("/:id", h.Valuator.Delete)
	admin.Group("admin-clients", "/clients").
		GET("", h.Client.List).
		GET("/:id", h.Client.Get).
		PATCH("/:id", h.Client.Update).
		DELETE("/:id", h.Client.Delete)
	admin.Group("admin-reports", "/reports").
		GET("/overview", h.Report.Overview).
		GET("/revenue", h.Report.Revenue).
		GET("/valuators", h.Report.Valuators).
		GET("/services", h.Report.Services).
		GET("/export", h.Report.Export)

	return []RouteRegistrar{auth, orders, geocode, admin}
}

// RegisterSystemRoutes mounts the routes outside /api
func RegisterSystemRoutes(engine *gin.Engine, health *handler.HealthHandler, swaggerEnabled bool) {
	engine.GET("/health", health.Health)
	if swaggerEnabled {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
}
