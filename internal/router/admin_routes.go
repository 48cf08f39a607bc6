package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/smm-webpanel/internal/handler"
)

// RegisterAdmin mounts /api/admin. Every route needs an admin token.
func RegisterAdmin(api *echo.Group, h *handler.AdminHandler, a authn) {
	g := api.Group("/admin", a.jwt, adminOnly)
	g.GET("/settings", h.GetSettings)
	g.PUT("/settings", h.UpdateSettings)
	g.GET("/logs/login", h.LoginLogs)
	g.GET("/logs/api", h.APILogs)
	g.GET("/logs/orders", h.OrderLogs)
	g.GET("/export/orders", h.ExportOrders)
	g.GET("/coupons", h.ListCoupons)
	g.POST("/coupons", h.CreateCoupon)
	g.PATCH("/coupons/:id/status", h.UpdateCouponStatus)
}

// RegisterExternal mounts the API key authenticated endpoints. Each call,
// failed or not, is recorded in api_logs.
func RegisterExternal(api *echo.Group, h *handler.ExternalHandler, a authn) {
	g := api.Group("/external", echomw.BodyDump(h.Record), a.apiKey)
	g.POST("/order", h.CreateOrder)
	g.GET("/order/:id", h.GetOrder)
	g.POST("/order/:id/status", h.UpdateOrderStatus, staffOnly)
	g.POST("/services/sync", h.SyncServices, adminOnly)
}
