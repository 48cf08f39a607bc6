package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/smm-webpanel/internal/middleware"
	"github.com/iliyamo/smm-webpanel/internal/model"
)

var (
	clientOnly = middleware.RequireRole(model.RoleClient)
	staffOnly  = middleware.RequireRole(model.RoleSeller, model.RoleAdmin)
	adminOnly  = middleware.RequireRole(model.RoleAdmin)
)

// RegisterAccount mounts the endpoints of a signed-in user: profile,
// orders, balance, tickets and the dashboard. Role checks are per route.
func RegisterAccount(api *echo.Group, h Handlers, a authn) {
	users := api.Group("/users", a.jwt)
	users.GET("/profile", h.Users.Profile)
	users.PUT("/profile", h.Users.UpdateProfile)
	users.PUT("/password", h.Users.ChangePassword)
	users.POST("/api-key", h.Users.GenerateAPIKey)
	users.GET("", h.Users.List, adminOnly)
	users.PATCH("/:id/status", h.Users.UpdateStatus, adminOnly)

	orders := api.Group("/orders", a.jwt)
	orders.POST("", h.Orders.Create, clientOnly)
	orders.GET("", h.Orders.List)
	orders.GET("/:id", h.Orders.Get)
	orders.PATCH("/:id/status", h.Orders.UpdateStatus, staffOnly)

	txs := api.Group("/transactions", a.jwt)
	txs.GET("", h.Transactions.List)
	txs.POST("/deposit", h.Transactions.Deposit, clientOnly)
	txs.POST("/admin/adjust", h.Transactions.Adjust, adminOnly)

	tickets := api.Group("/tickets", a.jwt)
	tickets.GET("", h.Tickets.List)
	tickets.GET("/:id", h.Tickets.Get)
	tickets.POST("", h.Tickets.Create, clientOnly)
	tickets.POST("/:id/messages", h.Tickets.Reply)
	tickets.PATCH("/:id/status", h.Tickets.UpdateStatus, staffOnly)

	dash := api.Group("/dashboard", a.jwt)
	dash.GET("/stats", h.Dashboard.Stats)
	dash.GET("/recent-orders", h.Dashboard.RecentOrders)
}
