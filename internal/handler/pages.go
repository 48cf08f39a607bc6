package handler

import (
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
)

// Pages maps browser routes to the HTML files under the public directory.
var Pages = map[string]string{
	"/":                "index.html",
	"/login":           "login.html",
	"/register":        "register.html",
	"/dashboard":       "dashboard.html",
	"/orders":          "orders.html",
	"/services":        "services.html",
	"/balance":         "balance.html",
	"/tickets":         "tickets.html",
	"/profile":         "profile.html",
	"/seller/orders":   "seller-orders.html",
	"/seller/services": "seller-services.html",
	"/admin":           "admin-dashboard.html",
	"/admin/users":     "admin-users.html",
	"/admin/settings":  "admin-settings.html",
	"/admin/logs":      "admin-logs.html",
}

// Page serves one file from dir. A missing file surfaces as 404 through
// the error handler.
func Page(dir, file string) echo.HandlerFunc {
	path := filepath.Join(dir, file)
	return func(c echo.Context) error {
		if err := c.File(path); err != nil {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return nil
	}
}

// Health is used by load balancers to check the process is up.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
