package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/smm-webpanel/internal/handler"
)

// RegisterCatalog mounts services and categories. Reads are public and
// cached per role; writes need a seller or admin and purge the cache.
func RegisterCatalog(api *echo.Group, h *handler.CatalogHandler, a authn, cache, purge echo.MiddlewareFunc) {
	services := api.Group("/services")
	services.GET("", h.ListServices, a.optional, cache)
	services.GET("/:id", h.GetService, a.optional, cache)
	services.POST("", h.CreateService, a.jwt, staffOnly, purge)
	services.PUT("/:id", h.UpdateService, a.jwt, staffOnly, purge)
	services.DELETE("/:id", h.DeleteService, a.jwt, staffOnly, purge)

	categories := api.Group("/categories")
	categories.GET("", h.ListCategories, a.optional, cache)
	categories.GET("/:id", h.GetCategory, a.optional, cache)
	categories.POST("", h.CreateCategory, a.jwt, staffOnly, purge)
	categories.PUT("/:id", h.UpdateCategory, a.jwt, staffOnly, purge)
	categories.DELETE("/:id", h.DeleteCategory, a.jwt, staffOnly, purge)
}
