// Package router wires handlers and middleware onto the echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/smm-webpanel/internal/config"
	"github.com/iliyamo/smm-webpanel/internal/handler"
	"github.com/iliyamo/smm-webpanel/internal/middleware"
)

// Directory resolves users for both JWT and API key authentication.
type Directory interface {
	middleware.UserLookup
	middleware.APIKeyLookup
}

// Handlers groups every HTTP handler the panel exposes.
type Handlers struct {
	Auth         *handler.AuthHandler
	Users        *handler.UserHandler
	Catalog      *handler.CatalogHandler
	Orders       *handler.OrderHandler
	Transactions *handler.TransactionHandler
	Tickets      *handler.TicketHandler
	Admin        *handler.AdminHandler
	External     *handler.ExternalHandler
	Dashboard    *handler.DashboardHandler
}

// Options carries what the middleware chain needs. A nil Redis client
// turns rate limiting and caching off.
type Options struct {
	JWTSecret string
	Users     Directory
	Redis     *redis.Client
	APILimit  config.RateLimitConfig
	AuthLimit config.RateLimitConfig
	Cache     config.CacheConfig
	PublicDir string
}

// authn bundles the auth middlewares built from Options.
type authn struct {
	jwt      echo.MiddlewareFunc
	optional echo.MiddlewareFunc
	apiKey   echo.MiddlewareFunc
}

// Register mounts the API under /api, the health check and the HTML pages.
func Register(e *echo.Echo, h Handlers, opts Options) {
	RegisterRoutes(e, opts.PublicDir)

	a := authn{
		jwt:      middleware.JWTAuth(opts.JWTSecret, opts.Users),
		optional: middleware.OptionalJWT(opts.JWTSecret, opts.Users),
		apiKey:   middleware.APIKeyAuth(opts.Users),
	}
	api := e.Group("/api", middleware.RateLimit(opts.APILimit, opts.Redis))

	RegisterAuth(api, h.Auth, a, middleware.RateLimit(opts.AuthLimit, opts.Redis))
	RegisterAccount(api, h, a)
	RegisterCatalog(api, h.Catalog, a,
		middleware.ResponseCache(opts.Cache, opts.Redis),
		middleware.PurgeCache(opts.Cache, opts.Redis))
	RegisterAdmin(api, h.Admin, a)
	RegisterExternal(api, h.External, a)
}

// RegisterRoutes registers the routes that need no authentication: the
// health check, the page routes and the static files behind them.
func RegisterRoutes(e *echo.Echo, publicDir string) {
	e.GET("/healthz", handler.Health)
	for path, file := range handler.Pages {
		e.GET(path, handler.Page(publicDir, file))
	}
	e.Static("/", publicDir)
}

// RegisterAuth mounts /api/auth. Credential endpoints sit behind the
// stricter auth limiter.
func RegisterAuth(api *echo.Group, h *handler.AuthHandler, a authn, limit echo.MiddlewareFunc) {
	g := api.Group("/auth")
	g.POST("/register", h.Register, limit)
	g.POST("/login", h.Login, limit)
	g.POST("/forgot-password", h.ForgotPassword, limit)
	g.POST("/reset-password", h.ResetPassword, limit)
	g.GET("/me", h.Me, a.jwt)
}
