package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/smm-webpanel/internal/model"
	"github.com/iliyamo/smm-webpanel/internal/utils"
)

// APIKeyLookup resolves a hashed API key to its owner.
type APIKeyLookup interface {
	GetByAPIKeyHash(ctx context.Context, hash string) (*model.User, error)
}

// APIKeyHeader carries the external API key; the api_key query parameter
// is accepted as well.
const APIKeyHeader = "X-API-Key"

// APIKeyAuth authenticates external API calls. The key owner becomes the
// caller, exactly as with JWTAuth.
func APIKeyAuth(users APIKeyLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.Request().Header.Get(APIKeyHeader)
			if key == "" {
				key = c.QueryParam("api_key")
			}
			if key == "" {
				return unauthorized(c, "API key required")
			}
			u, err := users.GetByAPIKeyHash(c.Request().Context(), utils.HashToken(key))
			if err != nil || !u.IsActive() {
				return unauthorized(c, "Invalid API key")
			}
			SetIdentity(c, u)
			return next(c)
		}
	}
}
