package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/smm-webpanel/internal/model"
)

// RequireRole returns a middleware that only admits callers whose role
// is one of roles. It must run after JWTAuth or APIKeyAuth.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := UserID(c); !ok {
				return unauthorized(c, "Authentication required")
			}
			if !allowed[Role(c)] {
				return deny(c, http.StatusForbidden, "Insufficient permissions")
			}
			return next(c)
		}
	}
}
