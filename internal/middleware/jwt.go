package middleware // middleware provides the shared request processing for handlers

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/smm-webpanel/internal/model"
	"github.com/iliyamo/smm-webpanel/internal/utils"
)

// UserLookup loads the account behind a token.
type UserLookup interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// bearerToken reads the token from the Authorization header, falling back
// to the "token" cookie set by the web pages.
func bearerToken(c echo.Context) string {
	if auth := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if ck, err := c.Cookie("token"); err == nil {
		return ck.Value
	}
	return ""
}

// authenticate verifies the token and reloads the user so bans and role
// changes apply to tokens issued earlier.
func authenticate(c echo.Context, secret string, users UserLookup, raw string) (*model.User, string) {
	id, _, err := utils.ParseAccessToken(secret, raw)
	if err != nil {
		return nil, "Invalid or expired token"
	}
	u, err := users.GetByID(c.Request().Context(), id)
	if err != nil || !u.IsActive() {
		return nil, "User not found or inactive"
	}
	return u, ""
}

// JWTAuth rejects requests without a valid access token for an active
// user. On success handlers can read the caller via UserID, Role and
// CurrentUser.
func JWTAuth(secret string, users UserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c)
			if raw == "" {
				return unauthorized(c, "Authentication required")
			}
			u, msg := authenticate(c, secret, users, raw)
			if u == nil {
				return unauthorized(c, msg)
			}
			SetIdentity(c, u)
			return next(c)
		}
	}
}

// OptionalJWT identifies the caller when a valid token is present and
// otherwise lets the request through as a guest.
func OptionalJWT(secret string, users UserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw := bearerToken(c); raw != "" {
				if u, _ := authenticate(c, secret, users, raw); u != nil {
					SetIdentity(c, u)
				}
			}
			return next(c)
		}
	}
}
