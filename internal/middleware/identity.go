package middleware

// identity.go holds the context keys set by the auth middleware and the
// accessors handlers use to read them.

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/smm-webpanel/internal/model"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
	ctxUser   = "user"
)

// SetIdentity stores the authenticated user on the context.
func SetIdentity(c echo.Context, u *model.User) {
	c.Set(ctxUserID, u.ID)
	c.Set(ctxRole, u.Role)
	c.Set(ctxUser, u)
}

// UserID returns the authenticated user's id.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ctxUserID).(uint64)
	return id, ok && id > 0
}

// Role returns the authenticated user's role, or "" for guests.
func Role(c echo.Context) model.Role {
	r, _ := c.Get(ctxRole).(model.Role)
	return r
}

// CurrentUser returns the user loaded by the auth middleware, if any.
func CurrentUser(c echo.Context) *model.User {
	u, _ := c.Get(ctxUser).(*model.User)
	return u
}

// userKey identifies the caller for rate limiting; guests share "anon".
func userKey(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}

func deny(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{"success": false, "message": message})
}

func unauthorized(c echo.Context, message string) error {
	return deny(c, http.StatusUnauthorized, message)
}
