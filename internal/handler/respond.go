package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/smm-webpanel/internal/middleware"
	"github.com/iliyamo/smm-webpanel/internal/model"
)

// dbTimeout bounds the database work of a single request.
const dbTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{"success": false, "message": message})
}

// ok writes a success envelope; body keys are merged next to "success".
func ok(c echo.Context, status int, body echo.Map) error {
	if body == nil {
		body = echo.Map{}
	}
	body["success"] = true
	return c.JSON(status, body)
}

// serverError logs err with the request context and answers a generic 500.
func serverError(c echo.Context, log *logrus.Logger, err error, op string) error {
	entry := log.WithError(err).WithFields(logrus.Fields{
		"op":         op,
		"path":       c.Request().URL.Path,
		"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
	})
	if id, ok := middleware.UserID(c); ok {
		entry = entry.WithField("user_id", id)
	}
	entry.Error("request failed")
	return fail(c, http.StatusInternalServerError, "Server error")
}

func pageFrom(c echo.Context) model.Page {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return model.NewPage(page, limit)
}

func paramID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func queryUint(c echo.Context, name string) uint64 {
	n, _ := strconv.ParseUint(c.QueryParam(name), 10, 64)
	return n
}

// caller returns the authenticated user id and role.
func caller(c echo.Context) (uint64, model.Role) {
	id, _ := middleware.UserID(c)
	return id, middleware.Role(c)
}
