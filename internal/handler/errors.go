package handler

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// ErrorHandler renders every error that escapes a handler or middleware as
// the usual {success:false, message} envelope. Unknown pages outside /api
// get the 404.html page instead.
func ErrorHandler(log *logrus.Logger, publicDir string) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var ve *ValidationError
		if errors.As(err, &ve) {
			_ = c.JSON(http.StatusBadRequest, echo.Map{
				"success": false,
				"message": "Validation failed",
				"errors":  ve.Errors,
			})
			return
		}

		status, message := http.StatusInternalServerError, "Internal server error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			} else {
				message = fmt.Sprint(he.Message)
			}
		} else {
			log.WithError(err).WithFields(logrus.Fields{
				"path":       c.Request().URL.Path,
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			}).Error("unhandled error")
		}

		if status == http.StatusNotFound && !strings.HasPrefix(c.Request().URL.Path, "/api") {
			if page, rerr := os.ReadFile(filepath.Join(publicDir, "404.html")); rerr == nil {
				_ = c.HTMLBlob(http.StatusNotFound, page)
				return
			}
		}
		if status == http.StatusNotFound && message == http.StatusText(http.StatusNotFound) {
			message = "Route not found"
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, echo.Map{"success": false, "message": message})
	}
}
