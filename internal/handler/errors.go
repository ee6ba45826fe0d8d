package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"api-relay/internal/model"
)

// NewErrorHandler returns an echo.HTTPErrorHandler that answers errors on
// API paths with an envelope and defers to Echo's default handler elsewhere.
func NewErrorHandler(e *echo.Echo, logger *slog.Logger) echo.HTTPErrorHandler {
	logger = logger.With("component", "error_handler")
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if !strings.HasPrefix(c.Request().URL.Path, "/api/") {
			e.DefaultHTTPErrorHandler(err, c)
			return
		}

		// Only messages of *echo.HTTPError are shown; other errors (including
		// recovered panics) may carry internals such as stack traces.
		status := http.StatusInternalServerError
		msg := model.DefaultFailMsg
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			}
		}
		if status >= http.StatusInternalServerError {
			logger.Error("api error", "err", err, "path", c.Request().URL.Path)
		}

		env := model.Envelope[struct{}]{Code: model.CodeFromStatus(status), Msg: msg}
		if env.Msg == "" {
			env.Msg = http.StatusText(status)
		}
		if err := c.JSON(status, env); err != nil {
			logger.Error("write error envelope", "err", err)
		}
	}
}
