package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"api-relay/internal/model"
)

// apiNotFoundMsg is returned for any unmatched path under /api.
const apiNotFoundMsg = "API endpoint not found"

// RegisterRoutes wires all route handlers onto the Echo instance.
func RegisterRoutes(e *echo.Echo, relay *RelayHandler, diff *DiffHandler, health *HealthHandler) {
	e.GET("/healthz", health.Healthz)

	api := e.Group("/api")
	api.GET("/status", health.Status)
	api.POST("/proxy", relay.Handle)
	api.POST("/diff", diff.Handle)
	api.Any("/*", NotFound)
}

// NotFound answers unmatched API paths.
func NotFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, model.NotFoundBody{
		Success: false,
		Error:   apiNotFoundMsg,
	})
}
