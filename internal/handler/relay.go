package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"api-relay/internal/model"
	"api-relay/internal/service"
)

// RelayHandler exposes the relay operation over HTTP.
type RelayHandler struct {
	service *service.RelayService
	logger  *slog.Logger
}

// NewRelayHandler creates a RelayHandler.
func NewRelayHandler(svc *service.RelayService, logger *slog.Logger) *RelayHandler {
	return &RelayHandler{
		service: svc,
		logger:  logger.With("component", "relay_handler"),
	}
}

// Handle decodes a RelayRequest, relays it and writes the envelope.
// SUCCESS is answered with 200, anything else with 500.
func (h *RelayHandler) Handle(c echo.Context) error {
	var req model.RelayRequest
	if err := decodeJSON(c, &req); err != nil {
		h.logger.Warn("decode relay request", "err", err)
		return writeEnvelope(c, model.Fail[model.RelayResult](err.Error()))
	}

	return writeEnvelope(c, h.service.Relay(c.Request().Context(), &req))
}

// decodeJSON reads the request body as JSON regardless of Content-Type.
func decodeJSON(c echo.Context, v any) error {
	if err := json.NewDecoder(c.Request().Body).Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func writeEnvelope[T any](c echo.Context, env model.Envelope[T]) error {
	status := http.StatusOK
	if !env.OK() {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, env)
}
