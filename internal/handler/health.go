package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"api-relay/internal/config"
	"api-relay/internal/model"
)

// Version is a string type for dependency injection of the build version.
type Version string

// HealthHandler serves health and status endpoints.
type HealthHandler struct {
	cfg     *config.Config
	version Version
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(cfg *config.Config, v Version) *HealthHandler {
	return &HealthHandler{cfg: cfg, version: v}
}

// Healthz returns a simple OK response for liveness probes.
func (h *HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// StatusInfo describes the running relay.
type StatusInfo struct {
	Status          string `json:"status"`
	Version         string `json:"version"`
	TimeoutSeconds  int    `json:"timeoutSeconds"`
	MaxRedirects    int    `json:"maxRedirects"`
	TLSVerification bool   `json:"tlsVerification"`
}

// Status returns relay status information wrapped in an envelope.
func (h *HealthHandler) Status(c echo.Context) error {
	return writeEnvelope(c, model.Success(StatusInfo{
		Status:          "ok",
		Version:         string(h.version),
		TimeoutSeconds:  h.cfg.Relay.TimeoutSeconds,
		MaxRedirects:    h.cfg.Relay.MaxRedirects,
		TLSVerification: !h.cfg.Relay.InsecureSkipVerify,
	}))
}
