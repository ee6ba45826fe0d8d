package handler

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"api-relay/internal/diff"
	"api-relay/internal/model"
)

// DiffRequest asks for a diff of two bodies, typically two relay results.
type DiffRequest struct {
	Old      string `json:"old"`
	New      string `json:"new"`
	Semantic bool   `json:"semantic,omitempty"`
}

// DiffResult carries the rendered diff.
type DiffResult struct {
	Diff string `json:"diff"`
}

// DiffHandler serves response comparisons.
type DiffHandler struct {
	logger *slog.Logger
}

// NewDiffHandler creates a DiffHandler.
func NewDiffHandler(logger *slog.Logger) *DiffHandler {
	return &DiffHandler{logger: logger.With("component", "diff_handler")}
}

// Handle renders a line diff, or a JSON-normalized one when Semantic is set.
func (h *DiffHandler) Handle(c echo.Context) error {
	var req DiffRequest
	if err := decodeJSON(c, &req); err != nil {
		h.logger.Warn("decode diff request", "err", err)
		return writeEnvelope(c, model.Fail[DiffResult](err.Error()))
	}

	out := diff.Lines(req.Old, req.New)
	if req.Semantic {
		out = diff.Semantic(req.Old, req.New)
	}
	return writeEnvelope(c, model.Success(DiffResult{Diff: out}))
}
