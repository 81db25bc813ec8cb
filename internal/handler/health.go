package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sumire/triage/internal/client/predictor"
	"github.com/sumire/triage/internal/logger"
)

// HealthChecker reports the health of the prediction service.
type HealthChecker interface {
	Health(ctx context.Context) (*predictor.Health, error)
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string         `json:"status"`
	Upstream UpstreamHealth `json:"upstream"`
}

// UpstreamHealth is the prediction service status, or the reason it is unknown.
type UpstreamHealth struct {
	Status       string `json:"status,omitempty"`
	ModelVersion string `json:"model_version,omitempty"`
	Error        string `json:"error,omitempty"`
}

// HealthHandler serves the liveness endpoint.
type HealthHandler struct {
	upstream HealthChecker
}

func NewHealthHandler(upstream HealthChecker) *HealthHandler {
	return &HealthHandler{upstream: upstream}
}

// Check always answers 200; a failing upstream only degrades the status.
func (h *HealthHandler) Check(c echo.Context) error {
	ctx := c.Request().Context()
	resp := HealthResponse{Status: "ok"}

	up, err := h.upstream.Health(ctx)
	if err != nil {
		logger.Warn(ctx, "prediction service health check failed", "error", err)
		resp.Status = "degraded"
		resp.Upstream.Error = "prediction service unreachable"
	} else {
		resp.Upstream.Status = up.Status
		resp.Upstream.ModelVersion = up.ModelVersion
	}

	return JSON(c, http.StatusOK, resp)
}
