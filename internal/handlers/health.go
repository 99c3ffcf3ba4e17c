package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/memohai/vidstream/internal/healthcheck"
)

// HealthRunner produces an aggregated health report.
type HealthRunner interface {
	Run(ctx context.Context) healthcheck.Report
}

type HealthHandler struct {
	checks HealthRunner
	logger *slog.Logger
}

func NewHealthHandler(log *slog.Logger, aggregator *healthcheck.Aggregator) *HealthHandler {
	return newHealthHandler(log, aggregator)
}

func newHealthHandler(log *slog.Logger, checks HealthRunner) *HealthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &HealthHandler{
		checks: checks,
		logger: log.With(slog.String("handler", "health")),
	}
}

func (h *HealthHandler) Register(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.HEAD("/health", h.HealthHead)
}

// Health godoc
// @Summary Service health
// @Description Run the database and bot checks
// @Tags health
// @Produce json
// @Success 200 {object} healthcheck.Report
// @Failure 503 {object} healthcheck.Report
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	report := h.checks.Run(c.Request().Context())
	return c.JSON(healthStatusCode(report), report)
}

func (h *HealthHandler) HealthHead(c echo.Context) error {
	report := h.checks.Run(c.Request().Context())
	return c.NoContent(healthStatusCode(report))
}

func healthStatusCode(report healthcheck.Report) int {
	if report.Status == healthcheck.StatusError {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}
