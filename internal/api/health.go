package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Aquabet/webapp/internal/metrics"
)

type HealthHandler struct {
	pinger  Pinger
	metrics metrics.Emitter
}

func NewHealthHandler(pinger Pinger, m metrics.Emitter) *HealthHandler {
	return &HealthHandler{pinger: pinger, metrics: m}
}

// Check implements the /healthz contract: GET only, no query parameters, no
// body. Responses carry status codes only; the cache headers come from the
// global middleware.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodGet {
		return status(c, fiber.StatusMethodNotAllowed)
	}

	if c.Context().QueryArgs().Len() > 0 || len(c.Body()) > 0 {
		return status(c, fiber.StatusBadRequest)
	}

	ctx, cancel := context.WithTimeout(c.Context(), pingTimeout)
	defer cancel()

	start := time.Now()
	err := h.pinger.Ping(ctx)
	metrics.Since(h.metrics, "healthz.db", start)

	if err != nil {
		slog.Error("health check failed", "error", err)
		return status(c, fiber.StatusServiceUnavailable)
	}
	return status(c, fiber.StatusOK)
}

// status sends a bare status code with an empty body. SendStatus would fill
// in the status text.
func status(c *fiber.Ctx, code int) error {
	c.Status(code)
	return nil
}
