package handler

import (
	"context"
	"net/http"
	"time"

	"notewise/internal/domain"
	"notewise/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HealthHandler reports whether the cache backing sessions is reachable.
type HealthHandler struct {
	cache    domain.Cache
	provider string
}

func NewHealthHandler(cache domain.Cache, provider string) *HealthHandler {
	return &HealthHandler{cache: cache, provider: provider}
}

type HealthResponse struct {
	Status   string `json:"status"`
	Cache    string `json:"cache"`
	Provider string `json:"provider"`
}

// Health godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	resp := HealthResponse{Status: "ok", Cache: "ok", Provider: h.provider}
	if h.cache == nil {
		resp.Cache = "disabled"
		return c.JSON(resp)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	if err := h.cache.Ping(ctx); err != nil {
		logger.Get().Warn("Health check failed", zap.Error(err))
		resp.Status = "degraded"
		resp.Cache = "unreachable"
		return c.Status(http.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}
