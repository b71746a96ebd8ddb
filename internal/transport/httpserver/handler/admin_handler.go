package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"engagement-score-service/internal/app/service"
	"engagement-score-service/internal/transport/httpserver/dto"
)

// AdminHandler handles operator HTTP requests.
type AdminHandler struct {
	service *service.ScoreService
	logger  *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc *service.ScoreService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		service: svc,
		logger:  logger,
	}
}

// ClearCache handles DELETE /api/v1/admin/cache
func (h *AdminHandler) ClearCache(c *fiber.Ctx) error {
	h.logger.Info("result cache clear triggered")

	if err := h.service.ClearCache(c.UserContext()); err != nil {
		if errors.Is(err, service.ErrCacheDisabled) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: err.Error(),
				Code:  "CACHE_DISABLED",
			})
		}

		h.logger.Error("result cache clear failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "failed to clear cache",
			Code:  "INTERNAL_ERROR",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
