// Package handler provides HTTP handlers for the API.
package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"engagement-score-service/internal/app/service"
	"engagement-score-service/internal/transport/httpserver/dto"
	"engagement-score-service/internal/validator"
)

// ScoreHandler handles scoring HTTP requests.
type ScoreHandler struct {
	service      *service.ScoreService
	validator    *validator.Validator
	maxBatchSize int
	logger       *zap.Logger
}

// NewScoreHandler creates a new ScoreHandler. maxBatchSize caps the number of
// posts accepted by ScoreBatch on top of the request validation rules.
func NewScoreHandler(svc *service.ScoreService, v *validator.Validator, maxBatchSize int, logger *zap.Logger) *ScoreHandler {
	return &ScoreHandler{
		service:      svc,
		validator:    v,
		maxBatchSize: maxBatchSize,
		logger:       logger,
	}
}

// ScorePost handles POST /api/v1/scores/post
func (h *ScoreHandler) ScorePost(c *fiber.Ctx) error {
	var req dto.ScorePostRequest
	if err := c.BodyParser(&req); err != nil {
		return h.invalidBody(c, err)
	}

	if err := h.validator.Validate(&req); err != nil {
		return h.validationFailed(c, err)
	}

	post, audience := req.ToDomain()
	result := h.service.ScorePost(c.UserContext(), post, audience)

	return c.JSON(dto.FromScoreResult(result))
}

// ScoreBatch handles POST /api/v1/scores/batch
func (h *ScoreHandler) ScoreBatch(c *fiber.Ctx) error {
	var req dto.ScoreBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return h.invalidBody(c, err)
	}

	if h.maxBatchSize > 0 && len(req.Posts) > h.maxBatchSize {
		h.logger.Debug("batch rejected",
			zap.Int("posts", len(req.Posts)),
			zap.Int("max_batch_size", h.maxBatchSize),
		)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: fmt.Sprintf("batch accepts at most %d posts", h.maxBatchSize),
			Code:  "BATCH_TOO_LARGE",
		})
	}

	if err := h.validator.Validate(&req); err != nil {
		return h.validationFailed(c, err)
	}

	posts, audience := req.ToDomain()
	result := h.service.ScoreBatch(c.UserContext(), posts, audience)

	return c.JSON(dto.FromBatchResult(result))
}

func (h *ScoreHandler) invalidBody(c *fiber.Ctx, err error) error {
	h.logger.Debug("invalid score request body", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error:   "invalid request body",
		Code:    "INVALID_BODY",
		Details: err.Error(),
	})
}

func (h *ScoreHandler) validationFailed(c *fiber.Ctx, err error) error {
	h.logger.Debug("score request failed validation", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error:   "validation failed",
		Code:    "VALIDATION_ERROR",
		Details: err,
	})
}
