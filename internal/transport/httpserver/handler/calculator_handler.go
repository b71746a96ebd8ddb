package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"engagement-score-service/internal/app/service"
	"engagement-score-service/internal/transport/httpserver/dto"
)

const (
	impressionsPrompt = "Enter a positive number of impressions to calculate a score."
	emptyBatchPrompt  = "Fill in at least one post to calculate a batch score."
)

// CalculatorHandler serves the calculator HTML pages.
type CalculatorHandler struct {
	service      *service.ScoreService
	maxBatchSize int
	logger       *zap.Logger
}

// NewCalculatorHandler creates a new CalculatorHandler. maxBatchSize caps the
// rows of the batch page; 0 disables the cap.
func NewCalculatorHandler(svc *service.ScoreService, maxBatchSize int, logger *zap.Logger) *CalculatorHandler {
	return &CalculatorHandler{
		service:      svc,
		maxBatchSize: maxBatchSize,
		logger:       logger,
	}
}

// Render handles GET /calculator
func (h *CalculatorHandler) Render(c *fiber.Ctx) error {
	return h.render(c, dto.CalculatorForm{}, nil, "")
}

// Submit handles POST /calculator
// Form fields are parsed leniently; a submission without positive
// impressions re-renders the form with a prompt instead of a score.
func (h *CalculatorHandler) Submit(c *fiber.Ctx) error {
	var form dto.CalculatorForm
	if err := c.BodyParser(&form); err != nil {
		h.logger.Debug("calculator form not parsed", zap.Error(err))
	}

	post, audience := form.ToDomain()
	if post.Impressions <= 0 {
		c.Status(fiber.StatusUnprocessableEntity)
		return h.render(c, form, nil, impressionsPrompt)
	}

	result := dto.FromScoreResult(h.service.ScorePost(c.UserContext(), post, audience))

	return h.render(c, form, &result, "")
}

// RenderBatch handles GET /calculator/batch
func (h *CalculatorHandler) RenderBatch(c *fiber.Ctx) error {
	return h.renderBatch(c, dto.BatchForm{}, []dto.BatchRow{{}}, nil, "")
}

// SubmitBatch handles POST /calculator/batch
// The "add" action re-renders the page with one more empty row. Otherwise
// the non-blank rows are scored as one batch.
func (h *CalculatorHandler) SubmitBatch(c *fiber.Ctx) error {
	var form dto.BatchForm
	if err := c.BodyParser(&form); err != nil {
		h.logger.Debug("batch calculator form not parsed", zap.Error(err))
	}

	rows := form.Rows()

	if form.Action == "add" {
		if h.maxBatchSize <= 0 || len(rows) < h.maxBatchSize {
			rows = append(rows, dto.BatchRow{})
		}
		return h.renderBatch(c, form, rows, nil, "")
	}

	if len(rows) == 0 {
		c.Status(fiber.StatusUnprocessableEntity)
		return h.renderBatch(c, form, []dto.BatchRow{{}}, nil, emptyBatchPrompt)
	}
	if h.maxBatchSize > 0 && len(rows) > h.maxBatchSize {
		c.Status(fiber.StatusUnprocessableEntity)
		prompt := fmt.Sprintf("The batch calculator accepts at most %d posts.", h.maxBatchSize)
		return h.renderBatch(c, form, rows, nil, prompt)
	}

	posts, audience := form.ToDomain()
	result := dto.FromBatchResult(h.service.ScoreBatch(c.UserContext(), posts, audience))

	return h.renderBatch(c, form, rows, &result, "")
}

func (h *CalculatorHandler) render(c *fiber.Ctx, form dto.CalculatorForm, result *dto.ScoreResponse, prompt string) error {
	return c.Render("pages/calculator", fiber.Map{
		"Title":  "Engagement Score Calculator",
		"Form":   form,
		"Result": result,
		"Prompt": prompt,
	}, "layouts/base")
}

// batchRowView pairs a form row with its score once the batch is computed.
type batchRowView struct {
	Number int
	dto.BatchRow
	Result *dto.ScoreResponse
}

func (h *CalculatorHandler) renderBatch(c *fiber.Ctx, form dto.BatchForm, rows []dto.BatchRow, result *dto.BatchResponse, prompt string) error {
	views := make([]batchRowView, len(rows))
	for i, row := range rows {
		views[i] = batchRowView{Number: i + 1, BatchRow: row}
		if result != nil && i < len(result.PerPost) {
			views[i].Result = &result.PerPost[i]
		}
	}

	return c.Render("pages/batch", fiber.Map{
		"Title":  "Batch Engagement Calculator",
		"Form":   form,
		"Rows":   views,
		"Result": result,
		"Prompt": prompt,
	}, "layouts/base")
}
