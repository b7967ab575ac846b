package handler

import (
	"quiz-save/internal/domain"
	"quiz-save/internal/dto"
	"quiz-save/internal/logger"
	"quiz-save/internal/middleware"
	"quiz-save/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SaveHandler handles answer submissions
type SaveHandler struct {
	receipts service.ReceiptService
}

// NewSaveHandler creates a new SaveHandler instance
func NewSaveHandler(receipts service.ReceiptService) *SaveHandler {
	return &SaveHandler{receipts: receipts}
}

// Save godoc
// @Summary Save answers
// @Description Accepts the selected option of every question and returns a feedback message
// @Tags answers
// @Accept json
// @Produce json
// @Param X-Submission-ID header string false "Client submission ULID"
// @Param request body dto.SaveRequest true "Answers keyed by question"
// @Success 200 {object} dto.SaveResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /save [post]
func (h *SaveHandler) Save(c *fiber.Ctx) error {
	req, ok := c.Locals(middleware.SaveRequestKey).(dto.SaveRequest)
	if !ok {
		return domain.NewInternalError("save request was not validated", nil)
	}
	submissionID, _ := c.Locals(middleware.SubmissionIDKey).(string)

	resp, err := h.receipts.Acknowledge(c.UserContext(), submissionID, req)
	if err != nil {
		logger.Get().Error("Failed to acknowledge answers",
			zap.String("submission_id", submissionID),
			zap.Error(err),
		)
		return err
	}

	c.Set(dto.SubmissionIDHeader, submissionID)
	return c.JSON(resp)
}
