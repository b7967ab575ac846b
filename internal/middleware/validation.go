package middleware

import (
	"quiz-save/internal/domain"
	"quiz-save/internal/dto"
	"quiz-save/internal/util"
	"quiz-save/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by the validation middleware.
const (
	SaveRequestKey  = "validated_save_request"
	SubmissionIDKey = "validated_submission_id"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateSaveRequest parses the JSON body of POST /save and stores the
// decoded request and the submission id in Locals.
func (vm *ValidationMiddleware) ValidateSaveRequest() fiber.Handler {
	return func(c *fiber.Ctx) error {
		submissionID := c.Get(dto.SubmissionIDHeader)
		if errs := vm.validator.ValidateSubmissionID(submissionID); len(errs) > 0 {
			return errs
		}
		if submissionID == "" {
			submissionID = util.NewULID()
		}

		if !c.Is("json") {
			return domain.ValidationErrors{
				domain.NewInvalidFormatError("content_type", c.Get(fiber.HeaderContentType)),
			}
		}

		var req dto.SaveRequest
		if err := c.BodyParser(&req); err != nil {
			return domain.NewInvalidInputError("Request body must be a JSON object of answers").
				WithContext("reason", err.Error())
		}

		if errs := vm.validator.ValidateSaveRequest(req); len(errs) > 0 {
			return errs
		}

		c.Locals(SaveRequestKey, req)
		c.Locals(SubmissionIDKey, submissionID)
		return c.Next()
	}
}
