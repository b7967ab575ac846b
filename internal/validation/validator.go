package validation

import (
	"fmt"
	"strings"

	"quiz-save/internal/domain"
	"quiz-save/internal/dto"
	"quiz-save/internal/util"
)

// maxQuestions bounds a single save request.
const maxQuestions = 200

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateSaveRequest checks the shape of a save request. It does not judge
// whether the selected options are correct.
func (v *Validator) ValidateSaveRequest(req dto.SaveRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if len(req) == 0 {
		errors = append(errors, domain.NewMissingFieldError("answers"))
		return errors
	}
	if len(req) > maxQuestions {
		errors = append(errors, domain.ValidationError{
			Code:    domain.CodeValidation,
			Field:   "answers",
			Message: fmt.Sprintf("at most %d questions per request", maxQuestions),
			Value:   len(req),
		})
		return errors
	}

	for key, entry := range req {
		if !domain.IsValidQuestionKey(key) {
			errors = append(errors, domain.NewInvalidFormatError("question", key))
			continue
		}
		field := key + ".code"
		if strings.TrimSpace(entry.Code) == "" {
			errors = append(errors, domain.NewMissingFieldError(field))
		} else if !domain.OptionCode(entry.Code).IsLetter() {
			errors = append(errors, domain.NewInvalidFormatError(field, entry.Code))
		}
	}

	return errors
}

// ValidateSubmissionID accepts an empty id or a ULID.
func (v *Validator) ValidateSubmissionID(id string) domain.ValidationErrors {
	if id == "" || util.IsULID(id) {
		return nil
	}
	return domain.ValidationErrors{domain.NewInvalidFormatError("submission_id", id)}
}
