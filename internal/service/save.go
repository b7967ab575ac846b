package service

import (
	"context"

	"quiz-save/internal/domain"
	"quiz-save/internal/logger"

	"go.uber.org/zap"
)

// SaveOutcome reports what one save did.
type SaveOutcome struct {
	Payload   domain.Payload
	Result    *domain.SubmitResult
	Displayed bool
}

// SaveService runs the collect, submit and display steps as one action.
type SaveService interface {
	Save(ctx context.Context) (*SaveOutcome, error)
}

type saveServiceImpl struct {
	collector CollectorService
	submitter domain.Submitter
	display   domain.FeedbackDisplay
}

// NewSaveService wires a collector to a submitter and a feedback display.
func NewSaveService(collector CollectorService, submitter domain.Submitter, display domain.FeedbackDisplay) SaveService {
	return &saveServiceImpl{
		collector: collector,
		submitter: submitter,
		display:   display,
	}
}

// Save performs one submission. Overlapping calls are not coalesced and a
// failed submission is not retried.
func (s *saveServiceImpl) Save(ctx context.Context) (*SaveOutcome, error) {
	payload, err := s.collector.BuildPayload()
	if err != nil {
		logger.Get().Error("Failed to build payload", zap.Error(err))
		return nil, err
	}

	outcome := &SaveOutcome{Payload: payload}

	result, err := s.submitter.Submit(ctx, payload)
	if err != nil {
		logger.Get().Error("Failed to submit answers", zap.Error(err))
		return outcome, err
	}
	outcome.Result = result

	if !result.HasFeedback {
		logger.Get().Warn("Save response carried no feedback",
			zap.String("submission_id", result.SubmissionID),
		)
		return outcome, nil
	}

	if err := s.display.DisplayFeedback(result.Feedback); err != nil {
		logger.Get().Error("Failed to display feedback",
			zap.String("submission_id", result.SubmissionID),
			zap.Error(err),
		)
		return outcome, err
	}
	outcome.Displayed = true

	logger.Get().Info("Answers saved",
		zap.String("submission_id", result.SubmissionID),
		zap.String("feedback", result.Feedback),
	)
	return outcome, nil
}
