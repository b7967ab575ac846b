package service

import (
	"context"
	"sort"

	"quiz-save/internal/config"
	"quiz-save/internal/dto"
	"quiz-save/internal/logger"

	"go.uber.org/zap"
)

// ReceiptService acknowledges saved answers. Answers are neither graded nor
// stored.
type ReceiptService interface {
	Acknowledge(ctx context.Context, submissionID string, req dto.SaveRequest) (*dto.SaveResponse, error)
}

type receiptServiceImpl struct {
	message string
}

// NewReceiptService creates a ReceiptService answering with the configured
// feedback message.
func NewReceiptService(cfg config.FeedbackConfig) ReceiptService {
	return &receiptServiceImpl{message: cfg.Message}
}

func (s *receiptServiceImpl) Acknowledge(ctx context.Context, submissionID string, req dto.SaveRequest) (*dto.SaveResponse, error) {
	keys := make([]string, 0, len(req))
	for k := range req {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]zap.Field, 0, len(keys)+2)
	fields = append(fields,
		zap.String("submission_id", submissionID),
		zap.Int("questions", len(keys)),
	)
	for _, k := range keys {
		fields = append(fields, zap.String("answer."+k, req[k].Code))
	}
	logger.Get().Info("Answers received", fields...)

	message := s.message
	return &dto.SaveResponse{
		Feedback:     &message,
		SubmissionID: submissionID,
	}, nil
}
