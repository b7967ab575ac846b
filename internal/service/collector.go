package service

import (
	"quiz-save/internal/domain"
	"quiz-save/internal/logger"

	"go.uber.org/zap"
)

// CollectorService reads the current selection of each configured question.
type CollectorService interface {
	// ResolveSelection returns the code of the first checked option of q,
	// or domain.NoSelection when none is checked.
	ResolveSelection(q domain.Question) (domain.OptionCode, error)

	// BuildPayload resolves every configured question into a new payload.
	BuildPayload() (domain.Payload, error)

	// Questions returns the configured question set.
	Questions() domain.QuestionSet
}

type collectorServiceImpl struct {
	questions domain.QuestionSet
	controls  domain.ControlLookup
}

// NewCollectorService creates a collector over an explicit question set and
// the controls bound to its options.
func NewCollectorService(questions domain.QuestionSet, controls domain.ControlLookup) (CollectorService, error) {
	if err := questions.Validate(); err != nil {
		return nil, err
	}
	if controls == nil {
		return nil, domain.NewInvalidInputError("control lookup cannot be nil")
	}
	return &collectorServiceImpl{
		questions: questions,
		controls:  controls,
	}, nil
}

func (s *collectorServiceImpl) Questions() domain.QuestionSet {
	return s.questions
}

func (s *collectorServiceImpl) ResolveSelection(q domain.Question) (domain.OptionCode, error) {
	for _, o := range q.Options {
		control, ok := s.controls.Control(domain.ControlKey{Question: q.Key, Code: o.Code})
		if !ok {
			return "", domain.NewControlNotFoundError(q.Key, o.Code)
		}
		if control.Checked() {
			return o.Code, nil
		}
	}
	return domain.NoSelection, nil
}

func (s *collectorServiceImpl) BuildPayload() (domain.Payload, error) {
	payload := make(domain.Payload, len(s.questions))
	for _, q := range s.questions {
		code, err := s.ResolveSelection(q)
		if err != nil {
			return nil, err
		}
		payload[q.Key] = domain.Entry{Code: code}
	}

	logger.Get().Debug("Payload built",
		zap.Int("questions", len(payload)),
		zap.Any("payload", payload),
	)
	return payload, nil
}
