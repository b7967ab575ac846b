package saveclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"quiz-save/internal/domain"
	"quiz-save/internal/dto"
	"quiz-save/internal/logger"
	"quiz-save/internal/util"

	"go.uber.org/zap"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 1 << 20

// Client posts answer payloads to the save endpoint. It implements
// domain.Submitter. Every call is a single attempt.
type Client struct {
	httpClient *http.Client
	saveURL    string
	newID      func() string
}

// NewClient creates a Client for saveURL. A zero timeout leaves the request
// bounded only by the caller's context.
func NewClient(saveURL string, timeout time.Duration) (*Client, error) {
	if saveURL == "" {
		return nil, fmt.Errorf("save URL cannot be empty")
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		saveURL:    saveURL,
		newID:      util.NewULID,
	}, nil
}

// Close releases idle connections held by the underlying transport.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// saveReply mirrors dto.SaveResponse but keeps feedback raw so that any JSON
// value the server sends can be shown.
type saveReply struct {
	Feedback     json.RawMessage `json:"feedback"`
	SubmissionID string          `json:"submission_id"`
}

// Submit sends payload once and returns the server's feedback.
func (c *Client) Submit(ctx context.Context, payload domain.Payload) (*domain.SubmitResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, domain.NewInternalError("Failed to encode payload", err)
	}

	submissionID := c.newID()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.saveURL, bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewSubmitFailedError("Failed to build save request", err).
			WithContext("url", c.saveURL)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(dto.SubmissionIDHeader, submissionID)

	log := logger.Get().With(
		zap.String("submission_id", submissionID),
		zap.String("url", c.saveURL),
	)
	log.Debug("Submitting answers", zap.ByteString("payload", body))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("Save request failed", zap.Error(err))
		return nil, domain.NewSubmitFailedError("Save request failed", err).
			WithContext("submission_id", submissionID)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, domain.NewSubmitFailedError("Failed to read save response", err).
			WithContext("submission_id", submissionID)
	}

	log.Info("Save response received",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.NewSubmitFailedError(
			fmt.Sprintf("Save endpoint returned status %d", resp.StatusCode), nil).
			WithContext("submission_id", submissionID).
			WithContext("status", resp.StatusCode)
	}

	var reply saveReply
	if err := json.Unmarshal(respBody, &reply); err != nil {
		return nil, domain.NewMalformedResponseError(err).
			WithContext("submission_id", submissionID)
	}

	result := &domain.SubmitResult{
		SubmissionID: submissionID,
		StatusCode:   resp.StatusCode,
	}
	result.Feedback, result.HasFeedback = feedbackText(reply.Feedback)
	return result, nil
}

// feedbackText turns the raw feedback value into display text. Strings are
// unquoted, other JSON values are shown as sent, absent or null means none.
func feedbackText(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s, true
	}
	return string(trimmed), true
}
