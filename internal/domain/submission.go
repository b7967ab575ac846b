package domain

import "context"

// Entry is the resolved answer for one question.
type Entry struct {
	Code OptionCode `json:"code"`
}

// Payload maps question keys to their resolved entries. It is built fresh
// for every submission and not modified after being sent.
type Payload map[string]Entry

// SubmitResult is the outcome of a successful submission.
type SubmitResult struct {
	SubmissionID string
	StatusCode   int
	// Feedback is only meaningful when HasFeedback is true. A response
	// without a feedback field is reported as is, never defaulted.
	Feedback    string
	HasFeedback bool
}

// Control is a single option input on the page.
type Control interface {
	Checked() bool
}

// ControlKey addresses one option of one question.
type ControlKey struct {
	Question string
	Code     OptionCode
}

// ControlLookup resolves (question, option) pairs to controls.
type ControlLookup interface {
	Control(key ControlKey) (Control, bool)
}

// ControlMap is the plain map implementation of ControlLookup.
type ControlMap map[ControlKey]Control

func (m ControlMap) Control(key ControlKey) (Control, bool) {
	c, ok := m[key]
	return c, ok
}

// StaticControl is a Control with a fixed state.
type StaticControl bool

func (s StaticControl) Checked() bool { return bool(s) }

// Submitter sends a payload to the save endpoint exactly once.
type Submitter interface {
	Submit(ctx context.Context, payload Payload) (*SubmitResult, error)
}

// FeedbackDisplay shows feedback text to the user.
type FeedbackDisplay interface {
	DisplayFeedback(text string) error
}
