package dto

// SubmissionIDHeader carries the client-minted submission id.
const SubmissionIDHeader = "X-Submission-ID"

// AnswerEntry is the resolved answer for one question.
// @Description One question's selected option, or E for none
type AnswerEntry struct {
	Code string `json:"code" example:"B"`
}

// SaveRequest maps question keys to their answers.
// @Description Request body for saving answers
type SaveRequest map[string]AnswerEntry

// SaveResponse is returned by POST /save. Feedback is a pointer so that a
// response without the field can be told apart from an empty string.
// @Description Save acknowledgement
type SaveResponse struct {
	Feedback     *string `json:"feedback,omitempty" example:"Saved!"`
	SubmissionID string  `json:"submission_id,omitempty"`
}

// ErrorResponse represents an error in the API response
type ErrorResponse struct {
	Error string `json:"error"`
}
