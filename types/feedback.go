package types

import "time"

// FeedbackRequest represents the request body for submitting feedback.
type FeedbackRequest struct {
	Name    string `json:"name" yaml:"name" validate:"notblank,max=255"`
	Email   string `json:"email" yaml:"email" validate:"notblank,email,max=255"`
	Message string `json:"message" yaml:"message" validate:"notblank,max=1000"`
}

// FeedbackResponse is the server-side record returned for a feedback entry.
// The submitter's email is never echoed back.
type FeedbackResponse struct {
	ID        int64  `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Message   string `json:"message" yaml:"message"`
	CreatedAt string `json:"createdAt" yaml:"createdAt"`
}

// CreatedTime parses CreatedAt as an RFC 3339 timestamp.
func (f FeedbackResponse) CreatedTime() (time.Time, error) {
	return time.Parse(time.RFC3339, f.CreatedAt)
}
