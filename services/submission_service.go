package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	apperrors "github.com/NomadCrew/feedback-client/errors"
	"github.com/NomadCrew/feedback-client/internal/validation"
	"github.com/NomadCrew/feedback-client/logger"
	"github.com/NomadCrew/feedback-client/types"
	"go.uber.org/zap"
)

// ErrSubmissionInFlight is returned by Submit while an earlier submission has
// not resolved.
var ErrSubmissionInFlight = errors.New("submission already in flight")

const (
	// DefaultSuccessDuration is how long a success notification is shown.
	DefaultSuccessDuration = 4 * time.Second
	// FailureDuration is how long a failure notification is shown.
	FailureDuration = 6 * time.Second
)

// SubmissionState is the lifecycle of the form's single submission slot.
type SubmissionState int

const (
	SubmissionIdle SubmissionState = iota
	SubmissionSubmitting
)

func (s SubmissionState) String() string {
	switch s {
	case SubmissionIdle:
		return "idle"
	case SubmissionSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// Outcome classifies a resolved Submit call.
type Outcome int

const (
	OutcomeInvalid Outcome = iota + 1
	OutcomeSuccess
	OutcomeFailed
)

// NotificationVariant selects how a notification is styled.
type NotificationVariant string

const (
	VariantSuccess NotificationVariant = "success"
	VariantError   NotificationVariant = "error"
)

// Notification is the user-facing message produced by a submission.
type Notification struct {
	Title       string
	Description string
	Variant     NotificationVariant
	Duration    time.Duration
}

// SubmissionResult is what the form needs to render after Submit.
type SubmissionResult struct {
	Outcome Outcome
	// Response is the created record on success.
	Response *types.FeedbackResponse
	// Err is the failure as returned by the client, nil on success.
	Err error
	// APIError is the structured server error body, when one was sent.
	APIError *types.APIError
	// FieldErrors holds one message per invalid field for OutcomeInvalid.
	FieldErrors []apperrors.FieldError
	// Notification is nil for OutcomeInvalid.
	Notification *Notification
	// ClearForm is set when the inputs should be reset.
	ClearForm bool
}

// SubmissionOption configures a SubmissionService.
type SubmissionOption func(*SubmissionService)

// WithSuccessDuration overrides DefaultSuccessDuration.
func WithSuccessDuration(d time.Duration) SubmissionOption {
	return func(s *SubmissionService) {
		if d > 0 {
			s.successDuration = d
		}
	}
}

// SubmissionService runs the feedback form's submit action and owns its
// last response and last error.
type SubmissionService struct {
	api             FeedbackAPI
	successDuration time.Duration
	log             *zap.SugaredLogger

	mu           sync.Mutex
	state        SubmissionState
	lastResponse *types.FeedbackResponse
	lastError    *types.APIError
}

func NewSubmissionService(api FeedbackAPI, opts ...SubmissionOption) *SubmissionService {
	s := &SubmissionService{
		api:             api,
		successDuration: DefaultSuccessDuration,
		log:             logger.GetLogger().Named("submission"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate checks req locally and returns the per-field messages, or nil.
func (s *SubmissionService) Validate(req types.FeedbackRequest) []apperrors.FieldError {
	err := validation.Struct(req)
	if err == nil {
		return nil
	}
	if vErr, ok := apperrors.AsValidationError(err); ok {
		return vErr.Fields
	}
	s.log.Errorw("Validation could not run", "error", err)
	return []apperrors.FieldError{{Field: "form", Message: err.Error()}}
}

// Submit validates req and, when valid, sends it. Invalid input never reaches
// the network. Only one submission may be in flight; a concurrent call gets
// ErrSubmissionInFlight.
func (s *SubmissionService) Submit(ctx context.Context, req types.FeedbackRequest) (SubmissionResult, error) {
	if fields := s.Validate(req); len(fields) > 0 {
		s.log.Debugw("Feedback rejected by local validation", "fields", len(fields))
		return SubmissionResult{Outcome: OutcomeInvalid, FieldErrors: fields}, nil
	}

	s.mu.Lock()
	if s.state == SubmissionSubmitting {
		s.mu.Unlock()
		return SubmissionResult{}, ErrSubmissionInFlight
	}
	s.state = SubmissionSubmitting
	s.mu.Unlock()

	s.log.Infow("Submitting feedback", "name", req.Name, "email", logger.MaskEmail(req.Email))
	resp, err := s.api.SubmitFeedback(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Resolved either way; the outcome travels in the result.
	s.state = SubmissionIdle

	if err != nil {
		var body *types.APIError
		if httpErr, ok := apperrors.AsHTTPError(err); ok {
			body = httpErr.Body
		}
		s.lastError = body
		s.log.Warnw("Feedback submission failed", "errorType", apperrors.TypeOf(err), "error", err)
		return SubmissionResult{
			Outcome:      OutcomeFailed,
			Err:          err,
			APIError:     body,
			Notification: failureNotification(err),
		}, nil
	}

	s.lastResponse = resp
	s.lastError = nil
	s.log.Infow("Feedback submitted", "id", resp.ID)
	return SubmissionResult{
		Outcome:  OutcomeSuccess,
		Response: resp,
		Notification: &Notification{
			Title:       "Feedback sent",
			Description: fmt.Sprintf("Thanks %s! Your feedback was submitted successfully.", resp.Name),
			Variant:     VariantSuccess,
			Duration:    s.successDuration,
		},
		ClearForm: true,
	}, nil
}

func failureNotification(err error) *Notification {
	message := apperrors.DefaultMessage + "."
	var details []string
	if httpErr, ok := apperrors.AsHTTPError(err); ok {
		message = httpErr.Message
		details = httpErr.Details()
	} else if err != nil && err.Error() != "" {
		message = err.Error()
	}

	description := message
	if len(details) > 0 {
		description += " Details: " + strings.Join(details, ", ")
	}
	return &Notification{
		Title:       "Submission failed",
		Description: description,
		Variant:     VariantError,
		Duration:    FailureDuration,
	}
}

// State returns the current submission state.
func (s *SubmissionService) State() SubmissionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Submitting reports whether a submission is in flight.
func (s *SubmissionService) Submitting() bool {
	return s.State() == SubmissionSubmitting
}

// LastResponse returns the record from the most recent successful submission.
func (s *SubmissionService) LastResponse() *types.FeedbackResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastResponse
}

// LastError returns the server error body of the most recent failed
// submission, or nil when it carried none or a later submission succeeded.
func (s *SubmissionService) LastError() *types.APIError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// Reset clears the recorded response and error. It does not cancel a
// submission in flight.
func (s *SubmissionService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastResponse = nil
	s.lastError = nil
}
