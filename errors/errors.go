package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/NomadCrew/feedback-client/types"
)

type ErrorType string

const (
	HTTPErrorType       ErrorType = "HTTP_ERROR"
	ValidationErrorType ErrorType = "VALIDATION_ERROR"
	NetworkErrorType    ErrorType = "NETWORK_ERROR"
)

// DefaultMessage is used when neither the error body nor the status line
// yields anything better.
const DefaultMessage = "Request failed"

// HTTPError carries the HTTP status of a failed request and, when the server
// sent a parseable JSON error body, that body.
type HTTPError struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Body    *types.APIError `json:"body,omitempty"`
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// Details returns the per-field messages from the error body, if any.
func (e *HTTPError) Details() []string {
	if e.Body == nil {
		return nil
	}
	return e.Body.Details
}

// NewHTTPError builds an HTTPError. The message is resolved in order from
// body.message, body.error, the status reason phrase and DefaultMessage.
func NewHTTPError(status int, reason string, body *types.APIError) *HTTPError {
	message := DefaultMessage
	switch {
	case body != nil && body.Message != "":
		message = body.Message
	case body != nil && body.Error != "":
		message = body.Error
	case reason != "":
		message = reason
	}
	return &HTTPError{
		Status:  status,
		Message: message,
		Body:    body,
	}
}

// AsHTTPError unwraps err into an *HTTPError.
func AsHTTPError(err error) (*HTTPError, bool) {
	var httpErr *HTTPError
	if stderrors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}

// FieldError is a local validation failure for one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError holds one message per invalid field, in field order.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return fmt.Sprintf("%s: %s", ValidationErrorType, strings.Join(parts, ", "))
}

// Messages indexes the field messages by field name.
func (e *ValidationError) Messages() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func ValidationFailed(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

// AsValidationError unwraps err into a *ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	if stderrors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}

// TypeOf classifies err. Anything that is neither an HTTP nor a validation
// failure is treated as a network failure.
func TypeOf(err error) ErrorType {
	if err == nil {
		return ""
	}
	if _, ok := AsHTTPError(err); ok {
		return HTTPErrorType
	}
	if _, ok := AsValidationError(err); ok {
		return ValidationErrorType
	}
	return NetworkErrorType
}
