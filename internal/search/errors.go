package search

import (
	"errors"
	"fmt"
)

// ValidationError rejects a search before any network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// TransportError covers network failures and non-success HTTP statuses.
// StatusCode is zero when no response was received.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP error! status: %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ResponseShapeError means the body was not JSON, carried an error flag, or lacked
// the success indicators and data fields.
type ResponseShapeError struct {
	Reason string
	Err    error
}

func (e *ResponseShapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *ResponseShapeError) Unwrap() error { return e.Err }

// UserMessage turns a submission error into the text shown to the user.
// Transport and shape failures share one wording.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Reason
	}
	return "Search failed: " + err.Error()
}
