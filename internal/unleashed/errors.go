package unleashed

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport indicates the API could not be reached or the response not read.
	ErrTransport = errors.New("unleashed: transport error")
	// ErrRemoteRejected indicates Unleashed answered with an unexpected status or body.
	ErrRemoteRejected = errors.New("unleashed: request rejected")
)

// RejectedError carries the status and raw body of a rejected call for diagnostics.
type RejectedError struct {
	StatusCode int
	Body       string
	Reason     string
}

func (e *RejectedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unleashed: request rejected: status %d: %s", e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("unleashed: request rejected: status %d", e.StatusCode)
}

func (e *RejectedError) Unwrap() error {
	return ErrRemoteRejected
}

// StatusCode extracts the HTTP status from err, or 0 when no response was received.
func StatusCode(err error) int {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return rejected.StatusCode
	}
	return 0
}

// ResponseBody extracts the raw response body from err when there was one.
func ResponseBody(err error) string {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return rejected.Body
	}
	return ""
}
