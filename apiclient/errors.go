package apiclient

import (
	"fmt"

	internalerrors "github.com/jrsteele09/go-auth-session-client/internal/errors"
)

// ErrRemote matches every RemoteError with errors.Is.
var ErrRemote = internalerrors.ErrRemote

// ErrorInfo is the error block of an API response.
type ErrorInfo struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// RemoteError is a failed call to the remote API: a transport failure, a non-2xx
// status, an undecodable body, or a response flagged as unsuccessful.
type RemoteError struct {
	Op                  string
	StatusCode          int
	Code                int
	Message             string
	Details             string
	UnauthorizedRequest bool
	Err                 error
}

func (e *RemoteError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func (e *RemoteError) Is(target error) bool {
	return target == ErrRemote
}
