package backend

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind classifies a failed request.
type Kind int

const (
	// KindStatus: the server answered with a non-200 status.
	KindStatus Kind = iota + 1
	// KindConnection: the request never got an answer.
	KindConnection
	// KindTimeout: no answer within the client timeout.
	KindTimeout
	// KindPayload: the answer could not be decoded into listings.
	KindPayload
)

func (k Kind) String() string {
	switch k {
	case KindStatus:
		return "status"
	case KindConnection:
		return "connection"
	case KindTimeout:
		return "timeout"
	case KindPayload:
		return "payload"
	case 0:
		return "other"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is the single failure value of Download and Upload. Message is meant
// to be shown to the user as is.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func statusError(code int, statusText string) *Error {
	if statusText == "" {
		statusText = http.StatusText(code)
	}
	return &Error{
		Kind:    KindStatus,
		Status:  code,
		Message: fmt.Sprintf("Error %d: %s", code, statusText),
	}
}

func connectionError(err error) *Error {
	return &Error{Kind: KindConnection, Message: "Connection error occurred", Err: err}
}

func timeoutError(timeout time.Duration, err error) *Error {
	return &Error{
		Kind:    KindTimeout,
		Message: fmt.Sprintf("Request did not complete within %dms", timeout.Milliseconds()),
		Err:     err,
	}
}

func payloadError(err error) *Error {
	return &Error{Kind: KindPayload, Message: "Received malformed listing data", Err: err}
}

// KindOf returns the kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
