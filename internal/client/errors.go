package client

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned by Predict when the service signals the
// session token is no longer valid. Callers react by forcing logout; the
// request is never retried as-is.
var ErrUnauthorized = errors.New("session token no longer valid")

// AuthError is returned by Login when the service rejects the credentials.
// It carries the server-provided message when one was present so the view
// can surface it verbatim.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return e.Message
}

// NetworkError covers every Predict failure that is not a session-expiry
// signal: transport errors, malformed responses, non-2xx statuses. It is
// transient from the controller's point of view and delegated to the next
// tick rather than retried.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
