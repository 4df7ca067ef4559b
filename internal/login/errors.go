package login

import (
	"errors"
	"fmt"
)

// User-facing messages
const (
	MsgRequired        = "Username and password are required!"
	MsgBuildFailed     = "Error building request."
	MsgLoggedIn        = "Logged in successfully!"
	MsgInvalidResponse = "Invalid response. Try again."
	MsgNoConnection    = "Check your connection."
	MsgPersistFailed   = "Could not save session. Try again."
)

var (
	// ErrSubmitInProgress is returned when a login request is already in flight
	ErrSubmitInProgress = errors.New("login already in progress")
	// ErrSessionEstablished is returned once the controller has navigated away
	ErrSessionEstablished = errors.New("session already established")
)

// ValidationError means the form was rejected before any network call
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %v", e.Fields)
}

// MalformedResponseError means a success response lacked required fields
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed login response: %s: %v", e.Reason, e.Err)
	}
	return "malformed login response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// PersistError means the session record could not be written locally
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to persist session: %v", e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
