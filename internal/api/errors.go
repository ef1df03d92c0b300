package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized signals that the API rejected the session token on a
	// call that requires authentication.
	ErrUnauthorized = errors.New("api: session rejected")
	// ErrTransport wraps network level failures.
	ErrTransport = errors.New("api: transport failure")
	// ErrDecode wraps malformed JSON answers.
	ErrDecode = errors.New("api: malformed response")
	// ErrRejected wraps domain rejections converted by the Err helpers.
	ErrRejected = errors.New("api: request rejected")
)

// UnauthorizedError is returned for a 401 on an auth-required call.
type UnauthorizedError struct {
	Endpoint Endpoint
	Message  string
}

func (e *UnauthorizedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %s: session rejected", e.Endpoint)
	}
	return fmt.Sprintf("api: %s: session rejected: %s", e.Endpoint, e.Message)
}

// Is lets errors.Is match ErrUnauthorized.
func (e *UnauthorizedError) Is(target error) bool {
	return target == ErrUnauthorized
}

// RejectedError carries the server message of a domain rejection.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return ErrRejected.Error()
	}
	return ErrRejected.Error() + ": " + e.Message
}

// Is lets errors.Is match ErrRejected.
func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

func rejection(message string) error {
	return &RejectedError{Message: message}
}

// IsUnauthorized reports whether err is a session rejection.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// RejectionMessage extracts the server message from a domain rejection.
func RejectionMessage(err error) (string, bool) {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return rejected.Message, true
	}
	return "", false
}
