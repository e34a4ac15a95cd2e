package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned when no live session has the requested ID.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionClosed is returned for events delivered after a session was closed.
	ErrSessionClosed = errors.New("quiz session closed")
	// ErrInvalidTransition is returned when an event does not apply to the current screen.
	ErrInvalidTransition = errors.New("event not allowed on current screen")
	// ErrOptionNotFound indicates a selected option is not one of the question's options.
	ErrOptionNotFound = errors.New("option not found")
	// ErrNoSelection is returned when advancing before an option was selected.
	ErrNoSelection = errors.New("no option selected for current question")
	// ErrFetchInProgress is returned when a quiz is submitted while another fetch is pending.
	ErrFetchInProgress = errors.New("question fetch already in progress")
	// ErrNoQuestions means the question bank had nothing for the requested filters.
	ErrNoQuestions = errors.New("no questions matched the quiz configuration")
	// ErrInvalidConfig wraps quiz configuration validation failures.
	ErrInvalidConfig = errors.New("invalid quiz configuration")
	// ErrUnauthenticated is returned when the auth gate is closed.
	ErrUnauthenticated = errors.New("sign in required")
	// ErrStaleSession is returned when a fetch completes after its session was reset.
	ErrStaleSession = errors.New("quiz session was reset while loading")
)

// FetchError reports a transport-level failure talking to the question source.
type FetchError struct {
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("fetch questions: status %d: %v", e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch questions: status %d", e.StatusCode)
	case e.Err != nil:
		return "fetch questions: " + e.Err.Error()
	}
	return "fetch questions failed"
}

func (e *FetchError) Unwrap() error { return e.Err }

// AuthError carries the identity provider's human-readable failure message.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "sign-in failed"
}

func (e *AuthError) Unwrap() error { return e.Err }
