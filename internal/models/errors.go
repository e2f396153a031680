package models

import "errors"

// Client-side validation errors
var (
	ErrInvalidRegistration = errors.New("registration form has field errors")
	ErrCompletionRequired  = errors.New("required completion fields missing")
	ErrLGPDNotAccepted     = errors.New("lgpd terms not accepted")
)

// Flow errors
var (
	ErrSubmissionInFlight = errors.New("submission already in flight")
	ErrInvalidTransition  = errors.New("invalid flow transition")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionCorrupt     = errors.New("stored session is unreadable")
)

// Registration API errors
var (
	ErrUnreachable            = errors.New("registration API unreachable")
	ErrMalformedReferenceList = errors.New("malformed reference list")
	ErrMalformedResponse      = errors.New("malformed API response")
)

// Event configuration errors
var (
	ErrInvalidEvent = errors.New("invalid event configuration")
)
