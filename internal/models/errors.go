package models

import "errors"

// Application-wide standard errors
var (
	// Story & Event Errors
	ErrStoryNotFound = errors.New("story id not found")

	// User & Authorization Errors
	ErrUserNotFound = errors.New("user not found")
	// ErrUnauthorized: identity absent, token mismatch, or identity valid
	// but not the story's owner (edit path).
	ErrUnauthorized = errors.New("invalid user token/id")
	// ErrInvalidIdentity: a supplied identity failed verification at
	// story creation time. Kept distinct from ErrUnauthorized because the
	// original service reported it with a different status code.
	ErrInvalidIdentity = errors.New("invalid user token/id at creation")

	// Allocation Errors (recoverable, consumed by the retry loop)
	ErrUserIDTaken  = errors.New("user id already taken")
	ErrStoryIDTaken = errors.New("story id already taken")

	// General Request/Server Errors
	ErrInternalServer = errors.New("internal server error")
	ErrBadRequest     = errors.New("bad request")
)
