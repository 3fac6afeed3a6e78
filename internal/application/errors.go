package application

import (
	"errors"
	"fmt"
)

// ErrValidation is the root of every input error; handlers map it to 400.
var ErrValidation = errors.New("validation failed")

var (
	ErrUserIDRequired   = fmt.Errorf("%w: user id is required", ErrValidation)
	ErrInvalidUserID    = fmt.Errorf("%w: user id must be a UUID", ErrValidation)
	ErrInvalidPageSize  = fmt.Errorf("%w: take must be between %d and %d", ErrValidation, MinPageSize, MaxPageSize)
	ErrInvalidCursor    = fmt.Errorf("%w: prevEndId must be a positive integer", ErrValidation)
	ErrContentRequired  = fmt.Errorf("%w: content is required", ErrValidation)
	ErrUsernameTooShort = fmt.Errorf("%w: username too short", ErrValidation)
	ErrPasswordTooShort = fmt.Errorf("%w: password too short", ErrValidation)
)

// ErrUnauthorized is the root of authentication failures; handlers map it to 401.
var ErrUnauthorized = errors.New("unauthorized")

var ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrTaskNotFound  = errors.New("task not found")
	ErrTaskForbidden = errors.New("task belongs to another user")
)

// RequestError wraps a store failure that is reported back to the caller as a
// bad request. Detail is the database's own explanation when it has one.
type RequestError struct {
	Detail string
	Err    error
}

func (e *RequestError) Error() string {
	if e.Detail != "" {
		return "request failed: " + e.Detail
	}
	return "request failed"
}

func (e *RequestError) Unwrap() error { return e.Err }
