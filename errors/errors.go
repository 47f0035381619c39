package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrHandshakeRejected  = fmt.Errorf("handshake rejected")
	ErrEmptyContent       = fmt.Errorf("message content is empty")
	ErrContentTooLong     = fmt.Errorf("message content is too long")
	ErrSinkClosed         = fmt.Errorf("sink closed")
	ErrSinkFull           = fmt.Errorf("sink full")
	ErrUserNotFound       = fmt.Errorf("user not found")
)

// MapToHTTPStatus translates domain errors into HTTP statuses at the edge.
// Anything unknown is a 500: the handler logs it and hides the detail.
func MapToHTTPStatus(err error) int {
	switch {
	case stderrors.Is(err, ErrInvalidCredentials),
		stderrors.Is(err, ErrHandshakeRejected):
		return http.StatusUnauthorized
	case stderrors.Is(err, ErrUserAlreadyExists):
		return http.StatusConflict
	case stderrors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, ErrInvalidPassword),
		stderrors.Is(err, ErrEmptyContent),
		stderrors.Is(err, ErrContentTooLong):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
