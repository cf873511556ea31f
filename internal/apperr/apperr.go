// Package apperr defines errors that carry an HTTP status.
package apperr

import (
	"fmt"
	"net/http"
)

type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string { return e.Message }

func New(code int, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func BadRequest(format string, args ...interface{}) *Error {
	return New(http.StatusBadRequest, format, args...)
}

func Unauthorized(format string, args ...interface{}) *Error {
	return New(http.StatusUnauthorized, format, args...)
}

func Forbidden(format string, args ...interface{}) *Error {
	return New(http.StatusForbidden, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return New(http.StatusNotFound, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return New(http.StatusConflict, format, args...)
}
