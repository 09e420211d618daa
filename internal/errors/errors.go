package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeNotFound        ErrorType = "NOT_FOUND"
	ErrorTypeValidation      ErrorType = "VALIDATION"
	ErrorTypeInternal        ErrorType = "INTERNAL"
	ErrorTypeIO              ErrorType = "IO_FAILURE"
	ErrorTypeNoStagedChanges ErrorType = "NO_STAGED_CHANGES"
	ErrorTypeCorruptCommit   ErrorType = "CORRUPT_COMMIT"
	ErrorTypeCorruptObject   ErrorType = "CORRUPT_OBJECT"
)

type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Details any       `json:"details,omitempty"`
	Err     error     `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsType reports whether any error in err's chain is an *Error of type t.
func IsType(err error, t ErrorType) bool {
	var e *Error
	if !stderrors.As(err, &e) {
		return false
	}
	if e.Type == t {
		return true
	}
	return e.Err != nil && IsType(e.Err, t)
}

// StatusCode returns the HTTP status carried by err, or 500.
func StatusCode(err error) int {
	var e *Error
	if stderrors.As(err, &e) && e.Code != 0 {
		return e.Code
	}
	return http.StatusInternalServerError
}

func NotFound(message string) *Error {
	return &Error{
		Type:    ErrorTypeNotFound,
		Message: message,
		Code:    http.StatusNotFound,
	}
}

func ValidationError(message string, details any) *Error {
	return &Error{
		Type:    ErrorTypeValidation,
		Message: message,
		Code:    http.StatusBadRequest,
		Details: details,
	}
}

// IOFailure wraps a filesystem error hit while performing op on path.
func IOFailure(op, path string, err error) *Error {
	return &Error{
		Type:    ErrorTypeIO,
		Message: fmt.Sprintf("%s %s", op, path),
		Code:    http.StatusInternalServerError,
		Details: path,
		Err:     err,
	}
}

func NoStagedChanges() *Error {
	return &Error{
		Type:    ErrorTypeNoStagedChanges,
		Message: "No files staged for commit",
		Code:    http.StatusConflict,
	}
}

func CorruptCommit(id string, err error) *Error {
	return &Error{
		Type:    ErrorTypeCorruptCommit,
		Message: fmt.Sprintf("commit record %s unreadable", id),
		Code:    http.StatusNotFound,
		Details: id,
		Err:     err,
	}
}

func CorruptObject(digest, actual string) *Error {
	return &Error{
		Type:    ErrorTypeCorruptObject,
		Message: fmt.Sprintf("object %s content hash mismatch", digest),
		Code:    http.StatusInternalServerError,
		Details: map[string]string{"expected": digest, "actual": actual},
	}
}
