// internal/pkg/apperr/apperr.go
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport-level handling.
type Kind string

const (
	KindValidation   Kind = "validation"   // bad input, user can correct and retry in place
	KindGateway      Kind = "gateway"      // payment gateway failure, retryable
	KindVerification Kind = "verification" // payment verification failure, not retryable for the attempt
	KindNotFound     Kind = "not_found"
	KindTransient    Kind = "transient" // infrastructure hiccup, safe to retry as-is
	KindInternal     Kind = "internal"
)

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
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

// Validation creates a validation error.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Gateway creates a retryable payment gateway error.
func Gateway(message string, err error) *Error {
	return &Error{Kind: KindGateway, Message: message, Err: err}
}

// Verification creates a non-retryable payment verification error.
func Verification(message string, err error) *Error {
	return &Error{Kind: KindVerification, Message: message, Err: err}
}

// NotFound creates a not-found error.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Transient wraps an infrastructure failure that did not mutate anything and
// can be retried unchanged, like a read that lost its database connection.
func Transient(message string, err error) *Error {
	return &Error{Kind: KindTransient, Message: message, Err: err}
}

// Internal wraps an unexpected error.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

// IsGateway reports whether err is a retryable gateway error.
func IsGateway(err error) bool {
	return KindOf(err) == KindGateway
}

// IsVerification reports whether err is a verification error.
func IsVerification(err error) bool {
	return KindOf(err) == KindVerification
}

// IsTransient reports whether err is a retryable infrastructure error.
func IsTransient(err error) bool {
	return KindOf(err) == KindTransient
}
