package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a business-rule failure.
type ErrorCode string

const (
	ErrCodeNotFound             ErrorCode = "NOT_FOUND"
	ErrCodeInvalidState         ErrorCode = "INVALID_STATE"
	ErrCodeInvalidQuantity      ErrorCode = "INVALID_QUANTITY"
	ErrCodeQuantityExceeded     ErrorCode = "QUANTITY_EXCEEDED"
	ErrCodeInvalidAmount        ErrorCode = "INVALID_AMOUNT"
	ErrCodeLineAlreadyProcessed ErrorCode = "LINE_ALREADY_PROCESSED"
	ErrCodeValidationFailure    ErrorCode = "VALIDATION_FAILURE"
)

type DomainError struct {
	Code    ErrorCode
	Message string
}

func (e *DomainError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) ErrorCode() string { return string(e.Code) }

// Is matches any DomainError carrying the same code, so callers can
// write errors.Is(err, domain.ErrInvalidState).
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrNotFound             = &DomainError{Code: ErrCodeNotFound}
	ErrInvalidState         = &DomainError{Code: ErrCodeInvalidState}
	ErrInvalidQuantity      = &DomainError{Code: ErrCodeInvalidQuantity}
	ErrQuantityExceeded     = &DomainError{Code: ErrCodeQuantityExceeded}
	ErrInvalidAmount        = &DomainError{Code: ErrCodeInvalidAmount}
	ErrLineAlreadyProcessed = &DomainError{Code: ErrCodeLineAlreadyProcessed}
	ErrValidationFailure    = &DomainError{Code: ErrCodeValidationFailure}
)

func newError(code ErrorCode, format string, args ...any) error {
	return &DomainError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...any) error {
	return newError(ErrCodeNotFound, format, args...)
}

func NewInvalidStateError(format string, args ...any) error {
	return newError(ErrCodeInvalidState, format, args...)
}

func NewInvalidQuantityError(format string, args ...any) error {
	return newError(ErrCodeInvalidQuantity, format, args...)
}

func NewQuantityExceededError(format string, args ...any) error {
	return newError(ErrCodeQuantityExceeded, format, args...)
}

func NewInvalidAmountError(format string, args ...any) error {
	return newError(ErrCodeInvalidAmount, format, args...)
}

func NewLineAlreadyProcessedError(format string, args ...any) error {
	return newError(ErrCodeLineAlreadyProcessed, format, args...)
}

func NewValidationError(format string, args ...any) error {
	return newError(ErrCodeValidationFailure, format, args...)
}

// CodeOf returns the code of the first DomainError in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code, true
	}
	return "", false
}
