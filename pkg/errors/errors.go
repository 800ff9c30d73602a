package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown        ErrorCode = "UNKNOWN"
	ErrInternal       ErrorCode = "INTERNAL"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrAlreadyExists  ErrorCode = "ALREADY_EXISTS"
	ErrNotImplemented ErrorCode = "NOT_IMPLEMENTED"
	ErrIO             ErrorCode = "IO"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Condition errors
	ErrConditionType     ErrorCode = "CONDITION_TYPE"
	ErrConditionInvalid  ErrorCode = "CONDITION_INVALID"
	ErrConditionNotFound ErrorCode = "CONDITION_NOT_FOUND"
	ErrConditionCycle    ErrorCode = "CONDITION_CYCLE"
	ErrExpressionSyntax  ErrorCode = "EXPRESSION_SYNTAX"

	// Volume errors
	ErrCorruptVolume  ErrorCode = "CORRUPT_VOLUME"
	ErrVolumeNotFound ErrorCode = "VOLUME_NOT_FOUND"

	// Pack errors
	ErrPackNotFound ErrorCode = "PACK_NOT_FOUND"
	ErrPackInvalid  ErrorCode = "PACK_INVALID"
	ErrManifest     ErrorCode = "MANIFEST"
)

// InstkitError represents a structured error with code and details
type InstkitError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *InstkitError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *InstkitError) Unwrap() error {
	return e.Wrapped
}

// Is matches any InstkitError carrying the same code
func (e *InstkitError) Is(target error) bool {
	var targetErr *InstkitError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new InstkitError with the given code and message
func New(code ErrorCode, message string) *InstkitError {
	return &InstkitError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new InstkitError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *InstkitError {
	return &InstkitError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with an InstkitError. A nil err yields nil.
func Wrap(err error, code ErrorCode, message string) error {
	if err == nil {
		return nil
	}
	return &InstkitError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message. A nil err yields nil.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &InstkitError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *InstkitError) WithDetail(key string, value interface{}) *InstkitError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *InstkitError) WithDetails(details map[string]interface{}) *InstkitError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var instErr *InstkitError
	if errors.As(err, &instErr) {
		return instErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not an InstkitError
func GetErrorCode(err error) ErrorCode {
	var instErr *InstkitError
	if errors.As(err, &instErr) {
		return instErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not an InstkitError
func GetErrorDetails(err error) map[string]interface{} {
	var instErr *InstkitError
	if errors.As(err, &instErr) {
		return instErr.Details
	}
	return nil
}
