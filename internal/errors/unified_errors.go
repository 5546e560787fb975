// Package errors provides the unified error type used across the navigation
// backend. Every failure the core can surface (load errors, unresolved
// locations, missing routes, unknown landmarks) is a *UnifiedError carrying a
// stable code, so callers see a finite taxonomy no matter which layer failed.
package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType is the coarse category of a failure. HTTP status falls back on it
// when the code alone does not decide.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "VALIDATION"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"
	ErrorTypeDomain     ErrorType = "DOMAIN"

	ErrorTypeInternal  ErrorType = "INTERNAL"
	ErrorTypeTimeout   ErrorType = "TIMEOUT"
	ErrorTypeRateLimit ErrorType = "RATE_LIMIT"

	// Collaborators: OpenAI, DynamoDB.
	ErrorTypeExternal    ErrorType = "EXTERNAL"
	ErrorTypeUnavailable ErrorType = "UNAVAILABLE"
)

// ErrorSeverity picks the log level an error is reported at.
type ErrorSeverity string

const (
	SeverityLow      ErrorSeverity = "LOW"
	SeverityMedium   ErrorSeverity = "MEDIUM"
	SeverityHigh     ErrorSeverity = "HIGH"
	SeverityCritical ErrorSeverity = "CRITICAL"
)

// UnifiedError is the single error type returned by the navigation core.
type UnifiedError struct {
	Type    ErrorType `json:"type"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details"`

	Operation string `json:"operation"`
	Resource  string `json:"resource"`

	Severity  ErrorSeverity `json:"severity"`
	Retryable bool          `json:"retryable"`
	Cause     error         `json:"-"`

	// Call site of the constructor, for logs only.
	File string `json:"file,omitempty"`
	Line int    `json:"line,omitempty"`
}

func (e *UnifiedError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s:%s] %s: %s", e.Type, e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

func (e *UnifiedError) Unwrap() error {
	return e.Cause
}

// Is reports whether target carries the same code, so the sentinels in the
// domain package match the detailed errors built from the same code.
func (e *UnifiedError) Is(target error) bool {
	var other *UnifiedError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code != "" && other.Code == e.Code
}

// ErrorBuilder assembles a UnifiedError.
type ErrorBuilder struct {
	err *UnifiedError
}

// NewError starts a builder. Severity defaults to medium.
func NewError(errType ErrorType, code, message string) *ErrorBuilder {
	_, file, line, _ := runtime.Caller(1)

	return &ErrorBuilder{
		err: &UnifiedError{
			Type:     errType,
			Code:     code,
			Message:  message,
			Severity: SeverityMedium,
			File:     file,
			Line:     line,
		},
	}
}

func (b *ErrorBuilder) WithDetails(details string) *ErrorBuilder {
	b.err.Details = details
	return b
}

func (b *ErrorBuilder) WithOperation(operation string) *ErrorBuilder {
	b.err.Operation = operation
	return b
}

func (b *ErrorBuilder) WithResource(resource string) *ErrorBuilder {
	b.err.Resource = resource
	return b
}

func (b *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	b.err.Severity = severity
	return b
}

func (b *ErrorBuilder) WithRetryable(retryable bool) *ErrorBuilder {
	b.err.Retryable = retryable
	return b
}

// WithCause records the underlying error. A nil cause is allowed.
func (b *ErrorBuilder) WithCause(cause error) *ErrorBuilder {
	b.err.Cause = cause
	return b
}

func (b *ErrorBuilder) Build() *UnifiedError {
	return b.err
}

// Validation is for malformed requests.
func Validation(code, message string) *ErrorBuilder {
	return NewError(ErrorTypeValidation, code, message).
		WithSeverity(SeverityLow)
}

// NotFound is for queries, landmarks and sessions that match nothing.
func NotFound(code, message string) *ErrorBuilder {
	return NewError(ErrorTypeNotFound, code, message).
		WithSeverity(SeverityLow)
}

// Domain is for well-formed requests the graph cannot satisfy, such as two
// disconnected nodes.
func Domain(code, message string) *ErrorBuilder {
	return NewError(ErrorTypeDomain, code, message)
}

func Internal(code, message string) *ErrorBuilder {
	return NewError(ErrorTypeInternal, code, message).
		WithSeverity(SeverityHigh)
}

func Timeout(code, message string) *ErrorBuilder {
	return NewError(ErrorTypeTimeout, code, message).
		WithRetryable(true)
}

func External(code, message string) *ErrorBuilder {
	return NewError(ErrorTypeExternal, code, message).
		WithRetryable(true)
}

// IsType reports whether err is a UnifiedError of the given type.
func IsType(err error, errType ErrorType) bool {
	var unifiedErr *UnifiedError
	return errors.As(err, &unifiedErr) && unifiedErr.Type == errType
}

// HasCode reports whether code appears anywhere in err's cause chain.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var unifiedErr *UnifiedError
		if !errors.As(err, &unifiedErr) {
			return false
		}
		if unifiedErr.Code == code.String() {
			return true
		}
		err = unifiedErr.Cause
	}
	return false
}

func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

func IsRetryable(err error) bool {
	var unifiedErr *UnifiedError
	return errors.As(err, &unifiedErr) && unifiedErr.Retryable
}
