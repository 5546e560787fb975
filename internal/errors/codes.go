package errors

import "net/http"

// ErrorCode represents a unique error code for specific error scenarios
type ErrorCode string

// Navigation error codes
const (
	// Graph load errors. Fatal at startup; no partial graph is ever exposed.
	CodeLoadDanglingEdge  ErrorCode = "LOAD_DANGLING_EDGE"
	CodeLoadDuplicateNode ErrorCode = "LOAD_DUPLICATE_NODE"
	CodeLoadNoEntrance    ErrorCode = "LOAD_NO_ENTRANCE"
	CodeLoadDuplicateName ErrorCode = "LOAD_DUPLICATE_NAME"
	CodeLoadSelfLoop      ErrorCode = "LOAD_SELF_LOOP"
	CodeLoadInvalidNode   ErrorCode = "LOAD_INVALID_NODE"
	CodeLoadSourceFailed  ErrorCode = "LOAD_SOURCE_FAILED"

	// Query errors
	CodeLocationNotFound ErrorCode = "LOCATION_NOT_FOUND"
	CodeNoPath           ErrorCode = "NO_PATH"
	CodeUnknownLandmark  ErrorCode = "UNKNOWN_LANDMARK"
	CodeSessionNotFound  ErrorCode = "SESSION_NOT_FOUND"

	// Validation errors
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeInvalidInput     ErrorCode = "INVALID_INPUT"

	// Infrastructure errors
	CodeInternalError      ErrorCode = "INTERNAL_ERROR"
	CodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	CodeTimeout            ErrorCode = "TIMEOUT"
	CodeRateLimitExceeded  ErrorCode = "RATE_LIMIT_EXCEEDED"

	// External service errors
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"
	CodeDynamoDBError        ErrorCode = "DYNAMODB_ERROR"
	CodeAIUnavailable        ErrorCode = "AI_UNAVAILABLE"
)

// HTTPStatusCode returns the appropriate HTTP status code for an error code
func (c ErrorCode) HTTPStatusCode() int {
	switch c {
	case CodeValidationFailed, CodeInvalidInput:
		return http.StatusBadRequest

	case CodeLocationNotFound, CodeUnknownLandmark, CodeSessionNotFound:
		return http.StatusNotFound

	case CodeNoPath:
		return http.StatusUnprocessableEntity

	case CodeRateLimitExceeded:
		return http.StatusTooManyRequests

	case CodeServiceUnavailable, CodeTimeout, CodeAIUnavailable:
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// UserMessage is the short explanation shown to end users for codes that
// reach the request layer.
func (c ErrorCode) UserMessage() string {
	switch c {
	case CodeLocationNotFound:
		return "could not understand location"
	case CodeNoPath:
		return "no route available"
	case CodeUnknownLandmark:
		return "could not recognize that location"
	case CodeSessionNotFound:
		return "session expired or unknown"
	case CodeRateLimitExceeded:
		return "too many requests"
	default:
		return ""
	}
}

// String returns the string representation of the error code
func (c ErrorCode) String() string {
	return string(c)
}

// IsRetryable returns whether an error with this code should be retried
func (c ErrorCode) IsRetryable() bool {
	switch c {
	case CodeTimeout, CodeServiceUnavailable, CodeDynamoDBError,
		CodeRateLimitExceeded, CodeAIUnavailable:
		return true
	default:
		return false
	}
}

// Severity returns the severity level for the error code
func (c ErrorCode) Severity() ErrorSeverity {
	switch c {
	case CodeInternalError, CodeLoadDanglingEdge, CodeLoadDuplicateNode,
		CodeLoadNoEntrance, CodeLoadDuplicateName, CodeLoadSelfLoop,
		CodeLoadInvalidNode, CodeLoadSourceFailed:
		return SeverityCritical

	case CodeServiceUnavailable, CodeDynamoDBError:
		return SeverityHigh

	case CodeTimeout, CodeRateLimitExceeded, CodeAIUnavailable, CodeNoPath:
		return SeverityMedium

	default:
		return SeverityLow
	}
}
