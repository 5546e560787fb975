package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// HTTPErrorResponse is the envelope written for every failed request.
type HTTPErrorResponse struct {
	Success   bool             `json:"success"`
	Error     HTTPErrorDetails `json:"error"`
	RequestID string           `json:"request_id,omitempty"`
	Timestamp string           `json:"timestamp"`
}

// HTTPErrorDetails contains the error details
type HTTPErrorDetails struct {
	Type      string `json:"type"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	Resource  string `json:"resource,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// WriteHTTPError writes a standardized error response and logs it at a level
// derived from the error severity.
func WriteHTTPError(w http.ResponseWriter, r *http.Request, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	var unifiedErr *UnifiedError
	if !errors.As(err, &unifiedErr) {
		unifiedErr = Internal(CodeInternalError.String(), "An unexpected error occurred").
			WithCause(err).
			Build()
	}

	var requestID string
	if r != nil {
		requestID = middleware.GetReqID(r.Context())
	}

	statusCode := getHTTPStatusCode(unifiedErr)

	message := unifiedErr.Message
	if userMsg := ErrorCode(unifiedErr.Code).UserMessage(); userMsg != "" {
		message = userMsg
	}

	// Internal failures never leak their cause to the client.
	details := unifiedErr.Details
	if statusCode >= http.StatusInternalServerError {
		details = ""
	}

	response := HTTPErrorResponse{
		Success: false,
		Error: HTTPErrorDetails{
			Type:      string(unifiedErr.Type),
			Code:      unifiedErr.Code,
			Message:   message,
			Details:   details,
			Resource:  unifiedErr.Resource,
			Retryable: unifiedErr.Retryable,
		},
		RequestID: requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Log(getLogLevel(unifiedErr.Severity),
		"HTTP error response",
		zap.String("error_type", string(unifiedErr.Type)),
		zap.String("error_code", unifiedErr.Code),
		zap.String("message", unifiedErr.Message),
		zap.String("operation", unifiedErr.Operation),
		zap.String("request_id", requestID),
		zap.Int("status_code", statusCode),
		zap.Error(unifiedErr.Cause),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("Failed to encode error response",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
	}
}

// getHTTPStatusCode determines the HTTP status code for an error
func getHTTPStatusCode(err *UnifiedError) int {
	if err.Code != "" {
		if code := ErrorCode(err.Code).HTTPStatusCode(); code != http.StatusInternalServerError {
			return code
		}
	}

	switch err.Type {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeDomain:
		return http.StatusUnprocessableEntity
	case ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	case ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	case ErrorTypeUnavailable:
		return http.StatusServiceUnavailable
	case ErrorTypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// getLogLevel converts error severity to zap log level
func getLogLevel(severity ErrorSeverity) zapcore.Level {
	switch severity {
	case SeverityCritical, SeverityHigh:
		return zapcore.ErrorLevel
	case SeverityMedium:
		return zapcore.WarnLevel
	case SeverityLow:
		return zapcore.InfoLevel
	default:
		return zapcore.WarnLevel
	}
}
