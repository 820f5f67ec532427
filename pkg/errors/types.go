package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a structured error code
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  ErrorCode = "CONFIG_INVALID"
	ErrCodeConfigRequired ErrorCode = "CONFIG_REQUIRED"

	// Database errors
	ErrCodeDatabaseConnection ErrorCode = "DATABASE_CONNECTION"
	ErrCodeDatabaseQuery      ErrorCode = "DATABASE_QUERY"
	ErrCodeDatabaseMigration  ErrorCode = "DATABASE_MIGRATION"

	// Resource errors
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Validation errors
	ErrCodeValidation   ErrorCode = "VALIDATION"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"

	// Pipeline stage errors
	ErrCodeAcquisitionFailed     ErrorCode = "ACQUISITION_FAILED"
	ErrCodeScriptParse           ErrorCode = "SCRIPT_PARSE_ERROR"
	ErrCodeGenerationUnavailable ErrorCode = "GENERATION_UNAVAILABLE"
	ErrCodeInsufficientVoicePool ErrorCode = "INSUFFICIENT_VOICE_POOL"
	ErrCodeSynthesisFailed       ErrorCode = "SYNTHESIS_FAILED"
	ErrCodeUploadFailed          ErrorCode = "UPLOAD_FAILED"

	// External provider errors
	ErrCodeSearchUnavailable    ErrorCode = "SEARCH_UNAVAILABLE"
	ErrCodeExtractionFailed     ErrorCode = "EXTRACTION_FAILED"
	ErrCodeIngestionFailed      ErrorCode = "INGESTION_FAILED"
	ErrCodeSynthesisUnavailable ErrorCode = "SYNTHESIS_UNAVAILABLE"
	ErrCodeInvalidVoice         ErrorCode = "INVALID_VOICE"
	ErrCodeAPITimeout           ErrorCode = "API_TIMEOUT"
	ErrCodeAPIRateLimit         ErrorCode = "API_RATE_LIMIT"

	// Internal errors
	ErrCodeInternal    ErrorCode = "INTERNAL"
	ErrCodeServiceDown ErrorCode = "SERVICE_DOWN"
)

// Classification distinguishes failures the caller can retry from
// failures that require a changed input or configuration.
type Classification string

const (
	// ClassTransient marks timeouts, rate limits, and 5xx-style provider
	// responses. Retrying the same request may succeed.
	ClassTransient Classification = "transient"
	// ClassPermanent marks validation failures, bad credentials, and
	// provider rejections. Retrying the same request will not succeed.
	ClassPermanent Classification = "permanent"
)

// AppError represents a structured application error
type AppError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Class   Classification         `json:"class,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying cause
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// Transient marks the error as retryable
func (e *AppError) Transient() *AppError {
	e.Class = ClassTransient
	return e
}

// Permanent marks the error as non-retryable
func (e *AppError) Permanent() *AppError {
	e.Class = ClassPermanent
	return e
}

// GetHTTPCode returns the appropriate HTTP status code
func (e *AppError) GetHTTPCode() int {
	return getDefaultHTTPCode(e.Code)
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new AppError with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(cause error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(cause error, code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// getDefaultHTTPCode returns the default HTTP status code for an error code
func getDefaultHTTPCode(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeAlreadyExists:
		return http.StatusConflict
	case ErrCodeValidation, ErrCodeInvalidInput, ErrCodeMissingField, ErrCodeInvalidVoice:
		return http.StatusBadRequest
	case ErrCodeAPIRateLimit:
		return http.StatusTooManyRequests
	case ErrCodeAPITimeout:
		return http.StatusRequestTimeout
	case ErrCodeServiceDown, ErrCodeSearchUnavailable, ErrCodeGenerationUnavailable, ErrCodeSynthesisUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeAcquisitionFailed, ErrCodeExtractionFailed, ErrCodeIngestionFailed,
		ErrCodeSynthesisFailed, ErrCodeUploadFailed:
		return http.StatusBadGateway
	case ErrCodeScriptParse, ErrCodeInsufficientVoicePool:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Common error constructors

// AcquisitionFailed reports that no usable source document survived acquisition
func AcquisitionFailed(reason string, cause error) *AppError {
	return Wrap(cause, ErrCodeAcquisitionFailed, reason)
}

// ScriptParseError reports an unparsable script-generation response
func ScriptParseError(reason string) *AppError {
	return New(ErrCodeScriptParse, reason).Permanent()
}

// SynthesisFailed reports a turn that exhausted its synthesis retries
func SynthesisFailed(turnIndex int, cause error) *AppError {
	return Wrapf(cause, ErrCodeSynthesisFailed, "synthesis failed for turn %d", turnIndex).
		WithDetail("turn", turnIndex)
}

// UploadFailed reports a storage publishing failure
func UploadFailed(cause error) *AppError {
	return Wrap(cause, ErrCodeUploadFailed, "artifact upload failed")
}

// ValidationError creates a validation error
func ValidationError(field string, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason).
		Permanent()
}

// ExternalServiceError creates an external service error
func ExternalServiceError(service string, cause error) *AppError {
	return Wrap(cause, externalServiceCode(service), fmt.Sprintf("external service '%s' error", service)).
		WithDetail("service", service)
}

// externalServiceCode maps a provider name onto its error code
func externalServiceCode(service string) ErrorCode {
	switch service {
	case "search":
		return ErrCodeSearchUnavailable
	case "extract":
		return ErrCodeExtractionFailed
	case "textgen":
		return ErrCodeGenerationUnavailable
	case "speech":
		return ErrCodeSynthesisUnavailable
	case "objectstore":
		return ErrCodeUploadFailed
	default:
		return ErrCodeServiceDown
	}
}

// ConfigError creates a configuration error
func ConfigError(key string, reason string) *AppError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("configuration error for '%s': %s", key, reason)).
		WithDetail("key", key).
		WithDetail("reason", reason)
}

// TimeoutError creates a timeout error
func TimeoutError(operation string, timeout string) *AppError {
	return New(ErrCodeAPITimeout, fmt.Sprintf("operation '%s' timed out after %s", operation, timeout)).
		WithDetail("operation", operation).
		WithDetail("timeout", timeout).
		Transient()
}

// RateLimitError creates a rate limit error
func RateLimitError(resource string) *AppError {
	return New(ErrCodeAPIRateLimit, fmt.Sprintf("rate limit exceeded for '%s'", resource)).
		WithDetail("resource", resource).
		Transient()
}

// Is checks if an error carries a specific code anywhere in its chain
func Is(err error, code ErrorCode) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// IsTransient reports whether the error chain carries a transient
// classification. An unclassified error defaults to permanent.
func IsTransient(err error) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Class != "" {
			return appErr.Class == ClassTransient
		}
		err = appErr.Cause
	}
	return false
}

// GetHTTPCode extracts the HTTP status code from an error
func GetHTTPCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.GetHTTPCode()
	}
	return http.StatusInternalServerError
}
