package errors

import (
	stderrors "errors"
	"fmt"
)

// SnapError is the structured error type for SnapFind.
// It provides rich context for error handling, logging, and user presentation.
type SnapError struct {
	// Code is the unique error code (e.g., "ERR_301_DEPTH_EXCEEDED").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Limit, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *SnapError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *SnapError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work against the sentinels below.
func (e *SnapError) Is(target error) bool {
	if t, ok := target.(*SnapError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *SnapError) WithDetail(key, value string) *SnapError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *SnapError) WithSuggestion(suggestion string) *SnapError {
	e.Suggestion = suggestion
	return e
}

// New creates a new SnapError with the given code and message.
// Category, severity, and the default suggestion are derived from the code.
func New(code string, message string, cause error) *SnapError {
	return &SnapError{
		Code:       code,
		Message:    message,
		Category:   categoryFromCode(code),
		Severity:   severityFromCode(code),
		Cause:      cause,
		Suggestion: defaultSuggestion(code),
	}
}

// Wrap creates a SnapError from an existing error.
// The error's message becomes the SnapError message.
func Wrap(code string, err error) *SnapError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// Sentinels for errors.Is comparisons. Matching is by code only.
var (
	ErrDepthExceeded      = &SnapError{Code: ErrCodeDepthExceeded}
	ErrFileCountExceeded  = &SnapError{Code: ErrCodeFileCountExceeded}
	ErrFileSizeExceeded   = &SnapError{Code: ErrCodeFileSizeExceeded}
	ErrPathTooLong        = &SnapError{Code: ErrCodePathTooLong}
	ErrContentTooLarge    = &SnapError{Code: ErrCodeContentTooLarge}
	ErrTooManyDocuments   = &SnapError{Code: ErrCodeTooManyDocuments}
	ErrTooManyPatterns    = &SnapError{Code: ErrCodeTooManyPatterns}
	ErrInvalidQuery       = &SnapError{Code: ErrCodeInvalidQuery}
	ErrQueryEmpty         = &SnapError{Code: ErrCodeQueryEmpty}
	ErrInvalidIndexFormat = &SnapError{Code: ErrCodeInvalidIndexFormat}
	ErrIndexNotFound      = &SnapError{Code: ErrCodeIndexNotFound}
	ErrIO                 = &SnapError{Code: ErrCodeIO}
)

// DepthExceeded reports a directory nested deeper than the configured bound.
func DepthExceeded(path string, depth, max int) *SnapError {
	return New(ErrCodeDepthExceeded,
		fmt.Sprintf("directory depth %d exceeds limit %d", depth, max), nil).
		WithDetail("path", path)
}

// FileCountExceeded reports more files than the crawler may accept.
func FileCountExceeded(max int) *SnapError {
	return New(ErrCodeFileCountExceeded,
		fmt.Sprintf("file count exceeds limit %d", max), nil)
}

// FileSizeExceeded reports a file larger than the configured bound.
func FileSizeExceeded(path string, size, max int64) *SnapError {
	return New(ErrCodeFileSizeExceeded,
		fmt.Sprintf("file size %d exceeds limit %d", size, max), nil).
		WithDetail("path", path)
}

// PathTooLong reports a path whose byte length exceeds the bound.
func PathTooLong(path string, length, max int) *SnapError {
	return New(ErrCodePathTooLong,
		fmt.Sprintf("path length %d exceeds limit %d", length, max), nil).
		WithDetail("path", path)
}

// ContentTooLarge reports document content over the engine bound.
func ContentTooLarge(size, max int) *SnapError {
	return New(ErrCodeContentTooLarge,
		fmt.Sprintf("content size %d exceeds limit %d", size, max), nil)
}

// TooManyDocuments reports a full document store.
func TooManyDocuments(max int) *SnapError {
	return New(ErrCodeTooManyDocuments,
		fmt.Sprintf("document count exceeds limit %d", max), nil)
}

// TooManyPatterns reports a query with more glob parts than allowed.
func TooManyPatterns(count, max int) *SnapError {
	return New(ErrCodeTooManyPatterns,
		fmt.Sprintf("query has %d patterns, limit is %d", count, max), nil)
}

// InvalidQuery reports a query rejected by validation or pattern compilation.
func InvalidQuery(reason string, cause error) *SnapError {
	return New(ErrCodeInvalidQuery, "invalid query: "+reason, cause)
}

// InvalidIndexFormat reports a persisted index that cannot be decoded.
func InvalidIndexFormat(reason string, cause error) *SnapError {
	return New(ErrCodeInvalidIndexFormat, "invalid index format: "+reason, cause)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *SnapError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// IOError creates an I/O-related error.
func IOError(message string, cause error) *SnapError {
	return New(ErrCodeIO, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *SnapError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *SnapError {
	return New(ErrCodeInternal, message, cause)
}

// As returns the first SnapError in err's chain.
func As(err error) (*SnapError, bool) {
	var se *SnapError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsLimit reports whether err is a resource limit violation.
// Limit errors are deterministic and never worth retrying.
func IsLimit(err error) bool {
	se, ok := As(err)
	return ok && se.Category == CategoryLimit
}

// IsFatal checks if an error has fatal severity.
// Fatal errors should abort the current operation.
func IsFatal(err error) bool {
	se, ok := As(err)
	return ok && se.Severity == SeverityFatal
}

// GetCode extracts the error code from a SnapError.
// Returns empty string if not a SnapError.
func GetCode(err error) string {
	if se, ok := As(err); ok {
		return se.Code
	}
	return ""
}

// GetCategory extracts the category from a SnapError.
// Returns empty string if not a SnapError.
func GetCategory(err error) Category {
	if se, ok := As(err); ok {
		return se.Category
	}
	return ""
}
