// Package errors provides structured error handling for dirsentry.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (watch root, seed scan, sinks)
//   - 3XX: Watch errors (notifier init and delivery)
//   - 5XX: Internal errors
package errors

import "fmt"

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryWatch indicates notifier-related errors.
	CategoryWatch Category = "WATCH"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigInvalid = "ERR_101_CONFIG_INVALID"
	ErrCodeRootMissing   = "ERR_102_WATCH_ROOT_MISSING"
	ErrCodeRootNotDir    = "ERR_103_WATCH_ROOT_NOT_DIR"

	// IO errors (200-299)
	ErrCodeSeedScan = "ERR_201_SEED_SCAN_FAILED"
	ErrCodeSinkOpen = "ERR_202_SINK_OPEN_FAILED"
	ErrCodeLockHeld = "ERR_203_LOCK_HELD"

	// Watch errors (300-399)
	ErrCodeWatchInit     = "ERR_301_WATCH_INIT_FAILED"
	ErrCodeWatchDelivery = "ERR_302_WATCH_DELIVERY"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// SentryError is the structured error type for dirsentry.
// It carries a stable code for logging plus the underlying cause.
type SentryError struct {
	// Code is the unique error code (e.g., "ERR_102_WATCH_ROOT_MISSING").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Watch, Internal).
	Category Category

	// Cause is the underlying error that caused this error.
	Cause error
}

// Error implements the error interface.
func (e *SentryError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *SentryError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with SentryError.
func (e *SentryError) Is(target error) bool {
	if t, ok := target.(*SentryError); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new SentryError with the given code and message.
// The category is derived from the code.
func New(code string, message string, cause error) *SentryError {
	return &SentryError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a SentryError from an existing error.
// Returns nil if err is nil.
func Wrap(code string, err error) *SentryError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *SentryError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// WatchError creates a notifier-related error.
func WatchError(message string, cause error) *SentryError {
	return New(ErrCodeWatchInit, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *SentryError {
	return New(ErrCodeInternal, message, cause)
}

// categoryFromCode derives the category from the numeric range of a code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryWatch
	default:
		return CategoryInternal
	}
}
