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
	ErrCancelled      ErrorCode = "CANCELLED"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Library errors
	ErrModInvalid     ErrorCode = "MOD_INVALID"
	ErrModpackInvalid ErrorCode = "MODPACK_INVALID"
	ErrCycle          ErrorCode = "CYCLE"

	// Catalog errors
	ErrCatalogNoData ErrorCode = "CATALOG_NO_DATA"
	ErrConnectivity  ErrorCode = "CONNECTIVITY"
	ErrCatalogAuth   ErrorCode = "CATALOG_AUTH"
	ErrChecksum      ErrorCode = "CHECKSUM"

	// Persistence errors
	ErrStorage      ErrorCode = "STORAGE"
	ErrTemplateSave ErrorCode = "TEMPLATE_SAVE"
	ErrTemplateLoad ErrorCode = "TEMPLATE_LOAD"
	ErrManifest     ErrorCode = "MANIFEST"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
)

// ModkeeperError represents a structured error with code and details
type ModkeeperError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *ModkeeperError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *ModkeeperError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *ModkeeperError) Is(target error) bool {
	var targetErr *ModkeeperError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new ModkeeperError with the given code and message
func New(code ErrorCode, message string) *ModkeeperError {
	return &ModkeeperError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new ModkeeperError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *ModkeeperError {
	return &ModkeeperError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a ModkeeperError
func Wrap(err error, code ErrorCode, message string) *ModkeeperError {
	if err == nil {
		return nil
	}
	return &ModkeeperError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *ModkeeperError {
	if err == nil {
		return nil
	}
	return &ModkeeperError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *ModkeeperError) WithDetail(key string, value interface{}) *ModkeeperError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *ModkeeperError) WithDetails(details map[string]interface{}) *ModkeeperError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code anywhere in its chain
func IsErrorCode(err error, code ErrorCode) bool {
	for err != nil {
		var mkErr *ModkeeperError
		if !errors.As(err, &mkErr) {
			return false
		}
		if mkErr.Code == code {
			return true
		}
		err = mkErr.Wrapped
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a ModkeeperError
func GetErrorCode(err error) ErrorCode {
	var mkErr *ModkeeperError
	if errors.As(err, &mkErr) {
		return mkErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a ModkeeperError
func GetErrorDetails(err error) map[string]interface{} {
	var mkErr *ModkeeperError
	if errors.As(err, &mkErr) {
		return mkErr.Details
	}
	return nil
}
