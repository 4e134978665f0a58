package errors

import (
	"errors"
	"fmt"
)

// Common application errors
var (
	ErrShapeMismatch     = errors.New("tensor shape mismatch")
	ErrCheckpointExists  = errors.New("checkpoint already exists")
	ErrCheckpointMissing = errors.New("checkpoint not found")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrInsufficientData  = errors.New("insufficient data")
	ErrModelNotBuilt     = errors.New("model not built")
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeShape      ErrorType = "shape"
	ErrorTypeCheckpoint ErrorType = "checkpoint"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeData       ErrorType = "data"
	ErrorTypeInternal   ErrorType = "internal"
)

// AppError represents an application-specific error with additional context
type AppError struct {
	Type    ErrorType `json:"type"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// Report formats an error for top-level user display as "{kind}: {message}".
// AppErrors report their type as the kind; any other error reports as internal.
func Report(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return fmt.Sprintf("%s: %s", appErr.Type, appErr.Message)
	}
	return fmt.Sprintf("%s: %s", ErrorTypeInternal, err.Error())
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:    errType,
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with application context
func WrapError(err error, errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// NewShapeError creates a tensor shape mismatch error
func NewShapeError(code, message string) *AppError {
	return NewAppError(ErrorTypeShape, code, message)
}

// NewCheckpointError creates a checkpoint error
func NewCheckpointError(code, message string) *AppError {
	return NewAppError(ErrorTypeCheckpoint, code, message)
}

// NewConfigError creates a configuration error
func NewConfigError(code, message string) *AppError {
	return NewAppError(ErrorTypeConfig, code, message)
}

// NewDataError creates a data error
func NewDataError(code, message string) *AppError {
	return NewAppError(ErrorTypeData, code, message)
}

// Error codes for different error scenarios
const (
	CodeShapeMismatch     = "SHAPE_MISMATCH"
	CodeCheckpointExists  = "CHECKPOINT_EXISTS"
	CodeCheckpointMissing = "CHECKPOINT_MISSING"
	CodeCheckpointWrite   = "CHECKPOINT_WRITE_FAILED"
	CodeCheckpointRead    = "CHECKPOINT_READ_FAILED"
	CodeInvalidConfig     = "INVALID_CONFIG"
	CodeInsufficientData  = "INSUFFICIENT_DATA"
	CodeModelNotBuilt     = "MODEL_NOT_BUILT"
	CodeHistoryWrite      = "HISTORY_WRITE_FAILED"
)
