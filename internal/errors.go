package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation        ErrorType = "VALIDATION_ERROR"
	ErrorTypeInvalidTransition ErrorType = "INVALID_TRANSITION"
	ErrorTypeNotFound          ErrorType = "NOT_FOUND"
	ErrorTypeConflict          ErrorType = "CONFLICT"
	ErrorTypeSchema            ErrorType = "SCHEMA_ERROR"
	ErrorTypeInternal          ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidID        ErrorCode = "INVALID_ID"
	ErrCodeEmptyName        ErrorCode = "EMPTY_NAME"
	ErrCodeInvalidLevel     ErrorCode = "INVALID_DEPARTMENT_LEVEL"
	ErrCodeInvalidParent    ErrorCode = "INVALID_PARENT"
	ErrCodeInvalidPeriod    ErrorCode = "INVALID_PERIOD"
	ErrCodeInvalidMinutes   ErrorCode = "INVALID_MINUTES"
	ErrCodeForeignSegment   ErrorCode = "SEGMENT_OUTSIDE_DEPARTMENT"

	ErrCodeDepartmentNotFound ErrorCode = "DEPARTMENT_NOT_FOUND"
	ErrCodePositionNotFound   ErrorCode = "POSITION_NOT_FOUND"
	ErrCodeProgramNotFound    ErrorCode = "PROGRAM_NOT_FOUND"
	ErrCodeWorkItemNotFound   ErrorCode = "WORK_ITEM_NOT_FOUND"
	ErrCodeEmployeeNotFound   ErrorCode = "EMPLOYEE_NOT_FOUND"
	ErrCodeSegmentNotFound    ErrorCode = "SEGMENT_NOT_FOUND"
	ErrCodeTimesheetNotFound  ErrorCode = "TIMESHEET_NOT_FOUND"

	ErrCodeAlreadyEmployed   ErrorCode = "ALREADY_EMPLOYED"
	ErrCodeNoOpenSegment     ErrorCode = "NO_OPEN_SEGMENT"
	ErrCodeSameDayTransition ErrorCode = "SAME_DAY_TRANSITION"
	ErrCodeDateBeforeStart   ErrorCode = "DATE_BEFORE_SEGMENT_START"
	ErrCodeNothingToCancel   ErrorCode = "NOTHING_TO_CANCEL"
	ErrCodeOverlappingSpan   ErrorCode = "OVERLAPPING_SEGMENT"

	ErrCodeDuplicateName ErrorCode = "DUPLICATE_NAME"
	ErrCodeInUse         ErrorCode = "IN_USE"
	ErrCodeHasEntries    ErrorCode = "HAS_TIMESHEET_ENTRIES"

	ErrCodeNotSQLite       ErrorCode = "NOT_A_SQLITE_FILE"
	ErrCodeVersionMismatch ErrorCode = "SCHEMA_VERSION_MISMATCH"
	ErrCodeMissingTable    ErrorCode = "MISSING_TABLE"
	ErrCodeMissingColumn   ErrorCode = "MISSING_COLUMN"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {

			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// BlockingCount returns the number of records that prevented a conflicting operation.
func (e *AppError) BlockingCount() int64 {
	if d, ok := e.Details.(ConflictDetails); ok {
		return d.BlockingCount
	}
	return 0
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// ConflictDetails names what blocks an operation and how many rows of it exist.
type ConflictDetails struct {
	Resource      string `json:"resource"`
	BlockingCount int64  `json:"blocking_count"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewValidationFieldError reports one bad field. The field's code is also the error's
// code; the builder in core/common/validation merges several under VALIDATION_FAILED.
func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewInvalidTransitionError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidTransition,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewConflictError reports an operation blocked by count existing rows of resource.
func NewConflictError(message string, code ErrorCode, resource string, count int64) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
		Details:    ConflictDetails{Resource: resource, BlockingCount: count},
	}
}

func NewSchemaError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeSchema,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

var (
	ErrEmployeeNotFound   = NewNotFoundError("Employee not found", ErrCodeEmployeeNotFound)
	ErrDepartmentNotFound = NewNotFoundError("Department not found", ErrCodeDepartmentNotFound)
	ErrPositionNotFound   = NewNotFoundError("Position not found", ErrCodePositionNotFound)
	ErrProgramNotFound    = NewNotFoundError("Program not found", ErrCodeProgramNotFound)
	ErrWorkItemNotFound   = NewNotFoundError("Work item not found", ErrCodeWorkItemNotFound)
	ErrSegmentNotFound    = NewNotFoundError("Employment segment not found", ErrCodeSegmentNotFound)
	ErrTimesheetNotFound  = NewNotFoundError("Timesheet not found", ErrCodeTimesheetNotFound)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err carries an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Type == t
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
