package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeWeakPassword     ErrorCode = "WEAK_PASSWORD"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeUserNotFound       ErrorCode = "USER_NOT_FOUND"

	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"

	ErrCodeCompanyNotFound     ErrorCode = "COMPANY_NOT_FOUND"
	ErrCodeRoleNotFound        ErrorCode = "ROLE_NOT_FOUND"
	ErrCodePermissionNotFound  ErrorCode = "PERMISSION_NOT_FOUND"
	ErrCodeGroupNotFound       ErrorCode = "GROUP_NOT_FOUND"
	ErrCodeLegalCaseNotFound   ErrorCode = "LEGAL_CASE_NOT_FOUND"
	ErrCodeCalculationNotFound ErrorCode = "CALCULATION_NOT_FOUND"

	ErrCodeDuplicateUser        ErrorCode = "USERNAME_OR_EMAIL_EXISTS"
	ErrCodeDuplicateCNPJ        ErrorCode = "CNPJ_EXISTS"
	ErrCodeDuplicateRole        ErrorCode = "ROLE_NAME_EXISTS"
	ErrCodeDuplicatePermission  ErrorCode = "PERMISSION_EXISTS"
	ErrCodeDuplicateGroup       ErrorCode = "GROUP_NAME_EXISTS"
	ErrCodeDuplicateCaseNumber  ErrorCode = "CASE_NUMBER_EXISTS"
	ErrCodeDuplicateCalculation ErrorCode = "CALCULATION_EXISTS"
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
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
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

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
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

var (
	ErrInvalidCredentials = NewUnauthorizedError("Invalid username or password", ErrCodeInvalidCredentials)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrUserInactive       = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
	ErrUserNotFound       = NewNotFoundError("User not found", ErrCodeUserNotFound)

	ErrPermissionDenied = NewForbiddenError("Permission denied", ErrCodePermissionDenied)

	ErrCompanyNotFound     = NewNotFoundError("Company not found", ErrCodeCompanyNotFound)
	ErrRoleNotFound        = NewNotFoundError("Role not found", ErrCodeRoleNotFound)
	ErrPermissionNotFound  = NewNotFoundError("Permission not found", ErrCodePermissionNotFound)
	ErrGroupNotFound       = NewNotFoundError("Group not found", ErrCodeGroupNotFound)
	ErrLegalCaseNotFound   = NewNotFoundError("Legal case not found", ErrCodeLegalCaseNotFound)
	ErrCalculationNotFound = NewNotFoundError("Legal calculation not found", ErrCodeCalculationNotFound)

	ErrDuplicateUser       = NewConflictError("Username or email already exists", ErrCodeDuplicateUser)
	ErrDuplicateCNPJ       = NewConflictError("CNPJ already exists", ErrCodeDuplicateCNPJ)
	ErrDuplicateRole       = NewConflictError("Role name already exists", ErrCodeDuplicateRole)
	ErrDuplicatePermission = NewConflictError("Permission with this resource and action already exists", ErrCodeDuplicatePermission)
	ErrDuplicateGroup      = NewConflictError("Group name already exists", ErrCodeDuplicateGroup)
	ErrDuplicateCaseNumber = NewConflictError("Legal case number already exists", ErrCodeDuplicateCaseNumber)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
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
